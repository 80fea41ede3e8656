// Package json 是项目内统一的 JSON 编解码入口，底层基于 bytedance/sonic。
//
// 使用与标准库兼容的配置，保证 map 键排序、HTML 转义等行为与 encoding/json 一致。
package json

import (
	"github.com/bytedance/sonic"
)

var api = sonic.ConfigStd

// Marshal 将 v 编码为 JSON。
func Marshal(v any) ([]byte, error) {
	return api.Marshal(v)
}

// Unmarshal 将 JSON 解码到 v，v 通常为指针。
func Unmarshal(data []byte, v any) error {
	return api.Unmarshal(data, v)
}

// Valid 报告 data 是否为合法 JSON。
func Valid(data []byte) bool {
	return api.Valid(data)
}
