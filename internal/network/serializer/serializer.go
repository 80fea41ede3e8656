// Package serializer 定义发送链路的编码步骤：把一条记录的顶层成员编码为数据报负载。
package serializer

import (
	"github.com/lk2023060901/danmu-garden-plotter/internal/plotter/jsonize"
	"github.com/lk2023060901/danmu-garden-plotter/internal/plotter/value"
)

// Serializer 由 Publisher 在每次发送前调用。
//
// opts 中总是包含调用方的 size hint，实现可以据此预分配缓冲区。
// 返回错误时 Publisher 不会发送任何数据。
type Serializer interface {
	Serialize(nodes []value.Node, opts ...jsonize.Option) ([]byte, error)
}

// Func 把普通函数适配为 Serializer。
type Func func(nodes []value.Node, opts ...jsonize.Option) ([]byte, error)

func (f Func) Serialize(nodes []value.Node, opts ...jsonize.Option) ([]byte, error) {
	return f(nodes, opts...)
}
