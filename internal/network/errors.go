package network

import (
	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/danmu-garden-plotter/pkg/util/merr"
)

// Stage 表示发送链路中的处理阶段。
//
// 主要用于日志字段与监控标签，标记错误发生的位置。
type Stage string

const (
	StageResolve Stage = "resolve" // 解析目标地址、打开 socket
	StageEncode  Stage = "encode"  // 值树 -> JSON 字节
	StageSend    Stage = "send"    // 写出数据报
)

// 统一的错误码常量。
//
// 注意：这些是用于日志/监控的稳定字符串，真正的 error 对象由 merr 构造。
const (
	ErrCodeResolveFailed = "network:resolve_failed"
	ErrCodeEncodeFailed  = "network:encode_failed"
	ErrCodeSendFailed    = "network:send_failed"
	ErrCodeUnknown       = "network:unknown"
)

// StageOf 根据错误类型推断其所属阶段；无法识别时返回空字符串。
func StageOf(err error) Stage {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, merr.ErrAddressInvalid), errors.Is(err, merr.ErrAddressUnresolved):
		return StageResolve
	case errors.Is(err, merr.ErrEncodingInvalid), errors.Is(err, merr.ErrNotJsonizable):
		return StageEncode
	case errors.Is(err, merr.ErrTransportFailed), errors.Is(err, merr.ErrTransportShortWrite):
		return StageSend
	default:
		return ""
	}
}

// ErrCodeOf 返回 err 对应的稳定错误码字符串，err 为 nil 时返回空字符串。
func ErrCodeOf(err error) string {
	if err == nil {
		return ""
	}
	switch StageOf(err) {
	case StageResolve:
		return ErrCodeResolveFailed
	case StageEncode:
		return ErrCodeEncodeFailed
	case StageSend:
		return ErrCodeSendFailed
	default:
		return ErrCodeUnknown
	}
}
