// Package jsonize 将 value 值树渲染为紧凑的 JSON 对象文本。
//
// 输出格式：
//
//	{["timestamp":<ts>,]"<name0>":<value0>,"<name1>":<value1>,...}
//
// 键按节点顺序输出，不排序；无换行、无转义。名称与字符串内容需由调用方保证合法，
// 需要检查时可先调用 Validate。
package jsonize

import (
	"strconv"

	"github.com/lk2023060901/danmu-garden-plotter/internal/plotter/value"
	"github.com/lk2023060901/danmu-garden-plotter/pkg/util/merr"
)

const (
	// DefaultSizeHint 为未指定 size hint 时预留的缓冲区大小，足够容纳常见的遥测记录。
	DefaultSizeHint = 256

	timestampKey = "timestamp"
)

type options struct {
	timestamp    float64
	hasTimestamp bool
	sizeHint     int
}

// Option 用于配置单次渲染。
type Option func(*options)

// WithTimestamp 在对象最前面注入 "timestamp" 键。
//
// 时间戳使用 Go 默认的浮点文本格式（strconv 'g'，最短表示），
// 与值树中 Float 的定点格式不同，下游按此格式解析，不要统一。
func WithTimestamp(ts float64) Option {
	return func(o *options) {
		o.timestamp = ts
		o.hasTimestamp = true
	}
}

// WithSizeHint 指定输出缓冲区的初始容量；n <= 0 时使用 DefaultSizeHint。
func WithSizeHint(n int) Option {
	return func(o *options) {
		o.sizeHint = n
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.sizeHint <= 0 {
		o.sizeHint = DefaultSizeHint
	}
	return o
}

// FromNodes 将 nodes 中的每个节点作为顶层成员渲染。
func FromNodes(nodes []value.Node, opts ...Option) []byte {
	o := newOptions(opts)
	buf := appendHead(make([]byte, 0, o.sizeHint), &o, len(nodes) > 0)
	buf = value.AppendMembers(buf, nodes)
	return append(buf, '}')
}

// FromNode 将单个节点视为只含一个元素的序列渲染，node 的键名保留在输出中。
func FromNode(node value.Node, opts ...Option) []byte {
	o := newOptions(opts)
	buf := appendHead(make([]byte, 0, o.sizeHint), &o, node != nil)
	if node != nil {
		buf = value.AppendMember(buf, node)
	}
	return append(buf, '}')
}

// FromFields 平铺 j 返回的字段。
func FromFields(j value.FieldsJsonizer, opts ...Option) []byte {
	return FromNodes(j.Jsonize(), opts...)
}

// FromNodeJsonizer 包装 j 返回的单个节点，外层键名不会被去掉。
func FromNodeJsonizer(j value.NodeJsonizer, opts ...Option) []byte {
	return FromNode(j.JsonizeNode(), opts...)
}

// Marshal 是通用入口：根据 v 实现的能力选择平铺或包装方式。
//
// 支持的输入依次为 value.FieldsJsonizer、value.NodeJsonizer、value.Node 与 []value.Node；
// 同时实现两种能力的类型按 FieldsJsonizer 处理。其它类型返回 merr.ErrNotJsonizable。
// 调用方在编译期就确定形状时，应直接使用 FromFields / FromNodeJsonizer。
func Marshal(v any, opts ...Option) ([]byte, error) {
	nodes, err := Nodes(v)
	if err != nil {
		return nil, err
	}
	return FromNodes(nodes, opts...), nil
}

// ToString 与 Marshal 相同，返回字符串形式。
func ToString(v any, opts ...Option) (string, error) {
	out, err := Marshal(v, opts...)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Nodes 返回 v 在渲染时对应的顶层节点序列，规则与 Marshal 一致。
//
// 供需要在发送前检查值树的调用方使用（例如 Validate）。
func Nodes(v any) ([]value.Node, error) {
	switch v := v.(type) {
	case value.FieldsJsonizer:
		return v.Jsonize(), nil
	case value.NodeJsonizer:
		return wrap(v.JsonizeNode()), nil
	case value.Node:
		return wrap(v), nil
	case []value.Node:
		return v, nil
	default:
		return nil, merr.WrapErrNotJsonizable(v)
	}
}

func wrap(n value.Node) []value.Node {
	if n == nil {
		return nil
	}
	return []value.Node{n}
}

// appendHead 写入 '{' 与可选的时间戳；只有后面还有成员时才追加逗号。
func appendHead(dst []byte, o *options, hasMembers bool) []byte {
	dst = append(dst, '{')
	if o.hasTimestamp {
		dst = append(dst, '"')
		dst = append(dst, timestampKey...)
		dst = append(dst, '"', ':')
		dst = AppendTimestamp(dst, o.timestamp)
		if hasMembers {
			dst = append(dst, ',')
		}
	}
	return dst
}

// AppendTimestamp 按时间戳的文本格式追加 ts。
func AppendTimestamp(dst []byte, ts float64) []byte {
	return strconv.AppendFloat(dst, ts, 'g', -1, 64)
}
