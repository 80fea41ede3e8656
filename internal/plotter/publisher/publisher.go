// Package publisher 把值树渲染为 JSON 并以数据报形式发送给绘图端。
//
// 每个 Publisher 独占一个目标地址，调用是同步的：渲染、记录 size hint、发送，
// 全部在 Publish 返回前完成。Publisher 不做重试、不排队，也不输出日志，
// 错误一律返回给调用方。
package publisher

import (
	"context"

	"github.com/lk2023060901/danmu-garden-plotter/internal/network/connector"
	"github.com/lk2023060901/danmu-garden-plotter/internal/network/serializer"
	"github.com/lk2023060901/danmu-garden-plotter/internal/plotter/jsonize"
	"github.com/lk2023060901/danmu-garden-plotter/internal/plotter/value"
	"github.com/lk2023060901/danmu-garden-plotter/pkg/util/merr"
)

// Publisher 将遥测记录发送到单个目标。
//
// Publisher 不是并发安全的：size hint 在每次调用中先读后写。
// 需要并发发送时，每个 goroutine 使用各自的 Publisher。
type Publisher struct {
	sink       connector.Sink
	serializer serializer.Serializer

	// sizeHint 只增不减，为下一次渲染预留缓冲区。
	sizeHint int
	closed   bool
}

// New 解析 address:port 并打开发送通道，失败时返回 merr.ErrAddressInvalid。
func New(address string, port int, opts ...Option) (*Publisher, error) {
	return NewContext(context.Background(), address, port, opts...)
}

// NewContext 与 New 相同，ctx 用于地址解析阶段。
func NewContext(ctx context.Context, address string, port int, opts ...Option) (*Publisher, error) {
	o := newOptions(opts)
	sink, err := o.connector.Dial(ctx, address, port)
	if err != nil {
		return nil, err
	}
	return newPublisher(sink, o), nil
}

// NewWithSink 使用调用方提供的 Sink 构造 Publisher，Close 时会一并关闭 sink。
func NewWithSink(sink connector.Sink, opts ...Option) *Publisher {
	return newPublisher(sink, newOptions(opts))
}

func newPublisher(sink connector.Sink, o options) *Publisher {
	return &Publisher{
		sink:       sink,
		serializer: o.serializer,
		sizeHint:   o.sizeHint,
	}
}

// Publish 根据 v 实现的能力渲染并发送一条记录，规则同 jsonize.Marshal。
func (p *Publisher) Publish(ctx context.Context, v any, opts ...jsonize.Option) error {
	if p.closed {
		return merr.WrapErrServiceClosed("publisher")
	}
	nodes, err := jsonize.Nodes(v)
	if err != nil {
		return err
	}
	return p.publish(ctx, nodes, opts)
}

// PublishFields 平铺 j 的字段后发送。
func (p *Publisher) PublishFields(ctx context.Context, j value.FieldsJsonizer, opts ...jsonize.Option) error {
	if p.closed {
		return merr.WrapErrServiceClosed("publisher")
	}
	return p.publish(ctx, j.Jsonize(), opts)
}

// PublishNodeJsonizer 保留 j 返回节点的键名后发送。
func (p *Publisher) PublishNodeJsonizer(ctx context.Context, j value.NodeJsonizer, opts ...jsonize.Option) error {
	if p.closed {
		return merr.WrapErrServiceClosed("publisher")
	}
	return p.PublishNode(ctx, j.JsonizeNode(), opts...)
}

// PublishNode 发送只含 n 一个成员的对象。
func (p *Publisher) PublishNode(ctx context.Context, n value.Node, opts ...jsonize.Option) error {
	if p.closed {
		return merr.WrapErrServiceClosed("publisher")
	}
	if n == nil {
		return p.publish(ctx, nil, opts)
	}
	return p.publish(ctx, []value.Node{n}, opts)
}

// PublishNodes 将 nodes 作为顶层成员发送。
func (p *Publisher) PublishNodes(ctx context.Context, nodes []value.Node, opts ...jsonize.Option) error {
	if p.closed {
		return merr.WrapErrServiceClosed("publisher")
	}
	return p.publish(ctx, nodes, opts)
}

// PublishRaw 发送单个浮点量：{"name":v}。
func (p *Publisher) PublishRaw(ctx context.Context, name string, v float64, opts ...jsonize.Option) error {
	return p.PublishNode(ctx, value.NewFloat(name, v), opts...)
}

func (p *Publisher) publish(ctx context.Context, nodes []value.Node, opts []jsonize.Option) error {
	all := make([]jsonize.Option, 0, len(opts)+1)
	all = append(all, jsonize.WithSizeHint(p.sizeHint))
	all = append(all, opts...)

	out, err := p.serializer.Serialize(nodes, all...)
	if err != nil {
		return err
	}
	if len(out) > p.sizeHint {
		p.sizeHint = len(out)
	}
	return p.sink.Send(ctx, out)
}

// SizeHint 返回下一次渲染预留的缓冲区大小。
func (p *Publisher) SizeHint() int {
	return p.sizeHint
}

// Address 返回目标地址，格式为 ip:port。
func (p *Publisher) Address() string {
	return p.sink.RemoteAddr().String()
}

// Close 关闭底层 Sink，之后的发送返回 merr.ErrServiceClosed。重复调用返回 nil。
func (p *Publisher) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	return p.sink.Close()
}
