package publisher

import (
	"github.com/lk2023060901/danmu-garden-plotter/internal/network/connector"
	"github.com/lk2023060901/danmu-garden-plotter/internal/network/serializer"
	"github.com/lk2023060901/danmu-garden-plotter/internal/plotter/jsonize"
)

type options struct {
	sizeHint   int
	strict     bool
	connector  connector.Connector
	serializer serializer.Serializer
}

// Option 用于配置 Publisher。
type Option func(*options)

// WithInitialSizeHint 设置首次渲染预留的缓冲区大小，n <= 0 时使用 jsonize.DefaultSizeHint。
func WithInitialSizeHint(n int) Option {
	return func(o *options) {
		o.sizeHint = n
	}
}

// WithStrict 打开发送前校验：名称、字符串需要转义或浮点数非有限值时返回
// merr.ErrEncodingInvalid，且不会发送。只作用于默认的 PlotterSerializer。
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithConnector 替换 New 使用的拨号器，默认为不带超时的 UDP Connector。
func WithConnector(c connector.Connector) Option {
	return func(o *options) {
		o.connector = c
	}
}

// WithSerializer 替换编码步骤，默认为 serializer.PlotterSerializer。
// 设置后 WithStrict 不再生效，校验由 s 自行负责。
func WithSerializer(s serializer.Serializer) Option {
	return func(o *options) {
		o.serializer = s
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.sizeHint <= 0 {
		o.sizeHint = jsonize.DefaultSizeHint
	}
	if o.serializer == nil {
		o.serializer = serializer.PlotterSerializer{Strict: o.strict}
	}
	if o.connector == nil {
		o.connector = connector.NewUDPConnector(connector.Config{})
	}
	return o
}
