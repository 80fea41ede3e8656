package serializer

import (
	"github.com/lk2023060901/danmu-garden-plotter/internal/plotter/jsonize"
	"github.com/lk2023060901/danmu-garden-plotter/internal/plotter/value"
)

// PlotterSerializer 按绘图端约定的格式渲染：成员按插入顺序输出，名称与字符串不转义。
//
// Strict 为 true 时先执行 jsonize.Validate，无法得到合法 JSON 的记录返回
// merr.ErrEncodingInvalid。
type PlotterSerializer struct {
	Strict bool

	// Options 追加在调用方选项之前，调用方的同类选项会覆盖它们。
	Options []jsonize.Option
}

var (
	_ Serializer = PlotterSerializer{}
	_ Serializer = Func(nil)
)

func (s PlotterSerializer) Serialize(nodes []value.Node, opts ...jsonize.Option) ([]byte, error) {
	if len(s.Options) > 0 {
		opts = append(append(make([]jsonize.Option, 0, len(s.Options)+len(opts)), s.Options...), opts...)
	}
	if s.Strict {
		if err := jsonize.Validate(nodes, opts...); err != nil {
			return nil, err
		}
	}
	return jsonize.FromNodes(nodes, opts...), nil
}
