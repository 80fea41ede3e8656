package connector

import (
	"context"
	"time"

	network "github.com/lk2023060901/danmu-garden-plotter/internal/network"
	"github.com/lk2023060901/danmu-garden-plotter/pkg/metrics"
)

// stageUnknown 是无法归类的失败所使用的标签值。
const stageUnknown = "unknown"

// instrumentedSink 在 Sink 外层记录发送次数、字节数、大小分布与耗时。
type instrumentedSink struct {
	Sink
	destination string
}

var _ Sink = (*instrumentedSink)(nil)

// NewInstrumentedSink 返回一个记录 Prometheus 指标的 Sink，destination 作为指标标签。
func NewInstrumentedSink(sink Sink, destination string) Sink {
	return &instrumentedSink{Sink: sink, destination: destination}
}

func (s *instrumentedSink) Send(ctx context.Context, data []byte) error {
	start := time.Now()
	err := s.Sink.Send(ctx, data)
	if err != nil {
		metrics.RecordFailure(s.destination, stageLabel(err))
		return err
	}
	metrics.RecordSent(s.destination, len(data), float64(time.Since(start).Microseconds())/1000)
	return nil
}

func stageLabel(err error) string {
	if stage := network.StageOf(err); stage != "" {
		return string(stage)
	}
	return stageUnknown
}
