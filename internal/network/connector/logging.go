package connector

import (
	"context"

	"go.uber.org/zap"

	network "github.com/lk2023060901/danmu-garden-plotter/internal/network"
	"github.com/lk2023060901/danmu-garden-plotter/pkg/log"
)

const (
	// 发送失败日志的限流参数：每秒补充 1 条额度，最多累积 60 条。
	failureLogCreditPerSecond = 1.0
	failureLogMaxBalance      = 60.0
)

// LoggingSink 在 Sink 外层记录失败日志，错误原样返回给调用方。
//
// 失败日志使用 RatedWarn 限流，避免目标不可达时刷屏。
type LoggingSink struct {
	Sink
	log.Binder

	destination string
}

var (
	_ Sink             = (*LoggingSink)(nil)
	_ log.LoggerBinder = (*LoggingSink)(nil)
)

// NewLoggingSink 返回带失败日志的 Sink，默认 Logger 为全局 Logger 的子 Logger。
func NewLoggingSink(sink Sink, destination string) *LoggingSink {
	s := &LoggingSink{Sink: sink, destination: destination}
	s.SetLogger(log.With(log.FieldComponent("sink"), log.FieldDestination(destination)).
		WithRateGroup("plotter.sink."+destination, failureLogCreditPerSecond, failureLogMaxBalance))
	return s
}

func (s *LoggingSink) Send(ctx context.Context, data []byte) error {
	err := s.Sink.Send(ctx, data)
	if err != nil {
		s.Logger().RatedWarn(1, "send datagram failed",
			log.FieldStage(stageLabel(err)),
			zap.String("code", network.ErrCodeOf(err)),
			zap.Int("size", len(data)),
			zap.Error(err))
	}
	return err
}

func (s *LoggingSink) Close() error {
	err := s.Sink.Close()
	if err != nil {
		s.Logger().Warn("close sink failed", zap.Error(err))
		return err
	}
	s.Logger().Debug("sink closed")
	return nil
}
