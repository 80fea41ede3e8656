package log

import "go.uber.org/atomic"

// LoggerBinder 由可以替换 Logger 的组件实现，application 据此注入模块 Logger。
type LoggerBinder interface {
	SetLogger(logger *MLogger)
}

var _ LoggerBinder = (*Binder)(nil)

// Binder 嵌入到组件中保存其 Logger，可在运行期间并发替换。
type Binder struct {
	logger atomic.Pointer[MLogger]
}

func (b *Binder) SetLogger(logger *MLogger) {
	b.logger.Store(logger)
}

// Logger 返回已绑定的 Logger，未绑定时返回全局 Logger。
func (b *Binder) Logger() *MLogger {
	if l := b.logger.Load(); l != nil {
		return l
	}
	return With()
}
