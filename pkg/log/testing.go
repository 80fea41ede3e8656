package log

import (
	"bytes"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// InitTestLogger 构造一个把日志写入 t.Logf 的 Logger，
// zap 内部错误同样写入 t 并使测试失败。
func InitTestLogger(t zaptest.TestingT, cfg *Config, opts ...zap.Option) (*zap.Logger, *ZapProperties, error) {
	out := testWriter{t: t}
	errOut := testWriter{t: t, failTest: true}
	return newLogger(cfg, out, append([]zap.Option{zap.ErrorOutput(errOut)}, opts...)...)
}

type testWriter struct {
	t        zaptest.TestingT
	failTest bool
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Logf("%s", bytes.TrimSuffix(p, []byte("\n")))
	if w.failTest {
		w.t.Fail()
	}
	return len(p), nil
}

func (testWriter) Sync() error {
	return nil
}
