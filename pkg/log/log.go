// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Copyright 2019 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/uber/jaeger-client-go/utils"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// global 保存进程级 Logger。helper 是供包级 Info/Warn 等函数使用的副本，
// 额外跳过一层调用栈，使 caller 指向业务代码。
type global struct {
	logger *zap.Logger
	sugar  *zap.SugaredLogger
	helper *zap.Logger
	props  *ZapProperties
}

var (
	_global        atomic.Pointer[global]
	_globalLimiter atomic.Pointer[utils.ReconfigurableRateLimiter]

	// _rateGroups 按分组名共享限流器，同名 Logger 共用额度。
	_rateGroups sync.Map
)

func init() {
	lg, props, _ := InitLogger(&Config{Level: "debug", Stdout: true}, zap.OnFatal(zapcore.WriteThenPanic))
	ReplaceGlobals(lg, props)
	configureRateLimiterFromEnv()
}

// InitLogger 按 cfg 构造 Logger，输出到文件（cfg.File.Filename 非空）和/或标准输出。
// 两者都未开启时日志被丢弃。Level 支持 "trace"，等价于 "debug"。
func InitLogger(cfg *Config, opts ...zap.Option) (*zap.Logger, *ZapProperties, error) {
	var outputs []zapcore.WriteSyncer
	if cfg.File.Filename != "" {
		lg, err := initFileLog(&cfg.File)
		if err != nil {
			return nil, nil, err
		}
		outputs = append(outputs, zapcore.AddSync(lg))
	}
	if cfg.Stdout {
		stdout, _, err := zap.Open("stdout")
		if err != nil {
			return nil, nil, err
		}
		outputs = append(outputs, stdout)
	}
	return newLogger(cfg, zap.CombineWriteSyncers(outputs...), opts...)
}

func newLogger(cfg *Config, output zapcore.WriteSyncer, opts ...zap.Option) (*zap.Logger, *ZapProperties, error) {
	levelText := cfg.Level
	if strings.EqualFold(levelText, "trace") {
		levelText = "debug"
	}
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(levelText)); err != nil {
		return nil, nil, errors.Wrapf(err, "invalid log level %q", cfg.Level)
	}

	core := zapcore.NewCore(cfg.newEncoder(), output, level)
	lg := zap.New(core, append(cfg.buildOptions(output), opts...)...)
	return lg, &ZapProperties{Core: core, Syncer: output, Level: level}, nil
}

// initFileLog 使用 lumberjack 按大小轮转日志文件。
func initFileLog(cfg *FileLogConfig) (*lumberjack.Logger, error) {
	logPath := filepath.Join(cfg.RootPath, cfg.Filename)
	if st, err := os.Stat(logPath); err == nil && st.IsDir() {
		return nil, errors.Newf("log file %s is a directory", logPath)
	}
	if cfg.MaxSize == 0 {
		cfg.MaxSize = defaultLogMaxSize
	}
	return &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxDays,
		LocalTime:  true,
	}, nil
}

// L 返回全局 Logger，并发安全。
func L() *zap.Logger {
	return _global.Load().logger
}

// S 返回全局 SugaredLogger，并发安全。
func S() *zap.SugaredLogger {
	return _global.Load().sugar
}

// ReplaceGlobals 替换全局 Logger，props 决定 SetLevel 作用的级别。
func ReplaceGlobals(logger *zap.Logger, props *ZapProperties) {
	_global.Store(&global{
		logger: logger,
		sugar:  logger.Sugar(),
		helper: logger.WithOptions(zap.AddCallerSkip(1)),
		props:  props,
	})
}

func helperL() *zap.Logger {
	return _global.Load().helper
}

// Sync 刷新全局 Logger 的缓冲。
func Sync() error {
	return L().Sync()
}

// Cleanup 在进程退出前调用，刷新日志。
func Cleanup() {
	_ = Sync()
}

// Level 返回全局 Logger 的动态级别。
func Level() zap.AtomicLevel {
	return _global.Load().props.Level
}

// limiter 返回未绑定分组的 MLogger 使用的限流器，未开启限流时返回 nil。
func limiter() *utils.ReconfigurableRateLimiter {
	return _globalLimiter.Load()
}

// configureRateLimiterFromEnv 读取 PLOTTER_LOG_RATE_* 环境变量：
//
//   - PLOTTER_LOG_RATE_ENABLE: 为 "1"/"true" 时开启，默认关闭。
//   - PLOTTER_LOG_RATE_CREDIT_PER_SECOND: 每秒补充的额度，默认 1。
//   - PLOTTER_LOG_RATE_MAX_BALANCE: 最多累积的额度，默认 60。
func configureRateLimiterFromEnv() {
	if !envBool("PLOTTER_LOG_RATE_ENABLE") {
		_globalLimiter.Store(nil)
		return
	}
	credit := envFloat("PLOTTER_LOG_RATE_CREDIT_PER_SECOND", 1)
	maxBalance := envFloat("PLOTTER_LOG_RATE_MAX_BALANCE", 60)
	_globalLimiter.Store(utils.NewRateLimiter(credit, maxBalance))
}

func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func envFloat(key string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64)
	if err != nil {
		return def
	}
	return f
}
