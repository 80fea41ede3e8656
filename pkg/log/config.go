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
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	defaultLogMaxSize = 300 // 日志文件默认最大大小，单位 MB。
)

// FileLogConfig 用于序列化文件日志相关配置（yaml/json）。
type FileLogConfig struct {
	// RootPath 为日志文件根目录。
	RootPath string `mapstructure:"rootpath" json:"rootpath"`
	// Filename 为日志文件名，留空表示关闭文件日志。
	Filename string `mapstructure:"filename" json:"filename"`
	// MaxSize 表示单个日志文件的最大大小，单位 MB。
	MaxSize int `mapstructure:"max-size" json:"max-size"`
	// MaxDays 表示日志文件最大保留天数，默认为不删除。
	MaxDays int `mapstructure:"max-days" json:"max-days"`
	// MaxBackups 表示最多保留多少个历史日志文件。
	MaxBackups int `mapstructure:"max-backups" json:"max-backups"`
}

// Config 用于序列化日志相关配置（yaml/json），application 通过 viper 读取。
type Config struct {
	// Level 为日志级别。
	Level string `mapstructure:"level" json:"level"`
	// Format 为日志格式，可选 json、text 或 console，text 与 console 等价。
	Format string `mapstructure:"format" json:"format"`
	// DisableTimestamp 表示是否禁用日志中的自动时间戳。
	DisableTimestamp bool `mapstructure:"disable-timestamp" json:"disable-timestamp"`
	// Stdout 表示是否输出到标准输出。
	Stdout bool `mapstructure:"stdout" json:"stdout"`
	// File 为文件日志配置。
	File FileLogConfig `mapstructure:"file" json:"file"`
	// Development 为 true 时，日志处于开发模式，DPanicLevel 行为会变化，并更积极地输出堆栈信息。
	Development bool `mapstructure:"development" json:"development"`
	// DisableCaller 表示是否关闭调用方文件名和行号标注，默认会标注。
	DisableCaller bool `mapstructure:"disable-caller" json:"disable-caller"`
	// DisableStacktrace 表示是否完全关闭自动堆栈采集。
	// 默认在开发环境对 Warn 及以上等级记录堆栈，在生产环境对 Error 及以上等级记录堆栈。
	DisableStacktrace bool `mapstructure:"disable-stacktrace" json:"disable-stacktrace"`
	// Sampling 为日志采样配置，用于限制日志对 CPU 和 I/O 的整体开销，同时尽量保留具有代表性的日志。
	// 这里的配置以“每秒”为单位，具体行为参考 zapcore.NewSampler。
	Sampling *zap.SamplingConfig `mapstructure:"sampling" json:"sampling"`
}

// ZapProperties 记录 zap 日志相关的核心信息。
type ZapProperties struct {
	Core   zapcore.Core
	Syncer zapcore.WriteSyncer
	Level  zap.AtomicLevel
}

func (cfg *Config) encoderConfig() zapcore.EncoderConfig {
	ec := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "name",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05.000 -07:00"),
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
	if cfg.DisableTimestamp {
		ec.TimeKey = ""
	}
	return ec
}

// newEncoder 按 Format 选择编码器，未知格式退回 text。
func (cfg *Config) newEncoder() zapcore.Encoder {
	if strings.EqualFold(cfg.Format, "json") {
		return zapcore.NewJSONEncoder(cfg.encoderConfig())
	}
	return zapcore.NewConsoleEncoder(cfg.encoderConfig())
}

func (cfg *Config) buildOptions(errSink zapcore.WriteSyncer) []zap.Option {
	opts := []zap.Option{zap.ErrorOutput(errSink)}

	if cfg.Development {
		opts = append(opts, zap.Development())
	}

	if !cfg.DisableCaller {
		opts = append(opts, zap.AddCaller())
	}

	stackLevel := zap.ErrorLevel
	if cfg.Development {
		stackLevel = zap.WarnLevel
	}
	if !cfg.DisableStacktrace {
		opts = append(opts, zap.AddStacktrace(stackLevel))
	}

	if cfg.Sampling != nil {
		opts = append(opts, zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewSamplerWithOptions(core, time.Second, cfg.Sampling.Initial, cfg.Sampling.Thereafter, zapcore.SamplerHook(cfg.Sampling.Hook))
		}))
	}
	return opts
}
