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
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Debug 使用全局 Logger 输出 Debug 日志。
func Debug(msg string, fields ...zap.Field) {
	helperL().Debug(msg, fields...)
}

// Info 使用全局 Logger 输出 Info 日志。
func Info(msg string, fields ...zap.Field) {
	helperL().Info(msg, fields...)
}

// Warn 使用全局 Logger 输出 Warn 日志。
func Warn(msg string, fields ...zap.Field) {
	helperL().Warn(msg, fields...)
}

// Error 使用全局 Logger 输出 Error 日志。
func Error(msg string, fields ...zap.Field) {
	helperL().Error(msg, fields...)
}

// With 基于全局 Logger 创建携带 fields 的 MLogger。
// 字段在第一次真正输出时才编码。
func With(fields ...zap.Field) *MLogger {
	return &MLogger{Logger: L().WithLazy(fields...)}
}

// SetLevel 动态调整全局日志级别。
func SetLevel(l zapcore.Level) {
	Level().SetLevel(l)
}

// GetLevel 返回当前全局日志级别。
func GetLevel() zapcore.Level {
	return Level().Level()
}
