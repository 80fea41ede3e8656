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

package log

import (
	"github.com/uber/jaeger-client-go/utils"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// MLogger 在 zap.Logger 之上增加限流输出。
//
// 通过 WithRateGroup 绑定分组后，RatedInfo / RatedWarn 消耗该分组的额度；
// 未绑定时使用 PLOTTER_LOG_RATE_* 配置的全局限流器，全局限流关闭时不限流。
type MLogger struct {
	*zap.Logger
	rl atomic.Pointer[utils.ReconfigurableRateLimiter]
}

// With 返回携带 fields 的子 Logger，不继承限流分组。
func (l *MLogger) With(fields ...zap.Field) *MLogger {
	return &MLogger{Logger: l.Logger.WithLazy(fields...)}
}

// WithRateGroup 把 l 绑定到名为 group 的限流器并返回 l。
// 分组已存在时沿用其额度，并把速率更新为本次参数。
func (l *MLogger) WithRateGroup(group string, creditPerSecond, maxBalance float64) *MLogger {
	rl := utils.NewRateLimiter(creditPerSecond, maxBalance)
	if actual, loaded := _rateGroups.LoadOrStore(group, rl); loaded {
		rl = actual.(*utils.ReconfigurableRateLimiter)
		rl.Update(creditPerSecond, maxBalance)
	}
	l.rl.Store(rl)
	return l
}

func (l *MLogger) allow(cost float64) bool {
	rl := l.rl.Load()
	if rl == nil {
		rl = limiter()
	}
	return rl == nil || rl.CheckCredit(cost)
}

// RatedInfo 在额度足够时输出 Info 日志，返回是否已输出。
func (l *MLogger) RatedInfo(cost float64, msg string, fields ...zap.Field) bool {
	if !l.allow(cost) {
		return false
	}
	l.WithOptions(zap.AddCallerSkip(1)).Info(msg, fields...)
	return true
}

// RatedWarn 在额度足够时输出 Warn 日志，返回是否已输出。
func (l *MLogger) RatedWarn(cost float64, msg string, fields ...zap.Field) bool {
	if !l.allow(cost) {
		return false
	}
	l.WithOptions(zap.AddCallerSkip(1)).Warn(msg, fields...)
	return true
}
