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

package merr

import (
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

const (
	CanceledCode int32 = 10000
	TimeoutCode  int32 = 10001
)

// 叶子错误统一定义在这里，按发送链路的阶段分段编号。
// 命名规则：Err + 相关前缀 + 错误名
var (
	// Address 相关：目标地址无法解析或 socket 无法创建，构造阶段即失败。
	ErrAddressInvalid    = newPlotterError("invalid destination address", 100)
	ErrAddressUnresolved = newPlotterError("destination address unresolved", 101)

	// Transport 相关：单次发送失败，不做重试。
	ErrTransportFailed     = newPlotterError("transport send failed", 200)
	ErrTransportShortWrite = newPlotterError("transport short write", 201)

	// Encoding 相关
	ErrEncodingInvalid = newPlotterError("value cannot be encoded as json", 300)
	ErrNotJsonizable   = newPlotterError("value is not jsonizable", 301)

	// 配置参数
	ErrParameterInvalid = newPlotterError("invalid parameter", 1100)
	ErrParameterMissing = newPlotterError("missing parameter", 1101)

	ErrServiceClosed = newPlotterError("service closed", 3001)

	// 仅用于把未知错误归一为 plotterError，不导出。
	errUnexpected = newPlotterError("unexpected error", (1<<16)-1)
)

// plotterError 以错误码判等，附加字段只影响错误信息。
type plotterError struct {
	msg     string
	errCode int32
}

func newPlotterError(msg string, code int32) plotterError {
	return plotterError{msg: msg, errCode: code}
}

func (e plotterError) code() int32 {
	return e.errCode
}

func (e plotterError) Error() string {
	return e.msg
}

func (e plotterError) Is(err error) bool {
	if cause, ok := errors.Cause(err).(plotterError); ok {
		return e.errCode == cause.errCode
	}
	return false
}

// multiErrors 把多个错误组合为一个，errors.Is 对其中任意一个成立即成立。
// Unwrap 沿第二个及之后的错误展开，Code 因此取最后一个错误的码。
type multiErrors struct {
	errs []error
}

func (e multiErrors) Unwrap() error {
	switch len(e.errs) {
	case 0, 1:
		return nil
	case 2:
		return e.errs[1]
	default:
		return multiErrors{errs: e.errs[1:]}
	}
}

func (e multiErrors) Error() string {
	final := e.errs[0]
	for _, next := range e.errs[1:] {
		final = errors.Wrap(next, final.Error())
	}
	return final.Error()
}

func (e multiErrors) Is(err error) bool {
	return lo.SomeBy(e.errs, func(item error) bool { return errors.Is(item, err) })
}

// Combine 组合非 nil 的错误，全部为 nil 时返回 nil。
func Combine(errs ...error) error {
	errs = lo.Filter(errs, func(err error, _ int) bool { return err != nil })
	if len(errs) == 0 {
		return nil
	}
	return multiErrors{errs: errs}
}
