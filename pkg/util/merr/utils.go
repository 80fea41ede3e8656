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
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Code 返回给定错误对应的错误码。
func Code(err error) int32 {
	if err == nil {
		return 0
	}

	cause := errors.Cause(err)
	if perr, ok := cause.(plotterError); ok {
		return perr.code()
	}
	switch {
	case errors.Is(cause, context.Canceled):
		return CanceledCode
	case errors.Is(cause, context.DeadlineExceeded):
		return TimeoutCode
	default:
		return errUnexpected.code()
	}
}

// IsCanceledOrTimeout 报告 err 是否由 ctx 取消或超时引起。
func IsCanceledOrTimeout(err error) bool {
	return errors.IsAny(err, context.Canceled, context.DeadlineExceeded)
}

// Address 相关错误封装。
func WrapErrAddressInvalid(address string, port int, msg ...string) error {
	return withMsg(wrapFields(ErrAddressInvalid,
		value("address", address),
		value("port", port),
	), msg)
}

// WrapErrAddressUnresolved 保留底层解析错误，调用方仍可用 errors.Is 判断原始原因。
func WrapErrAddressUnresolved(endpoint string, cause error) error {
	if cause == nil {
		return nil
	}
	return Combine(cause, wrapFieldsWithDesc(ErrAddressUnresolved, cause.Error(), value("endpoint", endpoint)))
}

// Transport 相关错误封装。
func WrapErrTransportFailed(endpoint string, cause error) error {
	if cause == nil {
		return nil
	}
	return Combine(cause, wrapFieldsWithDesc(ErrTransportFailed, cause.Error(), value("endpoint", endpoint)))
}

func WrapErrTransportShortWrite(endpoint string, written, expected int) error {
	return wrapFields(ErrTransportShortWrite,
		value("endpoint", endpoint),
		value("written", written),
		value("expected", expected),
	)
}

// Encoding 相关错误封装。
func WrapErrEncodingInvalid(path string, reason string) error {
	return wrapFieldsWithDesc(ErrEncodingInvalid, reason, value("path", path))
}

func WrapErrNotJsonizable(v any, msg ...string) error {
	return withMsg(wrapFields(ErrNotJsonizable, value("type", fmt.Sprintf("%T", v))), msg)
}

// Parameter related
func WrapErrParameterInvalid[T any](expected, actual T, msg ...string) error {
	return withMsg(wrapFields(ErrParameterInvalid,
		value("expected", expected),
		value("actual", actual),
	), msg)
}

func WrapErrParameterInvalidRange[T any](lower, upper, actual T, msg ...string) error {
	return withMsg(wrapFields(ErrParameterInvalid,
		bound("value", actual, lower, upper),
	), msg)
}

func WrapErrParameterMissing[T any](param T, msg ...string) error {
	return withMsg(wrapFields(ErrParameterMissing,
		value("missing_param", param),
	), msg)
}

// WrapErrServiceClosed 用于 Close 之后的调用。
func WrapErrServiceClosed(service string, msg ...string) error {
	return withMsg(wrapFields(ErrServiceClosed, value("service", service)), msg)
}

// withMsg 把调用方补充的说明以 "->" 连接后包裹在 err 外层。
func withMsg(err error, msg []string) error {
	if len(msg) == 0 {
		return err
	}
	return errors.Wrap(err, strings.Join(msg, "->"))
}

func wrapFields(err plotterError, fields ...errorField) error {
	for i := range fields {
		err.msg += fmt.Sprintf("[%s]", fields[i].String())
	}
	return err
}

func wrapFieldsWithDesc(err plotterError, desc string, fields ...errorField) error {
	for i := range fields {
		err.msg += fmt.Sprintf("[%s]", fields[i].String())
	}
	err.msg += ": " + desc
	return err
}

type errorField interface {
	String() string
}

type valueField struct {
	name  string
	value any
}

func value(name string, value any) valueField {
	return valueField{
		name,
		value,
	}
}

func (f valueField) String() string {
	return fmt.Sprintf("%s=%v", f.name, f.value)
}

type boundField struct {
	name  string
	value any
	lower any
	upper any
}

func bound(name string, value, lower, upper any) boundField {
	return boundField{
		name,
		value,
		lower,
		upper,
	}
}

func (f boundField) String() string {
	return fmt.Sprintf("%v out of range %v <= %s <= %v", f.value, f.lower, f.name, f.upper)
}
