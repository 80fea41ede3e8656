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
	"net"
	"os"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/suite"
)

type ErrSuite struct {
	suite.Suite
}

func (s *ErrSuite) TestCode() {
	err := WrapErrAddressInvalid("not-an-ip", 9870)
	errors.Wrap(err, "failed to create publisher")
	s.ErrorIs(err, ErrAddressInvalid)
	s.Equal(Code(ErrAddressInvalid), Code(err))
	s.Equal(TimeoutCode, Code(context.DeadlineExceeded))
	s.Equal(CanceledCode, Code(context.Canceled))
	s.Equal(errUnexpected.errCode, Code(errUnexpected))
	s.Equal(errUnexpected.errCode, Code(errors.New("plain")))
	s.Equal(int32(0), Code(nil))

	sameCodeErr := newPlotterError("new error", ErrTransportFailed.errCode)
	s.True(sameCodeErr.Is(ErrTransportFailed))
}

func (s *ErrSuite) TestWrap() {
	// Address 相关错误。
	s.ErrorIs(WrapErrAddressInvalid("", 0, "empty address"), ErrAddressInvalid)
	s.ErrorIs(WrapErrAddressUnresolved("nowhere:1", &net.DNSError{Err: "no such host", Name: "nowhere"}), ErrAddressUnresolved)
	s.Nil(WrapErrAddressUnresolved("nowhere:1", nil))

	// Transport 相关错误。
	s.ErrorIs(WrapErrTransportFailed("127.0.0.1:9870", os.ErrClosed), ErrTransportFailed)
	s.ErrorIs(WrapErrTransportShortWrite("127.0.0.1:9870", 1, 2), ErrTransportShortWrite)
	s.Nil(WrapErrTransportFailed("127.0.0.1:9870", nil))

	// Encoding 相关错误。
	s.ErrorIs(WrapErrEncodingInvalid("outer.inner", "name needs escaping"), ErrEncodingInvalid)
	s.ErrorIs(WrapErrNotJsonizable(42, "publish"), ErrNotJsonizable)

	// 参数相关错误。
	s.ErrorIs(WrapErrParameterInvalid(8, 1, "failed to create"), ErrParameterInvalid)
	s.ErrorIs(WrapErrParameterInvalidRange(1, 65535, 0, "port should be in range"), ErrParameterInvalid)
	s.ErrorIs(WrapErrParameterMissing("address", "no address parameter"), ErrParameterMissing)

	s.ErrorIs(WrapErrServiceClosed("publisher"), ErrServiceClosed)
}

func (s *ErrSuite) TestWrapKeepsCause() {
	err := WrapErrTransportFailed("127.0.0.1:9870", os.ErrClosed)
	s.ErrorIs(err, os.ErrClosed)
	s.ErrorIs(err, ErrTransportFailed)
	s.Equal(Code(ErrTransportFailed), Code(err))
	s.Contains(err.Error(), "endpoint=127.0.0.1:9870")
}

func (s *ErrSuite) TestErrorMessage() {
	err := WrapErrTransportShortWrite("127.0.0.1:9870", 3, 10)
	s.Equal("transport short write[endpoint=127.0.0.1:9870][written=3][expected=10]", err.Error())

	err = WrapErrEncodingInvalid("point.x", "float is not finite")
	s.Equal("value cannot be encoded as json[path=point.x]: float is not finite", err.Error())
}

func (s *ErrSuite) TestCanceledOrTimeout() {
	s.True(IsCanceledOrTimeout(errors.Wrap(context.Canceled, "publish")))
	s.True(IsCanceledOrTimeout(WrapErrTransportFailed("127.0.0.1:9870", context.DeadlineExceeded)))
	s.False(IsCanceledOrTimeout(ErrTransportFailed))
}

func (s *ErrSuite) TestCombine() {
	var (
		errFirst  = errors.New("first")
		errSecond = errors.New("second")
		errThird  = errors.New("third")
	)

	err := Combine(errFirst, errSecond)
	s.True(errors.Is(err, errFirst))
	s.True(errors.Is(err, errSecond))
	s.False(errors.Is(err, errThird))

	s.Equal("first: second", err.Error())
}

func (s *ErrSuite) TestCombineWithNil() {
	err := errors.New("non-nil")

	err = Combine(nil, err)
	s.NotNil(err)
}

func (s *ErrSuite) TestCombineOnlyNil() {
	err := Combine(nil, nil)
	s.Nil(err)
}

func (s *ErrSuite) TestCombineCode() {
	err := Combine(WrapErrAddressInvalid("x", 1), WrapErrTransportFailed("x:1", os.ErrClosed))
	s.Equal(Code(ErrTransportFailed), Code(err))
}

func TestErrors(t *testing.T) {
	suite.Run(t, new(ErrSuite))
}
