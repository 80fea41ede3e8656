package connector

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	network "github.com/lk2023060901/danmu-garden-plotter/internal/network"
	"github.com/lk2023060901/danmu-garden-plotter/pkg/log"
	"github.com/lk2023060901/danmu-garden-plotter/pkg/metrics"
	"github.com/lk2023060901/danmu-garden-plotter/pkg/util/merr"
)

type UDPConnectorSuite struct {
	suite.Suite

	listener *net.UDPConn
	port     int
}

func (s *UDPConnectorSuite) SetupTest() {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	s.Require().NoError(err)
	s.listener = conn
	s.port = conn.LocalAddr().(*net.UDPAddr).Port
}

func (s *UDPConnectorSuite) TearDownTest() {
	s.listener.Close()
}

func (s *UDPConnectorSuite) recv() string {
	buf := make([]byte, 65535)
	s.Require().NoError(s.listener.SetReadDeadline(time.Now().Add(2 * time.Second)))
	n, _, err := s.listener.ReadFromUDP(buf)
	s.Require().NoError(err)
	return string(buf[:n])
}

func (s *UDPConnectorSuite) TestSendOneDatagram() {
	sink, err := NewUDPConnector(Config{}).Dial(context.Background(), "127.0.0.1", s.port)
	s.Require().NoError(err)
	defer sink.Close()

	s.Equal(s.listener.LocalAddr().String(), sink.RemoteAddr().String())

	s.NoError(sink.Send(context.Background(), []byte(`{"x":1}`)))
	s.Equal(`{"x":1}`, s.recv())

	s.NoError(sink.Send(context.Background(), []byte(`{"x":2}`)))
	s.Equal(`{"x":2}`, s.recv())
}

func (s *UDPConnectorSuite) TestSendWithDeadline() {
	sink, err := NewUDPConnector(Config{WriteTimeout: time.Second}).Dial(context.Background(), "127.0.0.1", s.port)
	s.Require().NoError(err)
	defer sink.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.NoError(sink.Send(ctx, []byte("{}")))
	s.Equal("{}", s.recv())
}

func (s *UDPConnectorSuite) TestCanceledContext() {
	sink, err := NewUDPConnector(Config{}).Dial(context.Background(), "127.0.0.1", s.port)
	s.Require().NoError(err)
	defer sink.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = sink.Send(ctx, []byte("{}"))
	s.ErrorIs(err, context.Canceled)
	s.ErrorIs(err, merr.ErrTransportFailed)
	s.True(merr.IsCanceledOrTimeout(err))
	s.Equal(network.StageSend, network.StageOf(err))
	s.Equal(network.ErrCodeSendFailed, network.ErrCodeOf(err))
}

func (s *UDPConnectorSuite) TestSendAfterClose() {
	sink, err := NewUDPConnector(Config{}).Dial(context.Background(), "127.0.0.1", s.port)
	s.Require().NoError(err)

	s.NoError(sink.Close())
	s.NoError(sink.Close())
	s.ErrorIs(sink.Send(context.Background(), []byte("{}")), merr.ErrServiceClosed)
}

func (s *UDPConnectorSuite) TestInvalidAddress() {
	c := NewUDPConnector(Config{})
	ctx := context.Background()

	for _, port := range []int{0, -1, 65536} {
		_, err := c.Dial(ctx, "127.0.0.1", port)
		s.ErrorIs(err, merr.ErrAddressInvalid, "port %d", port)
		s.ErrorIs(err, merr.ErrParameterInvalid, "port %d", port)
	}

	_, err := c.Dial(ctx, "", 9870)
	s.ErrorIs(err, merr.ErrAddressInvalid)

	_, err = c.Dial(ctx, "not a host!", 9870)
	s.ErrorIs(err, merr.ErrAddressInvalid)
	s.ErrorIs(err, merr.ErrAddressUnresolved)
}

func TestUDPConnector(t *testing.T) {
	suite.Run(t, new(UDPConnectorSuite))
}

type fakeConn struct {
	written  [][]byte
	short    int
	err      error
	deadline time.Time
	closed   int
}

func (c *fakeConn) Write(b []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.written = append(c.written, append([]byte(nil), b...))
	if c.short > 0 {
		return len(b) - c.short, nil
	}
	return len(b), nil
}

func (c *fakeConn) SetWriteDeadline(t time.Time) error {
	c.deadline = t
	return nil
}

func (c *fakeConn) RemoteAddr() net.Addr {
	return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9870}
}

func (c *fakeConn) Close() error {
	c.closed++
	return nil
}

func TestShortWriteIsTransportError(t *testing.T) {
	conn := &fakeConn{short: 1}
	sink := newUDPSink(conn, "127.0.0.1:9870", 0)

	err := sink.Send(context.Background(), []byte("abcd"))
	assert.ErrorIs(t, err, merr.ErrTransportFailed)
	assert.ErrorIs(t, err, merr.ErrTransportShortWrite)
}

func TestWriteErrorKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	sink := newUDPSink(&fakeConn{err: cause}, "127.0.0.1:9870", 0)

	err := sink.Send(context.Background(), []byte("{}"))
	assert.ErrorIs(t, err, merr.ErrTransportFailed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, merr.Code(merr.ErrTransportFailed), merr.Code(err))
}

func TestWriteTimeoutBecomesDeadline(t *testing.T) {
	conn := &fakeConn{}
	sink := newUDPSink(conn, "127.0.0.1:9870", time.Minute)
	require.NoError(t, sink.Send(context.Background(), []byte("{}")))
	assert.WithinDuration(t, time.Now().Add(time.Minute), conn.deadline, 5*time.Second)

	sink = newUDPSink(conn, "127.0.0.1:9870", 0)
	require.NoError(t, sink.Send(context.Background(), []byte("{}")))
	assert.True(t, conn.deadline.IsZero())

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(time.Hour))
	defer cancel()
	require.NoError(t, sink.Send(ctx, []byte("{}")))
	d, _ := ctx.Deadline()
	assert.Equal(t, d, conn.deadline)
}

func TestInstrumentedSink(t *testing.T) {
	const dest = "instrumented-test"
	conn := &fakeConn{}
	sink := NewInstrumentedSink(newUDPSink(conn, "127.0.0.1:9870", 0), dest)

	require.NoError(t, sink.Send(context.Background(), []byte("12345")))
	require.NoError(t, sink.Send(context.Background(), []byte("123")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.PublishedDatagrams.WithLabelValues(dest)))
	assert.Equal(t, 8.0, testutil.ToFloat64(metrics.PublishedBytes.WithLabelValues(dest)))

	conn.err = errors.New("unreachable")
	assert.ErrorIs(t, sink.Send(context.Background(), []byte("1")), merr.ErrTransportFailed)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PublishFailures.WithLabelValues(dest, "send")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sink.Send(ctx, []byte("1")), context.Canceled)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.PublishFailures.WithLabelValues(dest, "send")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.PublishFailures.WithLabelValues(dest, stageUnknown)))
}

func TestLoggingSinkReturnsErrorUnchanged(t *testing.T) {
	lg, _, err := log.InitTestLogger(t, &log.Config{Level: "debug"})
	require.NoError(t, err)

	conn := &fakeConn{err: errors.New("unreachable")}
	sink := NewLoggingSink(newUDPSink(conn, "127.0.0.1:9870", 0), "logging-test")
	sink.SetLogger(&log.MLogger{Logger: lg})

	inner := newUDPSink(&fakeConn{err: conn.err}, "127.0.0.1:9870", 0)
	want := inner.Send(context.Background(), []byte("{}"))

	got := sink.Send(context.Background(), []byte("{}"))
	assert.ErrorIs(t, got, merr.ErrTransportFailed)
	assert.Equal(t, want.Error(), got.Error())

	conn.err = nil
	assert.NoError(t, sink.Send(context.Background(), []byte("{}")))
	assert.Equal(t, "127.0.0.1:9870", sink.RemoteAddr().String())
	assert.NoError(t, sink.Close())
	assert.Equal(t, 1, conn.closed)
}
