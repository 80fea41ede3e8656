package connector

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/atomic"

	"github.com/lk2023060901/danmu-garden-plotter/pkg/util/merr"
)

// Sink 抽象了一个已经确定目标地址的单向数据报通道。
//
// Send 是一次性的阻塞调用：要么完整写出，要么返回错误，不做重试与排队。
// 同一个 Sink 不保证并发安全，通常由单个 Publisher 独占使用。
type Sink interface {
	// Send 将 data 作为一个数据报写出。
	//
	// 写出失败、只写出部分字节或 ctx 已结束时返回 merr.ErrTransportFailed，
	// ctx 的错误仍可用 errors.Is 识别；ctx 带有 deadline 时作为本次写入的超时时间。
	// Sink 关闭后返回 merr.ErrServiceClosed。
	Send(ctx context.Context, data []byte) error

	// RemoteAddr 返回目标地址。
	RemoteAddr() net.Addr

	// Close 释放底层 socket，可重复调用。
	Close() error
}

// Connector 抽象了 Sink 的拨号器：在构造阶段一次性解析并校验目标地址。
type Connector interface {
	Dial(ctx context.Context, address string, port int) (Sink, error)
}

// Config 描述 UDP 连接的基础配置。
type Config struct {
	// WriteTimeout 为单次发送的默认超时；ctx 自带 deadline 时以 ctx 为准。
	// 为 0 表示不设置超时。
	WriteTimeout time.Duration
}

// 编译期断言：确保默认实现满足接口。
var (
	_ Connector = (*udpConnector)(nil)
	_ Sink      = (*udpSink)(nil)
)

// udpConnector 是基于 net.UDPConn 的默认 Connector 实现。
type udpConnector struct {
	cfg Config
}

// NewUDPConnector 创建一个基于 UDP 的 Connector。
func NewUDPConnector(cfg Config) Connector {
	if cfg.WriteTimeout < 0 {
		cfg.WriteTimeout = 0
	}
	return &udpConnector{cfg: cfg}
}

func (c *udpConnector) Dial(ctx context.Context, address string, port int) (Sink, error) {
	if address == "" {
		return nil, merr.WrapErrAddressInvalid(address, port, "empty address")
	}
	if port < 1 || port > 65535 {
		return nil, merr.Combine(
			merr.WrapErrAddressInvalid(address, port),
			merr.WrapErrParameterInvalidRange(1, 65535, port, "port out of range"),
		)
	}
	endpoint := net.JoinHostPort(address, strconv.Itoa(port))

	ip, err := resolveIP(ctx, address)
	if err != nil {
		return nil, merr.Combine(
			merr.WrapErrAddressInvalid(address, port),
			merr.WrapErrAddressUnresolved(endpoint, err),
		)
	}

	raddr := &net.UDPAddr{IP: ip, Port: port}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, merr.Combine(err, merr.WrapErrAddressInvalid(address, port, "open udp socket"))
	}
	return newUDPSink(conn, raddr.String(), c.cfg.WriteTimeout), nil
}

// resolveIP 优先直接解析字面 IP，其次走 DNS，并优先选择 IPv4 地址。
func resolveIP(ctx context.Context, address string) (net.IP, error) {
	if ip := net.ParseIP(address); ip != nil {
		return ip, nil
	}
	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, address)
	if err != nil {
		return nil, err
	}
	for _, a := range addrs {
		if v4 := a.IP.To4(); v4 != nil {
			return v4, nil
		}
	}
	if len(addrs) == 0 {
		return nil, errors.Newf("no address found for %s", address)
	}
	return addrs[0].IP, nil
}

// datagramConn 是 udpSink 依赖的最小连接能力，*net.UDPConn 满足该接口。
type datagramConn interface {
	Write(b []byte) (int, error)
	SetWriteDeadline(t time.Time) error
	RemoteAddr() net.Addr
	Close() error
}

// udpSink 是绑定到单个目标地址的 Sink 实现。
type udpSink struct {
	conn         datagramConn
	endpoint     string
	writeTimeout time.Duration

	closed atomic.Bool
}

func newUDPSink(conn datagramConn, endpoint string, writeTimeout time.Duration) *udpSink {
	return &udpSink{
		conn:         conn,
		endpoint:     endpoint,
		writeTimeout: writeTimeout,
	}
}

func (s *udpSink) Send(ctx context.Context, data []byte) error {
	if s.closed.Load() {
		return merr.WrapErrServiceClosed("udp sink " + s.endpoint)
	}
	if err := ctx.Err(); err != nil {
		return merr.WrapErrTransportFailed(s.endpoint, err)
	}

	var deadline time.Time
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	} else if s.writeTimeout > 0 {
		deadline = time.Now().Add(s.writeTimeout)
	}
	if err := s.conn.SetWriteDeadline(deadline); err != nil {
		return merr.WrapErrTransportFailed(s.endpoint, err)
	}

	n, err := s.conn.Write(data)
	if err != nil {
		return merr.WrapErrTransportFailed(s.endpoint, err)
	}
	if n != len(data) {
		return merr.WrapErrTransportFailed(s.endpoint, merr.WrapErrTransportShortWrite(s.endpoint, n, len(data)))
	}
	return nil
}

func (s *udpSink) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

func (s *udpSink) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.conn.Close()
}
