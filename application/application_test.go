package application

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/lk2023060901/danmu-garden-plotter/internal/plotter/value"
	"github.com/lk2023060901/danmu-garden-plotter/pkg/util/merr"
)

type ApplicationSuite struct {
	suite.Suite

	dir      string
	listener *net.UDPConn
	port     int
}

func (s *ApplicationSuite) SetupTest() {
	s.dir = s.T().TempDir()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	s.Require().NoError(err)
	s.listener = conn
	s.port = conn.LocalAddr().(*net.UDPAddr).Port
}

func (s *ApplicationSuite) TearDownTest() {
	s.listener.Close()
}

func (s *ApplicationSuite) writeConfig(content string) string {
	path := filepath.Join(s.dir, "config.yaml")
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (s *ApplicationSuite) TestPublishersFromConfig() {
	path := s.writeConfig(`
plotter:
  destinations:
    - name: local
      address: 127.0.0.1
      port: ` + strconv.Itoa(s.port) + `
  size_hint: 64
  strict: true
  write_timeout: 1s
logging:
  publisher:
    level: debug
metrics:
  enabled: true
`)
	app := New(WithConfigPath(path))
	s.Require().NoError(app.Run())

	cfg := app.PlotterConfig()
	s.Equal(64, cfg.SizeHint)
	s.True(cfg.Strict)
	s.Equal(time.Second, cfg.WriteTimeout)
	s.True(app.MetricsEnabled())
	s.NotNil(app.Config())
	s.NotNil(app.Logger("publisher"))
	s.NotNil(app.Logger("unknown"))

	dump, err := app.DumpConfig()
	s.Require().NoError(err)
	s.JSONEq(`{
		"plotter": {
			"destinations": [{"name": "local", "address": "127.0.0.1", "port": `+strconv.Itoa(s.port)+`}],
			"size_hint": 64,
			"strict": true,
			"write_timeout": 1000000000
		},
		"metrics": {"enabled": true}
	}`, string(dump))

	pubs, err := app.Publishers(context.Background())
	s.Require().NoError(err)
	s.Require().Len(pubs, 1)
	defer pubs[0].Close()

	s.Equal("local", pubs[0].Destination.Label())
	s.Equal(64, pubs[0].SizeHint())
	s.Equal("127.0.0.1:"+strconv.Itoa(s.port), pubs[0].Address())

	s.Require().NoError(pubs[0].PublishRaw(context.Background(), "v", 1.5))
	buf := make([]byte, 1024)
	s.Require().NoError(s.listener.SetReadDeadline(time.Now().Add(2 * time.Second)))
	n, _, err := s.listener.ReadFromUDP(buf)
	s.Require().NoError(err)
	s.Equal(`{"v":1.5}`, string(buf[:n]))

	// strict 模式下非法字符串不会被发送。
	err = pubs[0].PublishNode(context.Background(), value.NewStr("s", "a\"b"))
	s.ErrorIs(err, merr.ErrEncodingInvalid)
}

func (s *ApplicationSuite) TestDestinationsOverride() {
	path := s.writeConfig(`
plotter:
  destinations:
    - address: 127.0.0.1
      port: 1
`)
	app := New(WithConfigPath(path), WithDestinations(Destination{Address: "127.0.0.1", Port: s.port}))
	s.Require().NoError(app.Run())

	pubs, err := app.Publishers(context.Background())
	s.Require().NoError(err)
	s.Require().Len(pubs, 1)
	defer pubs[0].Close()
	s.Equal("127.0.0.1:"+strconv.Itoa(s.port), pubs[0].Destination.Label())
}

func (s *ApplicationSuite) TestInvalidDestinations() {
	cases := []string{
		"plotter:\n  destinations:\n    - address: 127.0.0.1\n      port: 0\n",
		"plotter:\n  destinations:\n    - port: 9870\n",
		"plotter:\n  destinations:\n    - {name: a, address: 127.0.0.1, port: 1}\n    - {name: a, address: 127.0.0.1, port: 2}\n",
		"plotter:\n  size_hint: -1\n",
	}
	for _, c := range cases {
		app := New(WithConfigPath(s.writeConfig(c)))
		s.Error(app.Run(), c)
	}
}

func (s *ApplicationSuite) TestExplicitMissingConfig() {
	app := New(WithConfigPath(filepath.Join(s.dir, "missing.yaml")))
	s.Error(app.Run())
}

func (s *ApplicationSuite) TestEnvConfigPath() {
	path := s.writeConfig("plotter:\n  size_hint: 128\n")
	s.T().Setenv("PLOTTER_CONFIG_FILE_PATH", path)

	app := New()
	s.Require().NoError(app.Run())
	s.Equal(128, app.PlotterConfig().SizeHint)
	s.False(app.MetricsEnabled())
}

func TestApplication(t *testing.T) {
	suite.Run(t, new(ApplicationSuite))
}

func TestDestinationLabel(t *testing.T) {
	assert.Equal(t, "named", Destination{Name: "named", Address: "127.0.0.1", Port: 1}.Label())
	assert.Equal(t, "127.0.0.1:9870", Destination{Address: "127.0.0.1", Port: 9870}.Label())
	assert.Equal(t, "[::1]:9870", Destination{Address: "::1", Port: 9870}.Label())
}

func TestDefaultDestination(t *testing.T) {
	t.Chdir(t.TempDir())
	fallback := Destination{Address: "127.0.0.1", Port: 9870}

	app := New(WithDefaultDestination(fallback))
	require.NoError(t, app.Run())
	assert.Equal(t, []Destination{fallback}, app.PlotterConfig().Destinations)

	explicit := Destination{Address: "127.0.0.1", Port: 9871}
	app = New(WithDefaultDestination(fallback), WithDestinations(explicit))
	require.NoError(t, app.Run())
	assert.Equal(t, []Destination{explicit}, app.PlotterConfig().Destinations)
}

func TestDefaultConfigIsOptional(t *testing.T) {
	t.Chdir(t.TempDir())
	app := New(WithDestinations(Destination{Address: "127.0.0.1", Port: 9870}))
	require.NoError(t, app.Run())
	assert.Nil(t, app.Config())
	assert.Len(t, app.PlotterConfig().Destinations, 1)
}
