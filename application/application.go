package application

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/lk2023060901/danmu-garden-plotter/internal/json"
	"github.com/lk2023060901/danmu-garden-plotter/internal/network/connector"
	"github.com/lk2023060901/danmu-garden-plotter/internal/plotter/publisher"
	zlog "github.com/lk2023060901/danmu-garden-plotter/pkg/log"
	"github.com/lk2023060901/danmu-garden-plotter/pkg/metrics"
	zviper "github.com/lk2023060901/danmu-garden-plotter/pkg/util/viper"
)

const (
	defaultConfigPath = "./config.yaml"

	// publisherLoggerName 是发送失败日志使用的模块 Logger 名称（logging 段的 key）。
	publisherLoggerName = "publisher"
)

// Application is the main runtime container for a plotter client.
// It owns configuration and builds one Publisher per configured destination.
type Application struct {
	configPath   string
	destinations []Destination
	fallback     *Destination

	cfg     *zviper.Config
	loggers map[string]*zlog.MLogger

	plotter PlotterConfig
	metrics MetricsConfig
}

// Option configures an Application.
type Option func(*Application)

// WithConfigPath sets the config file path explicitly, overriding the
// default and PLOTTER_CONFIG_FILE_PATH.
func WithConfigPath(path string) Option {
	return func(a *Application) {
		a.configPath = path
	}
}

// WithDestinations replaces the destinations read from the config file.
func WithDestinations(destinations ...Destination) Option {
	return func(a *Application) {
		a.destinations = append([]Destination(nil), destinations...)
	}
}

// WithDefaultDestination is used when neither the config file nor
// WithDestinations provides any destination.
func WithDefaultDestination(d Destination) Option {
	return func(a *Application) {
		a.fallback = &d
	}
}

// New creates a new Application instance.
func New(opts ...Option) *Application {
	a := &Application{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run loads configuration and initializes logging and metrics.
// The config file path is resolved using the following priority:
//  1. Default: ./config.yaml (optional, skipped when missing)
//  2. Env: PLOTTER_CONFIG_FILE_PATH
//  3. Explicit: WithConfigPath
func (a *Application) Run() error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := a.initLogging(); err != nil {
		return err
	}
	if err := a.initPlotter(); err != nil {
		return err
	}
	if a.metrics.Enabled {
		metrics.Register(metrics.GetRegisterer())
	}

	zlog.Info("plotter application started",
		zap.String("config", a.configPath),
		zap.Int("destinations", len(a.plotter.Destinations)),
		zap.Bool("strict", a.plotter.Strict),
		zap.Bool("metrics", a.metrics.Enabled))
	return nil
}

// Config returns the loaded configuration, if any.
func (a *Application) Config() *zviper.Config {
	return a.cfg
}

// PlotterConfig returns the effective plotter section after Run.
func (a *Application) PlotterConfig() PlotterConfig {
	return a.plotter
}

// MetricsEnabled reports whether prometheus collectors were registered.
func (a *Application) MetricsEnabled() bool {
	return a.metrics.Enabled
}

// DumpConfig renders the effective plotter and metrics sections as JSON.
// WriteTimeout is encoded in nanoseconds.
func (a *Application) DumpConfig() ([]byte, error) {
	return json.Marshal(struct {
		Plotter PlotterConfig `json:"plotter"`
		Metrics MetricsConfig `json:"metrics"`
	}{a.plotter, a.metrics})
}

// Logger returns a named logger created from configuration.
// If the name is unknown, it falls back to the global logger.
func (a *Application) Logger(name string) *zlog.MLogger {
	if a.loggers == nil {
		return &zlog.MLogger{Logger: zlog.L()}
	}
	if lg, ok := a.loggers[name]; ok && lg != nil {
		return lg
	}
	return &zlog.MLogger{Logger: zlog.L()}
}

// NamedPublisher pairs a Publisher with the destination it was built for.
type NamedPublisher struct {
	Destination Destination
	*publisher.Publisher
}

// Publishers dials every configured destination and returns one Publisher
// per destination, in configuration order. Each sink is wrapped with
// failure logging and, when enabled, prometheus instrumentation.
// On error, publishers created so far are closed.
func (a *Application) Publishers(ctx context.Context) ([]NamedPublisher, error) {
	dialer := connector.NewUDPConnector(connector.Config{WriteTimeout: a.plotter.WriteTimeout})
	opts := []publisher.Option{
		publisher.WithInitialSizeHint(a.plotter.SizeHint),
		publisher.WithStrict(a.plotter.Strict),
	}

	pubs := make([]NamedPublisher, 0, len(a.plotter.Destinations))
	for _, d := range a.plotter.Destinations {
		sink, err := dialer.Dial(ctx, d.Address, d.Port)
		if err != nil {
			closeAll(pubs)
			return nil, errors.Wrapf(err, "dial destination %q", d.Label())
		}
		if a.metrics.Enabled {
			sink = connector.NewInstrumentedSink(sink, d.Label())
		}
		logged := connector.NewLoggingSink(sink, d.Label())
		if lg, ok := a.loggers[publisherLoggerName]; ok {
			logged.SetLogger(lg.With(zlog.FieldComponent("sink"), zlog.FieldDestination(d.Label())))
		}

		pubs = append(pubs, NamedPublisher{
			Destination: d,
			Publisher:   publisher.NewWithSink(logged, opts...),
		})
		zlog.Info("publisher ready", zlog.FieldDestination(d.Label()), zap.String("address", logged.RemoteAddr().String()))
	}
	return pubs, nil
}

func closeAll(pubs []NamedPublisher) {
	for _, p := range pubs {
		_ = p.Close()
	}
}

// loadConfig resolves config file path and loads it via viper wrapper.
// A missing default file is not an error; an explicit one is.
func (a *Application) loadConfig() (*zviper.Config, error) {
	configPath := defaultConfigPath
	explicit := false

	if envPath := os.Getenv("PLOTTER_CONFIG_FILE_PATH"); envPath != "" {
		configPath = envPath
		explicit = true
	}
	if a.configPath != "" {
		configPath = a.configPath
		explicit = true
	}
	a.configPath = configPath

	if !explicit {
		if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
	}

	cfg := zviper.New()
	if err := cfg.LoadFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file %q: %w", configPath, err)
	}

	return cfg, nil
}

// initPlotter reads the plotter and metrics sections; destinations passed
// through WithDestinations take precedence over the file.
func (a *Application) initPlotter() error {
	if a.cfg != nil {
		if err := a.cfg.UnmarshalKey("plotter", &a.plotter); err != nil {
			return fmt.Errorf("parse plotter section: %w", err)
		}
		if err := a.cfg.UnmarshalKey("metrics", &a.metrics); err != nil {
			return fmt.Errorf("parse metrics section: %w", err)
		}
	}
	if len(a.destinations) > 0 {
		a.plotter.Destinations = a.destinations
	}
	if len(a.plotter.Destinations) == 0 && a.fallback != nil {
		a.plotter.Destinations = []Destination{*a.fallback}
	}
	return a.plotter.validate()
}

// initLogging initializes global and module-level loggers.
func (a *Application) initLogging() error {
	if err := a.initGlobalLoggerFromEnv(); err != nil {
		return err
	}
	if err := a.initModuleLoggersFromConfig(); err != nil {
		return err
	}
	return nil
}

// initGlobalLoggerFromEnv configures the process-wide logger based on PLOTTER_LOG_* env vars.
//
// Priority:
//   - PLOTTER_LOG_ENABLE: "1"/"true" to enable outputs; others treated as disabled.
//   - PLOTTER_LOG_LEVEL: log level (default "info").
//   - PLOTTER_LOG_STDOUT: whether to log to stdout (default false).
//   - PLOTTER_LOG_FILE_DIR: log directory.
//   - PLOTTER_LOG_FILE: log file name (empty means no file).
//   - PLOTTER_LOG_FORMAT: log format ("text" or "json", default "text").
func (a *Application) initGlobalLoggerFromEnv() error {
	enabled := getenvBool("PLOTTER_LOG_ENABLE", false)

	cfg := &zlog.Config{
		Level:             getenvDefault("PLOTTER_LOG_LEVEL", "info"),
		Format:            getenvDefault("PLOTTER_LOG_FORMAT", "text"),
		DisableTimestamp:  false,
		Stdout:            getenvBool("PLOTTER_LOG_STDOUT", false),
		DisableCaller:     false,
		DisableStacktrace: false,
		File: zlog.FileLogConfig{
			RootPath: getenvDefault("PLOTTER_LOG_FILE_DIR", ""),
			Filename: getenvDefault("PLOTTER_LOG_FILE", ""),
		},
	}

	// When not enabled, direct all outputs to a discarded sink.
	if !enabled {
		cfg.Stdout = false
		cfg.File.Filename = ""
	}

	logger, props, err := zlog.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("init global logger from env: %w", err)
	}
	zlog.ReplaceGlobals(logger, props)
	return nil
}

// initModuleLoggersFromConfig creates named loggers from YAML config under "logging" key.
//
// Example:
//
//	logging:
//	  publisher:
//	    level: debug
//	    stdout: true
//	    file:
//	      rootpath: ./logs
//	      filename: publisher.log
func (a *Application) initModuleLoggersFromConfig() error {
	if a.cfg == nil {
		return nil
	}

	raw := make(map[string]zlog.Config)
	if err := a.cfg.UnmarshalKey("logging", &raw); err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}

	a.loggers = make(map[string]*zlog.MLogger, len(raw))
	for name, lc := range raw {
		cfgCopy := lc
		logger, _, err := zlog.InitLogger(&cfgCopy)
		if err != nil {
			return fmt.Errorf("init module logger %q: %w", name, err)
		}
		a.loggers[name] = &zlog.MLogger{Logger: logger.With(zlog.FieldModule(name))}
	}

	return nil
}

func getenvDefault(key, def string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	return val
}

func getenvBool(key string, def bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	switch strings.ToLower(val) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}
