package application

import (
	"net"
	"strconv"
	"time"

	"github.com/samber/lo"

	"github.com/lk2023060901/danmu-garden-plotter/pkg/util/merr"
)

// Destination 描述一个绘图端地址。
type Destination struct {
	// Name 用于日志与指标标签，留空时取 address:port。
	Name    string `mapstructure:"name" json:"name,omitempty"`
	Address string `mapstructure:"address" json:"address"`
	Port    int    `mapstructure:"port" json:"port"`
}

// Label 返回用于日志与指标的目标名称。
func (d Destination) Label() string {
	if d.Name != "" {
		return d.Name
	}
	return net.JoinHostPort(d.Address, strconv.Itoa(d.Port))
}

// PlotterConfig 对应配置文件中的 plotter 段。
//
//	plotter:
//	  destinations:
//	    - name: plotjuggler
//	      address: 127.0.0.1
//	      port: 9870
//	  size_hint: 256
//	  strict: false
//	  write_timeout: 0s
type PlotterConfig struct {
	Destinations []Destination `mapstructure:"destinations" json:"destinations"`
	SizeHint     int           `mapstructure:"size_hint" json:"size_hint"`
	Strict       bool          `mapstructure:"strict" json:"strict"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" json:"write_timeout"`
}

// MetricsConfig 对应配置文件中的 metrics 段。
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`
}

func (c *PlotterConfig) validate() error {
	if c.SizeHint < 0 {
		return merr.WrapErrParameterInvalidRange(0, 1<<16, c.SizeHint, "plotter.size_hint")
	}
	if c.WriteTimeout < 0 {
		return merr.WrapErrParameterInvalid(time.Duration(0), c.WriteTimeout, "plotter.write_timeout must not be negative")
	}
	for _, d := range c.Destinations {
		if d.Address == "" {
			return merr.WrapErrParameterMissing("plotter.destinations[].address")
		}
		if d.Port < 1 || d.Port > 65535 {
			return merr.WrapErrAddressInvalid(d.Address, d.Port, "plotter.destinations[].port out of range")
		}
	}
	labels := lo.Map(c.Destinations, func(d Destination, _ int) string { return d.Label() })
	if dup := lo.FindDuplicates(labels); len(dup) > 0 {
		return merr.WrapErrParameterInvalid("unique destination name", dup[0])
	}
	return nil
}
