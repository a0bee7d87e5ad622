// Package config handles configuration loading using viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"firestige.xyz/seqgap/internal/core"
	"firestige.xyz/seqgap/internal/exchange"
	"firestige.xyz/seqgap/internal/log"
	"firestige.xyz/seqgap/internal/selection"
)

// Config is the complete configuration of one analysis run.
type Config struct {
	Source    string           `mapstructure:"source"`
	Exchange  ExchangeConfig   `mapstructure:"exchange"`
	Output    OutputConfig     `mapstructure:"output"`
	Report    ReportConfig     `mapstructure:"report"`
	Reporters []ReporterConfig `mapstructure:"reporters"`
	Decoder   DecoderConfig    `mapstructure:"decoder"`
	Metrics   MetricsConfig    `mapstructure:"metrics"`
	Log       log.Config       `mapstructure:"log"`

	// Resolved by Validate.
	Feed   exchange.Exchange `mapstructure:"-"`
	Window *selection.Window `mapstructure:"-"`
}

// ─── Exchange ───

// ExchangeConfig selects the payload layout. The boolean selectors mirror the
// --cme/--cboe/--ice flags; Name is the config-file form ("cme", "cboe", "ice").
type ExchangeConfig struct {
	Name string `mapstructure:"name"`
	CME  bool   `mapstructure:"cme"`
	CBOE bool   `mapstructure:"cboe"`
	ICE  bool   `mapstructure:"ice"`
}

// ─── Output capture ───

// OutputConfig selects packets for the output capture. End and Count are nil
// unless explicitly configured.
type OutputConfig struct {
	Path    string  `mapstructure:"path"`
	Begin   uint64  `mapstructure:"begin"`
	End     *uint64 `mapstructure:"-"`
	Count   *uint64 `mapstructure:"-"`
	Snaplen uint32  `mapstructure:"snaplen"`
}

// ─── Reporting ───

// ReportConfig configures the built-in console reporter on stdout.
type ReportConfig struct {
	Format     string `mapstructure:"format"` // text / json / yaml
	GapsOnly   bool   `mapstructure:"gaps_only"`
	FailOnGaps bool   `mapstructure:"fail_on_gaps"`
}

// ReporterConfig declares an additional reporter by registered type.
type ReporterConfig struct {
	Type    string         `mapstructure:"type"`
	Options map[string]any `mapstructure:"options"`
}

// ─── Decoder ───

// DecoderConfig tunes per-packet decode diagnostics.
type DecoderConfig struct {
	MalformedWarn MalformedWarnConfig `mapstructure:"malformed_warn"`
}

// MalformedWarnConfig limits malformed-UDP warnings per source address over
// capture time. MaxPerSource 0 disables the limit.
type MalformedWarnConfig struct {
	MaxPerSource int           `mapstructure:"max_per_source"`
	Window       time.Duration `mapstructure:"window"`
}

// ─── Metrics ───

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"` // written once when the run ends
	Listen   string `mapstructure:"listen"`   // empty = no HTTP exposition
	Path     string `mapstructure:"path"`
}

var (
	validFormats = map[string]bool{"text": true, "json": true, "yaml": true}
	validLevels  = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true}
)

// Validate checks the configuration and resolves Feed and Window. Every
// error wraps core.ErrConfigInvalid.
func (cfg *Config) Validate() error {
	if strings.TrimSpace(cfg.Source) == "" {
		return fmt.Errorf("%w: source capture file is required", core.ErrConfigInvalid)
	}

	feed, err := cfg.Exchange.resolve()
	if err != nil {
		return err
	}
	cfg.Feed = feed

	cfg.Window = nil
	if cfg.Output.Path != "" {
		w, err := selection.NewWindow(cfg.Output.Begin, cfg.Output.End, cfg.Output.Count)
		if err != nil {
			return err
		}
		cfg.Window = &w
	} else if cfg.Output.End != nil || cfg.Output.Count != nil {
		return fmt.Errorf("%w: end/count require output", core.ErrConfigInvalid)
	}

	cfg.Report.Format = strings.ToLower(cfg.Report.Format)
	if cfg.Report.Format == "" {
		cfg.Report.Format = "text"
	}
	if !validFormats[cfg.Report.Format] {
		return fmt.Errorf("%w: invalid report format %q (must be text/json/yaml)", core.ErrConfigInvalid, cfg.Report.Format)
	}

	if cfg.Log.Level != "" && !validLevels[strings.ToLower(cfg.Log.Level)] {
		return fmt.Errorf("%w: invalid log level %q (must be trace/debug/info/warn/error)", core.ErrConfigInvalid, cfg.Log.Level)
	}
	if cfg.Log.File.Enabled && cfg.Log.File.Filename == "" {
		return fmt.Errorf("%w: log.file.filename is required when log.file.enabled=true", core.ErrConfigInvalid)
	}

	for i, r := range cfg.Reporters {
		if r.Type == "" {
			return fmt.Errorf("%w: reporters[%d].type is required", core.ErrConfigInvalid, i)
		}
	}

	if cfg.Decoder.MalformedWarn.MaxPerSource < 0 {
		return fmt.Errorf("%w: decoder.malformed_warn.max_per_source must not be negative", core.ErrConfigInvalid)
	}

	return nil
}

// resolve combines the selectors and the name. The name may repeat the
// selected flag but never name a second exchange.
func (e ExchangeConfig) resolve() (exchange.Exchange, error) {
	if e.Name == "" {
		return exchange.Select(e.CME, e.CBOE, e.ICE)
	}
	named, err := exchange.Parse(e.Name)
	if err != nil {
		return exchange.Unknown, err
	}
	if !e.CME && !e.CBOE && !e.ICE {
		return named, nil
	}
	flagged, err := exchange.Select(e.CME, e.CBOE, e.ICE)
	if err != nil {
		return exchange.Unknown, err
	}
	if flagged != named {
		return exchange.Unknown, fmt.Errorf("%w: exchange %s conflicts with --%s", core.ErrConfigInvalid, named, flagged)
	}
	return named, nil
}
