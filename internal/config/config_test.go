package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/seqgap/internal/core"
	"firestige.xyz/seqgap/internal/exchange"
)

// newFlagSet declares the same flags as the CLI.
func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("seqgap", pflag.ContinueOnError)
	fs.StringP("source", "s", "", "")
	fs.Bool("cme", false, "")
	fs.Bool("cboe", false, "")
	fs.Bool("ice", false, "")
	fs.StringP("output", "o", "", "")
	fs.Uint64P("begin", "b", 0, "")
	fs.Uint64P("end", "e", 0, "")
	fs.Uint64P("count", "c", 0, "")
	fs.String("report-format", "text", "")
	fs.Bool("gaps-only", false, "")
	fs.Bool("fail-on-gaps", false, "")
	fs.String("log-level", "info", "")
	fs.String("metrics-textfile", "", "")
	fs.String("metrics-listen", "", "")
	return fs
}

func loadArgs(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	fs := newFlagSet()
	require.NoError(t, fs.Parse(args))
	return Load("", fs)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seqgap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFlagsOnly(t *testing.T) {
	cfg, err := loadArgs(t, "-s", "in.pcap", "--cme")
	require.NoError(t, err)

	assert.Equal(t, "in.pcap", cfg.Source)
	assert.Equal(t, exchange.CME, cfg.Feed)
	assert.Nil(t, cfg.Window)
	assert.Nil(t, cfg.Output.End)
	assert.Nil(t, cfg.Output.Count)
	assert.Equal(t, "text", cfg.Report.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 10, cfg.Decoder.MalformedWarn.MaxPerSource)
	assert.Equal(t, time.Second, cfg.Decoder.MalformedWarn.Window)
	assert.Equal(t, uint32(65536), cfg.Output.Snaplen)
}

func TestLoadOutputWindow(t *testing.T) {
	t.Run("end", func(t *testing.T) {
		cfg, err := loadArgs(t, "-s", "in.pcap", "--cboe", "-o", "out.pcap", "-b", "100", "-e", "200")
		require.NoError(t, err)
		require.NotNil(t, cfg.Window)
		assert.Equal(t, uint64(100), cfg.Window.Begin)
		assert.Equal(t, uint64(200), cfg.Window.End)
	})

	t.Run("count", func(t *testing.T) {
		cfg, err := loadArgs(t, "-s", "in.pcap", "--ice", "-o", "out.pcap", "-b", "100", "-c", "5")
		require.NoError(t, err)
		require.NotNil(t, cfg.Window)
		assert.Equal(t, uint64(105), cfg.Window.End)
	})

	t.Run("explicit zero end", func(t *testing.T) {
		cfg, err := loadArgs(t, "-s", "in.pcap", "--cme", "-o", "out.pcap", "-e", "0")
		require.NoError(t, err)
		require.NotNil(t, cfg.Window)
		assert.Equal(t, uint64(0), cfg.Window.End)
	})
}

func TestLoadValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no source", []string{"--cme"}},
		{"no exchange", []string{"-s", "in.pcap"}},
		{"two exchanges", []string{"-s", "in.pcap", "--cme", "--ice"}},
		{"end and count", []string{"-s", "in.pcap", "--cme", "-o", "out.pcap", "-e", "10", "-c", "5"}},
		{"output without end or count", []string{"-s", "in.pcap", "--cme", "-o", "out.pcap"}},
		{"end before begin", []string{"-s", "in.pcap", "--cme", "-o", "out.pcap", "-b", "10", "-e", "5"}},
		{"end and count without output", []string{"-s", "in.pcap", "--cme", "-e", "10", "-c", "5"}},
		{"end without output", []string{"-s", "in.pcap", "--cme", "-e", "10"}},
		{"count without output", []string{"-s", "in.pcap", "--cme", "-c", "5"}},
		{"count overflows", []string{"-s", "in.pcap", "--cme", "-o", "out.pcap", "-b", "18446744073709551615", "-c", "2"}},
		{"bad report format", []string{"-s", "in.pcap", "--cme", "--report-format", "xml"}},
		{"bad log level", []string{"-s", "in.pcap", "--cme", "--log-level", "loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadArgs(t, tt.args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrConfigInvalid)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
source: /data/feed.pcapng
exchange:
  name: cboe
output:
  path: /tmp/window.pcap
  begin: 1000
  count: 50
report:
  format: json
  gaps_only: true
reporters:
  - type: kafka
    options:
      brokers: ["localhost:9092"]
      topic: seqgap-gaps
metrics:
  textfile: /var/lib/node_exporter/seqgap.prom
log:
  level: debug
  file:
    enabled: true
    filename: /tmp/seqgap.log
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "/data/feed.pcapng", cfg.Source)
	assert.Equal(t, exchange.CBOE, cfg.Feed)
	require.NotNil(t, cfg.Window)
	assert.Equal(t, uint64(1000), cfg.Window.Begin)
	assert.Equal(t, uint64(1050), cfg.Window.End)
	assert.Equal(t, "json", cfg.Report.Format)
	assert.True(t, cfg.Report.GapsOnly)
	require.Len(t, cfg.Reporters, 1)
	assert.Equal(t, "kafka", cfg.Reporters[0].Type)
	assert.Equal(t, "seqgap-gaps", cfg.Reporters[0].Options["topic"])
	assert.Equal(t, "/var/lib/node_exporter/seqgap.prom", cfg.Metrics.Textfile)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.File.Enabled)
	assert.Equal(t, 100, cfg.Log.File.MaxSize)
}

func TestFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, `
source: from-file.pcap
exchange:
  name: ice
report:
  format: yaml
`)

	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{"-s", "from-flag.pcap", "--report-format", "json"}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)
	assert.Equal(t, "from-flag.pcap", cfg.Source)
	assert.Equal(t, "json", cfg.Report.Format)
	assert.Equal(t, exchange.ICE, cfg.Feed)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("SEQGAP_SOURCE", "env.pcap")
	t.Setenv("SEQGAP_EXCHANGE_NAME", "cme")
	t.Setenv("SEQGAP_LOG_LEVEL", "warn")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "env.pcap", cfg.Source)
	assert.Equal(t, exchange.CME, cfg.Feed)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestExchangeNameAndFlag(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ExchangeConfig
		want    exchange.Exchange
		wantErr bool
	}{
		{"name only", ExchangeConfig{Name: "ICE"}, exchange.ICE, false},
		{"flag only", ExchangeConfig{CBOE: true}, exchange.CBOE, false},
		{"name repeats flag", ExchangeConfig{Name: "cme", CME: true}, exchange.CME, false},
		{"name conflicts with flag", ExchangeConfig{Name: "cme", ICE: true}, exchange.Unknown, true},
		{"unknown name", ExchangeConfig{Name: "nyse"}, exchange.Unknown, true},
		{"nothing", ExchangeConfig{}, exchange.Unknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.resolve()
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrConfigInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateReporterType(t *testing.T) {
	cfg := Config{
		Source:    "in.pcap",
		Exchange:  ExchangeConfig{CME: true},
		Reporters: []ReporterConfig{{Options: map[string]any{"topic": "x"}}},
	}
	assert.ErrorIs(t, cfg.Validate(), core.ErrConfigInvalid)
}

func TestValidateLogFileRequiresFilename(t *testing.T) {
	cfg := Config{Source: "in.pcap", Exchange: ExchangeConfig{CME: true}}
	cfg.Log.File.Enabled = true
	assert.ErrorIs(t, cfg.Validate(), core.ErrConfigInvalid)
}
