package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. SEQGAP_LOG_LEVEL.
const EnvPrefix = "SEQGAP"

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"source":           "source",
	"cme":              "exchange.cme",
	"cboe":             "exchange.cboe",
	"ice":              "exchange.ice",
	"output":           "output.path",
	"begin":            "output.begin",
	"end":              "output.end",
	"count":            "output.count",
	"report-format":    "report.format",
	"gaps-only":        "report.gaps_only",
	"fail-on-gaps":     "report.fail_on_gaps",
	"log-level":        "log.level",
	"metrics-textfile": "metrics.textfile",
	"metrics-listen":   "metrics.listen",
}

// Load builds the configuration from defaults, an optional YAML file,
// SEQGAP_* environment variables and flags, in increasing precedence, then
// validates it.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// end and count only count as given when set somewhere; flag defaults
	// do not make IsSet true.
	if v.IsSet("output.end") {
		end := v.GetUint64("output.end")
		cfg.Output.End = &end
	}
	if v.IsSet("output.count") {
		count := v.GetUint64("output.count")
		cfg.Output.Count = &count
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// setDefaults sets default values for configuration. output.end and
// output.count have no default.
func setDefaults(v *viper.Viper) {
	v.SetDefault("source", "")

	// Exchange selectors
	v.SetDefault("exchange.name", "")
	v.SetDefault("exchange.cme", false)
	v.SetDefault("exchange.cboe", false)
	v.SetDefault("exchange.ice", false)

	// Output defaults
	v.SetDefault("output.path", "")
	v.SetDefault("output.begin", 0)
	v.SetDefault("output.snaplen", 65536)

	// Report defaults
	v.SetDefault("report.format", "text")
	v.SetDefault("report.gaps_only", false)
	v.SetDefault("report.fail_on_gaps", false)

	// Decoder diagnostics
	v.SetDefault("decoder.malformed_warn.max_per_source", 10)
	v.SetDefault("decoder.malformed_warn.window", "1s")

	// Metrics defaults
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("metrics.listen", "")
	v.SetDefault("metrics.path", "/metrics")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pattern", "%time [%level] %msg %field%n")
	v.SetDefault("log.time", "2006-01-02 15:04:05.000")
	v.SetDefault("log.caller", false)
	v.SetDefault("log.file.enabled", false)
	v.SetDefault("log.file.filename", "")
	v.SetDefault("log.file.max_size", 100)
	v.SetDefault("log.file.max_backups", 5)
	v.SetDefault("log.file.max_age", 30)
	v.SetDefault("log.file.compress", true)
}
