package config

import (
	"flag"
	"os"

	"codeberg.org/seliv/tempwatch/internal/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Defaults for the sampling and alerting state machine. Thresholds are in
// degrees Celsius; intervals and timeouts in seconds.
const (
	DefaultInterval      = 3
	DefaultSampleTimeout = 10
	DefaultCPUThreshold  = 90.0
	DefaultGPUThreshold  = 85.0
	DefaultSSDThreshold  = 70.0
	DefaultConfirmations = 2
	DefaultCooldown      = 60
	DefaultSource        = "auto"
)

type Config struct {
	Interval           int     `mapstructure:"interval"`
	SampleTimeout      int     `mapstructure:"sample_timeout"`
	CPUThreshold       float64 `mapstructure:"cpu_threshold"`
	GPUThreshold       float64 `mapstructure:"gpu_threshold"`
	SSDThreshold       float64 `mapstructure:"ssd_threshold"`
	AlertConfirmations int     `mapstructure:"alert_confirmations"`
	Cooldown           int     `mapstructure:"cooldown"`
	Source             string  `mapstructure:"source"`
	LHMScript          string  `mapstructure:"lhm_script"`
	LHMDLL             string  `mapstructure:"lhm_dll"`
	Events             bool    `mapstructure:"events"`
	EventsDB           string  `mapstructure:"events_db"`
	Debug              bool    `mapstructure:"debug"`
	Verbose            bool    `mapstructure:"verbose"`
}

// flagKeys maps flag names to their config file keys. Only flags listed
// here are forwarded to viper.
var flagKeys = map[string]string{
	"debug":               "debug",
	"verbose":             "verbose",
	"interval":            "interval",
	"sample-timeout":      "sample_timeout",
	"cpu-threshold":       "cpu_threshold",
	"gpu-threshold":       "gpu_threshold",
	"ssd-threshold":       "ssd_threshold",
	"alert-confirmations": "alert_confirmations",
	"cooldown":            "cooldown",
	"source":              "source",
	"lhm-script":          "lhm_script",
	"lhm-dll":             "lhm_dll",
	"events":              "events",
	"events-db":           "events_db",
}

func Load() (*Config, error) {
	errFactory := errors.New()
	config := &Config{}

	defineFlags()
	flag.Parse()

	v := viper.New()
	setDefaults(v)

	// Load configuration from file
	if path := os.Getenv("TEMPWATCH_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("tempwatch")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, errFactory.WithMessage(errors.ErrReadConfig, "Failed to read config file").WithData(err.Error())
			}
		}
	}

	// Override config file values with explicitly set command line flags
	flag.Visit(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			v.Set(key, f.Value.String())
		}
	})

	// Unmarshal the configuration
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Set log level based on config
	if config.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else if config.Verbose {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}

	return config, nil
}

// Validate checks ranges that would break the poll loop or the tracker.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}
	if c.SampleTimeout <= 0 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "sample_timeout must be positive").WithData(c.SampleTimeout)
	}
	if c.AlertConfirmations < 1 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "alert_confirmations must be at least 1").WithData(c.AlertConfirmations)
	}
	if c.CPUThreshold <= 0 || c.GPUThreshold <= 0 || c.SSDThreshold <= 0 {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "thresholds must be positive")
	}
	switch c.Source {
	case "lhm", "nvml", "host", "auto":
	default:
		return errFactory.WithMessage(errors.ErrInvalidConfig, "unknown sensor source").WithData(c.Source)
	}
	if c.Events && c.EventsDB == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "events_db required when events are enabled")
	}

	return nil
}

// defineFlags registers the command line flags once; Load may be called
// more than once in tests.
func defineFlags() {
	if flag.Lookup("interval") != nil {
		return
	}

	flag.Bool("debug", false, "Enable debugging mode")
	flag.Bool("verbose", false, "Enable verbose logging")
	flag.Int("interval", DefaultInterval, "Seconds between polling cycles")
	flag.Int("sample-timeout", DefaultSampleTimeout, "Seconds before a sensor sample is abandoned")
	flag.Float64("cpu-threshold", DefaultCPUThreshold, "Critical CPU temperature")
	flag.Float64("gpu-threshold", DefaultGPUThreshold, "Critical GPU temperature")
	flag.Float64("ssd-threshold", DefaultSSDThreshold, "Critical storage temperature")
	flag.Int("alert-confirmations", DefaultConfirmations, "Consecutive critical readings before an alert")
	flag.Int("cooldown", DefaultCooldown, "Seconds between repeated notifications for a still-critical component")
	flag.String("source", DefaultSource, "Sensor source: lhm, nvml, host or auto")
	flag.String("lhm-script", "", "Path to the LibreHardwareMonitor bridge script")
	flag.String("lhm-dll", "", "Path to LibreHardwareMonitorLib.dll")
	flag.Bool("events", false, "Record alert transitions to the events database")
	flag.String("events-db", "", "Path to the events database")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("sample_timeout", DefaultSampleTimeout)
	v.SetDefault("cpu_threshold", DefaultCPUThreshold)
	v.SetDefault("gpu_threshold", DefaultGPUThreshold)
	v.SetDefault("ssd_threshold", DefaultSSDThreshold)
	v.SetDefault("alert_confirmations", DefaultConfirmations)
	v.SetDefault("cooldown", DefaultCooldown)
	v.SetDefault("source", DefaultSource)
	v.SetDefault("lhm_script", "")
	v.SetDefault("lhm_dll", "")
	v.SetDefault("events", false)
	v.SetDefault("events_db", "")
}
