// Package config loads runtime settings from defaults, an optional YAML file, a .env file and
// WEATHERMAN_ prefixed environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/bryanwhiting/weatherman"
	"github.com/bryanwhiting/weatherman/backend/remote"
	"github.com/bryanwhiting/weatherman/dataset"
	"github.com/bryanwhiting/weatherman/request"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "WEATHERMAN"

var (
	ErrInvalidLogLevel  = errors.New("invalid log level")
	ErrInvalidLogFormat = errors.New("invalid log format")
)

type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Backend  string         `mapstructure:"backend"`
	Backtest BacktestConfig `mapstructure:"backtest"`
	Native   NativeConfig   `mapstructure:"native"`
	Remote   RemoteConfig   `mapstructure:"remote"`
	Demo     DemoConfig     `mapstructure:"demo"`
	Store    StoreConfig    `mapstructure:"store"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type BacktestConfig struct {
	Parallelism int `mapstructure:"parallelism"`
}

type NativeConfig struct {
	Models         []string `mapstructure:"models"`
	FourierOrders  int      `mapstructure:"fourier_orders"`
	Regularization float64  `mapstructure:"regularization"`
	Holidays       bool     `mapstructure:"holidays"`
	OutlierPasses  int      `mapstructure:"outlier_passes"`
}

type RemoteConfig struct {
	Endpoint    string        `mapstructure:"endpoint"`
	Timeout     time.Duration `mapstructure:"timeout"`
	HealthCheck bool          `mapstructure:"health_check"`
}

type DemoConfig struct {
	// Path to an M5 long format csv. The simulated dataset is used when empty.
	Path   string `mapstructure:"path"`
	Seed   uint64 `mapstructure:"seed"`
	Length int    `mapstructure:"length"`
}

type StoreConfig struct {
	IndexPath string `mapstructure:"index_path"`
}

// Load reads the configuration. path names an optional YAML file; an empty path looks for
// config.yaml in ./configs and the working directory and tolerates its absence.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("unable to load .env, %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("unable to read config, %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config, %w", err)
	}
	if _, err := cfg.SlogLevel(); err != nil {
		return nil, err
	}
	if f := strings.ToLower(cfg.Log.Format); f != "text" && f != "json" {
		return nil, fmt.Errorf("%q, %w", cfg.Log.Format, ErrInvalidLogFormat)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := weatherman.NewDefaultOptions()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("backend", string(request.BackendNative))
	v.SetDefault("backtest.parallelism", defaults.BacktestOptions.Parallelism)

	v.SetDefault("native.models", defaults.NativeOptions.Models)
	v.SetDefault("native.fourier_orders", defaults.NativeOptions.FourierOrders)
	v.SetDefault("native.regularization", defaults.NativeOptions.Regularization)
	v.SetDefault("native.holidays", defaults.NativeOptions.Holidays)
	v.SetDefault("native.outlier_passes", defaults.NativeOptions.OutlierPasses)

	v.SetDefault("remote.endpoint", "")
	v.SetDefault("remote.timeout", remote.DefaultTimeout)
	v.SetDefault("remote.health_check", false)

	v.SetDefault("demo.path", "")
	v.SetDefault("demo.seed", 0)
	v.SetDefault("demo.length", dataset.DefaultSimulatedLength)

	v.SetDefault("store.index_path", "")
}

// SlogLevel parses the configured log level
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return level, fmt.Errorf("%q, %w", c.Log.Level, ErrInvalidLogLevel)
	}
	return level, nil
}

// Options converts the configuration into forecaster options
func (c *Config) Options() (*weatherman.Options, error) {
	b, err := request.ParseBackend(c.Backend)
	if err != nil {
		return nil, err
	}

	opt := weatherman.NewDefaultOptions()
	opt.DefaultBackend = b
	opt.BacktestOptions.Parallelism = c.Backtest.Parallelism

	if len(c.Native.Models) > 0 {
		opt.NativeOptions.Models = c.Native.Models
	}
	opt.NativeOptions.FourierOrders = c.Native.FourierOrders
	opt.NativeOptions.Regularization = c.Native.Regularization
	opt.NativeOptions.Holidays = c.Native.Holidays
	opt.NativeOptions.OutlierPasses = c.Native.OutlierPasses
	if _, err := opt.NativeOptions.Validate(); err != nil {
		return nil, fmt.Errorf("invalid native config, %w", err)
	}

	opt.RemoteOptions = &remote.Options{
		Endpoint:    c.Remote.Endpoint,
		Timeout:     c.Remote.Timeout,
		HealthCheck: c.Remote.HealthCheck,
	}

	if c.Demo.Path != "" {
		opt.Demo = &dataset.M5CSV{Path: c.Demo.Path}
	} else {
		opt.Demo = &dataset.Simulated{Seed: c.Demo.Seed, Length: c.Demo.Length}
	}
	return opt, nil
}
