package config

import (
	"log/slog"
	"os"
	"path"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

type Config struct {
	Env               string           `mapstructure:"env"`
	LogLevel          string           `mapstructure:"log_level"`
	LogType           string           `mapstructure:"log_type"`
	ServiceName       string           `mapstructure:"service_name"`
	Port              string           `mapstructure:"port"`
	Version           string           `mapstructure:"version"`
	CorsMaxAgeHours   time.Duration    `mapstructure:"cors_max_age_hours"`
	RobotsApiUrlPath  string           `mapstructure:"robots_api_url_path"`
	MaxBodySize       int64            `mapstructure:"max_body_size"`
	CacheSettings     *CacheConfig     `mapstructure:"cache"`
	DbSettings        *DatabaseConfig  `mapstructure:"database"`
	TelemetrySettings *TelemetryConfig `mapstructure:"telemetry"`
	// Robots is kept raw and validated when a rule set is configured from it.
	Robots any `mapstructure:"robots"`
}

type CacheConfig struct {
	Servers         []string      `mapstructure:"servers"`
	TtlForRobotsTxt time.Duration `mapstructure:"ttl_for_robots_txt"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	CollectorUrl string `mapstructure:"collector_url"`
}

// MustLoad reads the config file. An empty file name means ./config.yaml.
func MustLoad(file string) *Config {
	if file != "" {
		viper.SetConfigFile(file)
	} else {
		viper.AddConfigPath(path.Join("."))
		viper.SetConfigName("config")
	}
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		slog.Error("can't initialize config file.", slog.String("err", err.Error()))
		os.Exit(1)
	}

	cfg, err := unmarshal()
	if err != nil {
		slog.Error("error unmarshalling viper config.", slog.String("err", err.Error()))
		os.Exit(1)
	}

	return cfg
}

// Watch calls onChange with the re-read config every time the config file is written.
// Configs that fail to unmarshal are logged and skipped.
func Watch(onChange func(*Config)) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		slog.Info("config file changed.", slog.String("file", e.Name), slog.String("op", e.Op.String()))
		cfg, err := unmarshal()
		if err != nil {
			slog.Error("error unmarshalling reloaded config.", slog.String("err", err.Error()))
			return
		}
		onChange(cfg)
	})
	viper.WatchConfig()
}

func unmarshal() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
