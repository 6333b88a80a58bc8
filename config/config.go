package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	ScoresDir  string `mapstructure:"scores_dir"`
	LogLevel   string `mapstructure:"log_level"`
	LogFile    string `mapstructure:"log_file"`
	Difficulty string `mapstructure:"difficulty"`
	Placement  string `mapstructure:"placement"`
	Seed       int64  `mapstructure:"seed"`
	HTTP       struct {
		Addr       string        `mapstructure:"addr"`
		SessionTTL time.Duration `mapstructure:"session_ttl"`
	} `mapstructure:"http"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scores_dir", "./scores")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "hexsweeper.log")
	v.SetDefault("difficulty", "Easy")
	v.SetDefault("placement", "rejection")
	v.SetDefault("seed", 0)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.session_ttl", 30*time.Minute)
}

// Load reads defaults, then the optional YAML file at path, then
// HEXSWEEPER_* environment variables (HEXSWEEPER_HTTP_ADDR for http.addr).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("hexsweeper")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// NewLogger builds the process logger. An empty file means stderr.
func NewLogger(level, file string) (*logrus.Logger, io.Closer, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level %q: %w", level, err)
	}
	log := logrus.New()
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if file == "" {
		log.SetOutput(os.Stderr)
		return log, nopCloser{}, nil
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file %s: %w", file, err)
	}
	log.SetOutput(f)
	return log, f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
