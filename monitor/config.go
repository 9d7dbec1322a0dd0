package monitor

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config is read from the environment. Empty addresses disable the matching sink
type Config struct {
	SerialPort string `env:"SERIAL_PORT"`
	BaudRate   int    `env:"BAUD_RATE" envDefault:"115200"`

	RedisAddr    string `env:"REDIS_ADDR"`
	RedisKey     string `env:"REDIS_KEY" envDefault:"linefollower:state"`
	RedisChannel string `env:"REDIS_CHANNEL" envDefault:"linefollower:telemetry"`

	TWChartAddr string `env:"TWCHART_ADDR"`
	RunName     string `env:"RUN_NAME" envDefault:"line-follower"`

	MetricsAddr string `env:"METRICS_ADDR"`
	EnableUI    bool   `env:"ENABLE_UI"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// ConfigFromEnv parses Config from environment variables
func ConfigFromEnv() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("error parsing environment: %w", err)
	}
	return cfg, nil
}

// Logger builds the slog.Logger described by LogLevel and LogFormat
func (c Config) Logger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(c.LogFormat) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", c.LogFormat)
	}
}
