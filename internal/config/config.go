// Package config handles configuration for the accounts service, including
// defaults, a TOML file, a .env file and NA__-prefixed environment variables.
package config

import "time"

// Config holds runtime settings for the accounts service.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Hashing  HashingConfig  `mapstructure:"hashing"`
	Log      LogConfig      `mapstructure:"log"`
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver       string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	URL          string `mapstructure:"url" validate:"required"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=0"`
}

type HTTPConfig struct {
	ListenHost      string        `mapstructure:"listen_host" validate:"required"`
	ListenPort      int           `mapstructure:"listen_port" validate:"required,min=1,max=65535"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type JWTConfig struct {
	// Secret signs and verifies every token. At least 32 bytes.
	Secret string `mapstructure:"secret" validate:"required,min=32"`
}

type HashingConfig struct {
	// Workers bounds concurrent password hashes; 0 means GOMAXPROCS.
	Workers int `mapstructure:"workers" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// defaults are applied before the file and the environment.
var defaults = map[string]any{
	"database.driver":         "postgres",
	"database.url":            "",
	"database.max_open_conns": 10,
	"http.listen_host":        "127.0.0.1",
	"http.listen_port":        8080,
	"http.request_timeout":    30 * time.Second,
	"http.shutdown_timeout":   10 * time.Second,
	"jwt.secret":              "",
	"hashing.workers":         0,
	"log.level":               "info",
	"log.format":              "json",
}
