package config

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultConfigFile = "config/default.toml"
	DefaultEnvFile    = ".env"

	envPrefix = "NA"
)

// LoaderConfig holds optional file overrides.
type LoaderConfig struct {
	ConfigFile string
	EnvFile    string
	// Explicit files must exist; the defaults may be absent.
	ConfigFileRequired bool
	EnvFileRequired    bool
}

// ParseFlags reads --config/-c and --env-file from args.
func ParseFlags(name string, args []string) (LoaderConfig, error) {
	fset := pflag.NewFlagSet(name, pflag.ContinueOnError)
	configFile := fset.StringP("config", "c", DefaultConfigFile, "path to the TOML configuration file")
	envFile := fset.String("env-file", DefaultEnvFile, "path to a .env file loaded into the environment")

	if err := fset.Parse(args); err != nil {
		return LoaderConfig{}, err
	}

	return LoaderConfig{
		ConfigFile:         *configFile,
		EnvFile:            *envFile,
		ConfigFileRequired: fset.Changed("config"),
		EnvFileRequired:    fset.Changed("env-file"),
	}, nil
}

// Load builds a Config by applying defaults, then the config file, then the
// environment (a .env file never overrides variables already set), and
// validates the result.
func Load(lc LoaderConfig) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if lc.ConfigFile != "" {
		v.SetConfigFile(lc.ConfigFile)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			if lc.ConfigFileRequired || !isNotExist(err) {
				return nil, fmt.Errorf("read config file %s: %w", lc.ConfigFile, err)
			}
		}
	}

	if lc.EnvFile != "" {
		if err := godotenv.Load(lc.EnvFile); err != nil {
			if lc.EnvFileRequired || !isNotExist(err) {
				return nil, fmt.Errorf("load env file %s: %w", lc.EnvFile, err)
			}
		}
	}

	for _, key := range Keys() {
		if err := v.BindEnv(key, EnvName(key)); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// EnvName maps a config key to its environment variable,
// e.g. http.listen_port -> NA__HTTP__LISTEN_PORT.
func EnvName(key string) string {
	return envPrefix + "__" + strings.ToUpper(strings.ReplaceAll(key, ".", "__"))
}

// Keys lists every supported config key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for key := range defaults {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound)
}
