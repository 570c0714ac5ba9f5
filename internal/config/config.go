// Package config loads application configuration with viper.
// Values are resolved in the order: defaults < config file < environment < flags.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/naka-gawa/trendy-repos/internal/gateway"
)

const (
	KeyBaseURL = "base_url"
	KeyToken   = "token"
	KeyTimeout = "timeout"
	KeyVerbose = "verbose"

	envPrefix = "TRENDY"
)

// Config holds the resolved application configuration.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Verbose bool
}

// New returns a viper instance with defaults and environment bindings set.
// GITHUB_TOKEN is accepted alongside TRENDY_TOKEN.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyBaseURL, gateway.DefaultBaseURL)
	v.SetDefault(KeyTimeout, gateway.DefaultTimeout)
	v.SetDefault(KeyVerbose, false)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv(KeyToken, envPrefix+"_TOKEN", "GITHUB_TOKEN")
	return v
}

// Load reads the optional config file and returns a validated Config.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := Config{
		BaseURL: v.GetString(KeyBaseURL),
		Token:   v.GetString(KeyToken),
		Timeout: v.GetDuration(KeyTimeout),
		Verbose: v.GetBool(KeyVerbose),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", KeyBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid %s %q: must be an absolute http(s) URL", KeyBaseURL, c.BaseURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("invalid %s %s: must not be negative", KeyTimeout, c.Timeout)
	}
	return nil
}

// GatewayOptions maps the configuration onto gateway options.
func (c Config) GatewayOptions() gateway.Options {
	return gateway.Options{
		BaseURL: c.BaseURL,
		Token:   c.Token,
		Timeout: c.Timeout,
	}
}
