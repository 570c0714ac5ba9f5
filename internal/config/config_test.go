package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/trendy-repos/internal/gateway"
)

func unsetEnv(t *testing.T, keys ...string) {
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetEnv(t, "GITHUB_TOKEN", "TRENDY_TOKEN", "TRENDY_BASE_URL", "TRENDY_TIMEOUT", "TRENDY_VERBOSE")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, gateway.DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, gateway.DefaultTimeout, cfg.Timeout)
	assert.Empty(t, cfg.Token)
	assert.False(t, cfg.Verbose)
}

func TestLoad_Environment(t *testing.T) {
	unsetEnv(t, "TRENDY_TOKEN")
	t.Setenv("GITHUB_TOKEN", "ghp_test123")
	t.Setenv("TRENDY_BASE_URL", "https://ghe.example.com/api/v3")
	t.Setenv("TRENDY_TIMEOUT", "5s")
	t.Setenv("TRENDY_VERBOSE", "true")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, Config{
		BaseURL: "https://ghe.example.com/api/v3",
		Token:   "ghp_test123",
		Timeout: 5 * time.Second,
		Verbose: true,
	}, cfg)
}

func TestLoad_PrefixedTokenWins(t *testing.T) {
	t.Setenv("TRENDY_TOKEN", "prefixed")
	t.Setenv("GITHUB_TOKEN", "plain")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.Token)
}

func TestLoad_ConfigFileThenEnvThenFlags(t *testing.T) {
	unsetEnv(t, "GITHUB_TOKEN", "TRENDY_TOKEN", "TRENDY_BASE_URL", "TRENDY_VERBOSE")
	path := filepath.Join(t.TempDir(), "trendy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: http://from-file.example\ntimeout: 10s\ntoken: file-token\n"), 0600))
	t.Setenv("TRENDY_TIMEOUT", "20s")

	v := New()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("base-url", "", "")
	require.NoError(t, v.BindPFlag(KeyBaseURL, flags.Lookup("base-url")))
	require.NoError(t, flags.Parse([]string{"--base-url", "http://from-flag.example"}))

	cfg, err := Load(v, path)
	require.NoError(t, err)

	assert.Equal(t, "http://from-flag.example", cfg.BaseURL)
	assert.Equal(t, 20*time.Second, cfg.Timeout)
	assert.Equal(t, "file-token", cfg.Token)
}

func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value string
	}{
		{name: "relative base URL", key: "TRENDY_BASE_URL", value: "api.github.com"},
		{name: "unsupported scheme", key: "TRENDY_BASE_URL", value: "ftp://api.github.com"},
		{name: "negative timeout", key: "TRENDY_TIMEOUT", value: "-1s"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load(New(), "")
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestConfig_GatewayOptions(t *testing.T) {
	cfg := Config{BaseURL: "https://api.github.com", Token: "t", Timeout: time.Second}
	assert.Equal(t, gateway.Options{BaseURL: "https://api.github.com", Token: "t", Timeout: time.Second}, cfg.GatewayOptions())
}
