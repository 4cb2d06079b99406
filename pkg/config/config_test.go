package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Service struct {
		Name string `mapstructure:"name"`
		Port int    `mapstructure:"port"`
	} `mapstructure:"service"`
	Timeout time.Duration `mapstructure:"timeout"`
	Secret  string        `mapstructure:"secret"`
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "svc.yaml", "service:\n  name: from-file\ntimeout: 3s\n")
	t.Setenv("CONFIG_PATH", path)

	var cfg testConfig
	err := Load("svc", &cfg, Options{
		EnvPrefix: "SVCTEST",
		Defaults: map[string]interface{}{
			"service.name": "default",
			"service.port": 8080,
			"timeout":      time.Second,
			"secret":       "",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Service.Name)
	assert.Equal(t, 8080, cfg.Service.Port)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "svc.yaml", "service:\n  port: 9000\n")
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("SVCTEST_SERVICE_PORT", "9100")
	t.Setenv("SVCTEST_TIMEOUT", "250ms")

	var cfg testConfig
	err := Load("svc", &cfg, Options{
		EnvPrefix: "svctest",
		Defaults: map[string]interface{}{
			"service.port": 8080,
			"timeout":      time.Second,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Service.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Timeout)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "SVCDOT_SECRET=from-dotenv\n")
	t.Setenv("CONFIG_PATH", dir)
	t.Cleanup(func() { os.Unsetenv("SVCDOT_SECRET") })

	var cfg testConfig
	err := Load("svc", &cfg, Options{
		EnvPrefix:   "SVCDOT",
		Defaults:    map[string]interface{}{"secret": ""},
		DotEnvFiles: []string{filepath.Join(dir, "missing.env"), envFile},
	})
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Secret)
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", t.TempDir())
	t.Setenv("APP_ENV", "nowhere")

	var cfg testConfig
	err := Load("absent", &cfg, Options{
		EnvPrefix: "ABSENT",
		Defaults:  map[string]interface{}{"service.name": "fallback"},
	})
	require.NoError(t, err)
	assert.Equal(t, "fallback", cfg.Service.Name)
}

func TestLoad_BrokenFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "svc.yaml", "service: [unclosed\n")
	t.Setenv("CONFIG_PATH", path)

	var cfg testConfig
	err := Load("svc", &cfg, Options{EnvPrefix: "BROKEN"})
	assert.Error(t, err)
}
