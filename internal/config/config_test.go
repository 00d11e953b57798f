package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Data:   DataConfig{BasePath: t.TempDir()},
		List:   ListConfig{DefaultPageSize: 40},
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig(t)
	assert.NoError(t, cfg.Validate())
}

func TestValidate_Environment(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"", false},
		{"prod", false},
	}

	for _, tt := range tests {
		t.Run("env="+tt.env, func(t *testing.T) {
			cfg := validConfig(t)
			cfg.App.Environment = tt.env
			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_LogLevel(t *testing.T) {
	cfg := validConfig(t)
	cfg.Logger.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg.Logger.Level = "WARN"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_PageSize(t *testing.T) {
	cfg := validConfig(t)

	cfg.List.DefaultPageSize = 0
	assert.Error(t, cfg.Validate())

	cfg.List.DefaultPageSize = 501
	assert.Error(t, cfg.Validate())

	cfg.List.DefaultPageSize = 500
	assert.NoError(t, cfg.Validate())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/comics", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "comics"), got)

	got, err = expandPath("", "/fallback")
	require.NoError(t, err)
	assert.Equal(t, "/fallback", got)

	got, err = expandPath("/already/abs/../abs", "")
	require.NoError(t, err)
	assert.Equal(t, "/already/abs", got)
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("COMIX_TEST_KEY", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "COMIX_TEST_KEY", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "COMIX_TEST_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "COMIX_TEST_MISSING", "default"))
}

func TestGetBoolConfigValue(t *testing.T) {
	assert.True(t, getBoolConfigValue("yes", "COMIX_TEST_BOOL", false))
	assert.True(t, getBoolConfigValue("1", "COMIX_TEST_BOOL", false))
	assert.False(t, getBoolConfigValue("nope", "COMIX_TEST_BOOL", true))
	assert.True(t, getBoolConfigValue("", "COMIX_TEST_BOOL", true))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nCOMIX_ENVFILE_A=hello\nCOMIX_ENVFILE_B=\"quoted\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("COMIX_ENVFILE_A", "") // ensure unset semantics
	os.Unsetenv("COMIX_ENVFILE_A")
	os.Unsetenv("COMIX_ENVFILE_B")

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "hello", os.Getenv("COMIX_ENVFILE_A"))
	assert.Equal(t, "quoted", os.Getenv("COMIX_ENVFILE_B"))
}

func TestLoadEnvFile_BadLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("NOT A PAIR\n"), 0o600))

	assert.Error(t, loadEnvFile(path))
}
