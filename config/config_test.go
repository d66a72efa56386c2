package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lhj-lhj/SocialRobotics/core"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	s, err := Load(func(o *Options) {
		o.ConfigPath = filepath.Join(t.TempDir(), "absent.json")
		o.SkipEnv = true
	})
	require.Error(t, err) // explicit path must exist

	s, err = Load(func(o *Options) { o.SkipEnv = true })
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, s.Provider)
	assert.Equal(t, "gpt-4.1-mini", s.Controller.Model)
	assert.Equal(t, 0.4, s.Reasoning.Temperature)
	assert.Equal(t, 8*time.Second, s.Thinking.MinDuration)
	assert.Equal(t, 10*time.Second, s.Thinking.MaxDuration)
	assert.Equal(t, 500*time.Millisecond, s.Thinking.Pause)
	assert.Equal(t, 12, s.Thinking.MaxCues)
}

func TestLoadConfigFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", `{
		"api_key": "sk-from-file",
		"controller_model": "gpt-4.1",
		"reasoning_temperature": 0.7,
		"min_duration_seconds": 2.5,
		"max_cues": 5,
		"robot_host": "10.0.0.9"
	}`)

	s, err := Load(func(o *Options) {
		o.ConfigPath = path
		o.SkipEnv = true
	})
	require.NoError(t, err)
	assert.Equal(t, "sk-from-file", s.APIKey)
	assert.Equal(t, "gpt-4.1", s.Controller.Model)
	assert.Equal(t, "gpt-4.1-mini", s.Reasoning.Model) // untouched
	assert.Equal(t, 0.7, s.Reasoning.Temperature)
	assert.Equal(t, 2500*time.Millisecond, s.Thinking.MinDuration)
	assert.Equal(t, 5, s.Thinking.MaxCues)
	assert.Equal(t, "10.0.0.9", s.Robot.Host)
}

func TestLoadMalformedConfigFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.json", "{not json")
	_, err := Load(func(o *Options) {
		o.ConfigPath = path
		o.SkipEnv = true
	})
	var cfgErr *core.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "config", cfgErr.Field)
}

func TestLoadAPIKeyFileFallback(t *testing.T) {
	dir := t.TempDir()
	keyPath := writeFile(t, dir, "api_key.txt", "# key below\n\nsk-from-txt\n")

	s, err := Load(func(o *Options) {
		o.APIKeyPath = keyPath
		o.SkipEnv = true
	})
	require.NoError(t, err)
	assert.Equal(t, "sk-from-txt", s.APIKey)
}

func TestLoadKeyFileDoesNotOverrideConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.json", `{"api_key": "sk-from-file"}`)
	keyPath := writeFile(t, dir, "api_key.txt", "sk-from-txt")

	s, err := Load(func(o *Options) {
		o.ConfigPath = cfgPath
		o.APIKeyPath = keyPath
		o.SkipEnv = true
	})
	require.NoError(t, err)
	assert.Equal(t, "sk-from-file", s.APIKey)
}

func TestLoadEnvOverridesFiles(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "config.json", `{"api_key": "sk-from-file", "robot_host": "file-host"}`)
	t.Setenv("SOCIALROBOT_API_KEY", "sk-from-env")
	t.Setenv("SOCIALROBOT_ROBOT_HOST", "env-host")
	t.Setenv("SOCIALROBOT_THINKING_MAX_DURATION", "3s")

	s, err := Load(func(o *Options) { o.ConfigPath = cfgPath })
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", s.APIKey)
	assert.Equal(t, "env-host", s.Robot.Host)
	assert.Equal(t, 3*time.Second, s.Thinking.MaxDuration)
}

func TestLoadDotenvFile(t *testing.T) {
	envPath := writeFile(t, t.TempDir(), ".env", "export OPENAI_API_KEY=\"sk-from-dotenv\"\n# comment\nMALFORMED\n")
	t.Setenv("OPENAI_API_KEY", "")
	os.Unsetenv("OPENAI_API_KEY")

	s, err := Load(func(o *Options) { o.EnvPath = envPath })
	require.NoError(t, err)
	assert.Equal(t, "sk-from-dotenv", s.APIKey)
}

func TestValidate(t *testing.T) {
	s := Default()
	s.APIKey = "sk-test"
	require.NoError(t, s.Validate())

	tests := []struct {
		name  string
		tweak func(*Settings)
		field string
	}{
		{"missing key", func(s *Settings) { s.APIKey = "" }, "api_key"},
		{"bad provider", func(s *Settings) { s.Provider = "cohere" }, "provider"},
		{"zero max duration", func(s *Settings) { s.Thinking.MaxDuration = 0 }, "thinking.max_duration"},
		{"negative pause", func(s *Settings) { s.Thinking.Pause = -time.Second }, "thinking.pause"},
		{"zero cues", func(s *Settings) { s.Thinking.MaxCues = 0 }, "thinking.max_cues"},
		{"bad port", func(s *Settings) { s.Robot.Port = 99999 }, "robot.port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := Default()
			bad.APIKey = "sk-test"
			tt.tweak(&bad)
			err := bad.Validate()
			var cfgErr *core.ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestValidateMockProviderNeedsNoKey(t *testing.T) {
	s := Default()
	s.Provider = ProviderMock
	require.NoError(t, s.Validate())
}
