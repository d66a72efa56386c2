package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lhj-lhj/SocialRobotics/core"
)

// Default file names probed in the working directory when no explicit path
// is given.
const (
	DefaultConfigFile = "config.json"
	DefaultAPIKeyFile = "api_key.txt"
	DefaultEnvFile    = ".env"
)

// Provider selects which generation backend the facade constructs.
type Provider string

// Supported generation providers.
const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderMock      Provider = "mock"
)

// ModelRole carries the model name and sampling temperature for one of the
// three generation roles (controller, thinking, reasoning).
type ModelRole struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
}

// Robot locates the robot's realtime event gateway.
type Robot struct {
	Host    string `json:"host"`
	Port    int    `json:"port"`
	AuthKey string `json:"auth_key"`
}

// Thinking holds the visible-thinking window knobs.
type Thinking struct {
	MinDuration time.Duration `json:"-"`
	MaxDuration time.Duration `json:"-"`
	Pause       time.Duration `json:"-"`
	MaxCues     int           `json:"max_cues"`
}

// Settings is the resolved configuration value. Construct it with Load (or
// zero-initialize and fill in tests) and pass it down; nothing reads it
// lazily.
type Settings struct {
	Provider Provider `json:"provider"`
	APIKey   string   `json:"api_key"`
	BaseURL  string   `json:"base_url"`

	Controller ModelRole `json:"controller"`
	Reasoning  ModelRole `json:"reasoning"`
	ThinkingLM ModelRole `json:"thinking"`

	Thinking Thinking `json:"thinking_window"`
	Robot    Robot    `json:"robot"`

	TrialsPath    string `json:"trials_path"`
	TranscriptDir string `json:"transcript_dir"`

	Greeting string `json:"greeting"`

	LogLevel  string `json:"log_level"`  // debug|info|warn|error
	LogFormat string `json:"log_format"` // text|json
}

// Default returns the built-in settings, matching the stock deployment.
func Default() Settings {
	return Settings{
		Provider:   ProviderOpenAI,
		BaseURL:    "",
		Controller: ModelRole{Model: "gpt-4.1-mini", Temperature: 0.2},
		Reasoning:  ModelRole{Model: "gpt-4.1-mini", Temperature: 0.4},
		ThinkingLM: ModelRole{Model: "gpt-4.1-mini", Temperature: 0.2},
		Thinking: Thinking{
			MinDuration: 8 * time.Second,
			MaxDuration: 10 * time.Second,
			Pause:       500 * time.Millisecond,
			MaxCues:     12,
		},
		Robot:         Robot{Host: "192.168.1.114", Port: 54321},
		TrialsPath:    "my_trials.json",
		TranscriptDir: "sessions",
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// Options configure Load.
type Options struct {
	// ConfigPath is the JSON config file. Empty probes DefaultConfigFile;
	// a missing file is not an error either way.
	ConfigPath string

	// APIKeyPath is a bare API key file. Empty probes DefaultAPIKeyFile.
	APIKeyPath string

	// EnvPath is a dotenv file loaded into the process environment before
	// environment variables are read. Empty probes DefaultEnvFile.
	EnvPath string

	// SkipEnv disables steps 4 and 5 of the chain entirely, so Settings
	// reflect only defaults and files. Tests use this for isolation.
	SkipEnv bool
}

// Load resolves Settings through the full chain. Only I/O and syntax
// failures on explicitly named files are errors; probing a default path
// that does not exist is not. Call Validate before using the result.
func Load(optFns ...func(o *Options)) (Settings, error) {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}

	s := Default()

	if err := s.applyFile(opts.ConfigPath, DefaultConfigFile); err != nil {
		return s, err
	}
	if err := s.applyKeyFile(opts.APIKeyPath, DefaultAPIKeyFile); err != nil {
		return s, err
	}

	if !opts.SkipEnv {
		envPath := opts.EnvPath
		explicit := envPath != ""
		if !explicit {
			envPath = DefaultEnvFile
		}
		if err := loadDotenv(envPath); err != nil && explicit {
			return s, err
		}
		s.applyEnv()
	}

	return s, nil
}

// applyFile merges a JSON config file over the current settings. Durations
// appear in the file as seconds (min_duration_seconds etc.), matching the
// historical config format.
func (s *Settings) applyFile(path, fallback string) error {
	explicit := path != ""
	if !explicit {
		path = fallback
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		if os.IsNotExist(err) {
			return &core.ConfigurationError{Field: "config", Reason: fmt.Sprintf("file %s not found", path)}
		}
		return &core.ConfigurationError{Field: "config", Reason: err.Error()}
	}

	var file fileSettings
	if err := json.Unmarshal(data, &file); err != nil {
		return &core.ConfigurationError{Field: "config", Reason: fmt.Sprintf("parse %s: %v", path, err)}
	}
	file.mergeInto(s)
	return nil
}

// fileSettings is the on-disk JSON shape: flat keys as the historical
// config.json wrote them.
type fileSettings struct {
	Provider              string   `json:"provider"`
	APIKey                string   `json:"api_key"`
	BaseURL               string   `json:"base_url"`
	ControllerModel       string   `json:"controller_model"`
	ControllerTemperature *float64 `json:"controller_temperature"`
	ReasoningModel        string   `json:"reasoning_model"`
	ReasoningTemperature  *float64 `json:"reasoning_temperature"`
	ThinkingModel         string   `json:"thinking_model"`
	ThinkingTemperature   *float64 `json:"thinking_temperature"`
	MinDurationSeconds    *float64 `json:"min_duration_seconds"`
	MaxDurationSeconds    *float64 `json:"max_duration_seconds"`
	PauseSeconds          *float64 `json:"pause_seconds"`
	MaxCues               *int     `json:"max_cues"`
	RobotHost             string   `json:"robot_host"`
	RobotPort             *int     `json:"robot_port"`
	RobotAuthKey          string   `json:"robot_auth_key"`
	TrialsPath            string   `json:"trials_path"`
	TranscriptDir         string   `json:"transcript_dir"`
	Greeting              string   `json:"greeting"`
	LogLevel              string   `json:"log_level"`
	LogFormat             string   `json:"log_format"`
}

func (f fileSettings) mergeInto(s *Settings) {
	setString := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	if strings.TrimSpace(f.Provider) != "" {
		s.Provider = Provider(strings.ToLower(strings.TrimSpace(f.Provider)))
	}
	setString(&s.APIKey, f.APIKey)
	setString(&s.BaseURL, f.BaseURL)
	setString(&s.Controller.Model, f.ControllerModel)
	setString(&s.Reasoning.Model, f.ReasoningModel)
	setString(&s.ThinkingLM.Model, f.ThinkingModel)
	if f.ControllerTemperature != nil {
		s.Controller.Temperature = *f.ControllerTemperature
	}
	if f.ReasoningTemperature != nil {
		s.Reasoning.Temperature = *f.ReasoningTemperature
	}
	if f.ThinkingTemperature != nil {
		s.ThinkingLM.Temperature = *f.ThinkingTemperature
	}
	if f.MinDurationSeconds != nil {
		s.Thinking.MinDuration = secondsToDuration(*f.MinDurationSeconds)
	}
	if f.MaxDurationSeconds != nil {
		s.Thinking.MaxDuration = secondsToDuration(*f.MaxDurationSeconds)
	}
	if f.PauseSeconds != nil {
		s.Thinking.Pause = secondsToDuration(*f.PauseSeconds)
	}
	if f.MaxCues != nil {
		s.Thinking.MaxCues = *f.MaxCues
	}
	setString(&s.Robot.Host, f.RobotHost)
	if f.RobotPort != nil {
		s.Robot.Port = *f.RobotPort
	}
	setString(&s.Robot.AuthKey, f.RobotAuthKey)
	setString(&s.TrialsPath, f.TrialsPath)
	setString(&s.TranscriptDir, f.TranscriptDir)
	setString(&s.Greeting, f.Greeting)
	setString(&s.LogLevel, f.LogLevel)
	setString(&s.LogFormat, f.LogFormat)
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

// applyKeyFile fills the API key from a bare key file when no key is set
// yet. The first non-empty, non-comment line wins.
func (s *Settings) applyKeyFile(path, fallback string) error {
	if s.APIKey != "" {
		return nil
	}
	explicit := path != ""
	if !explicit {
		path = fallback
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		if os.IsNotExist(err) {
			return &core.ConfigurationError{Field: "api_key", Reason: fmt.Sprintf("file %s not found", path)}
		}
		return &core.ConfigurationError{Field: "api_key", Reason: err.Error()}
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			s.APIKey = line
			return nil
		}
	}
	return nil
}

// applyEnv overlays SOCIALROBOT_* variables, plus the provider SDKs' own
// key variables as an API-key fallback.
func (s *Settings) applyEnv() {
	if v := envOr("SOCIALROBOT_PROVIDER", ""); v != "" {
		s.Provider = Provider(strings.ToLower(v))
	}
	s.APIKey = envOr("SOCIALROBOT_API_KEY", s.APIKey)
	if s.APIKey == "" {
		switch s.Provider {
		case ProviderAnthropic:
			s.APIKey = envOr("ANTHROPIC_API_KEY", "")
		default:
			s.APIKey = envOr("OPENAI_API_KEY", "")
		}
	}
	s.BaseURL = envOr("SOCIALROBOT_BASE_URL", s.BaseURL)

	s.Controller.Model = envOr("SOCIALROBOT_CONTROLLER_MODEL", s.Controller.Model)
	s.Controller.Temperature = envFloatOr("SOCIALROBOT_CONTROLLER_TEMPERATURE", s.Controller.Temperature)
	s.Reasoning.Model = envOr("SOCIALROBOT_REASONING_MODEL", s.Reasoning.Model)
	s.Reasoning.Temperature = envFloatOr("SOCIALROBOT_REASONING_TEMPERATURE", s.Reasoning.Temperature)
	s.ThinkingLM.Model = envOr("SOCIALROBOT_THINKING_MODEL", s.ThinkingLM.Model)
	s.ThinkingLM.Temperature = envFloatOr("SOCIALROBOT_THINKING_TEMPERATURE", s.ThinkingLM.Temperature)

	s.Thinking.MinDuration = envDurationOr("SOCIALROBOT_THINKING_MIN_DURATION", s.Thinking.MinDuration)
	s.Thinking.MaxDuration = envDurationOr("SOCIALROBOT_THINKING_MAX_DURATION", s.Thinking.MaxDuration)
	s.Thinking.Pause = envDurationOr("SOCIALROBOT_THINKING_PAUSE", s.Thinking.Pause)
	s.Thinking.MaxCues = envIntOr("SOCIALROBOT_THINKING_MAX_CUES", s.Thinking.MaxCues)

	s.Robot.Host = envOr("SOCIALROBOT_ROBOT_HOST", s.Robot.Host)
	s.Robot.Port = envIntOr("SOCIALROBOT_ROBOT_PORT", s.Robot.Port)
	s.Robot.AuthKey = envOr("SOCIALROBOT_ROBOT_AUTH_KEY", s.Robot.AuthKey)

	s.TrialsPath = envOr("SOCIALROBOT_TRIALS_PATH", s.TrialsPath)
	s.TranscriptDir = envOr("SOCIALROBOT_TRANSCRIPT_DIR", s.TranscriptDir)
	s.Greeting = envOr("SOCIALROBOT_GREETING", s.Greeting)
	s.LogLevel = envOr("SOCIALROBOT_LOG_LEVEL", s.LogLevel)
	s.LogFormat = envOr("SOCIALROBOT_LOG_FORMAT", s.LogFormat)
}

// Validate checks the resolved settings for use against a live provider.
// The mock provider needs no credentials.
func (s Settings) Validate() error {
	switch s.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderMock:
	default:
		return &core.ConfigurationError{Field: "provider", Reason: fmt.Sprintf("unknown provider %q", s.Provider)}
	}
	if s.Provider != ProviderMock && s.APIKey == "" {
		return &core.ConfigurationError{
			Field:  "api_key",
			Reason: "not found; populate config.json (api_key), api_key.txt, or the environment",
		}
	}
	if s.Thinking.MaxDuration <= 0 {
		return &core.ConfigurationError{Field: "thinking.max_duration", Reason: "must be positive"}
	}
	if s.Thinking.MinDuration < 0 {
		return &core.ConfigurationError{Field: "thinking.min_duration", Reason: "must not be negative"}
	}
	if s.Thinking.Pause < 0 {
		return &core.ConfigurationError{Field: "thinking.pause", Reason: "must not be negative"}
	}
	if s.Thinking.MaxCues <= 0 {
		return &core.ConfigurationError{Field: "thinking.max_cues", Reason: "must be positive"}
	}
	if s.Robot.Port < 0 || s.Robot.Port > 65535 {
		return &core.ConfigurationError{Field: "robot.port", Reason: "out of range"}
	}
	return nil
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envIntOr(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func envFloatOr(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return n
}

func envDurationOr(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}
