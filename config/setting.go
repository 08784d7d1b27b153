package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type LogLevel string

const (
	Debug LogLevel = "debug"
	Info  LogLevel = "info"
	Warn  LogLevel = "warn"
	Error LogLevel = "error"
)

type Module string

const (
	ModuleSetting  Module = "setting"
	ModuleChat     Module = "chat"
	ModuleEngine   Module = "disambiguate"
	ModuleAnnotate Module = "annotate"
	ModuleBatch    Module = "batch"
	ModuleS3       Module = "s3"
	ModuleServer   Module = "server"
)

// Run modes.
const (
	ModeSinglePhrase = "single-phrase"
	ModeBatchFile    = "batch-file"
)

// Chat providers.
const (
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

type LogConfig struct {
	Dir        string `koanf:"dir"`
	MaxSizeMB  int    `koanf:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `koanf:"max_backups" validate:"gte=0"`
	Console    bool   `koanf:"console"`
}

type ChatConfig struct {
	Provider       string `koanf:"provider" validate:"required,oneof=ollama openai anthropic"`
	BaseURL        string `koanf:"base_url" validate:"omitempty,url"`
	APIKey         string `koanf:"api_key"`
	TimeoutSeconds int    `koanf:"timeout_seconds" validate:"gte=0"`
}

type EngineConfig struct {
	Model              string `koanf:"model"`
	Seed               int64  `koanf:"seed"`
	ContextWindow      int    `koanf:"context_window" validate:"required,gt=0"`
	MaxReasoningTokens int    `koanf:"max_reasoning_tokens" validate:"required,gt=0"`
}

type RunConfig struct {
	Mode       string `koanf:"mode" validate:"required,oneof=single-phrase batch-file"`
	Phrase     string `koanf:"phrase"`
	InputPath  string `koanf:"input_path"`
	OutputPath string `koanf:"output_path"`
	Workers    int    `koanf:"workers" validate:"required,gte=1,lte=64"`
}

type ServerConfig struct {
	Port                  int    `koanf:"port" validate:"required"`
	Concurrency           int    `koanf:"concurrency" validate:"required,gte=1"`
	BodyLimit             int    `koanf:"body_limit" validate:"required"`
	AppName               string `koanf:"app_name" validate:"required"`
	RequestTimeoutSeconds int    `koanf:"request_timeout_seconds" validate:"gte=0"`
}

type S3Config struct {
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Region    string `koanf:"region"`
	UseSSL    bool   `koanf:"use_ssl"`
	Bucket    string `koanf:"bucket"`
}

type Config struct {
	LogLevel LogLevel     `koanf:"log_level" validate:"oneof=debug info warn error"`
	Log      LogConfig    `koanf:"log"`
	Chat     ChatConfig   `koanf:"chat"`
	Engine   EngineConfig `koanf:"engine"`
	Run      RunConfig    `koanf:"run"`
	Server   ServerConfig `koanf:"server"`
	S3       S3Config     `koanf:"s3"`
}

var defaultConfig = Config{
	LogLevel: Info,
	Log: LogConfig{
		Dir:        ".",
		MaxSizeMB:  100,
		MaxBackups: 0,
	},
	Chat: ChatConfig{
		Provider:       ProviderOllama,
		TimeoutSeconds: 600,
	},
	Engine: EngineConfig{
		Model:              "deepseek-r1:7b",
		Seed:               10,
		ContextWindow:      4096,
		MaxReasoningTokens: 3584,
	},
	Run: RunConfig{
		Mode:    ModeSinglePhrase,
		Phrase:  "可口可樂公司",
		Workers: 1,
	},
	Server: ServerConfig{
		Port:        8000,
		Concurrency: 1,
		BodyLimit:   64 * 1024,
		AppName:     "pinyin-annotation",
	},
	S3: S3Config{
		Region: "us-east-1",
	},
}

// Default returns a copy of the compiled-in configuration.
func Default() Config {
	return defaultConfig
}

// Load layers defaults, the YAML file at path (optional) and APP_ environment
// variables, then validates the result. A double underscore in an env name
// nests: APP_CHAT__API_KEY sets chat.api_key.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	cfg := defaultConfig

	// file
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("%v: load %s: %w", ModuleSetting, path, err)
		}
	}

	// env
	if err := k.Load(env.Provider("APP_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "APP_")), "__", ".")
	}), nil); err != nil {
		return cfg, fmt.Errorf("%v: load env: %w", ModuleSetting, err)
	}

	// bind
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("%v: unmarshal: %w", ModuleSetting, err)
	}

	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks cfg against its struct tags and reports every failing field.
func Validate(cfg Config) error {
	validate := validator.New()
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("%v: config validation failed: %w", ModuleSetting, err)
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%v: config validation failed:", ModuleSetting))
	for _, e := range errs {
		sb.WriteString(fmt.Sprintf("\n  • %s: failed '%s' (value: %v)", e.Namespace(), e.Tag(), e.Value()))
	}
	return errors.New(sb.String())
}
