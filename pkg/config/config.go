package config

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// ReferenceSource selects where reference documentation is read from.
type ReferenceSource string

const (
	ReferenceStatic   ReferenceSource = "static"
	ReferenceRepoDocs ReferenceSource = "repo-docs"
)

const (
	DefaultModel          = "gpt-4"
	DefaultStaticRefDir   = "static-ref"
	DefaultRepoDocsDir    = "repo-docs/open-webui-docs"
	DefaultOutputDir      = "generated"
	DefaultDotEnvPath     = ".env"
	DefaultConfigFile     = "compose-gen.yaml"
	DefaultChatMaxTokens  = 1500
	DefaultFinalMaxTokens = 2000

	APIKeyEnv  = "OPENAI_API_KEY"
	BaseURLEnv = "OPENAI_BASE_URL"
	ModelEnv   = "OPENAI_MODEL"
)

// Config holds all runtime configuration for the generator.
type Config struct {
	Reference ReferenceSource
	EnvInFile bool
	Verbose   bool

	StaticRefDir string
	RepoDocsDir  string
	OutputDir    string
	DotEnvPath   string

	ChatMaxTokens  int64
	FinalMaxTokens int64

	APIKey  string
	BaseURL string
	Model   string
}

// fileConfig mirrors the optional YAML settings file.
type fileConfig struct {
	Model        string `yaml:"model"`
	BaseURL      string `yaml:"base_url"`
	StaticRefDir string `yaml:"static_ref_dir"`
	RepoDocsDir  string `yaml:"repo_docs_dir"`
	OutputDir    string `yaml:"output_dir"`
	DotEnvPath   string `yaml:"dotenv_path"`
}

// DefaultConfig returns a baseline configuration without side effects.
func DefaultConfig() Config {
	return Config{
		Reference:      ReferenceStatic,
		StaticRefDir:   DefaultStaticRefDir,
		RepoDocsDir:    DefaultRepoDocsDir,
		OutputDir:      DefaultOutputDir,
		DotEnvPath:     DefaultDotEnvPath,
		ChatMaxTokens:  DefaultChatMaxTokens,
		FinalMaxTokens: DefaultFinalMaxTokens,
		Model:          DefaultModel,
	}
}

// Normalize sanitizes configuration values and applies defaults.
func Normalize(cfg Config) Config {
	defaults := DefaultConfig()

	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = orDefault(cfg.Model, defaults.Model)
	cfg.StaticRefDir = orDefault(cfg.StaticRefDir, defaults.StaticRefDir)
	cfg.RepoDocsDir = orDefault(cfg.RepoDocsDir, defaults.RepoDocsDir)
	cfg.OutputDir = orDefault(cfg.OutputDir, defaults.OutputDir)
	cfg.DotEnvPath = orDefault(cfg.DotEnvPath, defaults.DotEnvPath)
	if cfg.Reference == "" {
		cfg.Reference = defaults.Reference
	}
	if cfg.ChatMaxTokens <= 0 {
		cfg.ChatMaxTokens = defaults.ChatMaxTokens
	}
	if cfg.FinalMaxTokens <= 0 {
		cfg.FinalMaxTokens = defaults.FinalMaxTokens
	}
	return cfg
}

// ParseReference validates a reference source name.
func ParseReference(value string) (ReferenceSource, error) {
	switch ReferenceSource(strings.ToLower(strings.TrimSpace(value))) {
	case ReferenceStatic:
		return ReferenceStatic, nil
	case ReferenceRepoDocs:
		return ReferenceRepoDocs, nil
	default:
		return "", errors.Newf("invalid reference source %q (choose %s or %s)", value, ReferenceStatic, ReferenceRepoDocs)
	}
}

// LoadFile overlays settings from a YAML file onto cfg. A missing file is
// ignored unless required is set.
func LoadFile(path string, required bool, cfg Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, "read config %s", path)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}

	overlay(&cfg.Model, fc.Model)
	overlay(&cfg.BaseURL, fc.BaseURL)
	overlay(&cfg.StaticRefDir, fc.StaticRefDir)
	overlay(&cfg.RepoDocsDir, fc.RepoDocsDir)
	overlay(&cfg.OutputDir, fc.OutputDir)
	overlay(&cfg.DotEnvPath, fc.DotEnvPath)
	return cfg, nil
}

// ApplyEnv overlays OPENAI_BASE_URL and OPENAI_MODEL when they are set.
func ApplyEnv(cfg Config) Config {
	overlay(&cfg.BaseURL, os.Getenv(BaseURLEnv))
	overlay(&cfg.Model, os.Getenv(ModelEnv))
	return cfg
}

func overlay(dst *string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		*dst = value
	}
}

func orDefault(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}
