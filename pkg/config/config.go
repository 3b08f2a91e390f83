// Package config holds the tool configuration: service endpoint and
// sampling parameters, retry policy and course-file selection patterns.
package config

import (
	"os"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/coursedeck/enrich/pkg/llm"
)

// DefaultPath is tried when no config file is given. A missing file is not
// an error; the defaults cover a full run.
const DefaultPath = ".enrich.yaml"

const (
	defaultModel       = "gpt-4o-mini"
	defaultMaxTokens   = 256
	defaultTemperature = 0.2
	defaultMaxAttempts = 3
)

// Config is the tool configuration.
type Config struct {
	Service *ServiceConfig `json:"service,omitempty" yaml:"service,omitempty" hcl:"service,block"`
	Files   *FilesConfig   `json:"files,omitempty" yaml:"files,omitempty" hcl:"files,block"`
}

// ServiceConfig configures the completion client.
type ServiceConfig struct {
	BaseURL     string  `json:"base_url,omitempty" yaml:"base_url,omitempty" hcl:"base_url,optional"`
	Model       string  `json:"model,omitempty" yaml:"model,omitempty" hcl:"model,optional"`
	MaxTokens   int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty" hcl:"max_tokens,optional"`
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty" hcl:"temperature,optional"`
	MaxAttempts int     `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty" hcl:"max_attempts,optional"`
}

// FilesConfig configures course-file selection.
type FilesConfig struct {
	Patterns []string `json:"patterns,omitempty" yaml:"patterns,omitempty" hcl:"patterns,optional"`
	Ignore   []string `json:"ignore,omitempty" yaml:"ignore,omitempty" hcl:"ignore,optional"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Service: &ServiceConfig{
			BaseURL:     llm.DefaultBaseURL,
			Model:       defaultModel,
			MaxTokens:   defaultMaxTokens,
			Temperature: defaultTemperature,
			MaxAttempts: defaultMaxAttempts,
		},
		Files: &FilesConfig{},
	}
}

// applyDefaults fills unset fields from Default. The model environment
// override is resolved here, once, and carried as an explicit value from
// this point on.
func (c *Config) applyDefaults() {
	def := Default()
	if c.Service == nil {
		c.Service = def.Service
	}
	if c.Files == nil {
		c.Files = def.Files
	}
	if c.Service.BaseURL == "" {
		c.Service.BaseURL = def.Service.BaseURL
	}
	if c.Service.Model == "" {
		c.Service.Model = def.Service.Model
	}
	if c.Service.MaxTokens == 0 {
		c.Service.MaxTokens = def.Service.MaxTokens
	}
	if c.Service.Temperature == 0 {
		c.Service.Temperature = def.Service.Temperature
	}
	if c.Service.MaxAttempts == 0 {
		c.Service.MaxAttempts = def.Service.MaxAttempts
	}

	if override := strings.TrimSpace(os.Getenv(llm.ModelEnvVar)); override != "" {
		c.Service.Model = override
	}
}

// Validate checks the configuration for values the pipeline cannot work with.
func Validate(c *Config) error {
	if c.Service.MaxTokens < 0 {
		return errors.New("service.max_tokens must not be negative")
	}
	if c.Service.Temperature < 0 || c.Service.Temperature > 2 {
		return errors.Errorf("service.temperature %v is out of range [0, 2]", c.Service.Temperature)
	}
	if c.Service.MaxAttempts < 1 {
		return errors.New("service.max_attempts must be at least 1")
	}
	return nil
}
