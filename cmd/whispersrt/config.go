package main

import (
	"errors"
	"fmt"

	"github.com/kbukum/whispersrt/config"
	"github.com/kbukum/whispersrt/conversion"
	"github.com/kbukum/whispersrt/observability"
	"github.com/kbukum/whispersrt/server"
)

const serviceName = "whispersrt"

// AppConfig is the complete configuration of the whispersrt binary.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config                  `yaml:"server" mapstructure:"server"`
	Transcription conversion.TranscriptionConfig `yaml:"transcription" mapstructure:"transcription"`
	Conversion    conversion.Config              `yaml:"conversion" mapstructure:"conversion"`
	Observability observability.Config           `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills unset fields in every section.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Transcription.ApplyDefaults()
	c.Conversion.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks every section and reports all failures together.
func (c *AppConfig) Validate() error {
	return errors.Join(
		c.ServiceConfig.Validate(),
		c.Server.Validate(),
		c.Transcription.Validate(),
		c.Conversion.Validate(),
		c.Observability.Validate(),
	)
}

type loadOptions struct {
	configFile string
	envFile    string
}

// loadConfig reads config.yml, .env and the environment. OPENAI_API_KEY is
// accepted for the OpenAI key alongside TRANSCRIPTION_OPENAI_API_KEY.
func loadConfig(opts loadOptions) (*AppConfig, error) {
	cfg := &AppConfig{}
	loaderOpts := []config.LoaderOption{
		config.WithEnvAlias("transcription.openai.api_key", "TRANSCRIPTION_OPENAI_API_KEY", "OPENAI_API_KEY"),
		config.WithDefault("name", serviceName),
	}
	if opts.configFile != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(opts.configFile))
	}
	if opts.envFile != "" {
		loaderOpts = append(loaderOpts, config.WithEnvFile(opts.envFile))
	}
	if err := config.LoadConfig(serviceName, cfg, loaderOpts...); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
