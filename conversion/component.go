package conversion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/whispersrt/component"
	"github.com/kbukum/whispersrt/logger"
	"github.com/kbukum/whispersrt/provider"
	"github.com/kbukum/whispersrt/transcription"
	"github.com/kbukum/whispersrt/transcription/openai"
	"github.com/kbukum/whispersrt/transcription/whisper"
)

const (
	providersComponentName = "transcription"
	healthProbeTimeout     = 3 * time.Second
)

var (
	_ component.Component   = (*Providers)(nil)
	_ component.Describable = (*Providers)(nil)
)

// Providers owns the transcription providers and initializes them on Start.
type Providers struct {
	cfg     TranscriptionConfig
	manager *provider.Manager[transcription.Provider]
	log     *logger.Logger
}

// NewProviders creates the provider component. The manager is usable once
// Start has returned.
func NewProviders(cfg TranscriptionConfig, log *logger.Logger) *Providers {
	cfg.ApplyDefaults()
	reg := transcription.NewRegistry()
	reg.RegisterFactory(openai.ProviderName, openai.Factory())
	reg.RegisterFactory(whisper.ProviderName, whisper.Factory())
	return &Providers{
		cfg:     cfg,
		manager: transcription.NewManager(transcription.WithRegistry(reg), transcription.WithPriority(cfg.Provider)),
		log:     log.WithComponent(providersComponentName),
	}
}

// Manager returns the provider manager.
func (c *Providers) Manager() *provider.Manager[transcription.Provider] {
	return c.manager
}

// Granularity returns the configured default granularity.
func (c *Providers) Granularity() transcription.Granularity {
	g, err := transcription.ParseGranularity(c.cfg.Granularity)
	if err != nil {
		return transcription.GranularitySegment
	}
	return g
}

// Name returns the component name.
func (c *Providers) Name() string { return providersComponentName }

// Start creates the enabled providers and selects the default.
func (c *Providers) Start(_ context.Context) error {
	if err := c.cfg.Validate(); err != nil {
		return fmt.Errorf("transcription: %w", err)
	}
	if err := c.manager.Initialize(openai.ProviderName, openAIConfigMap(c.cfg.OpenAI)); err != nil {
		return err
	}
	if c.cfg.Whisper.Enabled {
		if err := c.manager.Initialize(whisper.ProviderName, whisperConfigMap(c.cfg.Whisper.Config)); err != nil {
			return err
		}
	}
	if err := c.manager.SetDefault(c.cfg.Provider); err != nil {
		return fmt.Errorf("transcription: %w", err)
	}
	if c.cfg.OpenAI.APIKey == "" {
		c.log.Info("no OpenAI API key configured, callers must supply one per request")
	}
	return nil
}

// Stop is a no-op; providers hold no long-lived resources.
func (c *Providers) Stop(_ context.Context) error { return nil }

// Health probes every initialized provider. An unreachable default provider
// is unhealthy; any other unreachable provider degrades the component.
func (c *Providers) Health(ctx context.Context) component.Health {
	names := c.manager.Available()
	if len(names) == 0 {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "no providers initialized"}
	}

	ctx, cancel := context.WithTimeout(ctx, healthProbeTimeout)
	defer cancel()

	var down []string
	defaultDown := false
	for _, name := range names {
		p, err := c.manager.GetByName(name)
		if err != nil || !p.IsAvailable(ctx) {
			down = append(down, name)
			defaultDown = defaultDown || name == c.manager.Default()
		}
	}
	switch {
	case defaultDown:
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy,
			Message: "default provider unavailable: " + strings.Join(down, ", ")}
	case len(down) > 0:
		return component.Health{Name: c.Name(), Status: component.StatusDegraded,
			Message: "unavailable: " + strings.Join(down, ", ")}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe returns summary info for the startup display.
func (c *Providers) Describe() component.Description {
	names := c.manager.Available()
	if len(names) == 0 {
		names = []string{c.cfg.Provider}
	}
	return component.Description{
		Name:    "Transcription",
		Type:    "transcription",
		Details: fmt.Sprintf("default=%s providers=%s granularity=%s", c.cfg.Provider, strings.Join(names, ","), c.cfg.Granularity),
	}
}

func openAIConfigMap(cfg openai.Config) map[string]any {
	return map[string]any{
		"base_url":            cfg.BaseURL,
		"api_key":             cfg.APIKey,
		"model":               cfg.Model,
		"prompt":              cfg.Prompt,
		"language":            cfg.Language,
		"timeout":             cfg.Timeout,
		"disable_request_key": cfg.DisableRequestKey,
	}
}

func whisperConfigMap(cfg whisper.Config) map[string]any {
	return map[string]any{
		"url":          cfg.URL,
		"model":        cfg.Model,
		"language":     cfg.Language,
		"device":       cfg.Device,
		"compute_type": cfg.ComputeType,
		"timeout":      cfg.Timeout,
	}
}
