package main

import (
	"fmt"
	"net"
	"strconv"

	"github.com/kbukum/whispersrt/conversion"
	"github.com/kbukum/whispersrt/logger"
	"github.com/kbukum/whispersrt/observability"
	"github.com/kbukum/whispersrt/provider"
	"github.com/kbukum/whispersrt/transcription"
)

// newConversionService builds the service shared by serve and convert. Every
// provider call is logged, traced and, when metrics is non-nil, measured.
func newConversionService(cfg *AppConfig, providers *conversion.Providers, log *logger.Logger, metrics *observability.Metrics) (*conversion.Service, error) {
	return conversion.NewService(cfg.Conversion, providers.Manager(),
		conversion.WithGranularity(providers.Granularity()),
		conversion.WithLogger(log),
		conversion.WithMetrics(metrics),
		conversion.WithMiddleware(
			provider.WithLogging[transcription.Request, *transcription.Response](log),
			provider.WithTracing[transcription.Request, *transcription.Response]("transcription"),
			provider.WithMetrics[transcription.Request, *transcription.Response](metrics),
		),
	)
}

func telemetryResource(cfg *AppConfig) observability.Resource {
	return observability.Resource{
		Name:        cfg.Name,
		Version:     cfg.Version,
		Environment: cfg.Environment,
	}
}

// providerTarget describes where the configured default provider sends audio.
func providerTarget(cfg conversion.TranscriptionConfig) (name, target string) {
	if cfg.Provider == "whisper" {
		return cfg.Provider, cfg.Whisper.URL
	}
	return cfg.Provider, cfg.OpenAI.BaseURL
}

func splitAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid --addr %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid --addr port %q", portStr)
	}
	return host, port, nil
}
