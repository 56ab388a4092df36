// Package openai implements transcription.Provider on the OpenAI audio
// transcription endpoint.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kbukum/whispersrt/errors"
	"github.com/kbukum/whispersrt/httpclient"
	"github.com/kbukum/whispersrt/logger"
	"github.com/kbukum/whispersrt/provider"
	"github.com/kbukum/whispersrt/transcription"
	"github.com/kbukum/whispersrt/util"
	"github.com/kbukum/whispersrt/version"
)

const (
	// ProviderName is the registered name for the OpenAI provider.
	ProviderName = "openai"

	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "whisper-1"
	defaultTimeout = 5 * time.Minute

	transcriptionsPath = "/audio/transcriptions"
	responseFormat     = "verbose_json"
)

// Config holds configuration for the OpenAI transcription provider.
type Config struct {
	BaseURL  string        `json:"base_url" yaml:"base_url" mapstructure:"base_url"`
	APIKey   string        `json:"-" yaml:"api_key" mapstructure:"api_key"`
	Model    string        `json:"model" yaml:"model" mapstructure:"model"`
	Prompt   string        `json:"prompt,omitempty" yaml:"prompt" mapstructure:"prompt"`
	Language string        `json:"language,omitempty" yaml:"language" mapstructure:"language"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	// DisableRequestKey rejects per-call keys so only APIKey is used.
	DisableRequestKey bool `json:"disable_request_key" yaml:"disable_request_key" mapstructure:"disable_request_key"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
}

// Provider implements transcription.Provider against the OpenAI API.
type Provider struct {
	cfg    Config
	client *httpclient.Client
	log    *logger.Logger
}

// NewProvider creates a new OpenAI transcription provider.
func NewProvider(cfg Config) (*Provider, error) {
	cfg.ApplyDefaults()
	client, err := httpclient.New(httpclient.Config{
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout,
		UserAgent: version.UserAgent(),
	})
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	return &Provider{cfg: cfg, client: client, log: logger.Get(ProviderName)}, nil
}

// Factory returns a provider.Factory that creates OpenAI Provider
// instances from a generic config map.
func Factory() provider.Factory[transcription.Provider] {
	return func(cfg map[string]any) (transcription.Provider, error) {
		return NewProvider(Config{
			BaseURL:           provider.ConfigString(cfg, "base_url"),
			APIKey:            provider.ConfigString(cfg, "api_key"),
			Model:             provider.ConfigString(cfg, "model"),
			Prompt:            provider.ConfigString(cfg, "prompt"),
			Language:          provider.ConfigString(cfg, "language"),
			Timeout:           provider.ConfigDuration(cfg, "timeout"),
			DisableRequestKey: provider.ConfigBool(cfg, "disable_request_key", false),
		})
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether a key is configured or callers may supply one.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	return p.cfg.APIKey != "" || !p.cfg.DisableRequestKey
}

// Transcribe uploads the audio file and returns the verbose transcription.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Response, error) {
	key := p.cfg.APIKey
	if req.APIKey != "" && !p.cfg.DisableRequestKey {
		key = req.APIKey
	}
	if key == "" {
		return nil, errors.MissingField("api_key")
	}

	granularity := req.Granularity
	if granularity == "" {
		granularity = transcription.GranularitySegment
	}
	body := (&httpclient.MultipartBody{}).
		Add("model", util.Coalesce(req.Model, p.cfg.Model)).
		Add("response_format", responseFormat).
		Add("timestamp_granularities[]", granularity.String()).
		AddIf("prompt", util.Coalesce(req.Prompt, p.cfg.Prompt)).
		AddIf("language", util.Coalesce(req.Language, p.cfg.Language))
	body.Files = append(body.Files, httpclient.FileField{
		FieldName: "file",
		FileName:  req.FileName,
		Path:      req.AudioPath,
	})

	p.log.WithContext(ctx).Debug("sending transcription request", logger.Fields(
		logger.FieldGranularity, granularity.String(),
		logger.FieldFile, req.FileName,
		"api_key", util.MaskSecret(key, 3),
	))

	resp, err := p.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   transcriptionsPath,
		Body:   body,
		Auth:   httpclient.BearerAuth(key),
	})
	if err != nil {
		return nil, mapError(err)
	}

	var result verboseResponse
	if err := resp.DecodeJSON(&result); err != nil {
		return nil, errors.ExternalServiceError(ProviderName, fmt.Errorf("decode response: %w", err))
	}
	return result.toResponse(), nil
}

// mapError turns transport and status errors into application errors.
func mapError(err error) error {
	switch {
	case httpclient.IsAuth(err), strings.Contains(err.Error(), "Incorrect API key"):
		return errors.InvalidAPIKey("OpenAI").WithCause(fmt.Errorf("%w: %v", transcription.ErrInvalidAPIKey, err))
	case httpclient.IsTimeout(err):
		return errors.Timeout("transcription").WithCause(err)
	case httpclient.IsRateLimit(err):
		return errors.RateLimited().WithCause(err)
	default:
		return errors.ExternalServiceError(ProviderName, err)
	}
}

// verboseResponse mirrors the verbose_json response format.
type verboseResponse struct {
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
	Text     string           `json:"text"`
	Segments []verboseSegment `json:"segments"`
	Words    []verboseWord    `json:"words"`
}

type verboseSegment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type verboseWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (v *verboseResponse) toResponse() *transcription.Response {
	resp := &transcription.Response{
		Text:     v.Text,
		Language: v.Language,
		Duration: v.Duration,
		Segments: make([]transcription.Segment, len(v.Segments)),
	}
	for i, s := range v.Segments {
		resp.Segments[i] = transcription.Segment{Start: s.Start, End: s.End, Text: s.Text}
	}
	if len(v.Words) > 0 {
		resp.Words = make([]transcription.Word, len(v.Words))
		for i, w := range v.Words {
			resp.Words[i] = transcription.Word{Start: w.Start, End: w.End, Word: w.Word}
		}
	}
	return resp
}
