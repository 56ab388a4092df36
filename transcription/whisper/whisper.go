// Package whisper implements transcription.Provider on a faster-whisper
// HTTP sidecar.
package whisper

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kbukum/whispersrt/errors"
	"github.com/kbukum/whispersrt/httpclient"
	"github.com/kbukum/whispersrt/provider"
	"github.com/kbukum/whispersrt/transcription"
	"github.com/kbukum/whispersrt/util"
	"github.com/kbukum/whispersrt/version"
)

const (
	// ProviderName is the registered name for the Whisper provider.
	ProviderName = "whisper"

	defaultWhisperURL     = "http://localhost:8387"
	defaultWhisperModel   = "base"
	defaultWhisperTimeout = 120 * time.Second
)

// Config holds configuration for the Whisper transcription provider.
type Config struct {
	URL         string        `json:"url" yaml:"url" mapstructure:"url"`
	Model       string        `json:"model" yaml:"model" mapstructure:"model"`
	Language    string        `json:"language,omitempty" yaml:"language" mapstructure:"language"`
	Device      string        `json:"device,omitempty" yaml:"device" mapstructure:"device"`
	ComputeType string        `json:"compute_type,omitempty" yaml:"compute_type" mapstructure:"compute_type"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// Provider implements transcription.Provider using a faster-whisper HTTP sidecar.
type Provider struct {
	cfg    Config
	client *httpclient.Client
}

// NewProvider creates a new Whisper transcription provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.URL == "" {
		cfg.URL = defaultWhisperURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultWhisperModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultWhisperTimeout
	}
	client, err := httpclient.New(httpclient.Config{
		BaseURL:   cfg.URL,
		Timeout:   cfg.Timeout,
		UserAgent: version.UserAgent(),
	})
	if err != nil {
		return nil, fmt.Errorf("whisper: %w", err)
	}
	return &Provider{cfg: cfg, client: client}, nil
}

// Factory returns a provider.Factory that creates Whisper Provider
// instances from a generic config map.
func Factory() provider.Factory[transcription.Provider] {
	return func(cfg map[string]any) (transcription.Provider, error) {
		return NewProvider(Config{
			URL:         provider.ConfigString(cfg, "url"),
			Model:       provider.ConfigString(cfg, "model"),
			Language:    provider.ConfigString(cfg, "language"),
			Device:      provider.ConfigString(cfg, "device"),
			ComputeType: provider.ConfigString(cfg, "compute_type"),
			Timeout:     provider.ConfigDuration(cfg, "timeout"),
		})
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the Whisper sidecar is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	resp, err := p.client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: "/health"})
	return err == nil && resp.StatusCode == http.StatusOK
}

// Transcribe sends an audio file to the Whisper sidecar and returns the transcription.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Response, error) {
	body := (&httpclient.MultipartBody{}).
		Add("model", util.Coalesce(req.Model, p.cfg.Model)).
		AddIf("language", util.Coalesce(req.Language, p.cfg.Language)).
		AddIf("initial_prompt", req.Prompt).
		AddIf("device", p.cfg.Device).
		AddIf("compute_type", p.cfg.ComputeType)
	if req.Granularity == transcription.GranularityWord {
		body.Add("word_timestamps", "true")
	}
	body.Files = append(body.Files, httpclient.FileField{
		FieldName: "audio",
		FileName:  util.Coalesce(req.FileName, "audio.wav"),
		Path:      req.AudioPath,
	})

	resp, err := p.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/transcribe",
		Body:   body,
	})
	if err != nil {
		if httpclient.IsTimeout(err) {
			return nil, errors.Timeout("transcription").WithCause(err)
		}
		return nil, errors.ExternalServiceError(ProviderName, err)
	}

	var result whisperResponse
	if err := resp.DecodeJSON(&result); err != nil {
		return nil, errors.ExternalServiceError(ProviderName, fmt.Errorf("decode whisper response: %w", err))
	}
	return toTranscriptionResponse(&result), nil
}

// --- internal Whisper API response types ---

type whisperResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
}

type whisperSegment struct {
	Text  string        `json:"text"`
	Start float64       `json:"start"`
	End   float64       `json:"end"`
	Words []whisperWord `json:"words,omitempty"`
}

type whisperWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func toTranscriptionResponse(resp *whisperResponse) *transcription.Response {
	segments := make([]transcription.Segment, len(resp.Segments))
	for i, seg := range resp.Segments {
		segments[i] = transcription.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		}
		for _, w := range seg.Words {
			segments[i].Words = append(segments[i].Words, transcription.Word{Start: w.Start, End: w.End, Word: w.Word})
		}
	}

	var duration float64
	if len(resp.Segments) > 0 {
		duration = resp.Segments[len(resp.Segments)-1].End
	}

	return &transcription.Response{
		Text:     resp.Text,
		Segments: segments,
		Duration: duration,
		Language: resp.Language,
	}
}
