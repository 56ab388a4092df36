package conversion

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kbukum/whispersrt/subtitle"
	"github.com/kbukum/whispersrt/transcription"
	"github.com/kbukum/whispersrt/transcription/openai"
	"github.com/kbukum/whispersrt/transcription/whisper"
	"github.com/kbukum/whispersrt/util"
)

// Default configuration values.
const (
	DefaultMaxUploadSize = "25MB"
	DefaultProvider      = openai.ProviderName
	DefaultOutputName    = "transcription.srt"

	defaultMaxUploadBytes = int64(25 * 1024 * 1024)
)

// DefaultAllowedExtensions are the audio containers accepted for upload.
var DefaultAllowedExtensions = []string{"mp3", "wav", "m4a"}

// Config holds upload and rendering settings for conversions.
type Config struct {
	// MaxUploadSize is a human-readable size such as "25MB".
	MaxUploadSize string `yaml:"max_upload_size" mapstructure:"max_upload_size"`

	// AllowedExtensions lists accepted file extensions without the dot.
	AllowedExtensions []string `yaml:"allowed_extensions" mapstructure:"allowed_extensions"`

	// TempDir holds uploads while they are transcribed. Empty means os.TempDir().
	TempDir string `yaml:"temp_dir" mapstructure:"temp_dir"`

	// Policy is "reject" or "skip".
	Policy string `yaml:"policy" mapstructure:"policy"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = DefaultMaxUploadSize
	}
	if len(c.AllowedExtensions) == 0 {
		c.AllowedExtensions = append([]string(nil), DefaultAllowedExtensions...)
	}
	for i, ext := range c.AllowedExtensions {
		c.AllowedExtensions[i] = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	}
	if c.Policy == "" {
		c.Policy = subtitle.PolicyReject.String()
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if n, err := util.ParseSize(c.MaxUploadSize); err != nil || n <= 0 {
		return fmt.Errorf("conversion.max_upload_size must be a positive size (got: %q)", c.MaxUploadSize)
	}
	if _, err := subtitle.ParsePolicy(c.Policy); err != nil {
		return fmt.Errorf("conversion.policy: %w", err)
	}
	if c.TempDir != "" {
		info, err := os.Stat(c.TempDir)
		if err != nil {
			return fmt.Errorf("conversion.temp_dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("conversion.temp_dir %q is not a directory", c.TempDir)
		}
	}
	return nil
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return util.SizeOr(c.MaxUploadSize, defaultMaxUploadBytes)
}

// TranscriptionConfig selects and configures the transcription providers.
type TranscriptionConfig struct {
	// Provider is the default provider name.
	Provider string `yaml:"provider" mapstructure:"provider"`

	// Granularity is the default timing resolution: "segment" or "word".
	Granularity string `yaml:"granularity" mapstructure:"granularity"`

	OpenAI  openai.Config `yaml:"openai" mapstructure:"openai"`
	Whisper WhisperConfig `yaml:"whisper" mapstructure:"whisper"`
}

// WhisperConfig enables the faster-whisper sidecar provider.
type WhisperConfig struct {
	whisper.Config `yaml:",inline" mapstructure:",squash"`

	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *TranscriptionConfig) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.Granularity == "" {
		c.Granularity = transcription.GranularitySegment.String()
	}
	c.OpenAI.ApplyDefaults()
}

// Validate checks the configuration.
func (c *TranscriptionConfig) Validate() error {
	var errs []error
	switch c.Provider {
	case openai.ProviderName:
	case whisper.ProviderName:
		if !c.Whisper.Enabled {
			errs = append(errs, errors.New("transcription.whisper.enabled must be true when it is the default provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("transcription.provider must be one of [openai, whisper] (got: %s)", c.Provider))
	}
	if _, err := transcription.ParseGranularity(c.Granularity); err != nil {
		errs = append(errs, fmt.Errorf("transcription.granularity: %w", err))
	}
	return errors.Join(errs...)
}
