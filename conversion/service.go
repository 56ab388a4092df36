package conversion

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/whispersrt/errors"
	"github.com/kbukum/whispersrt/logger"
	"github.com/kbukum/whispersrt/observability"
	"github.com/kbukum/whispersrt/provider"
	"github.com/kbukum/whispersrt/subtitle"
	"github.com/kbukum/whispersrt/transcription"
	"github.com/kbukum/whispersrt/transcription/openai"
	"github.com/kbukum/whispersrt/transcription/whisper"
	"github.com/kbukum/whispersrt/util"
	"github.com/kbukum/whispersrt/validation"
)

// Upload is an audio file received from a client.
type Upload struct {
	FileName string
	// Size is the declared size in bytes, or 0 when unknown.
	Size int64
	Body io.Reader
}

// Options tune a single conversion. Zero values fall back to the service
// defaults.
type Options struct {
	APIKey      string
	Granularity string
	Language    string
	Prompt      string
	Model       string
	Provider    string
}

const (
	maxPromptLength = 1000
	maxModelLength  = 64
)

// Validate checks the per-call options before any audio is read.
func (o Options) Validate() error {
	return validation.New().
		OneOf("granularity", strings.ToLower(strings.TrimSpace(o.Granularity)),
			[]string{string(transcription.GranularitySegment), string(transcription.GranularityWord)}).
		OneOf("provider", o.Provider, []string{openai.ProviderName, whisper.ProviderName}).
		Language("language", o.Language).
		MaxLength("prompt", o.Prompt, maxPromptLength).
		MaxLength("model", o.Model, maxModelLength).
		Err()
}

// Result is a rendered subtitle document plus the data behind it.
type Result struct {
	ID          string                    `json:"id"`
	SRT         string                    `json:"srt"`
	FileName    string                    `json:"file_name"`
	Source      string                    `json:"source"`
	Provider    string                    `json:"provider"`
	Granularity transcription.Granularity `json:"granularity"`
	Language    string                    `json:"language,omitempty"`
	Text        string                    `json:"text,omitempty"`
	Units       []subtitle.Unit           `json:"units"`
	Report      subtitle.Report           `json:"report"`
	Stats       Stats                     `json:"stats"`
	Elapsed     time.Duration             `json:"-"`
}

// Service turns uploaded audio into SubRip documents.
type Service struct {
	providers   *provider.Manager[transcription.Provider]
	policy      subtitle.Policy
	granularity transcription.Granularity
	maxBytes    int64
	allowed     []string
	tempDir     string
	middlewares []transcription.Middleware
	metrics     *observability.Metrics
	log         *logger.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithGranularity sets the granularity used when a call does not name one.
func WithGranularity(g transcription.Granularity) Option {
	return func(s *Service) { s.granularity = g }
}

// WithMiddleware wraps every provider call; the first middleware is outermost.
func WithMiddleware(mws ...transcription.Middleware) Option {
	return func(s *Service) { s.middlewares = append(s.middlewares, mws...) }
}

// WithMetrics records conversion metrics on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the service logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l.WithComponent("conversion") }
}

// NewService creates a conversion service over the given provider manager.
func NewService(cfg Config, providers *provider.Manager[transcription.Provider], opts ...Option) (*Service, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if providers == nil {
		return nil, fmt.Errorf("conversion: provider manager is required")
	}
	policy, _ := subtitle.ParsePolicy(cfg.Policy)
	s := &Service{
		providers:   providers,
		policy:      policy,
		granularity: transcription.GranularitySegment,
		maxBytes:    cfg.MaxUploadBytes(),
		allowed:     cfg.AllowedExtensions,
		tempDir:     cfg.TempDir,
		log:         logger.Get("conversion"),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// MaxUploadBytes returns the upload limit in bytes.
func (s *Service) MaxUploadBytes() int64 { return s.maxBytes }

// AllowedExtensions returns the accepted file extensions.
func (s *Service) AllowedExtensions() []string { return slices.Clone(s.allowed) }

// Policy returns the configured malformed-unit policy.
func (s *Service) Policy() subtitle.Policy { return s.policy }

// Validate checks an upload's name and declared size without reading it.
func (s *Service) Validate(up Upload) (string, error) {
	name := util.SanitizeFileName(up.FileName)
	if name == "" {
		return "", errors.MissingField("file")
	}
	if ext := util.Extension(name); !slices.Contains(s.allowed, ext) {
		return "", errors.UnsupportedMediaType(ext, s.AllowedExtensions())
	}
	if up.Size > s.maxBytes {
		return "", errors.PayloadTooLarge(up.Size, s.maxBytes)
	}
	return name, nil
}

// Convert transcribes the upload and renders the result as SubRip.
//
// The upload is spooled to a temporary file which is removed before Convert
// returns, whether or not the provider call succeeded.
func (s *Service) Convert(ctx context.Context, up Upload, opts Options) (result *Result, err error) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, observability.SpanConvert)
	defer span.End()
	log := s.log.WithContext(ctx)

	providerName := opts.Provider
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			observability.SetSpanError(ctx, err)
			s.metrics.RecordError(ctx, string(errors.Wrap(err).Code), "conversion")
		}
		var emitted, discarded int
		if result != nil {
			emitted, discarded = result.Report.Emitted, result.Report.Discarded
		}
		s.metrics.RecordConversion(ctx, providerName, status, emitted, discarded, time.Since(start))
	}()

	name, err := s.Validate(up)
	if err != nil {
		return nil, err
	}
	if err = opts.Validate(); err != nil {
		return nil, err
	}
	g := s.granularity
	if opts.Granularity != "" {
		if g, err = transcription.ParseGranularity(opts.Granularity); err != nil {
			return nil, errors.InvalidInput("granularity", err.Error())
		}
	}

	p, err := s.providers.Resolve(ctx, opts.Provider)
	if err != nil {
		return nil, errors.ServiceUnavailable("transcription").WithCause(err)
	}
	providerName = p.Name()
	observability.SetSpanAttribute(ctx, observability.AttrProvider, providerName)
	observability.SetSpanAttribute(ctx, observability.AttrGranularity, g.String())

	path, size, err := s.spool(name, up.Body)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			log.WithError(rmErr).Warn("failed to remove temporary upload", logger.Fields(logger.FieldFile, path))
		}
	}()
	observability.SetSpanAttribute(ctx, observability.AttrUploadBytes, size)

	resp, err := transcription.Instrument(p, s.middlewares...).Transcribe(ctx, transcription.Request{
		AudioPath:   path,
		FileName:    name,
		Language:    opts.Language,
		Model:       opts.Model,
		Prompt:      opts.Prompt,
		Granularity: g,
		APIKey:      opts.APIKey,
	})
	if err != nil {
		return nil, providerError(providerName, err)
	}

	units, err := resp.Units(g)
	if err != nil {
		return nil, errors.ExternalServiceError(providerName, err).
			WithDetail("granularity", g.String())
	}

	srt, report, err := subtitle.Assembler{Policy: s.policy}.Assemble(units)
	if err != nil {
		var mu *subtitle.MalformedUnitError
		if stderrors.As(err, &mu) {
			return nil, errors.MalformedUnits(len(mu.Indexes()), mu.Issues).WithCause(err)
		}
		return nil, errors.Internal(err)
	}
	kept := rendered(units, report)
	observability.SetSpanAttribute(ctx, observability.AttrUnits, report.Emitted)
	observability.SetSpanAttribute(ctx, observability.AttrDiscarded, report.Discarded)

	result = &Result{
		ID:          uuid.NewString(),
		SRT:         srt,
		FileName:    DefaultOutputName,
		Source:      name,
		Provider:    providerName,
		Granularity: g,
		Language:    resp.Language,
		Text:        resp.Text,
		Units:       kept,
		Report:      report,
		Stats:       Analyze(kept),
		Elapsed:     time.Since(start),
	}

	fields := logger.DurationFields("convert", result.Elapsed)
	fields[logger.FieldFile] = name
	fields[logger.FieldProvider] = providerName
	fields[logger.FieldGranularity] = g.String()
	fields[logger.FieldUnits] = report.Emitted
	fields["discarded"] = report.Discarded
	fields["bytes"] = size
	fields["conversion_id"] = result.ID
	log.Info("conversion completed", fields)
	return result, nil
}

// spool copies body into a temporary file named after the upload's
// extension, enforcing the size limit while copying.
func (s *Service) spool(name string, body io.Reader) (string, int64, error) {
	if body == nil {
		return "", 0, errors.MissingField("file")
	}
	f, err := os.CreateTemp(s.tempDir, "whispersrt-*."+util.Extension(name))
	if err != nil {
		return "", 0, errors.Internal(fmt.Errorf("create temp file: %w", err))
	}
	path := f.Name()

	n, copyErr := io.Copy(f, io.LimitReader(body, s.maxBytes+1))
	closeErr := f.Close()
	switch {
	case copyErr != nil:
		err = errors.Internal(fmt.Errorf("write temp file: %w", copyErr))
	case closeErr != nil:
		err = errors.Internal(fmt.Errorf("close temp file: %w", closeErr))
	case n > s.maxBytes:
		err = errors.PayloadTooLarge(n, s.maxBytes)
	case n == 0:
		err = errors.InvalidInput("file", "the uploaded file is empty")
	}
	if err != nil {
		_ = os.Remove(path)
		return "", 0, err
	}
	return path, n, nil
}

// providerError keeps AppErrors raised by providers and wraps anything else.
func providerError(name string, err error) error {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Timeout("transcription").WithCause(err)
	}
	return errors.ExternalServiceError(name, err)
}

// rendered returns the units that made it into the document.
func rendered(units []subtitle.Unit, report subtitle.Report) []subtitle.Unit {
	if report.Discarded == 0 {
		return units
	}
	dropped := make(map[int]bool, len(report.Issues))
	for _, is := range report.Issues {
		dropped[is.Index] = true
	}
	kept := make([]subtitle.Unit, 0, len(units)-report.Discarded)
	for i, u := range units {
		if !dropped[i] {
			kept = append(kept, u)
		}
	}
	return kept
}
