package conversion

import (
	"bytes"
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/whispersrt/component"
	"github.com/kbukum/whispersrt/errors"
	"github.com/kbukum/whispersrt/logger"
	"github.com/kbukum/whispersrt/subtitle"
	"github.com/kbukum/whispersrt/transcription"
	"github.com/kbukum/whispersrt/transcription/openai"
	"github.com/kbukum/whispersrt/transcription/whisper"
)

type fakeProvider struct {
	resp *transcription.Response
	err  error

	got      transcription.Request
	spooled  []byte
	existed  bool
	attempts int
}

func (f *fakeProvider) Name() string                         { return "fake" }
func (f *fakeProvider) IsAvailable(ctx context.Context) bool { return true }
func (f *fakeProvider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Response, error) {
	f.attempts++
	f.got = req
	data, err := os.ReadFile(req.AudioPath)
	f.existed = err == nil
	f.spooled = data
	return f.resp, f.err
}

func newTestService(t *testing.T, p *fakeProvider, cfg Config, opts ...Option) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	cfg.TempDir = dir
	mgr := transcription.NewManager()
	mgr.Put(p.Name(), p)
	if err := mgr.SetDefault(p.Name()); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	opts = append([]Option{WithLogger(logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "test", &buf))}, opts...)
	svc, err := NewService(cfg, mgr, opts...)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, dir
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected temp dir to be empty, found %d entries", len(entries))
	}
}

func codeOf(err error) errors.ErrorCode {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

var twoSegments = &transcription.Response{
	Text:     "Namaste dosto. Aaj hum baat karenge.",
	Language: "hindi",
	Segments: []transcription.Segment{
		{Start: 0, End: 2.5, Text: " Namaste dosto."},
		{Start: 3.0, End: 5.25, Text: "Aaj hum baat karenge. "},
	},
}

func TestConvertSuccess(t *testing.T) {
	p := &fakeProvider{resp: twoSegments}
	svc, dir := newTestService(t, p, Config{})

	res, err := svc.Convert(context.Background(),
		Upload{FileName: "../uploads/Talk.MP3", Size: 10, Body: strings.NewReader("ID3 audio!")},
		Options{APIKey: "sk-test", Language: "hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "1\n00:00:00,000 --> 00:00:02,500\nNamaste dosto.\n\n" +
		"2\n00:00:03,000 --> 00:00:05,250\nAaj hum baat karenge.\n\n"
	if res.SRT != want {
		t.Errorf("unexpected SRT:\n%q\nwant:\n%q", res.SRT, want)
	}
	if res.FileName != "transcription.srt" || res.Source != "Talk.MP3" || res.Provider != "fake" {
		t.Errorf("unexpected result metadata: %+v", res)
	}
	if res.ID == "" {
		t.Error("expected a conversion id")
	}
	if res.Report.Emitted != 2 || res.Stats.Count != 2 {
		t.Errorf("expected 2 units, got report %+v stats count %d", res.Report, res.Stats.Count)
	}

	if !p.existed || string(p.spooled) != "ID3 audio!" {
		t.Errorf("provider did not see the spooled upload: existed=%v data=%q", p.existed, p.spooled)
	}
	if filepath.Ext(p.got.AudioPath) != ".mp3" {
		t.Errorf("expected temp file with .mp3 suffix, got %s", p.got.AudioPath)
	}
	if p.got.APIKey != "sk-test" || p.got.Language != "hi" || p.got.Granularity != transcription.GranularitySegment {
		t.Errorf("unexpected request: %+v", p.got)
	}
	assertEmptyDir(t, dir)
}

func TestConvertValidation(t *testing.T) {
	tests := []struct {
		name   string
		upload Upload
		opts   Options
		code   errors.ErrorCode
	}{
		{"unsupported extension", Upload{FileName: "notes.txt", Body: strings.NewReader("x")}, Options{}, errors.ErrCodeUnsupportedMediaType},
		{"no extension", Upload{FileName: "audio", Body: strings.NewReader("x")}, Options{}, errors.ErrCodeUnsupportedMediaType},
		{"missing name", Upload{FileName: "", Body: strings.NewReader("x")}, Options{}, errors.ErrCodeMissingField},
		{"declared size over limit", Upload{FileName: "a.wav", Size: 2048, Body: strings.NewReader("x")}, Options{}, errors.ErrCodePayloadTooLarge},
		{"body over limit", Upload{FileName: "a.wav", Body: strings.NewReader(strings.Repeat("x", 1025))}, Options{}, errors.ErrCodePayloadTooLarge},
		{"empty body", Upload{FileName: "a.m4a", Body: strings.NewReader("")}, Options{}, errors.ErrCodeInvalidInput},
		{"nil body", Upload{FileName: "a.m4a"}, Options{}, errors.ErrCodeMissingField},
		{"bad granularity", Upload{FileName: "a.mp3", Body: strings.NewReader("x")}, Options{Granularity: "sentence"}, errors.ErrCodeInvalidInput},
		{"unknown provider name", Upload{FileName: "a.mp3", Body: strings.NewReader("x")}, Options{Provider: "azure"}, errors.ErrCodeInvalidInput},
		{"language name instead of code", Upload{FileName: "a.mp3", Body: strings.NewReader("x")}, Options{Language: "hindi"}, errors.ErrCodeInvalidInput},
		{"prompt too long", Upload{FileName: "a.mp3", Body: strings.NewReader("x")}, Options{Prompt: strings.Repeat("p", 1001)}, errors.ErrCodeInvalidInput},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := &fakeProvider{resp: twoSegments}
			svc, dir := newTestService(t, p, Config{MaxUploadSize: "1KB"})
			_, err := svc.Convert(context.Background(), tc.upload, tc.opts)
			if got := codeOf(err); got != tc.code {
				t.Fatalf("expected %s, got %s (%v)", tc.code, got, err)
			}
			if p.attempts != 0 {
				t.Error("provider must not be called for invalid uploads")
			}
			assertEmptyDir(t, dir)
		})
	}
}

func TestConvertProviderErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code errors.ErrorCode
	}{
		{"invalid key", errors.InvalidAPIKey("OpenAI").WithCause(transcription.ErrInvalidAPIKey), errors.ErrCodeInvalidAPIKey},
		{"plain error", stderrors.New("connection reset"), errors.ErrCodeExternalService},
		{"deadline", context.DeadlineExceeded, errors.ErrCodeTimeout},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := &fakeProvider{err: tc.err}
			svc, dir := newTestService(t, p, Config{})
			_, err := svc.Convert(context.Background(), Upload{FileName: "a.mp3", Body: strings.NewReader("x")}, Options{})
			if got := codeOf(err); got != tc.code {
				t.Fatalf("expected %s, got %s (%v)", tc.code, got, err)
			}
			if !p.existed {
				t.Error("expected the temp file to exist during the provider call")
			}
			assertEmptyDir(t, dir)
		})
	}

	p := &fakeProvider{err: errors.InvalidAPIKey("OpenAI").WithCause(transcription.ErrInvalidAPIKey)}
	svc, _ := newTestService(t, p, Config{})
	_, err := svc.Convert(context.Background(), Upload{FileName: "a.mp3", Body: strings.NewReader("x")}, Options{})
	if !stderrors.Is(err, transcription.ErrInvalidAPIKey) {
		t.Errorf("expected ErrInvalidAPIKey in chain, got %v", err)
	}
}

func TestConvertUnknownProvider(t *testing.T) {
	svc, dir := newTestService(t, &fakeProvider{resp: twoSegments}, Config{})
	_, err := svc.Convert(context.Background(), Upload{FileName: "a.mp3", Body: strings.NewReader("x")}, Options{Provider: "whisper"})
	if got := codeOf(err); got != errors.ErrCodeServiceUnavailable {
		t.Fatalf("expected SERVICE_UNAVAILABLE, got %s (%v)", got, err)
	}
	assertEmptyDir(t, dir)
}

func TestConvertWordGranularity(t *testing.T) {
	withWords := &transcription.Response{
		Segments: []transcription.Segment{{Start: 0, End: 1, Text: "hello world", Words: []transcription.Word{
			{Start: 0, End: 0.4, Word: "hello"},
			{Start: 0.5, End: 1, Word: "world"},
		}}},
	}
	svc, _ := newTestService(t, &fakeProvider{resp: withWords}, Config{})
	res, err := svc.Convert(context.Background(), Upload{FileName: "a.mp3", Body: strings.NewReader("x")}, Options{Granularity: "word"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Report.Emitted != 2 || !strings.Contains(res.SRT, "2\n00:00:00,500 --> 00:00:01,000\nworld\n") {
		t.Errorf("unexpected word SRT: %q", res.SRT)
	}

	svc, _ = newTestService(t, &fakeProvider{resp: twoSegments}, Config{}, WithGranularity(transcription.GranularityWord))
	_, err = svc.Convert(context.Background(), Upload{FileName: "a.mp3", Body: strings.NewReader("x")}, Options{})
	if !stderrors.Is(err, transcription.ErrNoWordTimings) {
		t.Errorf("expected ErrNoWordTimings, got %v", err)
	}
}

func TestConvertPolicies(t *testing.T) {
	bad := &transcription.Response{Segments: []transcription.Segment{
		{Start: 0, End: 1, Text: "one"},
		{Start: 5, End: 4, Text: "backwards"},
		{Start: 6, End: 7, Text: "three"},
	}}

	svc, _ := newTestService(t, &fakeProvider{resp: bad}, Config{})
	_, err := svc.Convert(context.Background(), Upload{FileName: "a.mp3", Body: strings.NewReader("x")}, Options{})
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeMalformedUnit || appErr.HTTPStatus != http.StatusUnprocessableEntity {
		t.Fatalf("expected MALFORMED_UNIT, got %v", err)
	}
	issues, _ := appErr.Details["issues"].([]subtitle.Issue)
	if len(issues) != 1 || issues[0].Index != 1 {
		t.Errorf("expected one issue at index 1, got %+v", appErr.Details["issues"])
	}

	svc, _ = newTestService(t, &fakeProvider{resp: bad}, Config{Policy: "skip"})
	res, err := svc.Convert(context.Background(), Upload{FileName: "a.mp3", Body: strings.NewReader("x")}, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Report.Emitted != 2 || res.Report.Discarded != 1 {
		t.Errorf("unexpected report %+v", res.Report)
	}
	if len(res.Units) != 2 || res.Units[1].Text != "three" {
		t.Errorf("expected rendered units only, got %+v", res.Units)
	}
	if !strings.Contains(res.SRT, "2\n00:00:06,000 --> 00:00:07,000\nthree\n") {
		t.Errorf("expected renumbered block, got %q", res.SRT)
	}
}

func TestAnalyze(t *testing.T) {
	st := Analyze([]subtitle.Unit{
		{Start: 0, End: 2, Text: " a\n"},
		{Start: 2.5, End: 6, Text: "b"},
		{Start: 5.5, End: 7, Text: "c"},
	})
	if st.Count != 3 || st.Speech != 7 || st.Span != 7 {
		t.Errorf("unexpected totals: %+v", st)
	}
	if st.TotalGap != 0.5 || st.MaxGap != 0.5 || st.Overlaps != 1 {
		t.Errorf("unexpected gaps: total=%v max=%v overlaps=%d", st.TotalGap, st.MaxGap, st.Overlaps)
	}
	if st.LongestUnit != 2 || st.LongestLength != 3.5 {
		t.Errorf("unexpected longest: %d %v", st.LongestUnit, st.LongestLength)
	}
	if g := st.Units[0].GapToNext; g == nil || *g != 0.5 {
		t.Errorf("unexpected first gap %v", g)
	}
	if g := st.Units[1].GapToNext; g == nil || *g != -0.5 {
		t.Errorf("unexpected overlap gap %v", g)
	}
	if st.Units[2].GapToNext != nil {
		t.Error("last unit must have no gap")
	}
	if st.Units[0].Text != "a" {
		t.Errorf("expected trimmed text, got %q", st.Units[0].Text)
	}

	if empty := Analyze(nil); empty.Count != 0 || len(empty.Units) != 0 {
		t.Errorf("unexpected stats for no units: %+v", empty)
	}
}

func TestConfig(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.MaxUploadBytes() != 25*1024*1024 {
		t.Errorf("expected 25MB default, got %d", cfg.MaxUploadBytes())
	}
	if strings.Join(cfg.AllowedExtensions, ",") != "mp3,wav,m4a" || cfg.Policy != "reject" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	custom := Config{AllowedExtensions: []string{".FLAC", " mp3 "}}
	custom.ApplyDefaults()
	if strings.Join(custom.AllowedExtensions, ",") != "flac,mp3" {
		t.Errorf("expected normalized extensions, got %v", custom.AllowedExtensions)
	}

	for _, bad := range []Config{
		{MaxUploadSize: "0MB", Policy: "reject"},
		{MaxUploadSize: "1MB", Policy: "merge"},
		{MaxUploadSize: "1MB", Policy: "skip", TempDir: "/nonexistent/whispersrt"},
	} {
		if err := bad.Validate(); err == nil {
			t.Errorf("expected validation error for %+v", bad)
		}
	}

	tc := TranscriptionConfig{}
	tc.ApplyDefaults()
	if tc.Provider != "openai" || tc.Granularity != "segment" || tc.OpenAI.Model != "whisper-1" {
		t.Errorf("unexpected transcription defaults: %+v", tc)
	}
	if err := tc.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	tc.Provider = whisper.ProviderName
	if err := tc.Validate(); err == nil {
		t.Error("expected error for disabled default whisper provider")
	}
}

func TestProvidersComponent(t *testing.T) {
	var down atomic.Bool
	sidecar := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if down.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer sidecar.Close()

	cfg := TranscriptionConfig{Granularity: "word"}
	cfg.Whisper.Enabled = true
	cfg.Whisper.URL = sidecar.URL
	cfg.Whisper.Timeout = time.Second

	c := NewProviders(cfg, logger.NewDefault("test"))
	if h := c.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := c.Manager().Available(); len(got) != 2 || got[0] != "openai" || got[1] != "whisper" {
		t.Errorf("unexpected providers %v", got)
	}
	if c.Manager().Default() != openai.ProviderName {
		t.Errorf("expected openai default, got %s", c.Manager().Default())
	}
	if c.Granularity() != transcription.GranularityWord {
		t.Errorf("expected word granularity, got %s", c.Granularity())
	}
	if h := c.Health(context.Background()); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %s: %s", h.Status, h.Message)
	}

	down.Store(true)
	h := c.Health(context.Background())
	if h.Status != component.StatusDegraded || !strings.Contains(h.Message, "whisper") {
		t.Errorf("expected degraded with whisper down, got %s: %s", h.Status, h.Message)
	}
	if d := c.Describe(); !strings.Contains(d.Details, "providers=openai,whisper") {
		t.Errorf("unexpected description %q", d.Details)
	}
	if err := c.Stop(context.Background()); err != nil {
		t.Errorf("Stop: %v", err)
	}
}

func TestProvidersComponentDefaultUnavailable(t *testing.T) {
	cfg := TranscriptionConfig{}
	cfg.OpenAI.DisableRequestKey = true
	c := NewProviders(cfg, logger.NewDefault("test"))
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if h := c.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy without any usable key, got %s", h.Status)
	}
}
