package webui

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/whispersrt/conversion"
	"github.com/kbukum/whispersrt/errors"
	"github.com/kbukum/whispersrt/logger"
	"github.com/kbukum/whispersrt/transcription"
)

type stubProvider struct {
	resp   *transcription.Response
	err    error
	gotKey string
}

func (s *stubProvider) Name() string                         { return "stub" }
func (s *stubProvider) IsAvailable(ctx context.Context) bool { return true }
func (s *stubProvider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Response, error) {
	s.gotKey = req.APIKey
	return s.resp, s.err
}

var sample = &transcription.Response{Segments: []transcription.Segment{
	{Start: 0, End: 1.25, Text: "Kya haal hai"},
	{Start: 1.5, End: 3, Text: " sab theek "},
}}

const sampleSRT = "1\n00:00:00,000 --> 00:00:01,250\nKya haal hai\n\n" +
	"2\n00:00:01,500 --> 00:00:03,000\nsab theek\n\n"

func newTestEngine(t *testing.T, p *stubProvider) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewWithWriter(&logger.Config{Level: "error", Format: "json"}, "test", io.Discard)

	mgr := transcription.NewManager()
	mgr.Put(p.Name(), p)
	if err := mgr.SetDefault(p.Name()); err != nil {
		t.Fatal(err)
	}
	svc, err := conversion.NewService(conversion.Config{TempDir: t.TempDir(), MaxUploadSize: "1KB"}, mgr, conversion.WithLogger(log))
	if err != nil {
		t.Fatal(err)
	}
	h, err := New(svc, log)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	engine := gin.New()
	h.Register(engine)
	return engine
}

func multipartRequest(t *testing.T, target string, fields map[string]string, fileField, fileName string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if fileField != "" {
		fw, err := w.CreateFormFile(fileField, fileName)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = fw.Write(data)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestIndex(t *testing.T) {
	engine := newTestEngine(t, &stubProvider{resp: sample})
	w := serve(engine, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"Audio Transcription to SRT", "Maximum file size: 1 KB", "Supported formats: MP3, WAV, M4A", `accept=".mp3,.wav,.m4a"`, `name="api_key"`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected page to contain %q", want)
		}
	}
}

func TestTranscribeForm(t *testing.T) {
	p := &stubProvider{resp: sample}
	engine := newTestEngine(t, p)

	w := serve(engine, multipartRequest(t, "/transcribe",
		map[string]string{"api_key": "sk-form", "granularity": "segment"}, "audio_file", "clip.mp3", []byte("ID3")))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	for _, want := range []string{"Transcription complete!", "00:00:01,500 --&gt; 00:00:03,000", "Debug Information", "clip.mp3", "<td>0.25</td>"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected result page to contain %q", want)
		}
	}
	if p.gotKey != "sk-form" {
		t.Errorf("expected provider to receive form key, got %q", p.gotKey)
	}
}

func TestTranscribeFormErrors(t *testing.T) {
	tests := []struct {
		name    string
		p       *stubProvider
		fields  map[string]string
		file    string
		data    []byte
		status  int
		message string
	}{
		{"missing key", &stubProvider{resp: sample}, nil, "a.mp3", []byte("x"), http.StatusBadRequest, "api_key: is required"},
		{"invalid key", &stubProvider{err: errors.InvalidAPIKey("OpenAI")}, map[string]string{"api_key": "sk-bad"}, "a.mp3", []byte("x"),
			http.StatusUnauthorized, "Invalid API key. Please check your OpenAI API key and try again."},
		{"unsupported type", &stubProvider{resp: sample}, map[string]string{"api_key": "k"}, "a.flac", []byte("x"), http.StatusUnsupportedMediaType, "Unsupported file type"},
		{"too large", &stubProvider{resp: sample}, map[string]string{"api_key": "k"}, "a.wav", make([]byte, 2048), http.StatusRequestEntityTooLarge, "maximum limit of 1 KB"},
		{"missing file", &stubProvider{resp: sample}, map[string]string{"api_key": "k"}, "", nil, http.StatusBadRequest, "audio_file"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			engine := newTestEngine(t, tc.p)
			field := "audio_file"
			if tc.file == "" {
				field = ""
			}
			w := serve(engine, multipartRequest(t, "/transcribe", tc.fields, field, tc.file, tc.data))
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
			if body := w.Body.String(); !strings.Contains(body, `class="error"`) || !strings.Contains(body, tc.message) {
				t.Errorf("expected error message %q in page", tc.message)
			}
		})
	}
}

func TestDownload(t *testing.T) {
	engine := newTestEngine(t, &stubProvider{resp: sample})
	req := httptest.NewRequest(http.MethodPost, "/download", strings.NewReader(url.Values{"srt": {sampleSRT}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := serve(engine, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="transcription.srt"` {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Errorf("unexpected Content-Type %q", ct)
	}
	if w.Body.String() != sampleSRT {
		t.Errorf("unexpected body %q", w.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/download", strings.NewReader("srt="))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if w := serve(engine, req); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty srt, got %d", w.Code)
	}
}

func TestCreateTranscriptionAPI(t *testing.T) {
	p := &stubProvider{resp: sample}
	engine := newTestEngine(t, p)

	req := multipartRequest(t, "/api/v1/transcriptions", map[string]string{"api_key": "sk-form"}, "file", "clip.m4a", []byte("audio"))
	req.Header.Set("Authorization", "Bearer sk-header")
	w := serve(engine, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if p.gotKey != "sk-header" {
		t.Errorf("expected bearer key to win, got %q", p.gotKey)
	}
	var resp struct {
		Data struct {
			SRT    string `json:"srt"`
			Units  []any  `json:"units"`
			Report struct {
				Emitted int `json:"emitted"`
			} `json:"report"`
			Stats struct {
				Count int `json:"count"`
			} `json:"stats"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.SRT != sampleSRT || len(resp.Data.Units) != 2 || resp.Data.Report.Emitted != 2 || resp.Data.Stats.Count != 2 {
		t.Errorf("unexpected response %s", w.Body.String())
	}

	w = serve(engine, multipartRequest(t, "/api/v1/transcriptions?format=srt", map[string]string{"api_key": "sk-form"}, "file", "clip.wav", []byte("audio")))
	if w.Code != http.StatusOK || w.Body.String() != sampleSRT {
		t.Errorf("expected raw SRT, got %d %q", w.Code, w.Body.String())
	}
	if p.gotKey != "sk-form" {
		t.Errorf("expected form key without header, got %q", p.gotKey)
	}

	w = serve(engine, multipartRequest(t, "/api/v1/transcriptions?format=vtt", nil, "file", "clip.wav", []byte("audio")))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown format, got %d", w.Code)
	}

	w = serve(engine, multipartRequest(t, "/api/v1/transcriptions", nil, "file", "notes.txt", []byte("audio")))
	var errBody errors.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &errBody); err != nil || w.Code != http.StatusUnsupportedMediaType ||
		errBody.Error.Code != errors.ErrCodeUnsupportedMediaType {
		t.Errorf("expected 415 UNSUPPORTED_MEDIA_TYPE, got %d %s", w.Code, w.Body.String())
	}
}

func TestRenderSubtitlesAPI(t *testing.T) {
	engine := newTestEngine(t, &stubProvider{resp: sample})
	post := func(target, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return serve(engine, req)
	}

	units := `[{"start":0,"end":1.25,"text":"Kya haal hai"},{"start":1.5,"end":3,"text":" sab theek "}]`
	w := post("/api/v1/subtitles?format=srt", `{"units":`+units+`}`)
	if w.Code != http.StatusOK || w.Body.String() != sampleSRT {
		t.Errorf("expected SRT, got %d %q", w.Code, w.Body.String())
	}

	bad := `[{"start":0,"end":1,"text":"a"},{"start":5,"end":4,"text":"b"},{"end":6,"text":"c"}]`
	w = post("/api/v1/subtitles", `{"units":`+bad+`}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	var errBody struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				Issues []struct {
					Index int    `json:"index"`
					Field string `json:"field"`
				} `json:"issues"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &errBody); err != nil {
		t.Fatal(err)
	}
	if errBody.Error.Code != "MALFORMED_UNIT" || len(errBody.Error.Details.Issues) != 2 ||
		errBody.Error.Details.Issues[0].Index != 1 || errBody.Error.Details.Issues[1].Index != 2 {
		t.Errorf("unexpected error body %s", w.Body.String())
	}

	w = post("/api/v1/subtitles", `{"units":`+bad+`,"policy":"skip"}`)
	var ok struct {
		Data struct {
			SRT    string `json:"srt"`
			Report struct {
				Emitted   int `json:"emitted"`
				Discarded int `json:"discarded"`
			} `json:"report"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &ok); err != nil || w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ok.Data.Report.Emitted != 1 || ok.Data.Report.Discarded != 2 || !strings.HasPrefix(ok.Data.SRT, "1\n00:00:00,000 --> 00:00:01,000\na\n") {
		t.Errorf("unexpected skip result %s", w.Body.String())
	}

	typed := `[{"start":0,"end":1,"text":"a"},{"start":1,"end":2,"text":5},7]`
	w = post("/api/v1/subtitles", `{"units":`+typed+`}`)
	errBody.Error.Details.Issues = nil
	if err := json.Unmarshal(w.Body.Bytes(), &errBody); err != nil || w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for wrongly typed units, got %d: %s", w.Code, w.Body.String())
	}
	if issues := errBody.Error.Details.Issues; len(issues) != 2 ||
		issues[0].Index != 1 || issues[0].Field != "text" ||
		issues[1].Index != 2 || issues[1].Field != "unit" {
		t.Errorf("unexpected error body %s", w.Body.String())
	}
	w = post("/api/v1/subtitles", `{"units":`+typed+`,"policy":"skip"}`)
	if err := json.Unmarshal(w.Body.Bytes(), &ok); err != nil || w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ok.Data.Report.Emitted != 1 || ok.Data.Report.Discarded != 2 {
		t.Errorf("unexpected skip result %s", w.Body.String())
	}

	for _, body := range []string{`{"units":[],"policy":"merge"}`, `{"policy":"skip"}`, `not json`, `{"units":{"start":0}}`} {
		if w := post("/api/v1/subtitles", body); w.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for %s, got %d", body, w.Code)
		}
	}
	if w := post("/api/v1/subtitles?format=vtt", `{"units":[]}`); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown format, got %d", w.Code)
	}
}

func TestFormatTimecodeAPI(t *testing.T) {
	engine := newTestEngine(t, &stubProvider{resp: sample})
	tests := []struct {
		name     string
		query    string
		status   int
		code     errors.ErrorCode
		timecode string
	}{
		{name: "truncates milliseconds", query: "?seconds=3661.2505", status: http.StatusOK, timecode: "01:01:01,250"},
		{name: "past a day", query: "?seconds=90000", status: http.StatusOK, timecode: "25:00:00,000"},
		{name: "negative", query: "?seconds=-1", status: http.StatusBadRequest, code: errors.ErrCodeInvalidArgument},
		{name: "nan", query: "?seconds=NaN", status: http.StatusBadRequest, code: errors.ErrCodeInvalidArgument},
		{name: "overflow", query: "?seconds=1e400", status: http.StatusBadRequest, code: errors.ErrCodeInvalidArgument},
		{name: "not a number", query: "?seconds=soon", status: http.StatusBadRequest, code: errors.ErrCodeInvalidInput},
		{name: "missing", query: "", status: http.StatusBadRequest, code: errors.ErrCodeMissingField},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(engine, httptest.NewRequest(http.MethodGet, "/api/v1/timecodes"+tc.query, http.NoBody))
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, w.Code, w.Body.String())
			}
			if tc.code != "" {
				var body errors.ErrorResponse
				if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Error.Code != tc.code {
					t.Errorf("expected %s, got %s", tc.code, w.Body.String())
				}
				return
			}
			var body struct {
				Data struct {
					Timecode string `json:"timecode"`
				} `json:"data"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Data.Timecode != tc.timecode {
				t.Errorf("expected %s, got %s", tc.timecode, w.Body.String())
			}
		})
	}
}
