package webui

import (
	"embed"
	stderrors "errors"
	"fmt"
	"html/template"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/whispersrt/conversion"
	"github.com/kbukum/whispersrt/errors"
	"github.com/kbukum/whispersrt/logger"
	"github.com/kbukum/whispersrt/validation"
	"github.com/kbukum/whispersrt/version"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageTitle      = "Audio Transcription to SRT"
	srtContentType = "text/plain; charset=utf-8"
	formFieldAudio = "audio_file"
)

// Handler serves the upload page, the form endpoints and the JSON API.
type Handler struct {
	svc  *conversion.Service
	tmpl *template.Template
	log  *logger.Logger
}

// New parses the embedded templates and returns a Handler backed by svc.
func New(svc *conversion.Service, log *logger.Logger) (*Handler, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"join":    strings.Join,
		"trim":    strings.TrimSpace,
		"seconds": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("webui: parse templates: %w", err)
	}
	return &Handler{svc: svc, tmpl: tmpl, log: log.WithComponent("webui")}, nil
}

// Register mounts the browser routes and the /api/v1 routes on engine.
func (h *Handler) Register(engine *gin.Engine) {
	engine.SetHTMLTemplate(h.tmpl)

	engine.GET("/", h.Index)
	engine.POST("/transcribe", h.Transcribe)
	engine.POST("/download", h.Download)

	api := engine.Group("/api/v1")
	api.POST("/transcriptions", h.CreateTranscription)
	api.POST("/subtitles", h.RenderSubtitles)
	api.GET("/timecodes", h.FormatTimecode)
}

type fileDetails struct {
	Name string
	Type string
	Size int64
}

type pageData struct {
	Title       string
	Version     string
	MaxSize     string
	Formats     []string
	Accept      string
	Granularity string
	Error       string
	File        *fileDetails
	Result      *conversion.Result
}

func (h *Handler) page() pageData {
	exts := h.svc.AllowedExtensions()
	formats := make([]string, len(exts))
	accept := make([]string, len(exts))
	for i, ext := range exts {
		formats[i] = strings.ToUpper(ext)
		accept[i] = "." + ext
	}
	return pageData{
		Title:       pageTitle,
		Version:     version.GetShortVersion(),
		MaxSize:     sizeLabel(h.svc.MaxUploadBytes()),
		Formats:     formats,
		Accept:      strings.Join(accept, ","),
		Granularity: "segment",
	}
}

// Index renders the upload form.
func (h *Handler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", h.page())
}

type transcribeForm struct {
	APIKey      string `form:"api_key" validate:"required"`
	Granularity string `form:"granularity" validate:"omitempty,oneof=segment word"`
	Language    string `form:"language" validate:"omitempty,language"`
}

// Transcribe handles the upload form and renders the result on the same page.
func (h *Handler) Transcribe(c *gin.Context) {
	data := h.page()

	var form transcribeForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderError(c, data, uploadError(err, formFieldAudio))
		return
	}
	if form.Granularity != "" {
		data.Granularity = form.Granularity
	}
	if err := validation.Validate(form); err != nil {
		h.renderError(c, data, err)
		return
	}

	fh, err := c.FormFile(formFieldAudio)
	if err != nil {
		h.renderError(c, data, uploadError(err, formFieldAudio))
		return
	}
	data.File = &fileDetails{Name: fh.Filename, Type: fh.Header.Get("Content-Type"), Size: fh.Size}

	res, err := h.convert(c, fh, conversion.Options{
		APIKey:      form.APIKey,
		Granularity: form.Granularity,
		Language:    form.Language,
	})
	if err != nil {
		h.renderError(c, data, err)
		return
	}
	data.Result = res
	c.HTML(http.StatusOK, "index.html", data)
}

type downloadForm struct {
	SRT string `form:"srt" validate:"required"`
}

// Download returns posted SRT text as a file attachment.
func (h *Handler) Download(c *gin.Context) {
	var form downloadForm
	if err := c.ShouldBind(&form); err != nil {
		respondError(c, errors.Validation("invalid form").WithCause(err))
		return
	}
	if err := validation.Validate(form); err != nil {
		respondError(c, err)
		return
	}
	respondSRT(c, conversion.DefaultOutputName, form.SRT)
}

func (h *Handler) convert(c *gin.Context, fh *multipart.FileHeader, opts conversion.Options) (*conversion.Result, error) {
	// Reject by name and declared size before opening the spooled part.
	if _, err := h.svc.Validate(conversion.Upload{FileName: fh.Filename, Size: fh.Size}); err != nil {
		return nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("open upload: %w", err))
	}
	defer func() { _ = f.Close() }()
	return h.svc.Convert(c.Request.Context(), conversion.Upload{FileName: fh.Filename, Size: fh.Size, Body: f}, opts)
}

func (h *Handler) renderError(c *gin.Context, data pageData, err error) {
	appErr := errors.Wrap(err)
	fields := logger.Fields(logger.FieldStatus, appErr.HTTPStatus, "code", string(appErr.Code), logger.FieldError, err.Error())
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		h.log.WithContext(c.Request.Context()).Error("transcription failed", fields)
	} else {
		h.log.WithContext(c.Request.Context()).Warn("transcription rejected", fields)
	}
	data.Error = appErr.Message
	_ = c.Error(err)
	c.HTML(appErr.HTTPStatus, "index.html", data)
}

// uploadError maps multipart parsing failures to AppErrors.
func uploadError(err error, field string) error {
	var tooLarge *http.MaxBytesError
	switch {
	case stderrors.As(err, &tooLarge):
		return errors.PayloadTooLarge(0, tooLarge.Limit)
	case stderrors.Is(err, http.ErrMissingFile):
		return errors.MissingField(field)
	default:
		return errors.Validation("could not read the uploaded form").WithCause(err)
	}
}

func sizeLabel(n int64) string {
	const mb = 1024 * 1024
	if n >= mb {
		return fmt.Sprintf("%g MB", float64(n)/mb)
	}
	return fmt.Sprintf("%g KB", float64(n)/1024)
}
