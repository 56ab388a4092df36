package webui

import (
	"encoding/json"
	stderrors "errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/whispersrt/conversion"
	"github.com/kbukum/whispersrt/errors"
	"github.com/kbukum/whispersrt/server"
	"github.com/kbukum/whispersrt/subtitle"
	"github.com/kbukum/whispersrt/validation"
)

const (
	formatJSON = "json"
	formatSRT  = "srt"
)

type transcriptionForm struct {
	APIKey      string `form:"api_key"`
	Granularity string `form:"granularity" validate:"omitempty,oneof=segment word"`
	Language    string `form:"language" validate:"omitempty,language"`
	Prompt      string `form:"prompt" validate:"max=1000"`
	Model       string `form:"model" validate:"max=64"`
	Provider    string `form:"provider" validate:"omitempty,oneof=openai whisper"`
	Format      string `form:"format" validate:"omitempty,oneof=json srt"`
}

// CreateTranscription converts a multipart upload in field "file".
// With ?format=srt the document is returned as an attachment; otherwise the
// response is JSON carrying the document, units, stats and report.
func (h *Handler) CreateTranscription(c *gin.Context) {
	var form transcriptionForm
	if err := c.ShouldBind(&form); err != nil {
		respondError(c, uploadError(err, "file"))
		return
	}
	if q := c.Query("format"); q != "" {
		form.Format = q
	}
	if err := validation.Validate(form); err != nil {
		respondError(c, err)
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		respondError(c, uploadError(err, "file"))
		return
	}
	res, err := h.convert(c, fh, conversion.Options{
		APIKey:      apiKey(c, form.APIKey),
		Granularity: form.Granularity,
		Language:    form.Language,
		Prompt:      form.Prompt,
		Model:       form.Model,
		Provider:    form.Provider,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if form.Format == formatSRT {
		respondSRT(c, res.FileName, res.SRT)
		return
	}
	server.RespondOK(c, res)
}

type subtitleRequest struct {
	Units  json.RawMessage `json:"units" validate:"required"`
	Policy string          `json:"policy" validate:"omitempty,oneof=reject skip"`
}

type subtitleResponse struct {
	SRT    string           `json:"srt"`
	Report subtitle.Report  `json:"report"`
	Stats  conversion.Stats `json:"stats"`
}

// RenderSubtitles renders a JSON array of timed units without calling a
// provider. Malformed units under the reject policy yield 422 with the
// offending indexes in details.issues.
func (h *Handler) RenderSubtitles(c *gin.Context) {
	var req subtitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.Validation("request body must be a JSON object").WithCause(err))
		return
	}
	if err := validation.Validate(req); err != nil {
		respondError(c, err)
		return
	}
	format := c.DefaultQuery("format", formatJSON)
	if format != formatJSON && format != formatSRT {
		respondError(c, errors.InvalidInput("format", "must be json or srt"))
		return
	}

	policy := h.svc.Policy()
	if req.Policy != "" {
		policy, _ = subtitle.ParsePolicy(req.Policy)
	}

	srt, units, report, err := subtitle.Assembler{Policy: policy}.AssembleJSON(req.Units)
	if err != nil {
		respondError(c, malformed(err))
		return
	}

	if format == formatSRT {
		respondSRT(c, conversion.DefaultOutputName, srt)
		return
	}
	server.RespondOK(c, subtitleResponse{SRT: srt, Report: report, Stats: conversion.Analyze(units)})
}

type timecodeResponse struct {
	Seconds  float64 `json:"seconds"`
	Timecode string  `json:"timecode"`
}

// FormatTimecode renders ?seconds= as an SRT timecode. Negative or
// non-finite offsets yield 400 INVALID_ARGUMENT.
func (h *Handler) FormatTimecode(c *gin.Context) {
	raw := c.Query("seconds")
	if raw == "" {
		respondError(c, errors.MissingField("seconds"))
		return
	}
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil && !stderrors.Is(err, strconv.ErrRange) {
		respondError(c, errors.InvalidInput("seconds", "must be a number").WithCause(err))
		return
	}
	tc, err := subtitle.FormatTimecode(seconds)
	if err != nil {
		var te *subtitle.TimecodeError
		if stderrors.As(err, &te) {
			respondError(c, errors.InvalidArgument("seconds "+te.Reason).WithCause(err))
			return
		}
		respondError(c, err)
		return
	}
	server.RespondOK(c, timecodeResponse{Seconds: seconds, Timecode: tc})
}

func respondError(c *gin.Context, err error) {
	server.RespondWithError(c, err)
}

func respondSRT(c *gin.Context, name, srt string) {
	server.RespondAttachment(c, name, srtContentType, []byte(srt))
}

// apiKey prefers a bearer token over the form field.
func apiKey(c *gin.Context, formValue string) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return formValue
}

func malformed(err error) error {
	var mu *subtitle.MalformedUnitError
	if stderrors.As(err, &mu) {
		return errors.MalformedUnits(len(mu.Indexes()), mu.Issues).WithCause(err)
	}
	return errors.Validation("units must be a JSON array").WithCause(err)
}
