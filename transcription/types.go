package transcription

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kbukum/whispersrt/subtitle"
)

// ErrNoWordTimings is returned by Units when word granularity was requested
// but the response carries no word timings.
var ErrNoWordTimings = errors.New("transcription has no word timings")

// Granularity selects the timing resolution of the returned units.
type Granularity string

const (
	// GranularitySegment yields one unit per phrase-level segment.
	GranularitySegment Granularity = "segment"
	// GranularityWord yields one unit per word.
	GranularityWord Granularity = "word"
)

// ParseGranularity parses "segment" or "word". An empty string selects segment.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(strings.ToLower(strings.TrimSpace(s))) {
	case "", GranularitySegment:
		return GranularitySegment, nil
	case GranularityWord:
		return GranularityWord, nil
	default:
		return "", fmt.Errorf("unknown granularity %q (want segment or word)", s)
	}
}

// String returns the granularity name.
func (g Granularity) String() string { return string(g) }

// Request holds parameters for a transcription call.
type Request struct {
	// AudioPath is the path to the audio file to transcribe.
	AudioPath string `json:"audio_path"`
	// FileName is the name reported to the backend; defaults to the base of AudioPath.
	FileName string `json:"file_name,omitempty"`
	// Language is the expected ISO-639-1 language of the audio (e.g. "en").
	Language string `json:"language,omitempty"`
	// Model overrides the provider's configured model.
	Model string `json:"model,omitempty"`
	// Prompt guides the style or vocabulary of the transcript.
	Prompt string `json:"prompt,omitempty"`
	// Granularity selects segment or word timings.
	Granularity Granularity `json:"granularity,omitempty"`
	// APIKey is a per-call credential. It is never serialised.
	APIKey string `json:"-"`
}

// Response holds the result of a transcription call.
type Response struct {
	Text     string    `json:"text"`
	Language string    `json:"language,omitempty"`
	Duration float64   `json:"duration,omitempty"`
	Segments []Segment `json:"segments,omitempty"`
	Words    []Word    `json:"words,omitempty"`
}

// Segment is a time-aligned phrase of a transcript.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

// Word is a single time-aligned word.
type Word struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Word  string  `json:"word"`
}

// Units converts the response into subtitle units at the given granularity.
// Word units come from Words, or from per-segment words when Words is empty.
func (r *Response) Units(g Granularity) ([]subtitle.Unit, error) {
	switch g {
	case "", GranularitySegment:
		units := make([]subtitle.Unit, len(r.Segments))
		for i, s := range r.Segments {
			units[i] = subtitle.Unit{Start: s.Start, End: s.End, Text: s.Text}
		}
		return units, nil
	case GranularityWord:
		words := r.Words
		if len(words) == 0 {
			for _, s := range r.Segments {
				words = append(words, s.Words...)
			}
		}
		if len(words) == 0 {
			return nil, ErrNoWordTimings
		}
		units := make([]subtitle.Unit, len(words))
		for i, w := range words {
			units[i] = subtitle.Unit{Start: w.Start, End: w.End, Text: w.Word}
		}
		return units, nil
	default:
		return nil, fmt.Errorf("unknown granularity %q", g)
	}
}
