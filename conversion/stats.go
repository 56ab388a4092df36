package conversion

import (
	"strings"

	"github.com/kbukum/whispersrt/subtitle"
)

// UnitStat describes the timing of one rendered unit.
type UnitStat struct {
	Index    int     `json:"index"` // 1-based block number
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
	// GapToNext is the silence before the next unit; negative when they
	// overlap and nil for the last unit.
	GapToNext *float64 `json:"gap_to_next,omitempty"`
	Text      string   `json:"text"` // trimmed
}

// Stats summarises the timing of a unit sequence.
type Stats struct {
	Units []UnitStat `json:"units"`

	Count         int     `json:"count"`
	Speech        float64 `json:"speech"` // sum of unit durations
	Span          float64 `json:"span"`   // first start to last end
	TotalGap      float64 `json:"total_gap"`
	MaxGap        float64 `json:"max_gap"`
	Overlaps      int     `json:"overlaps"`
	LongestUnit   int     `json:"longest_unit,omitempty"`
	LongestLength float64 `json:"longest_length"`
}

// Analyze computes per-unit durations and the gaps between consecutive
// units. Units are taken in order; nothing is sorted or merged.
func Analyze(units []subtitle.Unit) Stats {
	st := Stats{Units: make([]UnitStat, len(units)), Count: len(units)}
	if len(units) == 0 {
		return st
	}
	for i, u := range units {
		d := u.Duration()
		us := UnitStat{Index: i + 1, Start: u.Start, End: u.End, Duration: d, Text: strings.TrimSpace(u.Text)}
		if i+1 < len(units) {
			gap := units[i+1].Start - u.End
			us.GapToNext = &gap
			if gap < 0 {
				st.Overlaps++
			} else {
				st.TotalGap += gap
				if gap > st.MaxGap {
					st.MaxGap = gap
				}
			}
		}
		st.Speech += d
		if d > st.LongestLength {
			st.LongestLength = d
			st.LongestUnit = i + 1
		}
		st.Units[i] = us
	}
	st.Span = units[len(units)-1].End - units[0].Start
	return st
}
