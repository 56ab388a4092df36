package subtitle

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidArgument is matched by errors returned for offsets that are
	// negative or not finite.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMalformedUnit is matched by errors returned for units that are not
	// objects, have a missing or non-numeric offset or a non-string text, or
	// start after they end.
	ErrMalformedUnit = errors.New("malformed unit")
)

// Field names used in Issue.Field.
const (
	FieldStart = "start"
	FieldEnd   = "end"
	FieldText  = "text"
	FieldWord  = "word"
	FieldUnit  = "unit"
)

// TimecodeError reports an offset that cannot be rendered as a timecode.
type TimecodeError struct {
	Value  float64
	Reason string
}

func (e *TimecodeError) Error() string {
	return fmt.Sprintf("timecode: offset %v %s", e.Value, e.Reason)
}

// Is reports whether target is ErrInvalidArgument.
func (e *TimecodeError) Is(target error) bool { return target == ErrInvalidArgument }

// Issue describes one problem with one unit.
type Issue struct {
	Index  int    `json:"index"` // zero-based position in the input
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (i Issue) String() string {
	return fmt.Sprintf("unit %d: %s %s", i.Index, i.Field, i.Reason)
}

// MalformedUnitError lists every malformed unit found in one call.
type MalformedUnitError struct {
	Issues []Issue
}

func (e *MalformedUnitError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		parts[i] = is.String()
	}
	return "subtitle: malformed units: " + strings.Join(parts, "; ")
}

// Is reports whether target is ErrMalformedUnit.
func (e *MalformedUnitError) Is(target error) bool { return target == ErrMalformedUnit }

// Indexes returns the distinct offending unit indexes in input order.
func (e *MalformedUnitError) Indexes() []int {
	seen := make(map[int]bool, len(e.Issues))
	out := make([]int, 0, len(e.Issues))
	for _, is := range e.Issues {
		if !seen[is.Index] {
			seen[is.Index] = true
			out = append(out, is.Index)
		}
	}
	return out
}
