package subtitle

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Unit is one timed caption: offsets in seconds plus its text.
type Unit struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Policy selects how the assembler treats malformed units.
type Policy int

const (
	// PolicyReject fails the whole call if any unit is malformed.
	PolicyReject Policy = iota
	// PolicySkip drops malformed units and reports them.
	PolicySkip
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case PolicyReject:
		return "reject"
	case PolicySkip:
		return "skip"
	default:
		return "unknown"
	}
}

// ParsePolicy parses "reject" or "skip". An empty string selects PolicyReject.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return PolicyReject, nil
	case "skip":
		return PolicySkip, nil
	default:
		return PolicyReject, fmt.Errorf("unknown policy %q (want reject or skip)", s)
	}
}

// Report summarises what the assembler did with its input.
type Report struct {
	// Emitted is the number of blocks in the document.
	Emitted int `json:"emitted"`
	// Discarded is the number of units dropped under PolicySkip.
	Discarded int `json:"discarded"`
	// Issues lists problems with dropped units.
	Issues []Issue `json:"issues,omitempty"`
}

// Assembler renders units into a SubRip document.
// The zero value uses PolicyReject.
type Assembler struct {
	Policy Policy
}

// Assemble renders units with PolicyReject.
func Assemble(units []Unit) (string, error) {
	srt, _, err := Assembler{}.Assemble(units)
	return srt, err
}

// Assemble renders units in input order, numbering blocks from 1.
//
// Under PolicyReject any malformed unit yields an empty document and a
// *MalformedUnitError naming every offending unit. Under PolicySkip the
// remaining units are numbered contiguously and the dropped ones are listed
// in the Report.
func (a Assembler) Assemble(units []Unit) (string, Report, error) {
	var issues []Issue
	valid := make([]bool, len(units))
	for i, u := range units {
		found := CheckUnit(i, u)
		valid[i] = len(found) == 0
		issues = append(issues, found...)
	}
	srt, _, report, err := a.render(units, valid, issues)
	return srt, report, err
}

func (a Assembler) render(units []Unit, valid []bool, issues []Issue) (string, []Unit, Report, error) {
	var report Report
	if len(issues) > 0 && a.Policy != PolicySkip {
		return "", nil, report, &MalformedUnitError{Issues: issues}
	}

	var b strings.Builder
	kept := make([]Unit, 0, len(units))
	for i, u := range units {
		if !valid[i] {
			report.Discarded++
			continue
		}
		kept = append(kept, u)
		writeBlock(&b, len(kept), u)
	}
	report.Emitted = len(kept)
	report.Issues = issues
	return b.String(), kept, report, nil
}

// CheckUnit returns the problems with u, which sits at position index in its
// input. A nil result means the unit can be rendered.
func CheckUnit(index int, u Unit) []Issue {
	var issues []Issue
	startOK := checkOffset(index, FieldStart, u.Start, &issues)
	endOK := checkOffset(index, FieldEnd, u.End, &issues)
	if startOK && endOK && u.Start > u.End {
		issues = append(issues, Issue{
			Index:  index,
			Field:  FieldStart,
			Reason: fmt.Sprintf("%v is after end %v", u.Start, u.End),
		})
	}
	return issues
}

func checkOffset(index int, field string, v float64, issues *[]Issue) bool {
	if _, err := toMicros(v); err != nil {
		reason := err.Error()
		if te, ok := err.(*TimecodeError); ok {
			reason = te.Reason
		}
		*issues = append(*issues, Issue{Index: index, Field: field, Reason: reason})
		return false
	}
	return true
}

func writeBlock(b *strings.Builder, n int, u Unit) {
	start, _ := toMicros(u.Start)
	end, _ := toMicros(u.End)
	b.WriteString(strconv.Itoa(n))
	b.WriteByte('\n')
	b.WriteString(formatMicros(start))
	b.WriteString(" --> ")
	b.WriteString(formatMicros(end))
	b.WriteByte('\n')
	b.WriteString(strings.TrimSpace(u.Text))
	b.WriteString("\n\n")
}

// Duration returns End-Start, or 0 when the unit is not well formed.
func (u Unit) Duration() float64 {
	if math.IsNaN(u.Start) || math.IsNaN(u.End) || u.End < u.Start {
		return 0
	}
	return u.End - u.Start
}
