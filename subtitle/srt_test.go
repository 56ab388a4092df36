package subtitle

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"testing"
)

func TestAssemble_Empty(t *testing.T) {
	got, err := Assemble(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty document, got %q", got)
	}
}

func TestAssemble_TwoUnits(t *testing.T) {
	units := []Unit{
		{Start: 0, End: 1.5, Text: "hi"},
		{Start: 1.5, End: 3, Text: "there"},
	}
	want := "1\n00:00:00,000 --> 00:00:01,500\nhi\n\n" +
		"2\n00:00:01,500 --> 00:00:03,000\nthere\n\n"

	got, err := Assemble(units)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("unexpected document:\n%q\nwant:\n%q", got, want)
	}
}

func TestAssemble_TrimsTextAndKeepsEmptyUnits(t *testing.T) {
	units := []Unit{
		{Start: 0, End: 1, Text: "  Yeh audio  \n"},
		{Start: 1, End: 2, Text: "   "},
	}
	want := "1\n00:00:00,000 --> 00:00:01,000\nYeh audio\n\n" +
		"2\n00:00:01,000 --> 00:00:02,000\n\n\n"

	got, err := Assemble(units)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("unexpected document:\n%q\nwant:\n%q", got, want)
	}
}

func TestAssemble_NumbersContiguously(t *testing.T) {
	const n = 25
	units := make([]Unit, n)
	for i := range units {
		units[i] = Unit{Start: float64(i), End: float64(i) + 0.5, Text: fmt.Sprintf("w%d", i)}
	}

	got, err := Assemble(units)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	blocks := strings.Split(strings.TrimSuffix(got, "\n\n"), "\n\n")
	if len(blocks) != n {
		t.Fatalf("expected %d blocks, got %d", n, len(blocks))
	}
	for i, block := range blocks {
		lines := strings.Split(block, "\n")
		if lines[0] != strconv.Itoa(i+1) {
			t.Errorf("block %d: expected index line %d, got %q", i, i+1, lines[0])
		}
		if lines[2] != fmt.Sprintf("w%d", i) {
			t.Errorf("block %d: expected text w%d, got %q", i, i, lines[2])
		}
	}
}

func TestAssemble_Idempotent(t *testing.T) {
	units := []Unit{
		{Start: 0.12, End: 0.98, Text: "ek"},
		{Start: 0.98, End: 2.4, Text: "do teen"},
	}
	first, err := Assemble(units)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Assemble(units)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("expected identical output, got:\n%q\n%q", first, second)
	}
}

func TestAssemble_RejectsStartAfterEnd(t *testing.T) {
	units := []Unit{
		{Start: 0, End: 1, Text: "ok"},
		{Start: 5, End: 2, Text: "backwards"},
		{Start: 6, End: 7, Text: "ok"},
	}

	got, err := Assemble(units)
	if got != "" {
		t.Errorf("expected no partial output, got %q", got)
	}
	if !errors.Is(err, ErrMalformedUnit) {
		t.Fatalf("expected ErrMalformedUnit, got %v", err)
	}
	var mue *MalformedUnitError
	if !errors.As(err, &mue) {
		t.Fatalf("expected *MalformedUnitError, got %T", err)
	}
	if len(mue.Issues) != 1 {
		t.Fatalf("expected 1 issue, got %d: %v", len(mue.Issues), mue.Issues)
	}
	if mue.Issues[0].Index != 1 || mue.Issues[0].Field != FieldStart {
		t.Errorf("expected issue at index 1 field start, got %+v", mue.Issues[0])
	}
}

func TestAssemble_RejectsEveryBadUnit(t *testing.T) {
	units := []Unit{
		{Start: -1, End: 1},
		{Start: 0, End: math.NaN()},
		{Start: 0, End: 1},
		{Start: math.Inf(1), End: math.Inf(1)},
	}
	_, err := Assemble(units)
	var mue *MalformedUnitError
	if !errors.As(err, &mue) {
		t.Fatalf("expected *MalformedUnitError, got %v", err)
	}
	want := []int{0, 1, 3}
	got := mue.Indexes()
	if len(got) != len(want) {
		t.Fatalf("expected indexes %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected indexes %v, got %v", want, got)
		}
	}
	if len(mue.Issues) != 4 {
		t.Errorf("expected 4 issues (start and end of unit 3 both reported), got %d", len(mue.Issues))
	}
}

func TestAssembler_SkipPolicy(t *testing.T) {
	units := []Unit{
		{Start: 0, End: 1, Text: "first"},
		{Start: 3, End: 2, Text: "dropped"},
		{Start: 2, End: 3, Text: "second"},
	}
	want := "1\n00:00:00,000 --> 00:00:01,000\nfirst\n\n" +
		"2\n00:00:02,000 --> 00:00:03,000\nsecond\n\n"

	got, report, err := Assembler{Policy: PolicySkip}.Assemble(units)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("unexpected document:\n%q\nwant:\n%q", got, want)
	}
	if report.Emitted != 2 || report.Discarded != 1 {
		t.Errorf("expected emitted=2 discarded=1, got %+v", report)
	}
	if len(report.Issues) != 1 || report.Issues[0].Index != 1 {
		t.Errorf("expected one issue at index 1, got %+v", report.Issues)
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", PolicyReject, false},
		{"reject", PolicyReject, false},
		{"SKIP", PolicySkip, false},
		{"drop", PolicyReject, true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParsePolicy(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParsePolicy(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("ParsePolicy(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestUnit_Duration(t *testing.T) {
	if d := (Unit{Start: 1.25, End: 3}).Duration(); d != 1.75 {
		t.Errorf("expected 1.75, got %v", d)
	}
	if d := (Unit{Start: 3, End: 1}).Duration(); d != 0 {
		t.Errorf("expected 0 for reversed unit, got %v", d)
	}
}
