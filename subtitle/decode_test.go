package subtitle

import (
	"errors"
	"testing"
)

func TestDecodeUnits_TextAndWord(t *testing.T) {
	data := []byte(`[
		{"start": 0, "end": 1.5, "text": " hi "},
		{"start": 1.5, "end": 2, "word": "there"}
	]`)
	units, err := DecodeUnits(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(units))
	}
	if units[0].Text != " hi " || units[1].Text != "there" {
		t.Errorf("unexpected texts: %q, %q", units[0].Text, units[1].Text)
	}
	if units[1].Start != 1.5 || units[1].End != 2 {
		t.Errorf("unexpected offsets: %+v", units[1])
	}
}

func TestDecodeUnits_MissingAndNonNumeric(t *testing.T) {
	data := []byte(`[
		{"start": 0, "end": 1, "text": "ok"},
		{"end": 2, "text": "no start"},
		{"start": "1.0", "end": 3, "text": "string start"},
		{"start": 1, "end": null, "text": "null end"}
	]`)
	_, err := DecodeUnits(data)
	if !errors.Is(err, ErrMalformedUnit) {
		t.Fatalf("expected ErrMalformedUnit, got %v", err)
	}
	var mue *MalformedUnitError
	if !errors.As(err, &mue) {
		t.Fatalf("expected *MalformedUnitError, got %T", err)
	}
	want := []Issue{
		{Index: 1, Field: FieldStart},
		{Index: 2, Field: FieldStart},
		{Index: 3, Field: FieldEnd},
	}
	if len(mue.Issues) != len(want) {
		t.Fatalf("expected %d issues, got %d: %v", len(want), len(mue.Issues), mue.Issues)
	}
	for i, w := range want {
		if mue.Issues[i].Index != w.Index || mue.Issues[i].Field != w.Field {
			t.Errorf("issue %d: expected %d/%s, got %+v", i, w.Index, w.Field, mue.Issues[i])
		}
	}
}

func TestDecodeUnits_WrongTypes(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		index int
		field string
		want  string
	}{
		{name: "numeric text", data: `[{"start":0,"end":1,"text":"ok"},{"start":1,"end":2,"text":5}]`, index: 1, field: FieldText, want: "is not a string"},
		{name: "object word", data: `[{"start":0,"end":1,"word":{"w":"hi"}}]`, index: 0, field: FieldWord, want: "is not a string"},
		{name: "number element", data: `[{"start":0,"end":1,"text":"ok"},1]`, index: 1, field: FieldUnit, want: "is not an object"},
		{name: "array element", data: `[[0,1,"hi"]]`, index: 0, field: FieldUnit, want: "is not an object"},
		{name: "overflowing offset", data: `[{"start":0,"end":1e400,"text":"ok"}]`, index: 0, field: FieldEnd, want: "is out of range: 1e400"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeUnits([]byte(tt.data))
			var mue *MalformedUnitError
			if !errors.As(err, &mue) {
				t.Fatalf("expected *MalformedUnitError, got %v", err)
			}
			if len(mue.Issues) != 1 {
				t.Fatalf("expected 1 issue, got %v", mue.Issues)
			}
			got := mue.Issues[0]
			if got.Index != tt.index || got.Field != tt.field || got.Reason != tt.want {
				t.Errorf("expected %d/%s %q, got %+v", tt.index, tt.field, tt.want, got)
			}
		})
	}
}

func TestDecodeUnits_NullTextFallsBackToWord(t *testing.T) {
	units, err := DecodeUnits([]byte(`[{"start":0,"end":1,"text":null,"word":"hi"},{"start":1,"end":2}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if units[0].Text != "hi" || units[1].Text != "" {
		t.Errorf("unexpected texts: %q, %q", units[0].Text, units[1].Text)
	}
}

func TestDecodeUnits_InvalidJSON(t *testing.T) {
	_, err := DecodeUnits([]byte(`{"start": 0}`))
	if err == nil {
		t.Fatal("expected error for non-array input")
	}
	if errors.Is(err, ErrMalformedUnit) {
		t.Error("syntax errors should not be reported as malformed units")
	}
}

func TestDecodeUnits_ThenAssemble(t *testing.T) {
	units, err := DecodeUnits([]byte(`[{"start":0,"end":1.5,"text":"hi"},{"start":1.5,"end":3,"text":"there"}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := Assemble(units)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "1\n00:00:00,000 --> 00:00:01,500\nhi\n\n2\n00:00:01,500 --> 00:00:03,000\nthere\n\n"
	if got != want {
		t.Errorf("unexpected document:\n%q\nwant:\n%q", got, want)
	}
}

func TestAssembleJSON(t *testing.T) {
	data := []byte(`[
		{"start": 0, "end": 1, "text": "one"},
		{"start": "x", "end": 2, "text": "bad start"},
		{"start": 3, "end": 2.5, "text": "backwards"},
		{"start": 4, "end": 5, "word": "four"}
	]`)

	_, _, _, err := Assembler{}.AssembleJSON(data)
	var mue *MalformedUnitError
	if !errors.As(err, &mue) {
		t.Fatalf("expected *MalformedUnitError, got %v", err)
	}
	if got := mue.Indexes(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("expected indexes [1 2], got %v", got)
	}

	srt, units, report, err := Assembler{Policy: PolicySkip}.AssembleJSON(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "1\n00:00:00,000 --> 00:00:01,000\none\n\n" +
		"2\n00:00:04,000 --> 00:00:05,000\nfour\n\n"
	if srt != want {
		t.Errorf("unexpected output:\n%q", srt)
	}
	if len(units) != 2 || units[1].Text != "four" {
		t.Errorf("expected rendered units only, got %+v", units)
	}
	if report.Emitted != 2 || report.Discarded != 2 || len(report.Issues) != 2 {
		t.Errorf("unexpected report %+v", report)
	}
	if report.Issues[0].Index != 1 || report.Issues[1].Index != 2 {
		t.Errorf("issue indexes must refer to input positions, got %+v", report.Issues)
	}

	if _, _, _, err := (Assembler{}).AssembleJSON([]byte(`{}`)); err == nil || errors.Is(err, ErrMalformedUnit) {
		t.Errorf("expected a decode error, got %v", err)
	}
}

func TestAssembleJSON_SkipsWrongTypes(t *testing.T) {
	data := []byte(`[{"start":0,"end":1,"text":"ok"},{"start":1,"end":2,"text":5},"three",{"start":3,"end":4,"text":"four"}]`)

	srt, units, report, err := Assembler{Policy: PolicySkip}.AssembleJSON(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "1\n00:00:00,000 --> 00:00:01,000\nok\n\n" +
		"2\n00:00:03,000 --> 00:00:04,000\nfour\n\n"
	if srt != want {
		t.Errorf("unexpected output:\n%q", srt)
	}
	if len(units) != 2 || report.Emitted != 2 || report.Discarded != 2 {
		t.Errorf("unexpected result: units=%+v report=%+v", units, report)
	}
	if len(report.Issues) != 2 ||
		report.Issues[0] != (Issue{Index: 1, Field: FieldText, Reason: "is not a string"}) ||
		report.Issues[1] != (Issue{Index: 2, Field: FieldUnit, Reason: "is not an object"}) {
		t.Errorf("unexpected issues %+v", report.Issues)
	}

	_, _, _, err = Assembler{}.AssembleJSON(data)
	var mue *MalformedUnitError
	if !errors.As(err, &mue) {
		t.Fatalf("expected *MalformedUnitError, got %v", err)
	}
	if got := mue.Indexes(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("expected indexes [1 2], got %v", got)
	}
}
