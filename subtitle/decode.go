package subtitle

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// rawUnit keeps every field undecoded so a wrong JSON type is reported
// against its unit and field instead of failing the whole array.
type rawUnit struct {
	Start json.RawMessage `json:"start"`
	End   json.RawMessage `json:"end"`
	Text  json.RawMessage `json:"text"`
	Word  json.RawMessage `json:"word"`
}

// DecodeUnits parses a JSON array of {"start","end","text"} objects. A "word"
// key is accepted in place of "text" so word-level provider output decodes
// unchanged.
//
// Elements that are not objects, and units with a missing or non-numeric
// offset or a non-string text, are reported together in a
// *MalformedUnitError. Range checks (negative, start after end) are left to
// the Assembler so its Policy applies to them.
func DecodeUnits(data []byte) ([]Unit, error) {
	elems, err := splitArray(data)
	if err != nil {
		return nil, err
	}
	units := make([]Unit, len(elems))
	var issues []Issue
	for i, elem := range elems {
		u, found := decodeUnit(i, elem)
		units[i] = u
		issues = append(issues, found...)
	}
	if len(issues) > 0 {
		return nil, &MalformedUnitError{Issues: issues}
	}
	return units, nil
}

// AssembleJSON decodes data like DecodeUnits and renders it under a's Policy.
// Units that fail to decode are treated like any other malformed unit, so
// PolicySkip drops them too. Issue indexes refer to positions in data.
// The returned units are the ones that were rendered.
func (a Assembler) AssembleJSON(data []byte) (string, []Unit, Report, error) {
	elems, err := splitArray(data)
	if err != nil {
		return "", nil, Report{}, err
	}
	units := make([]Unit, len(elems))
	valid := make([]bool, len(elems))
	var issues []Issue
	for i, elem := range elems {
		u, found := decodeUnit(i, elem)
		if len(found) == 0 {
			found = CheckUnit(i, u)
		}
		units[i], valid[i] = u, len(found) == 0
		issues = append(issues, found...)
	}
	return a.render(units, valid, issues)
}

// splitArray fails only when data is not a JSON array.
func splitArray(data []byte) ([]json.RawMessage, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("decode units: %w", err)
	}
	return elems, nil
}

func decodeUnit(index int, elem json.RawMessage) (Unit, []Issue) {
	var r rawUnit
	if err := json.Unmarshal(elem, &r); err != nil {
		return Unit{}, []Issue{{Index: index, Field: FieldUnit, Reason: "is not an object"}}
	}

	var issues []Issue
	start, ok := parseOffset(index, FieldStart, r.Start, &issues)
	end, ok2 := parseOffset(index, FieldEnd, r.End, &issues)
	text, ok3 := parseText(index, r, &issues)
	if !ok || !ok2 || !ok3 {
		return Unit{}, issues
	}
	return Unit{Start: start, End: end, Text: text}, nil
}

func parseOffset(index int, field string, raw json.RawMessage, issues *[]Issue) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if isAbsent(raw) {
		*issues = append(*issues, Issue{Index: index, Field: field, Reason: "is missing"})
		return 0, false
	}
	v, err := strconv.ParseFloat(string(raw), 64)
	switch {
	case errors.Is(err, strconv.ErrRange):
		*issues = append(*issues, Issue{Index: index, Field: field, Reason: fmt.Sprintf("is out of range: %s", raw)})
		return 0, false
	case err != nil:
		*issues = append(*issues, Issue{Index: index, Field: field, Reason: fmt.Sprintf("is not a number: %s", raw)})
		return 0, false
	}
	return v, true
}

// parseText prefers "text" over "word". A unit with neither has empty text.
func parseText(index int, r rawUnit, issues *[]Issue) (string, bool) {
	field, raw := FieldText, bytes.TrimSpace(r.Text)
	if isAbsent(raw) {
		field, raw = FieldWord, bytes.TrimSpace(r.Word)
	}
	if isAbsent(raw) {
		return "", true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		*issues = append(*issues, Issue{Index: index, Field: field, Reason: "is not a string"})
		return "", false
	}
	return s, true
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}
