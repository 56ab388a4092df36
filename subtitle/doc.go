// Package subtitle renders timed text into SubRip (.srt) documents.
//
// It is a pure, synchronous core: nothing here performs I/O, logs, or keeps
// state between calls, so every function is safe for concurrent use.
//
// # Timecodes
//
// FormatTimecode turns an offset in seconds into the SubRip "HH:MM:SS,mmm"
// form. Milliseconds are truncated, never rounded. Hours are not wrapped at
// 24; they widen past two digits instead.
//
// # Documents
//
//	srt, err := subtitle.Assemble([]subtitle.Unit{
//	    {Start: 0, End: 1.5, Text: "hi"},
//	    {Start: 1.5, End: 3, Text: "there"},
//	})
//
// Malformed units are handled by an explicit Policy: PolicyReject fails the
// whole call with a *MalformedUnitError, PolicySkip drops the offending units
// and reports them in the returned Report.
package subtitle
