package subtitle

import (
	"fmt"
	"math"
	"strconv"
)

const (
	microsPerMilli  = 1000
	microsPerSecond = 1000 * microsPerMilli
	microsPerMinute = 60 * microsPerSecond
	microsPerHour   = 60 * microsPerMinute
)

// maxSeconds bounds offsets so the microsecond count fits in an int64.
const maxSeconds = float64(math.MaxInt64 / microsPerSecond)

// FormatTimecode converts an offset in seconds to a SubRip timecode of the
// form HH:MM:SS,mmm.
//
// The offset is quantised to whole microseconds before splitting, then the
// sub-second part is truncated to milliseconds. Hours are zero-padded to at
// least two digits and are never wrapped into a day.
func FormatTimecode(seconds float64) (string, error) {
	us, err := toMicros(seconds)
	if err != nil {
		return "", err
	}
	return formatMicros(us), nil
}

func toMicros(seconds float64) (int64, error) {
	switch {
	case math.IsNaN(seconds):
		return 0, &TimecodeError{Value: seconds, Reason: "is NaN"}
	case math.IsInf(seconds, 0):
		return 0, &TimecodeError{Value: seconds, Reason: "is infinite"}
	case seconds < 0:
		return 0, &TimecodeError{Value: seconds, Reason: "is negative"}
	case seconds > maxSeconds:
		return 0, &TimecodeError{Value: seconds, Reason: "is out of range"}
	}
	return int64(math.RoundToEven(seconds * microsPerSecond)), nil
}

func formatMicros(us int64) string {
	hours := us / microsPerHour
	us %= microsPerHour
	minutes := us / microsPerMinute
	us %= microsPerMinute
	secs := us / microsPerSecond
	us %= microsPerSecond
	millis := us / microsPerMilli

	buf := make([]byte, 0, 16)
	if hours < 10 {
		buf = append(buf, '0')
	}
	buf = strconv.AppendInt(buf, hours, 10)
	return fmt.Sprintf("%s:%02d:%02d,%03d", buf, minutes, secs, millis)
}
