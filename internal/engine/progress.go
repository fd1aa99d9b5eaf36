package engine

import (
	"strconv"
	"strings"
)

// parseOutTimeSeconds extracts the transcoded position from one line of
// ffmpeg's -progress key=value output. It understands both the clock form
// ("out_time=00:01:30.250000") and the microsecond counters
// ("out_time_ms=90250000", "out_time_us=90250000").
func parseOutTimeSeconds(line string) (float64, bool) {
	line = strings.TrimSpace(line)

	key, value, found := strings.Cut(line, "=")
	if !found {
		return 0, false
	}
	value = strings.TrimSpace(value)

	switch key {
	case "out_time":
		if seconds := clockToSeconds(value); seconds >= 0 {
			return seconds, true
		}
	case "out_time_ms", "out_time_us":
		// Both keys carry microseconds; out_time_ms is misnamed upstream.
		if micros, err := strconv.ParseInt(value, 10, 64); err == nil && micros >= 0 {
			return float64(micros) / 1e6, true
		}
	}
	return 0, false
}

// isProgressTerminator reports whether the line closes a -progress block.
func isProgressTerminator(line string) (done bool, terminal bool) {
	switch strings.TrimSpace(line) {
	case "progress=continue":
		return true, false
	case "progress=end":
		return true, true
	default:
		return false, false
	}
}

// clockToSeconds converts ffmpeg's HH:MM:SS.micros form to seconds.
// Returns -1 when the value does not parse.
func clockToSeconds(value string) float64 {
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return -1
	}

	hours, err1 := strconv.ParseFloat(parts[0], 64)
	minutes, err2 := strconv.ParseFloat(parts[1], 64)
	seconds, err3 := strconv.ParseFloat(parts[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return -1
	}
	return hours*3600 + minutes*60 + seconds
}
