package util

import (
	"fmt"
	"math"
	"strconv"
)

// FormatClock renders a seconds value as "M:SS" for display.
// Non-finite or negative input renders as "0:00".
func FormatClock(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return "0:00"
	}
	total := int(math.Floor(seconds))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FormatSeconds renders a seconds value with two decimal places, the form
// the engine expects for seek/duration arguments.
func FormatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 2, 64)
}
