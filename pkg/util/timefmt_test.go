package util

import (
	"math"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatClock(t *testing.T) {
	testCases := []struct {
		name    string
		seconds float64
		want    string
	}{
		{name: "zero", seconds: 0, want: "0:00"},
		{name: "negative", seconds: -1, want: "0:00"},
		{name: "nan", seconds: math.NaN(), want: "0:00"},
		{name: "positive infinity", seconds: math.Inf(1), want: "0:00"},
		{name: "over a minute", seconds: 65, want: "1:05"},
		{name: "floors fractions", seconds: 59.9, want: "0:59"},
		{name: "whole minutes", seconds: 600, want: "10:00"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatClock(tc.seconds))
		})
	}
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "0.00", FormatSeconds(0))
	assert.Equal(t, "12.50", FormatSeconds(12.5))
	assert.Equal(t, "3.33", FormatSeconds(10.0/3.0))
}

func TestGenerateClipID(t *testing.T) {
	pattern := regexp.MustCompile(`^\d+_[a-zA-Z0-9]{6}$`)

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := GenerateClipID()
		assert.Regexp(t, pattern, id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 100, "ids should not collide within one run")
}

func TestGenerateRandStringWithUpperLowerNum(t *testing.T) {
	got := GenerateRandStringWithUpperLowerNum(32)
	assert.Len(t, got, 32)
	assert.Regexp(t, `^[a-zA-Z0-9]+$`, got)
}
