package util

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

const upperLowerNumChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func GenerateRandStringWithUpperLowerNum(n int) string {
	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		sb.WriteByte(upperLowerNumChars[rand.Intn(len(upperLowerNumChars))])
	}
	return sb.String()
}

// GenerateClipID builds a list-key identifier from the current millisecond
// timestamp plus a random suffix. Collision-resistant enough for ordering
// keys, not cryptographic.
func GenerateClipID() string {
	return fmt.Sprintf("%d_%s", time.Now().UnixMilli(), GenerateRandStringWithUpperLowerNum(6))
}
