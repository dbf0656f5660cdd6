package util

import (
	"math"
	"time"
)

// BackoffDelay returns base * 2^attempt for a zero-based attempt number.
func BackoffDelay(base time.Duration, attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	return time.Duration(float64(base) * math.Pow(2, float64(attempt)))
}

// CeilDiv divides a by b rounding up. b must be positive.
func CeilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
