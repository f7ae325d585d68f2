package infrastructure

import (
	"math"
	"math/rand"
	"time"
)

// reconnectBackoff doubles from initial up to max with +/-20% jitter.
func reconnectBackoff(attempt int, initial, max time.Duration) time.Duration {
	if initial <= 0 {
		initial = 500 * time.Millisecond
	}
	if max <= 0 {
		max = 15 * time.Second
	}
	if attempt < 0 {
		attempt = 0
	}
	backoff := float64(initial) * math.Pow(2, float64(attempt))
	if backoff > float64(max) {
		backoff = float64(max)
	}
	jitter := 0.2 * backoff
	return time.Duration(backoff + (rand.Float64()-0.5)*2*jitter)
}
