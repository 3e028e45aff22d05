package game

import (
	"time"
)

// FPSLimiter provides high-precision frame rate limiting
type FPSLimiter struct {
	limit int
	next  time.Time
}

// NewFPSLimiter creates a limiter for limit frames per second; zero or less disables it.
func NewFPSLimiter(limit int) *FPSLimiter {
	return &FPSLimiter{limit: limit}
}

// Wait blocks until the next frame should be rendered based on the FPS limit.
// Uses a hybrid sleep/spin approach for better precision on high FPS caps.
func (f *FPSLimiter) Wait() {
	if f.limit <= 0 {
		f.next = time.Time{}
		return
	}

	target := time.Second / time.Duration(f.limit)

	if f.next.IsZero() {
		f.next = time.Now().Add(target)
	} else {
		f.next = f.next.Add(target)
	}

	// fell far behind (e.g. window dragged); do not try to catch up
	if time.Until(f.next) < -target {
		f.next = time.Now()
		return
	}

	for {
		remaining := time.Until(f.next)
		if remaining <= 0 {
			break
		}
		if remaining > 200*time.Microsecond {
			time.Sleep(remaining - 200*time.Microsecond)
		}
		// busy-wait for the final few microseconds
		// yields substantially better precision on high FPS caps
		if time.Until(f.next) <= 0 {
			break
		}
	}
}
