package core

import (
	"fmt"
	"sync"
)

// GenerationLimiter enforces a maximum number of allowed generation-service
// calls per run. Replayed runs must leave the counter at zero; tests assert
// that through Count.
type GenerationLimiter struct {
	max   int
	count int
	mu    sync.Mutex
}

// NewGenerationLimiter creates a new limiter with a max number of calls.
// If max == 0, unlimited calls are allowed.
func NewGenerationLimiter(max int) *GenerationLimiter {
	return &GenerationLimiter{max: max}
}

// Increment increases the call counter and returns an error if the limit is exceeded.
func (gl *GenerationLimiter) Increment() error {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	gl.count++
	if gl.max > 0 && gl.count > gl.max {
		return fmt.Errorf("exceeded max generation calls: %d", gl.max)
	}

	return nil
}

// Count returns the current number of calls made.
func (gl *GenerationLimiter) Count() int {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	return gl.count
}

// Remaining returns how many calls are left before hitting the limit.
func (gl *GenerationLimiter) Remaining() int {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	if gl.max == 0 {
		return -1 // unlimited
	}

	return gl.max - gl.count
}
