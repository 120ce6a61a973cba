package random

import (
	"math/rand"
	"sync"
	"time"
)

// Source is the randomness the wheel and the synthetic feed draw from
type Source interface {
	// Float64 returns a number in [0,1)
	Float64() float64

	// Intn returns a number in [0,n); n <= 0 yields 0
	Intn(n int) int
}

// Rand is a mutex-guarded math/rand source; safe for concurrent use
type Rand struct {
	mu     sync.Mutex
	random *rand.Rand
}

// Config for the random source
type Config struct {
	// Optional seed for testing
	Seed int64
}

// New creates a new random source
func New(cfg *Config) *Rand {
	var seed int64
	if cfg != nil && cfg.Seed != 0 {
		seed = cfg.Seed
	} else {
		seed = time.Now().UnixNano()
	}

	return &Rand{
		random: rand.New(rand.NewSource(seed)),
	}
}

// Float64 returns a uniform number in [0,1)
func (r *Rand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.random.Float64()
}

// Intn returns a uniform number in [0,n)
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.random.Intn(n)
}
