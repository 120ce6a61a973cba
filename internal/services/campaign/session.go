package campaign

import (
	"sync"
	"time"

	"github.com/KirkDiggler/spinwin/internal/models"
	"github.com/KirkDiggler/spinwin/internal/wheel"
)

// session is one visitor's registration and wheel
type session struct {
	id          string
	participant models.Participant
	wheel       *wheel.Wheel

	mu       sync.Mutex
	won      bool
	result   *wheel.SpinResult
	lastSeen time.Time
}

func (s *session) hasWon() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.won
}

func (s *session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *session) expired(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen) > ttl
}

func (s *session) recordWin(result wheel.SpinResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.won = true
	s.result = &result
}

func (s *session) snapshot() (bool, *wheel.SpinResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.won, s.result
}
