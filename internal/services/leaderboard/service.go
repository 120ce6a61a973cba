package leaderboard

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/KirkDiggler/spinwin/internal/common/clock"
	"github.com/KirkDiggler/spinwin/internal/models"
	"github.com/KirkDiggler/spinwin/internal/repositories/entry"
	"github.com/KirkDiggler/spinwin/internal/services/feed"
	"go.uber.org/zap"
)

// DefaultRealLimit is how many real entries the board keeps
const DefaultRealLimit = 10

var (
	ErrNilConfig     = errors.New("config cannot be nil")
	ErrNilRepository = errors.New("entry repository cannot be nil")
	ErrNilFeed       = errors.New("feed cannot be nil")
	ErrNilClock      = errors.New("clock cannot be nil")
)

// Config holds configuration for the leaderboard service
type Config struct {
	Repository entry.Repository
	Feed       feed.Feed
	Clock      clock.Clock
	Logger     *zap.Logger

	// Generator is optional; without it the board shows real entries only
	Generator Generator

	// RealLimit caps the real entries kept; zero means DefaultRealLimit
	RealLimit int
}

// Service keeps the merged list of recent real and synthetic wins
type Service struct {
	repository entry.Repository
	feed       feed.Feed
	generator  Generator
	clock      clock.Clock
	logger     *zap.Logger
	realLimit  int

	mu        sync.RWMutex
	real      []*models.Entry
	listeners map[int]Listener
	nextID    int
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// New creates a leaderboard service; call Start to fill it
func New(cfg *Config) (*Service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.Repository == nil {
		return nil, ErrNilRepository
	}
	if cfg.Feed == nil {
		return nil, ErrNilFeed
	}
	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	limit := cfg.RealLimit
	if limit <= 0 {
		limit = DefaultRealLimit
	}

	return &Service{
		repository: cfg.Repository,
		feed:       cfg.Feed,
		generator:  cfg.Generator,
		clock:      cfg.Clock,
		logger:     logger,
		realLimit:  limit,
		listeners:  make(map[int]Listener),
	}, nil
}

// Start loads the most recent entries, follows the live feed and starts
// the synthetic generator. Load or subscribe failures leave the board
// empty or static and are only logged.
func (s *Service) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	out, err := s.repository.GetRecentEntries(ctx, &entry.GetRecentEntriesInput{
		Limit: s.realLimit,
	})
	if err != nil {
		s.logger.Error("failed to load recent entries", zap.Error(err))
	} else {
		s.mu.Lock()
		s.real = out.Entries
		s.mu.Unlock()
	}

	entries, err := s.feed.Subscribe(ctx)
	if err != nil {
		s.logger.Error("failed to subscribe to entry feed", zap.Error(err))
	} else {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case e, ok := <-entries:
					if !ok {
						return
					}
					s.Add(e)
				}
			}
		}()
	}

	if s.generator != nil {
		if err := s.generator.Start(ctx, func(*models.Entry) { s.broadcast() }); err != nil {
			s.logger.Error("failed to start synthetic generator", zap.Error(err))
		}
	}

	s.broadcast()
	return nil
}

// Stop ends the feed subscription and the generator
func (s *Service) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if s.generator != nil {
		s.generator.Stop()
	}
	s.wg.Wait()
}

// Add prepends a real entry, dropping the oldest past the limit
func (s *Service) Add(e *models.Entry) {
	if e == nil {
		return
	}

	s.mu.Lock()
	s.real = append([]*models.Entry{e}, s.real...)
	if len(s.real) > s.realLimit {
		s.real = s.real[:s.realLimit]
	}
	s.mu.Unlock()

	s.broadcast()
}

// Snapshot merges synthetic and real entries, newest first
func (s *Service) Snapshot() *Snapshot {
	now := s.clock.Now()

	var merged []*models.Entry
	if s.generator != nil {
		merged = append(merged, s.generator.Entries()...)
	}

	s.mu.RLock()
	merged = append(merged, s.real...)
	s.mu.RUnlock()

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].EntryDate.After(merged[j].EntryDate)
	})

	rows := make([]Row, len(merged))
	for i, e := range merged {
		rows[i] = Row{
			Rank:      i + 1,
			ID:        e.ID,
			Name:      e.Name,
			Prize:     TruncatePrize(e.SelectedPrize),
			EntryDate: e.EntryDate,
			Relative:  RelativeTime(now, e.EntryDate),
			Synthetic: e.Synthetic,
		}
	}

	return &Snapshot{
		Rows:        rows,
		GeneratedAt: now,
	}
}

// AddListener registers l for change notifications and returns a func
// that removes it
func (s *Service) AddListener(l Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Service) broadcast() {
	s.mu.RLock()
	if len(s.listeners) == 0 {
		s.mu.RUnlock()
		return
	}
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.RUnlock()

	snapshot := s.Snapshot()
	for _, l := range listeners {
		l(snapshot)
	}
}
