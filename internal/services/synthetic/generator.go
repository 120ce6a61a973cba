package synthetic

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/KirkDiggler/spinwin/internal/common/clock"
	"github.com/KirkDiggler/spinwin/internal/common/random"
	"github.com/KirkDiggler/spinwin/internal/common/uuid"
	"github.com/KirkDiggler/spinwin/internal/models"
	"go.uber.org/zap"
)

const (
	DefaultCap          = 15
	DefaultInitialDelay = 5 * time.Second
	DefaultMinInterval  = 30 * time.Second
	DefaultMaxInterval  = 60 * time.Second

	// IDPrefix marks generated entry ids
	IDPrefix = "fake-"
)

var (
	ErrNilConfig       = errors.New("config cannot be nil")
	ErrNilClock        = errors.New("clock cannot be nil")
	ErrNilRandom       = errors.New("random source cannot be nil")
	ErrNilUUID         = errors.New("UUID generator cannot be nil")
	ErrInvalidInterval = errors.New("intervals must satisfy 0 < min <= max")
	ErrAlreadyRunning  = errors.New("generator already running")
)

// Config holds configuration for the generator
type Config struct {
	Clock  clock.Clock
	Random random.Source
	UUID   uuid.UUID
	Logger *zap.Logger

	// Cap bounds the buffer of generated entries; zero means DefaultCap
	Cap int

	// InitialDelay is the wait before the first entry
	InitialDelay time.Duration

	// MinInterval and MaxInterval bound the wait between later entries;
	// a new wait is drawn after every entry
	MinInterval time.Duration
	MaxInterval time.Duration

	// Names and Prizes default to StockNames and StockPrizes
	Names  []string
	Prizes []string
}

// Generator produces display-only entries on a randomized schedule so a
// quiet board never looks empty. Its entries are never persisted.
type Generator struct {
	clock        clock.Clock
	random       random.Source
	uuid         uuid.UUID
	logger       *zap.Logger
	cap          int
	initialDelay time.Duration
	minInterval  time.Duration
	maxInterval  time.Duration
	names        []string
	prizes       []string

	mu      sync.Mutex
	entries []*models.Entry
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a stopped generator
func New(cfg *Config) (*Generator, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.Clock == nil {
		return nil, ErrNilClock
	}
	if cfg.Random == nil {
		return nil, ErrNilRandom
	}
	if cfg.UUID == nil {
		return nil, ErrNilUUID
	}
	if cfg.MinInterval <= 0 || cfg.MaxInterval < cfg.MinInterval || cfg.InitialDelay < 0 {
		return nil, ErrInvalidInterval
	}

	g := &Generator{
		clock:        cfg.Clock,
		random:       cfg.Random,
		uuid:         cfg.UUID,
		logger:       cfg.Logger,
		cap:          cfg.Cap,
		initialDelay: cfg.InitialDelay,
		minInterval:  cfg.MinInterval,
		maxInterval:  cfg.MaxInterval,
		names:        cfg.Names,
		prizes:       cfg.Prizes,
	}

	if g.logger == nil {
		g.logger = zap.NewNop()
	}
	if g.cap <= 0 {
		g.cap = DefaultCap
	}
	if len(g.names) == 0 {
		g.names = StockNames
	}
	if len(g.prizes) == 0 {
		g.prizes = StockPrizes
	}

	return g, nil
}

// Start runs the schedule until ctx is done or Stop is called. sink, if
// set, receives every generated entry after it is buffered.
func (g *Generator) Start(ctx context.Context, sink func(*models.Entry)) error {
	g.mu.Lock()
	if g.cancel != nil {
		g.mu.Unlock()
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	g.cancel = cancel
	g.done = done
	g.mu.Unlock()

	go g.run(ctx, done, sink)

	g.logger.Info("synthetic generator started",
		zap.Duration("initial_delay", g.initialDelay),
		zap.Duration("min_interval", g.minInterval),
		zap.Duration("max_interval", g.maxInterval))

	return nil
}

// Stop cancels the schedule and waits for it to exit. No entry is
// produced after Stop returns. Stopping a stopped generator is a no-op.
func (g *Generator) Stop() {
	g.mu.Lock()
	cancel, done := g.cancel, g.done
	g.cancel, g.done = nil, nil
	g.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Entries returns the buffered entries, newest first
func (g *Generator) Entries() []*models.Entry {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]*models.Entry, len(g.entries))
	copy(out, g.entries)
	return out
}

// Generate creates one entry and buffers it
func (g *Generator) Generate() *models.Entry {
	entry := &models.Entry{
		ID:            IDPrefix + g.uuid.NewUUID(),
		Name:          g.names[g.random.Intn(len(g.names))],
		SelectedPrize: g.prizes[g.random.Intn(len(g.prizes))],
		EntryDate:     g.clock.Now(),
		Synthetic:     true,
	}

	g.mu.Lock()
	g.entries = append([]*models.Entry{entry}, g.entries...)
	if len(g.entries) > g.cap {
		g.entries = g.entries[:g.cap]
	}
	g.mu.Unlock()

	return entry
}

func (g *Generator) run(ctx context.Context, done chan struct{}, sink func(*models.Entry)) {
	defer close(done)

	timer := time.NewTimer(g.initialDelay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		// Stop may have raced the timer
		if ctx.Err() != nil {
			return
		}

		entry := g.Generate()
		g.logger.Debug("synthetic entry generated",
			zap.String("id", entry.ID),
			zap.String("name", entry.Name))

		if sink != nil {
			sink(entry)
		}

		timer.Reset(g.nextInterval())
	}
}

func (g *Generator) nextInterval() time.Duration {
	spread := int(g.maxInterval - g.minInterval)
	if spread <= 0 {
		return g.minInterval
	}
	return g.minInterval + time.Duration(g.random.Intn(spread+1))
}
