package wheel

import (
	"sync"
	"time"

	"github.com/KirkDiggler/spinwin/internal/common/clock"
	"github.com/KirkDiggler/spinwin/internal/common/random"
	"go.uber.org/zap"
)

// Config holds the wheel's dependencies and tuning
type Config struct {
	Table    *Table
	Geometry Geometry
	Policy   Policy

	// MinTurns and MaxTurns bound the extra full turns added to each spin
	MinTurns int
	MaxTurns int

	// SpinDuration is the delay between start and the reported result
	SpinDuration time.Duration

	Random random.Source
	Clock  clock.Clock
	Logger *zap.Logger
}

// Validate reports the first problem with the config
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if err := c.Table.Validate(); err != nil {
		return err
	}
	if err := c.Geometry.Validate(); err != nil {
		return err
	}
	if c.Geometry.SliceCount != len(c.Table.Slices) {
		return ErrSliceCountMismatch
	}
	if c.MinTurns < 1 || c.MaxTurns < c.MinTurns {
		return ErrInvalidTurns
	}
	if c.SpinDuration <= 0 {
		return ErrInvalidDuration
	}
	if c.Policy == nil {
		return ErrNilPolicy
	}
	if v, ok := c.Policy.(interface{ Validate(*Table) error }); ok {
		if err := v.Validate(c.Table); err != nil {
			return err
		}
	}
	if c.Clock == nil {
		return ErrNilClock
	}
	if c.Random == nil {
		return ErrNilRandom
	}
	return nil
}

// Wheel is a single visitor's wheel. It allows at most one spin in flight
// and its rotation only ever grows.
type Wheel struct {
	table    *Table
	geometry Geometry
	policy   Policy
	minTurns int
	maxTurns int
	duration time.Duration
	random   random.Source
	clock    clock.Clock
	logger   *zap.Logger

	mu       sync.Mutex
	rotation float64
	spinning bool
}

// New creates a wheel at rotation zero
func New(cfg *Config) (*Wheel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if unknown := cfg.Table.UnknownPrizeIDs(); len(unknown) > 0 {
		logger.Warn("slice table references prizes missing from the catalog",
			zap.Ints("prize_ids", unknown))
	}

	return &Wheel{
		table:    cfg.Table,
		geometry: cfg.Geometry,
		policy:   cfg.Policy,
		minTurns: cfg.MinTurns,
		maxTurns: cfg.MaxTurns,
		duration: cfg.SpinDuration,
		random:   cfg.Random,
		clock:    cfg.Clock,
		logger:   logger,
	}, nil
}

// Rotation returns the cumulative rotation in degrees. A started spin is
// reflected immediately.
func (w *Wheel) Rotation() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rotation
}

// Spinning reports whether a spin is in flight
func (w *Wheel) Spinning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.spinning
}

// Policy returns the selection policy in use
func (w *Wheel) Policy() Policy {
	return w.policy
}

// StartSpin starts a spin if none is in flight and the caller is eligible.
// A rejected request changes nothing and runs no callbacks.
func (w *Wheel) StartSpin(req *SpinRequest) (*SpinStart, bool) {
	if req == nil {
		req = &SpinRequest{}
	}

	w.mu.Lock()
	if w.spinning || (req.Eligible != nil && !req.Eligible()) {
		w.mu.Unlock()
		return nil, false
	}
	w.spinning = true
	w.mu.Unlock()

	if req.OnStart != nil {
		req.OnStart()
	}

	target := w.policy.Pick(w.table, w.random)
	turns := w.minTurns + w.random.Intn(w.maxTurns-w.minTurns+1)

	w.mu.Lock()
	delta := normalize(w.geometry.AngleForSlice(target) - normalize(w.rotation))
	final := w.rotation + float64(turns)*360 + delta
	w.rotation = final
	w.mu.Unlock()

	onComplete := req.OnComplete
	w.clock.AfterFunc(w.duration, func() {
		w.complete(target, final, onComplete)
	})

	return &SpinStart{
		SliceIndex: target,
		Rotation:   final,
		Turns:      turns,
		Duration:   w.duration,
	}, true
}

func (w *Wheel) complete(target int, final float64, onComplete func(SpinResult)) {
	// the next spin is only accepted once the result has been handed over
	defer func() {
		w.mu.Lock()
		w.spinning = false
		w.mu.Unlock()
	}()

	index := w.geometry.SliceForAngle(final)
	if index != target {
		w.logger.Warn("spin landed off target",
			zap.Int("target", target),
			zap.Int("landed", index),
			zap.Float64("rotation", final))
	}

	result := SpinResult{
		Prize:        w.table.PrizeForSlice(index),
		SliceIndex:   index,
		LandingAngle: normalize(final),
	}

	if onComplete != nil {
		onComplete(result)
	}
}
