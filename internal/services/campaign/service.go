package campaign

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/KirkDiggler/spinwin/internal/common/clock"
	"github.com/KirkDiggler/spinwin/internal/common/random"
	"github.com/KirkDiggler/spinwin/internal/common/uuid"
	"github.com/KirkDiggler/spinwin/internal/metrics"
	"github.com/KirkDiggler/spinwin/internal/models"
	"github.com/KirkDiggler/spinwin/internal/repositories/entry"
	"github.com/KirkDiggler/spinwin/internal/services/feed"
	"github.com/KirkDiggler/spinwin/internal/services/notifier"
	"github.com/KirkDiggler/spinwin/internal/wheel"
	"go.uber.org/zap"
)

const (
	DefaultSessionTTL        = 30 * time.Minute
	DefaultJanitorInterval   = time.Minute
	DefaultCompletionTimeout = 10 * time.Second
)

// Registration outcomes recorded in metrics
const (
	outcomeAccepted  = "accepted"
	outcomeInvalid   = "invalid"
	outcomeDuplicate = "duplicate"
	outcomeError     = "error"
)

// Config holds configuration for the campaign service
type Config struct {
	Repository entry.Repository
	Feed       feed.Feed

	// Notifier is optional
	Notifier notifier.Notifier

	Clock   clock.Clock
	UUID    uuid.UUID
	Random  random.Source
	Logger  *zap.Logger
	Metrics *metrics.Metrics

	Table    *wheel.Table
	Geometry wheel.Geometry
	Policy   wheel.Policy

	MinTurns     int
	MaxTurns     int
	SpinDuration time.Duration

	// DuplicateCheck refuses a mobile number that already has a stored entry
	DuplicateCheck bool

	// SessionTTL is how long an idle session is kept; zero uses the default
	SessionTTL      time.Duration
	JanitorInterval time.Duration

	// Ticks drives the session janitor; nil ticks every JanitorInterval
	Ticks <-chan time.Time

	// CompletionTimeout bounds storing and announcing a finished spin, and
	// how long Close waits for spins still in flight
	CompletionTimeout time.Duration
}

type service struct {
	repository entry.Repository
	feed       feed.Feed
	notifier   notifier.Notifier
	clock      clock.Clock
	uuid       uuid.UUID
	random     random.Source
	logger     *zap.Logger
	metrics    *metrics.Metrics

	table    *wheel.Table
	geometry wheel.Geometry
	policy   wheel.Policy
	minTurns int
	maxTurns int
	duration time.Duration

	duplicateCheck    bool
	sessionTTL        time.Duration
	completionTimeout time.Duration

	mu       sync.RWMutex
	sessions map[string]*session
	byMobile map[string]*session
	closed   bool

	// inflight counts accepted spins whose completion has not finished
	inflight sync.WaitGroup

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a new campaign service and starts its session janitor
func New(cfg *Config) (Service, error) {
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
	if cfg.UUID == nil {
		return nil, ErrNilUUIDGenerator
	}
	if cfg.Random == nil {
		return nil, ErrNilRandom
	}
	if cfg.Table == nil {
		return nil, ErrNilTable
	}

	s := &service{
		repository:        cfg.Repository,
		feed:              cfg.Feed,
		notifier:          cfg.Notifier,
		clock:             cfg.Clock,
		uuid:              cfg.UUID,
		random:            cfg.Random,
		logger:            cfg.Logger,
		metrics:           cfg.Metrics,
		table:             cfg.Table,
		geometry:          cfg.Geometry,
		policy:            cfg.Policy,
		minTurns:          cfg.MinTurns,
		maxTurns:          cfg.MaxTurns,
		duration:          cfg.SpinDuration,
		duplicateCheck:    cfg.DuplicateCheck,
		sessionTTL:        cfg.SessionTTL,
		completionTimeout: cfg.CompletionTimeout,
		sessions:          make(map[string]*session),
		byMobile:          make(map[string]*session),
		stop:              make(chan struct{}),
		done:              make(chan struct{}),
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.sessionTTL <= 0 {
		s.sessionTTL = DefaultSessionTTL
	}
	if s.completionTimeout <= 0 {
		s.completionTimeout = DefaultCompletionTimeout
	}

	// fail fast on a bad wheel setup rather than on the first registration
	if err := s.wheelConfig().Validate(); err != nil {
		return nil, fmt.Errorf("invalid wheel config: %w", err)
	}

	ticks, stopTicks := cfg.Ticks, func() {}
	if ticks == nil {
		interval := cfg.JanitorInterval
		if interval <= 0 {
			interval = DefaultJanitorInterval
		}
		ticker := time.NewTicker(interval)
		ticks, stopTicks = ticker.C, ticker.Stop
	}
	go s.janitor(ticks, stopTicks)

	return s, nil
}

func (s *service) wheelConfig() *wheel.Config {
	return &wheel.Config{
		Table:        s.table,
		Geometry:     s.geometry,
		Policy:       s.policy,
		MinTurns:     s.minTurns,
		MaxTurns:     s.maxTurns,
		SpinDuration: s.duration,
		Random:       s.random,
		Clock:        s.clock,
		Logger:       s.logger,
	}
}

// Register validates the form and opens a session
func (s *service) Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error) {
	if input == nil {
		return nil, ErrNameRequired
	}

	participant := models.Participant{
		Name:        NormalizeName(input.Name),
		CountryCode: NormalizeCountryCode(input.CountryCode),
		Mobile:      NormalizeMobile(input.Mobile),
		OriginIP:    input.OriginIP,
	}
	if participant.Name == "" {
		s.metrics.Registration(outcomeInvalid)
		return nil, ErrNameRequired
	}
	if participant.Mobile == "" {
		s.metrics.Registration(outcomeInvalid)
		return nil, ErrMobileRequired
	}
	fullMobile := participant.FullMobile()

	if s.duplicateCheck {
		exists, err := s.repository.HasEntryForMobile(ctx, &entry.HasEntryForMobileInput{
			Mobile: fullMobile,
		})
		if err != nil {
			s.metrics.Registration(outcomeError)
			return nil, fmt.Errorf("failed to check for existing entry: %w", err)
		}
		if exists {
			s.metrics.Registration(outcomeDuplicate)
			return nil, ErrAlreadyEntered
		}
	}

	w, err := wheel.New(s.wheelConfig())
	if err != nil {
		s.metrics.Registration(outcomeError)
		return nil, fmt.Errorf("failed to create wheel: %w", err)
	}

	sess := &session{
		id:          s.uuid.NewUUID(),
		participant: participant,
		wheel:       w,
		lastSeen:    s.clock.Now(),
	}

	// the in-process index is checked and updated under one lock so
	// concurrent submissions of a mobile share a session
	s.mu.Lock()
	if existing := s.byMobile[fullMobile]; s.duplicateCheck && existing != nil {
		s.mu.Unlock()
		return s.reuse(existing)
	}
	s.sessions[sess.id] = sess
	s.byMobile[fullMobile] = sess
	active := len(s.sessions)
	s.mu.Unlock()

	s.metrics.Registration(outcomeAccepted)
	s.metrics.SetActiveSessions(active)

	s.logger.Info("participant registered",
		zap.String("session_id", sess.id),
		zap.String("name", participant.Name))

	return &RegisterOutput{
		SessionID: sess.id,
		Name:      participant.Name,
		Mobile:    fullMobile,
	}, nil
}

// reuse hands back an open session for a mobile; one whose win has not been
// stored yet still counts as entered
func (s *service) reuse(existing *session) (*RegisterOutput, error) {
	if existing.hasWon() {
		s.metrics.Registration(outcomeDuplicate)
		return nil, ErrAlreadyEntered
	}
	existing.touch(s.clock.Now())
	s.metrics.Registration(outcomeAccepted)
	return &RegisterOutput{
		SessionID: existing.id,
		Name:      existing.participant.Name,
		Mobile:    existing.participant.FullMobile(),
	}, nil
}

// Spin starts the session's wheel
func (s *service) Spin(_ context.Context, input *SpinInput) (*SpinOutput, error) {
	sess, err := s.session(input)
	if err != nil {
		return nil, err
	}
	sess.touch(s.clock.Now())

	// counted before the wheel can schedule a completion so Close never
	// misses one
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, ErrServiceClosed
	}
	s.inflight.Add(1)
	s.mu.RUnlock()

	// the participant is copied so the stored entry matches the form that
	// started the spin
	participant := sess.participant
	ineligible := false

	start, ok := sess.wheel.StartSpin(&wheel.SpinRequest{
		Eligible: func() bool {
			if sess.hasWon() {
				ineligible = true
				return false
			}
			return true
		},
		OnStart: s.metrics.SpinStarted,
		OnComplete: func(result wheel.SpinResult) {
			s.complete(sess, participant, result)
		},
	})
	if !ok {
		s.inflight.Done()
		reason := RejectInFlight
		metricReason := metrics.ReasonInFlight
		if ineligible {
			reason = RejectAlreadySpun
			metricReason = metrics.ReasonNotEligible
		}
		s.metrics.SpinRejected(metricReason)
		return &SpinOutput{
			Accepted: false,
			Reason:   reason,
			Rotation: sess.wheel.Rotation(),
		}, nil
	}

	s.logger.Debug("spin started",
		zap.String("session_id", sess.id),
		zap.Int("slice", start.SliceIndex),
		zap.Float64("rotation", start.Rotation))

	return &SpinOutput{
		Accepted:   true,
		Rotation:   start.Rotation,
		SliceIndex: start.SliceIndex,
		Duration:   start.Duration,
	}, nil
}

// complete runs on the wheel's timer goroutine
func (s *service) complete(sess *session, participant models.Participant, result wheel.SpinResult) {
	defer s.inflight.Done()

	sess.recordWin(result)
	s.metrics.SpinCompleted(result.Prize.ID)

	ctx, cancel := context.WithTimeout(context.Background(), s.completionTimeout)
	defer cancel()

	ip := participant.OriginIP
	if ip == "" {
		ip = models.UnknownIP
	}

	e := &models.Entry{
		ID:            s.uuid.NewUUID(),
		Name:          participant.Name,
		Mobile:        participant.FullMobile(),
		SelectedPrize: result.Prize.Name,
		PrizeID:       result.Prize.ID,
		EntryDate:     s.clock.Now(),
		IPAddress:     ip,
	}

	logger := s.logger.With(
		zap.String("session_id", sess.id),
		zap.String("entry_id", e.ID),
		zap.Int("prize_id", e.PrizeID))

	if err := s.repository.CreateEntry(ctx, &entry.CreateEntryInput{Entry: e}); err != nil {
		s.metrics.PersistFailed()
		logger.Error("failed to store entry", zap.Error(err))
	} else {
		if err := s.feed.Publish(ctx, e); err != nil {
			logger.Warn("failed to publish entry", zap.Error(err))
		}
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, &notifier.NotifyInput{Entry: e}); err != nil {
			s.metrics.NotifyFailed()
			logger.Warn("failed to notify", zap.Error(err))
		}
	}

	logger.Info("spin completed", zap.String("prize", e.SelectedPrize))
}

// GetResult reports the session's spin state
func (s *service) GetResult(_ context.Context, input *GetResultInput) (*GetResultOutput, error) {
	var id string
	if input != nil {
		id = input.SessionID
	}
	sess, err := s.session(&SpinInput{SessionID: id})
	if err != nil {
		return nil, err
	}
	sess.touch(s.clock.Now())

	output := &GetResultOutput{
		Status:   SpinStatusIdle,
		Name:     sess.participant.Name,
		Rotation: sess.wheel.Rotation(),
	}

	won, result := sess.snapshot()
	switch {
	case won && result != nil:
		prize := result.Prize
		output.Status = SpinStatusWon
		output.Prize = &prize
		output.SliceIndex = result.SliceIndex
	case sess.wheel.Spinning():
		output.Status = SpinStatusPending
	}

	return output, nil
}

// GetWheel describes the configured wheel
func (s *service) GetWheel(_ context.Context) (*GetWheelOutput, error) {
	prizes := make([]wheel.Prize, len(s.table.Prizes))
	copy(prizes, s.table.Prizes)
	slices := make([]wheel.Slice, len(s.table.Slices))
	copy(slices, s.table.Slices)

	return &GetWheelOutput{
		Prizes:   prizes,
		Slices:   slices,
		Geometry: s.geometry,
		Policy:   s.policy.Name(),
		Duration: s.duration,
	}, nil
}

// Close stops the session janitor, refuses new spins and waits up to the
// completion timeout for spins already accepted to be stored
func (s *service) Close() error {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	<-s.done

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(drained)
	}()

	timer := time.NewTimer(s.completionTimeout)
	defer timer.Stop()

	select {
	case <-drained:
	case <-timer.C:
		s.logger.Warn("closed with spins still in flight",
			zap.Duration("waited", s.completionTimeout))
	}
	return nil
}

func (s *service) session(input *SpinInput) (*session, error) {
	if input == nil || input.SessionID == "" {
		return nil, ErrSessionNotFound
	}

	s.mu.RLock()
	sess, ok := s.sessions[input.SessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *service) janitor(ticks <-chan time.Time, stopTicks func()) {
	defer close(s.done)
	defer stopTicks()

	// expiry is judged by the injected clock, not the tick's timestamp
	for {
		select {
		case <-s.stop:
			return
		case <-ticks:
			s.expireSessions(s.clock.Now())
		}
	}
}

// expireSessions drops idle sessions. A session with a spin in flight is
// kept until it completes.
func (s *service) expireSessions(now time.Time) int {
	s.mu.Lock()
	removed := 0
	for id, sess := range s.sessions {
		if !sess.expired(now, s.sessionTTL) || sess.wheel.Spinning() {
			continue
		}
		delete(s.sessions, id)
		mobile := sess.participant.FullMobile()
		if s.byMobile[mobile] == sess {
			delete(s.byMobile, mobile)
		}
		removed++
	}
	active := len(s.sessions)
	s.mu.Unlock()

	if removed > 0 {
		s.metrics.SetActiveSessions(active)
		s.logger.Debug("expired sessions", zap.Int("count", removed))
	}
	return removed
}
