package campaign

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	mockclock "github.com/KirkDiggler/spinwin/internal/common/clock/mocks"
	"github.com/KirkDiggler/spinwin/internal/common/random"
	mockuuid "github.com/KirkDiggler/spinwin/internal/common/uuid/mocks"
	"github.com/KirkDiggler/spinwin/internal/models"
	"github.com/KirkDiggler/spinwin/internal/repositories/entry"
	mockentry "github.com/KirkDiggler/spinwin/internal/repositories/entry/mocks"
	mockfeed "github.com/KirkDiggler/spinwin/internal/services/feed/mocks"
	mocknotifier "github.com/KirkDiggler/spinwin/internal/services/notifier/mocks"
	"github.com/KirkDiggler/spinwin/internal/wheel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type CampaignServiceTestSuite struct {
	suite.Suite
	mockCtrl     *gomock.Controller
	mockRepo     *mockentry.MockRepository
	mockFeed     *mockfeed.MockFeed
	mockNotifier *mocknotifier.MockNotifier
	mockClock    *mockclock.MockClock
	mockUUID     *mockuuid.MockUUID
	cfg          *Config
	service      *service
	now          time.Time
	pending      []func()
	ids          atomic.Int64
}

func (s *CampaignServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockRepo = mockentry.NewMockRepository(s.mockCtrl)
	s.mockFeed = mockfeed.NewMockFeed(s.mockCtrl)
	s.mockNotifier = mocknotifier.NewMockNotifier(s.mockCtrl)
	s.mockClock = mockclock.NewMockClock(s.mockCtrl)
	s.mockUUID = mockuuid.NewMockUUID(s.mockCtrl)
	s.now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.pending = nil
	s.ids.Store(0)

	s.mockClock.EXPECT().Now().DoAndReturn(func() time.Time { return s.now }).AnyTimes()
	s.mockClock.EXPECT().AfterFunc(wheel.DefaultSpinDuration, gomock.Any()).
		Do(func(_ time.Duration, f func()) {
			s.pending = append(s.pending, f)
		}).AnyTimes()
	s.mockUUID.EXPECT().NewUUID().DoAndReturn(func() string {
		// yield so concurrent registrations interleave
		runtime.Gosched()
		return fmt.Sprintf("id-%d", s.ids.Add(1))
	}).AnyTimes()

	s.cfg = &Config{
		Repository:      s.mockRepo,
		Feed:            s.mockFeed,
		Notifier:        s.mockNotifier,
		Clock:           s.mockClock,
		UUID:            s.mockUUID,
		Random:          random.New(&random.Config{Seed: 7}),
		Table:           wheel.DefaultTable(),
		Geometry:        wheel.DefaultGeometry(),
		Policy:          wheel.FixedSlice{Index: wheel.DefaultFixedSlice},
		MinTurns:        wheel.DefaultMinTurns,
		MaxTurns:        wheel.DefaultMaxTurns,
		SpinDuration:    wheel.DefaultSpinDuration,
		DuplicateCheck:  true,
		JanitorInterval: time.Hour,

		CompletionTimeout: time.Second,
	}
	s.service = s.newService(s.cfg)
}

func (s *CampaignServiceTestSuite) TearDownTest() {
	s.Require().NoError(s.service.Close())
	s.mockCtrl.Finish()
}

func (s *CampaignServiceTestSuite) newService(cfg *Config) *service {
	svc, err := New(cfg)
	s.Require().NoError(err)
	return svc.(*service)
}

func (s *CampaignServiceTestSuite) fire() {
	s.Require().NotEmpty(s.pending)
	f := s.pending[0]
	s.pending = s.pending[1:]
	f()
}

func (s *CampaignServiceTestSuite) register(name, mobile string) *RegisterOutput {
	s.mockRepo.EXPECT().
		HasEntryForMobile(gomock.Any(), gomock.Any()).
		Return(false, nil)

	out, err := s.service.Register(context.Background(), &RegisterInput{
		Name:        name,
		CountryCode: "+971",
		Mobile:      mobile,
		OriginIP:    "10.0.0.1",
	})
	s.Require().NoError(err)
	return out
}

func (s *CampaignServiceTestSuite) TestFullCycleStoresOneEntryAndNotifiesOnce() {
	ctx := context.Background()

	s.mockRepo.EXPECT().
		HasEntryForMobile(gomock.Any(), &entry.HasEntryForMobileInput{Mobile: "+971501234567"}).
		Return(false, nil)

	reg, err := s.service.Register(ctx, &RegisterInput{
		Name:        "  test user ",
		CountryCode: "+971",
		Mobile:      "501234567",
	})
	s.Require().NoError(err)
	s.Equal("TEST USER", reg.Name)
	s.Equal("+971501234567", reg.Mobile)

	var stored *models.Entry
	s.mockRepo.EXPECT().
		CreateEntry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *entry.CreateEntryInput) error {
			stored = input.Entry
			return nil
		}).Times(1)
	s.mockFeed.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	s.mockNotifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	spin, err := s.service.Spin(ctx, &SpinInput{SessionID: reg.SessionID})
	s.Require().NoError(err)
	s.True(spin.Accepted)
	s.Equal(wheel.DefaultFixedSlice, spin.SliceIndex)
	s.Equal(wheel.DefaultSpinDuration, spin.Duration)

	result, err := s.service.GetResult(ctx, &GetResultInput{SessionID: reg.SessionID})
	s.Require().NoError(err)
	s.Equal(SpinStatusPending, result.Status)
	s.Equal(spin.Rotation, result.Rotation)

	s.fire()

	s.Require().NotNil(stored)
	s.Equal("TEST USER", stored.Name)
	s.Equal("+971501234567", stored.Mobile)
	s.Equal("250 AED GIFT CARD", stored.SelectedPrize)
	s.Equal(4, stored.PrizeID)
	s.Equal(models.UnknownIP, stored.IPAddress)
	s.Equal(s.now, stored.EntryDate)
	s.False(stored.Synthetic)

	result, err = s.service.GetResult(ctx, &GetResultInput{SessionID: reg.SessionID})
	s.Require().NoError(err)
	s.Equal(SpinStatusWon, result.Status)
	s.Require().NotNil(result.Prize)
	s.Equal(4, result.Prize.ID)
	s.Equal(wheel.DefaultFixedSlice, result.SliceIndex)
}

func (s *CampaignServiceTestSuite) TestSecondSpinAfterWinIsRejected() {
	ctx := context.Background()
	reg := s.register("Jane", "501112222")

	s.mockRepo.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	s.mockFeed.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	s.mockNotifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	first, err := s.service.Spin(ctx, &SpinInput{SessionID: reg.SessionID})
	s.Require().NoError(err)
	s.Require().True(first.Accepted)
	s.fire()

	second, err := s.service.Spin(ctx, &SpinInput{SessionID: reg.SessionID})
	s.Require().NoError(err)
	s.False(second.Accepted)
	s.Equal(RejectAlreadySpun, second.Reason)
	s.Equal(first.Rotation, second.Rotation)
	s.Empty(s.pending)
}

func (s *CampaignServiceTestSuite) TestSpinWhileInFlightIsRejected() {
	ctx := context.Background()
	reg := s.register("Jane", "501112222")

	first, err := s.service.Spin(ctx, &SpinInput{SessionID: reg.SessionID})
	s.Require().NoError(err)
	s.Require().True(first.Accepted)

	second, err := s.service.Spin(ctx, &SpinInput{SessionID: reg.SessionID})
	s.Require().NoError(err)
	s.False(second.Accepted)
	s.Equal(RejectInFlight, second.Reason)
	s.Equal(first.Rotation, second.Rotation)
	s.Len(s.pending, 1)

	s.mockRepo.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	s.mockFeed.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	s.mockNotifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	s.fire()
}

func (s *CampaignServiceTestSuite) TestStoreFailureSkipsFeedButStillNotifies() {
	ctx := context.Background()
	reg := s.register("Jane", "501112222")

	s.mockRepo.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).Return(errors.New("db down"))
	s.mockFeed.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)
	s.mockNotifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	_, err := s.service.Spin(ctx, &SpinInput{SessionID: reg.SessionID})
	s.Require().NoError(err)
	s.fire()

	result, err := s.service.GetResult(ctx, &GetResultInput{SessionID: reg.SessionID})
	s.Require().NoError(err)
	s.Equal(SpinStatusWon, result.Status)
}

func (s *CampaignServiceTestSuite) TestNotifierFailureDoesNotChangeResult() {
	ctx := context.Background()
	reg := s.register("Jane", "501112222")

	s.mockRepo.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).Return(nil)
	s.mockFeed.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))
	s.mockNotifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(errors.New("webhook down"))

	_, err := s.service.Spin(ctx, &SpinInput{SessionID: reg.SessionID})
	s.Require().NoError(err)
	s.fire()

	result, err := s.service.GetResult(ctx, &GetResultInput{SessionID: reg.SessionID})
	s.Require().NoError(err)
	s.Equal(SpinStatusWon, result.Status)
}

func (s *CampaignServiceTestSuite) TestOriginIPIsStored() {
	ctx := context.Background()
	reg := s.register("Jane", "501112222")

	s.mockRepo.EXPECT().
		CreateEntry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *entry.CreateEntryInput) error {
			s.Equal("10.0.0.1", input.Entry.IPAddress)
			return nil
		})
	s.mockFeed.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
	s.mockNotifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil)

	_, err := s.service.Spin(ctx, &SpinInput{SessionID: reg.SessionID})
	s.Require().NoError(err)
	s.fire()
}

func (s *CampaignServiceTestSuite) TestRegisterValidation() {
	ctx := context.Background()

	_, err := s.service.Register(ctx, &RegisterInput{Name: "   ", Mobile: "501234567"})
	s.ErrorIs(err, ErrNameRequired)

	_, err = s.service.Register(ctx, &RegisterInput{Name: "Jane", Mobile: "abc"})
	s.ErrorIs(err, ErrMobileRequired)

	_, err = s.service.Register(ctx, nil)
	s.Error(err)
}

func (s *CampaignServiceTestSuite) TestRegisterRejectsStoredMobile() {
	s.mockRepo.EXPECT().
		HasEntryForMobile(gomock.Any(), gomock.Any()).
		Return(true, nil)

	_, err := s.service.Register(context.Background(), &RegisterInput{
		Name:   "Jane",
		Mobile: "501234567",
	})
	s.ErrorIs(err, ErrAlreadyEntered)
}

func (s *CampaignServiceTestSuite) TestRegisterReturnsRepositoryError() {
	s.mockRepo.EXPECT().
		HasEntryForMobile(gomock.Any(), gomock.Any()).
		Return(false, errors.New("connection refused"))

	_, err := s.service.Register(context.Background(), &RegisterInput{
		Name:   "Jane",
		Mobile: "501234567",
	})
	s.Error(err)
	s.Contains(err.Error(), "connection refused")
}

func (s *CampaignServiceTestSuite) TestRegisterReusesUnspunSession() {
	first := s.register("Jane", "501112222")
	second := s.register("Jane", "501112222")
	s.Equal(first.SessionID, second.SessionID)
}

func (s *CampaignServiceTestSuite) TestRegisterRejectsMobileThatWonInThisProcess() {
	ctx := context.Background()
	reg := s.register("Jane", "501112222")

	// store fails, so only the in-memory session knows about the win
	s.mockRepo.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).Return(errors.New("db down"))
	s.mockNotifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil)
	_, err := s.service.Spin(ctx, &SpinInput{SessionID: reg.SessionID})
	s.Require().NoError(err)
	s.fire()

	s.mockRepo.EXPECT().HasEntryForMobile(gomock.Any(), gomock.Any()).Return(false, nil)
	_, err = s.service.Register(ctx, &RegisterInput{Name: "Jane", Mobile: "501112222"})
	s.ErrorIs(err, ErrAlreadyEntered)
}

func (s *CampaignServiceTestSuite) TestConcurrentRegistrationsShareOneSession() {
	const submissions = 50

	s.mockRepo.EXPECT().
		HasEntryForMobile(gomock.Any(), gomock.Any()).
		Return(false, nil).
		Times(submissions)

	start := make(chan struct{})
	ids := make([]string, submissions)
	errs := make([]error, submissions)

	var wg sync.WaitGroup
	for i := 0; i < submissions; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			out, err := s.service.Register(context.Background(), &RegisterInput{
				Name:   "Jane",
				Mobile: "501112222",
			})
			errs[i] = err
			if out != nil {
				ids[i] = out.SessionID
			}
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 0; i < submissions; i++ {
		s.Require().NoError(errs[i])
		s.Equal(ids[0], ids[i])
	}

	s.service.mu.RLock()
	defer s.service.mu.RUnlock()
	s.Len(s.service.sessions, 1)
	s.Len(s.service.byMobile, 1)
}

func (s *CampaignServiceTestSuite) TestCloseWaitsForSpinInFlight() {
	ctx := context.Background()
	reg := s.register("Jane", "501112222")

	var stored atomic.Bool
	s.mockRepo.EXPECT().
		CreateEntry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, *entry.CreateEntryInput) error {
			stored.Store(true)
			return nil
		})
	s.mockFeed.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
	s.mockNotifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil)

	spin, err := s.service.Spin(ctx, &SpinInput{SessionID: reg.SessionID})
	s.Require().NoError(err)
	s.Require().True(spin.Accepted)
	s.Require().Len(s.pending, 1)

	// the wheel finishes shortly after shutdown begins
	complete := s.pending[0]
	s.pending = nil
	go func() {
		time.Sleep(50 * time.Millisecond)
		complete()
	}()

	s.Require().NoError(s.service.Close())
	s.True(stored.Load())

	_, err = s.service.Spin(ctx, &SpinInput{SessionID: reg.SessionID})
	s.ErrorIs(err, ErrServiceClosed)
}

func (s *CampaignServiceTestSuite) TestCloseGivesUpAfterCompletionTimeout() {
	s.Require().NoError(s.service.Close())

	cfg := *s.cfg
	cfg.CompletionTimeout = 20 * time.Millisecond
	s.service = s.newService(&cfg)

	reg := s.register("Jane", "501112222")
	spin, err := s.service.Spin(context.Background(), &SpinInput{SessionID: reg.SessionID})
	s.Require().NoError(err)
	s.Require().True(spin.Accepted)

	// the completion never fires
	done := make(chan struct{})
	go func() {
		_ = s.service.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		s.Fail("Close did not return")
	}
}

func (s *CampaignServiceTestSuite) TestRejectedSpinIsNotAwaitedOnClose() {
	ctx := context.Background()
	reg := s.register("Jane", "501112222")

	s.mockRepo.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).Return(nil)
	s.mockFeed.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
	s.mockNotifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil)

	_, err := s.service.Spin(ctx, &SpinInput{SessionID: reg.SessionID})
	s.Require().NoError(err)
	s.fire()

	second, err := s.service.Spin(ctx, &SpinInput{SessionID: reg.SessionID})
	s.Require().NoError(err)
	s.False(second.Accepted)

	started := time.Now()
	s.Require().NoError(s.service.Close())
	s.Less(time.Since(started), s.cfg.CompletionTimeout)
}

func (s *CampaignServiceTestSuite) TestJanitorExpiresOnTick() {
	s.Require().NoError(s.service.Close())

	ticks := make(chan time.Time)
	cfg := *s.cfg
	cfg.Ticks = ticks
	s.service = s.newService(&cfg)

	reg := s.register("Jane", "501112222")

	s.now = s.now.Add(DefaultSessionTTL + time.Second)
	ticks <- s.now

	// reading the session would touch it, so watch the map instead
	s.Eventually(func() bool {
		s.service.mu.RLock()
		defer s.service.mu.RUnlock()
		_, ok := s.service.sessions[reg.SessionID]
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func (s *CampaignServiceTestSuite) TestDuplicateCheckDisabled() {
	s.Require().NoError(s.service.Close())

	cfg := *s.cfg
	cfg.DuplicateCheck = false
	s.service = s.newService(&cfg)

	// no repository lookups expected
	a, err := s.service.Register(context.Background(), &RegisterInput{Name: "Jane", Mobile: "501112222"})
	s.Require().NoError(err)
	b, err := s.service.Register(context.Background(), &RegisterInput{Name: "Jane", Mobile: "501112222"})
	s.Require().NoError(err)
	s.NotEqual(a.SessionID, b.SessionID)
}

func (s *CampaignServiceTestSuite) TestUnknownSession() {
	ctx := context.Background()

	_, err := s.service.Spin(ctx, &SpinInput{SessionID: "missing"})
	s.ErrorIs(err, ErrSessionNotFound)

	_, err = s.service.GetResult(ctx, &GetResultInput{SessionID: "missing"})
	s.ErrorIs(err, ErrSessionNotFound)

	_, err = s.service.Spin(ctx, nil)
	s.ErrorIs(err, ErrSessionNotFound)
}

func (s *CampaignServiceTestSuite) TestGetResultIdle() {
	reg := s.register("Jane", "501112222")

	result, err := s.service.GetResult(context.Background(), &GetResultInput{SessionID: reg.SessionID})
	s.Require().NoError(err)
	s.Equal(SpinStatusIdle, result.Status)
	s.Nil(result.Prize)
	s.Zero(result.Rotation)
}

func (s *CampaignServiceTestSuite) TestGetWheel() {
	out, err := s.service.GetWheel(context.Background())
	s.Require().NoError(err)
	s.Len(out.Prizes, 4)
	s.Len(out.Slices, 10)
	s.Equal(wheel.PolicyFixed, out.Policy)
	s.Equal(wheel.DefaultGeometry(), out.Geometry)

	// callers get copies
	out.Prizes[0].Name = "changed"
	again, err := s.service.GetWheel(context.Background())
	s.Require().NoError(err)
	s.Equal("1000 AED GIFT CARD", again.Prizes[0].Name)
}

func (s *CampaignServiceTestSuite) TestExpireSessions() {
	idle := s.register("Jane", "501112222")
	spinning := s.register("John", "503334444")

	_, err := s.service.Spin(context.Background(), &SpinInput{SessionID: spinning.SessionID})
	s.Require().NoError(err)

	removed := s.service.expireSessions(s.now.Add(DefaultSessionTTL + time.Second))
	s.Equal(1, removed)

	_, err = s.service.GetResult(context.Background(), &GetResultInput{SessionID: idle.SessionID})
	s.ErrorIs(err, ErrSessionNotFound)

	s.mockRepo.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).Return(nil)
	s.mockFeed.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
	s.mockNotifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil)
	s.fire()

	result, err := s.service.GetResult(context.Background(), &GetResultInput{SessionID: spinning.SessionID})
	s.Require().NoError(err)
	s.Equal(SpinStatusWon, result.Status)
}

func (s *CampaignServiceTestSuite) TestNoNotifierConfigured() {
	s.Require().NoError(s.service.Close())

	cfg := *s.cfg
	cfg.Notifier = nil
	s.service = s.newService(&cfg)

	reg := s.register("Jane", "501112222")
	s.mockRepo.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).Return(nil)
	s.mockFeed.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	_, err := s.service.Spin(context.Background(), &SpinInput{SessionID: reg.SessionID})
	s.Require().NoError(err)
	s.fire()
}

func TestCampaignServiceSuite(t *testing.T) {
	suite.Run(t, new(CampaignServiceTestSuite))
}

func TestNewValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	base := func() *Config {
		return &Config{
			Repository:   mockentry.NewMockRepository(ctrl),
			Feed:         mockfeed.NewMockFeed(ctrl),
			Clock:        mockclock.NewMockClock(ctrl),
			UUID:         mockuuid.NewMockUUID(ctrl),
			Random:       random.New(&random.Config{Seed: 1}),
			Table:        wheel.DefaultTable(),
			Geometry:     wheel.DefaultGeometry(),
			Policy:       wheel.UniformSlice{},
			MinTurns:     1,
			MaxTurns:     2,
			SpinDuration: time.Second,
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"nil repository", func(c *Config) { c.Repository = nil }, ErrNilRepository},
		{"nil feed", func(c *Config) { c.Feed = nil }, ErrNilFeed},
		{"nil clock", func(c *Config) { c.Clock = nil }, ErrNilClock},
		{"nil uuid", func(c *Config) { c.UUID = nil }, ErrNilUUIDGenerator},
		{"nil random", func(c *Config) { c.Random = nil }, ErrNilRandom},
		{"nil table", func(c *Config) { c.Table = nil }, ErrNilTable},
		{"bad turns", func(c *Config) { c.MaxTurns = 0 }, wheel.ErrInvalidTurns},
		{"nil policy", func(c *Config) { c.Policy = nil }, wheel.ErrNilPolicy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			_, err := New(cfg)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNilConfig)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "JANE DOE", NormalizeName("  jane doe "))
	assert.Equal(t, "+971", NormalizeCountryCode(""))
	assert.Equal(t, "+971", NormalizeCountryCode("abc"))
	assert.Equal(t, "+44", NormalizeCountryCode(" +44 "))
	assert.Equal(t, "+123", NormalizeCountryCode("+12345"))
	assert.Equal(t, "501234567", NormalizeMobile("50-123 4567"))
	assert.Equal(t, "0123456789", NormalizeMobile("012345678912"))
	assert.Equal(t, "", NormalizeMobile("٣٤٥"))
}
