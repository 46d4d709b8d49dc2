// Package service wires the catalog client and the analysis components into
// the operations served by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/okian/gamegraph/internal/adapters/fanout"
	"github.com/okian/gamegraph/internal/domain/achievements"
	"github.com/okian/gamegraph/internal/domain/catalog"
	"github.com/okian/gamegraph/internal/domain/friends"
	"github.com/okian/gamegraph/internal/domain/leaderboard"
	"github.com/okian/gamegraph/internal/domain/library"
	"github.com/okian/gamegraph/internal/domain/model"
	"github.com/okian/gamegraph/internal/domain/types"
	"github.com/okian/gamegraph/pkg/logger"
	"github.com/okian/gamegraph/pkg/metrics"
)

const topTitlesLimit = 5

// Service implements the API dependencies for the analytics engine.
type Service struct {
	mu sync.RWMutex

	client catalog.Client

	// Components, built on Start
	pool      *fanout.Pool
	analyzer  *achievements.Analyzer
	popular   *friends.Aggregator
	overlaps  *friends.OverlapCalculator
	standings *leaderboard.Builder

	// Configuration
	fanoutLimit     int
	minAverageHours float64
	now             func() time.Time

	// State
	started   bool
	startedAt time.Time

	// Counters
	requests atomic.Int64
	failures atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithFanoutLimit bounds concurrent upstream calls per fan-out.
func WithFanoutLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.fanoutLimit = limit
		}
	}
}

// WithMinAverageHours sets the popular-title threshold.
func WithMinAverageHours(hours float64) Option {
	return func(s *Service) {
		if hours >= 0 {
			s.minAverageHours = hours
		}
	}
}

// WithClock overrides the time source used to render unlock ages.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service reading from client.
func New(client catalog.Client, opts ...Option) *Service {
	s := &Service{
		client:          client,
		fanoutLimit:     16,
		minAverageHours: friends.DefaultMinAverageHours,
		now:             time.Now,
		logger:          nil, // replaced on Start
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start builds the analysis components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.client == nil {
		return ErrNoCatalog
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting analytics service...")

	s.pool = fanout.New(
		fanout.WithLimit(s.fanoutLimit),
		fanout.WithClassifier(outcomeOf),
		fanout.WithLogger(s.logger.Named("fanout")),
	)
	s.analyzer = achievements.New(s.client,
		achievements.WithRunner(s.pool),
		achievements.WithLogger(s.logger.Named("achievements")),
	)
	s.popular = friends.NewAggregator(s.client,
		friends.WithRunner(s.pool),
		friends.WithLogger(s.logger.Named("friends")),
		friends.WithMinAverageHours(s.minAverageHours),
	)
	s.overlaps = friends.NewOverlapCalculator(s.client,
		friends.WithRunner(s.pool),
		friends.WithLogger(s.logger.Named("overlap")),
	)
	s.standings = leaderboard.New(s.client, s.analyzer,
		leaderboard.WithRunner(s.pool),
		leaderboard.WithLogger(s.logger.Named("leaderboard")),
	)

	s.started = true
	s.startedAt = s.now()
	s.logger.Info(ctx, "analytics service started",
		logger.Int("fanoutLimit", s.fanoutLimit),
		logger.Float64("minAverageHours", s.minAverageHours),
	)

	return nil
}

// Stop marks the service as stopped. In-flight requests finish normally.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.started = false
	s.logger.Info(context.Background(), "analytics service stopped")
}

// running reports ErrNotStarted until Start has built the components.
func (s *Service) running() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// Resolve turns user input into a canonical account id.
func (s *Service) Resolve(ctx context.Context, input string) (types.Resolved, error) {
	if err := s.running(); err != nil {
		return types.Resolved{}, err
	}
	s.requests.Add(1)

	id, err := s.resolve(ctx, input)
	if err != nil {
		return types.Resolved{}, err
	}
	return types.Resolved{Input: input, AccountID: string(id)}, nil
}

// Lookup resolves input as the first step of an account request, so it is
// not counted as a request of its own. A failed lookup is counted, since the
// operation it precedes never runs.
func (s *Service) Lookup(ctx context.Context, input string) (model.AccountID, error) {
	if err := s.running(); err != nil {
		return "", err
	}
	id, err := s.resolve(ctx, input)
	if err != nil {
		s.requests.Add(1)
		return "", err
	}
	return id, nil
}

func (s *Service) resolve(ctx context.Context, input string) (model.AccountID, error) {
	id, err := s.client.ResolveAccount(ctx, input)
	if err != nil {
		s.failures.Add(1)
		return "", fmt.Errorf("resolve account: %w", err)
	}
	return id, nil
}

// primaryTitles fetches the library every computation rooted at id needs.
// Its failure is the only fatal one for a request.
func (s *Service) primaryTitles(ctx context.Context, id model.AccountID) ([]model.OwnedTitle, error) {
	titles, err := s.client.OwnedTitles(ctx, id)
	if err != nil {
		s.failures.Add(1)
		if catalog.IsPrivateProfile(err) {
			return nil, err
		}
		return nil, fmt.Errorf("owned titles for %s: %w", id, err)
	}
	return titles, nil
}

// Overview returns library totals and the most played titles.
func (s *Service) Overview(ctx context.Context, id model.AccountID) (types.Overview, error) {
	if err := s.running(); err != nil {
		return types.Overview{}, err
	}
	s.requests.Add(1)
	start := time.Now()
	defer func() { metrics.RecordComponentDuration("overview", float64(time.Since(start).Milliseconds())) }()

	titles, err := s.primaryTitles(ctx, id)
	if err != nil {
		return types.Overview{}, err
	}
	return types.FromOverview(model.AccountOverview{
		AccountID: id,
		Stats:     library.Summarize(titles),
		TopTitles: library.TopByPlaytime(titles, topTitlesLimit),
	}), nil
}

// Achievements returns the account's achievement summary.
func (s *Service) Achievements(ctx context.Context, id model.AccountID) (types.Achievements, error) {
	if err := s.running(); err != nil {
		return types.Achievements{}, err
	}
	s.requests.Add(1)

	titles, err := s.primaryTitles(ctx, id)
	if err != nil {
		return types.Achievements{}, err
	}
	return types.FromAchievements(s.analyzer.Analyze(ctx, id, titles), s.now()), nil
}

// FriendsView runs every friend-network component for id concurrently.
func (s *Service) FriendsView(ctx context.Context, id model.AccountID) (types.FriendsView, error) {
	view, err := s.friendsView(ctx, id)
	if err != nil {
		return types.FriendsView{}, err
	}
	return types.FromFriendsView(view, s.now()), nil
}

func (s *Service) friendsView(ctx context.Context, id model.AccountID) (model.FriendsView, error) {
	if err := s.running(); err != nil {
		return model.FriendsView{}, err
	}
	s.requests.Add(1)
	// Callers outside the HTTP layer get an id so fan-out logs correlate.
	if logger.RequestID(ctx) == "" {
		ctx = logger.WithRequestID(ctx, uuid.NewString())
	}
	start := time.Now()
	defer func() { metrics.RecordComponentDuration("friends_view", float64(time.Since(start).Milliseconds())) }()

	titles, err := s.primaryTitles(ctx, id)
	if err != nil {
		return model.FriendsView{}, err
	}

	view := model.FriendsView{AccountID: id}
	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		view.Popular = s.popular.Popular(ctx, id)
	}()
	go func() {
		defer wg.Done()
		view.Overlaps = s.overlaps.Overlaps(ctx, id, titles)
	}()
	go func() {
		defer wg.Done()
		view.Leaderboard = s.standings.Build(ctx, id)
	}()
	go func() {
		defer wg.Done()
		view.Achievements = s.analyzer.Analyze(ctx, id, titles)
	}()
	wg.Wait()

	s.logger.Debug(ctx, "friends view computed",
		logger.String("account_id", string(id)),
		logger.Bool("friends_hidden", view.Popular.Hidden),
		logger.Int("leaderboard", len(view.Leaderboard)),
		logger.Duration("took", time.Since(start)),
	)
	return view, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":         s.started,
		"fanoutLimit":     s.fanoutLimit,
		"minAverageHours": s.minAverageHours,
		"requests":        s.requests.Load(),
		"failures":        s.failures.Load(),
	}
	if s.started {
		stats["uptimeSeconds"] = int64(s.now().Sub(s.startedAt).Seconds())
	}
	return stats
}

func outcomeOf(err error) string {
	switch catalog.Reason(err) {
	case "ok":
		return metrics.OutcomeOK
	case "forbidden":
		return metrics.OutcomeForbidden
	case "unauthorized":
		return metrics.OutcomeHidden
	case "not_found":
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomeError
	}
}
