// Package friends aggregates libraries across an account's friend list.
package friends

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/okian/gamegraph/internal/adapters/fanout"
	"github.com/okian/gamegraph/internal/domain/catalog"
	"github.com/okian/gamegraph/internal/domain/model"
	"github.com/okian/gamegraph/pkg/logger"
	"github.com/okian/gamegraph/pkg/metrics"
)

const (
	// DefaultMinAverageHours is the average playtime a title must exceed to be
	// reported as popular.
	DefaultMinAverageHours = 10.0
	// PopularLimit caps the popular list.
	PopularLimit = 5

	popularComponent = "friends_popular"
)

// hiddenList reports whether a friend-list error means the list is private.
func hiddenList(err error) bool {
	return errors.Is(err, catalog.ErrUnauthorized) || errors.Is(err, catalog.ErrForbidden)
}

// distinctTitles keeps the first entry for each title id, in order.
func distinctTitles(library []model.OwnedTitle) []model.OwnedTitle {
	seen := make(map[int64]struct{}, len(library))
	out := make([]model.OwnedTitle, 0, len(library))
	for _, t := range library {
		if _, dup := seen[t.TitleID]; dup {
			continue
		}
		seen[t.TitleID] = struct{}{}
		out = append(out, t)
	}
	return out
}

type titleAggregate struct {
	name         string
	friendCount  int
	totalMinutes int
}

// titleTally folds libraries concurrently. Each add is an atomic
// insert-or-update per title.
type titleTally struct {
	mu     sync.Mutex
	titles map[int64]*titleAggregate
}

func newTitleTally() *titleTally {
	return &titleTally{titles: make(map[int64]*titleAggregate)}
}

// add folds one friend's library. A title listed twice still counts that
// friend once.
func (t *titleTally) add(library []model.OwnedTitle) {
	library = distinctTitles(library)
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, title := range library {
		agg, ok := t.titles[title.TitleID]
		if !ok {
			t.titles[title.TitleID] = &titleAggregate{
				name:         title.Name,
				friendCount:  1,
				totalMinutes: title.PlaytimeMinutes,
			}
			continue
		}
		agg.friendCount++
		agg.totalMinutes += title.PlaytimeMinutes
	}
}

func (t *titleTally) games() []model.FriendGame {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]model.FriendGame, 0, len(t.titles))
	for id, agg := range t.titles {
		out = append(out, model.FriendGame{
			TitleID:              id,
			TitleName:            agg.name,
			FriendCount:          agg.friendCount,
			TotalPlaytimeHours:   float64(agg.totalMinutes) / 60,
			AveragePlaytimeHours: float64(agg.totalMinutes) / float64(agg.friendCount) / 60,
		})
	}
	return out
}

// Aggregator ranks the titles most owned and played across a friend list.
type Aggregator struct {
	catalog  catalog.Catalog
	runner   fanout.Runner
	logger   logger.Logger
	minHours float64
}

// NewAggregator creates an aggregator reading from c.
func NewAggregator(c catalog.Catalog, opts ...Option) *Aggregator {
	cfg := newOptions(opts)
	return &Aggregator{
		catalog:  c,
		runner:   cfg.runner,
		logger:   cfg.logger,
		minHours: cfg.minHours,
	}
}

// Popular returns the friends' most popular titles, or the hidden state when
// the friend list is private. Friends whose library cannot be fetched are
// left out of the tally.
func (a *Aggregator) Popular(ctx context.Context, id model.AccountID) model.PopularGames {
	friendIDs, err := a.catalog.FriendIDs(ctx, id)
	switch {
	case hiddenList(err):
		metrics.RecordHidden("friend_list")
		return model.HiddenPopularGames()
	case err != nil:
		a.logger.Warn(ctx, "friend list unavailable",
			logger.String("account_id", string(id)),
			logger.Error(err),
		)
		return model.VisiblePopularGames(nil)
	case len(friendIDs) == 0:
		return model.VisiblePopularGames(nil)
	}
	metrics.ObserveFriendListSize(len(friendIDs))

	tally := newTitleTally()
	errs := a.runner.Run(ctx, popularComponent, len(friendIDs), func(ctx context.Context, i int) error {
		titles, err := a.catalog.OwnedTitles(ctx, friendIDs[i])
		if err != nil {
			return err
		}
		tally.add(titles)
		return nil
	})
	for i, err := range errs {
		if err != nil {
			a.logger.Debug(ctx, "friend excluded from popular titles",
				logger.String("friend_id", string(friendIDs[i])),
				logger.String("reason", catalog.Reason(err)),
			)
		}
	}

	return model.VisiblePopularGames(rankPopular(tally.games(), a.minHours, PopularLimit))
}

// rankPopular drops lightly played titles then orders by friend count,
// average hours and title id.
func rankPopular(games []model.FriendGame, minHours float64, n int) []model.FriendGame {
	out := games[:0]
	for _, g := range games {
		if g.AveragePlaytimeHours > minHours {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FriendCount != out[j].FriendCount {
			return out[i].FriendCount > out[j].FriendCount
		}
		if out[i].AveragePlaytimeHours != out[j].AveragePlaytimeHours {
			return out[i].AveragePlaytimeHours > out[j].AveragePlaytimeHours
		}
		return out[i].TitleID < out[j].TitleID
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
