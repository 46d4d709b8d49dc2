package friends

import (
	"context"
	"sort"

	"github.com/okian/gamegraph/internal/adapters/fanout"
	"github.com/okian/gamegraph/internal/domain/catalog"
	"github.com/okian/gamegraph/internal/domain/model"
	"github.com/okian/gamegraph/pkg/logger"
)

const (
	// OverlapLimit caps the overlap list.
	OverlapLimit = 3
	// SampleLimit caps shared sample titles per friend.
	SampleLimit = 3

	// UnknownName is shown for accounts without a resolvable display name.
	UnknownName = "Unknown"

	overlapComponent = "friends_overlap"
)

// OverlapCalculator measures how much of the primary library each friend shares.
type OverlapCalculator struct {
	catalog catalog.Catalog
	runner  fanout.Runner
	logger  logger.Logger
}

// NewOverlapCalculator creates a calculator reading from c.
func NewOverlapCalculator(c catalog.Catalog, opts ...Option) *OverlapCalculator {
	cfg := newOptions(opts)
	return &OverlapCalculator{
		catalog: c,
		runner:  cfg.runner,
		logger:  cfg.logger,
	}
}

// Overlaps returns the friends sharing the most titles with primary. A friend
// whose library cannot be read is reported with zero shared titles. A hidden
// or unavailable friend list yields an empty slice.
func (c *OverlapCalculator) Overlaps(ctx context.Context, id model.AccountID, primary []model.OwnedTitle) []model.FriendOverlap {
	friendIDs, err := c.catalog.FriendIDs(ctx, id)
	if err != nil {
		if !hiddenList(err) {
			c.logger.Warn(ctx, "friend list unavailable",
				logger.String("account_id", string(id)),
				logger.Error(err),
			)
		}
		return []model.FriendOverlap{}
	}
	if len(friendIDs) == 0 {
		return []model.FriendOverlap{}
	}

	names, err := c.catalog.DisplayNames(ctx, friendIDs)
	if err != nil {
		c.logger.Warn(ctx, "display names unavailable",
			logger.String("account_id", string(id)),
			logger.Error(err),
		)
		names = nil
	}

	byPlaytime := append([]model.OwnedTitle(nil), primary...)
	sort.SliceStable(byPlaytime, func(i, j int) bool {
		return byPlaytime[i].PlaytimeMinutes > byPlaytime[j].PlaytimeMinutes
	})
	byPlaytime = distinctTitles(byPlaytime)

	results := fanout.Map(ctx, c.runner, overlapComponent, friendIDs,
		func(ctx context.Context, friend model.AccountID) (model.FriendOverlap, error) {
			entry := model.FriendOverlap{
				FriendID:     friend,
				FriendName:   catalog.NameOr(names, friend, UnknownName),
				SampleTitles: []string{},
			}
			titles, err := c.catalog.OwnedTitles(ctx, friend)
			if err != nil {
				return entry, err
			}
			owned := make(map[int64]struct{}, len(titles))
			for _, t := range titles {
				owned[t.TitleID] = struct{}{}
			}
			for _, t := range byPlaytime {
				if _, ok := owned[t.TitleID]; !ok {
					continue
				}
				entry.SharedCount++
				if len(entry.SampleTitles) < SampleLimit {
					entry.SampleTitles = append(entry.SampleTitles, t.Name)
				}
			}
			return entry, nil
		})

	out := make([]model.FriendOverlap, len(results))
	for i, r := range results {
		out[i] = r.Value
		if r.Err != nil {
			c.logger.Debug(ctx, "friend library unavailable, overlap counted as zero",
				logger.String("friend_id", string(friendIDs[i])),
				logger.String("reason", catalog.Reason(r.Err)),
			)
			out[i] = model.FriendOverlap{
				FriendID:     friendIDs[i],
				FriendName:   catalog.NameOr(names, friendIDs[i], UnknownName),
				SampleTitles: []string{},
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SharedCount > out[j].SharedCount
	})
	if len(out) > OverlapLimit {
		out = out[:OverlapLimit]
	}
	return out
}
