// Package leaderboard ranks an account and its friends by unlocked achievements.
package leaderboard

import (
	"context"
	"errors"
	"sort"

	"github.com/okian/gamegraph/internal/adapters/fanout"
	"github.com/okian/gamegraph/internal/domain/catalog"
	"github.com/okian/gamegraph/internal/domain/model"
	"github.com/okian/gamegraph/pkg/logger"
)

const (
	// Limit caps the leaderboard.
	Limit = 5

	// PrivateProfileName is shown for private members without a display name.
	PrivateProfileName = "Private Profile"
	// UnknownName is shown for other members without a display name.
	UnknownName = "Unknown"

	component = "leaderboard"
)

// Analyzer computes achievement statistics for one member's library.
type Analyzer interface {
	Analyze(ctx context.Context, id model.AccountID, titles []model.OwnedTitle) model.AchievementStats
}

// Builder assembles the friends-and-primary achievement leaderboard.
type Builder struct {
	catalog  catalog.Catalog
	analyzer Analyzer
	runner   fanout.Runner
	logger   logger.Logger
}

// New creates a builder. analyzer is run once per member.
func New(c catalog.Catalog, analyzer Analyzer, opts ...Option) *Builder {
	b := &Builder{
		catalog:  c,
		analyzer: analyzer,
		runner:   fanout.New(),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build ranks id and its friends by completed achievements. A hidden or
// unavailable friend list yields an empty leaderboard. Members that cannot be
// analyzed appear with zero completed. Private members, whether the library or
// only the achievements are private, fall back to PrivateProfileName.
func (b *Builder) Build(ctx context.Context, id model.AccountID) []model.LeaderboardEntry {
	friendIDs, err := b.catalog.FriendIDs(ctx, id)
	if err != nil {
		if !errors.Is(err, catalog.ErrUnauthorized) && !errors.Is(err, catalog.ErrForbidden) {
			b.logger.Warn(ctx, "friend list unavailable",
				logger.String("account_id", string(id)),
				logger.Error(err),
			)
		}
		return []model.LeaderboardEntry{}
	}

	members := memberSet(id, friendIDs)
	names, err := b.catalog.DisplayNames(ctx, members)
	if err != nil {
		b.logger.Warn(ctx, "display names unavailable",
			logger.String("account_id", string(id)),
			logger.Error(err),
		)
		names = nil
	}

	results := fanout.Map(ctx, b.runner, component, members,
		func(ctx context.Context, member model.AccountID) (model.AchievementStats, error) {
			titles, err := b.catalog.OwnedTitles(ctx, member)
			if err != nil {
				return model.AchievementStats{}, err
			}
			return b.analyzer.Analyze(ctx, member, titles), nil
		})

	entries := make([]model.LeaderboardEntry, len(members))
	for i, member := range members {
		entry := model.LeaderboardEntry{
			AccountID: member,
			IsPrimary: member == id,
		}
		r := results[i]
		switch {
		case r.Err == nil && r.Value.Hidden:
			// Library readable, game details private.
			entry.DisplayName = catalog.NameOr(names, member, PrivateProfileName)
		case r.Err == nil:
			entry.Completed = r.Value.Completed
			entry.DisplayName = catalog.NameOr(names, member, UnknownName)
		case errors.Is(r.Err, catalog.ErrForbidden):
			entry.DisplayName = catalog.NameOr(names, member, PrivateProfileName)
		default:
			b.logger.Debug(ctx, "leaderboard member unavailable",
				logger.String("member_id", string(member)),
				logger.String("reason", catalog.Reason(r.Err)),
			)
			entry.DisplayName = catalog.NameOr(names, member, UnknownName)
		}
		entries[i] = entry
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Completed > entries[j].Completed
	})
	if len(entries) > Limit {
		entries = entries[:Limit]
	}
	return entries
}

// memberSet puts the primary account first, followed by friends in list
// order without duplicates. Stable sorting then ranks the primary account
// ahead of friends on equal totals.
func memberSet(id model.AccountID, friendIDs []model.AccountID) []model.AccountID {
	seen := map[model.AccountID]struct{}{id: {}}
	members := make([]model.AccountID, 0, len(friendIDs)+1)
	members = append(members, id)
	for _, f := range friendIDs {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		members = append(members, f)
	}
	return members
}
