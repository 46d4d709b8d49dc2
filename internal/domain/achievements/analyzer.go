// Package achievements computes an account's achievement progress across its
// played library.
package achievements

import (
	"context"
	"errors"
	"sort"

	"github.com/okian/gamegraph/internal/adapters/fanout"
	"github.com/okian/gamegraph/internal/domain/catalog"
	"github.com/okian/gamegraph/internal/domain/library"
	"github.com/okian/gamegraph/internal/domain/model"
	"github.com/okian/gamegraph/pkg/logger"
	"github.com/okian/gamegraph/pkg/metrics"
)

const (
	component = "achievements"

	// TopByProgressLimit caps AchievementStats.TopByProgress.
	TopByProgressLimit = 5
	// RecentUnlocksLimit caps AchievementStats.RecentUnlocks.
	RecentUnlocksLimit = 3
)

// Analyzer turns per-title achievement records into AchievementStats.
type Analyzer struct {
	catalog catalog.Catalog
	runner  fanout.Runner
	logger  logger.Logger
}

// New creates an analyzer reading from c.
func New(c catalog.Catalog, opts ...Option) *Analyzer {
	a := &Analyzer{
		catalog: c,
		runner:  fanout.New(),
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze computes achievement statistics for the played titles in titles.
//
// Achievement visibility is profile-wide, so the first played title is
// probed alone: a forbidden probe yields HiddenAchievementStats and no other
// lookups. Any other probe failure is logged and ignored; the title is then
// fetched again with the rest.
func (a *Analyzer) Analyze(ctx context.Context, id model.AccountID, titles []model.OwnedTitle) model.AchievementStats {
	played := library.Played(titles)
	if len(played) == 0 {
		return aggregate(nil)
	}

	results := make([]model.TitleAchievements, len(played))

	first := played[0]
	records, err := a.catalog.Achievements(ctx, id, first.TitleID)
	offset := 1
	switch {
	case errors.Is(err, catalog.ErrForbidden):
		metrics.RecordHidden(component)
		a.logger.Debug(ctx, "achievements hidden",
			logger.String("account_id", string(id)),
		)
		return model.HiddenAchievementStats()
	case err != nil:
		metrics.RecordProbeFailOpen()
		a.logger.Warn(ctx, "visibility probe failed, continuing",
			logger.String("account_id", string(id)),
			logger.Int64("title_id", first.TitleID),
			logger.Error(err),
		)
		offset = 0
	default:
		results[0] = summarizeTitle(first, records)
	}

	rest := played[offset:]
	errs := a.runner.Run(ctx, component, len(rest), func(ctx context.Context, i int) error {
		t := rest[i]
		recs, err := a.catalog.Achievements(ctx, id, t.TitleID)
		if err != nil {
			results[offset+i] = summarizeTitle(t, nil)
			return err
		}
		results[offset+i] = summarizeTitle(t, recs)
		return nil
	})
	for i, err := range errs {
		if err != nil {
			a.logger.Debug(ctx, "achievement lookup failed, counting as none",
				logger.String("account_id", string(id)),
				logger.Int64("title_id", rest[i].TitleID),
				logger.String("reason", catalog.Reason(err)),
			)
		}
	}

	return aggregate(results)
}

func summarizeTitle(t model.OwnedTitle, records []model.Achievement) model.TitleAchievements {
	ta := model.TitleAchievements{
		TitleID:      t.TitleID,
		TitleName:    t.Name,
		Total:        len(records),
		Achievements: records,
	}
	for _, r := range records {
		if r.Achieved {
			ta.Completed++
		}
	}
	ta.Perfect = ta.Total > 0 && ta.Completed == ta.Total
	return ta
}

// aggregate folds per-title summaries, in fan-out order, into the final
// statistics. Titles without achievements contribute nothing.
func aggregate(results []model.TitleAchievements) model.AchievementStats {
	stats := model.AchievementStats{
		TopByProgress: []model.TitleAchievements{},
		RecentUnlocks: []model.RecentUnlock{},
	}

	var percentSum float64
	included := make([]model.TitleAchievements, 0, len(results))
	for _, r := range results {
		if r.Total == 0 {
			continue
		}
		included = append(included, r)
		stats.Total += r.Total
		stats.Completed += r.Completed
		if r.Perfect {
			stats.PerfectTitles++
		}
		percentSum += r.CompletionPercentage()
	}
	if stats.Total > 0 {
		stats.CompletionPercentage = float64(stats.Completed) / float64(stats.Total) * 100
	}
	if len(included) > 0 {
		stats.AverageCompletion = percentSum / float64(len(included))
	}

	stats.TopByProgress = topByProgress(included, TopByProgressLimit)
	stats.RecentUnlocks = recentUnlocks(included, RecentUnlocksLimit)
	return stats
}

func topByProgress(included []model.TitleAchievements, n int) []model.TitleAchievements {
	out := append([]model.TitleAchievements(nil), included...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletionPercentage() > out[j].CompletionPercentage()
	})
	if len(out) > n {
		out = out[:n]
	}
	if out == nil {
		out = []model.TitleAchievements{}
	}
	return out
}

func recentUnlocks(included []model.TitleAchievements, n int) []model.RecentUnlock {
	out := []model.RecentUnlock{}
	for _, t := range included {
		for _, r := range t.Achievements {
			if !r.Achieved {
				continue
			}
			out = append(out, model.RecentUnlock{
				TitleName:       t.TitleName,
				AchievementName: r.Name,
				Description:     r.Description,
				UnlockedAt:      r.UnlockedAt,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].UnlockedAt, out[j].UnlockedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
