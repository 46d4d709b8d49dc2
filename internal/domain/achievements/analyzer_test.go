package achievements_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/okian/gamegraph/internal/adapters/fanout"
	"github.com/okian/gamegraph/internal/domain/achievements"
	"github.com/okian/gamegraph/internal/domain/catalog"
	"github.com/okian/gamegraph/internal/domain/catalog/catalogtest"
	"github.com/okian/gamegraph/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const player model.AccountID = "76561197960287930"

func at(sec int64) *time.Time {
	t := time.Unix(sec, 0).UTC()
	return &t
}

func records(achieved, total int, unlockBase int64) []model.Achievement {
	out := make([]model.Achievement, total)
	for i := range out {
		out[i] = model.Achievement{APIName: fmt.Sprintf("ACH_%d", i), Name: fmt.Sprintf("Ach %d", i)}
		if i < achieved {
			out[i].Achieved = true
			out[i].UnlockedAt = at(unlockBase + int64(i))
		}
	}
	return out
}

func TestAnalyze(t *testing.T) {
	ctx := context.Background()
	titles := []model.OwnedTitle{
		{TitleID: 10, Name: "Portal", PlaytimeMinutes: 100},
		{TitleID: 20, Name: "Unplayed", PlaytimeMinutes: 0},
		{TitleID: 30, Name: "Half-Life", PlaytimeMinutes: 50},
		{TitleID: 40, Name: "No Schema", PlaytimeMinutes: 5},
		{TitleID: 50, Name: "Dota 2", PlaytimeMinutes: 900},
	}

	Convey("Given a visible profile with mixed progress", t, func() {
		fake := catalogtest.New().
			SetAchievements(player, 10, records(4, 4, 1000)...).
			SetAchievements(player, 30, records(1, 4, 2000)...).
			SetAchievements(player, 50, records(2, 4, 3000)...)
		analyzer := achievements.New(fake, achievements.WithRunner(fanout.New(fanout.WithLimit(2))))

		Convey("When analyzed", func() {
			stats := analyzer.Analyze(ctx, player, titles)

			Convey("Then totals cover only titles with achievements", func() {
				So(stats.Hidden, ShouldBeFalse)
				So(stats.Total, ShouldEqual, 12)
				So(stats.Completed, ShouldEqual, 7)
				So(stats.CompletionPercentage, ShouldAlmostEqual, 7.0/12.0*100, 1e-9)
				So(stats.PerfectTitles, ShouldEqual, 1)
				So(stats.AverageCompletion, ShouldAlmostEqual, (100.0+25.0+50.0)/3, 1e-9)
			})

			Convey("And unplayed titles are never looked up", func() {
				So(fake.Calls("Achievements"), ShouldEqual, 4)
			})

			Convey("And titles are ranked by their own percentage", func() {
				So(len(stats.TopByProgress), ShouldEqual, 3)
				So(stats.TopByProgress[0].TitleID, ShouldEqual, 10)
				So(stats.TopByProgress[1].TitleID, ShouldEqual, 50)
				So(stats.TopByProgress[2].TitleID, ShouldEqual, 30)
			})

			Convey("And recent unlocks are newest first and capped at three", func() {
				So(len(stats.RecentUnlocks), ShouldEqual, 3)
				So(stats.RecentUnlocks[0].TitleName, ShouldEqual, "Dota 2")
				So(*stats.RecentUnlocks[0].UnlockedAt, ShouldEqual, *at(3001))
				So(*stats.RecentUnlocks[1].UnlockedAt, ShouldEqual, *at(3000))
				So(stats.RecentUnlocks[2].TitleName, ShouldEqual, "Half-Life")
			})

			Convey("And completed never exceeds total per title", func() {
				for _, ta := range stats.TopByProgress {
					So(ta.Completed, ShouldBeLessThanOrEqualTo, ta.Total)
					if ta.Perfect {
						So(ta.Completed, ShouldEqual, ta.Total)
						So(ta.Total, ShouldBeGreaterThan, 0)
					}
				}
			})

			Convey("And a second run yields identical output", func() {
				again := analyzer.Analyze(ctx, player, titles)
				So(again, ShouldResemble, stats)
			})
		})
	})

	Convey("Given a profile with hidden achievements", t, func() {
		fake := catalogtest.New().FailAllAchievements(player, fmt.Errorf("lookup: %w", catalog.ErrForbidden))
		analyzer := achievements.New(fake)

		Convey("When analyzed", func() {
			stats := analyzer.Analyze(ctx, player, titles)

			Convey("Then only the probe is issued and the result is hidden", func() {
				So(fake.Calls("Achievements"), ShouldEqual, 1)
				So(stats, ShouldResemble, model.HiddenAchievementStats())
			})
		})
	})

	Convey("Given a probe that fails transiently", t, func() {
		fake := catalogtest.New().
			FailAchievements(player, 10, errors.New("connection reset")).
			SetAchievements(player, 30, records(2, 2, 100)...)
		analyzer := achievements.New(fake)

		Convey("When analyzed", func() {
			stats := analyzer.Analyze(ctx, player, titles)

			Convey("Then analysis continues and the probed title is fetched again", func() {
				So(stats.Hidden, ShouldBeFalse)
				So(fake.Calls("Achievements"), ShouldEqual, 5)
				So(stats.Total, ShouldEqual, 2)
				So(stats.PerfectTitles, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a library with nothing played", t, func() {
		fake := catalogtest.New()
		stats := achievements.New(fake).Analyze(ctx, player, []model.OwnedTitle{{TitleID: 1, Name: "X"}})

		Convey("Then stats are zero but not hidden", func() {
			So(stats.Hidden, ShouldBeFalse)
			So(stats.Total, ShouldEqual, 0)
			So(stats.TopByProgress, ShouldBeEmpty)
			So(stats.RecentUnlocks, ShouldBeEmpty)
			So(fake.Calls("Achievements"), ShouldEqual, 0)
		})
	})
}

func TestRankingTies(t *testing.T) {
	ctx := context.Background()

	Convey("Given seven titles at equal progress", t, func() {
		fake := catalogtest.New()
		titles := make([]model.OwnedTitle, 7)
		for i := range titles {
			id := int64(i + 1)
			titles[i] = model.OwnedTitle{TitleID: id, Name: fmt.Sprintf("T%d", id), PlaytimeMinutes: 10}
			fake.SetAchievements(player, id, records(1, 2, 0)...)
		}
		stats := achievements.New(fake).Analyze(ctx, player, titles)

		Convey("Then the top five keep library order", func() {
			So(len(stats.TopByProgress), ShouldEqual, achievements.TopByProgressLimit)
			for i, ta := range stats.TopByProgress {
				So(ta.TitleID, ShouldEqual, int64(i+1))
			}
		})
	})

	Convey("Given unlocks with missing and equal timestamps", t, func() {
		fake := catalogtest.New().
			SetAchievements(player, 1,
				model.Achievement{Name: "no-time", Achieved: true},
				model.Achievement{Name: "first-tie", Achieved: true, UnlockedAt: at(50)},
			).
			SetAchievements(player, 2,
				model.Achievement{Name: "second-tie", Achieved: true, UnlockedAt: at(50)},
				model.Achievement{Name: "locked"},
			)
		titles := []model.OwnedTitle{
			{TitleID: 1, Name: "One", PlaytimeMinutes: 1},
			{TitleID: 2, Name: "Two", PlaytimeMinutes: 1},
		}
		stats := achievements.New(fake).Analyze(ctx, player, titles)

		Convey("Then ties keep fan-out order and unknown times sort last", func() {
			So(len(stats.RecentUnlocks), ShouldEqual, 3)
			So(stats.RecentUnlocks[0].AchievementName, ShouldEqual, "first-tie")
			So(stats.RecentUnlocks[1].AchievementName, ShouldEqual, "second-tie")
			So(stats.RecentUnlocks[2].AchievementName, ShouldEqual, "no-time")
			_, known := stats.RecentUnlocks[2].Age(time.Now())
			So(known, ShouldBeFalse)
		})
	})
}
