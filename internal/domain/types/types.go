// Package types contains the JSON shapes returned by the HTTP API.
package types

import (
	"math"
	"strconv"
	"time"

	"github.com/okian/gamegraph/internal/domain/model"
)

// UnknownAge is rendered for unlocks without a timestamp.
const UnknownAge = "unknown"

// Title is one owned title.
type Title struct {
	TitleID         int64   `json:"title_id"`
	Name            string  `json:"name"`
	PlaytimeMinutes int     `json:"playtime_minutes"`
	PlaytimeHours   float64 `json:"playtime_hours"`
	IconURL         string  `json:"icon_url,omitempty"`
}

// AccountStats mirrors model.AccountStats.
type AccountStats struct {
	TotalTitles           int     `json:"total_titles"`
	TotalPlaytimeMinutes  int     `json:"total_playtime_minutes"`
	PlayedTitles          int     `json:"played_titles"`
	NeverPlayedTitles     int     `json:"never_played_titles"`
	TotalPlaytimeHours    float64 `json:"total_playtime_hours"`
	AveragePlaytimeHours  float64 `json:"average_playtime_hours"`
	NeverPlayedPercentage float64 `json:"never_played_percentage"`
}

// Overview is the single-account library view.
type Overview struct {
	AccountID string       `json:"account_id"`
	Stats     AccountStats `json:"stats"`
	TopTitles []Title      `json:"top_titles"`
}

// TitleProgress is one title's achievement progress.
type TitleProgress struct {
	TitleID              int64   `json:"title_id"`
	TitleName            string  `json:"title_name"`
	Total                int     `json:"total"`
	Completed            int     `json:"completed"`
	CompletionPercentage float64 `json:"completion_percentage"`
	Perfect              bool    `json:"perfect"`
}

// Unlock is one recently unlocked achievement.
type Unlock struct {
	TitleName       string     `json:"title_name"`
	AchievementName string     `json:"achievement_name"`
	Description     string     `json:"description,omitempty"`
	UnlockedAt      *time.Time `json:"unlocked_at"`
	Age             string     `json:"age"`
}

// Achievements is an account's achievement summary.
type Achievements struct {
	Hidden               bool            `json:"hidden"`
	Total                int             `json:"total"`
	Completed            int             `json:"completed"`
	CompletionPercentage float64         `json:"completion_percentage"`
	PerfectTitles        int             `json:"perfect_titles"`
	AverageCompletion    float64         `json:"average_completion"`
	TopByProgress        []TitleProgress `json:"top_by_progress"`
	RecentUnlocks        []Unlock        `json:"recent_unlocks"`
}

// PopularGame is one title popular among friends.
type PopularGame struct {
	TitleID              int64   `json:"title_id"`
	TitleName            string  `json:"title_name"`
	FriendCount          int     `json:"friend_count"`
	AveragePlaytimeHours float64 `json:"average_playtime_hours"`
	TotalPlaytimeHours   float64 `json:"total_playtime_hours"`
}

// Popular is the friends' popular titles, or hidden when the friend list is private.
type Popular struct {
	Hidden bool          `json:"hidden"`
	Games  []PopularGame `json:"games"`
}

// Overlap is one friend's shared library.
type Overlap struct {
	FriendID     string   `json:"friend_id"`
	FriendName   string   `json:"friend_name"`
	SharedCount  int      `json:"shared_count"`
	SampleTitles []string `json:"sample_titles"`
}

// Entry is one leaderboard row.
type Entry struct {
	Rank        int    `json:"rank"`
	AccountID   string `json:"account_id"`
	DisplayName string `json:"display_name"`
	Completed   int    `json:"completed"`
	IsPrimary   bool   `json:"is_primary"`
}

// FriendsView combines every friend-network result.
type FriendsView struct {
	AccountID    string       `json:"account_id"`
	Popular      Popular      `json:"popular"`
	Overlaps     []Overlap    `json:"overlaps"`
	Leaderboard  []Entry      `json:"leaderboard"`
	Achievements Achievements `json:"achievements"`
}

// Resolved is the result of identifier resolution.
type Resolved struct {
	Input     string `json:"input"`
	AccountID string `json:"account_id"`
}

func hours(minutes int) float64 { return round2(float64(minutes) / 60) }

// round2 keeps API output readable; domain values stay unrounded.
func round2(v float64) float64 { return math.Round(v*100) / 100 }

// FromOverview converts a library overview.
func FromOverview(o model.AccountOverview) Overview {
	out := Overview{
		AccountID: string(o.AccountID),
		Stats: AccountStats{
			TotalTitles:           o.Stats.TotalTitles,
			TotalPlaytimeMinutes:  o.Stats.TotalPlaytimeMinutes,
			PlayedTitles:          o.Stats.PlayedTitles,
			NeverPlayedTitles:     o.Stats.NeverPlayedTitles,
			TotalPlaytimeHours:    round2(o.Stats.TotalPlaytimeHours),
			AveragePlaytimeHours:  round2(o.Stats.AveragePlaytimeHours),
			NeverPlayedPercentage: round2(o.Stats.NeverPlayedPercentage),
		},
		TopTitles: make([]Title, 0, len(o.TopTitles)),
	}
	for _, t := range o.TopTitles {
		out.TopTitles = append(out.TopTitles, Title{
			TitleID:         t.TitleID,
			Name:            t.Name,
			PlaytimeMinutes: t.PlaytimeMinutes,
			PlaytimeHours:   hours(t.PlaytimeMinutes),
			IconURL:         t.IconURL,
		})
	}
	return out
}

// FromAchievements converts achievement stats, rendering unlock ages
// relative to now.
func FromAchievements(s model.AchievementStats, now time.Time) Achievements {
	out := Achievements{
		Hidden:               s.Hidden,
		Total:                s.Total,
		Completed:            s.Completed,
		CompletionPercentage: round2(s.CompletionPercentage),
		PerfectTitles:        s.PerfectTitles,
		AverageCompletion:    round2(s.AverageCompletion),
		TopByProgress:        make([]TitleProgress, 0, len(s.TopByProgress)),
		RecentUnlocks:        make([]Unlock, 0, len(s.RecentUnlocks)),
	}
	for _, t := range s.TopByProgress {
		out.TopByProgress = append(out.TopByProgress, TitleProgress{
			TitleID:              t.TitleID,
			TitleName:            t.TitleName,
			Total:                t.Total,
			Completed:            t.Completed,
			CompletionPercentage: round2(t.CompletionPercentage()),
			Perfect:              t.Perfect,
		})
	}
	for _, u := range s.RecentUnlocks {
		out.RecentUnlocks = append(out.RecentUnlocks, Unlock{
			TitleName:       u.TitleName,
			AchievementName: u.AchievementName,
			Description:     u.Description,
			UnlockedAt:      u.UnlockedAt,
			Age:             FormatAge(u, now),
		})
	}
	return out
}

// FormatAge renders how long ago u happened in the largest whole unit.
func FormatAge(u model.RecentUnlock, now time.Time) string {
	age, ok := u.Age(now)
	if !ok {
		return UnknownAge
	}
	switch {
	case age < time.Hour:
		return "just now"
	case age < 24*time.Hour:
		return plural(int(age/time.Hour), "hour")
	case age < 30*24*time.Hour:
		return plural(int(age/(24*time.Hour)), "day")
	case age < 365*24*time.Hour:
		return plural(int(age/(30*24*time.Hour)), "month")
	default:
		return plural(int(age/(365*24*time.Hour)), "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return strconv.Itoa(n) + " " + unit + "s ago"
}

// FromFriendsView converts the combined friend-network view.
func FromFriendsView(v model.FriendsView, now time.Time) FriendsView {
	out := FriendsView{
		AccountID: string(v.AccountID),
		Popular: Popular{
			Hidden: v.Popular.Hidden,
			Games:  make([]PopularGame, 0, len(v.Popular.Games)),
		},
		Overlaps:     make([]Overlap, 0, len(v.Overlaps)),
		Leaderboard:  make([]Entry, 0, len(v.Leaderboard)),
		Achievements: FromAchievements(v.Achievements, now),
	}
	for _, g := range v.Popular.Games {
		out.Popular.Games = append(out.Popular.Games, PopularGame{
			TitleID:              g.TitleID,
			TitleName:            g.TitleName,
			FriendCount:          g.FriendCount,
			AveragePlaytimeHours: round2(g.AveragePlaytimeHours),
			TotalPlaytimeHours:   round2(g.TotalPlaytimeHours),
		})
	}
	for _, o := range v.Overlaps {
		samples := o.SampleTitles
		if samples == nil {
			samples = []string{}
		}
		out.Overlaps = append(out.Overlaps, Overlap{
			FriendID:     string(o.FriendID),
			FriendName:   o.FriendName,
			SharedCount:  o.SharedCount,
			SampleTitles: samples,
		})
	}
	for i, e := range v.Leaderboard {
		out.Leaderboard = append(out.Leaderboard, Entry{
			Rank:        i + 1,
			AccountID:   string(e.AccountID),
			DisplayName: e.DisplayName,
			Completed:   e.Completed,
			IsPrimary:   e.IsPrimary,
		})
	}
	return out
}
