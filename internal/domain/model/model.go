// Package model contains domain models passed between layers.
package model

import "time"

// AccountID is the catalog's stable numeric-string handle for one account.
type AccountID string

// OwnedTitle is one entry of an account's library.
type OwnedTitle struct {
	TitleID               int64
	Name                  string
	PlaytimeMinutes       int
	RecentPlaytimeMinutes int // last two weeks
	IconURL               string
}

// Played reports whether the title has any recorded playtime.
func (t OwnedTitle) Played() bool { return t.PlaytimeMinutes > 0 }

// Achievement is one achievement record for an (account, title) pair.
type Achievement struct {
	APIName     string
	Name        string
	Description string
	Achieved    bool
	UnlockedAt  *time.Time // nil when the catalog reports no unlock time
}

// TitleAchievements summarises the achievements of one title for one account.
// Total == 0 means the title has no achievement schema or the lookup failed.
type TitleAchievements struct {
	TitleID      int64
	TitleName    string
	Total        int
	Completed    int
	Perfect      bool
	Achievements []Achievement
}

// CompletionPercentage is Completed/Total*100, or 0 for titles without achievements.
func (t TitleAchievements) CompletionPercentage() float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Completed) / float64(t.Total) * 100
}

// RecentUnlock is an achieved record flattened with its title name.
type RecentUnlock struct {
	TitleName       string
	AchievementName string
	Description     string
	UnlockedAt      *time.Time
}

// Age returns how long ago the achievement was unlocked relative to now.
// ok is false when the unlock time is unknown.
func (r RecentUnlock) Age(now time.Time) (age time.Duration, ok bool) {
	if r.UnlockedAt == nil {
		return 0, false
	}
	age = now.Sub(*r.UnlockedAt)
	if age < 0 {
		age = 0
	}
	return age, true
}

// AchievementStats aggregates an account's achievement progress.
// Hidden is terminal: when set every other field is zero.
type AchievementStats struct {
	Total                int
	Completed            int
	CompletionPercentage float64
	PerfectTitles        int
	AverageCompletion    float64
	Hidden               bool
	TopByProgress        []TitleAchievements
	RecentUnlocks        []RecentUnlock
}

// HiddenAchievementStats is the value reported when the account's game
// details are private.
func HiddenAchievementStats() AchievementStats {
	return AchievementStats{
		Hidden:        true,
		TopByProgress: []TitleAchievements{},
		RecentUnlocks: []RecentUnlock{},
	}
}

// FriendGame is the aggregate of one title across every friend that owns it.
type FriendGame struct {
	TitleID              int64
	TitleName            string
	FriendCount          int
	AveragePlaytimeHours float64
	TotalPlaytimeHours   float64
}

// PopularGames is either the ranked list of titles popular among friends or
// the hidden state of a private friend list. Hidden implies Games is empty.
type PopularGames struct {
	Hidden bool
	Games  []FriendGame
}

// VisiblePopularGames wraps a ranked list.
func VisiblePopularGames(games []FriendGame) PopularGames {
	if games == nil {
		games = []FriendGame{}
	}
	return PopularGames{Games: games}
}

// HiddenPopularGames reports a private friend list.
func HiddenPopularGames() PopularGames {
	return PopularGames{Hidden: true, Games: []FriendGame{}}
}

// FriendOverlap is the library intersection between the primary account and one friend.
type FriendOverlap struct {
	FriendName   string
	FriendID     AccountID
	SharedCount  int
	SampleTitles []string
}

// LeaderboardEntry is one member's achievement total.
type LeaderboardEntry struct {
	DisplayName string
	AccountID   AccountID
	Completed   int
	IsPrimary   bool
}

// AccountStats are single-library totals.
type AccountStats struct {
	TotalTitles           int
	TotalPlaytimeMinutes  int
	PlayedTitles          int
	NeverPlayedTitles     int
	TotalPlaytimeHours    float64
	AveragePlaytimeHours  float64
	NeverPlayedPercentage float64
}

// AccountOverview bundles the single-account library view.
type AccountOverview struct {
	AccountID AccountID
	Stats     AccountStats
	TopTitles []OwnedTitle
}

// FriendsView is the combined result of every friend-network component.
type FriendsView struct {
	AccountID    AccountID
	Popular      PopularGames
	Overlaps     []FriendOverlap
	Leaderboard  []LeaderboardEntry
	Achievements AchievementStats
}
