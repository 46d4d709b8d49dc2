// Package library computes single-account library statistics.
package library

import (
	"sort"

	"github.com/okian/gamegraph/internal/domain/model"
)

const minutesPerHour = 60

// Summarize turns one library into aggregate counts. An empty library yields
// the zero value.
func Summarize(titles []model.OwnedTitle) model.AccountStats {
	var stats model.AccountStats
	stats.TotalTitles = len(titles)
	for _, t := range titles {
		stats.TotalPlaytimeMinutes += t.PlaytimeMinutes
		if t.Played() {
			stats.PlayedTitles++
		}
	}
	stats.NeverPlayedTitles = stats.TotalTitles - stats.PlayedTitles
	stats.TotalPlaytimeHours = float64(stats.TotalPlaytimeMinutes) / minutesPerHour
	if stats.PlayedTitles > 0 {
		stats.AveragePlaytimeHours = stats.TotalPlaytimeHours / float64(stats.PlayedTitles)
	}
	if stats.TotalTitles > 0 {
		stats.NeverPlayedPercentage = float64(stats.NeverPlayedTitles) * 100 / float64(stats.TotalTitles)
	}
	return stats
}

// TopByPlaytime returns up to n played, named titles, most played first.
// Equal playtimes keep library order.
func TopByPlaytime(titles []model.OwnedTitle, n int) []model.OwnedTitle {
	out := make([]model.OwnedTitle, 0, len(titles))
	for _, t := range titles {
		if t.Played() && t.Name != "" {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PlaytimeMinutes > out[j].PlaytimeMinutes
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Played filters titles down to those with playtime, preserving order.
func Played(titles []model.OwnedTitle) []model.OwnedTitle {
	out := make([]model.OwnedTitle, 0, len(titles))
	for _, t := range titles {
		if t.Played() {
			out = append(out, t)
		}
	}
	return out
}
