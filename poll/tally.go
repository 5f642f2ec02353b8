// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import "github.com/danielhkuo/class-pulse/models"

// Recompute builds per-option tallies from the full set of accepted choices.
// It never reads previous tallies, so calling it twice on the same input
// yields identical output.
func Recompute(options []string, choices []int, roles map[int]string) []models.Tally {
	counts := make([]int, len(options))
	for _, c := range choices {
		if c >= 0 && c < len(counts) {
			counts[c]++
		}
	}

	total := 0
	for _, c := range counts {
		total += c
	}

	tallies := make([]models.Tally, len(options))
	for i, opt := range options {
		tallies[i] = models.Tally{
			Option:     opt,
			Count:      counts[i],
			Percentage: RoundPercent(counts[i], total),
			Role:       roles[i],
		}
	}
	return tallies
}

// RoundPercent returns round(100*part/whole) with halves rounded up, or 0
// when whole is not positive. Independent rounding means a set of
// percentages may sum to 99 or 101.
func RoundPercent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return (200*part + whole) / (2 * whole)
}
