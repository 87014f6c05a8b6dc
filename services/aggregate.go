package services

import (
	"math"
	"sort"

	"job-insights/models"
)

// Bucketize places each value into the tier that contains it and reports
// one row per tier that received at least one value. Percentages are taken
// against len(values), so values outside every tier lower the total without
// being counted anywhere.
func Bucketize(values []float64, tiers TierTable) []models.TierStat {
	counts := make([]int, len(tiers))
	sums := make([]float64, len(tiers))
	for _, v := range values {
		if i := tiers.Find(v); i >= 0 {
			counts[i]++
			sums[i] += v
		}
	}

	result := make([]models.TierStat, 0, len(tiers))
	for i, tier := range tiers {
		if counts[i] == 0 {
			continue
		}
		result = append(result, models.TierStat{
			Label:      tier.Label,
			Color:      tier.Color,
			Min:        tier.Min,
			Max:        tier.Max,
			Count:      counts[i],
			Percentage: percent(counts[i], len(values)),
			Average:    round2(sums[i] / float64(counts[i])),
		})
	}
	return result
}

// Summarize computes count, min, max, mean and median.
func Summarize(values []float64) models.Summary {
	if len(values) == 0 {
		return models.Summary{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var total float64
	for _, v := range sorted {
		total += v
	}

	n := len(sorted)
	median := sorted[n/2]
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	return models.Summary{
		Count:   n,
		Min:     round2(sorted[0]),
		Max:     round2(sorted[n-1]),
		Average: round2(total / float64(n)),
		Median:  round2(median),
	}
}

// CountByCategory groups items by key, sorts descending by count and keeps
// the first topN (all when topN <= 0). Items whose key function reports
// false are left out of both the counts and the percentage denominator.
// Equal counts keep first-seen order.
func CountByCategory[T any](items []T, key func(T) (string, bool), topN int) (counts []models.CategoryCount, included int) {
	index := make(map[string]int)
	counts = make([]models.CategoryCount, 0)
	for _, item := range items {
		k, ok := key(item)
		if !ok {
			continue
		}
		included++
		if i, seen := index[k]; seen {
			counts[i].Count++
			continue
		}
		index[k] = len(counts)
		counts = append(counts, models.CategoryCount{Key: k, Count: 1})
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	if topN > 0 && len(counts) > topN {
		counts = counts[:topN]
	}
	for i := range counts {
		counts[i].Percentage = percent(counts[i].Count, included)
	}
	return counts, included
}

// percent is left unrounded so a breakdown never sums past 100.
func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
