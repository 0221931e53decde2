package analysis

import (
	"math"
	"sort"

	"github.com/repolens/repolens/internal/domain"
)

// NormalizeLanguages converts raw per-language byte counts into sorted,
// percentage-annotated stats. Percentages are rounded half-up (half away
// from zero) to one decimal place, so they need not sum to exactly 100.
//
// A zero or empty total yields an empty slice.
func NormalizeLanguages(raw map[string]int64) []domain.LanguageStat {
	var total int64
	for _, bytes := range raw {
		total += bytes
	}
	if total <= 0 {
		return []domain.LanguageStat{}
	}

	stats := make([]domain.LanguageStat, 0, len(raw))
	for name, bytes := range raw {
		stats = append(stats, domain.LanguageStat{
			Name:    name,
			Bytes:   bytes,
			Percent: roundOneDecimal(float64(bytes) / float64(total) * 100),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Bytes != stats[j].Bytes {
			return stats[i].Bytes > stats[j].Bytes
		}
		return stats[i].Name < stats[j].Name
	})
	return stats
}

func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
