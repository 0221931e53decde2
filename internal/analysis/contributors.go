package analysis

import (
	"sort"

	"github.com/repolens/repolens/internal/domain"
	"github.com/repolens/repolens/internal/port"
)

// DefaultContributorLimit bounds the contributor ranking.
const DefaultContributorLimit = 10

// RankContributors orders raw contributor records by contribution count
// descending, breaks ties by login ascending for determinism, and truncates
// to limit. Empty input yields an empty slice, not an error.
func RankContributors(raw []port.Contributor, limit int) []domain.ContributorStat {
	if limit <= 0 {
		limit = DefaultContributorLimit
	}

	stats := make([]domain.ContributorStat, 0, len(raw))
	for _, c := range raw {
		stats = append(stats, domain.ContributorStat{
			Login:         c.Login,
			AvatarURL:     c.AvatarURL,
			ProfileURL:    c.HTMLURL,
			Contributions: c.Contributions,
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Contributions != stats[j].Contributions {
			return stats[i].Contributions > stats[j].Contributions
		}
		return stats[i].Login < stats[j].Login
	})

	if len(stats) > limit {
		stats = stats[:limit]
	}
	return stats
}
