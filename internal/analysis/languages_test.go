package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repolens/repolens/internal/domain"
)

func TestNormalizeLanguages(t *testing.T) {
	stats := NormalizeLanguages(map[string]int64{
		"Python":   800,
		"Markdown": 200,
	})

	require.Len(t, stats, 2)
	assert.Equal(t, domain.LanguageStat{Name: "Python", Bytes: 800, Percent: 80.0}, stats[0])
	assert.Equal(t, domain.LanguageStat{Name: "Markdown", Bytes: 200, Percent: 20.0}, stats[1])
}

func TestNormalizeLanguagesEmptyAndZeroTotal(t *testing.T) {
	assert.Empty(t, NormalizeLanguages(nil))
	assert.Empty(t, NormalizeLanguages(map[string]int64{}))
	assert.Empty(t, NormalizeLanguages(map[string]int64{"Go": 0, "C": 0}))
}

func TestNormalizeLanguagesSortedDescendingWithTieBreak(t *testing.T) {
	stats := NormalizeLanguages(map[string]int64{
		"Ruby": 100,
		"Go":   300,
		"C":    100,
	})

	require.Len(t, stats, 3)
	assert.Equal(t, "Go", stats[0].Name)
	// Equal byte counts break ties by name ascending.
	assert.Equal(t, "C", stats[1].Name)
	assert.Equal(t, "Ruby", stats[2].Name)

	for _, s := range stats {
		assert.GreaterOrEqual(t, s.Percent, 0.0)
		assert.LessOrEqual(t, s.Percent, 100.0)
	}
}

func TestNormalizeLanguagesRoundsHalfUp(t *testing.T) {
	// 3/16 = 18.75% and 13/16 = 81.25% are exact in binary, so the half
	// digit is really a half digit: both round up, away from zero.
	stats := NormalizeLanguages(map[string]int64{
		"Go": 13,
		"C":  3,
	})

	require.Len(t, stats, 2)
	assert.Equal(t, 81.3, stats[0].Percent)
	assert.Equal(t, 18.8, stats[1].Percent)
}

func TestNormalizeLanguagesPercentagesNeedNotSumTo100(t *testing.T) {
	// Three equal thirds each round to 33.3; the sum 99.9 is accepted.
	stats := NormalizeLanguages(map[string]int64{
		"A": 1,
		"B": 1,
		"C": 1,
	})

	require.Len(t, stats, 3)
	var sum float64
	for _, s := range stats {
		assert.Equal(t, 33.3, s.Percent)
		sum += s.Percent
	}
	assert.NotEqual(t, 100.0, sum)
}
