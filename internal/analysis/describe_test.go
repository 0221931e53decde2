package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/repolens/repolens/internal/domain"
	"github.com/repolens/repolens/internal/port"
)

type MockEnhancer struct {
	mock.Mock
}

func (m *MockEnhancer) Enhance(ctx context.Context, req port.EnhanceRequest) (*domain.Enrichment, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Enrichment), args.Error(1)
}

func pyTree() *domain.TreeNode {
	return BuildTree([]domain.FileEntry{
		{Path: "src/main.py", Size: 120},
		{Path: "src/utils.py", Size: 80},
		{Path: "tests/test_main.py", Size: 60},
		{Path: "requirements.txt", Size: 20},
		{Path: "Dockerfile", Size: 30},
		{Path: "README.md", Size: 40},
		{Path: ".github/workflows/ci.yml", Size: 25},
	})
}

func TestSynthesizeBaseline(t *testing.T) {
	meta := &domain.RepositoryMetadata{
		FullName:    "demo/demo",
		Description: "A demo analyzer.",
		Stars:       12,
		Forks:       3,
		License:     "MIT",
	}
	langs := []domain.LanguageStat{
		{Name: "Python", Bytes: 800, Percent: 80.0},
		{Name: "Markdown", Bytes: 200, Percent: 20.0},
	}

	s := NewSynthesizer(nil, nil, 0)
	desc := s.Synthesize(context.Background(), meta, pyTree(), langs, "# Demo", nil)

	assert.Equal(t, "A demo analyzer. This project has 12 stars, 3 forks.", desc.Summary)
	assert.Contains(t, desc.Architecture, "Source code is separated into a dedicated directory")
	assert.Contains(t, desc.Architecture, "includes tests")
	assert.Contains(t, desc.Architecture, "Python project")
	assert.Contains(t, desc.Architecture, "Docker")
	assert.Contains(t, desc.Architecture, "Python: 80.0%")
	assert.Contains(t, desc.Technologies.Languages, "Python")
	assert.Contains(t, desc.Technologies.Tools, "pip")
	assert.Contains(t, desc.Technologies.Tools, "Docker")
	assert.Contains(t, desc.Technologies.Tools, "GitHub Actions")
	assert.Contains(t, desc.CodeQuality, "Includes a test suite")
	assert.Contains(t, desc.CodeQuality, "explicit license")
	assert.Contains(t, desc.CodeQuality, "Continuous integration is configured")
	assert.Equal(t, "No setup instructions found in the README.", desc.SetupInstructions)
	assert.Nil(t, desc.AIEnhanced)
}

func TestSynthesizeSummaryFallsBackToReadme(t *testing.T) {
	meta := &domain.RepositoryMetadata{FullName: "demo/demo"}
	readme := "# Title\n\n![badge](img.svg)\n\nThis tool analyzes repositories and reports on their structure.\n\nMore text."

	s := NewSynthesizer(nil, nil, 0)
	desc := s.Synthesize(context.Background(), meta, BuildTree(nil), nil, readme, nil)

	assert.Equal(t, "This tool analyzes repositories and reports on their structure.", desc.Summary)
}

func TestSynthesizeSummaryDefault(t *testing.T) {
	meta := &domain.RepositoryMetadata{FullName: "demo/demo"}

	s := NewSynthesizer(nil, nil, 0)
	desc := s.Synthesize(context.Background(), meta, BuildTree(nil), nil, "", nil)

	assert.Equal(t, "No description provided.", desc.Summary)
}

func TestSynthesizeFeaturesFromReadmeSection(t *testing.T) {
	readme := "# Demo\n\n## Features\n\n- Fast indexing\n- Pluggable storage\n* Colorful output\n\n## Install\n\n- not a feature"

	s := NewSynthesizer(nil, nil, 0)
	desc := s.Synthesize(context.Background(), &domain.RepositoryMetadata{}, BuildTree(nil), nil, readme, nil)

	assert.Equal(t, []string{"Fast indexing", "Pluggable storage", "Colorful output"}, desc.MainFeatures)
}

func TestSynthesizeFeaturesFallBackToLanguage(t *testing.T) {
	langs := []domain.LanguageStat{{Name: "Go", Bytes: 100, Percent: 100.0}}

	s := NewSynthesizer(nil, nil, 0)
	desc := s.Synthesize(context.Background(), &domain.RepositoryMetadata{}, BuildTree(nil), langs, "", nil)

	require.NotEmpty(t, desc.MainFeatures)
	assert.Equal(t, "Go-based application", desc.MainFeatures[0])
}

func TestSynthesizeSetupInstructionsFromReadme(t *testing.T) {
	readme := "# Demo\n\n## Installation\n\npip install demo\n\n## Usage details\n\ndemo run"

	s := NewSynthesizer(nil, nil, 0)
	desc := s.Synthesize(context.Background(), &domain.RepositoryMetadata{}, BuildTree(nil), nil, readme, nil)

	assert.Equal(t, "pip install demo", desc.SetupInstructions)
}

func TestSynthesizeEnrichmentSuccess(t *testing.T) {
	meta := &domain.RepositoryMetadata{FullName: "demo/demo", Description: "A demo."}
	enriched := &domain.Enrichment{Summary: "An enriched view of the project."}

	enhancer := new(MockEnhancer)
	enhancer.On("Enhance", mock.Anything, mock.MatchedBy(func(req port.EnhanceRequest) bool {
		return req.Name == "demo/demo" && req.Description == "A demo."
	})).Return(enriched, nil)

	s := NewSynthesizer(nil, enhancer, time.Second)
	desc := s.Synthesize(context.Background(), meta, pyTree(), nil, "# Demo", nil)

	require.NotNil(t, desc.AIEnhanced)
	assert.Equal(t, "An enriched view of the project.", desc.AIEnhanced.Summary)
	// Baseline fields remain intact alongside the enrichment.
	assert.Equal(t, "A demo.", desc.Summary)
	enhancer.AssertExpectations(t)
}

func TestSynthesizeEnrichmentFailureKeepsBaseline(t *testing.T) {
	meta := &domain.RepositoryMetadata{FullName: "demo/demo", Description: "A demo."}

	enhancer := new(MockEnhancer)
	enhancer.On("Enhance", mock.Anything, mock.Anything).Return(nil, errors.New("upstream down"))

	s := NewSynthesizer(nil, enhancer, time.Second)
	desc := s.Synthesize(context.Background(), meta, pyTree(), nil, "# Demo", nil)

	assert.Nil(t, desc.AIEnhanced)
	assert.Equal(t, "A demo.", desc.Summary)
	enhancer.AssertExpectations(t)
}

func TestBuildEnhanceRequestCapsInputs(t *testing.T) {
	var entries []domain.FileEntry
	for i := 0; i < fileTreeLimit+50; i++ {
		entries = append(entries, domain.FileEntry{Path: string(rune('a'+i%26)) + "/file" + string(rune('0'+i%10)) + ".go"})
	}
	tree := BuildTree(entries)

	longReadme := make([]byte, readmeExcerptLimit+100)
	for i := range longReadme {
		longReadme[i] = 'r'
	}

	req := buildEnhanceRequest(&domain.RepositoryMetadata{FullName: "x/y"}, tree, []domain.LanguageStat{
		{Name: "Go", Bytes: 10, Percent: 100.0},
	}, string(longReadme), nil)

	assert.Len(t, req.ReadmeExcerpt, readmeExcerptLimit)
	assert.LessOrEqual(t, len(req.FileTree), fileTreeLimit)
	assert.Equal(t, []string{"Go (100.0%)"}, req.Languages)
}

func TestBuildEnhanceRequestExcerptKeepsRunesWhole(t *testing.T) {
	readme := strings.Repeat("é", readmeExcerptLimit+50)

	req := buildEnhanceRequest(&domain.RepositoryMetadata{FullName: "x/y"}, BuildTree(nil), nil, readme, nil)

	assert.True(t, utf8.ValidString(req.ReadmeExcerpt))
	assert.Equal(t, readmeExcerptLimit, utf8.RuneCountInString(req.ReadmeExcerpt))
}
