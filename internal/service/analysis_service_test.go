package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/repolens/repolens/internal/domain"
	"github.com/repolens/repolens/internal/port"
)

type MockSource struct {
	mock.Mock
}

func (m *MockSource) GetMetadata(ctx context.Context, ref domain.RepositoryRef) (*domain.RepositoryMetadata, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RepositoryMetadata), args.Error(1)
}

func (m *MockSource) ListFiles(ctx context.Context, ref domain.RepositoryRef) ([]domain.FileEntry, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FileEntry), args.Error(1)
}

func (m *MockSource) GetLanguages(ctx context.Context, ref domain.RepositoryRef) (map[string]int64, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *MockSource) GetContributors(ctx context.Context, ref domain.RepositoryRef) ([]port.Contributor, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.Contributor), args.Error(1)
}

func (m *MockSource) GetReadme(ctx context.Context, ref domain.RepositoryRef) (string, error) {
	args := m.Called(ctx, ref)
	return args.String(0), args.Error(1)
}

func (m *MockSource) GetFileContent(ctx context.Context, ref domain.RepositoryRef, path string) (string, error) {
	args := m.Called(ctx, ref, path)
	return args.String(0), args.Error(1)
}

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

var demoRef = domain.RepositoryRef{Owner: "demo", Name: "demo"}

func demoMetadata() *domain.RepositoryMetadata {
	return &domain.RepositoryMetadata{
		Name:     "demo",
		FullName: "demo/demo",
		Language: "Python",
	}
}

func TestAnalyzeAggregatesAllFacets(t *testing.T) {
	source := new(MockSource)
	source.On("GetMetadata", mock.Anything, demoRef).Return(demoMetadata(), nil)
	source.On("ListFiles", mock.Anything, demoRef).Return([]domain.FileEntry{
		{Path: "src/main.py", Size: 120},
		{Path: "src/utils.py", Size: 80},
		{Path: "README.md", Size: 40},
	}, nil)
	source.On("GetLanguages", mock.Anything, demoRef).Return(map[string]int64{
		"Python":   800,
		"Markdown": 200,
	}, nil)
	source.On("GetContributors", mock.Anything, demoRef).Return([]port.Contributor{
		{Login: "bob", Contributions: 5},
		{Login: "alice", Contributions: 5},
	}, nil)
	source.On("GetReadme", mock.Anything, demoRef).Return("# Demo", nil)
	source.On("GetFileContent", mock.Anything, demoRef, "src/main.py").Return("print('main')", nil)
	source.On("GetFileContent", mock.Anything, demoRef, "src/utils.py").Return("print('utils')", nil)
	source.On("GetFileContent", mock.Anything, demoRef, "README.md").Return("# Demo", nil)

	svc := NewAnalysisService(source, nil, time.Second)
	result, err := svc.Analyze(context.Background(), demoRef)

	require.NoError(t, err)
	assert.Equal(t, "demo/demo", result.Metadata.FullName)

	// Tree mirrors the listing exactly.
	assert.Equal(t, 3, result.Tree.CountFiles())
	assert.True(t, result.Tree.HasDir("src"))
	assert.True(t, result.Tree.HasFile("README.md"))

	// Percentages are exact for this byte split.
	require.Len(t, result.Languages, 2)
	assert.Equal(t, domain.LanguageStat{Name: "Python", Bytes: 800, Percent: 80.0}, result.Languages[0])
	assert.Equal(t, domain.LanguageStat{Name: "Markdown", Bytes: 200, Percent: 20.0}, result.Languages[1])

	// Equal contribution counts order alphabetically.
	require.Len(t, result.Contributors, 2)
	assert.Equal(t, "alice", result.Contributors[0].Login)
	assert.Equal(t, "bob", result.Contributors[1].Login)

	require.Len(t, result.Samples, 3)
	assert.Equal(t, "src/main.py", result.Samples[0].Path)
	assert.Equal(t, "src/utils.py", result.Samples[1].Path)
	assert.Equal(t, "README.md", result.Samples[2].Path)

	assert.Equal(t, "# Demo", result.Readme)
	assert.NotEmpty(t, result.Description.Summary)
	assert.Nil(t, result.Description.AIEnhanced)

	source.AssertExpectations(t)
}

func TestAnalyzeNotFound(t *testing.T) {
	source := new(MockSource)
	source.On("GetMetadata", mock.Anything, demoRef).Return(nil, port.ErrRepoNotFound)

	svc := NewAnalysisService(source, nil, time.Second)
	result, err := svc.Analyze(context.Background(), demoRef)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, port.ErrRepoNotFound)
}

func TestAnalyzeUnreachable(t *testing.T) {
	source := new(MockSource)
	source.On("GetMetadata", mock.Anything, demoRef).Return(nil, port.ErrRepoUnreachable)

	svc := NewAnalysisService(source, nil, time.Second)
	result, err := svc.Analyze(context.Background(), demoRef)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, port.ErrRepoUnreachable)
}

func TestAnalyzeUnknownMetadataErrorMapsToUnreachable(t *testing.T) {
	source := new(MockSource)
	source.On("GetMetadata", mock.Anything, demoRef).Return(nil, errors.New("tls handshake failed"))

	svc := NewAnalysisService(source, nil, time.Second)
	_, err := svc.Analyze(context.Background(), demoRef)

	assert.ErrorIs(t, err, port.ErrRepoUnreachable)
}

func TestAnalyzeFacetsDegradeIndependently(t *testing.T) {
	boom := errors.New("rate limited")

	source := new(MockSource)
	source.On("GetMetadata", mock.Anything, demoRef).Return(demoMetadata(), nil)
	source.On("ListFiles", mock.Anything, demoRef).Return(nil, boom)
	source.On("GetLanguages", mock.Anything, demoRef).Return(nil, boom)
	source.On("GetContributors", mock.Anything, demoRef).Return(nil, boom)
	source.On("GetReadme", mock.Anything, demoRef).Return("", boom)

	svc := NewAnalysisService(source, nil, time.Second)
	result, err := svc.Analyze(context.Background(), demoRef)

	// Every facet failed, yet the report is structurally complete.
	require.NoError(t, err)
	assert.Equal(t, 0, result.Tree.CountFiles())
	assert.Empty(t, result.Languages)
	assert.Empty(t, result.Contributors)
	assert.Empty(t, result.Samples)
	assert.Empty(t, result.Readme)
	assert.NotEmpty(t, result.Description.Summary)
}

func TestAnalyzeSingleFacetFailureKeepsOthers(t *testing.T) {
	source := new(MockSource)
	source.On("GetMetadata", mock.Anything, demoRef).Return(demoMetadata(), nil)
	source.On("ListFiles", mock.Anything, demoRef).Return([]domain.FileEntry{{Path: "main.py", Size: 10}}, nil)
	source.On("GetLanguages", mock.Anything, demoRef).Return(map[string]int64{"Python": 100}, nil)
	source.On("GetContributors", mock.Anything, demoRef).Return(nil, errors.New("403"))
	source.On("GetReadme", mock.Anything, demoRef).Return("# Demo", nil)
	source.On("GetFileContent", mock.Anything, demoRef, "main.py").Return("print('x')", nil)

	svc := NewAnalysisService(source, nil, time.Second)
	result, err := svc.Analyze(context.Background(), demoRef)

	require.NoError(t, err)
	assert.Empty(t, result.Contributors)
	assert.Equal(t, 1, result.Tree.CountFiles())
	require.Len(t, result.Languages, 1)
	assert.Equal(t, 100.0, result.Languages[0].Percent)
	assert.Equal(t, "# Demo", result.Readme)
}

func TestAnalyzeWithEnhancer(t *testing.T) {
	enriched := &domain.Enrichment{Summary: "Rich summary."}

	source := new(MockSource)
	source.On("GetMetadata", mock.Anything, demoRef).Return(demoMetadata(), nil)
	source.On("ListFiles", mock.Anything, demoRef).Return([]domain.FileEntry{{Path: "main.py", Size: 10}}, nil)
	source.On("GetLanguages", mock.Anything, demoRef).Return(map[string]int64{"Python": 100}, nil)
	source.On("GetContributors", mock.Anything, demoRef).Return([]port.Contributor{}, nil)
	source.On("GetReadme", mock.Anything, demoRef).Return("# Demo", nil)
	source.On("GetFileContent", mock.Anything, demoRef, "main.py").Return("print('x')", nil)

	enhancer := new(MockEnhancer)
	enhancer.On("Enhance", mock.Anything, mock.MatchedBy(func(req port.EnhanceRequest) bool {
		return req.Name == "demo/demo" && len(req.Samples) == 1
	})).Return(enriched, nil)

	svc := NewAnalysisService(source, enhancer, time.Second)
	result, err := svc.Analyze(context.Background(), demoRef)

	require.NoError(t, err)
	require.NotNil(t, result.Description.AIEnhanced)
	assert.Equal(t, "Rich summary.", result.Description.AIEnhanced.Summary)
	enhancer.AssertExpectations(t)
}
