package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/repolens/repolens/internal/analysis"
	"github.com/repolens/repolens/internal/domain"
	"github.com/repolens/repolens/internal/port"
)

// AnalysisService runs the analysis aggregation pipeline. Each call is
// stateless and independent; the service holds no mutable state between
// requests.
type AnalysisService struct {
	source      port.RepositoryDataSource
	synthesizer *analysis.Synthesizer
}

// NewAnalysisService creates the service. A nil enhancer disables AI
// enrichment; analyses then carry the baseline description alone.
func NewAnalysisService(source port.RepositoryDataSource, enhancer port.Enhancer, enhanceTimeout time.Duration) *AnalysisService {
	return &AnalysisService{
		source:      source,
		synthesizer: analysis.NewSynthesizer(nil, enhancer, enhanceTimeout),
	}
}

// Analyze produces the complete report for one repository.
//
// The metadata fetch is mandatory: it fails the whole call with
// port.ErrRepoNotFound or port.ErrRepoUnreachable. The remaining facets
// (file listing, languages, contributors, README) are fetched concurrently
// and each degrades to its empty representative on failure, so the result
// is always structurally complete.
func (s *AnalysisService) Analyze(ctx context.Context, ref domain.RepositoryRef) (*domain.AnalysisResult, error) {
	meta, err := s.source.GetMetadata(ctx, ref)
	if err != nil {
		if !errors.Is(err, port.ErrRepoNotFound) && !errors.Is(err, port.ErrRepoUnreachable) {
			err = fmt.Errorf("%w: %v", port.ErrRepoUnreachable, err)
		}
		return nil, fmt.Errorf("fetch metadata for %s: %w", ref, err)
	}

	var (
		entries  []domain.FileEntry
		rawLangs map[string]int64
		rawContr []port.Contributor
		readme   string
	)

	// Join point: every optional facet lands in its own slot before the
	// aggregation step reads any of them.
	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		v, ferr := s.source.ListFiles(ctx, ref)
		if ferr != nil {
			slog.Warn("file listing degraded", "repo", ref, "error", ferr)
			return
		}
		entries = v
	}()
	go func() {
		defer wg.Done()
		v, ferr := s.source.GetLanguages(ctx, ref)
		if ferr != nil {
			slog.Warn("language stats degraded", "repo", ref, "error", ferr)
			return
		}
		rawLangs = v
	}()
	go func() {
		defer wg.Done()
		v, ferr := s.source.GetContributors(ctx, ref)
		if ferr != nil {
			slog.Warn("contributor list degraded", "repo", ref, "error", ferr)
			return
		}
		rawContr = v
	}()
	go func() {
		defer wg.Done()
		v, ferr := s.source.GetReadme(ctx, ref)
		if ferr != nil {
			slog.Warn("readme degraded", "repo", ref, "error", ferr)
			return
		}
		readme = v
	}()
	wg.Wait()

	tree := analysis.BuildTree(entries)
	langs := analysis.NormalizeLanguages(rawLangs)
	contributors := analysis.RankContributors(rawContr, analysis.DefaultContributorLimit)
	samples := analysis.SampleCode(ctx, tree, func(ctx context.Context, path string) (string, error) {
		return s.source.GetFileContent(ctx, ref, path)
	})
	description := s.synthesizer.Synthesize(ctx, meta, tree, langs, readme, samples)

	slog.Info("analysis complete",
		"repo", ref,
		"files", tree.CountFiles(),
		"languages", len(langs),
		"contributors", len(contributors),
		"samples", len(samples),
		"ai_enhanced", description.AIEnhanced != nil,
	)

	return &domain.AnalysisResult{
		Metadata:     *meta,
		Tree:         tree,
		Languages:    langs,
		Contributors: contributors,
		Samples:      samples,
		Description:  description,
		Readme:       readme,
	}, nil
}
