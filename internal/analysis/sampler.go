package analysis

import (
	"context"
	"log/slog"
	"path"
	"strings"

	"github.com/repolens/repolens/internal/domain"
)

// Sampling bounds.
const (
	MaxSamples        = 5
	MaxSampleFileSize = 50 * 1024
	SampleCharBudget  = 2000
	TruncationMarker  = "\n... [truncated]"
)

// FetchFunc retrieves the content of a single file path. A failed fetch
// skips the path; it is never a pipeline error.
type FetchFunc func(ctx context.Context, path string) (string, error)

// sourceExts are preferred over config/markup files when sampling.
var sourceExts = map[string]bool{
	".go": true, ".py": true, ".js": true, ".ts": true, ".tsx": true, ".jsx": true,
	".java": true, ".rs": true, ".rb": true, ".swift": true, ".kt": true, ".c": true,
	".cpp": true, ".h": true, ".cs": true, ".php": true, ".sh": true, ".scala": true,
}

// configExts are sampled only when not enough source files qualify.
var configExts = map[string]bool{
	".md": true, ".html": true, ".css": true, ".json": true, ".yaml": true,
	".yml": true, ".toml": true, ".sql": true, ".proto": true, ".tf": true,
	".txt": true, ".mod": true,
}

// skipDirs holds vendor/build directories excluded from sampling.
var skipDirs = map[string]bool{
	"node_modules": true, "vendor": true, "dist": true, "build": true,
	"target": true, "__pycache__": true,
}

// SampleCode selects up to MaxSamples representative files from the tree and
// fetches their content. Source-code extensions come before config/markup
// files, lexicographic within each class, so selection is deterministic for
// identical trees and fetch results. Files without a recognized text
// extension, files larger than MaxSampleFileSize, and anything under a
// vendor/build or hidden directory are skipped. Content longer than
// SampleCharBudget is cut and marked.
func SampleCode(ctx context.Context, tree *domain.TreeNode, fetch FetchFunc) []domain.CodeSample {
	var preferred, fallback []string
	for _, f := range tree.Files() {
		if f.Size > MaxSampleFileSize || underSkippedDir(f.Path) {
			continue
		}
		ext := strings.ToLower(path.Ext(f.Path))
		switch {
		case sourceExts[ext]:
			preferred = append(preferred, f.Path)
		case configExts[ext]:
			fallback = append(fallback, f.Path)
		}
	}

	samples := make([]domain.CodeSample, 0, MaxSamples)
	for _, p := range append(preferred, fallback...) {
		if len(samples) >= MaxSamples {
			break
		}
		content, err := fetch(ctx, p)
		if err != nil {
			slog.Warn("sample fetch skipped", "path", p, "error", err)
			continue
		}
		samples = append(samples, domain.CodeSample{Path: p, Content: truncate(content)})
	}
	return samples
}

func underSkippedDir(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if skipDirs[seg] || strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}

// truncate cuts content to SampleCharBudget characters. The budget counts
// runes, not bytes, so a multi-byte rune is never split.
func truncate(content string) string {
	if len(content) <= SampleCharBudget {
		return content
	}
	runes := []rune(content)
	if len(runes) <= SampleCharBudget {
		return content
	}
	return string(runes[:SampleCharBudget]) + TruncationMarker
}
