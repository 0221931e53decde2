package port

import (
	"context"

	"github.com/repolens/repolens/internal/domain"
)

// Contributor is the raw contributor record as returned by the data source,
// before ranking and truncation.
type Contributor struct {
	Login         string `json:"login"`
	AvatarURL     string `json:"avatar_url"`
	HTMLURL       string `json:"html_url"`
	Contributions int    `json:"contributions"`
}

// RepositoryDataSource abstracts the repository-hosting API.
// GetMetadata is the load-bearing call; every other method may fail
// independently without aborting an analysis.
type RepositoryDataSource interface {
	// GetMetadata returns the basic repository record.
	GetMetadata(ctx context.Context, ref domain.RepositoryRef) (*domain.RepositoryMetadata, error)

	// ListFiles returns the flat file listing of the default branch.
	ListFiles(ctx context.Context, ref domain.RepositoryRef) ([]domain.FileEntry, error)

	// GetLanguages returns per-language byte counts.
	GetLanguages(ctx context.Context, ref domain.RepositoryRef) (map[string]int64, error)

	// GetContributors returns raw contributor records.
	GetContributors(ctx context.Context, ref domain.RepositoryRef) ([]Contributor, error)

	// GetReadme returns the decoded README text.
	GetReadme(ctx context.Context, ref domain.RepositoryRef) (string, error)

	// GetFileContent returns the decoded content of a single file.
	GetFileContent(ctx context.Context, ref domain.RepositoryRef, path string) (string, error)
}
