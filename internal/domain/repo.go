package domain

import (
	"fmt"
	"strings"
	"time"
)

// RepositoryRef identifies a repository uniquely. Immutable once parsed.
type RepositoryRef struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

func (r RepositoryRef) String() string {
	return r.Owner + "/" + r.Name
}

// ParseRef parses user input into a RepositoryRef. It accepts "owner/name"
// as well as full GitHub repository URLs.
func ParseRef(input string) (RepositoryRef, error) {
	s := strings.TrimSpace(input)
	s = strings.TrimSuffix(s, "/")
	s = strings.TrimSuffix(s, ".git")
	for _, prefix := range []string{"https://github.com/", "http://github.com/", "github.com/"} {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimPrefix(s, prefix)
			break
		}
	}

	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return RepositoryRef{}, fmt.Errorf("invalid repository reference %q: expected owner/name or a GitHub URL", input)
	}
	return RepositoryRef{Owner: parts[0], Name: parts[1]}, nil
}

// RepositoryOwner is the owning account of a repository.
type RepositoryOwner struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
}

// RepositoryMetadata is the basic repository record. Fetched once per
// analysis and read-only downstream.
type RepositoryMetadata struct {
	Name        string          `json:"name"`
	FullName    string          `json:"full_name"`
	Description string          `json:"description"`
	Stars       int             `json:"stars"`
	Forks       int             `json:"forks"`
	Watchers    int             `json:"watchers"`
	Language    string          `json:"language"`
	License     string          `json:"license,omitempty"`
	Topics      []string        `json:"topics"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Owner       RepositoryOwner `json:"owner"`
}

// FileEntry is a single path from the repository file listing.
// Paths are "/"-delimited and relative to the repository root.
type FileEntry struct {
	Path  string `json:"path"`
	IsDir bool   `json:"is_dir"`
	Size  int64  `json:"size"`
}

// LanguageStat is one language's share of the repository by bytes.
// Percent is rounded to one decimal, so the percentages of a result
// need not sum to exactly 100.
type LanguageStat struct {
	Name    string  `json:"name"`
	Bytes   int64   `json:"bytes"`
	Percent float64 `json:"percent"`
}

// ContributorStat is a ranked contributor record.
type ContributorStat struct {
	Login         string `json:"login"`
	AvatarURL     string `json:"avatar_url"`
	ProfileURL    string `json:"profile_url"`
	Contributions int    `json:"contributions"`
}

// CodeSample is a representative source file with its content truncated
// to a display-safe size.
type CodeSample struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}
