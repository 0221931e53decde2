package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/repolens/repolens/internal/domain"
	"github.com/repolens/repolens/internal/port"
)

// DefaultBaseURL is the public GitHub REST v3 endpoint.
const DefaultBaseURL = "https://api.github.com"

const contributorsPerPage = 30

// Client implements port.RepositoryDataSource against the GitHub REST v3 API.
// The token is optional; without one the client runs with anonymous rate limits.
type Client struct {
	token      string
	baseURL    *url.URL
	httpClient *http.Client
}

// NewClient creates a GitHub API client. An empty baseURL selects the
// public API endpoint.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		u, _ = url.Parse(DefaultBaseURL)
	}
	return &Client{
		token:   token,
		baseURL: u,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type repoResponse struct {
	Name            string    `json:"name"`
	FullName        string    `json:"full_name"`
	Description     string    `json:"description"`
	StargazersCount int       `json:"stargazers_count"`
	ForksCount      int       `json:"forks_count"`
	WatchersCount   int       `json:"watchers_count"`
	Language        string    `json:"language"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Topics          []string  `json:"topics"`
	License         *struct {
		Name   string `json:"name"`
		SPDXID string `json:"spdx_id"`
	} `json:"license"`
	Owner struct {
		Login     string `json:"login"`
		AvatarURL string `json:"avatar_url"`
		HTMLURL   string `json:"html_url"`
	} `json:"owner"`
}

// GetMetadata fetches the basic repository record.
func (c *Client) GetMetadata(ctx context.Context, ref domain.RepositoryRef) (*domain.RepositoryMetadata, error) {
	var resp repoResponse
	if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s", ref.Owner, ref.Name), nil, &resp); err != nil {
		return nil, err
	}

	meta := &domain.RepositoryMetadata{
		Name:        resp.Name,
		FullName:    resp.FullName,
		Description: resp.Description,
		Stars:       resp.StargazersCount,
		Forks:       resp.ForksCount,
		Watchers:    resp.WatchersCount,
		Language:    resp.Language,
		Topics:      resp.Topics,
		CreatedAt:   resp.CreatedAt,
		UpdatedAt:   resp.UpdatedAt,
		Owner: domain.RepositoryOwner{
			Login:     resp.Owner.Login,
			AvatarURL: resp.Owner.AvatarURL,
			HTMLURL:   resp.Owner.HTMLURL,
		},
	}
	if resp.Topics == nil {
		meta.Topics = []string{}
	}
	if resp.License != nil {
		meta.License = resp.License.Name
	}
	return meta, nil
}

type treeResponse struct {
	Tree []struct {
		Path string `json:"path"`
		Type string `json:"type"` // blob, tree
		Size int64  `json:"size"`
	} `json:"tree"`
	Truncated bool `json:"truncated"`
}

// ListFiles returns the flat file listing of the repository's default branch.
func (c *Client) ListFiles(ctx context.Context, ref domain.RepositoryRef) ([]domain.FileEntry, error) {
	var resp treeResponse
	query := url.Values{"recursive": {"1"}}
	if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/git/trees/HEAD", ref.Owner, ref.Name), query, &resp); err != nil {
		return nil, err
	}

	// A truncated tree is still a usable listing.
	if resp.Truncated {
		slog.Warn("file listing truncated by the API", "repo", ref)
	}

	entries := make([]domain.FileEntry, 0, len(resp.Tree))
	for _, t := range resp.Tree {
		entries = append(entries, domain.FileEntry{
			Path:  t.Path,
			IsDir: t.Type == "tree",
			Size:  t.Size,
		})
	}
	return entries, nil
}

// GetLanguages returns per-language byte counts.
func (c *Client) GetLanguages(ctx context.Context, ref domain.RepositoryRef) (map[string]int64, error) {
	var langs map[string]int64
	if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/languages", ref.Owner, ref.Name), nil, &langs); err != nil {
		return nil, err
	}
	return langs, nil
}

// GetContributors returns raw contributor records.
func (c *Client) GetContributors(ctx context.Context, ref domain.RepositoryRef) ([]port.Contributor, error) {
	var contributors []port.Contributor
	query := url.Values{"per_page": {fmt.Sprint(contributorsPerPage)}}
	if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/contributors", ref.Owner, ref.Name), query, &contributors); err != nil {
		return nil, err
	}
	return contributors, nil
}

type contentResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// GetReadme returns the decoded README text.
func (c *Client) GetReadme(ctx context.Context, ref domain.RepositoryRef) (string, error) {
	var resp contentResponse
	if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/readme", ref.Owner, ref.Name), nil, &resp); err != nil {
		return "", err
	}
	return decodeContent(resp)
}

// GetFileContent returns the decoded content of a single file.
func (c *Client) GetFileContent(ctx context.Context, ref domain.RepositoryRef, path string) (string, error) {
	var resp contentResponse
	if err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/contents/%s", ref.Owner, ref.Name, path), nil, &resp); err != nil {
		return "", err
	}
	return decodeContent(resp)
}

// decodeContent handles the base64 payload of the contents API.
func decodeContent(resp contentResponse) (string, error) {
	if resp.Encoding != "base64" {
		return resp.Content, nil
	}
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(resp.Content, "\n", ""))
	if err != nil {
		return "", fmt.Errorf("decode content: %w", err)
	}
	return string(raw), nil
}

// get performs one API request and decodes the JSON response into out.
// A 404 maps to port.ErrRepoNotFound; every other failure wraps
// port.ErrRepoUnreachable.
func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	reqURL := c.baseURL.ResolveReference(&url.URL{Path: path})
	if query != nil {
		reqURL.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", port.ErrRepoUnreachable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", port.ErrRepoNotFound, path)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: %s returned status %d", port.ErrRepoUnreachable, path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", port.ErrRepoUnreachable, path, err)
	}
	return nil
}
