package kb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"
)

// GitHubSource reads artifacts from a GitHub repository: raw content URLs
// for artifact bytes, the contents API for application listing. A token is
// required for private repositories and recommended against rate limits.
type GitHubSource struct {
	owner  string
	repo   string
	branch string
	prefix string
	token  string
	client *http.Client

	mu   sync.Mutex
	apps []string
}

// GitHubConfig configures a GitHubSource. Branch defaults to "main" and
// Prefix to "data".
type GitHubConfig struct {
	Owner  string
	Repo   string
	Branch string
	Prefix string
	Token  string
}

func NewGitHubSource(cfg GitHubConfig) (*GitHubSource, error) {
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, fmt.Errorf("kb: github owner and repo are required")
	}
	branch := cfg.Branch
	if branch == "" {
		branch = "main"
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "data"
	}
	return &GitHubSource{
		owner:  cfg.Owner,
		repo:   cfg.Repo,
		branch: branch,
		prefix: prefix,
		token:  cfg.Token,
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (s *GitHubSource) rawURL(path string) string {
	return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s/%s", s.owner, s.repo, s.branch, path)
}

func (s *GitHubSource) apiURL(path string) string {
	return fmt.Sprintf("https://api.github.com/repos/%s/%s/contents/%s?ref=%s", s.owner, s.repo, path, s.branch)
}

func (s *GitHubSource) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("kb: build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if s.token != "" {
		req.Header.Set("Authorization", "token "+s.token)
	}
	return s.client.Do(req)
}

// ListApps lists the directories under the data prefix. The result is cached
// for the lifetime of the source; restart to pick up new applications.
func (s *GitHubSource) ListApps(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	cached := s.apps
	s.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	resp, err := s.get(ctx, s.apiURL(s.prefix))
	if err != nil {
		return nil, fmt.Errorf("kb: list apps: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kb: list apps: github returned %s", resp.Status)
	}

	var entries []struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("kb: list apps: decode: %w", err)
	}
	var apps []string
	for _, e := range entries {
		if e.Type == "dir" {
			apps = append(apps, e.Name)
		}
	}
	sort.Strings(apps)

	s.mu.Lock()
	s.apps = apps
	s.mu.Unlock()
	return apps, nil
}

func (s *GitHubSource) Read(ctx context.Context, app, rel string) ([]byte, error) {
	path := s.prefix + "/" + app + "/" + rel
	resp, err := s.get(ctx, s.rawURL(path))
	if err != nil {
		return nil, fmt.Errorf("kb: fetch %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, notFound(app, rel)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kb: fetch %s: github returned %s", path, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("kb: fetch %s: %w", path, err)
	}
	return data, nil
}

func (s *GitHubSource) Exists(ctx context.Context, app, rel string) (bool, error) {
	_, err := s.Read(ctx, app, rel)
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, err
}
