package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	defaultGitHubAPI = "https://api.github.com"
	checksumsAsset   = "checksums.txt"
)

// GitHubFeed resolves the newest release from the GitHub Releases API.
type GitHubFeed struct {
	owner    string // Repository owner
	repo     string // Repository name
	token    string // Optional, raises the API rate limit
	client   *http.Client
	baseURL  string // Base URL for GitHub API (for testing)
	platform Platform
}

// gitHubRelease is the subset of the releases/latest response we read.
type gitHubRelease struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	Body        string    `json:"body"`
	HTMLURL     string    `json:"html_url"`
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
	PublishedAt time.Time `json:"published_at"`
	Assets      []struct {
		Name               string `json:"name"`
		Size               int64  `json:"size"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// NewGitHubFeed creates a feed for owner/repo on github.com.
func NewGitHubFeed(owner, repo string) *GitHubFeed {
	return &GitHubFeed{
		owner: owner,
		repo:  repo,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:  defaultGitHubAPI,
		platform: Detect(),
	}
}

// WithToken sets an optional GitHub token for authentication
func (f *GitHubFeed) WithToken(token string) *GitHubFeed {
	f.token = token
	return f
}

// WithClient replaces the HTTP client.
func (f *GitHubFeed) WithClient(c *http.Client) *GitHubFeed {
	f.client = c
	return f
}

// WithBaseURL points the feed at a GitHub Enterprise or test server.
func (f *GitHubFeed) WithBaseURL(u string) *GitHubFeed {
	f.baseURL = strings.TrimSuffix(u, "/")
	return f
}

// WithPlatform overrides the detected platform.
func (f *GitHubFeed) WithPlatform(p Platform) *GitHubFeed {
	f.platform = p
	return f
}

// Latest implements Feed.
func (f *GitHubFeed) Latest(ctx context.Context) (*Release, error) {
	if err := f.platform.requireSupported(); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", f.baseURL, f.owner, f.repo)
	headers := map[string]string{"Accept": "application/vnd.github+json"}
	if f.token != "" {
		headers["Authorization"] = "Bearer " + f.token
	}

	var gh gitHubRelease
	if err := getJSON(ctx, f.client, url, headers, &gh); err != nil {
		return nil, fmt.Errorf("failed to get latest release: %w", err)
	}
	if gh.Draft {
		return nil, fmt.Errorf("latest release %s is a draft", gh.TagName)
	}

	rel := &Release{
		Version:     NormalizeVersion(gh.TagName),
		Notes:       gh.Body,
		PublishedAt: gh.PublishedAt,
	}
	f.findAssets(&gh, rel)
	if rel.AssetURL == "" {
		return nil, fmt.Errorf("%w: %s in release %s", ErrNoAsset, f.platform.BinaryName(), gh.TagName)
	}
	return rel, nil
}

// findAssets fills in the binary and checksum URLs for the feed's platform.
func (f *GitHubFeed) findAssets(gh *gitHubRelease, rel *Release) {
	binaryName := f.platform.BinaryName()
	for _, asset := range gh.Assets {
		switch asset.Name {
		case binaryName:
			rel.AssetName = asset.Name
			rel.AssetURL = asset.BrowserDownloadURL
			rel.Size = asset.Size
		case checksumsAsset:
			rel.ChecksumURL = asset.BrowserDownloadURL
		}
	}
}

// getJSON performs a GET and decodes a 200 response into v.
func getJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	for k, val := range headers {
		req.Header.Set(k, val)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		return ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%s returned status %d", url, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
