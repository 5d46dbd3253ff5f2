package update

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"
)

// ManifestFeed reads a static JSON manifest describing the newest release:
//
//	{
//	  "version": "1.4.0",
//	  "notes": "...",
//	  "pub_date": "2026-03-01T12:00:00Z",
//	  "platforms": {
//	    "darwin-arm64": {"url": "https://...", "sha256": "...", "size": 123}
//	  }
//	}
type ManifestFeed struct {
	url      string
	client   *http.Client
	platform Platform
}

type manifest struct {
	Version   string                   `json:"version"`
	Notes     string                   `json:"notes"`
	PubDate   string                   `json:"pub_date"`
	Platforms map[string]manifestAsset `json:"platforms"`
}

type manifestAsset struct {
	URL    string `json:"url"`
	SHA256 string `json:"sha256"`
	Size   int64  `json:"size"`
}

// NewManifestFeed creates a feed reading the manifest at url.
func NewManifestFeed(url string) *ManifestFeed {
	return &ManifestFeed{
		url:      url,
		client:   &http.Client{Timeout: 30 * time.Second},
		platform: Detect(),
	}
}

// WithClient replaces the HTTP client.
func (f *ManifestFeed) WithClient(c *http.Client) *ManifestFeed {
	f.client = c
	return f
}

// WithPlatform overrides the detected platform.
func (f *ManifestFeed) WithPlatform(p Platform) *ManifestFeed {
	f.platform = p
	return f
}

// Latest implements Feed.
func (f *ManifestFeed) Latest(ctx context.Context) (*Release, error) {
	var m manifest
	if err := getJSON(ctx, f.client, f.url, map[string]string{"Accept": "application/json"}, &m); err != nil {
		return nil, fmt.Errorf("failed to fetch manifest: %w", err)
	}
	if m.Version == "" {
		return nil, fmt.Errorf("manifest %s has no version", f.url)
	}

	asset, ok := m.Platforms[f.platform.Key()]
	if !ok || asset.URL == "" {
		return nil, fmt.Errorf("%w: %s in manifest %s", ErrNoAsset, f.platform.Key(), m.Version)
	}

	rel := &Release{
		Version:  NormalizeVersion(m.Version),
		Notes:    m.Notes,
		AssetURL: asset.URL,
		SHA256:   strings.ToLower(asset.SHA256),
		Size:     asset.Size,
	}
	rel.AssetName = assetNameFromURL(asset.URL, f.platform)

	// pub_date is informational; an unparseable one is dropped.
	if m.PubDate != "" {
		if t, err := time.Parse(time.RFC3339, m.PubDate); err == nil {
			rel.PublishedAt = t
		}
	}
	return rel, nil
}

// assetNameFromURL uses the last path element of u, falling back to the
// platform binary name when the URL has none or it would leave the
// download dir.
func assetNameFromURL(u string, p Platform) string {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	name := path.Base(u)
	if name == "" || name == "." || name == ".." || name == "/" || strings.HasSuffix(u, "/") {
		return p.BinaryName()
	}
	return name
}
