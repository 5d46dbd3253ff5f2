package update

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifestJSON = `{
  "version": "v1.4.0",
  "notes": "Bug fixes",
  "pub_date": "2026-03-01T12:00:00Z",
  "platforms": {
    "darwin-arm64": {"url": "https://dl.example/1.4.0/Nebula.app.tar.gz?sig=abc", "sha256": "ABCDEF", "size": 123},
    "linux-amd64": {"url": "https://dl.example/1.4.0/", "sha256": "00ff"}
  }
}`

func serveManifest(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestManifestFeedLatest(t *testing.T) {
	server := serveManifest(t, manifestJSON)

	rel, err := NewManifestFeed(server.URL).
		WithPlatform(Platform{OS: "darwin", Arch: "arm64"}).
		Latest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "1.4.0", rel.Version)
	assert.Equal(t, "Bug fixes", rel.Notes)
	assert.Equal(t, "Nebula.app.tar.gz", rel.AssetName)
	assert.Equal(t, "https://dl.example/1.4.0/Nebula.app.tar.gz?sig=abc", rel.AssetURL)
	assert.Equal(t, "abcdef", rel.SHA256)
	assert.Equal(t, int64(123), rel.Size)
	assert.True(t, rel.PublishedAt.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))
	assert.Empty(t, rel.ChecksumURL)
}

func TestManifestFeedLatest_AssetNameFallback(t *testing.T) {
	server := serveManifest(t, manifestJSON)

	p := Platform{OS: "linux", Arch: "amd64"}
	rel, err := NewManifestFeed(server.URL).WithPlatform(p).Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, p.BinaryName(), rel.AssetName)
}

func TestAssetNameFromURL(t *testing.T) {
	p := Platform{OS: "linux", Arch: "amd64"}
	tests := []struct {
		url  string
		want string
	}{
		{"https://downloads.example.com/nebula-linux-amd64.tar.gz", "nebula-linux-amd64.tar.gz"},
		{"https://downloads.example.com/nebula?token=abc", "nebula"},
		{"https://downloads.example.com/latest/", p.BinaryName()},
		{"https://downloads.example.com/releases/..", p.BinaryName()},
		{"https://downloads.example.com/..?x=1", p.BinaryName()},
		{"https://downloads.example.com/.", p.BinaryName()},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, assetNameFromURL(tt.url, p))
		})
	}
}

func TestManifestFeedLatest_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		wantIs error
	}{
		{name: "missing platform", body: manifestJSON, wantIs: ErrNoAsset},
		{name: "no version", body: `{"platforms": {}}`},
		{name: "bad json", body: `[`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := serveManifest(t, tt.body)
			_, err := NewManifestFeed(server.URL).
				WithPlatform(Platform{OS: "windows", Arch: "amd64"}).
				Latest(context.Background())
			require.Error(t, err)
			if tt.wantIs != nil {
				assert.True(t, errors.Is(err, tt.wantIs), "error = %v", err)
			}
		})
	}
}

func TestManifestFeedLatest_BadPubDateIgnored(t *testing.T) {
	server := serveManifest(t, `{"version": "2.0.0", "pub_date": "yesterday",
		"platforms": {"linux-arm64": {"url": "https://dl.example/nebula"}}}`)

	rel, err := NewManifestFeed(server.URL).
		WithPlatform(Platform{OS: "linux", Arch: "arm64"}).
		Latest(context.Background())
	require.NoError(t, err)
	assert.True(t, rel.PublishedAt.IsZero())
	assert.Equal(t, "nebula", rel.AssetName)
}
