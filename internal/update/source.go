package update

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// HTTPSource is the Source backed by a release Feed. Artifacts are
// downloaded into <downloadDir>/<version>/ and handed to a Replacer.
type HTTPSource struct {
	currentVersion string
	feed           Feed
	downloader     *HTTPDownloader
	replacer       Replacer
	downloadDir    string
	logger         *zap.Logger
}

// SourceOption configures an HTTPSource.
type SourceOption func(*HTTPSource)

// WithDownloader sets the downloader used for artifacts and checksums.
func WithDownloader(d *HTTPDownloader) SourceOption {
	return func(s *HTTPSource) { s.downloader = d }
}

// WithDownloadDir sets the directory artifacts are cached in.
func WithDownloadDir(dir string) SourceOption {
	return func(s *HTTPSource) { s.downloadDir = dir }
}

// WithSourceLogger sets the logger.
func WithSourceLogger(l *zap.Logger) SourceOption {
	return func(s *HTTPSource) { s.logger = l }
}

// NewHTTPSource creates a source for a running binary at currentVersion.
func NewHTTPSource(currentVersion string, feed Feed, replacer Replacer, opts ...SourceOption) *HTTPSource {
	s := &HTTPSource{
		currentVersion: currentVersion,
		feed:           feed,
		downloader:     NewHTTPDownloader(),
		replacer:       replacer,
		downloadDir:    filepath.Join(os.TempDir(), AppName+"-updates"),
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Check implements Source.
func (s *HTTPSource) Check(ctx context.Context) CheckOutcome {
	current, err := ParseVersion(s.currentVersion)
	if err != nil {
		return Failed(fmt.Errorf("invalid current version: %w", err))
	}

	rel, err := s.feed.Latest(ctx)
	if err != nil {
		return Failed(err)
	}

	latest, err := ParseVersion(rel.Version)
	if err != nil {
		return Failed(fmt.Errorf("invalid latest version: %w", err))
	}

	if !latest.IsGreaterThan(current) {
		return Up(current.String())
	}
	return Available(NewDescriptor(s, current.String(), latest.String(), rel))
}

// DownloadAndInstall implements Source.
func (s *HTTPSource) DownloadAndInstall(ctx context.Context, d *Descriptor, events chan<- TransferEvent) error {
	if err := d.consume(s); err != nil {
		return withKind(TransferFailure, "descriptor", err)
	}
	rel := d.Handle()

	if pruned, err := s.PruneDownloads(rel.Version); err != nil {
		s.logger.Warn("pruning stale downloads failed", zap.Error(err))
	} else if len(pruned) > 0 {
		s.logger.Debug("pruned stale downloads", zap.Strings("versions", pruned))
	}

	dir := filepath.Join(s.downloadDir, rel.Version)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return withKind(TransferFailure, "download", fmt.Errorf("failed to create %s: %w", dir, err))
	}
	artifact := filepath.Join(dir, rel.AssetName)

	if err := s.fetch(ctx, rel, artifact, events); err != nil {
		return withKind(TransferFailure, "download", err)
	}
	send(ctx, events, TransferEvent{Kind: EventDownloaded})

	binary := artifact
	if isTarball(rel.AssetName) {
		var err error
		if binary, err = extractBinary(artifact, dir); err != nil {
			return withKind(InstallFailure, "extract", err)
		}
	}

	if err := s.replacer.Replace(binary); err != nil {
		return withKind(InstallFailure, "install", err)
	}

	if err := os.RemoveAll(dir); err != nil {
		s.logger.Debug("could not remove installed artifact", zap.String("dir", dir), zap.Error(err))
	}
	return nil
}

// fetch downloads rel into artifact and verifies it. A verified artifact
// left by an earlier cycle is reused without a network transfer.
func (s *HTTPSource) fetch(ctx context.Context, rel *Release, artifact string, events chan<- TransferEvent) error {
	if info, err := os.Stat(artifact); err == nil {
		if s.verify(ctx, rel, artifact) == nil {
			size := uint64(info.Size())
			send(ctx, events, TransferEvent{Kind: EventProgress, Progress: DownloadProgress{
				BytesReceived: size, TotalBytes: size, TotalKnown: true,
			}})
			return nil
		}
		_ = os.Remove(artifact)
	}

	err := s.downloader.Download(ctx, rel.AssetURL, artifact, func(p DownloadProgress) {
		send(ctx, events, TransferEvent{Kind: EventProgress, Progress: p})
	})
	if err != nil {
		return err
	}

	if err := s.verify(ctx, rel, artifact); err != nil {
		// A corrupt artifact must not be resumed or reused.
		_ = os.Remove(artifact)
		return err
	}
	return nil
}

// verify checks artifact against the inline digest, falling back to the
// release checksums listing.
func (s *HTTPSource) verify(ctx context.Context, rel *Release, artifact string) error {
	switch {
	case rel.SHA256 != "":
		return VerifySHA256(artifact, rel.SHA256)
	case rel.ChecksumURL != "":
		return s.downloader.VerifyChecksum(ctx, artifact, rel.ChecksumURL)
	default:
		s.logger.Warn("release publishes no checksum, skipping verification", zap.String("version", rel.Version))
		return nil
	}
}

// PruneDownloads removes cached artifacts for every version except keep
// and returns the versions removed. A missing download dir is not an error.
func (s *HTTPSource) PruneDownloads(keep string) ([]string, error) {
	entries, err := os.ReadDir(s.downloadDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var deleted []string
	for _, e := range entries {
		if !e.IsDir() || e.Name() == keep {
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.downloadDir, e.Name())); err != nil {
			return deleted, fmt.Errorf("failed to delete %s: %w", e.Name(), err)
		}
		deleted = append(deleted, e.Name())
	}
	return deleted, nil
}

// send delivers ev unless ctx is done first.
func send(ctx context.Context, events chan<- TransferEvent, ev TransferEvent) {
	if events == nil {
		return
	}
	select {
	case events <- ev:
	case <-ctx.Done():
	}
}
