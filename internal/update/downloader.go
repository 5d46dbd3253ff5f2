package update

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	partSuffix = ".part"
	chunkSize  = 32 * 1024
)

// HTTPDownloader downloads release artifacts over HTTP. Interrupted
// downloads leave a ".part" file next to the destination which the next
// Download resumes with a Range request.
type HTTPDownloader struct {
	client *http.Client
}

// NewHTTPDownloader creates a new HTTP downloader. The client has no
// timeout; the caller's context bounds the transfer.
func NewHTTPDownloader() *HTTPDownloader {
	return &HTTPDownloader{
		client: &http.Client{},
	}
}

// WithClient replaces the HTTP client.
func (d *HTTPDownloader) WithClient(c *http.Client) *HTTPDownloader {
	d.client = c
	return d
}

// Download fetches url into dst. progress, if non-nil, is called after
// every chunk with a snapshot whose BytesReceived never decreases. dst only
// appears once the body has been received in full.
func (d *HTTPDownloader) Download(ctx context.Context, url, dst string, progress func(DownloadProgress)) error {
	part := dst + partSuffix

	var offset int64
	if info, err := os.Stat(part); err == nil {
		offset = info.Size()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var (
		flags = os.O_CREATE | os.O_WRONLY
		total int64 = -1
	)
	switch resp.StatusCode {
	case http.StatusOK:
		// Server ignored the range, start over.
		offset = 0
		flags |= os.O_TRUNC
		total = resp.ContentLength
	case http.StatusPartialContent:
		start, size, err := parseContentRange(resp.Header.Get("Content-Range"))
		if err != nil {
			return err
		}
		if start != offset {
			return fmt.Errorf("server resumed at byte %d, have %d", start, offset)
		}
		flags |= os.O_APPEND
		total = size
		if total < 0 && resp.ContentLength >= 0 {
			total = offset + resp.ContentLength
		}
	case http.StatusRequestedRangeNotSatisfiable:
		// The part file is already complete, or belongs to a different artifact.
		if _, size, err := parseContentRange(resp.Header.Get("Content-Range")); err == nil && size == offset {
			if progress != nil {
				progress(newProgressCounter(uint64(offset), size).snapshot())
			}
			return finishPart(part, dst)
		}
		_ = os.Remove(part)
		return fmt.Errorf("server rejected resume at byte %d", offset)
	default:
		return fmt.Errorf("download returned status %d", resp.StatusCode)
	}

	f, err := os.OpenFile(part, flags, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", part, err)
	}

	counter := newProgressCounter(uint64(offset), total)
	if progress != nil {
		progress(counter.snapshot())
	}

	written, err := copyChunks(f, resp.Body, func(n int) {
		p := counter.add(n)
		if progress != nil {
			progress(p)
		}
	})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("download interrupted after %d bytes: %w", offset+written, err)
	}

	if total >= 0 && offset+written != total {
		return fmt.Errorf("incomplete download: got %d of %d bytes", offset+written, total)
	}
	return finishPart(part, dst)
}

// copyChunks copies src to dst in chunkSize pieces, calling onChunk after
// each successful write.
func copyChunks(dst io.Writer, src io.Reader, onChunk func(int)) (int64, error) {
	buf := make([]byte, chunkSize)
	var written int64
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return written, werr
			}
			written += int64(n)
			onChunk(n)
		}
		if errors.Is(rerr, io.EOF) {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}

func finishPart(part, dst string) error {
	if err := os.Rename(part, dst); err != nil {
		return fmt.Errorf("failed to finalize download: %w", err)
	}
	return nil
}

// parseContentRange parses "bytes start-end/size". size is -1 when the
// server reports "*".
func parseContentRange(v string) (start, size int64, err error) {
	spec, ok := strings.CutPrefix(strings.TrimSpace(v), "bytes ")
	if !ok {
		return 0, 0, fmt.Errorf("invalid Content-Range %q", v)
	}
	rng, sz, ok := strings.Cut(spec, "/")
	if !ok {
		return 0, 0, fmt.Errorf("invalid Content-Range %q", v)
	}

	size = -1
	if sz != "*" {
		if size, err = strconv.ParseInt(sz, 10, 64); err != nil {
			return 0, 0, fmt.Errorf("invalid Content-Range size %q: %w", v, err)
		}
	}
	if rng == "*" {
		return 0, size, nil
	}
	first, _, ok := strings.Cut(rng, "-")
	if !ok {
		return 0, 0, fmt.Errorf("invalid Content-Range %q", v)
	}
	if start, err = strconv.ParseInt(first, 10, 64); err != nil {
		return 0, 0, fmt.Errorf("invalid Content-Range start %q: %w", v, err)
	}
	return start, size, nil
}

// VerifyChecksum looks up file's base name in the checksums.txt listing at
// checksumURL and compares digests.
func (d *HTTPDownloader) VerifyChecksum(ctx context.Context, file, checksumURL string) error {
	checksums, err := d.downloadChecksums(ctx, checksumURL)
	if err != nil {
		return fmt.Errorf("failed to download checksums: %w", err)
	}

	name := getFilename(file)
	expected, ok := checksums[name]
	if !ok {
		return fmt.Errorf("checksum for %s not found in %s", name, checksumsAsset)
	}
	return VerifySHA256(file, expected)
}

// VerifySHA256 compares the SHA-256 of file with the hex digest expected.
func VerifySHA256(file, expected string) error {
	actual, err := calculateSHA256(file)
	if err != nil {
		return fmt.Errorf("failed to calculate checksum: %w", err)
	}
	if !strings.EqualFold(actual, strings.TrimSpace(expected)) {
		return fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, expected, actual)
	}
	return nil
}

// downloadChecksums fetches and parses a "<sha256>  <name>" listing.
// Malformed lines are skipped.
func (d *HTTPDownloader) downloadChecksums(ctx context.Context, url string) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("checksums returned status %d", resp.StatusCode)
	}

	checksums := make(map[string]string)
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 {
			continue
		}
		// sha256sum marks binary mode with a leading '*'.
		name := filepath.Base(strings.TrimPrefix(fields[1], "*"))
		checksums[name] = fields[0]
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read checksums: %w", err)
	}
	return checksums, nil
}

// calculateSHA256 returns the hex SHA-256 of the file at path.
func calculateSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// getFilename returns the last element of path.
func getFilename(path string) string {
	return filepath.Base(path)
}
