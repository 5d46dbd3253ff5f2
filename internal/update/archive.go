package update

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// isTarball reports whether name looks like a gzipped tar archive.
func isTarball(name string) bool {
	return strings.HasSuffix(name, ".tar.gz") || strings.HasSuffix(name, ".tgz")
}

// extractBinary pulls the application binary out of the .tar.gz at archive
// into destDir and returns its path. The binary is the first regular file
// named "nebula", "nebula.exe" or "nebula-<os>-<arch>[.exe]".
func extractBinary(archive, destDir string) (string, error) {
	f, err := os.Open(archive)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	gzr, err := gzip.NewReader(f)
	if err != nil {
		return "", fmt.Errorf("create gzip reader: %w", err)
	}
	defer func() { _ = gzr.Close() }()

	tr := tar.NewReader(gzr)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("binary not found in %s", filepath.Base(archive))
		}
		if err != nil {
			return "", fmt.Errorf("read tar: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}

		name := filepath.Base(header.Name)
		if !isAppBinary(name) {
			continue
		}

		destPath := filepath.Join(destDir, name)
		out, err := os.OpenFile(destPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o755)
		if err != nil {
			return "", fmt.Errorf("create file: %w", err)
		}
		if _, err := io.Copy(out, tr); err != nil {
			_ = out.Close()
			return "", fmt.Errorf("extract file: %w", err)
		}
		if err := out.Close(); err != nil {
			return "", err
		}
		return destPath, nil
	}
}

func isAppBinary(name string) bool {
	name = strings.TrimSuffix(name, ".exe")
	return name == AppName || strings.HasPrefix(name, AppName+"-")
}
