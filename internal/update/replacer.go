package update

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

const verifyTimeout = 10 * time.Second

// BinaryReplacer swaps the installed binary for a new one with rollback
// support. Every step is a rename within the install directory, so the
// running executable is never written in place (Windows refuses that).
type BinaryReplacer struct {
	currentPath string
	backupPath  string
	stagePath   string
	verifyArgs  []string
}

// NewBinaryReplacer creates a new binary replacer
func NewBinaryReplacer(currentPath string) *BinaryReplacer {
	return &BinaryReplacer{
		currentPath: currentPath,
		backupPath:  currentPath + ".backup",
		stagePath:   currentPath + ".new",
		verifyArgs:  []string{"--version"},
	}
}

// WithVerifyArgs sets the arguments used to smoke-test an installed binary.
// No arguments disables the check.
func (r *BinaryReplacer) WithVerifyArgs(args ...string) *BinaryReplacer {
	r.verifyArgs = args
	return r
}

// Replace installs newBinary at the current path. On any failure after
// the backup is taken the previous binary is restored.
func (r *BinaryReplacer) Replace(newBinary string) error {
	// Stage next to the target so the final rename never crosses devices.
	if err := copyExecutable(newBinary, r.stagePath); err != nil {
		return fmt.Errorf("failed to stage binary: %w", err)
	}
	defer func() { _ = os.Remove(r.stagePath) }()

	if err := r.createBackup(); err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}

	if err := os.Rename(r.stagePath, r.currentPath); err != nil {
		_ = r.Rollback()
		return fmt.Errorf("failed to replace binary: %w", err)
	}

	if err := r.verifyBinary(r.currentPath); err != nil {
		if rbErr := r.Rollback(); rbErr != nil {
			return fmt.Errorf("new binary verification failed: %w (rollback: %v)", err, rbErr)
		}
		return fmt.Errorf("new binary verification failed: %w", err)
	}

	// On Windows the backup is the running image and cannot be removed yet;
	// RemoveBackup on a later start cleans it up.
	_ = r.RemoveBackup()
	return nil
}

// Rollback restores the backup if update fails
func (r *BinaryReplacer) Rollback() error {
	if _, err := os.Stat(r.backupPath); os.IsNotExist(err) {
		return fmt.Errorf("backup not found: %s", r.backupPath)
	}

	if err := os.Rename(r.backupPath, r.currentPath); err != nil {
		return fmt.Errorf("failed to restore from backup: %w", err)
	}

	if err := r.verifyBinary(r.currentPath); err != nil {
		return fmt.Errorf("restored binary verification failed: %w", err)
	}
	return nil
}

// RemoveBackup deletes a backup left by an earlier Replace. A missing
// backup is not an error.
func (r *BinaryReplacer) RemoveBackup() error {
	if err := os.Remove(r.backupPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// createBackup moves the current binary aside.
func (r *BinaryReplacer) createBackup() error {
	if _, err := os.Stat(r.currentPath); err != nil {
		return fmt.Errorf("failed to stat current binary: %w", err)
	}
	_ = os.Remove(r.backupPath)
	if err := os.Rename(r.currentPath, r.backupPath); err != nil {
		return fmt.Errorf("failed to move current binary: %w", err)
	}
	return nil
}

// verifyBinary runs the binary with verifyArgs and expects a zero exit.
func (r *BinaryReplacer) verifyBinary(path string) error {
	if len(r.verifyArgs) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, path, r.verifyArgs...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("binary verification failed: %w: %s", err, out)
	}
	return nil
}

// copyExecutable copies src to dst with mode 0755.
func copyExecutable(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o755)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return err
	}
	// OpenFile applies the umask; set the mode explicitly.
	return os.Chmod(dst, 0o755)
}
