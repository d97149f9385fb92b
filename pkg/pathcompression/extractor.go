package pathcompression

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/diomeh/dsu/pkg/metrics"
	"github.com/diomeh/dsu/pkg/plog"
	"github.com/diomeh/dsu/pkg/pool"
	"github.com/diomeh/dsu/pkg/util"
)

// ErrUnsafePath is returned for an archive entry that would land outside the
// extraction directory.
var ErrUnsafePath = errors.New("archive entry escapes target directory")

// extractor defines the interface for extracting an archive into a directory.
type extractor interface {
	Extract(ctx context.Context, absArchivePath, absTargetDir string) error
}

// extractState holds the settings shared by every extractor.
type extractState struct {
	bufferPool    *pool.FixedBufferPool
	overwrite     OverwriteBehavior
	modTimeWindow time.Duration
	dryRun        bool
	metrics       metrics.Metrics
}

// securePath joins an archive entry name onto the target directory and
// rejects names that resolve outside of it.
func securePath(absTargetDir, name string) (string, error) {
	clean := filepath.Clean(filepath.Join(absTargetDir, filepath.FromSlash(name)))
	if clean == absTargetDir {
		return clean, nil
	}
	if !strings.HasPrefix(clean, absTargetDir+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return clean, nil
}

// shouldWrite decides whether an entry may be written to absPath, honoring
// the overwrite behavior. It returns false to skip the entry.
func (s *extractState) shouldWrite(absPath string, entryModTime time.Time) (bool, error) {
	info, err := os.Lstat(absPath)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat existing path %s: %w", absPath, err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("cannot overwrite directory %s with a file", absPath)
	}

	if !s.overwrite.replaces(entryModTime, info.ModTime(), s.modTimeWindow) {
		plog.Debug("Skipping, file exists", "path", absPath, "overwrite", s.overwrite)
		return false, nil
	}
	return true, nil
}

// makeDir creates an extracted directory, ensuring the owner can write into it.
func (s *extractState) makeDir(absPath string, perm os.FileMode) error {
	if s.dryRun {
		plog.Notice("[DRY RUN] MKDIR", "path", absPath)
		return nil
	}
	if err := os.MkdirAll(absPath, util.WithUserWritePermission(perm|0700)); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", absPath, err)
	}
	s.metrics.AddDirsCreated(1)
	return nil
}

// writeFile streams r into absPath through a temp file in the same directory.
func (s *extractState) writeFile(ctx context.Context, absPath string, r io.Reader, perm os.FileMode, modTime time.Time) error {
	ok, err := s.shouldWrite(absPath, modTime)
	if err != nil {
		return err
	}
	if !ok {
		s.metrics.AddFilesSkipped(1)
		return nil
	}
	if s.dryRun {
		plog.Notice("[DRY RUN] EXTRACT", "path", absPath)
		return nil
	}

	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, util.UserWritableDirPerms); err != nil {
		return fmt.Errorf("failed to create parent directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "dsu-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		// Only a failed write leaves the temp file behind.
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	bufPtr := s.bufferPool.Get()
	defer s.bufferPool.Put(bufPtr)

	written, err := io.CopyBuffer(tmp, &contextReader{ctx: ctx, r: r}, *bufPtr)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", absPath, err)
	}
	// Setuid, setgid and sticky bits from the archive are never applied.
	if err = tmp.Chmod(util.WithUserWritePermission(perm.Perm())); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", absPath, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", absPath, err)
	}
	if !modTime.IsZero() {
		if err = os.Chtimes(tmpPath, modTime, modTime); err != nil {
			return fmt.Errorf("failed to set mod time on %s: %w", absPath, err)
		}
	}
	if err = os.Rename(tmpPath, absPath); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", absPath, err)
	}

	s.metrics.AddFilesWritten(1)
	s.metrics.AddBytesWritten(written)
	return nil
}

// writeSymlink recreates a symlink entry, refusing targets outside absTargetDir.
func (s *extractState) writeSymlink(absTargetDir, absPath, linkTarget string) error {
	resolved := linkTarget
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(filepath.Dir(absPath), linkTarget)
	}
	if _, err := securePath(absTargetDir, mustRel(absTargetDir, resolved)); err != nil {
		return fmt.Errorf("%w: symlink %s -> %s", ErrUnsafePath, absPath, linkTarget)
	}

	ok, err := s.shouldWrite(absPath, time.Time{})
	if err != nil {
		return err
	}
	if !ok {
		s.metrics.AddFilesSkipped(1)
		return nil
	}
	if s.dryRun {
		plog.Notice("[DRY RUN] LINK", "path", absPath, "target", linkTarget)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(absPath), util.UserWritableDirPerms); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", absPath, err)
	}
	os.Remove(absPath)
	if err := os.Symlink(linkTarget, absPath); err != nil {
		return fmt.Errorf("failed to create symlink %s: %w", absPath, err)
	}
	s.metrics.AddSymlinksCreated(1)
	return nil
}

func mustRel(base, target string) string {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return target
	}
	return filepath.ToSlash(rel)
}

// contextReader aborts a long copy once the context is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
