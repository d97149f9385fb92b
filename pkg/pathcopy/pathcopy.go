// Package pathcopy copies a file, symlink or directory tree to a new location.
// Files are written to a temporary name and renamed into place, so an
// interrupted copy never leaves a truncated file under the final name.
package pathcopy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/diomeh/dsu/pkg/metrics"
	"github.com/diomeh/dsu/pkg/plog"
	"github.com/diomeh/dsu/pkg/pool"
	"github.com/diomeh/dsu/pkg/util"
)

// ErrUnsupportedType is returned when the source is neither a regular file,
// a directory nor a symlink.
var ErrUnsupportedType = errors.New("unsupported file type")

// PathCopier copies paths using a shared buffer pool.
type PathCopier struct {
	bufferPool *pool.FixedBufferPool
}

// NewPathCopier creates a PathCopier whose copy buffers are bufferSizeKB large.
func NewPathCopier(bufferSizeKB int) *PathCopier {
	return &PathCopier{bufferPool: pool.NewFixedBufferKB(bufferSizeKB)}
}

// Copy copies absSrcPath to absTrgPath. absTrgPath names the copy itself, not
// the directory to copy into. Existing files at the destination are replaced;
// existing directories are merged into.
func (c *PathCopier) Copy(ctx context.Context, absSrcPath, absTrgPath string, p *Plan) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	info, err := os.Lstat(absSrcPath)
	if err != nil {
		return fmt.Errorf("cannot stat source %s: %w", absSrcPath, err)
	}

	m := metrics.New(p.Metrics && !p.DryRun)
	t := &copyTask{PathCopier: c, plan: p, metrics: m}

	start := time.Now()
	switch {
	case info.Mode().IsRegular():
		err = t.copyFile(absSrcPath, absTrgPath, info)
	case info.Mode()&os.ModeSymlink != 0:
		err = t.copySymlink(absSrcPath, absTrgPath)
	case info.IsDir():
		err = t.copyTree(ctx, absSrcPath, absTrgPath)
	default:
		err = fmt.Errorf("%w: %s (%s)", ErrUnsupportedType, absSrcPath, info.Mode().Type())
	}
	if err != nil {
		return err
	}

	m.Log("Copy summary")
	plog.Debug("Copy finished", "source", absSrcPath, "target", absTrgPath, "duration", time.Since(start).Round(time.Millisecond))
	return nil
}

// copyTask holds the state of a single Copy call.
type copyTask struct {
	*PathCopier
	plan    *Plan
	metrics metrics.Metrics
}

// copyTree walks the source tree sequentially, creating directories and
// symlinks inline and handing regular files to a bounded worker group.
func (t *copyTask) copyTree(ctx context.Context, absSrcRoot, absTrgRoot string) error {
	workers := t.plan.Workers
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	walkErr := filepath.WalkDir(absSrcRoot, func(absSrcPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to walk %s: %w", absSrcPath, err)
		}
		select {
		case <-gctx.Done():
			return gctx.Err()
		default:
		}

		rel, err := filepath.Rel(absSrcRoot, absSrcPath)
		if err != nil {
			return err
		}
		absTrgPath := filepath.Join(absTrgRoot, rel)

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("cannot stat %s: %w", absSrcPath, err)
		}

		switch {
		case d.IsDir() && absSrcPath == absTrgRoot:
			// The copy lives inside its own source; never copy it into itself.
			return filepath.SkipDir
		case d.IsDir():
			return t.makeDir(absTrgPath, info.Mode().Perm())
		case d.Type()&fs.ModeSymlink != 0:
			return t.copySymlink(absSrcPath, absTrgPath)
		case info.Mode().IsRegular():
			g.Go(func() error { return t.copyFile(absSrcPath, absTrgPath, info) })
			return nil
		default:
			plog.Warn("Skipping unsupported file type", "path", absSrcPath, "type", info.Mode().Type())
			t.metrics.AddFilesSkipped(1)
			return nil
		}
	})

	// Always drain the workers, even when the walk failed.
	if err := g.Wait(); err != nil {
		return err
	}
	return walkErr
}

func (t *copyTask) makeDir(absTrgPath string, perm os.FileMode) error {
	if t.plan.DryRun {
		plog.Notice("[DRY RUN] MKDIR", "path", absTrgPath)
		return nil
	}
	// Owner keeps rwx so the copy can be filled and cleaned up again.
	if err := os.MkdirAll(absTrgPath, perm|0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", absTrgPath, err)
	}
	t.metrics.AddDirsCreated(1)
	return nil
}

// copyFile copies a regular file with retries.
func (t *copyTask) copyFile(absSrcPath, absTrgPath string, info os.FileInfo) error {
	if t.plan.DryRun {
		plog.Notice("[DRY RUN] COPY", "source", absSrcPath, "target", absTrgPath)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(absTrgPath), util.UserWritableDirPerms); err != nil {
		return fmt.Errorf("failed to create parent directory of %s: %w", absTrgPath, err)
	}

	var lastErr error
	for i, n := 0, t.plan.RetryCount+1; i < n; i++ {
		if i > 0 {
			plog.Warn("Retrying file copy", "file", absSrcPath, "attempt", fmt.Sprintf("%d/%d", i, t.plan.RetryCount), "after", t.plan.RetryWait)
			time.Sleep(t.plan.RetryWait)
		}
		if lastErr = t.copyFileOnce(absSrcPath, absTrgPath, info); lastErr == nil {
			plog.Notice("COPY", "source", absSrcPath, "target", absTrgPath)
			t.metrics.AddFilesWritten(1)
			return nil
		}
	}
	return fmt.Errorf("failed to copy file from '%s' to '%s' after %d attempts: %w", absSrcPath, absTrgPath, t.plan.RetryCount+1, lastErr)
}

func (t *copyTask) copyFileOnce(absSrcPath, absTrgPath string, info os.FileInfo) (err error) {
	in, err := os.Open(absSrcPath)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", absSrcPath, err)
	}
	defer in.Close()

	absTrgDir := filepath.Dir(absTrgPath)
	out, err := os.CreateTemp(absTrgDir, "dsu-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file in %s: %w", absTrgDir, err)
	}
	defer out.Close()

	// Cleared after a successful rename.
	absTempPath := out.Name()
	defer func() {
		if absTempPath != "" {
			os.Remove(absTempPath)
		}
	}()

	bufPtr := t.bufferPool.Get()
	defer t.bufferPool.Put(bufPtr)

	n, err := io.CopyBuffer(out, in, *bufPtr)
	if err != nil {
		return fmt.Errorf("failed to copy content from %s to %s: %w", absSrcPath, absTempPath, err)
	}
	t.metrics.AddBytesWritten(n)

	// The user must keep write access to the copy, even for read-only sources.
	if err := out.Chmod(util.WithUserWritePermission(info.Mode().Perm())); err != nil {
		return fmt.Errorf("failed to set permissions on temporary file %s: %w", absTempPath, err)
	}
	// Close before Chtimes: flushing may touch the modification time.
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file %s: %w", absTempPath, err)
	}
	if err := os.Chtimes(absTempPath, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("failed to set timestamps on %s: %w", absTempPath, err)
	}
	if err := os.Rename(absTempPath, absTrgPath); err != nil {
		return err
	}
	absTempPath = ""
	return nil
}

// copySymlink recreates the link itself; the link target is not followed.
func (t *copyTask) copySymlink(absSrcPath, absTrgPath string) error {
	target, err := os.Readlink(absSrcPath)
	if err != nil {
		return fmt.Errorf("failed to read symlink %s: %w", absSrcPath, err)
	}
	if t.plan.DryRun {
		plog.Notice("[DRY RUN] LINK", "path", absTrgPath, "target", target)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(absTrgPath), util.UserWritableDirPerms); err != nil {
		return fmt.Errorf("failed to create parent directory of %s: %w", absTrgPath, err)
	}

	// Link under a temporary name, then rename over any existing entry.
	f, err := os.CreateTemp(filepath.Dir(absTrgPath), "dsu-symlink-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to generate temp name for symlink: %w", err)
	}
	tempName := f.Name()
	f.Close()
	os.Remove(tempName)

	if err := os.Symlink(target, tempName); err != nil {
		return fmt.Errorf("failed to create symlink %s -> %s: %w", tempName, target, err)
	}
	if err := os.Rename(tempName, absTrgPath); err != nil {
		os.Remove(tempName)
		return fmt.Errorf("failed to rename temp symlink to %s: %w", absTrgPath, err)
	}
	t.metrics.AddSymlinksCreated(1)
	return nil
}
