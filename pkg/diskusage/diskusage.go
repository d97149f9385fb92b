// Package diskusage measures how much disk space the entries of a directory
// occupy and ranks them.
package diskusage

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"

	"github.com/diomeh/dsu/pkg/plog"
	"github.com/diomeh/dsu/pkg/sharded"
)

// Entry is one direct child of the analysed directory.
type Entry struct {
	Name  string
	Path  string
	IsDir bool
	// Size is the disk usage in bytes, including everything below a directory.
	Size int64
}

// fileID identifies a file across hard links.
type fileID struct {
	dev, ino uint64
}

func hashFileID(id fileID) uint32 {
	return sharded.HashUint64(id.ino ^ (id.dev << 32))
}

const numLinkShards = 64

// Analyzer measures the disk usage of the entries of a directory.
type Analyzer struct {
	numWorkers int
}

// NewAnalyzer creates an analyzer walking with numWorkers goroutines.
// A value <= 0 uses the walker's default.
func NewAnalyzer(numWorkers int) *Analyzer {
	return &Analyzer{numWorkers: numWorkers}
}

// Top returns the limit largest direct children of dir, largest first.
// A limit <= 0 returns every child.
func (a *Analyzer) Top(ctx context.Context, dir string, limit int) ([]Entry, error) {
	children, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	seen := sharded.NewSet[fileID](numLinkShards, hashFileID)
	entries := make([]Entry, 0, len(children))
	for _, child := range children {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(dir, child.Name())
		size, err := a.measure(ctx, path, child, seen)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			plog.Warn("Cannot measure entry, skipping", "path", path, "error", err)
			continue
		}
		entries = append(entries, Entry{
			Name:  child.Name(),
			Path:  path,
			IsDir: child.IsDir(),
			Size:  size,
		})
	}

	plog.Debug("Measured directory", "dir", dir, "entries", len(entries), "hardLinkedFiles", seen.Count())

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Size != entries[j].Size {
			return entries[i].Size > entries[j].Size
		}
		return entries[i].Name < entries[j].Name
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// measure returns the usage of path, walking it when it is a directory.
func (a *Analyzer) measure(ctx context.Context, path string, d fs.DirEntry, seen *sharded.Set[fileID]) (int64, error) {
	rootSize, err := usageOnce(path, seen)
	if err != nil {
		return 0, err
	}
	if !d.IsDir() {
		return rootSize, nil
	}

	var total atomic.Int64
	total.Store(rootSize)
	conf := fastwalk.Config{Follow: false, NumWorkers: a.numWorkers}
	err = fastwalk.Walk(&conf, path, func(p string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil {
			plog.Warn("Cannot read entry, skipping", "path", p, "error", err)
			return nil
		}
		if p == path {
			return nil
		}
		size, err := usageOnce(p, seen)
		if err != nil {
			plog.Warn("Cannot stat entry, skipping", "path", p, "error", err)
			return nil
		}
		total.Add(size)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total.Load(), nil
}

// usageOnce returns the usage of a single entry, or 0 when it is a hard link
// to a file that was already counted.
func usageOnce(path string, seen *sharded.Set[fileID]) (int64, error) {
	size, id, multiLinked, err := usage(path)
	if err != nil {
		return 0, err
	}
	if multiLinked && seen.LoadOrStore(id) {
		return 0, nil
	}
	return size, nil
}

var iecUnits = []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}

// FormatSize renders a byte count, in IEC units when human is set.
func FormatSize(size int64, human bool) string {
	if !human {
		return fmt.Sprintf("%d", size)
	}
	if size < 1024 {
		return fmt.Sprintf("%d B", size)
	}
	value := float64(size) / 1024
	unit := 0
	for value >= 1024 && unit < len(iecUnits)-1 {
		value /= 1024
		unit++
	}
	return fmt.Sprintf("%.1f %s", value, iecUnits[unit])
}
