// Package pathcompression unpacks archives and compressed files into a
// directory. Supported formats are zip, tar, tar.gz, tar.zst and single
// gzip or zstd compressed files.
package pathcompression

import (
	"context"
	"fmt"
	"os"

	"github.com/diomeh/dsu/pkg/metrics"
	"github.com/diomeh/dsu/pkg/plog"
	"github.com/diomeh/dsu/pkg/pool"
	"github.com/diomeh/dsu/pkg/util"
)

// PathExtractor unpacks archives and single compressed streams.
type PathExtractor struct {
	bufferPool *pool.FixedBufferPool
}

// NewPathExtractor creates a new PathExtractor whose copy buffers are bufferSizeKB large.
func NewPathExtractor(bufferSizeKB int) *PathExtractor {
	return &PathExtractor{
		bufferPool: pool.NewFixedBufferKB(bufferSizeKB),
	}
}

// Extract unpacks absArchivePath into absTargetDir, creating the directory
// if needed.
func (e *PathExtractor) Extract(ctx context.Context, absArchivePath, absTargetDir string, p *ExtractPlan) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	format := p.Format
	if format == "" {
		detected, err := DetectFormat(absArchivePath)
		if err != nil {
			return err
		}
		format = detected
	}

	m := metrics.New(p.Metrics)
	state := &extractState{
		bufferPool:    e.bufferPool,
		overwrite:     p.Overwrite,
		modTimeWindow: p.ModTimeWindow,
		dryRun:        p.DryRun,
		metrics:       m,
	}

	var ex extractor
	switch format {
	case Zip:
		ex = &zipExtractor{extractState: state}
	case Tar, TarGz, TarZst:
		ex = &tarExtractor{extractState: state, format: format}
	case Gz, Zst:
		ex = &streamExtractor{extractState: state, format: format}
	default:
		return fmt.Errorf("unsupported archive format: %s", format)
	}

	if !p.DryRun {
		if err := os.MkdirAll(absTargetDir, util.UserWritableDirPerms); err != nil {
			return fmt.Errorf("failed to create extraction directory %s: %w", absTargetDir, err)
		}
	}

	plog.Info("Extracting", "archive", absArchivePath, "format", format, "target", absTargetDir)
	if err := ex.Extract(ctx, absArchivePath, absTargetDir); err != nil {
		return fmt.Errorf("extraction of %s failed: %w", absArchivePath, err)
	}
	m.Log("Extraction finished")
	return nil
}
