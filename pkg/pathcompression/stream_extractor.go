package pathcompression

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// streamExtractor decompresses a single .gz or .zst file.
type streamExtractor struct {
	*extractState
	format Format
}

func (e *streamExtractor) Extract(ctx context.Context, absArchivePath, absTargetDir string) error {
	f, err := os.Open(absArchivePath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", absArchivePath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", absArchivePath, err)
	}

	dr, err := openDecompressor(f, e.format)
	if err != nil {
		return err
	}
	defer dr.Close()

	name := TrimFormatExtension(filepath.Base(absArchivePath))
	if name == filepath.Base(absArchivePath) {
		// Content-detected stream without a matching extension.
		name += ".out"
	}
	absPath := filepath.Join(absTargetDir, name)
	return e.writeFile(ctx, absPath, dr, info.Mode(), info.ModTime())
}
