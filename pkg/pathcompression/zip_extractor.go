package pathcompression

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zip"
)

type zipExtractor struct {
	*extractState
}

func (e *zipExtractor) Extract(ctx context.Context, absArchivePath, absTargetDir string) error {
	zr, err := zip.OpenReader(absArchivePath)
	if err != nil {
		return fmt.Errorf("failed to open zip archive %s: %w", absArchivePath, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		absPath, err := securePath(absTargetDir, f.Name)
		if err != nil {
			return err
		}

		mode := f.Mode()
		switch {
		case mode.IsDir() || strings.HasSuffix(f.Name, "/"):
			if err := e.makeDir(absPath, mode.Perm()); err != nil {
				return err
			}
		case mode&os.ModeSymlink != 0:
			target, err := readZipEntry(f)
			if err != nil {
				return err
			}
			if err := e.writeSymlink(absTargetDir, absPath, target); err != nil {
				return err
			}
		default:
			if err := e.extractFile(ctx, f, absPath); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *zipExtractor) extractFile(ctx context.Context, f *zip.File, absPath string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open zip entry %s: %w", f.Name, err)
	}
	defer rc.Close()
	return e.writeFile(ctx, absPath, rc, f.Mode(), f.Modified)
}

func readZipEntry(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open zip entry %s: %w", f.Name, err)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("failed to read zip entry %s: %w", f.Name, err)
	}
	return string(b), nil
}
