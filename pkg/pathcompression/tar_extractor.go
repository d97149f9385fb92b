package pathcompression

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"

	"github.com/diomeh/dsu/pkg/plog"
)

type tarExtractor struct {
	*extractState
	format Format
}

// openDecompressor wraps r in the decompressor for format. Plain tar and
// unknown formats are returned unchanged.
func openDecompressor(r io.Reader, format Format) (io.ReadCloser, error) {
	switch format {
	case TarGz, Gz:
		gz, err := pgzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gz, nil
	case TarZst, Zst:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return zr.IOReadCloser(), nil
	default:
		return io.NopCloser(r), nil
	}
}

func (e *tarExtractor) Extract(ctx context.Context, absArchivePath, absTargetDir string) error {
	f, err := os.Open(absArchivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", absArchivePath, err)
	}
	defer f.Close()

	dr, err := openDecompressor(f, e.format)
	if err != nil {
		return err
	}
	defer dr.Close()

	tr := tar.NewReader(dr)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read tar header: %w", err)
		}

		absPath, err := securePath(absTargetDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := e.makeDir(absPath, os.FileMode(header.Mode).Perm()); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := e.writeFile(ctx, absPath, tr, os.FileMode(header.Mode), header.ModTime); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := e.writeSymlink(absTargetDir, absPath, header.Linkname); err != nil {
				return err
			}
		default:
			plog.Warn("Skipping unsupported tar entry", "name", header.Name, "type", string(header.Typeflag))
			e.metrics.AddFilesSkipped(1)
		}
	}
	return nil
}
