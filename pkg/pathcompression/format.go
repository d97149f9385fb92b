package pathcompression

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"

	"github.com/diomeh/dsu/pkg/util"
)

// Format represents an archive or compressed-stream format.
type Format string

const (
	Zip    Format = "zip"
	Tar    Format = "tar"
	TarGz  Format = "tar.gz"
	TarZst Format = "tar.zst"
	Gz     Format = "gz"
	Zst    Format = "zst"
)

var formatToString = map[Format]string{
	Zip:    "zip",
	Tar:    "tar",
	TarGz:  "tar.gz",
	TarZst: "tar.zst",
	Gz:     "gz",
	Zst:    "zst",
}

var stringToFormat map[string]Format

// extensionToFormat is checked longest suffix first.
var extensionToFormat = []struct {
	ext    string
	format Format
}{
	{".tar.gz", TarGz},
	{".tar.zst", TarZst},
	{".tgz", TarGz},
	{".tzst", TarZst},
	{".tar", Tar},
	{".zip", Zip},
	{".gz", Gz},
	{".zst", Zst},
}

func init() {
	stringToFormat = util.InvertMap(formatToString)
}

func (f Format) String() string {
	if str, ok := formatToString[f]; ok {
		return str
	}
	return fmt.Sprintf("unknown_archive_format(%s)", string(f))
}

func ParseFormat(s string) (Format, error) {
	if format, ok := stringToFormat[strings.ToLower(s)]; ok {
		return format, nil
	}
	return "", fmt.Errorf("invalid archive format: %q. Must be 'zip', 'tar', 'tar.gz', 'tar.zst', 'gz', or 'zst'", s)
}

// FormatFromName derives the format from a file name's extension.
func FormatFromName(name string) (Format, bool) {
	lower := strings.ToLower(name)
	for _, e := range extensionToFormat {
		if strings.HasSuffix(lower, e.ext) && len(lower) > len(e.ext) {
			return e.format, true
		}
	}
	return "", false
}

// TrimFormatExtension strips the extension that identified format from name.
// "photos.tgz" becomes "photos", "notes.txt.gz" becomes "notes.txt".
func TrimFormatExtension(name string) string {
	lower := strings.ToLower(name)
	for _, e := range extensionToFormat {
		if strings.HasSuffix(lower, e.ext) && len(lower) > len(e.ext) {
			return name[:len(name)-len(e.ext)]
		}
	}
	return name
}

// DetectFormat determines the format of the file at path, first by extension
// and then by content. Compressed streams found by content are peeked into to
// tell a compressed tarball from a single compressed file.
func DetectFormat(path string) (Format, error) {
	if f, ok := FormatFromName(path); ok {
		return f, nil
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to detect archive format of %s: %w", path, err)
	}

	switch {
	case mtype.Is("application/zip"):
		return Zip, nil
	case mtype.Is("application/x-tar"):
		return Tar, nil
	case mtype.Is("application/gzip"):
		return peekCompressedTar(path, Gz, TarGz)
	case mtype.Is("application/zstd"):
		return peekCompressedTar(path, Zst, TarZst)
	default:
		return "", fmt.Errorf("unsupported archive format %s for %s", mtype.String(), path)
	}
}

// tarMagicOffset is the offset of the "ustar" magic in a tar header block.
const tarMagicOffset = 257

func peekCompressedTar(path string, stream, tarball Format) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var r io.Reader
	switch stream {
	case Gz:
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return "", fmt.Errorf("failed to read gzip stream %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	case Zst:
		zr, err := zstd.NewReader(f)
		if err != nil {
			return "", fmt.Errorf("failed to read zstd stream %s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}

	head := make([]byte, tarMagicOffset+5)
	if _, err := io.ReadFull(r, head); err != nil {
		return stream, nil // Shorter than a tar header, so a plain stream.
	}
	if bytes.Equal(head[tarMagicOffset:], []byte("ustar")) {
		return tarball, nil
	}
	return stream, nil
}
