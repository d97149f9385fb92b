// Package pathclean renames files and directories so their names contain
// only ASCII characters. Accented letters lose their marks ("café" becomes
// "cafe"), every other non-ASCII rune is dropped.
package pathclean

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/diomeh/dsu/pkg/plog"
)

// CleanName returns name with combining marks and non-ASCII runes removed.
func CleanName(name string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
	)
	cleaned, _, err := transform.String(t, name)
	if err != nil {
		return ""
	}
	return cleaned
}

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Result counts what a clean run did.
type Result struct {
	Renamed int
	Skipped int
}

// PathCleaner renames paths to their ASCII-only names.
type PathCleaner struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewPathCleaner creates a cleaner that prompts on out and reads answers from
// in. Prompts are only shown when interactive is true.
func NewPathCleaner(in io.Reader, out io.Writer, interactive bool) *PathCleaner {
	return &PathCleaner{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: interactive,
	}
}

// Clean renames each path, and with p.Recursive everything below it, to its
// cleaned name. Entries are processed deepest first so parent renames never
// invalidate pending child paths.
func (c *PathCleaner) Clean(ctx context.Context, paths []string, p *Plan) (Result, error) {
	var res Result
	for _, root := range paths {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		// "dir/" would otherwise yield Dir "dir" and rename dir into itself.
		root = filepath.Clean(root)
		info, err := os.Lstat(root)
		if err != nil {
			return res, fmt.Errorf("cannot clean %s: %w", root, err)
		}

		if p.Recursive && info.IsDir() {
			entries, err := collect(root, p.Depth)
			if err != nil {
				return res, err
			}
			for _, entry := range entries {
				if err := ctx.Err(); err != nil {
					return res, err
				}
				if err := c.rename(entry, p, &res); err != nil {
					return res, err
				}
			}
		}

		if err := c.rename(root, p, &res); err != nil {
			return res, err
		}
	}
	return res, nil
}

// collect lists every entry below root down to depth levels, deepest first.
func collect(root string, depth int) ([]string, error) {
	var entries []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			plog.Warn("Cannot read entry, skipping", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		level := strings.Count(rel, string(os.PathSeparator)) + 1
		if depth > 0 && level > depth {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		entries = append(entries, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return strings.Count(entries[i], string(os.PathSeparator)) > strings.Count(entries[j], string(os.PathSeparator))
	})
	return entries, nil
}

func (c *PathCleaner) rename(path string, p *Plan, res *Result) error {
	base := filepath.Base(path)
	if base == "." || base == ".." || base == string(os.PathSeparator) {
		return nil
	}

	cleaned := CleanName(base)
	if cleaned == base {
		return nil
	}
	if cleaned == "" {
		plog.Warn("Name has no ASCII characters left, skipping", "path", path)
		res.Skipped++
		return nil
	}

	newPath := filepath.Join(filepath.Dir(path), cleaned)
	if _, err := os.Lstat(newPath); err == nil {
		overwrite, err := c.confirmOverwrite(newPath, p.Force)
		if err != nil {
			return err
		}
		if !overwrite {
			plog.Info("Target exists, skipping", "path", path, "target", newPath)
			res.Skipped++
			return nil
		}
		if !p.DryRun {
			if err := os.RemoveAll(newPath); err != nil {
				return fmt.Errorf("failed to remove %s: %w", newPath, err)
			}
		}
	}

	if p.DryRun {
		plog.Notice("[DRY RUN] RENAME", "from", path, "to", newPath)
		res.Renamed++
		return nil
	}
	if err := os.Rename(path, newPath); err != nil {
		return fmt.Errorf("failed to rename %s to %s: %w", path, newPath, err)
	}
	plog.Info("Renamed", "from", path, "to", newPath)
	res.Renamed++
	return nil
}

func (c *PathCleaner) confirmOverwrite(path string, force Force) (bool, error) {
	switch force {
	case ForceYes:
		return true, nil
	case ForceNo:
		return false, nil
	}
	if !c.interactive {
		return false, nil
	}

	fmt.Fprintf(c.out, "%q already exists. Overwrite? [y/N] ", path)
	answer, err := c.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
