// Package backupname implements the naming scheme of timestamped backups:
// "<original name>.<timestamp>.bak", e.g. "notes.txt.20240102_150405.bak".
package backupname

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const (
	// Suffix terminates every backup name.
	Suffix = ".bak"
	// DefaultLayout is the default time layout for the timestamp component.
	DefaultLayout = "20060102_150405"
)

// ErrNotBackup is returned by Parse for names that do not follow the scheme.
var ErrNotBackup = errors.New("not a backup name")

// Format returns the backup name for original at t. The timestamp is rendered in t's location.
func Format(original string, t time.Time, layout string) string {
	return original + "." + t.Format(layout) + Suffix
}

// Parse splits a backup name into the original name and its timestamp.
// The layout must not contain a dot, so the timestamp is everything between
// the last dot before the suffix and the suffix itself.
func Parse(name, layout string) (string, time.Time, error) {
	stem, ok := strings.CutSuffix(name, Suffix)
	if !ok {
		return "", time.Time{}, fmt.Errorf("%w: %q lacks the %s suffix", ErrNotBackup, name, Suffix)
	}
	i := strings.LastIndex(stem, ".")
	if i <= 0 {
		return "", time.Time{}, fmt.Errorf("%w: %q has no timestamp", ErrNotBackup, name)
	}
	ts, err := time.ParseInLocation(layout, stem[i+1:], time.Local)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %q has an invalid timestamp: %v", ErrNotBackup, name, err)
	}
	return stem[:i], ts, nil
}

// ValidateLayout rejects layouts that Parse could not split back apart.
func ValidateLayout(layout string) error {
	if layout == "" {
		return errors.New("timestamp layout cannot be empty")
	}
	if strings.ContainsAny(layout, "."+string(filepath.Separator)+"/") {
		return fmt.Errorf("timestamp layout %q must not contain '.' or path separators", layout)
	}
	ref := time.Date(2006, time.January, 2, 15, 4, 5, 0, time.Local)
	if _, err := time.ParseInLocation(layout, ref.Format(layout), time.Local); err != nil {
		return fmt.Errorf("timestamp layout %q does not round-trip: %w", layout, err)
	}
	return nil
}
