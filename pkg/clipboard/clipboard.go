// Package clipboard moves text between standard streams and the system
// clipboard.
package clipboard

import (
	"errors"
	"fmt"
	"io"

	"github.com/atotto/clipboard"
)

// ErrUnsupported is returned when no clipboard utility is available.
var ErrUnsupported = errors.New("clipboard is not supported on this system")

// Backend reads and writes the clipboard contents.
type Backend interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type systemBackend struct{}

func (systemBackend) ReadAll() (string, error) { return clipboard.ReadAll() }
func (systemBackend) WriteAll(text string) error { return clipboard.WriteAll(text) }

// Clipboard copies text between streams and a clipboard Backend.
type Clipboard struct {
	backend Backend
}

// New returns a Clipboard bound to the system clipboard.
func New() *Clipboard {
	return &Clipboard{backend: systemBackend{}}
}

// NewWithBackend returns a Clipboard using b, for tests and headless use.
func NewWithBackend(b Backend) *Clipboard {
	return &Clipboard{backend: b}
}

// Copy reads r to EOF and places the text on the clipboard.
func (c *Clipboard) Copy(r io.Reader) (int, error) {
	if c.unsupported() {
		return 0, ErrUnsupported
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("failed to read input: %w", err)
	}
	if err := c.backend.WriteAll(string(data)); err != nil {
		return 0, fmt.Errorf("failed to write clipboard: %w", err)
	}
	return len(data), nil
}

// Paste writes the clipboard text to w.
func (c *Clipboard) Paste(w io.Writer) (int, error) {
	if c.unsupported() {
		return 0, ErrUnsupported
	}
	text, err := c.backend.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("failed to read clipboard: %w", err)
	}
	n, err := io.WriteString(w, text)
	if err != nil {
		return n, fmt.Errorf("failed to write output: %w", err)
	}
	return n, nil
}

func (c *Clipboard) unsupported() bool {
	_, isSystem := c.backend.(systemBackend)
	return isSystem && clipboard.Unsupported
}
