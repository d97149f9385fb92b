package clipboard

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

type memoryBackend struct {
	text string
	err  error
}

func (m *memoryBackend) ReadAll() (string, error) { return m.text, m.err }
func (m *memoryBackend) WriteAll(text string) error {
	if m.err != nil {
		return m.err
	}
	m.text = text
	return nil
}

func TestCopyPaste(t *testing.T) {
	backend := &memoryBackend{}
	c := NewWithBackend(backend)

	n, err := c.Copy(strings.NewReader("hello\nworld\n"))
	if err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	if n != 12 || backend.text != "hello\nworld\n" {
		t.Errorf("Copy stored %q (%d bytes)", backend.text, n)
	}

	var out bytes.Buffer
	if _, err := c.Paste(&out); err != nil {
		t.Fatalf("Paste failed: %v", err)
	}
	if out.String() != "hello\nworld\n" {
		t.Errorf("Paste wrote %q", out.String())
	}
}

func TestBackendErrors(t *testing.T) {
	c := NewWithBackend(&memoryBackend{err: errors.New("no display")})

	if _, err := c.Copy(strings.NewReader("x")); err == nil || !strings.Contains(err.Error(), "no display") {
		t.Errorf("expected wrapped backend error from Copy, got %v", err)
	}
	if _, err := c.Paste(&bytes.Buffer{}); err == nil || !strings.Contains(err.Error(), "no display") {
		t.Errorf("expected wrapped backend error from Paste, got %v", err)
	}
}
