package diskusage

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/diomeh/dsu/pkg/plog"
)

func TestMain(m *testing.M) {
	plog.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func writeSized(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	// Random content keeps compressing filesystems from shrinking the blocks.
	data := make([]byte, size)
	rand.New(rand.NewSource(int64(size))).Read(data)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestTop_OrderAndLimit(t *testing.T) {
	dir := t.TempDir()
	writeSized(t, filepath.Join(dir, "small.txt"), 10)
	writeSized(t, filepath.Join(dir, "big", "a.bin"), 256*1024)
	writeSized(t, filepath.Join(dir, "big", "nested", "b.bin"), 256*1024)
	writeSized(t, filepath.Join(dir, "medium.bin"), 128*1024)

	entries, err := NewAnalyzer(0).Top(context.Background(), dir, 2)
	if err != nil {
		t.Fatalf("Top failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Name != "big" || !entries[0].IsDir {
		t.Errorf("expected 'big' first, got %+v", entries[0])
	}
	if entries[1].Name != "medium.bin" {
		t.Errorf("expected 'medium.bin' second, got %+v", entries[1])
	}
	if entries[0].Size < 512*1024 {
		t.Errorf("directory size %d should include nested files", entries[0].Size)
	}
}

func TestTop_NoLimit(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a", "b", "c"} {
		writeSized(t, filepath.Join(dir, name), 1)
	}
	entries, err := NewAnalyzer(2).Top(context.Background(), dir, 0)
	if err != nil {
		t.Fatalf("Top failed: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("expected 3 entries, got %d", len(entries))
	}
}

func TestTop_MissingDir(t *testing.T) {
	_, err := NewAnalyzer(0).Top(context.Background(), filepath.Join(t.TempDir(), "missing"), 10)
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestTop_CanceledContext(t *testing.T) {
	dir := t.TempDir()
	writeSized(t, filepath.Join(dir, "a"), 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewAnalyzer(0).Top(ctx, dir, 10)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFormatSize(t *testing.T) {
	testCases := []struct {
		size  int64
		human bool
		want  string
	}{
		{1536, false, "1536"},
		{512, true, "512 B"},
		{1536, true, "1.5 KiB"},
		{3 * 1024 * 1024, true, "3.0 MiB"},
		{5 * 1024 * 1024 * 1024, true, "5.0 GiB"},
	}
	for _, tc := range testCases {
		if got := FormatSize(tc.size, tc.human); got != tc.want {
			t.Errorf("FormatSize(%d, %v) = %q, want %q", tc.size, tc.human, got, tc.want)
		}
	}
}
