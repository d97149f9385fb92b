package metrics

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/diomeh/dsu/pkg/plog"
)

func TestTransferMetrics(t *testing.T) {
	var buf bytes.Buffer
	plog.SetOutput(&buf)
	t.Cleanup(func() { plog.SetOutput(os.Stderr) })

	m := &TransferMetrics{}
	m.AddFilesWritten(2)
	m.AddFilesWritten(1)
	m.AddFilesSkipped(1)
	m.AddDirsCreated(4)
	m.AddSymlinksCreated(1)
	m.AddBytesWritten(1024)

	if m.FilesWritten.Load() != 3 {
		t.Errorf("expected 3 files written, got %d", m.FilesWritten.Load())
	}
	m.Log("copy summary")

	out := buf.String()
	for _, want := range []string{"copy summary", "filesWritten=3", "filesSkipped=1", "dirsCreated=4", "symlinksCreated=1", "bytesWritten=1024"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log to contain %q, got: %s", want, out)
		}
	}
}

func TestNew(t *testing.T) {
	if _, ok := New(true).(*TransferMetrics); !ok {
		t.Error("expected TransferMetrics when enabled")
	}
	if _, ok := New(false).(*NoopMetrics); !ok {
		t.Error("expected NoopMetrics when disabled")
	}
}
