package metrics

import (
	"sync/atomic"

	"github.com/diomeh/dsu/pkg/plog"
)

// Metrics defines the interface for collecting statistics of copy-like operations
// (backup, restore, extraction).
type Metrics interface {
	AddFilesWritten(n int64)
	AddFilesSkipped(n int64)
	AddDirsCreated(n int64)
	AddSymlinksCreated(n int64)
	AddBytesWritten(n int64)
	Log(msg string)
}

// TransferMetrics holds the atomic counters for a copy-like operation.
// It is the concrete implementation of the Metrics interface.
type TransferMetrics struct {
	FilesWritten    atomic.Int64
	FilesSkipped    atomic.Int64
	DirsCreated     atomic.Int64
	SymlinksCreated atomic.Int64
	BytesWritten    atomic.Int64
}

func (m *TransferMetrics) AddFilesWritten(n int64)    { m.FilesWritten.Add(n) }
func (m *TransferMetrics) AddFilesSkipped(n int64)    { m.FilesSkipped.Add(n) }
func (m *TransferMetrics) AddDirsCreated(n int64)     { m.DirsCreated.Add(n) }
func (m *TransferMetrics) AddSymlinksCreated(n int64) { m.SymlinksCreated.Add(n) }
func (m *TransferMetrics) AddBytesWritten(n int64)    { m.BytesWritten.Add(n) }

// Log prints a summary of the operation.
func (m *TransferMetrics) Log(msg string) {
	plog.Info(msg,
		"filesWritten", m.FilesWritten.Load(),
		"filesSkipped", m.FilesSkipped.Load(),
		"dirsCreated", m.DirsCreated.Load(),
		"symlinksCreated", m.SymlinksCreated.Load(),
		"bytesWritten", m.BytesWritten.Load(),
	)
}

// NoopMetrics is an implementation of the Metrics interface that performs no operations.
// It can be used to disable metrics collection without changing the calling code.
type NoopMetrics struct{}

func (m *NoopMetrics) AddFilesWritten(n int64)    {}
func (m *NoopMetrics) AddFilesSkipped(n int64)    {}
func (m *NoopMetrics) AddDirsCreated(n int64)     {}
func (m *NoopMetrics) AddSymlinksCreated(n int64) {}
func (m *NoopMetrics) AddBytesWritten(n int64)    {}
func (m *NoopMetrics) Log(msg string)             {}

// New returns TransferMetrics when enabled, NoopMetrics otherwise.
func New(enabled bool) Metrics {
	if enabled {
		return &TransferMetrics{}
	}
	return &NoopMetrics{}
}

// Statically assert that our types implement the interface.
var _ Metrics = (*TransferMetrics)(nil)
var _ Metrics = (*NoopMetrics)(nil)
