// Package pool provides reusable I/O buffers backed by sync.Pool.
//
// Items in a sync.Pool are dropped during garbage collection, which makes it a
// fit for short-lived copy buffers and not for long-lived resources.
package pool

// DefaultBufferSize is used when a non-positive size is requested (256KB).
const DefaultBufferSize int64 = 256 * 1024
