package pool

import "sync"

// FixedBufferPool hands out byte slices of one size for io.CopyBuffer.
type FixedBufferPool struct {
	size int64
	pool sync.Pool
}

// NewFixedBuffer creates a pool of buffers of exactly size bytes.
func NewFixedBuffer(size int64) *FixedBufferPool {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &FixedBufferPool{
		size: size,
		pool: sync.Pool{
			New: func() any {
				b := make([]byte, int(size))
				return &b
			},
		},
	}
}

// NewFixedBufferKB is NewFixedBuffer with the size given in kilobytes.
func NewFixedBufferKB(sizeKB int) *FixedBufferPool {
	return NewFixedBuffer(int64(sizeKB) * 1024)
}

// Size returns the length of the buffers handed out by the pool.
func (fp *FixedBufferPool) Size() int64 { return fp.size }

func (fp *FixedBufferPool) Get() *[]byte {
	return fp.pool.Get().(*[]byte)
}

func (fp *FixedBufferPool) Put(b *[]byte) {
	// Only put it back if it's the right size.
	if b == nil || int64(cap(*b)) != fp.size {
		return
	}
	*b = (*b)[:fp.size]
	fp.pool.Put(b)
}
