// Package sharded provides a lock-striped set for keys recorded from many
// goroutines at once, such as the file identities seen by a parallel walk.
package sharded

// HashUint64 hashes an integer key with the FNV-1a mixing steps.
func HashUint64(key uint64) uint32 {
	const (
		offset32 = 2166136261
		prime32  = 16777619
	)
	h := uint32(offset32)
	for i := 0; i < 8; i++ {
		h ^= uint32(key & 0xff)
		h *= prime32
		key >>= 8
	}
	return h
}

func isPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}
