package sharded

import "sync"

type setShard[K comparable] struct {
	mu    sync.Mutex
	items map[K]struct{}
}

// Set is a concurrent set split into independently locked shards.
type Set[K comparable] struct {
	shards []*setShard[K]
	hash   func(K) uint32
}

// NewSet creates a set with numShards shards, which must be a power of 2.
// hash picks the shard for a key.
func NewSet[K comparable](numShards int, hash func(K) uint32) *Set[K] {
	if !isPowerOfTwo(numShards) {
		panic("num shards must be a power of 2")
	}
	s := &Set[K]{shards: make([]*setShard[K], numShards), hash: hash}
	for i := 0; i < numShards; i++ {
		s.shards[i] = &setShard[K]{items: make(map[K]struct{})}
	}
	return s
}

func (s *Set[K]) getShard(key K) *setShard[K] {
	// Bitwise AND works as modulus because the shard count is a power of 2.
	return s.shards[s.hash(key)&uint32(len(s.shards)-1)]
}

// LoadOrStore ensures key is present in the set, returning true if it was
// already present.
func (s *Set[K]) LoadOrStore(key K) (loaded bool) {
	shard := s.getShard(key)
	shard.mu.Lock()
	_, loaded = shard.items[key]
	if !loaded {
		shard.items[key] = struct{}{}
	}
	shard.mu.Unlock()
	return loaded
}

// Count returns the total number of keys in the set.
func (s *Set[K]) Count() int {
	count := 0
	for _, shard := range s.shards {
		shard.mu.Lock()
		count += len(shard.items)
		shard.mu.Unlock()
	}
	return count
}
