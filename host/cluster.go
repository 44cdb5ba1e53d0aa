package host

import (
	"context"
	"strings"
	"sync"
)

// ClusterStore is the key-value store behind the cluster host functions.
// Easegress backs it with etcd; every value is stored as a string.
type ClusterStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Put(ctx context.Context, key, value string) error

	// Update atomically replaces the value under key with the result of fn.
	Update(ctx context.Context, key string, fn func(old string, ok bool) (string, error)) (string, error)

	// CountPrefix returns the number of keys starting with prefix.
	CountPrefix(ctx context.Context, prefix string) (int, error)
}

// MemoryCluster is an in-process ClusterStore.
type MemoryCluster struct {
	data map[string]string
	mu   sync.RWMutex
}

func NewMemoryCluster() *MemoryCluster {
	return &MemoryCluster{data: make(map[string]string)}
}

func (s *MemoryCluster) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	v, ok := s.data[key]
	s.mu.RUnlock()
	return v, ok, nil
}

func (s *MemoryCluster) Put(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.data[key] = value
	s.mu.Unlock()
	return nil
}

func (s *MemoryCluster) Update(_ context.Context, key string, fn func(string, bool) (string, error)) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.data[key]
	v, err := fn(old, ok)
	if err != nil {
		return "", err
	}
	s.data[key] = v
	return v, nil
}

func (s *MemoryCluster) CountPrefix(_ context.Context, prefix string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			n++
		}
	}
	return n, nil
}
