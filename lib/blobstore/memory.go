package blobstore

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Memory is a test double with the same revision semantics as the real
// stores.
type Memory struct {
	mu      sync.Mutex
	objects map[string]Object
	counter int
}

func NewMemory() *Memory {
	return &Memory{objects: map[string]Object{}}
}

func (s *Memory) Get(ctx context.Context, key string) (Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.objects[key]
	if !ok {
		return Object{}, ErrNotFound
	}
	return obj, nil
}

func (s *Memory) Put(ctx context.Context, key string, data []byte, expectedRevision string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.objects[key].Revision
	if expectedRevision != "" && expectedRevision != current {
		return ErrRevisionMismatch
	}

	s.counter++
	s.objects[key] = Object{
		Data:     append([]byte(nil), data...),
		Revision: strconv.Itoa(s.counter),
	}
	return nil
}

func (s *Memory) List(ctx context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix = strings.TrimSuffix(prefix, "/") + "/"
	seen := map[string]bool{}
	var names []string
	for key := range s.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		child := strings.TrimPrefix(key, prefix)
		if i := strings.IndexByte(child, '/'); i >= 0 {
			child = child[:i]
		}
		if !seen[child] {
			seen[child] = true
			names = append(names, child)
		}
	}
	sort.Strings(names)
	return names, nil
}
