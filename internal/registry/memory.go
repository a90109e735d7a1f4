package registry

import (
	"context"
	"encoding/json"
	"sync"
)

// Memory is an in-process Store used by tests and single-node embedding.
type Memory struct {
	mu      sync.RWMutex
	records map[string]json.RawMessage
}

func NewMemory() *Memory {
	return &Memory{records: map[string]json.RawMessage{}}
}

func (s *Memory) Get(_ context.Context, name string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, exists := s.records[name]
	if !exists {
		return nil, nil
	}

	out := make(json.RawMessage, len(value))
	copy(out, value)
	return out, nil
}

func (s *Memory) Set(_ context.Context, name string, value json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make(json.RawMessage, len(value))
	copy(stored, value)
	s.records[name] = stored
	return nil
}
