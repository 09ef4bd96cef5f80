package storage

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"bomcost/core/bom"
	"bomcost/internal/errors"
)

// MemoryStore is an in-memory storage backend (for testing).
// Records are kept encoded so callers never share snapshot slices with the store.
type MemoryStore struct {
	records map[string][]byte
	mu      sync.RWMutex
}

// NewMemoryStore creates a memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string][]byte),
	}
}

func (s *MemoryStore) Save(ctx context.Context, name string, snap *bom.SetSnapshot) (*WorkspaceInfo, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prevID := ""
	if prev, ok := s.decode(name); ok {
		prevID = prev.Info.ID
	}
	rec := record{Info: newInfo(prevID, name, snap), Snapshot: snap}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, errors.Storage("encode workspace", err)
	}
	s.records[name] = data
	return &rec.Info, nil
}

func (s *MemoryStore) decode(name string) (*record, bool) {
	data, ok := s.records[name]
	if !ok {
		return nil, false
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false
	}
	return &rec, true
}

func (s *MemoryStore) Load(ctx context.Context, name string) (*bom.SetSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.decode(name)
	if !ok {
		return nil, errors.NotFound("workspace", name)
	}
	return rec.Snapshot, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]WorkspaceInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]WorkspaceInfo, 0, len(s.records))
	for name := range s.records {
		if rec, ok := s.decode(name); ok {
			infos = append(infos, rec.Info)
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[name]; !ok {
		return errors.NotFound("workspace", name)
	}
	delete(s.records, name)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
