package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"bomcost/core/bom"
	"bomcost/internal/errors"
)

// FileStore keeps one JSON file per workspace
type FileStore struct {
	basePath string
	mu       sync.RWMutex
}

// NewFileStore creates a file store
func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, errors.Storage("create storage directory", err)
	}
	return &FileStore{basePath: basePath}, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.basePath, name+".json")
}

func (s *FileStore) read(name string) (*record, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("workspace", name)
		}
		return nil, errors.Storage("read workspace", err)
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Storage("decode workspace "+name, err)
	}
	return &rec, nil
}

func (s *FileStore) Save(ctx context.Context, name string, snap *bom.SetSnapshot) (*WorkspaceInfo, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prevID := ""
	if prev, err := s.read(name); err == nil {
		prevID = prev.Info.ID
	} else if !errors.IsType(err, errors.TypeNotFound) {
		return nil, err
	}

	rec := record{Info: newInfo(prevID, name, snap), Snapshot: snap}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, errors.Storage("encode workspace", err)
	}

	// write-then-rename so a failed save leaves the previous file intact
	tmp := s.path(name) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return nil, errors.Storage("write workspace", err)
	}
	if err := os.Rename(tmp, s.path(name)); err != nil {
		return nil, errors.Storage("replace workspace", err)
	}
	return &rec.Info, nil
}

func (s *FileStore) Load(ctx context.Context, name string) (*bom.SetSnapshot, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := s.read(name)
	if err != nil {
		return nil, err
	}
	return rec.Snapshot, nil
}

func (s *FileStore) List(ctx context.Context) ([]WorkspaceInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, errors.Storage("read storage", err)
	}

	var infos []WorkspaceInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		rec, err := s.read(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			return nil, err
		}
		infos = append(infos, rec.Info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(name)); err != nil {
		if os.IsNotExist(err) {
			return errors.NotFound("workspace", name)
		}
		return errors.Storage("delete workspace", err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
