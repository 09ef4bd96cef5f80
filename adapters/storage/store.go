// Package storage persists costing workspaces.
// Supports multiple backends: SQLite, JSON files, memory.
package storage

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"bomcost/core/bom"
	"bomcost/internal/errors"
)

// Backend is a storage backend type
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendFile   Backend = "file"
	BackendMemory Backend = "memory"
)

// Store is the storage interface
type Store interface {
	// Save writes the snapshot under name, creating the workspace if needed
	Save(ctx context.Context, name string, snap *bom.SetSnapshot) (*WorkspaceInfo, error)

	// Load returns the snapshot stored under name
	Load(ctx context.Context, name string) (*bom.SetSnapshot, error)

	// List returns every stored workspace ordered by name
	List(ctx context.Context) ([]WorkspaceInfo, error)

	// Delete removes a workspace
	Delete(ctx context.Context, name string) error

	// Close closes the store
	Close() error
}

// WorkspaceInfo summarises a stored workspace
type WorkspaceInfo struct {
	// ID is assigned on first save and kept across later saves
	ID string `json:"id"`

	// Name is the lookup key
	Name string `json:"name"`

	// Products is the number of registered products
	Products int `json:"products"`

	// UIDIndex is the next uid the restored registry will issue
	UIDIndex bom.UID `json:"uid_index"`

	// UpdatedAt is the time of the last save
	UpdatedAt time.Time `json:"updated_at"`
}

// record is the persisted form shared by the file and memory backends
type record struct {
	Info     WorkspaceInfo    `json:"info"`
	Snapshot *bom.SetSnapshot `json:"snapshot"`
}

// Open creates a store for backend rooted at path
func Open(backend Backend, path string) (Store, error) {
	switch backend {
	case BackendSQLite:
		s, err := NewSQLiteStore(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendFile:
		s, err := NewFileStore(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, errors.Newf(errors.TypeConfig, "unknown storage backend %q", backend)
	}
}

func validateName(name string) error {
	if name == "" {
		return errors.Input("workspace name is empty")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return errors.Newf(errors.TypeInput, "invalid workspace name %q", name)
	}
	return nil
}

func newInfo(prevID, name string, snap *bom.SetSnapshot) WorkspaceInfo {
	id := prevID
	if id == "" {
		id = uuid.New().String()
	}
	return WorkspaceInfo{
		ID:        id,
		Name:      name,
		Products:  len(snap.Products),
		UIDIndex:  snap.UIDIndex,
		UpdatedAt: time.Now().UTC(),
	}
}
