package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"bomcost/core/bom"
	"bomcost/internal/errors"
	"bomcost/internal/logging"
)

// SQLiteStore keeps each workspace as one row holding a JSON snapshot.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (or creates) the database at path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "bomcost.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, errors.Storage("create dirs", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Storage("open sqlite", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS workspaces (
		name       TEXT PRIMARY KEY,
		id         TEXT NOT NULL,
		products   INTEGER NOT NULL,
		uid_index  INTEGER NOT NULL,
		updated_at TEXT NOT NULL,
		payload    BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, errors.Storage("create workspaces table", err)
	}
	logging.Debug("opened sqlite store", zap.String("path", path))
	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, name string, snap *bom.SetSnapshot) (*WorkspaceInfo, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return nil, errors.Storage("encode workspace", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Storage("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	var prevID string
	err = tx.QueryRowContext(ctx, `SELECT id FROM workspaces WHERE name = ?`, name).Scan(&prevID)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.Storage("lookup workspace", err)
	}

	info := newInfo(prevID, name, snap)
	if _, err := tx.ExecContext(ctx, `INSERT INTO workspaces(name, id, products, uid_index, updated_at, payload)
		VALUES(?,?,?,?,?,?)
		ON CONFLICT(name) DO UPDATE SET products=excluded.products, uid_index=excluded.uid_index,
			updated_at=excluded.updated_at, payload=excluded.payload`,
		name, info.ID, info.Products, int64(info.UIDIndex), info.UpdatedAt.Format(time.RFC3339Nano), payload); err != nil {
		return nil, errors.Storage("upsert workspace", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.Storage("commit", err)
	}
	return &info, nil
}

func (s *SQLiteStore) Load(ctx context.Context, name string) (*bom.SetSnapshot, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM workspaces WHERE name = ?`, name).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("workspace", name)
	}
	if err != nil {
		return nil, errors.Storage("select workspace", err)
	}
	var snap bom.SetSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, errors.Storage("decode workspace "+name, err)
	}
	return &snap, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]WorkspaceInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, id, products, uid_index, updated_at FROM workspaces ORDER BY name`)
	if err != nil {
		return nil, errors.Storage("select workspaces", err)
	}
	defer func() { _ = rows.Close() }()

	var infos []WorkspaceInfo
	for rows.Next() {
		var (
			info      WorkspaceInfo
			uidIndex  int64
			updatedAt string
		)
		if err := rows.Scan(&info.Name, &info.ID, &info.Products, &uidIndex, &updatedAt); err != nil {
			return nil, errors.Storage("scan", err)
		}
		info.UIDIndex = bom.UID(uidIndex)
		if info.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
			return nil, errors.Storage("parse updated_at", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("iterate workspaces", err)
	}
	return infos, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM workspaces WHERE name = ?`, name)
	if err != nil {
		return errors.Storage("delete workspace", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NotFound("workspace", name)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the configured database path.
func (s *SQLiteStore) Path() string { return s.path }
