package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bomcost/core/bom"
	"bomcost/internal/errors"
)

func openStores(t *testing.T) map[Backend]Store {
	t.Helper()
	dir := t.TempDir()

	stores := map[Backend]Store{}
	for backend, path := range map[Backend]string{
		BackendSQLite: filepath.Join(dir, "db", "bomcost.db"),
		BackendFile:   filepath.Join(dir, "files"),
		BackendMemory: "",
	} {
		s, err := Open(backend, path)
		require.NoError(t, err, "open %s", backend)
		t.Cleanup(func() { _ = s.Close() })
		stores[backend] = s
	}
	return stores
}

func chairSnapshot(t *testing.T) *bom.SetSnapshot {
	t.Helper()
	set := bom.NewProductSet("workshop", bom.WithDiagnostics(bom.DiagnosticFunc(func(bom.Diagnostic) {})))
	chair := set.CreateProduct("Chair")
	chair.SetCostOffset(10)
	wood := set.CreateMaterial("Wood")
	wood.SetCost(20)
	metal := set.CreateMaterial("Metal Leg")
	metal.SetCost(5)
	chair.AddMaterials(wood, metal)
	chair.EnableXOR(wood, "Leg")
	chair.EnableXOR(metal, "Leg")
	require.NoError(t, chair.SetXORActive(metal))
	return set.Snapshot()
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for backend, store := range openStores(t) {
		t.Run(string(backend), func(t *testing.T) {
			snap := chairSnapshot(t)

			info, err := store.Save(ctx, "workshop", snap)
			require.NoError(t, err)
			assert.NotEmpty(t, info.ID)
			assert.Equal(t, 1, info.Products)
			assert.Equal(t, snap.UIDIndex, info.UIDIndex)

			loaded, err := store.Load(ctx, "workshop")
			require.NoError(t, err)
			if diff := cmp.Diff(snap, loaded, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("snapshot mismatch (-saved +loaded):\n%s", diff)
			}

			set, err := bom.Restore(loaded)
			require.NoError(t, err)
			assert.Equal(t, 15.0, set.Products()[0].TotalCost())
		})
	}
}

func TestStoreKeepsIDAcrossSaves(t *testing.T) {
	ctx := context.Background()
	for backend, store := range openStores(t) {
		t.Run(string(backend), func(t *testing.T) {
			first, err := store.Save(ctx, "ws", chairSnapshot(t))
			require.NoError(t, err)
			second, err := store.Save(ctx, "ws", chairSnapshot(t))
			require.NoError(t, err)
			assert.Equal(t, first.ID, second.ID)

			other, err := store.Save(ctx, "another", chairSnapshot(t))
			require.NoError(t, err)
			assert.NotEqual(t, first.ID, other.ID)

			infos, err := store.List(ctx)
			require.NoError(t, err)
			require.Len(t, infos, 2)
			assert.Equal(t, "another", infos[0].Name)
			assert.Equal(t, "ws", infos[1].Name)
		})
	}
}

func TestStoreNotFound(t *testing.T) {
	ctx := context.Background()
	for backend, store := range openStores(t) {
		t.Run(string(backend), func(t *testing.T) {
			_, err := store.Load(ctx, "missing")
			assert.True(t, errors.IsType(err, errors.TypeNotFound), "load: %v", err)

			err = store.Delete(ctx, "missing")
			assert.True(t, errors.IsType(err, errors.TypeNotFound), "delete: %v", err)

			_, err = store.Save(ctx, "gone", chairSnapshot(t))
			require.NoError(t, err)
			require.NoError(t, store.Delete(ctx, "gone"))
			_, err = store.Load(ctx, "gone")
			assert.True(t, errors.IsType(err, errors.TypeNotFound))
		})
	}
}

func TestInvalidWorkspaceName(t *testing.T) {
	ctx := context.Background()
	for backend, store := range openStores(t) {
		t.Run(string(backend), func(t *testing.T) {
			for _, name := range []string{"", "../escape", `a\b`} {
				_, err := store.Save(ctx, name, chairSnapshot(t))
				assert.True(t, errors.IsType(err, errors.TypeInput), "name %q: %v", name, err)
			}
		})
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("s3", "")
	assert.True(t, errors.IsType(err, errors.TypeConfig))
}
