package bom

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bomcost/internal/errors"
)

func buildChairSet(t *testing.T) *ProductSet {
	t.Helper()
	set := NewProductSet("workshop", quiet())

	chair := set.CreateProduct("Chair")
	chair.SetCostOffset(10)
	chair.SetNotes("dining")
	chair.AddTags("furniture")
	chair.SetVersion("1")

	wood := set.CreateMaterial("Wood")
	wood.SetCost(20)
	wood.AddTags("timber")
	metal := set.CreateMaterial("Metal Leg")
	metal.SetCostWithOffset(5, 0)
	chair.AddMaterials(wood, metal)
	chair.EnableXOR(wood, "Leg")
	chair.EnableXOR(metal, "Leg")
	require.NoError(t, chair.SetXORActive(metal))

	set.DuplicateProduct(chair)
	return set
}

func TestSnapshotRoundTrip(t *testing.T) {
	set := buildChairSet(t)
	snap := set.Snapshot()

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	var decoded SetSnapshot
	require.NoError(t, json.Unmarshal(data, &decoded))

	restored, err := Restore(&decoded, quiet())
	require.NoError(t, err)

	if diff := cmp.Diff(snap, restored.Snapshot()); diff != "" {
		t.Errorf("snapshot mismatch (-saved +restored):\n%s", diff)
	}
	assert.Equal(t, set.UIDIndex(), restored.UIDIndex())

	products := restored.Products()
	require.Len(t, products, 2)
	assert.Equal(t, 15.0, products[0].TotalCost())

	// both products reference one restored material per uid
	for _, m := range products[0].Materials() {
		other, ok := products[1].Material(m.UID())
		require.True(t, ok)
		assert.Same(t, m, other)
	}

	// fresh uids continue after the saved index
	next := restored.CreateMaterial("Screw")
	assert.Equal(t, set.UIDIndex(), next.UID())
}

func TestSnapshotKeepsZeroOffset(t *testing.T) {
	snap := buildChairSet(t).Snapshot()
	var found bool
	for _, m := range snap.Products[0].Materials {
		if m.Name == "Metal Leg" {
			require.NotNil(t, m.CostOffset)
			assert.Equal(t, 0.0, *m.CostOffset)
			found = true
		}
	}
	assert.True(t, found)
}

func TestRestoreRejectsInconsistentState(t *testing.T) {
	uid := func(u UID) *UID { return &u }

	tests := []struct {
		name   string
		mutate func(s *SetSnapshot)
	}{
		{
			name:   "uid beyond index",
			mutate: func(s *SetSnapshot) { s.UIDIndex = 1 },
		},
		{
			name: "duplicate product uid",
			mutate: func(s *SetSnapshot) {
				s.Products[1].UID = s.Products[0].UID
			},
		},
		{
			name: "active not a member",
			mutate: func(s *SetSnapshot) {
				s.Products[0].XORGroups[0].Active = uid(99)
			},
		},
		{
			name: "enabled without group",
			mutate: func(s *SetSnapshot) {
				s.Products[0].XOREnabled = append(s.Products[0].XOREnabled, 0)
			},
		},
		{
			name: "member not enabled",
			mutate: func(s *SetSnapshot) {
				s.Products[0].XOREnabled = s.Products[0].XOREnabled[:1]
			},
		},
		{
			name: "material uid shared with product",
			mutate: func(s *SetSnapshot) {
				s.Products[0].Materials[0].UID = s.Products[1].UID
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := buildChairSet(t).Snapshot()
			tt.mutate(snap)
			_, err := Restore(snap, quiet())
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.TypeInput), err.Error())
		})
	}
}

func TestRestoreNil(t *testing.T) {
	_, err := Restore(nil)
	assert.True(t, errors.IsType(err, errors.TypeInput))
}
