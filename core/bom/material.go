package bom

// Material is a leaf cost-bearing entity. Create one with ProductSet.CreateMaterial.
type Material struct {
	CostBearing
}

func newMaterial(uid UID, name, notes string) *Material {
	return &Material{CostBearing: newCostBearing(newIdentity(uid, name, notes))}
}

// contribution returns cost plus offset, and false when no base cost is set.
func (m *Material) contribution() (float64, bool) {
	cost, ok := m.Cost()
	if !ok {
		return 0, false
	}
	offset, _ := m.CostOffset()
	return cost + offset, true
}
