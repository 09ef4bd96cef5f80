package bom

import (
	"fmt"
	"slices"

	"bomcost/internal/errors"
)

// Product is a cost-bearing entity composed of Materials. Its cost is the
// offset plus the contribution of every attached material that is not an
// inactive XOR alternative.
type Product struct {
	CostBearing
	materials  map[UID]*Material
	xorGroups  map[string]*XORGroup
	xorEnabled map[UID]struct{}
	version    string
	diag       DiagnosticSink
}

func newProduct(uid UID, name, notes string, diag DiagnosticSink) *Product {
	return &Product{
		CostBearing: newCostBearing(newIdentity(uid, name, notes)),
		materials:   make(map[UID]*Material),
		xorGroups:   make(map[string]*XORGroup),
		xorEnabled:  make(map[UID]struct{}),
		diag:        diag,
	}
}

// Version returns the optional version tag
func (p *Product) Version() string { return p.version }

// SetVersion sets the version tag
func (p *Product) SetVersion(v string) { p.version = v }

// AddMaterials attaches materials keyed by their own uid. Re-adding replaces.
func (p *Product) AddMaterials(materials ...*Material) {
	for _, m := range materials {
		p.materials[m.UID()] = m
	}
}

// RemoveMaterials detaches materials. Absent materials are ignored. Every
// XOR reference to a removed material is dropped with it, so groups never
// hold members that are not attached through this call path.
func (p *Product) RemoveMaterials(materials ...*Material) {
	for _, m := range materials {
		uid := m.UID()
		delete(p.materials, uid)
		for _, g := range p.xorGroups {
			g.remove(uid)
		}
		delete(p.xorEnabled, uid)
	}
}

// Material returns the attached material with the given uid
func (p *Product) Material(uid UID) (*Material, bool) {
	m, ok := p.materials[uid]
	return m, ok
}

// Materials returns attached materials ordered by uid
func (p *Product) Materials() []*Material {
	out := make([]*Material, 0, len(p.materials))
	for _, uid := range p.materialUIDs() {
		out = append(out, p.materials[uid])
	}
	return out
}

func (p *Product) materialUIDs() []UID {
	uids := make([]UID, 0, len(p.materials))
	for uid := range p.materials {
		uids = append(uids, uid)
	}
	slices.Sort(uids)
	return uids
}

// EnableXOR adds material to the group named group, creating the group on
// first use. A material may be enabled in several groups; each tracks its
// own selection.
func (p *Product) EnableXOR(material *Material, group string) {
	g, ok := p.xorGroups[group]
	if !ok {
		g = newXORGroup(group)
		p.xorGroups[group] = g
	}
	g.members[material.UID()] = struct{}{}
	p.xorEnabled[material.UID()] = struct{}{}
}

// DisableXOR removes each material from every group it belongs to. It fails
// with NOT_FOUND, leaving the product unchanged, if any material is not
// XOR-enabled here.
func (p *Product) DisableXOR(materials ...*Material) error {
	for _, m := range materials {
		if !p.IsXOREnabled(m) {
			return errors.NotFound("xor-enabled material", describe(m)).
				WithContext("product", p.Name())
		}
	}
	for _, m := range materials {
		uid := m.UID()
		for _, g := range p.xorGroups {
			g.remove(uid)
		}
		if !p.inAnyGroup(uid) {
			delete(p.xorEnabled, uid)
		}
	}
	return nil
}

func (p *Product) inAnyGroup(uid UID) bool {
	for _, g := range p.xorGroups {
		if g.Has(uid) {
			return true
		}
	}
	return false
}

// SetXORActive makes material the active selection of every group that
// contains it. Because membership is per group, a material shared by two
// groups becomes active in both at once.
func (p *Product) SetXORActive(material *Material) error {
	if !p.IsXOREnabled(material) {
		return errors.Precondition(fmt.Sprintf("XOR not enabled for %s", describe(material))).
			WithContext("product", p.Name())
	}
	uid := material.UID()
	for _, g := range p.xorGroups {
		if g.Has(uid) {
			active := uid
			g.active = &active
		}
	}
	return nil
}

// IsXOREnabled reports whether material is subject to XOR exclusivity here
func (p *Product) IsXOREnabled(material *Material) bool {
	_, ok := p.xorEnabled[material.UID()]
	return ok
}

// MaterialIsActive reports whether material is the active selection of at least one group
func (p *Product) MaterialIsActive(material *Material) bool {
	return p.uidIsActive(material.UID())
}

func (p *Product) uidIsActive(uid UID) bool {
	for _, g := range p.xorGroups {
		if g.active != nil && *g.active == uid {
			return true
		}
	}
	return false
}

// XORGroup returns the group with the given name
func (p *Product) XORGroup(name string) (*XORGroup, bool) {
	g, ok := p.xorGroups[name]
	return g, ok
}

// XORGroups returns groups ordered by name
func (p *Product) XORGroups() []*XORGroup {
	names := make([]string, 0, len(p.xorGroups))
	for name := range p.xorGroups {
		names = append(names, name)
	}
	slices.Sort(names)
	out := make([]*XORGroup, 0, len(names))
	for _, name := range names {
		out = append(out, p.xorGroups[name])
	}
	return out
}

// XOREnabledUIDs returns the uids subject to XOR exclusivity in ascending order
func (p *Product) XOREnabledUIDs() []UID {
	out := make([]UID, 0, len(p.xorEnabled))
	for uid := range p.xorEnabled {
		out = append(out, uid)
	}
	slices.Sort(out)
	return out
}

// TotalCost recomputes the product's cost from scratch and stores the
// result in the product's own cost field.
func (p *Product) TotalCost() float64 {
	return p.Breakdown().Total
}

// Breakdown walks the attached materials in uid order and reports how each
// one was treated. The total is cached in the product's cost field.
func (p *Product) Breakdown() *CostBreakdown {
	base, _ := p.CostOffset()
	b := &CostBreakdown{
		ProductUID: p.UID(),
		Product:    p.Name(),
		Base:       base,
		Lines:      make([]CostLine, 0, len(p.materials)),
	}
	total := base

	for _, uid := range p.materialUIDs() {
		m := p.materials[uid]
		line := CostLine{MaterialUID: uid, Material: m.Name()}

		_, gated := p.xorEnabled[uid]
		if gated && !p.uidIsActive(uid) {
			line.Status = LineExcluded
		} else if amount, ok := m.contribution(); ok {
			line.Status = LineIncluded
			line.Amount = amount
			total += amount
		} else {
			line.Status = LineUnpriced
			p.report(m)
		}
		b.Lines = append(b.Lines, line)
	}

	b.Total = total
	p.SetCost(total)
	return b
}

func (p *Product) report(m *Material) {
	sink := p.diag
	if sink == nil {
		sink = LoggerSink{}
	}
	sink.Report(Diagnostic{
		ProductUID:  p.UID(),
		Product:     p.Name(),
		MaterialUID: m.UID(),
		Material:    m.Name(),
		Message:     fmt.Sprintf("cost not set for %s; skipping", m.Name()),
	})
}

func describe(m *Material) string {
	return fmt.Sprintf("%s (uid %d)", m.Name(), m.UID())
}
