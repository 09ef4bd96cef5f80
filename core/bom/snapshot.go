package bom

import (
	"fmt"
	"slices"

	"bomcost/internal/errors"
)

// SetSnapshot is the serialisable state of a ProductSet. It carries
// UIDIndex so identifiers stay unique across save/load cycles.
type SetSnapshot struct {
	Name     string            `json:"name"`
	UIDIndex UID               `json:"uid_index"`
	Products []ProductSnapshot `json:"products"`
}

// ProductSnapshot is the serialisable state of a Product
type ProductSnapshot struct {
	UID        UID                `json:"uid"`
	Name       string             `json:"name"`
	Notes      string             `json:"notes,omitempty"`
	Cost       *float64           `json:"cost,omitempty"`
	CostOffset *float64           `json:"cost_offset,omitempty"`
	Tags       []string           `json:"tags,omitempty"`
	Version    string             `json:"version,omitempty"`
	Materials  []MaterialSnapshot `json:"materials,omitempty"`
	XORGroups  []XORGroupSnapshot `json:"xor_groups,omitempty"`
	XOREnabled []UID              `json:"xor_enabled,omitempty"`
}

// MaterialSnapshot is the serialisable state of a Material
type MaterialSnapshot struct {
	UID        UID      `json:"uid"`
	Name       string   `json:"name"`
	Notes      string   `json:"notes,omitempty"`
	Cost       *float64 `json:"cost,omitempty"`
	CostOffset *float64 `json:"cost_offset,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// XORGroupSnapshot is the serialisable state of an XORGroup
type XORGroupSnapshot struct {
	Name    string `json:"name"`
	Members []UID  `json:"members"`
	Active  *UID   `json:"active,omitempty"`
}

// Snapshot captures the registry and every registered product
func (s *ProductSet) Snapshot() *SetSnapshot {
	snap := &SetSnapshot{Name: s.name, UIDIndex: s.uidIndex}
	for _, p := range s.Products() {
		snap.Products = append(snap.Products, p.snapshot())
	}
	return snap
}

func (p *Product) snapshot() ProductSnapshot {
	ps := ProductSnapshot{
		UID:        p.UID(),
		Name:       p.Name(),
		Notes:      p.Notes(),
		Cost:       copyFloat(p.cost),
		CostOffset: copyFloat(p.offset),
		Tags:       p.Tags(),
		Version:    p.version,
		XOREnabled: p.XOREnabledUIDs(),
	}
	for _, m := range p.Materials() {
		ps.Materials = append(ps.Materials, MaterialSnapshot{
			UID:        m.UID(),
			Name:       m.Name(),
			Notes:      m.Notes(),
			Cost:       copyFloat(m.cost),
			CostOffset: copyFloat(m.offset),
			Tags:       m.Tags(),
		})
	}
	for _, g := range p.XORGroups() {
		gs := XORGroupSnapshot{Name: g.Name(), Members: g.Members()}
		if active, ok := g.Active(); ok {
			gs.Active = &active
		}
		ps.XORGroups = append(ps.XORGroups, gs)
	}
	return ps
}

// Restore rebuilds a ProductSet from snap. Materials that appear under the
// same uid in several products are restored as one shared Material, which
// is how duplicated products reference their materials.
func Restore(snap *SetSnapshot, opts ...Option) (*ProductSet, error) {
	if snap == nil {
		return nil, errors.Input("nil snapshot")
	}
	s := NewProductSet(snap.Name, opts...)
	s.uidIndex = snap.UIDIndex

	shared := make(map[UID]*Material)
	for i := range snap.Products {
		ps := &snap.Products[i]
		if err := s.checkUID(ps.UID, "product "+ps.Name); err != nil {
			return nil, err
		}
		if _, dup := s.products[ps.UID]; dup {
			return nil, errors.Newf(errors.TypeInput, "duplicate product uid %d", ps.UID)
		}
		if _, clash := shared[ps.UID]; clash {
			return nil, errors.Newf(errors.TypeInput, "uid %d used by both a product and a material", ps.UID)
		}

		p := newProduct(ps.UID, ps.Name, ps.Notes, s.diag)
		p.cost = copyFloat(ps.Cost)
		p.offset = copyFloat(ps.CostOffset)
		p.AddTags(ps.Tags...)
		p.version = ps.Version

		for _, ms := range ps.Materials {
			m, err := s.restoreMaterial(shared, ms)
			if err != nil {
				return nil, err
			}
			p.materials[m.UID()] = m
		}
		if err := restoreGroups(p, ps); err != nil {
			return nil, err
		}
		s.products[p.UID()] = p
	}
	for uid := range shared {
		if _, clash := s.products[uid]; clash {
			return nil, errors.Newf(errors.TypeInput, "uid %d used by both a product and a material", uid)
		}
	}
	return s, nil
}

func (s *ProductSet) checkUID(uid UID, what string) error {
	if uid < 0 || uid >= s.uidIndex {
		return errors.Newf(errors.TypeInput, "%s has uid %d outside issued range [0,%d)", what, uid, s.uidIndex)
	}
	return nil
}

func (s *ProductSet) restoreMaterial(shared map[UID]*Material, ms MaterialSnapshot) (*Material, error) {
	if m, ok := shared[ms.UID]; ok {
		return m, nil
	}
	if err := s.checkUID(ms.UID, "material "+ms.Name); err != nil {
		return nil, err
	}
	m := newMaterial(ms.UID, ms.Name, ms.Notes)
	m.cost = copyFloat(ms.Cost)
	m.offset = copyFloat(ms.CostOffset)
	m.AddTags(ms.Tags...)
	shared[ms.UID] = m
	return m, nil
}

func restoreGroups(p *Product, ps *ProductSnapshot) error {
	for _, gs := range ps.XORGroups {
		if _, dup := p.xorGroups[gs.Name]; dup {
			return errors.Newf(errors.TypeInput, "product %s: duplicate xor group %q", ps.Name, gs.Name)
		}
		g := newXORGroup(gs.Name)
		for _, uid := range gs.Members {
			g.members[uid] = struct{}{}
		}
		if gs.Active != nil {
			if !g.Has(*gs.Active) {
				return errors.Newf(errors.TypeInput, "product %s: xor group %q active uid %d is not a member", ps.Name, gs.Name, *gs.Active)
			}
			active := *gs.Active
			g.active = &active
		}
		p.xorGroups[g.name] = g
	}
	for _, uid := range ps.XOREnabled {
		if !p.inAnyGroup(uid) {
			return errors.New(errors.TypeInput,
				fmt.Sprintf("product %s: xor-enabled uid %d is not a member of any group", ps.Name, uid))
		}
		p.xorEnabled[uid] = struct{}{}
	}
	for _, g := range p.xorGroups {
		for uid := range g.members {
			if !slices.Contains(ps.XOREnabled, uid) {
				return errors.Newf(errors.TypeInput, "product %s: xor group %q member %d is not xor-enabled", ps.Name, g.name, uid)
			}
		}
	}
	return nil
}
