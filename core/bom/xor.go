package bom

import "slices"

// XORGroup is a named set of mutually exclusive materials. At most one
// member is active; the others contribute nothing to the product's cost.
// Groups are created and mutated only through Product methods.
type XORGroup struct {
	name    string
	members map[UID]struct{}
	active  *UID
}

func newXORGroup(name string) *XORGroup {
	return &XORGroup{name: name, members: make(map[UID]struct{})}
}

// Name returns the group name, unique within its Product
func (g *XORGroup) Name() string { return g.name }

// Members returns member uids in ascending order
func (g *XORGroup) Members() []UID {
	out := make([]UID, 0, len(g.members))
	for uid := range g.members {
		out = append(out, uid)
	}
	slices.Sort(out)
	return out
}

// Has reports whether uid is a member
func (g *XORGroup) Has(uid UID) bool {
	_, ok := g.members[uid]
	return ok
}

// Active returns the active member and whether one is selected
func (g *XORGroup) Active() (UID, bool) {
	if g.active == nil {
		return 0, false
	}
	return *g.active, true
}

// remove drops uid from members and clears the selection if it was active.
func (g *XORGroup) remove(uid UID) bool {
	if _, ok := g.members[uid]; !ok {
		return false
	}
	delete(g.members, uid)
	if g.active != nil && *g.active == uid {
		g.active = nil
	}
	return true
}

func (g *XORGroup) clone() *XORGroup {
	c := newXORGroup(g.name)
	for uid := range g.members {
		c.members[uid] = struct{}{}
	}
	if g.active != nil {
		a := *g.active
		c.active = &a
	}
	return c
}
