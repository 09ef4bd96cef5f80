// Package bom implements the bill-of-materials costing engine.
//
// A ProductSet issues identifiers and creates Products and Materials. A
// Product owns a collection of Materials and any number of named XOR
// groups; TotalCost walks the materials, skips alternatives that are not
// the active selection of a group, and sums the rest.
//
// Nothing in this package is safe for concurrent mutation. Callers that
// share a ProductSet between goroutines must serialize every mutating call
// themselves. Read-only calls (TotalCost aside, which refreshes the cached
// cost field) may run concurrently with each other.
package bom

import (
	"slices"
	"strconv"
)

// UID identifies a Product or Material within the ProductSet that created it
type UID int64

// String returns the decimal form of the uid
func (u UID) String() string {
	return strconv.FormatInt(int64(u), 10)
}

// Identity carries the immutable uid and descriptive fields shared by every entity
type Identity struct {
	uid   UID
	name  string
	notes string
}

func newIdentity(uid UID, name, notes string) Identity {
	return Identity{uid: uid, name: name, notes: notes}
}

// UID returns the registry-assigned identifier
func (i *Identity) UID() UID { return i.uid }

// Name returns the display name
func (i *Identity) Name() string { return i.name }

// Notes returns free-form notes, empty when unset
func (i *Identity) Notes() string { return i.notes }

// SetNotes replaces the notes
func (i *Identity) SetNotes(notes string) { i.notes = notes }

// CostBearing adds an optional cost, an optional cost offset and a tag set to Identity.
type CostBearing struct {
	Identity
	cost   *float64
	offset *float64
	tags   map[string]struct{}
}

func newCostBearing(id Identity) CostBearing {
	return CostBearing{Identity: id, tags: make(map[string]struct{})}
}

// SetCost sets the base cost. A previously recorded offset is kept.
func (c *CostBearing) SetCost(amount float64) {
	c.cost = &amount
}

// SetCostWithOffset sets both the base cost and the offset.
// The offset is recorded as given, zero included.
func (c *CostBearing) SetCostWithOffset(amount, offset float64) {
	c.cost = &amount
	c.offset = &offset
}

// SetCostOffset records an offset without touching the base cost. A bare
// offset on a Material contributes nothing; on a Product it seeds TotalCost.
func (c *CostBearing) SetCostOffset(offset float64) {
	c.offset = &offset
}

// ResetCost clears both cost and offset
func (c *CostBearing) ResetCost() {
	c.cost = nil
	c.offset = nil
}

// IsCostSet reports whether a base cost has been recorded
func (c *CostBearing) IsCostSet() bool {
	return c.cost != nil
}

// Cost returns the base cost and whether it is set
func (c *CostBearing) Cost() (float64, bool) {
	if c.cost == nil {
		return 0, false
	}
	return *c.cost, true
}

// CostOffset returns the offset and whether it is set
func (c *CostBearing) CostOffset() (float64, bool) {
	if c.offset == nil {
		return 0, false
	}
	return *c.offset, true
}

// AddTags unions tags into the tag set
func (c *CostBearing) AddTags(tags ...string) {
	if c.tags == nil {
		c.tags = make(map[string]struct{}, len(tags))
	}
	for _, t := range tags {
		c.tags[t] = struct{}{}
	}
}

// HasTag reports whether tag is present
func (c *CostBearing) HasTag(tag string) bool {
	_, ok := c.tags[tag]
	return ok
}

// Tags returns the tags in sorted order
func (c *CostBearing) Tags() []string {
	out := make([]string, 0, len(c.tags))
	for t := range c.tags {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// copyCostFrom copies notes, cost, offset and an independent tag set from src.
func (c *CostBearing) copyCostFrom(src *CostBearing) {
	c.notes = src.notes
	c.cost = copyFloat(src.cost)
	c.offset = copyFloat(src.offset)
	c.tags = make(map[string]struct{}, len(src.tags))
	for t := range src.tags {
		c.tags[t] = struct{}{}
	}
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
