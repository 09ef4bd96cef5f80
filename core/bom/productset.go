package bom

import (
	"slices"

	"bomcost/internal/errors"
)

// ProductSet is the registry for one costing workspace. It is the only
// source of uids for the entities it creates; uids increase monotonically
// and are never reused, even after DiscardProduct.
type ProductSet struct {
	name     string
	uidIndex UID
	products map[UID]*Product
	diag     DiagnosticSink
}

// Option configures a ProductSet
type Option func(*ProductSet)

// WithDiagnostics routes cost-accumulation diagnostics of every product in the set to sink
func WithDiagnostics(sink DiagnosticSink) Option {
	return func(s *ProductSet) {
		s.diag = sink
	}
}

// NewProductSet creates an empty registry whose first uid is 0
func NewProductSet(name string, opts ...Option) *ProductSet {
	s := &ProductSet{
		name:     name,
		products: make(map[UID]*Product),
		diag:     LoggerSink{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the workspace name
func (s *ProductSet) Name() string { return s.name }

// UIDIndex returns the next uid that will be issued
func (s *ProductSet) UIDIndex() UID { return s.uidIndex }

func (s *ProductSet) nextUID() UID {
	uid := s.uidIndex
	s.uidIndex++
	return uid
}

// CreateProduct registers a new empty product
func (s *ProductSet) CreateProduct(name string) *Product {
	p := newProduct(s.nextUID(), name, "", s.diag)
	s.products[p.UID()] = p
	return p
}

// CreateMaterial returns a new material. It is not attached to any product.
func (s *ProductSet) CreateMaterial(name string) *Material {
	return newMaterial(s.nextUID(), name, "")
}

// DuplicateProduct registers a copy of src under a fresh uid. Tags, the
// material mapping, XOR groups and the enabled set are copied so neither
// product's containers alias the other's. The attached Materials themselves
// are shared: both products reference the same material identities.
func (s *ProductSet) DuplicateProduct(src *Product) *Product {
	p := s.CreateProduct(src.Name())
	p.copyCostFrom(&src.CostBearing)
	p.version = src.version
	for uid, m := range src.materials {
		p.materials[uid] = m
	}
	for name, g := range src.xorGroups {
		p.xorGroups[name] = g.clone()
	}
	for uid := range src.xorEnabled {
		p.xorEnabled[uid] = struct{}{}
	}
	return p
}

// DuplicateMaterial returns an unattached copy of src under a fresh uid
func (s *ProductSet) DuplicateMaterial(src *Material) *Material {
	m := s.CreateMaterial(src.Name())
	m.copyCostFrom(&src.CostBearing)
	return m
}

// Product returns the registered product with the given uid
func (s *ProductSet) Product(uid UID) (*Product, error) {
	p, ok := s.products[uid]
	if !ok {
		return nil, errors.NotFound("product", uid.String())
	}
	return p, nil
}

// Products returns registered products ordered by uid
func (s *ProductSet) Products() []*Product {
	uids := make([]UID, 0, len(s.products))
	for uid := range s.products {
		uids = append(uids, uid)
	}
	slices.Sort(uids)
	out := make([]*Product, 0, len(uids))
	for _, uid := range uids {
		out = append(out, s.products[uid])
	}
	return out
}

// DiscardProduct unregisters p. Its uid is not issued again.
func (s *ProductSet) DiscardProduct(p *Product) {
	delete(s.products, p.UID())
}
