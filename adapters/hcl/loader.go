// Package hcl loads bill-of-materials definitions written in HCL.
//
// A definition file holds product blocks, each with nested material blocks:
//
//	product "Chair" {
//	  offset  = 10
//	  tags    = ["furniture"]
//	  active  = ["Metal Leg"]
//
//	  material "Wood" {
//	    cost = 20
//	    xor  = ["Leg"]
//	  }
//	  material "Metal Leg" {
//	    cost = 5
//	    xor  = ["Leg"]
//	  }
//	}
package hcl

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"go.uber.org/zap"

	"bomcost/core/bom"
	"bomcost/internal/errors"
	"bomcost/internal/logging"
)

// Extension is the file suffix picked up by LoadDir
const Extension = ".bom.hcl"

type definitionFile struct {
	Products []productBlock `hcl:"product,block"`
}

type productBlock struct {
	Name      string          `hcl:"name,label"`
	Notes     *string         `hcl:"notes,optional"`
	Offset    *float64        `hcl:"offset,optional"`
	Tags      []string        `hcl:"tags,optional"`
	Version   *string         `hcl:"version,optional"`
	Active    []string        `hcl:"active,optional"`
	Materials []materialBlock `hcl:"material,block"`
}

type materialBlock struct {
	Name   string   `hcl:"name,label"`
	Notes  *string  `hcl:"notes,optional"`
	Cost   *float64 `hcl:"cost,optional"`
	Offset *float64 `hcl:"offset,optional"`
	Tags   []string `hcl:"tags,optional"`
	XOR    []string `hcl:"xor,optional"`
}

// Loader parses definition files into a ProductSet
type Loader struct{}

// NewLoader creates a new HCL loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadFile parses path and creates its products in set
func (l *Loader) LoadFile(path string, set *bom.ProductSet) ([]*bom.Product, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeInput, err, "read definition %s", path)
	}
	return l.Load(src, path, set)
}

// LoadDir loads every *.bom.hcl file under dir in lexical path order.
// A failing file discards the products of the files loaded before it.
func (l *Loader) LoadDir(dir string, set *bom.ProductSet) ([]*bom.Product, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(path, Extension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(errors.TypeInput, err, "walk %s", dir)
	}
	sort.Strings(files)

	var products []*bom.Product
	for _, file := range files {
		ps, err := l.LoadFile(file, set)
		if err != nil {
			for _, p := range products {
				set.DiscardProduct(p)
			}
			return nil, err
		}
		products = append(products, ps...)
	}
	return products, nil
}

// Load parses src and creates its products in set. On error, every product
// created by this call is discarded again; the uids it issued stay consumed.
func (l *Loader) Load(src []byte, filename string, set *bom.ProductSet) ([]*bom.Product, error) {
	// hclparse caches files by name, so each call gets its own parser
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diagnosticsError(filename, diags)
	}

	var def definitionFile
	if diags := gohcl.DecodeBody(file.Body, nil, &def); diags.HasErrors() {
		return nil, diagnosticsError(filename, diags)
	}

	products := make([]*bom.Product, 0, len(def.Products))
	for _, pb := range def.Products {
		p := set.CreateProduct(pb.Name)
		products = append(products, p)
		if err := buildProduct(set, p, pb); err != nil {
			for _, created := range products {
				set.DiscardProduct(created)
			}
			return nil, errors.Wrapf(errors.TypeInput, err, "%s: product %q", filename, pb.Name)
		}
	}

	logging.Debug("loaded definitions",
		zap.String("file", filename),
		zap.Int("products", len(products)),
	)
	return products, nil
}

func buildProduct(set *bom.ProductSet, p *bom.Product, pb productBlock) error {
	if pb.Notes != nil {
		p.SetNotes(*pb.Notes)
	}
	if pb.Offset != nil {
		p.SetCostOffset(*pb.Offset)
	}
	if pb.Version != nil {
		p.SetVersion(*pb.Version)
	}
	p.AddTags(pb.Tags...)

	byName := make(map[string]*bom.Material, len(pb.Materials))
	for _, mb := range pb.Materials {
		if _, dup := byName[mb.Name]; dup {
			return errors.Newf(errors.TypeInput, "duplicate material %q", mb.Name)
		}
		m := buildMaterial(set, mb)
		byName[mb.Name] = m
		p.AddMaterials(m)
		for _, group := range mb.XOR {
			p.EnableXOR(m, group)
		}
	}

	for _, name := range pb.Active {
		m, ok := byName[name]
		if !ok {
			return errors.NotFound("material", name)
		}
		if err := p.SetXORActive(m); err != nil {
			return err
		}
	}
	return nil
}

func buildMaterial(set *bom.ProductSet, mb materialBlock) *bom.Material {
	m := set.CreateMaterial(mb.Name)
	if mb.Notes != nil {
		m.SetNotes(*mb.Notes)
	}
	switch {
	case mb.Cost != nil && mb.Offset != nil:
		m.SetCostWithOffset(*mb.Cost, *mb.Offset)
	case mb.Cost != nil:
		m.SetCost(*mb.Cost)
	case mb.Offset != nil:
		m.SetCostOffset(*mb.Offset)
	}
	m.AddTags(mb.Tags...)
	return m
}

func diagnosticsError(filename string, diags hcl.Diagnostics) error {
	var msgs []string
	for _, diag := range diags {
		if diag.Severity != hcl.DiagError {
			continue
		}
		line := 0
		if diag.Subject != nil {
			line = diag.Subject.Start.Line
		}
		msgs = append(msgs, fmt.Sprintf("%s:%d: %s: %s", filename, line, diag.Summary, diag.Detail))
	}
	return errors.Parsing(strings.Join(msgs, "; "), diags)
}
