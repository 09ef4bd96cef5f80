// Package diff compares cost breakdowns material by material.
package diff

import (
	"sort"

	"github.com/shopspring/decimal"

	"bomcost/core/bom"
)

// ChangeType indicates the type of change
type ChangeType int

const (
	ChangeAdded     ChangeType = iota // material only in the after breakdown
	ChangeRemoved                     // material only in the before breakdown
	ChangeModified                    // status or amount changed
	ChangeUnchanged                   // same status and amount
)

// String returns the change type name
func (c ChangeType) String() string {
	switch c {
	case ChangeAdded:
		return "added"
	case ChangeRemoved:
		return "removed"
	case ChangeModified:
		return "modified"
	case ChangeUnchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

// MaterialDiff describes one material across two breakdowns
type MaterialDiff struct {
	MaterialUID bom.UID
	Material    string
	ChangeType  ChangeType

	// Before and After are nil when the material is absent on that side
	Before *bom.CostLine
	After  *bom.CostLine

	// Delta is the change in contributed amount
	Delta decimal.Decimal
}

// Result is the complete diff between two breakdowns
type Result struct {
	Before      string
	After       string
	TotalBefore decimal.Decimal
	TotalAfter  decimal.Decimal
	TotalDelta  decimal.Decimal
	BaseBefore  decimal.Decimal
	BaseAfter   decimal.Decimal
	BaseDelta   decimal.Decimal

	// DeltaPercent is relative to TotalBefore, zero when TotalBefore is zero
	DeltaPercent float64

	Materials []*MaterialDiff
}

// Count returns how many materials have change type c
func (r *Result) Count(c ChangeType) int {
	n := 0
	for _, m := range r.Materials {
		if m.ChangeType == c {
			n++
		}
	}
	return n
}

// Compare diffs before against after. Materials are matched by uid, so a
// product and its duplicate line up material for material.
func Compare(before, after *bom.CostBreakdown) *Result {
	r := &Result{
		Before:      before.Product,
		After:       after.Product,
		TotalBefore: decimal.NewFromFloat(before.Total),
		TotalAfter:  decimal.NewFromFloat(after.Total),
		BaseBefore:  decimal.NewFromFloat(before.Base),
		BaseAfter:   decimal.NewFromFloat(after.Base),
	}
	r.BaseDelta = r.BaseAfter.Sub(r.BaseBefore)
	r.TotalDelta = r.TotalAfter.Sub(r.TotalBefore)
	if !r.TotalBefore.IsZero() {
		r.DeltaPercent = r.TotalDelta.Div(r.TotalBefore).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}

	lines := make(map[bom.UID]*MaterialDiff)
	for i := range before.Lines {
		l := &before.Lines[i]
		lines[l.MaterialUID] = &MaterialDiff{MaterialUID: l.MaterialUID, Material: l.Material, Before: l}
	}
	for i := range after.Lines {
		l := &after.Lines[i]
		d, ok := lines[l.MaterialUID]
		if !ok {
			d = &MaterialDiff{MaterialUID: l.MaterialUID, Material: l.Material}
			lines[l.MaterialUID] = d
		}
		d.After = l
	}

	for _, d := range lines {
		var b, a decimal.Decimal
		if d.Before != nil {
			b = decimal.NewFromFloat(d.Before.Amount)
		}
		if d.After != nil {
			a = decimal.NewFromFloat(d.After.Amount)
		}
		d.Delta = a.Sub(b)

		switch {
		case d.Before == nil:
			d.ChangeType = ChangeAdded
		case d.After == nil:
			d.ChangeType = ChangeRemoved
		case d.Before.Status != d.After.Status || !d.Delta.IsZero():
			d.ChangeType = ChangeModified
		default:
			d.ChangeType = ChangeUnchanged
		}
		r.Materials = append(r.Materials, d)
	}
	sort.Slice(r.Materials, func(i, j int) bool {
		return r.Materials[i].MaterialUID < r.Materials[j].MaterialUID
	})
	return r
}
