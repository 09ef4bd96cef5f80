package bom

// LineStatus says how a material was treated during accumulation
type LineStatus string

const (
	// LineIncluded means cost plus offset was added to the total
	LineIncluded LineStatus = "included"

	// LineExcluded means the material is an inactive XOR alternative
	LineExcluded LineStatus = "xor-excluded"

	// LineUnpriced means the material has no cost set and was skipped
	LineUnpriced LineStatus = "cost-not-set"
)

// CostLine is one material's share of a product's cost
type CostLine struct {
	MaterialUID UID        `json:"material_uid"`
	Material    string     `json:"material"`
	Status      LineStatus `json:"status"`
	Amount      float64    `json:"amount"`
}

// CostBreakdown is the result of one accumulation pass
type CostBreakdown struct {
	ProductUID UID        `json:"product_uid"`
	Product    string     `json:"product"`
	Base       float64    `json:"base"`
	Lines      []CostLine `json:"lines"`
	Total      float64    `json:"total"`
}

// Count returns how many lines carry status s
func (b *CostBreakdown) Count(s LineStatus) int {
	n := 0
	for _, l := range b.Lines {
		if l.Status == s {
			n++
		}
	}
	return n
}
