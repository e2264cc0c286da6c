package core

import "fmt"

// Catalog is the fixed, ordered fund table. It is built once and never mutated;
// accessors hand out copies.
type Catalog struct {
	funds      []FundRecord
	byName     map[string]int
	categories []Category
}

// NewCatalog builds a catalog, rejecting empty or duplicate fund names.
func NewCatalog(funds []FundRecord) (*Catalog, error) {
	c := &Catalog{
		funds:  make([]FundRecord, 0, len(funds)),
		byName: make(map[string]int, len(funds)),
	}
	seen := map[Category]struct{}{}
	for _, f := range funds {
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("fund %q: %w", f.Name, err)
		}
		if _, dup := c.byName[f.Name]; dup {
			return nil, fmt.Errorf("fund %q: %w", f.Name, ErrDuplicateFund)
		}
		c.byName[f.Name] = len(c.funds)
		c.funds = append(c.funds, f)
		if _, ok := seen[f.Category]; !ok {
			seen[f.Category] = struct{}{}
			c.categories = append(c.categories, f.Category)
		}
	}
	return c, nil
}

// DefaultFunds is the sample table shipped with the dashboard.
func DefaultFunds() []FundRecord {
	return []FundRecord{
		{Name: "Hdfc", Category: Equity, Return1Y: 12.5, Return3Y: 10.2, Return5Y: 11.1},
		{Name: "Tata Elexi", Category: Debt, Return1Y: 7.0, Return3Y: 6.5, Return5Y: 6.0},
		{Name: "Adani Port", Category: Hybrid, Return1Y: 9.5, Return3Y: 8.1, Return5Y: 7.8},
		{Name: "Hal", Category: Equity, Return1Y: 15.2, Return3Y: 14.0, Return5Y: 13.5},
	}
}

// DefaultCatalog returns the catalog built from DefaultFunds.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultFunds())
	if err != nil {
		panic(fmt.Sprintf("default catalog: %v", err))
	}
	return c
}

// Funds returns all records in catalog order.
func (c *Catalog) Funds() []FundRecord {
	return append([]FundRecord(nil), c.funds...)
}

// Names returns fund names in catalog order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.funds))
	for i, f := range c.funds {
		out[i] = f.Name
	}
	return out
}

// Categories returns the distinct categories in first-seen order.
func (c *Catalog) Categories() []Category {
	return append([]Category(nil), c.categories...)
}

// HasCategory reports whether name is one of the catalog's categories.
func (c *Catalog) HasCategory(name string) bool {
	for _, cat := range c.categories {
		if string(cat) == name {
			return true
		}
	}
	return false
}

// Lookup finds a fund by exact name.
func (c *Catalog) Lookup(name string) (FundRecord, error) {
	i, ok := c.byName[name]
	if !ok {
		return FundRecord{}, fmt.Errorf("%q: %w", name, ErrFundNotFound)
	}
	return c.funds[i], nil
}

// Len returns the number of funds.
func (c *Catalog) Len() int {
	return len(c.funds)
}

// Filter applies criteria to the catalog.
func (c *Catalog) Filter(criteria FilterCriteria) []FundRecord {
	return Filter(c.funds, criteria)
}
