package core

// Filter returns every record matching criteria, in input order. An unknown
// category matches nothing; that is an empty result, not an error.
func Filter(funds []FundRecord, criteria FilterCriteria) []FundRecord {
	out := make([]FundRecord, 0, len(funds))
	for _, f := range funds {
		if f.Matches(criteria) {
			out = append(out, f)
		}
	}
	return out
}

// ValidateCriteria checks criteria against a catalog for callers that want an
// explicit error instead of an empty result.
func ValidateCriteria(c *Catalog, criteria FilterCriteria) error {
	if !c.HasCategory(criteria.Category) {
		return ErrInvalidCategory
	}
	if criteria.MinReturn1Y < 0 {
		return ErrInvalidMinReturn
	}
	return nil
}
