package core

import "sort"

// CategoryShare is the number of funds in a category and its share of the catalog.
type CategoryShare struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
	Percent  float64  `json:"percent"`
}

// Distribution counts funds per category, largest first. Ties keep
// first-seen order.
func Distribution(funds []FundRecord) []CategoryShare {
	var (
		order  []Category
		counts = map[Category]int{}
	)
	for _, f := range funds {
		if _, ok := counts[f.Category]; !ok {
			order = append(order, f.Category)
		}
		counts[f.Category]++
	}
	out := make([]CategoryShare, 0, len(order))
	for _, cat := range order {
		out = append(out, CategoryShare{
			Category: cat,
			Count:    counts[cat],
			Percent:  float64(counts[cat]) * 100 / float64(len(funds)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
