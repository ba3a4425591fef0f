package ontology

import (
	"sort"
)

// SortModels sorts models by ascending score. Models sharing a score keep their order.
func SortModels(models []*Model) {
	sort.SliceStable(models, func(i, j int) bool {
		return models[i].Less(models[j])
	})
}

// Ranks returns the 1-based rank of every model, by ascending score with ties
// broken by position.
func Ranks(models []*Model) []int {
	order := make([]int, len(models))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return models[order[i]].Less(models[order[j]])
	})
	ranks := make([]int, len(models))
	for pos, idx := range order {
		ranks[idx] = pos + 1
	}
	return ranks
}
