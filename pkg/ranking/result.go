package ranking

import "sort"

// EntityScore pairs an entity identifier with its score under one method.
type EntityScore struct {
	Entity string  `json:"entity"`
	Score  float64 `json:"score"`
}

// Result is one method's ranking: entity/score pairs sorted by descending
// score, ties broken by the order in which candidates were supplied. The
// original candidate order is retained so later combination can break ties
// reproducibly.
type Result struct {
	Method string        `json:"method"`
	Scores []EntityScore `json:"scores"`

	input []EntityScore
}

// NewResult builds a ranking from entity/score pairs in scoring order.
func NewResult(method string, input []EntityScore) *Result {
	return newResult(method, input)
}

func newResult(method string, input []EntityScore) *Result {
	ranked := make([]EntityScore, len(input))
	copy(ranked, input)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return &Result{Method: method, Scores: ranked, input: input}
}

// RankedEntities returns the entity identifiers best first.
func (r *Result) RankedEntities() []string {
	entities := make([]string, len(r.Scores))
	for i, s := range r.Scores {
		entities[i] = s.Entity
	}
	return entities
}

// InputOrder returns the entity/score pairs in the order candidates were
// supplied for scoring.
func (r *Result) InputOrder() []EntityScore {
	return r.input
}

// Len returns the number of ranked entities.
func (r *Result) Len() int {
	return len(r.Scores)
}
