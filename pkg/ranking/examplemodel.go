package ranking

import (
	"fmt"

	"github.com/kgrank/kgrank/pkg/logger"
)

// MethodExamples identifies rankings produced by the example-based model.
const MethodExamples = "examples"

// ScoreExamples ranks candidates by structural overlap with the example
// entities. Two structural tuples match when predicate and direction are
// equal and their non-empty endpoints are equal; an anonymized (empty)
// endpoint is a wildcard that matches any value. The per-pair score is the
// number of candidate tuples matched by the example, optionally divided by
// the size of the union of the two tuple sets (Jaccard-style) to remove the
// bias toward entities with many triples. Per-example scores are aggregated
// with the configured aggregation, sum by default.
//
// This model never consults the collection statistics.
func ScoreExamples(examples []*Representation, candidates []*Representation, cfg Config) (*Result, error) {
	if len(examples) == 0 {
		return nil, fmt.Errorf("%w: no example entities", ErrEmptyQuery)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	indexes := make([]*tupleIndex, len(examples))
	for i, ex := range examples {
		indexes[i] = newTupleIndex(ex)
	}

	logger.Debug("Scoring example model",
		"examples", len(examples), "candidates", len(candidates), "jaccard", cfg.UseJaccard)

	input := make([]EntityScore, len(candidates))
	for i, cand := range candidates {
		score := 0.0
		for j, idx := range indexes {
			pair := pairScore(cand, examples[j], idx, cfg.UseJaccard)
			switch cfg.aggregation() {
			case AggregateMax:
				if pair > score {
					score = pair
				}
			default:
				score += pair
			}
		}
		input[i] = EntityScore{Entity: cand.Entity.Value, Score: score}
	}

	return newResult(MethodExamples, input), nil
}

func pairScore(cand, example *Representation, idx *tupleIndex, jaccard bool) float64 {
	matched := 0
	for tuple := range cand.Structural {
		if idx.matches(tuple) {
			matched++
		}
	}
	if !jaccard {
		return float64(matched)
	}

	union := len(cand.Structural) + len(example.Structural)
	for tuple := range cand.Structural {
		if _, ok := example.Structural[tuple]; ok {
			union--
		}
	}
	if union == 0 {
		return 0
	}
	return float64(matched) / float64(union)
}

// tupleIndex answers wildcard matching queries against one example's tuple
// set. Tuples carry at most one identified endpoint, so the index tracks,
// per (predicate, direction) pair, whether any tuple exists at all and
// whether one of them has an anonymized endpoint.
type tupleIndex struct {
	tuples   map[StructuralTuple]struct{}
	any      map[patternKey]bool
	wildcard map[patternKey]bool
}

type patternKey struct {
	predicate string
	dir       Direction
}

func newTupleIndex(r *Representation) *tupleIndex {
	idx := &tupleIndex{
		tuples:   r.Structural,
		any:      make(map[patternKey]bool),
		wildcard: make(map[patternKey]bool),
	}
	for tuple := range r.Structural {
		key := patternKey{tuple.Predicate, tuple.Dir}
		idx.any[key] = true
		if tuple.Subject == "" && tuple.Object == "" {
			idx.wildcard[key] = true
		}
	}
	return idx
}

func (idx *tupleIndex) matches(tuple StructuralTuple) bool {
	key := patternKey{tuple.Predicate, tuple.Dir}
	// a wildcard on either side matches anything with the same pattern
	if idx.wildcard[key] {
		return true
	}
	if tuple.Subject == "" && tuple.Object == "" {
		return idx.any[key]
	}
	_, ok := idx.tuples[tuple]
	return ok
}
