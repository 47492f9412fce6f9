package ranking

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kgrank/kgrank/pkg/graph"
	"github.com/kgrank/kgrank/pkg/logger"
	"github.com/kgrank/kgrank/pkg/rdf"
)

const collectionBuildParallelism = 8

// CollectionModel carries aggregate term statistics over the working entity
// set: per-field term counts, per-field totals, and the number of distinct
// entities. It is the smoothing background of the text model.
//
// The model is built once per "graph loaded" generation and is read-only
// afterwards; every candidate and example in a ranking session must be
// scored against the same model. When the backing graph gains triples the
// caller rebuilds the model and swaps it in before the next ranking, never
// mid-ranking.
type CollectionModel struct {
	entityCount int
	termCounts  map[Field]map[string]int
	totalTerms  map[Field]int
}

// BuildCollectionModel aggregates term statistics over the given entities,
// typically every subject known to the loaded graph. Per-entity fetches run
// in parallel; the result is deterministic because aggregation is pure
// addition.
func BuildCollectionModel(ctx context.Context, src graph.Source, entities []rdf.Term) (*CollectionModel, error) {
	cm := &CollectionModel{
		entityCount: len(entities),
		termCounts: map[Field]map[string]int{
			FieldAttributes: {},
			FieldTypes:      {},
			FieldLinks:      {},
		},
		totalTerms: map[Field]int{},
	}

	var mu sync.Mutex
	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(collectionBuildParallelism)

	for _, entity := range entities {
		e := entity
		eg.Go(func() error {
			repr, err := BuildRepresentation(gCtx, src, e)
			if err != nil {
				return err
			}
			mu.Lock()
			for _, f := range Fields {
				for term, count := range repr.FieldTerms(f) {
					cm.termCounts[f][term] += count
				}
				cm.totalTerms[f] += repr.FieldLength(f)
			}
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("building collection model: %w", err)
	}

	logger.Info("Built collection model",
		"entities", cm.entityCount,
		"attribute_terms", cm.totalTerms[FieldAttributes],
		"type_terms", cm.totalTerms[FieldTypes],
		"link_terms", cm.totalTerms[FieldLinks])
	return cm, nil
}

// TermCount returns the collection-wide frequency of a term in a field.
func (cm *CollectionModel) TermCount(f Field, term string) int {
	return cm.termCounts[f][term]
}

// TotalTerms returns the collection-wide term total of a field.
func (cm *CollectionModel) TotalTerms(f Field) int {
	return cm.totalTerms[f]
}

// EntityCount returns the number of entities the model was built over.
func (cm *CollectionModel) EntityCount() int {
	return cm.entityCount
}
