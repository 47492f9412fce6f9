package ranking

import (
	"context"
	"fmt"
	"sync"

	"github.com/kgrank/kgrank/pkg/graph"
	"github.com/kgrank/kgrank/pkg/logger"
	"github.com/kgrank/kgrank/pkg/rdf"
)

// Rankings bundles the outputs of one ranking run. Text and Examples are nil
// when the query carried no relation text or no examples respectively;
// Combined is set only when both models ran.
type Rankings struct {
	Text     *Result `json:"text,omitempty"`
	Examples *Result `json:"examples,omitempty"`
	Combined *Result `json:"combined,omitempty"`
}

// Ranker runs ranking sessions against one graph source. It owns the
// collection model for the current graph generation; Invalidate must be
// called after more triples are loaded. Rankings may run concurrently, the
// first one after an invalidation builds the model while the rest wait.
type Ranker struct {
	src graph.Source
	cfg Config

	cmMu sync.Mutex
	cm   *CollectionModel
}

// NewRanker creates a ranker. The config is validated on first use.
func NewRanker(src graph.Source, cfg Config) *Ranker {
	return &Ranker{src: src, cfg: cfg}
}

// Config returns the ranker's configuration.
func (r *Ranker) Config() Config {
	return r.cfg
}

// Invalidate drops the cached collection model so the next ranking rebuilds
// it from the current graph contents.
func (r *Ranker) Invalidate() {
	r.cmMu.Lock()
	r.cm = nil
	r.cmMu.Unlock()
}

// CollectionModel returns the current model, building it over every subject
// known to the graph when none is cached yet. The build happens under the
// ranker's own lock so concurrent rankings share one model instead of racing
// on the cache.
func (r *Ranker) CollectionModel(ctx context.Context) (*CollectionModel, error) {
	r.cmMu.Lock()
	defer r.cmMu.Unlock()
	if r.cm != nil {
		return r.cm, nil
	}
	subjects, err := r.src.Subjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("collecting graph subjects: %w", err)
	}
	cm, err := BuildCollectionModel(ctx, r.src, subjects)
	if err != nil {
		return nil, err
	}
	r.cm = cm
	return cm, nil
}

// Rank scores the candidates with both models as far as the query allows.
// A query with neither relation text nor examples is rejected with
// ErrEmptyQuery. Representations are built fresh for this run and discarded
// with it.
func (r *Ranker) Rank(ctx context.Context, relation string, examples, candidates []rdf.Term) (*Rankings, error) {
	relationTerms := rdf.Tokenize(relation)
	if len(relationTerms) == 0 && len(examples) == 0 {
		return nil, fmt.Errorf("%w: neither relation text nor examples given", ErrEmptyQuery)
	}
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Info("Ranking entities",
		"candidates", len(candidates), "examples", len(examples), "relation", relation)

	candidateReprs := make([]*Representation, len(candidates))
	for i, entity := range candidates {
		repr, err := BuildRepresentation(ctx, r.src, entity)
		if err != nil {
			return nil, err
		}
		candidateReprs[i] = repr
	}

	rankings := &Rankings{}

	if len(relationTerms) > 0 {
		cm, err := r.CollectionModel(ctx)
		if err != nil {
			return nil, err
		}
		text, err := ScoreText(relation, candidateReprs, cm, r.cfg)
		if err != nil {
			return nil, err
		}
		rankings.Text = text
	}

	if len(examples) > 0 {
		exampleReprs := make([]*Representation, len(examples))
		for i, entity := range examples {
			repr, err := BuildRepresentation(ctx, r.src, entity)
			if err != nil {
				return nil, err
			}
			exampleReprs[i] = repr
		}
		exampleResult, err := ScoreExamples(exampleReprs, candidateReprs, r.cfg)
		if err != nil {
			return nil, err
		}
		rankings.Examples = exampleResult
	}

	if rankings.Text != nil && rankings.Examples != nil {
		rankings.Combined = Combine(rankings.Text, rankings.Examples, r.cfg.Alpha)
	}

	return rankings, nil
}
