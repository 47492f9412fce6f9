package ranking

import (
	"fmt"
	"math"

	"github.com/kgrank/kgrank/pkg/logger"
	"github.com/kgrank/kgrank/pkg/rdf"
)

// MethodText identifies rankings produced by the text retrieval model.
const MethodText = "text"

// ScoreText ranks candidates by the probability of the relation text given
// each entity, a query-likelihood score over Dirichlet-smoothed per-field
// language models mixed with fixed weights.
//
// Per field f and query term t:
//
//	P(t | f of e) = (tf(t,f,e) + mu * P(t|C_f)) / (|e|_f + mu)
//
// with the background P(t|C_f) fixed to 1/ni and mu defaulting to ni, the
// entity count of the collection model. This simplification of the paper's
// underspecified Dirichlet prior is deliberate; keep it as configuration,
// do not re-derive per term.
//
// The per-entity score is the product over query terms of the mixed per-term
// probability. The product shrinks geometrically with query length, so it is
// accumulated as a sum of logarithms; the log transform is monotonic, which
// preserves ranking order while avoiding float underflow for long queries.
// Scores in the result are log-probabilities (always <= 0).
//
// Query terms an entity never mentions still contribute their smoothed
// background factor; they are never skipped and never raise an error.
func ScoreText(relation string, candidates []*Representation, cm *CollectionModel, cfg Config) (*Result, error) {
	terms := rdf.Tokenize(relation)
	if len(terms) == 0 {
		return nil, fmt.Errorf("%w: relation text has no terms", ErrEmptyQuery)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ni := cm.EntityCount()
	if ni < 1 {
		ni = 1
	}
	mu := cfg.Mu
	if mu <= 0 {
		mu = float64(ni)
	}
	background := 1.0 / float64(ni)

	weights := map[Field]float64{
		FieldAttributes: cfg.WeightAttributes,
		FieldTypes:      cfg.WeightTypes,
		FieldLinks:      cfg.WeightLinks,
	}

	logger.Debug("Scoring text model", "terms", len(terms), "candidates", len(candidates), "mu", mu)

	input := make([]EntityScore, len(candidates))
	for i, repr := range candidates {
		logScore := 0.0
		for _, term := range terms {
			mixed := 0.0
			for _, f := range Fields {
				tf := float64(repr.FieldTerms(f)[term])
				length := float64(repr.FieldLength(f))
				smoothed := (tf + mu*background) / (length + mu)
				mixed += weights[f] * smoothed
			}
			logScore += math.Log(mixed)
		}
		input[i] = EntityScore{Entity: repr.Entity.Value, Score: logScore}
	}

	return newResult(MethodText, input), nil
}
