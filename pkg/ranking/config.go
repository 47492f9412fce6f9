package ranking

import (
	"fmt"
	"math"

	"github.com/go-playground/validator"
)

// Aggregation modes for combining per-example overlap scores.
const (
	AggregateSum = "sum"
	AggregateMax = "max"
)

// Config holds the fixed model parameters. Weights are configuration, not
// learned; published comparisons depend on them staying put during a run.
type Config struct {
	// Mu is the Dirichlet smoothing mass. Zero means "use the entity count
	// of the collection model", the documented simplification of the
	// underlying formula.
	Mu float64 `json:"mu" validate:"gte=0"`

	// Field mixture weights; must sum to 1.
	WeightAttributes float64 `json:"weight_attributes" validate:"gte=0,lte=1"`
	WeightTypes      float64 `json:"weight_types" validate:"gte=0,lte=1"`
	WeightLinks      float64 `json:"weight_links" validate:"gte=0,lte=1"`

	// Alpha weighs the text model against the example model when combining.
	Alpha float64 `json:"alpha" validate:"gte=0,lte=1"`

	// UseJaccard normalizes example overlap counts by the union size of the
	// two tuple sets, removing the bias toward entities with many triples.
	UseJaccard bool `json:"use_jaccard"`

	// Aggregation combines per-example scores into one candidate score.
	Aggregation string `json:"aggregation" validate:"omitempty,oneof=sum max"`
}

// DefaultConfig returns the experimentally chosen defaults.
func DefaultConfig() Config {
	return Config{
		WeightAttributes: 0.4,
		WeightTypes:      0.4,
		WeightLinks:      0.2,
		Alpha:            0.5,
		Aggregation:      AggregateSum,
	}
}

// Validate checks ranges and that the field weights sum to 1.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid ranking config: %w", err)
	}
	sum := c.WeightAttributes + c.WeightTypes + c.WeightLinks
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("field weights must sum to 1, got %v", sum)
	}
	return nil
}

func (c Config) aggregation() string {
	if c.Aggregation == "" {
		return AggregateSum
	}
	return c.Aggregation
}
