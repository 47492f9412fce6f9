// Package query loads declarative query definitions: a plain-text topic,
// entities labeled relevant or not relevant, and how many relevant entities
// to promote to examples. The core treats these files as opaque input.
package query

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/go-playground/validator"
	"gopkg.in/yaml.v3"

	"github.com/kgrank/kgrank/pkg/logger"
	"github.com/kgrank/kgrank/pkg/rdf"
)

// DefaultExampleCount is how many relevant entities become examples when the
// sample file does not pin a count.
const DefaultExampleCount = 4

// Sample mirrors the YAML schema of a query definition file.
type Sample struct {
	Topic       string   `yaml:"topic" validate:"required"`
	Relevant    []string `yaml:"relevant" validate:"required,min=1"`
	NotRelevant []string `yaml:"not_relevant"`

	// Examples > 0 promotes the first N relevant entities to examples
	// deterministically; zero picks DefaultExampleCount at random.
	Examples int `yaml:"examples" validate:"gte=0"`
}

// Load reads and validates one sample file.
func Load(path string) (*Sample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sample file %s: %w", path, err)
	}
	var sample Sample
	if err := yaml.Unmarshal(data, &sample); err != nil {
		return nil, fmt.Errorf("parsing sample file %s: %w", path, err)
	}
	if err := validator.New().Struct(sample); err != nil {
		return nil, fmt.Errorf("invalid sample file %s: %w", path, err)
	}
	return &sample, nil
}

// Query is a ready-to-rank split of a sample: the example entities are
// removed from the candidate pool and from the ground truth, since ranking
// the seed entities themselves would be trivial.
type Query struct {
	Topic      string
	Examples   []rdf.Term
	Candidates []rdf.Term
	Relevant   []string
}

// Build splits the sample into examples, candidates and remaining ground
// truth. With a pinned example count the split is deterministic; otherwise
// examples are drawn at random using rng (the shared source when rng is
// nil).
func (s *Sample) Build(rng *rand.Rand) *Query {
	count := s.Examples
	shuffle := false
	if count == 0 {
		count = DefaultExampleCount
		shuffle = true
	}
	if count > len(s.Relevant) {
		logger.Warn("Sample has fewer relevant entities than requested examples, trimming",
			"relevant", len(s.Relevant), "examples", count)
		count = len(s.Relevant)
	}

	relevant := make([]string, len(s.Relevant))
	copy(relevant, s.Relevant)
	if shuffle {
		swap := func(i, j int) { relevant[i], relevant[j] = relevant[j], relevant[i] }
		if rng != nil {
			rng.Shuffle(len(relevant), swap)
		} else {
			rand.Shuffle(len(relevant), swap)
		}
	}

	examples := relevant[:count]
	remaining := relevant[count:]

	q := &Query{
		Topic:    s.Topic,
		Relevant: remaining,
	}
	for _, id := range examples {
		q.Examples = append(q.Examples, rdf.IRI(id))
	}
	for _, id := range remaining {
		q.Candidates = append(q.Candidates, rdf.IRI(id))
	}
	for _, id := range s.NotRelevant {
		q.Candidates = append(q.Candidates, rdf.IRI(id))
	}
	return q
}

// EntityIDs returns every entity named by the sample, relevant and not.
func (s *Sample) EntityIDs() []string {
	ids := make([]string, 0, len(s.Relevant)+len(s.NotRelevant))
	ids = append(ids, s.Relevant...)
	ids = append(ids, s.NotRelevant...)
	return ids
}
