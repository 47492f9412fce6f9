package ranking

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/kgrank/kgrank/pkg/rdf"
)

func textRepr(id string, attrs, types, links map[string]int) *Representation {
	if attrs == nil {
		attrs = map[string]int{}
	}
	if types == nil {
		types = map[string]int{}
	}
	if links == nil {
		links = map[string]int{}
	}
	return &Representation{
		Entity:     rdf.IRI(id),
		Attributes: attrs,
		Types:      types,
		Links:      links,
	}
}

func TestScoreTextRanksMatchingEntityFirst(t *testing.T) {
	t.Parallel()

	astronaut := textRepr("http://x/Armstrong",
		map[string]int{"space": 2, "moon": 1},
		map[string]int{"astronaut": 1},
		map[string]int{"apollo": 1})
	wizard := textRepr("http://x/Merlin",
		map[string]int{"magic": 3},
		map[string]int{"wizard": 1},
		map[string]int{"camelot": 1})

	cm := &CollectionModel{entityCount: 10}

	result, err := ScoreText("space astronaut", []*Representation{wizard, astronaut}, cm, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Method != MethodText {
		t.Fatalf("method = %q, want %q", result.Method, MethodText)
	}

	ranked := result.RankedEntities()
	if ranked[0] != "http://x/Armstrong" {
		t.Fatalf("top entity = %s, want Armstrong", ranked[0])
	}
	// log-domain scores are always <= 0
	for _, s := range result.Scores {
		if s.Score > 0 {
			t.Fatalf("score %f of %s is positive", s.Score, s.Entity)
		}
	}
}

func TestScoreTextLargeMuConvergesToBackground(t *testing.T) {
	t.Parallel()

	a := textRepr("http://x/a", map[string]int{"space": 5}, nil, nil)
	b := textRepr("http://x/b", map[string]int{"magic": 5}, nil, nil)
	cm := &CollectionModel{entityCount: 10}

	cfg := DefaultConfig()
	cfg.Mu = 1e12

	result, err := ScoreText("space", []*Representation{a, b}, cm, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// with overwhelming smoothing both entities collapse onto the background
	diff := math.Abs(result.Scores[0].Score - result.Scores[1].Score)
	if diff > 1e-6 {
		t.Fatalf("scores differ by %g under mu=1e12", diff)
	}
}

func TestScoreTextLongQueryStaysFinite(t *testing.T) {
	t.Parallel()

	a := textRepr("http://x/a", map[string]int{"space": 2, "moon": 2}, nil, nil)
	b := textRepr("http://x/b", map[string]int{"magic": 4}, nil, nil)
	cm := &CollectionModel{entityCount: 1000}

	// a plain probability product would underflow float64 well before 200
	// terms; the log-domain sum must stay finite and keep the order
	relation := strings.TrimSpace(strings.Repeat("space moon ", 100))

	result, err := ScoreText(relation, []*Representation{a, b}, cm, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range result.Scores {
		if math.IsInf(s.Score, 0) || math.IsNaN(s.Score) {
			t.Fatalf("score of %s is not finite: %f", s.Entity, s.Score)
		}
	}
	if result.Scores[0].Score == result.Scores[1].Score {
		t.Fatal("long query collapsed the two entities onto one score")
	}
	if result.RankedEntities()[0] != "http://x/a" {
		t.Fatalf("top entity = %s, want a", result.RankedEntities()[0])
	}
}

func TestScoreTextUnseenTermsUseSmoothing(t *testing.T) {
	t.Parallel()

	a := textRepr("http://x/a", map[string]int{"space": 1}, nil, nil)
	cm := &CollectionModel{entityCount: 10}

	result, err := ScoreText("completely unrelated terms", []*Representation{a}, cm, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	score := result.Scores[0].Score
	if math.IsInf(score, -1) {
		t.Fatal("unseen query terms produced a zero probability")
	}
}

func TestScoreTextFieldWeightsSteerRanking(t *testing.T) {
	t.Parallel()

	// armstrong matches the query through his type, merlin through a higher
	// raw attribute frequency; shifting the mixture between the two fields
	// must flip which one wins
	armstrong := textRepr("http://x/Armstrong",
		map[string]int{"moon": 1},
		map[string]int{"astronaut": 1},
		nil)
	merlin := textRepr("http://x/Merlin",
		map[string]int{"moon": 5},
		map[string]int{"wizard": 1},
		nil)
	cm := &CollectionModel{entityCount: 10}

	tests := []struct {
		name                string
		attrs, types, links float64
		want                string
	}{
		{"types_heavy", 0.1, 0.8, 0.1, "http://x/Armstrong"},
		{"attributes_heavy", 0.8, 0.1, 0.1, "http://x/Merlin"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			cfg.WeightAttributes = tc.attrs
			cfg.WeightTypes = tc.types
			cfg.WeightLinks = tc.links

			result, err := ScoreText("astronaut moon", []*Representation{armstrong, merlin}, cm, cfg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if top := result.RankedEntities()[0]; top != tc.want {
				t.Fatalf("top entity = %s, want %s", top, tc.want)
			}
		})
	}
}

func TestScoreTextTiesKeepInputOrder(t *testing.T) {
	t.Parallel()

	first := textRepr("http://x/first", map[string]int{"space": 1}, nil, nil)
	second := textRepr("http://x/second", map[string]int{"space": 1}, nil, nil)
	cm := &CollectionModel{entityCount: 10}

	result, err := ScoreText("space", []*Representation{first, second}, cm, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ranked := result.RankedEntities()
	if ranked[0] != "http://x/first" || ranked[1] != "http://x/second" {
		t.Fatalf("tie not broken by input order: %v", ranked)
	}
}

func TestScoreTextErrors(t *testing.T) {
	t.Parallel()

	cm := &CollectionModel{entityCount: 10}

	_, err := ScoreText("  ...  ", nil, cm, DefaultConfig())
	if !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("got %v, want ErrEmptyQuery", err)
	}

	bad := DefaultConfig()
	bad.WeightAttributes = 0.9
	if _, err := ScoreText("space", nil, cm, bad); err == nil {
		t.Fatal("expected config validation error, got nil")
	}
}
