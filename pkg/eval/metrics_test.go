package eval

import (
	"math"
	"testing"

	"github.com/kgrank/kgrank/pkg/ranking"
)

func rankedResult(entities ...string) *ranking.Result {
	scores := make([]ranking.EntityScore, len(entities))
	for i, e := range entities {
		scores[i] = ranking.EntityScore{Entity: e, Score: float64(len(entities) - i)}
	}
	return ranking.NewResult("test", scores)
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		ranked   []string
		relevant []string
		want     Report
	}{
		{
			name:     "worked_example",
			ranked:   []string{"A", "C", "B", "D"},
			relevant: []string{"A", "B"},
			want: Report{
				Precision:        0.5,
				RPrecision:       0.5,
				AveragePrecision: (1.0 + 2.0/3.0) / 2.0,
			},
		},
		{
			name:     "perfect_ranking",
			ranked:   []string{"A", "B", "C"},
			relevant: []string{"A", "B"},
			want: Report{
				Precision:        2.0 / 3.0,
				RPrecision:       1,
				AveragePrecision: 1,
			},
		},
		{
			name:     "nothing_relevant_retrieved",
			ranked:   []string{"C", "D"},
			relevant: []string{"A"},
			want:     Report{},
		},
		{
			name:     "no_relevant_entities",
			ranked:   []string{"A", "B"},
			relevant: nil,
			want:     Report{},
		},
		{
			name:     "relevant_at_bottom",
			ranked:   []string{"C", "D", "A"},
			relevant: []string{"A"},
			want: Report{
				Precision:        1.0 / 3.0,
				RPrecision:       0,
				AveragePrecision: 1.0 / 3.0,
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(rankedResult(tc.ranked...), tc.relevant)
			if math.Abs(got.Precision-tc.want.Precision) > 1e-12 {
				t.Fatalf("precision = %f, want %f", got.Precision, tc.want.Precision)
			}
			if math.Abs(got.RPrecision-tc.want.RPrecision) > 1e-12 {
				t.Fatalf("r-precision = %f, want %f", got.RPrecision, tc.want.RPrecision)
			}
			if math.Abs(got.AveragePrecision-tc.want.AveragePrecision) > 1e-12 {
				t.Fatalf("average precision = %f, want %f", got.AveragePrecision, tc.want.AveragePrecision)
			}
		})
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	t.Parallel()

	result := rankedResult("A", "B", "C", "D", "E")
	relevant := []string{"B", "D"}

	first := Evaluate(result, relevant)
	second := Evaluate(result, relevant)
	if first != second {
		t.Fatalf("repeated evaluation differs: %+v vs %+v", first, second)
	}
}

func TestMean(t *testing.T) {
	t.Parallel()

	reports := []Report{
		{Precision: 0.5, RPrecision: 1, AveragePrecision: 0.75},
		{Precision: 1, RPrecision: 0, AveragePrecision: 0.25},
	}
	mean := Mean(reports)
	if mean.Precision != 0.75 || mean.RPrecision != 0.5 || mean.AveragePrecision != 0.5 {
		t.Fatalf("mean = %+v", mean)
	}

	if zero := Mean(nil); zero != (Report{}) {
		t.Fatalf("mean of no reports = %+v, want zero", zero)
	}
}
