// Package eval measures ranking quality against ground-truth relevance
// labels with standard IR metrics.
package eval

import "github.com/kgrank/kgrank/pkg/ranking"

// Report holds the quality metrics of one ranking against one ground truth.
type Report struct {
	// Precision is the fraction of ranked entities that are relevant,
	// measured over the full list.
	Precision float64 `json:"precision"`

	// RPrecision is precision at cutoff R, where R is the number of
	// relevant entities in the ground truth.
	RPrecision float64 `json:"r_precision"`

	// AveragePrecision is the mean of precision-at-i over every rank i
	// holding a relevant entity, divided by R. Zero when R is zero.
	AveragePrecision float64 `json:"average_precision"`
}

// Evaluate computes the metrics of a descending-sorted ranking against the
// set of relevant entity identifiers. Score ties were already broken
// deterministically when the ranking was produced, so repeated evaluation of
// the same inputs yields identical reports.
func Evaluate(result *ranking.Result, relevant []string) Report {
	relevantSet := make(map[string]struct{}, len(relevant))
	for _, id := range relevant {
		relevantSet[id] = struct{}{}
	}

	ranked := result.RankedEntities()
	r := len(relevantSet)

	retrieved := 0
	topR := 0
	relevantSoFar := 0
	apSum := 0.0
	for i, entity := range ranked {
		_, isRelevant := relevantSet[entity]
		if isRelevant {
			retrieved++
			relevantSoFar++
			apSum += float64(relevantSoFar) / float64(i+1)
		}
		if i < r && isRelevant {
			topR++
		}
	}

	report := Report{}
	if len(ranked) > 0 {
		report.Precision = float64(retrieved) / float64(len(ranked))
	}
	if r > 0 {
		report.RPrecision = float64(topR) / float64(r)
		report.AveragePrecision = apSum / float64(r)
	}
	return report
}

// Mean averages reports metric by metric. An empty slice yields a zero
// report.
func Mean(reports []Report) Report {
	if len(reports) == 0 {
		return Report{}
	}
	var mean Report
	for _, r := range reports {
		mean.Precision += r.Precision
		mean.RPrecision += r.RPrecision
		mean.AveragePrecision += r.AveragePrecision
	}
	n := float64(len(reports))
	mean.Precision /= n
	mean.RPrecision /= n
	mean.AveragePrecision /= n
	return mean
}
