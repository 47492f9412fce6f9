package eval

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"sort"

	"github.com/kgrank/kgrank/pkg/graph"
	"github.com/kgrank/kgrank/pkg/logger"
	"github.com/kgrank/kgrank/pkg/query"
	"github.com/kgrank/kgrank/pkg/ranking"
	"github.com/kgrank/kgrank/pkg/rdf"
)

// RunParams configures a batch evaluation run.
type RunParams struct {
	// DataDir holds the triple dumps (.nq/.nt) and sample files (.yml).
	DataDir string

	Config ranking.Config

	// Rand drives the example selection of samples without a pinned example
	// count. Fix the seed for reproducible runs.
	Rand *rand.Rand
}

// SampleOutcome is the evaluation of one sample file, one report per model
// that ran.
type SampleOutcome struct {
	File     string  `json:"file"`
	Text     *Report `json:"text,omitempty"`
	Examples *Report `json:"examples,omitempty"`
	Combined *Report `json:"combined,omitempty"`
}

// BatchReport aggregates a run over a directory of samples.
type BatchReport struct {
	Outcomes     []SampleOutcome `json:"outcomes"`
	MeanText     Report          `json:"mean_text"`
	MeanExamples Report          `json:"mean_examples"`
	MeanCombined Report          `json:"mean_combined"`
}

// Run loads every triple dump in the directory, then ranks and evaluates
// every sample file against the union of all entities the samples name.
// Candidates are pooled across samples so each ranking has to push the other
// samples' entities below its own relevant ones.
func Run(ctx context.Context, params RunParams) (*BatchReport, error) {
	store := graph.NewMemoryStore()
	if err := store.LoadDir(params.DataDir); err != nil {
		return nil, err
	}

	sampleFiles, err := filepath.Glob(filepath.Join(params.DataDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("listing sample files: %w", err)
	}
	sort.Strings(sampleFiles)
	if len(sampleFiles) == 0 {
		return nil, fmt.Errorf("no sample files in %s", params.DataDir)
	}

	samples := make(map[string]*query.Sample, len(sampleFiles))
	var pool []string
	seen := make(map[string]struct{})
	for _, file := range sampleFiles {
		sample, err := query.Load(file)
		if err != nil {
			return nil, err
		}
		samples[file] = sample
		for _, id := range sample.EntityIDs() {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			pool = append(pool, id)
		}
	}

	ranker := ranking.NewRanker(store, params.Config)

	report := &BatchReport{}
	var textReports, exampleReports, combinedReports []Report

	for _, file := range sampleFiles {
		q := samples[file].Build(params.Rand)
		logger.Info("Evaluating sample", "file", file, "examples", len(q.Examples))

		exampleSet := make(map[string]struct{}, len(q.Examples))
		for _, e := range q.Examples {
			exampleSet[e.Value] = struct{}{}
		}
		candidates := make([]rdf.Term, 0, len(pool))
		for _, id := range pool {
			if _, isExample := exampleSet[id]; isExample {
				continue
			}
			candidates = append(candidates, rdf.IRI(id))
		}

		rankings, err := ranker.Rank(ctx, q.Topic, q.Examples, candidates)
		if err != nil {
			return nil, fmt.Errorf("ranking sample %s: %w", file, err)
		}

		outcome := SampleOutcome{File: file}
		if rankings.Text != nil {
			r := Evaluate(rankings.Text, q.Relevant)
			outcome.Text = &r
			textReports = append(textReports, r)
		}
		if rankings.Examples != nil {
			r := Evaluate(rankings.Examples, q.Relevant)
			outcome.Examples = &r
			exampleReports = append(exampleReports, r)
		}
		if rankings.Combined != nil {
			r := Evaluate(rankings.Combined, q.Relevant)
			outcome.Combined = &r
			combinedReports = append(combinedReports, r)
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	report.MeanText = Mean(textReports)
	report.MeanExamples = Mean(exampleReports)
	report.MeanCombined = Mean(combinedReports)
	return report, nil
}
