package ranking

// MethodCombined identifies rankings produced by mixing the two models.
const MethodCombined = "combined"

// Normalize rescales scores to [0,1] with min-max normalization. When every
// score is equal there is no preference to express: all entities map to 0,
// which keeps the ranking valid without dividing by zero.
func Normalize(scores []float64) []float64 {
	normalized := make([]float64, len(scores))
	if len(scores) == 0 {
		return normalized
	}

	min, max := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	if max == min {
		return normalized
	}
	for i, s := range scores {
		normalized[i] = (s - min) / (max - min)
	}
	return normalized
}

type combineSlot struct {
	text       float64
	example    float64
	hasText    bool
	hasExample bool
}

// Combine min-max normalizes the two score distributions independently and
// mixes them as alpha*text + (1-alpha)*examples. The two models score on
// incompatible scales (log-probabilities vs. overlap counts), which is why
// each list is normalized before mixing.
//
// Both scorers normally run over the same candidate set; an entity missing
// from one list is scored at that list's minimum before normalization, so it
// normalizes to 0 there and gains no preference. Tie-breaking follows the
// candidate input order, entities known to the text ranking first.
func Combine(text, example *Result, alpha float64) *Result {
	var order []string
	index := make(map[string]*combineSlot)
	for _, result := range []*Result{text, example} {
		if result == nil {
			continue
		}
		for _, s := range result.InputOrder() {
			if _, ok := index[s.Entity]; !ok {
				index[s.Entity] = &combineSlot{}
				order = append(order, s.Entity)
			}
		}
	}

	if text != nil {
		for _, s := range text.InputOrder() {
			index[s.Entity].text = s.Score
			index[s.Entity].hasText = true
		}
	}
	if example != nil {
		for _, s := range example.InputOrder() {
			index[s.Entity].example = s.Score
			index[s.Entity].hasExample = true
		}
	}

	textScores := fillMissing(order, index, func(sl *combineSlot) (float64, bool) { return sl.text, sl.hasText })
	exampleScores := fillMissing(order, index, func(sl *combineSlot) (float64, bool) { return sl.example, sl.hasExample })

	textNorm := Normalize(textScores)
	exampleNorm := Normalize(exampleScores)

	input := make([]EntityScore, len(order))
	for i, entity := range order {
		input[i] = EntityScore{
			Entity: entity,
			Score:  alpha*textNorm[i] + (1-alpha)*exampleNorm[i],
		}
	}
	return newResult(MethodCombined, input)
}

// fillMissing extracts one model's scores in combined input order. Entities
// the model never saw get the model's minimum score, the log-domain
// equivalent of "probability zero": lowest possible, normalizing to 0.
func fillMissing(order []string, index map[string]*combineSlot, get func(*combineSlot) (float64, bool)) []float64 {
	scores := make([]float64, len(order))
	min := 0.0
	minSet := false
	for _, entity := range order {
		if v, ok := get(index[entity]); ok {
			if !minSet || v < min {
				min = v
				minSet = true
			}
		}
	}
	for i, entity := range order {
		if v, ok := get(index[entity]); ok {
			scores[i] = v
		} else {
			scores[i] = min
		}
	}
	return scores
}
