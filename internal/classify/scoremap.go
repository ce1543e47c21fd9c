package classify

import (
	"fmt"
	"sort"
)

// likertReferenceLabels is the fixed vocabulary raw responses are
// snapped onto when a column is promoted to likert after the fact.
var likertReferenceLabels = []string{"매우 그렇다", "그렇다", "보통이다", "아니다", "전혀 아니다"}

// SynthesizeScores builds a positional score map for exactly five
// options: descending 5..1 in the given display order, keyed by
// normalized label. Any other option count has no positional heuristic
// and returns nil.
func SynthesizeScores(options []string) map[string]int {
	if len(options) != 5 {
		return nil
	}
	scores := make(map[string]int, 5)
	for i, o := range options {
		scores[NormalizeKey(o)] = 5 - i
	}
	return scores
}

// RemapValues rewrites raw responses for a column promoted to likert:
// values already keyed in scores pass through, everything else is
// replaced by its nearest reference label. The returned slice is the
// column's new persisted content; the original free text is gone after
// this. Empty cells stay empty.
func RemapValues(values []string, scores map[string]int) []string {
	out := make([]string, len(values))
	for i, v := range values {
		key := NormalizeKey(v)
		if key == "" {
			out[i] = v
			continue
		}
		if _, ok := scores[key]; ok {
			out[i] = v
			continue
		}
		out[i] = Nearest(v, likertReferenceLabels)
	}
	return out
}

// Override is one user-edited option mapping: a score in 1..5, or an
// other flag excluding the option from averaging.
type Override struct {
	Option  string `json:"option"`
	Score   int    `json:"score"`
	IsOther bool   `json:"is_other"`
}

// ApplyOverrides rewrites a question's options and score map together
// from a manual edit. Scored options come first in descending score
// order, other-flagged options keep their relative order at the end.
// Options and ScoreMap never change independently of each other.
func ApplyOverrides(qt QuestionType, overrides []Override) (QuestionType, error) {
	if len(overrides) == 0 {
		return QuestionType{}, fmt.Errorf("no overrides given for column %d", qt.ColumnIndex)
	}

	var scored, other []Override
	for _, ov := range overrides {
		if ov.IsOther {
			other = append(other, ov)
			continue
		}
		if ov.Score < 1 || ov.Score > 5 {
			return QuestionType{}, fmt.Errorf("score %d for option %q out of range 1..5", ov.Score, ov.Option)
		}
		scored = append(scored, ov)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	out := qt.Clone()
	out.Options = make([]string, 0, len(overrides))
	out.ScoreMap = make(map[string]int, len(overrides))
	for _, ov := range scored {
		out.Options = append(out.Options, ov.Option)
		out.ScoreMap[NormalizeKey(ov.Option)] = ov.Score
	}
	for _, ov := range other {
		out.Options = append(out.Options, ov.Option)
		out.ScoreMap[NormalizeKey(ov.Option)] = ScoreOther
	}
	return out, nil
}
