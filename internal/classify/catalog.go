package classify

// LikertScale is an immutable catalog entry: an ordered 5-point response
// vocabulary with parallel descending scores.
type LikertScale struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Responses []string `json:"responses"`
	Scores    []int    `json:"scores"`
}

// scaleMatchThreshold is the fraction of a scale's vocabulary that must
// appear among a column's distinct values for the scale to match.
const scaleMatchThreshold = 0.6

// scaleCatalog is ordered: MatchScale returns the first entry clearing
// the threshold, so registration order is the tie-break for ambiguous
// data. Keep new scales at the end unless that precedence should change.
var scaleCatalog = []LikertScale{
	{
		ID:        "agreement_5",
		Name:      "동의 척도",
		Responses: []string{"매우 그렇다", "그렇다", "보통이다", "아니다", "전혀 아니다"},
		Scores:    []int{5, 4, 3, 2, 1},
	},
	{
		ID:        "satisfaction_5",
		Name:      "만족도 척도",
		Responses: []string{"매우 만족", "만족", "보통", "불만족", "매우 불만족"},
		Scores:    []int{5, 4, 3, 2, 1},
	},
	{
		ID:        "frequency_5",
		Name:      "빈도 척도",
		Responses: []string{"매우 자주", "자주", "가끔", "거의 없음", "전혀 없음"},
		Scores:    []int{5, 4, 3, 2, 1},
	},
	{
		ID:        "quality_5",
		Name:      "품질 척도",
		Responses: []string{"매우 좋음", "좋음", "보통", "나쁨", "매우 나쁨"},
		Scores:    []int{5, 4, 3, 2, 1},
	},
	{
		ID:        "importance_5",
		Name:      "중요도 척도",
		Responses: []string{"매우 중요", "중요", "보통", "중요하지 않음", "전혀 중요하지 않음"},
		Scores:    []int{5, 4, 3, 2, 1},
	},
}

// Scales returns the registered catalog in iteration order.
func Scales() []LikertScale {
	return scaleCatalog
}

// ScaleByID looks up a catalog entry.
func ScaleByID(id string) (LikertScale, bool) {
	for _, s := range scaleCatalog {
		if s.ID == id {
			return s, true
		}
	}
	return LikertScale{}, false
}

// MatchScale finds a catalog scale covering the given options. A scale
// matches when at least scaleMatchThreshold of its responses appear in
// options, so missing or extra labels (a stray "잘 모르겠다") still match.
// The first registered match wins.
func MatchScale(options []string) *LikertScale {
	present := make(map[string]bool, len(options))
	for _, o := range options {
		present[NormalizeKey(o)] = true
	}

	for i := range scaleCatalog {
		scale := &scaleCatalog[i]
		matched := 0
		for _, r := range scale.Responses {
			if present[NormalizeKey(r)] {
				matched++
			}
		}
		if float64(matched)/float64(len(scale.Responses)) >= scaleMatchThreshold {
			return scale
		}
	}
	return nil
}

// ScoreFor returns the score of a response label on this scale.
func (s LikertScale) ScoreFor(label string) (int, bool) {
	key := NormalizeKey(label)
	for i, r := range s.Responses {
		if NormalizeKey(r) == key {
			return s.Scores[i], true
		}
	}
	return 0, false
}
