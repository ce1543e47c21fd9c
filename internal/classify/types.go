package classify

// Kind identifies the question type derived for one column.
type Kind string

const (
	KindMultiple       Kind = "multiple"
	KindMultipleSelect Kind = "multiple_select"
	KindOpen           Kind = "open"
	KindLikert         Kind = "likert"
	KindMatrix         Kind = "matrix"
)

// ParseKind validates a kind received over the wire.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindMultiple, KindMultipleSelect, KindOpen, KindLikert, KindMatrix:
		return Kind(s), true
	}
	return "", false
}

// ScoreOther marks a score-map entry excluded from averaging.
const ScoreOther = -1

const (
	// MultiValueDelimiter separates co-selected options within one cell.
	MultiValueDelimiter = "@@"

	// OtherLabel is the canonical display label for the other bucket.
	OtherLabel = "기타"
)

// QuestionType is the classification result for one column.
//
// MatrixGroupID is 0 for columns that are not matrix members; detected
// group ids start at 1. For likert and scored matrix columns every
// option has a ScoreMap entry keyed by its normalized label.
type QuestionType struct {
	ColumnIndex    int            `json:"column_index"`
	Kind           Kind           `json:"type"`
	MatrixGroupID  int            `json:"matrix_group_id,omitempty"`
	CommonPrefix   string         `json:"common_prefix,omitempty"`
	Options        []string       `json:"options"`
	OtherResponses []string       `json:"other_responses,omitempty"`
	ScoreMap       map[string]int `json:"score_map,omitempty"`
}

// Clone returns a deep copy so mutation paths never alias slices or maps.
func (q QuestionType) Clone() QuestionType {
	out := q
	out.Options = append([]string(nil), q.Options...)
	out.OtherResponses = append([]string(nil), q.OtherResponses...)
	if q.ScoreMap != nil {
		out.ScoreMap = make(map[string]int, len(q.ScoreMap))
		for k, v := range q.ScoreMap {
			out.ScoreMap[k] = v
		}
	}
	return out
}

// Group is a detected matrix group: >=2 columns sharing one stem.
type Group struct {
	ID           int    `json:"id"`
	Members      []int  `json:"members"`
	CommonPrefix string `json:"common_prefix"`
}
