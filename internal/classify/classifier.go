package classify

import (
	"regexp"
	"strings"
)

const (
	// multiSelectRatio is the fraction of non-empty cells that must
	// contain the multi-value delimiter before a column counts as
	// multi-select.
	multiSelectRatio = 0.3

	// openDistinctThreshold and the multiple-choice band: >=10 distinct
	// values is free text, 2..6 is a closed choice list. The 7..9 gap
	// falls back to open unless a Likert scale matches.
	openDistinctThreshold = 10
	multipleMinDistinct   = 2
	multipleMaxDistinct   = 6
)

// otherMarkerRe recognizes the export convention for free-text "other"
// sub-responses, e.g. "C_Others: 직접 입력한 의견".
var otherMarkerRe = regexp.MustCompile(`(?i)(^|_)others?\s*:`)

// IsOtherMarker reports whether a raw option label is an "other"
// free-text sub-response rather than a canonical option.
func IsOtherMarker(s string) bool {
	return otherMarkerRe.MatchString(strings.TrimSpace(s))
}

// ClassifyColumns derives one QuestionType per column in three strict
// passes: multi-select, matrix membership, then the per-column
// statistical rules. Multi-select runs first because raw multi-select
// cardinality looks like open text; matrix membership is structural and
// overrides the cardinality bands so a 3-point grid is not mistaken for
// an ordinary choice column. The open fallback makes classification
// total: every column resolves to exactly one kind.
//
// questionTexts[i] and columns[i] describe question column i; the
// returned slice is ordered by column index. The result is a pure
// function of its inputs, so re-running over identical rows yields an
// identical classification.
func ClassifyColumns(questionTexts []string, columns [][]string) ([]QuestionType, []Group) {
	result := make([]QuestionType, len(columns))
	done := make([]bool, len(columns))

	// Pass 1: multi-select.
	for col, values := range columns {
		if qt, ok := classifyMultiSelect(col, values); ok {
			result[col] = qt
			done[col] = true
		}
	}

	// Columns claimed by pass 1 cannot also be matrix members; prune
	// them from detected groups so every persisted group references
	// matrix columns only, and dissolve groups left below 2 members.
	groups := pruneGroups(DetectGroups(questionTexts, columns), done)

	memberOf := make(map[int]*Group)
	for i := range groups {
		for _, m := range groups[i].Members {
			memberOf[m] = &groups[i]
		}
	}

	// Pass 2: matrix membership.
	for col := range columns {
		if done[col] {
			continue
		}
		if g, ok := memberOf[col]; ok {
			result[col] = classifyMatrixMember(col, columns[col], g)
			done[col] = true
		}
	}

	// Pass 3: cardinality and scale matching.
	for col := range columns {
		if !done[col] {
			result[col] = classifyPlain(col, columns[col])
		}
	}

	return result, groups
}

// pruneGroups drops claimed column indices from each group and discards
// groups left with fewer than 2 members, renumbering the survivors so
// ids stay sequential from 1.
func pruneGroups(groups []Group, claimed []bool) []Group {
	var out []Group
	for _, g := range groups {
		members := make([]int, 0, len(g.Members))
		for _, m := range g.Members {
			if !claimed[m] {
				members = append(members, m)
			}
		}
		if len(members) < 2 {
			continue
		}
		g.ID = len(out) + 1
		g.Members = members
		out = append(out, g)
	}
	return out
}

// ClassifyColumn classifies a single column outside any matrix context,
// e.g. a member just detached from a dissolved group.
func ClassifyColumn(col int, values []string) QuestionType {
	if qt, ok := classifyMultiSelect(col, values); ok {
		return qt
	}
	return classifyPlain(col, values)
}

// classifyMultiSelect detects delimiter-joined multi-answer columns and
// splits them into canonical options plus an other bucket.
func classifyMultiSelect(col int, values []string) (QuestionType, bool) {
	nonEmpty := 0
	marked := 0
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		nonEmpty++
		// Both reserved sentinels count: the delimiter and the
		// other-marker only occur in multi-select exports.
		if strings.Contains(v, MultiValueDelimiter) || IsOtherMarker(v) {
			marked++
		}
	}
	if nonEmpty == 0 || float64(marked)/float64(nonEmpty) < multiSelectRatio {
		return QuestionType{}, false
	}
	return ForceMultiSelect(col, values), true
}

// ForceMultiSelect builds a multi-select classification without the
// delimiter ratio gate, splitting every cell into canonical options plus
// an other bucket. Used for user-forced type changes, where the option
// list must never carry an unsplit delimiter-joined value.
func ForceMultiSelect(col int, values []string) QuestionType {
	qt := QuestionType{ColumnIndex: col, Kind: KindMultipleSelect}
	seen := make(map[string]bool)
	for _, v := range values {
		for _, part := range SplitMultiValue(v) {
			if IsOtherMarker(part) {
				qt.OtherResponses = append(qt.OtherResponses, part)
				continue
			}
			if !seen[part] {
				seen[part] = true
				qt.Options = append(qt.Options, part)
			}
		}
	}
	return qt
}

// SplitMultiValue splits one cell on the multi-value delimiter and
// trims each part, dropping empties.
func SplitMultiValue(value string) []string {
	var parts []string
	for _, p := range strings.Split(value, MultiValueDelimiter) {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func classifyMatrixMember(col int, values []string, g *Group) QuestionType {
	qt := QuestionType{
		ColumnIndex:   col,
		Kind:          KindMatrix,
		MatrixGroupID: g.ID,
		CommonPrefix:  g.CommonPrefix,
	}

	distinct := DistinctValues(values)
	if scale := MatchScale(distinct); scale != nil {
		qt.Options = append([]string(nil), scale.Responses...)
		qt.ScoreMap = make(map[string]int, len(distinct))
		for i, r := range scale.Responses {
			qt.ScoreMap[NormalizeKey(r)] = scale.Scores[i]
		}
		for _, v := range distinct {
			if _, ok := scale.ScoreFor(v); !ok {
				qt.ScoreMap[NormalizeKey(v)] = ScoreOther
			}
		}
	} else {
		qt.Options = distinct
	}
	return qt
}

func classifyPlain(col int, values []string) QuestionType {
	qt := QuestionType{ColumnIndex: col}
	distinct := DistinctValues(values)

	if len(distinct) >= openDistinctThreshold {
		qt.Kind = KindOpen
		return qt
	}

	if scale := MatchScale(distinct); scale != nil {
		qt.Kind = KindLikert
		qt.Options = append([]string(nil), scale.Responses...)
		qt.ScoreMap = make(map[string]int, len(scale.Responses))
		for i, r := range scale.Responses {
			qt.ScoreMap[NormalizeKey(r)] = scale.Scores[i]
		}
		for _, v := range distinct {
			if _, ok := scale.ScoreFor(v); !ok {
				qt.OtherResponses = append(qt.OtherResponses, v)
			}
		}
		return qt
	}

	if len(distinct) >= multipleMinDistinct && len(distinct) <= multipleMaxDistinct {
		qt.Kind = KindMultiple
		qt.Options = distinct
		return qt
	}

	qt.Kind = KindOpen
	return qt
}

// DistinctValues returns the distinct non-empty trimmed values in
// first-occurrence order.
func DistinctValues(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Columns transposes answer rows into per-column value slices. Rows
// shorter than width contribute empty cells.
func Columns(rows [][]string, width int) [][]string {
	cols := make([][]string, width)
	for c := 0; c < width; c++ {
		cols[c] = make([]string, 0, len(rows))
	}
	for _, row := range rows {
		for c := 0; c < width; c++ {
			if c < len(row) {
				cols[c] = append(cols[c], row[c])
			} else {
				cols[c] = append(cols[c], "")
			}
		}
	}
	return cols
}
