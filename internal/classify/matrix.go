package classify

import "strings"

const (
	// minCommonPrefixLen is the minimum stem length in characters. Short
	// shared words ("다음 중") produce too many false groups below this.
	minCommonPrefixLen = 15

	// minResponseOverlap is the required Jaccard overlap between each
	// member's distinct response set and the first member's.
	minResponseOverlap = 0.7

	// maxMatrixScanColumns bounds the quadratic window scan. Surveys do
	// not have this many questions; past the cap detection is skipped.
	maxMatrixScanColumns = 300
)

// DetectGroups finds maximal sets of >=2 adjacent columns forming one
// matrix question: a long shared textual stem, pairwise-distinct
// remainders, and (when column values are supplied) substantially
// overlapping response sets.
//
// Windows are scanned from size N down to 2; accepted candidates claim
// their column indices, and any later candidate touching a claimed index
// is rejected, so the result partitions matrix columns into disjoint
// groups with the largest window winning.
//
// columns may be nil to skip the response-overlap check; otherwise
// columns[i] holds the raw answer values of question column i.
func DetectGroups(questionTexts []string, columns [][]string) []Group {
	n := len(questionTexts)
	if n < 2 || n > maxMatrixScanColumns {
		return nil
	}

	var valueSets []map[string]bool
	if columns != nil {
		valueSets = make([]map[string]bool, n)
		for i := 0; i < n && i < len(columns); i++ {
			valueSets[i] = distinctSet(columns[i])
		}
	}

	used := make(map[int]bool, n)
	var groups []Group

	for size := n; size >= 2; size-- {
		for start := 0; start+size <= n; start++ {
			members := memberRange(start, size)
			if anyUsed(used, members) {
				continue
			}

			window := questionTexts[start : start+size]
			prefix := longestCommonPrefix(window)
			if len([]rune(prefix)) < minCommonPrefixLen {
				continue
			}
			if !remaindersDistinct(window, prefix) {
				continue
			}
			if valueSets != nil && !responsesOverlap(valueSets, members) {
				continue
			}

			groups = append(groups, Group{
				ID:           len(groups) + 1,
				Members:      members,
				CommonPrefix: prefix,
			})
			for _, m := range members {
				used[m] = true
			}
		}
	}

	return groups
}

func memberRange(start, size int) []int {
	members := make([]int, size)
	for i := range members {
		members[i] = start + i
	}
	return members
}

func anyUsed(used map[int]bool, members []int) bool {
	for _, m := range members {
		if used[m] {
			return true
		}
	}
	return false
}

// longestCommonPrefix is character-wise and case-sensitive.
func longestCommonPrefix(texts []string) string {
	if len(texts) == 0 {
		return ""
	}
	prefix := []rune(texts[0])
	for _, t := range texts[1:] {
		rt := []rune(t)
		if len(rt) < len(prefix) {
			prefix = prefix[:len(rt)]
		}
		for i := range prefix {
			if prefix[i] != rt[i] {
				prefix = prefix[:i]
				break
			}
		}
		if len(prefix) == 0 {
			break
		}
	}
	return string(prefix)
}

// remaindersDistinct requires every member to keep a non-empty,
// pairwise-distinct remainder after the stem is stripped. Two identical
// remainders would be indistinguishable sub-questions; an empty one
// would mean the stem swallowed a whole question.
func remaindersDistinct(window []string, prefix string) bool {
	seen := make(map[string]bool, len(window))
	for _, t := range window {
		rem := strings.TrimSpace(strings.TrimPrefix(t, prefix))
		if rem == "" || seen[rem] {
			return false
		}
		seen[rem] = true
	}
	return true
}

func responsesOverlap(valueSets []map[string]bool, members []int) bool {
	first := valueSets[members[0]]
	for _, m := range members[1:] {
		if jaccard(first, valueSets[m]) < minResponseOverlap {
			return false
		}
	}
	return true
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for v := range a {
		if b[v] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

func distinctSet(values []string) map[string]bool {
	set := make(map[string]bool)
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			set[v] = true
		}
	}
	return set
}
