package classify

// levenshtein computes edit distance over runes, not bytes, so Korean
// labels measure by character.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// Similarity scores two labels in [0,1]: 1 - distance/maxLen over
// case/whitespace-normalized inputs. Two empty strings score 1.
func Similarity(a, b string) float64 {
	a, b = NormalizeKey(a), NormalizeKey(b)
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(levenshtein(a, b))/float64(maxLen)
}

// Nearest snaps a raw value onto the most similar candidate label.
// Returns the empty string for an empty candidate list.
func Nearest(value string, candidates []string) string {
	best := ""
	bestScore := -1.0
	for _, c := range candidates {
		if score := Similarity(value, c); score > bestScore {
			best, bestScore = c, score
		}
	}
	return best
}
