package survey

import "strings"

// defaultGroupTitle is used when no heuristic produces a title.
const defaultGroupTitle = "제목 없음"

// minTitlePrefixLen mirrors the detector's stem threshold: a shorter
// prefix is too generic to label a group with.
const minTitlePrefixLen = 15

// titleStrategies is a prioritized list; the first one that produces a
// title wins. New heuristics slot in without restructuring control flow.
var titleStrategies = []func(texts []string, prefix string) (string, bool){
	sharedFirstLineTitle,
	commonPrefixTitle,
}

// groupTitle derives the display title of a matrix group from its
// members' question texts.
func groupTitle(texts []string, prefix string) string {
	for _, strategy := range titleStrategies {
		if title, ok := strategy(texts, prefix); ok {
			return title
		}
	}
	return defaultGroupTitle
}

// sharedFirstLineTitle applies when every member's text starts with the
// same non-empty first line, the common pattern for exports that put
// the stem on its own line.
func sharedFirstLineTitle(texts []string, _ string) (string, bool) {
	if len(texts) == 0 {
		return "", false
	}
	first := firstLine(texts[0])
	if first == "" {
		return "", false
	}
	for _, t := range texts[1:] {
		if firstLine(t) != first {
			return "", false
		}
	}
	// A shared first line that still carries per-member remainders is
	// the whole text, not a stem.
	for _, t := range texts {
		if firstLine(t) == strings.TrimSpace(t) {
			return "", false
		}
	}
	return first, true
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}

// commonPrefixTitle falls back to the detector's character prefix,
// with trailing separator punctuation stripped for display.
func commonPrefixTitle(_ []string, prefix string) (string, bool) {
	if len([]rune(prefix)) < minTitlePrefixLen {
		return "", false
	}
	title := strings.TrimSpace(strings.TrimRight(prefix, " -:·"))
	if title == "" {
		return "", false
	}
	return title, true
}
