package aggregate

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/surveylens/surveylens/internal/classify"
)

// OptionCount is one chart entry: an option label with its count and,
// for multi-select charts, its share of all occurrences.
type OptionCount struct {
	Option     string  `json:"option"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage,omitempty"`
}

// ChartData is the chart-ready summary of one classified column.
type ChartData struct {
	ColumnIndex     int           `json:"column_index"`
	Kind            classify.Kind `json:"type"`
	Options         []OptionCount `json:"options,omitempty"`
	Others          []OptionCount `json:"others,omitempty"`
	AverageScore    float64       `json:"average_score,omitempty"`
	RespondentCount int           `json:"respondent_count"`
	Responses       []string      `json:"responses,omitempty"`
}

// MatrixRow is one sub-question of a matrix chart.
type MatrixRow struct {
	ColumnIndex  int     `json:"column_index"`
	SubQuestion  string  `json:"sub_question"`
	AverageScore float64 `json:"average_score"`
}

// MatrixChartData summarizes a whole matrix group. RespondentCount is
// taken from the group's first member; members share one respondent
// population.
type MatrixChartData struct {
	GroupID         int         `json:"group_id"`
	Title           string      `json:"title"`
	Options         []string    `json:"options,omitempty"`
	Rows            []MatrixRow `json:"rows"`
	RespondentCount int         `json:"respondent_count"`
}

// Engine turns classified columns plus row values into chart data. It
// holds no per-survey state; the sampler is injected so tests can use a
// deterministic one.
type Engine struct {
	sampler Sampler
}

// NewEngine creates an aggregation engine.
func NewEngine(sampler Sampler) *Engine {
	return &Engine{sampler: sampler}
}

// BuildColumnChart summarizes one column according to its kind. Columns
// with zero non-empty responses produce zero counts and a zero average
// rather than an error.
func (e *Engine) BuildColumnChart(qt classify.QuestionType, values []string) ChartData {
	switch qt.Kind {
	case classify.KindMultipleSelect:
		return buildMultiSelectChart(qt, values)
	case classify.KindLikert, classify.KindMatrix:
		return buildScaleChart(qt, values)
	case classify.KindMultiple:
		return buildMultipleChart(qt, values)
	default:
		return e.buildOpenChart(qt, values)
	}
}

// BuildMatrixChart summarizes a matrix group. questionTexts and columns
// are indexed by absolute column index; members holds each member's
// classification in group order.
func (e *Engine) BuildMatrixChart(group classify.Group, title string, questionTexts []string, members []classify.QuestionType, columns [][]string) MatrixChartData {
	chart := MatrixChartData{
		GroupID: group.ID,
		Title:   title,
		Rows:    make([]MatrixRow, 0, len(members)),
	}
	if len(members) > 0 {
		chart.Options = append([]string(nil), members[0].Options...)
	}

	for _, qt := range members {
		var sub string
		if qt.ColumnIndex < len(questionTexts) {
			sub = strings.TrimSpace(strings.TrimPrefix(questionTexts[qt.ColumnIndex], group.CommonPrefix))
		}
		avg := weightedAverage(qt.ScoreMap, columns[qt.ColumnIndex])
		chart.Rows = append(chart.Rows, MatrixRow{
			ColumnIndex:  qt.ColumnIndex,
			SubQuestion:  sub,
			AverageScore: avg,
		})
	}

	if len(group.Members) > 0 {
		chart.RespondentCount = nonEmptyCount(columns[group.Members[0]])
	}
	return chart
}

func buildMultiSelectChart(qt classify.QuestionType, values []string) ChartData {
	counts := make(map[string]int)
	total := 0
	for _, v := range values {
		for _, part := range classify.SplitMultiValue(v) {
			label := part
			if classify.IsOtherMarker(part) {
				label = classify.OtherLabel
			}
			counts[label]++
			total++
		}
	}

	labels := append([]string(nil), qt.Options...)
	if counts[classify.OtherLabel] > 0 {
		labels = append(labels, classify.OtherLabel)
	}
	// Values can contain options unseen at classification time after a
	// user edit; keep them countable.
	known := make(map[string]bool, len(labels))
	for _, l := range labels {
		known[l] = true
	}
	for label := range counts {
		if !known[label] {
			labels = append(labels, label)
		}
	}

	chart := ChartData{
		ColumnIndex:     qt.ColumnIndex,
		Kind:            qt.Kind,
		RespondentCount: nonEmptyCount(values),
	}
	for _, label := range labels {
		pct := 0.0
		if total > 0 {
			pct = round2(float64(counts[label]) / float64(total) * 100)
		}
		chart.Options = append(chart.Options, OptionCount{
			Option:     label,
			Count:      counts[label],
			Percentage: pct,
		})
	}
	sort.SliceStable(chart.Options, func(i, j int) bool {
		return chart.Options[i].Percentage > chart.Options[j].Percentage
	})
	return chart
}

func buildScaleChart(qt classify.QuestionType, values []string) ChartData {
	chart := ChartData{
		ColumnIndex:     qt.ColumnIndex,
		Kind:            qt.Kind,
		RespondentCount: nonEmptyCount(values),
	}

	optionIndex := make(map[string]int, len(qt.Options))
	counts := make([]int, len(qt.Options))
	for i, o := range qt.Options {
		optionIndex[classify.NormalizeKey(o)] = i
	}

	otherCounts := make(map[string]int)
	var otherOrder []string
	for _, v := range values {
		key := classify.NormalizeKey(v)
		if key == "" {
			continue
		}
		if i, ok := optionIndex[key]; ok {
			counts[i]++
			continue
		}
		if otherCounts[v] == 0 {
			otherOrder = append(otherOrder, v)
		}
		otherCounts[v]++
	}

	// Fixed option order, zero-count entries retained: the scale shape
	// stays visible even when nobody picked an option.
	for i, o := range qt.Options {
		chart.Options = append(chart.Options, OptionCount{Option: o, Count: counts[i]})
	}
	for _, v := range otherOrder {
		chart.Others = append(chart.Others, OptionCount{
			Option: fmt.Sprintf("other(%s)", v),
			Count:  otherCounts[v],
		})
	}

	chart.AverageScore = weightedAverage(qt.ScoreMap, values)
	return chart
}

func buildMultipleChart(qt classify.QuestionType, values []string) ChartData {
	chart := ChartData{
		ColumnIndex:     qt.ColumnIndex,
		Kind:            qt.Kind,
		RespondentCount: nonEmptyCount(values),
	}

	counts := make(map[string]int, len(qt.Options))
	for _, v := range values {
		key := classify.NormalizeKey(v)
		if key != "" {
			counts[key]++
		}
	}
	for _, o := range qt.Options {
		chart.Options = append(chart.Options, OptionCount{
			Option: o,
			Count:  counts[classify.NormalizeKey(o)],
		})
	}
	return chart
}

func (e *Engine) buildOpenChart(qt classify.QuestionType, values []string) ChartData {
	var responses []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			responses = append(responses, v)
		}
	}

	chart := ChartData{
		ColumnIndex:     qt.ColumnIndex,
		Kind:            qt.Kind,
		RespondentCount: len(responses),
	}
	if len(responses) > maxOpenResponses {
		responses = e.sampler.Sample(responses, maxOpenResponses)
	}
	chart.Responses = responses
	return chart
}

// weightedAverage computes sum(score*count)/sum(count) over responses
// whose score-map entry is a real score; other-sentinel and unknown
// values display but never enter the average. Zero scored responses
// yield 0, not a division error.
func weightedAverage(scores map[string]int, values []string) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum, n := 0, 0
	for _, v := range values {
		score, ok := scores[classify.NormalizeKey(v)]
		if !ok || score == classify.ScoreOther {
			continue
		}
		sum += score
		n++
	}
	if n == 0 {
		return 0
	}
	return round2(float64(sum) / float64(n))
}

func nonEmptyCount(values []string) int {
	n := 0
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			n++
		}
	}
	return n
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
