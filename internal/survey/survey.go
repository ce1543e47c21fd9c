package survey

import (
	"errors"
	"fmt"

	"github.com/surveylens/surveylens/internal/classify"
)

// ErrInsufficientRows is the terminal ingestion failure: the table has
// no answer rows below the chosen question row.
var ErrInsufficientRows = errors.New("not enough rows below the question row")

// ErrNotFound covers lookups of unknown columns or matrix groups.
var ErrNotFound = errors.New("not found")

// MatrixGroup is a detected group plus its derived display title.
type MatrixGroup struct {
	classify.Group
	Title string `json:"title"`
}

// SurveyData is the aggregate root: the decoded table, the full
// classification and the derived matrix groups. It is never mutated in
// place; every mutation entry point returns a new fully consistent
// aggregate and leaves the receiver untouched, so callers replace the
// stored aggregate wholesale.
type SurveyData struct {
	ID            string                  `json:"id"`
	Headers       []string                `json:"headers"`
	QuestionTexts []string                `json:"question_texts"`
	Rows          [][]string              `json:"-"`
	HeaderRow     int                     `json:"header_row"`
	QuestionRow   int                     `json:"question_row"`
	AnswerStart   int                     `json:"answer_start"`
	Questions     []classify.QuestionType `json:"questions"`
	Groups        []MatrixGroup           `json:"matrix_groups"`
}

// Build classifies a decoded table. headerRow and questionRow are
// 0-based and user-selectable; answers start on the row after the
// question row and at least one answer row must exist.
func Build(rows [][]string, headerRow, questionRow int) (*SurveyData, error) {
	if headerRow < 0 || questionRow < 0 || headerRow >= len(rows) || questionRow >= len(rows) {
		return nil, fmt.Errorf("row index out of range (header %d, question %d, rows %d): %w",
			headerRow, questionRow, len(rows), ErrInsufficientRows)
	}
	answerStart := questionRow + 1
	if answerStart >= len(rows) {
		return nil, fmt.Errorf("question row %d leaves no answer rows: %w", questionRow, ErrInsufficientRows)
	}

	texts := rows[questionRow]
	columns := classify.Columns(rows[answerStart:], len(texts))
	questions, groups := classify.ClassifyColumns(texts, columns)

	s := &SurveyData{
		Headers:       rows[headerRow],
		QuestionTexts: texts,
		Rows:          rows,
		HeaderRow:     headerRow,
		QuestionRow:   questionRow,
		AnswerStart:   answerStart,
		Questions:     questions,
	}
	for _, g := range groups {
		s.Groups = append(s.Groups, MatrixGroup{
			Group: g,
			Title: groupTitle(memberTexts(texts, g.Members), g.CommonPrefix),
		})
	}
	return s, nil
}

// ColumnValues returns the answer cells of one column.
func (s *SurveyData) ColumnValues(col int) []string {
	values := make([]string, 0, len(s.Rows)-s.AnswerStart)
	for _, row := range s.Rows[s.AnswerStart:] {
		if col < len(row) {
			values = append(values, row[col])
		} else {
			values = append(values, "")
		}
	}
	return values
}

// Question finds the classification of one column.
func (s *SurveyData) Question(col int) (classify.QuestionType, error) {
	if col < 0 || col >= len(s.Questions) {
		return classify.QuestionType{}, fmt.Errorf("column %d: %w", col, ErrNotFound)
	}
	return s.Questions[col], nil
}

// GroupByID finds a matrix group.
func (s *SurveyData) GroupByID(id int) (MatrixGroup, error) {
	for _, g := range s.Groups {
		if g.ID == id {
			return g, nil
		}
	}
	return MatrixGroup{}, fmt.Errorf("matrix group %d: %w", id, ErrNotFound)
}

// GroupQuestions returns the member classifications of a group in
// member order.
func (s *SurveyData) GroupQuestions(g MatrixGroup) []classify.QuestionType {
	members := make([]classify.QuestionType, 0, len(g.Members))
	for _, m := range g.Members {
		members = append(members, s.Questions[m])
	}
	return members
}

// ChangeColumnType reclassifies one column to a user-chosen type and
// returns the new aggregate. A matrix member is detached from its group
// first; a group left with fewer than 2 members dissolves and its sole
// survivor is reclassified as an ordinary column. KindMatrix is not a
// valid target, matrix membership is structural.
func (s *SurveyData) ChangeColumnType(col int, kind classify.Kind) (*SurveyData, error) {
	if _, err := s.Question(col); err != nil {
		return nil, err
	}
	if kind == classify.KindMatrix {
		return nil, fmt.Errorf("column %d: matrix membership cannot be assigned directly", col)
	}

	out := s.clone()
	out.detachFromGroup(col)

	qt, err := out.retype(col, kind)
	if err != nil {
		return nil, err
	}
	out.Questions[col] = qt
	return out, nil
}

// ChangeMatrixMemberType detaches one member from its group and applies
// the new type to it.
func (s *SurveyData) ChangeMatrixMemberType(groupID, col int, kind classify.Kind) (*SurveyData, error) {
	g, err := s.GroupByID(groupID)
	if err != nil {
		return nil, err
	}
	if !contains(g.Members, col) {
		return nil, fmt.Errorf("column %d not in matrix group %d: %w", col, groupID, ErrNotFound)
	}
	return s.ChangeColumnType(col, kind)
}

// ChangeMatrixGroupType dissolves a whole group, applying the new type
// to every former member.
func (s *SurveyData) ChangeMatrixGroupType(groupID int, kind classify.Kind) (*SurveyData, error) {
	g, err := s.GroupByID(groupID)
	if err != nil {
		return nil, err
	}
	if kind == classify.KindMatrix {
		return nil, fmt.Errorf("matrix group %d: already a matrix", groupID)
	}

	out := s.clone()
	members := append([]int(nil), g.Members...)
	out.removeGroup(groupID)
	for _, m := range members {
		qt, err := out.retype(m, kind)
		if err != nil {
			return nil, err
		}
		out.Questions[m] = qt
	}
	return out, nil
}

// SaveScoreMap applies manual option/score edits to one column,
// rewriting options and score map together.
func (s *SurveyData) SaveScoreMap(col int, overrides []classify.Override) (*SurveyData, error) {
	qt, err := s.Question(col)
	if err != nil {
		return nil, err
	}

	updated, err := classify.ApplyOverrides(qt, overrides)
	if err != nil {
		return nil, err
	}

	out := s.clone()
	out.Questions[col] = updated
	return out, nil
}

// SaveMatrixGroupScoreMap applies one override set to every member of a
// group. Members of one group always share options and score map; the
// whole group updates in a single new aggregate.
func (s *SurveyData) SaveMatrixGroupScoreMap(groupID int, overrides []classify.Override) (*SurveyData, error) {
	g, err := s.GroupByID(groupID)
	if err != nil {
		return nil, err
	}

	out := s.clone()
	for _, m := range g.Members {
		updated, err := classify.ApplyOverrides(out.Questions[m], overrides)
		if err != nil {
			return nil, err
		}
		out.Questions[m] = updated
	}
	return out, nil
}

// retype builds the new classification for a column the user retyped.
// The column must already be outside any matrix group.
func (s *SurveyData) retype(col int, kind classify.Kind) (classify.QuestionType, error) {
	values := s.ColumnValues(col)

	switch kind {
	case classify.KindOpen:
		return classify.QuestionType{ColumnIndex: col, Kind: classify.KindOpen}, nil

	case classify.KindMultiple:
		return classify.QuestionType{
			ColumnIndex: col,
			Kind:        classify.KindMultiple,
			Options:     classify.DistinctValues(values),
		}, nil

	case classify.KindMultipleSelect:
		return classify.ForceMultiSelect(col, values), nil

	case classify.KindLikert:
		return s.promoteToLikert(col, values)
	}

	return classify.QuestionType{}, fmt.Errorf("column %d: unknown question type %q", col, kind)
}

// promoteToLikert derives a 5-point mapping for a column the user
// promoted: a matching catalog scale if one exists, otherwise the
// positional 5..1 heuristic over the column's five distinct values.
// Raw responses outside the mapping are rewritten to their nearest
// reference label; the original free text for those cells is gone.
func (s *SurveyData) promoteToLikert(col int, values []string) (classify.QuestionType, error) {
	qt := classify.QuestionType{ColumnIndex: col, Kind: classify.KindLikert}
	distinct := classify.DistinctValues(values)

	if scale := classify.MatchScale(distinct); scale != nil {
		qt.Options = append([]string(nil), scale.Responses...)
		qt.ScoreMap = make(map[string]int, len(scale.Responses))
		for i, r := range scale.Responses {
			qt.ScoreMap[classify.NormalizeKey(r)] = scale.Scores[i]
		}
	} else {
		scores := classify.SynthesizeScores(distinct)
		if scores == nil {
			return classify.QuestionType{}, fmt.Errorf(
				"column %d: %d distinct values cannot form a 5-point scale", col, len(distinct))
		}
		qt.Options = distinct
		qt.ScoreMap = scores
	}

	s.rewriteColumn(col, classify.RemapValues(values, qt.ScoreMap))
	return qt, nil
}

// rewriteColumn replaces one column's answer cells, copying each
// affected row so the previous aggregate's rows stay intact.
func (s *SurveyData) rewriteColumn(col int, values []string) {
	for i, v := range values {
		rowIdx := s.AnswerStart + i
		row := append([]string(nil), s.Rows[rowIdx]...)
		for len(row) <= col {
			row = append(row, "")
		}
		row[col] = v
		s.Rows[rowIdx] = row
	}
}

// detachFromGroup removes a column from whichever group holds it,
// dissolving the group if fewer than 2 members remain. The survivor of
// a dissolved group is reclassified as an ordinary column.
func (s *SurveyData) detachFromGroup(col int) {
	for gi := range s.Groups {
		g := &s.Groups[gi]
		if !contains(g.Members, col) {
			continue
		}

		kept := make([]int, 0, len(g.Members)-1)
		for _, m := range g.Members {
			if m != col {
				kept = append(kept, m)
			}
		}
		g.Members = kept

		if len(kept) < 2 {
			for _, m := range kept {
				s.Questions[m] = classify.ClassifyColumn(m, s.ColumnValues(m))
			}
			s.removeGroup(g.ID)
		}
		return
	}
}

func (s *SurveyData) removeGroup(id int) {
	kept := s.Groups[:0]
	for _, g := range s.Groups {
		if g.ID != id {
			kept = append(kept, g)
		}
	}
	s.Groups = kept
}

// clone copies everything a mutation may touch. Inner row slices are
// shared until rewriteColumn copies the ones it changes.
func (s *SurveyData) clone() *SurveyData {
	out := *s
	out.Rows = append([][]string(nil), s.Rows...)
	out.Questions = make([]classify.QuestionType, len(s.Questions))
	for i, q := range s.Questions {
		out.Questions[i] = q.Clone()
	}
	out.Groups = make([]MatrixGroup, len(s.Groups))
	for i, g := range s.Groups {
		out.Groups[i] = g
		out.Groups[i].Members = append([]int(nil), g.Members...)
	}
	return &out
}

func memberTexts(texts []string, members []int) []string {
	out := make([]string, 0, len(members))
	for _, m := range members {
		if m < len(texts) {
			out = append(out, texts[m])
		}
	}
	return out
}

func contains(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
