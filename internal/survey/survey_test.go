package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surveylens/surveylens/internal/classify"
)

// fixtureRows: header row 0, question row 1, four answer rows. Columns
// 0..2 form a service-evaluation grid, column 3 is a standalone
// satisfaction question.
func fixtureRows() [][]string {
	return [][]string{
		{"ID", "Q1", "Q2", "Q3"},
		{
			"서비스에 대해 평가해주세요 - 친절함",
			"서비스에 대해 평가해주세요 - 신속성",
			"서비스에 대해 평가해주세요 - 정확성",
			"전반적으로 만족하셨나요?",
		},
		{"매우 만족", "만족", "보통", "매우 만족"},
		{"만족", "보통", "만족", "만족"},
		{"보통", "불만족", "불만족", "보통"},
		{"불만족", "매우 만족", "매우 만족", "불만족"},
	}
}

func buildFixture(t *testing.T) *SurveyData {
	t.Helper()
	s, err := Build(fixtureRows(), 0, 1)
	require.NoError(t, err)
	return s
}

func TestBuild(t *testing.T) {
	s := buildFixture(t)

	require.Len(t, s.Questions, 4)
	for col := 0; col < 3; col++ {
		assert.Equal(t, classify.KindMatrix, s.Questions[col].Kind, "column %d", col)
		assert.Equal(t, 1, s.Questions[col].MatrixGroupID)
	}
	assert.Equal(t, classify.KindLikert, s.Questions[3].Kind)

	require.Len(t, s.Groups, 1)
	assert.Equal(t, []int{0, 1, 2}, s.Groups[0].Members)
	assert.Equal(t, "서비스에 대해 평가해주세요", s.Groups[0].Title)
	assert.Equal(t, 2, s.AnswerStart)
}

func TestBuildInsufficientRows(t *testing.T) {
	rows := fixtureRows()

	tests := []struct {
		name        string
		headerRow   int
		questionRow int
	}{
		{name: "question row is the last row", headerRow: 0, questionRow: len(rows) - 1},
		{name: "question row out of range", headerRow: 0, questionRow: len(rows)},
		{name: "negative header row", headerRow: -1, questionRow: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(rows, tt.headerRow, tt.questionRow)
			assert.ErrorIs(t, err, ErrInsufficientRows)
		})
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	a := buildFixture(t)
	b := buildFixture(t)

	assert.Equal(t, a.Questions, b.Questions)
	assert.Equal(t, a.Groups, b.Groups)
}

func TestChangeColumnTypeLeavesOriginalUntouched(t *testing.T) {
	s := buildFixture(t)

	out, err := s.ChangeColumnType(3, classify.KindOpen)
	require.NoError(t, err)

	assert.Equal(t, classify.KindOpen, out.Questions[3].Kind)
	assert.Empty(t, out.Questions[3].Options)
	assert.Equal(t, classify.KindLikert, s.Questions[3].Kind, "source aggregate must not change")
}

func TestChangeColumnTypeRejectsMatrixTarget(t *testing.T) {
	s := buildFixture(t)

	_, err := s.ChangeColumnType(3, classify.KindMatrix)
	assert.Error(t, err)
}

func TestChangeColumnTypeUnknownColumn(t *testing.T) {
	s := buildFixture(t)

	_, err := s.ChangeColumnType(42, classify.KindOpen)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChangeMatrixMemberTypeDetaches(t *testing.T) {
	s := buildFixture(t)

	out, err := s.ChangeMatrixMemberType(1, 1, classify.KindLikert)
	require.NoError(t, err)

	require.Len(t, out.Groups, 1)
	assert.Equal(t, []int{0, 2}, out.Groups[0].Members)
	assert.Equal(t, classify.KindLikert, out.Questions[1].Kind)
	assert.Zero(t, out.Questions[1].MatrixGroupID)

	// Original keeps all three members.
	assert.Equal(t, []int{0, 1, 2}, s.Groups[0].Members)
}

func TestMatrixGroupDissolvesBelowTwoMembers(t *testing.T) {
	s := buildFixture(t)

	out, err := s.ChangeMatrixMemberType(1, 0, classify.KindOpen)
	require.NoError(t, err)
	out, err = out.ChangeMatrixMemberType(1, 1, classify.KindOpen)
	require.NoError(t, err)

	// The group fell to one member and dissolved; the survivor is an
	// ordinary column again, reclassified from its values.
	assert.Empty(t, out.Groups)
	assert.Equal(t, classify.KindLikert, out.Questions[2].Kind)
	assert.Zero(t, out.Questions[2].MatrixGroupID)
}

func TestChangeMatrixGroupTypeDissolvesWholeGroup(t *testing.T) {
	s := buildFixture(t)

	out, err := s.ChangeMatrixGroupType(1, classify.KindLikert)
	require.NoError(t, err)

	assert.Empty(t, out.Groups)
	for col := 0; col < 3; col++ {
		assert.Equal(t, classify.KindLikert, out.Questions[col].Kind, "column %d", col)
		assert.Zero(t, out.Questions[col].MatrixGroupID)
	}
}

func TestChangeMatrixGroupTypeUnknownGroup(t *testing.T) {
	s := buildFixture(t)

	_, err := s.ChangeMatrixGroupType(9, classify.KindOpen)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPromoteToLikertRemapsResponses(t *testing.T) {
	rows := [][]string{
		{"ID"},
		{"이 제품에 만족하십니까?"},
		{"매우 만족"},
		{"만족"},
		{"보통"},
		{"불만족"},
		{"보통이다요"},
	}
	s, err := Build(rows, 0, 1)
	require.NoError(t, err)

	out, err := s.ChangeColumnType(0, classify.KindLikert)
	require.NoError(t, err)

	require.Equal(t, classify.KindLikert, out.Questions[0].Kind)
	assert.Equal(t, []string{"매우 만족", "만족", "보통", "불만족", "매우 불만족"}, out.Questions[0].Options)

	// The unmatched raw value was rewritten to its nearest reference
	// label, in the rows themselves.
	assert.Equal(t, "보통이다", out.Rows[6][0])
	// The source aggregate keeps the original free text.
	assert.Equal(t, "보통이다요", s.Rows[6][0])
}

func TestForceMultiSelectSplitsDelimiterValues(t *testing.T) {
	// One delimiter cell is below the automatic detection ratio, so the
	// column classifies as multiple choice first.
	rows := [][]string{
		{"ID"},
		{"구매하신 과일을 모두 선택해주세요"},
		{"사과@@배"},
		{"포도"},
		{"귤"},
		{"수박"},
	}
	s, err := Build(rows, 0, 1)
	require.NoError(t, err)
	require.Equal(t, classify.KindMultiple, s.Questions[0].Kind)

	out, err := s.ChangeColumnType(0, classify.KindMultipleSelect)
	require.NoError(t, err)

	qt := out.Questions[0]
	assert.Equal(t, classify.KindMultipleSelect, qt.Kind)
	// The joined cell must be split; the raw delimiter-joined value never
	// becomes an option of its own.
	assert.Equal(t, []string{"사과", "배", "포도", "귤", "수박"}, qt.Options)
	for _, o := range qt.Options {
		assert.NotContains(t, o, classify.MultiValueDelimiter)
	}
}

func TestSaveScoreMap(t *testing.T) {
	s := buildFixture(t)

	out, err := s.SaveScoreMap(3, []classify.Override{
		{Option: "만족", Score: 4},
		{Option: "매우 만족", Score: 5},
		{Option: "해당 없음", IsOther: true},
	})
	require.NoError(t, err)

	qt := out.Questions[3]
	assert.Equal(t, []string{"매우 만족", "만족", "해당 없음"}, qt.Options)
	assert.Equal(t, classify.ScoreOther, qt.ScoreMap["해당 없음"])
	assert.Len(t, s.Questions[3].Options, 5, "source aggregate must not change")
}

func TestSaveScoreMapValidation(t *testing.T) {
	s := buildFixture(t)

	_, err := s.SaveScoreMap(3, []classify.Override{{Option: "만족", Score: 9}})
	assert.Error(t, err)

	_, err = s.SaveScoreMap(42, []classify.Override{{Option: "만족", Score: 3}})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveMatrixGroupScoreMapSharedAcrossMembers(t *testing.T) {
	s := buildFixture(t)

	overrides := []classify.Override{
		{Option: "매우 만족", Score: 5},
		{Option: "만족", Score: 4},
		{Option: "보통", Score: 3},
		{Option: "불만족", Score: 2},
		{Option: "잘 모르겠다", IsOther: true},
	}

	out, err := s.SaveMatrixGroupScoreMap(1, overrides)
	require.NoError(t, err)

	first := out.Questions[0]
	for _, m := range out.Groups[0].Members {
		assert.Equal(t, first.Options, out.Questions[m].Options)
		assert.Equal(t, first.ScoreMap, out.Questions[m].ScoreMap)
	}
}

func TestColumnValues(t *testing.T) {
	s := buildFixture(t)

	assert.Equal(t, []string{"매우 만족", "만족", "보통", "불만족"}, s.ColumnValues(0))
}

func TestGroupQuestions(t *testing.T) {
	s := buildFixture(t)

	g, err := s.GroupByID(1)
	require.NoError(t, err)

	members := s.GroupQuestions(g)
	require.Len(t, members, 3)
	for i, qt := range members {
		assert.Equal(t, g.Members[i], qt.ColumnIndex)
	}
}
