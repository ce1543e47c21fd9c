package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singleColumn(values []string) ([]string, [][]string) {
	return []string{"질문"}, [][]string{values}
}

func TestClassifyColumnsMultiSelectWithOther(t *testing.T) {
	texts, columns := singleColumn([]string{"A@@B", "A", "C_Others: 기타의견", "B"})

	result, groups := ClassifyColumns(texts, columns)

	require.Len(t, result, 1)
	assert.Empty(t, groups)

	qt := result[0]
	assert.Equal(t, KindMultipleSelect, qt.Kind)
	assert.Equal(t, []string{"A", "B"}, qt.Options)
	assert.Equal(t, []string{"C_Others: 기타의견"}, qt.OtherResponses)
}

func TestClassifyColumnsLikertFromCatalog(t *testing.T) {
	texts, columns := singleColumn([]string{"매우 만족", "만족", "보통", "불만족", "매우 만족", "만족"})

	result, _ := ClassifyColumns(texts, columns)

	qt := result[0]
	assert.Equal(t, KindLikert, qt.Kind)
	assert.Equal(t, []string{"매우 만족", "만족", "보통", "불만족", "매우 불만족"}, qt.Options)
	assert.Equal(t, map[string]int{
		"매우 만족":  5,
		"만족":     4,
		"보통":     3,
		"불만족":    2,
		"매우 불만족": 1,
	}, qt.ScoreMap)
	assert.Empty(t, qt.OtherResponses)
}

func TestClassifyColumnsLikertBucketsUnknownValues(t *testing.T) {
	texts, columns := singleColumn([]string{"매우 만족", "만족", "보통", "불만족", "잘 모르겠다"})

	result, _ := ClassifyColumns(texts, columns)

	qt := result[0]
	require.Equal(t, KindLikert, qt.Kind)
	assert.Equal(t, []string{"잘 모르겠다"}, qt.OtherResponses)
	_, inMap := qt.ScoreMap["잘 모르겠다"]
	assert.False(t, inMap)
}

func TestClassifyColumnsCardinalityBands(t *testing.T) {
	tests := []struct {
		name     string
		values   []string
		expected Kind
	}{
		{
			name:     "two distinct values is multiple choice",
			values:   []string{"예", "아니오", "예", "예"},
			expected: KindMultiple,
		},
		{
			name:     "six distinct values is multiple choice",
			values:   []string{"a", "b", "c", "d", "e", "f"},
			expected: KindMultiple,
		},
		{
			name: "eight distinct non-scale values fall back to open",
			values: []string{
				"의견 하나", "의견 둘", "의견 셋", "의견 넷",
				"의견 다섯", "의견 여섯", "의견 일곱", "의견 여덟",
			},
			expected: KindOpen,
		},
		{
			name: "ten distinct values is open text",
			values: []string{
				"v1", "v2", "v3", "v4", "v5",
				"v6", "v7", "v8", "v9", "v10",
			},
			expected: KindOpen,
		},
		{
			name:     "single distinct value falls back to open",
			values:   []string{"동일", "동일", "동일"},
			expected: KindOpen,
		},
		{
			name:     "empty column falls back to open",
			values:   []string{"", "", ""},
			expected: KindOpen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			texts, columns := singleColumn(tt.values)
			result, _ := ClassifyColumns(texts, columns)
			require.Len(t, result, 1)
			assert.Equal(t, tt.expected, result[0].Kind)
		})
	}
}

func TestClassifyColumnsMultipleKeepsFirstOccurrenceOrder(t *testing.T) {
	texts, columns := singleColumn([]string{"셋", "하나", "둘", "하나", "셋"})

	result, _ := ClassifyColumns(texts, columns)

	assert.Equal(t, KindMultiple, result[0].Kind)
	assert.Equal(t, []string{"셋", "하나", "둘"}, result[0].Options)
}

// A 3-point grid has few distinct values; matrix membership must win
// over the multiple-choice band.
func TestClassifyColumnsMatrixOverridesCardinality(t *testing.T) {
	texts := []string{
		"서비스에 대해 평가해주세요 - 친절함",
		"서비스에 대해 평가해주세요 - 신속성",
		"서비스에 대해 평가해주세요 - 정확성",
	}
	threePoint := []string{"좋음", "보통", "나쁨"}
	columns := [][]string{threePoint, threePoint, threePoint}

	result, groups := ClassifyColumns(texts, columns)

	require.Len(t, groups, 1)
	for col, qt := range result {
		assert.Equal(t, KindMatrix, qt.Kind, "column %d", col)
		assert.Equal(t, 1, qt.MatrixGroupID)
		assert.Equal(t, "서비스에 대해 평가해주세요 - ", qt.CommonPrefix)
	}
}

func TestClassifyColumnsMatrixWithScale(t *testing.T) {
	texts := []string{
		"서비스에 대해 평가해주세요 - 친절함",
		"서비스에 대해 평가해주세요 - 신속성",
	}
	values := []string{"매우 만족", "만족", "보통", "모름"}
	columns := [][]string{values, values}

	result, groups := ClassifyColumns(texts, columns)

	require.Len(t, groups, 1)
	qt := result[0]
	require.Equal(t, KindMatrix, qt.Kind)
	assert.Equal(t, []string{"매우 만족", "만족", "보통", "불만족", "매우 불만족"}, qt.Options)
	// Scored labels carry scale scores, unmatched distinct values the
	// other sentinel.
	assert.Equal(t, 5, qt.ScoreMap["매우 만족"])
	assert.Equal(t, ScoreOther, qt.ScoreMap["모름"])
}

func TestClassifyColumnsMultiSelectWinsOverCardinality(t *testing.T) {
	// Raw combination cardinality would be high enough for open text;
	// the delimiter pass must claim the column first.
	values := []string{
		"사과@@배", "배@@포도", "사과@@포도", "사과", "배", "포도",
		"사과@@배@@포도", "배", "포도@@사과", "배@@사과",
	}
	texts, columns := singleColumn(values)

	result, _ := ClassifyColumns(texts, columns)

	assert.Equal(t, KindMultipleSelect, result[0].Kind)
	assert.ElementsMatch(t, []string{"사과", "배", "포도"}, result[0].Options)
}

// Columns claimed by the multi-select pass must not survive as matrix
// group members: a grid whose every column is multi-select leaves no
// group behind.
func TestClassifyColumnsMultiSelectDissolvesClaimedGroup(t *testing.T) {
	texts := []string{
		"구매하신 과일을 모두 선택해주세요 - 1차 방문",
		"구매하신 과일을 모두 선택해주세요 - 2차 방문",
	}
	multiValues := []string{"사과@@배", "D_Others: 기타 과일", "사과", "배"}
	columns := [][]string{multiValues, multiValues}

	result, groups := ClassifyColumns(texts, columns)

	assert.Empty(t, groups)
	for col, qt := range result {
		assert.Equal(t, KindMultipleSelect, qt.Kind, "column %d", col)
		assert.Zero(t, qt.MatrixGroupID, "column %d", col)
	}
}

// A partially claimed group keeps its unclaimed members and stays a
// group as long as 2 remain.
func TestClassifyColumnsPrunesClaimedMemberFromGroup(t *testing.T) {
	texts := []string{
		"구매하신 과일을 모두 선택해주세요 - 1차 방문",
		"구매하신 과일을 모두 선택해주세요 - 2차 방문",
		"구매하신 과일을 모두 선택해주세요 - 3차 방문",
	}
	// Same distinct set everywhere, but only the first column clears the
	// marked-cell ratio.
	marked := []string{"사과@@배", "D_Others: 기타 과일", "사과", "배"}
	diluted := []string{"사과@@배", "D_Others: 기타 과일", "사과", "배", "사과", "배", "사과", "배"}
	columns := [][]string{marked, diluted, diluted}

	result, groups := ClassifyColumns(texts, columns)

	require.Len(t, groups, 1)
	assert.Equal(t, 1, groups[0].ID)
	assert.Equal(t, []int{1, 2}, groups[0].Members)

	assert.Equal(t, KindMultipleSelect, result[0].Kind)
	assert.Zero(t, result[0].MatrixGroupID)
	for _, col := range groups[0].Members {
		assert.Equal(t, KindMatrix, result[col].Kind, "column %d", col)
		assert.Equal(t, 1, result[col].MatrixGroupID, "column %d", col)
	}
}

func TestForceMultiSelectSplitsBelowRatio(t *testing.T) {
	// One delimiter cell in four is below the detection ratio, but a
	// forced classification must still split it.
	qt := ForceMultiSelect(0, []string{"사과@@배", "포도", "귤", "수박"})

	assert.Equal(t, KindMultipleSelect, qt.Kind)
	assert.Equal(t, []string{"사과", "배", "포도", "귤", "수박"}, qt.Options)
	for _, o := range qt.Options {
		assert.NotContains(t, o, MultiValueDelimiter)
	}
}

func TestClassifyColumnsIdempotent(t *testing.T) {
	texts := []string{
		"서비스에 대해 평가해주세요 - 친절함",
		"서비스에 대해 평가해주세요 - 신속성",
		"전반적으로 만족하셨나요?",
		"자유 의견을 남겨주세요",
	}
	grid := []string{"매우 만족", "만족", "보통", "불만족"}
	columns := [][]string{
		grid,
		grid,
		{"매우 만족", "만족", "보통", "불만족"},
		{"좋아요", "개선이 필요해요", "배송이 느렸습니다", "포장이 훌륭했어요", "재구매 의사 있음",
			"직원이 친절했음", "웹사이트가 불편함", "가격이 합리적", "추천합니다", "그저 그래요"},
	}

	first, firstGroups := ClassifyColumns(texts, columns)
	second, secondGroups := ClassifyColumns(texts, columns)

	assert.Equal(t, first, second)
	assert.Equal(t, firstGroups, secondGroups)
}

func TestClassifyColumnsTotality(t *testing.T) {
	texts := []string{"q1", "q2", "q3"}
	columns := [][]string{
		{},
		{"값"},
		{"a@@b", "c@@d", "e"},
	}

	result, _ := ClassifyColumns(texts, columns)

	valid := map[Kind]bool{
		KindMultiple: true, KindMultipleSelect: true,
		KindOpen: true, KindLikert: true, KindMatrix: true,
	}
	for col, qt := range result {
		assert.True(t, valid[qt.Kind], "column %d has kind %q", col, qt.Kind)
		assert.Equal(t, col, qt.ColumnIndex)
	}
}

func TestSplitMultiValue(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, SplitMultiValue("A@@B"))
	assert.Equal(t, []string{"A"}, SplitMultiValue(" A "))
	assert.Equal(t, []string{"A", "B"}, SplitMultiValue("A@@ @@B"))
	assert.Empty(t, SplitMultiValue(""))
}

func TestIsOtherMarker(t *testing.T) {
	assert.True(t, IsOtherMarker("C_Others: 기타의견"))
	assert.True(t, IsOtherMarker("Others: 직접 입력"))
	assert.True(t, IsOtherMarker("other: something"))
	assert.False(t, IsOtherMarker("브라더스: 굿"))
	assert.False(t, IsOtherMarker("일반 옵션"))
}

func TestColumns(t *testing.T) {
	rows := [][]string{
		{"a1", "b1"},
		{"a2"},
		{"a3", "b3", "c3"},
	}

	cols := Columns(rows, 3)

	require.Len(t, cols, 3)
	assert.Equal(t, []string{"a1", "a2", "a3"}, cols[0])
	assert.Equal(t, []string{"b1", "", "b3"}, cols[1])
	assert.Equal(t, []string{"", "", "c3"}, cols[2])
}

func TestDistinctValues(t *testing.T) {
	assert.Equal(t,
		[]string{"b", "a", "c"},
		DistinctValues([]string{"b", "a", " b ", "", "c", "a"}),
	)
	assert.Empty(t, DistinctValues([]string{"", "  "}))
}
