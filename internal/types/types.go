package types

// TypeChangeRequest is the body of the question/group type change endpoints
type TypeChangeRequest struct {
	Type string `json:"type" binding:"required"`
}

// ScoreOverride is one option entry of a score map override
type ScoreOverride struct {
	Option  string `json:"option" binding:"required"`
	Score   int    `json:"score"`
	IsOther bool   `json:"is_other"`
}

// ScoreMapRequest is the body of the score map endpoints
type ScoreMapRequest struct {
	Overrides []ScoreOverride `json:"overrides" binding:"required"`
}

// QuestionView is the API shape of one classified column
type QuestionView struct {
	ColumnIndex   int            `json:"column_index"`
	Text          string         `json:"text"`
	Kind          string         `json:"kind"`
	MatrixGroupID int            `json:"matrix_group_id,omitempty"`
	Options       []string       `json:"options,omitempty"`
	ScoreMap      map[string]int `json:"score_map,omitempty"`
}

// GroupView is the API shape of one matrix group
type GroupView struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Members []int  `json:"members"`
}

// SurveyResponse is the classified model returned by upload and fetch
type SurveyResponse struct {
	ID          string         `json:"id"`
	RowCount    int            `json:"row_count"`
	ColumnCount int            `json:"column_count"`
	AnswerStart int            `json:"answer_start"`
	Questions   []QuestionView `json:"questions"`
	Groups      []GroupView    `json:"groups"`
}
