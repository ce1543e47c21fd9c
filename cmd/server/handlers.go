package main

import (
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/surveylens/surveylens/internal/aggregate"
	"github.com/surveylens/surveylens/internal/classify"
	"github.com/surveylens/surveylens/internal/errors"
	"github.com/surveylens/surveylens/internal/ingest"
	"github.com/surveylens/surveylens/internal/monitoring"
	"github.com/surveylens/surveylens/internal/survey"
	"github.com/surveylens/surveylens/internal/types"
)

// Server bundles the request handlers with their collaborators.
type Server struct {
	store          *survey.Store
	engine         *aggregate.Engine
	metrics        *monitoring.Metrics
	logger         *monitoring.Logger
	maxUploadBytes int64
}

// NewServer wires the handlers
func NewServer(store *survey.Store, engine *aggregate.Engine, metrics *monitoring.Metrics, logger *monitoring.Logger, maxUploadBytes int64) *Server {
	return &Server{
		store:          store,
		engine:         engine,
		metrics:        metrics,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// RegisterRoutes mounts the API on a router group. Extra middleware, such
// as a tighter rate limit, applies to the upload route only.
func (s *Server) RegisterRoutes(r *gin.Engine, uploadMiddleware ...gin.HandlerFunc) {
	api := r.Group("/api/v1")
	{
		api.POST("/surveys", append(uploadMiddleware, s.handleUpload)...)
		api.GET("/surveys/:id", s.handleGetSurvey)
		api.PUT("/surveys/:id/questions/:col/type", s.handleChangeColumnType)
		api.PUT("/surveys/:id/questions/:col/scores", s.handleSaveScoreMap)
		api.GET("/surveys/:id/questions/:col/chart", s.handleColumnChart)
		api.PUT("/surveys/:id/groups/:gid/type", s.handleChangeGroupType)
		api.PUT("/surveys/:id/groups/:gid/members/:col/type", s.handleChangeMemberType)
		api.PUT("/surveys/:id/groups/:gid/scores", s.handleSaveGroupScoreMap)
		api.GET("/surveys/:id/groups/:gid/chart", s.handleGroupChart)
	}

	r.GET("/health", s.handleHealth)
	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.metrics.GetStats())
	})
}

func (s *Server) handleUpload(c *gin.Context) {
	start := time.Now()

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		s.fail(c, errors.NewValidationError("missing form file", err.Error()))
		return
	}

	headerRow, ok := formInt(c, "header_row", 0)
	if !ok {
		s.fail(c, errors.NewValidationError("header_row must be an integer"))
		return
	}
	questionRow, ok := formInt(c, "question_row", headerRow)
	if !ok {
		s.fail(c, errors.NewValidationError("question_row must be an integer"))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		s.fail(c, errors.NewIngestionError("could not open upload", err))
		return
	}
	defer f.Close()

	rows, err := ingest.Decode(fileHeader.Filename, f)
	if err != nil {
		s.fail(c, errors.NewIngestionError("could not decode upload", err))
		return
	}

	data, err := survey.Build(rows, headerRow, questionRow)
	if err != nil {
		s.fail(c, errors.NewIngestionError("could not classify survey", err))
		return
	}

	id := s.store.Put(data)
	s.metrics.IncrementUpload()
	s.metrics.RecordClassification(kindCounts(data.Questions))
	s.logger.IngestLogger(fileHeader.Filename, len(rows), len(data.Questions), time.Since(start))
	s.logger.ClassificationLogger(id, len(data.Questions), len(data.Groups), kindCounts(data.Questions), time.Since(start))

	c.JSON(http.StatusCreated, surveyResponse(data))
}

func (s *Server) handleGetSurvey(c *gin.Context) {
	data, ok := s.store.Get(c.Param("id"))
	if !ok {
		s.fail(c, errors.NewNotFoundError("survey", c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, surveyResponse(data))
}

func (s *Server) handleChangeColumnType(c *gin.Context) {
	data, col, kind, ok := s.typeChangeArgs(c)
	if !ok {
		return
	}

	out, err := data.ChangeColumnType(col, kind)
	if err != nil {
		s.failMutation(c, err)
		return
	}

	s.commit(c, out, "change_column_type", col)
}

func (s *Server) handleChangeMemberType(c *gin.Context) {
	data, col, kind, ok := s.typeChangeArgs(c)
	if !ok {
		return
	}
	gid, ok := paramInt(c, "gid")
	if !ok {
		s.fail(c, errors.NewValidationError("group id must be an integer"))
		return
	}

	out, err := data.ChangeMatrixMemberType(gid, col, kind)
	if err != nil {
		s.failMutation(c, err)
		return
	}

	s.commit(c, out, "change_matrix_member_type", col)
}

func (s *Server) handleChangeGroupType(c *gin.Context) {
	data, ok := s.store.Get(c.Param("id"))
	if !ok {
		s.fail(c, errors.NewNotFoundError("survey", c.Param("id")))
		return
	}
	gid, ok := paramInt(c, "gid")
	if !ok {
		s.fail(c, errors.NewValidationError("group id must be an integer"))
		return
	}

	var req types.TypeChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}
	kind, ok := classify.ParseKind(req.Type)
	if !ok {
		s.fail(c, errors.NewValidationError("unknown question type", req.Type))
		return
	}

	out, err := data.ChangeMatrixGroupType(gid, kind)
	if err != nil {
		s.failMutation(c, err)
		return
	}

	s.commit(c, out, "change_matrix_group_type", gid)
}

func (s *Server) handleSaveScoreMap(c *gin.Context) {
	data, ok := s.store.Get(c.Param("id"))
	if !ok {
		s.fail(c, errors.NewNotFoundError("survey", c.Param("id")))
		return
	}
	col, ok := paramInt(c, "col")
	if !ok {
		s.fail(c, errors.NewValidationError("column index must be an integer"))
		return
	}

	overrides, ok := s.scoreOverrides(c)
	if !ok {
		return
	}

	out, err := data.SaveScoreMap(col, overrides)
	if err != nil {
		s.failMutation(c, err)
		return
	}

	s.metrics.IncrementScoreMapSave()
	s.store.Put(out)
	s.logger.MutationLogger(out.ID, "save_score_map", col)
	c.JSON(http.StatusOK, surveyResponse(out))
}

func (s *Server) handleSaveGroupScoreMap(c *gin.Context) {
	data, ok := s.store.Get(c.Param("id"))
	if !ok {
		s.fail(c, errors.NewNotFoundError("survey", c.Param("id")))
		return
	}
	gid, ok := paramInt(c, "gid")
	if !ok {
		s.fail(c, errors.NewValidationError("group id must be an integer"))
		return
	}

	overrides, ok := s.scoreOverrides(c)
	if !ok {
		return
	}

	out, err := data.SaveMatrixGroupScoreMap(gid, overrides)
	if err != nil {
		s.failMutation(c, err)
		return
	}

	s.metrics.IncrementScoreMapSave()
	s.store.Put(out)
	s.logger.MutationLogger(out.ID, "save_matrix_group_score_map", gid)
	c.JSON(http.StatusOK, surveyResponse(out))
}

func (s *Server) handleColumnChart(c *gin.Context) {
	data, ok := s.store.Get(c.Param("id"))
	if !ok {
		s.fail(c, errors.NewNotFoundError("survey", c.Param("id")))
		return
	}
	col, ok := paramInt(c, "col")
	if !ok {
		s.fail(c, errors.NewValidationError("column index must be an integer"))
		return
	}

	qt, err := data.Question(col)
	if err != nil {
		s.failMutation(c, err)
		return
	}
	if qt.Kind == classify.KindMatrix {
		s.fail(c, errors.NewValidationError("matrix members are charted through their group"))
		return
	}

	s.metrics.IncrementChartBuild()
	c.JSON(http.StatusOK, s.engine.BuildColumnChart(qt, data.ColumnValues(col)))
}

func (s *Server) handleGroupChart(c *gin.Context) {
	data, ok := s.store.Get(c.Param("id"))
	if !ok {
		s.fail(c, errors.NewNotFoundError("survey", c.Param("id")))
		return
	}
	gid, ok := paramInt(c, "gid")
	if !ok {
		s.fail(c, errors.NewValidationError("group id must be an integer"))
		return
	}

	g, err := data.GroupByID(gid)
	if err != nil {
		s.failMutation(c, err)
		return
	}

	// BuildMatrixChart indexes columns by absolute column index.
	members := data.GroupQuestions(g)
	columns := make([][]string, len(data.Questions))
	for _, col := range g.Members {
		columns[col] = data.ColumnValues(col)
	}

	s.metrics.IncrementChartBuild()
	c.JSON(http.StatusOK, s.engine.BuildMatrixChart(g.Group, g.Title, data.QuestionTexts, members, columns))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"timestamp":  time.Now().Format(time.RFC3339),
		"version":    "1.0.0",
		"store_size": s.store.Len(),
		"metrics":    s.metrics.GetStats(),
	})
}

// typeChangeArgs resolves the survey, column and requested kind shared by
// the type change handlers.
func (s *Server) typeChangeArgs(c *gin.Context) (*survey.SurveyData, int, classify.Kind, bool) {
	data, ok := s.store.Get(c.Param("id"))
	if !ok {
		s.fail(c, errors.NewNotFoundError("survey", c.Param("id")))
		return nil, 0, "", false
	}

	col, ok := paramInt(c, "col")
	if !ok {
		s.fail(c, errors.NewValidationError("column index must be an integer"))
		return nil, 0, "", false
	}

	var req types.TypeChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, errors.NewValidationError("invalid request body", err.Error()))
		return nil, 0, "", false
	}

	kind, ok := classify.ParseKind(req.Type)
	if !ok {
		s.fail(c, errors.NewValidationError("unknown question type", req.Type))
		return nil, 0, "", false
	}

	return data, col, kind, true
}

func (s *Server) scoreOverrides(c *gin.Context) ([]classify.Override, bool) {
	var req types.ScoreMapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, errors.NewValidationError("invalid request body", err.Error()))
		return nil, false
	}

	overrides := make([]classify.Override, len(req.Overrides))
	for i, o := range req.Overrides {
		overrides[i] = classify.Override{Option: o.Option, Score: o.Score, IsOther: o.IsOther}
	}
	return overrides, true
}

// commit stores the mutated aggregate and responds with the new model
func (s *Server) commit(c *gin.Context, out *survey.SurveyData, operation string, subject int) {
	s.metrics.IncrementTypeChange()
	s.store.Put(out)
	s.logger.MutationLogger(out.ID, operation, subject)
	c.JSON(http.StatusOK, surveyResponse(out))
}

func (s *Server) fail(c *gin.Context, appErr *errors.AppError) {
	errors.LogError(c, appErr)
	c.JSON(appErr.HTTPStatus, appErr)
}

// failMutation maps domain errors from the survey package onto the API
// error taxonomy.
func (s *Server) failMutation(c *gin.Context, err error) {
	switch {
	case stderrors.Is(err, survey.ErrNotFound):
		s.fail(c, errors.NewNotFoundError("resource", err.Error()))
	default:
		s.fail(c, errors.NewValidationError(err.Error()))
	}
}

func surveyResponse(data *survey.SurveyData) types.SurveyResponse {
	questions := make([]types.QuestionView, len(data.Questions))
	for i, qt := range data.Questions {
		questions[i] = types.QuestionView{
			ColumnIndex:   qt.ColumnIndex,
			Text:          data.QuestionTexts[qt.ColumnIndex],
			Kind:          string(qt.Kind),
			MatrixGroupID: qt.MatrixGroupID,
			Options:       qt.Options,
			ScoreMap:      qt.ScoreMap,
		}
	}

	groups := make([]types.GroupView, len(data.Groups))
	for i, g := range data.Groups {
		groups[i] = types.GroupView{ID: g.ID, Title: g.Title, Members: g.Members}
	}

	return types.SurveyResponse{
		ID:          data.ID,
		RowCount:    len(data.Rows) - data.AnswerStart,
		ColumnCount: len(data.Questions),
		AnswerStart: data.AnswerStart,
		Questions:   questions,
		Groups:      groups,
	}
}

func kindCounts(questions []classify.QuestionType) map[string]int {
	counts := make(map[string]int)
	for _, qt := range questions {
		counts[string(qt.Kind)]++
	}
	return counts
}

func formInt(c *gin.Context, field string, fallback int) (int, bool) {
	raw := c.PostForm(field)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func paramInt(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, false
	}
	return n, true
}
