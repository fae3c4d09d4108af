package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/MikeGii/medunacy-sub000/internal/models"
	"github.com/MikeGii/medunacy-sub000/internal/services"
	"github.com/MikeGii/medunacy-sub000/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SessionHandler struct {
	sessionService *services.SessionService
	hub            *ws.Hub
	clock          services.Clock
}

func NewSessionHandler(sessionService *services.SessionService, hub *ws.Hub, clock services.Clock) *SessionHandler {
	return &SessionHandler{sessionService: sessionService, hub: hub, clock: clock}
}

type StartSessionRequest struct {
	TestID uint   `json:"test_id" binding:"required" example:"1"`
	Mode   string `json:"mode" binding:"required,oneof=training exam" example:"training"`
}

type AnswerRequest struct {
	OptionIDs []uint `json:"option_ids" example:"3,4"`
}

// SessionView is a session as shown to its owner. The test comes from the
// snapshot taken at start, without correctness flags.
type SessionView struct {
	ID          uuid.UUID              `json:"id"`
	TestID      uint                   `json:"test_id"`
	Mode        string                 `json:"mode"`
	Status      string                 `json:"status"`
	StartedAt   time.Time              `json:"started_at"`
	SubmittedAt *time.Time             `json:"submitted_at,omitempty"`
	Deadline    *time.Time             `json:"deadline,omitempty"`
	Test        *services.TestView     `json:"test,omitempty"`
	Answers     []models.SessionAnswer `json:"answers"`
}

func NewSessionView(s *models.Session) SessionView {
	v := SessionView{
		ID:          s.ID,
		TestID:      s.TestID,
		Mode:        s.Mode,
		Status:      s.Status,
		StartedAt:   s.StartedAt,
		SubmittedAt: s.SubmittedAt,
		Answers:     s.Answers,
	}
	if v.Answers == nil {
		v.Answers = []models.SessionAnswer{}
	}
	if s.Test != nil {
		tv := services.NewTestView(s.Test)
		v.Test = &tv
		if limit, ok := s.Test.TimeLimit(); ok {
			deadline := s.StartedAt.Add(limit)
			v.Deadline = &deadline
		}
	}
	return v
}

// StartSession godoc
// @Summary      Start a test session
// @Description  Checks access and today's quota for the mode, consumes one attempt and opens a session
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body StartSessionRequest true "Test and mode"
// @Success      201 {object} SessionView
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      429 {object} QuotaErrorResponse
// @Router       /api/v1/sessions [post]
func (h *SessionHandler) StartSession(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	session, err := h.sessionService.Start(c.Request.Context(), userID, req.TestID, req.Mode)
	if err != nil {
		if errors.Is(err, services.ErrQuotaExhausted) {
			respondQuotaExhausted(c, services.NextReset(h.clock.Now()))
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewSessionView(session))
}

// GetSession godoc
// @Summary      Get a session
// @Description  Session state with the frozen test and the answers recorded so far
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Session ID"
// @Success      200 {object} SessionView
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/sessions/{id} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}

	session, err := h.sessionService.GetSession(c.Request.Context(), c.GetUint("user_id"), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewSessionView(session))
}

// RecordAnswer godoc
// @Summary      Record an answer
// @Description  Replaces the selection for one question. Training sessions get immediate feedback.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Session ID"
// @Param        question_id path int true "Question ID"
// @Param        request body AnswerRequest true "Selected options"
// @Success      200 {object} services.AnswerFeedback
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/sessions/{id}/answers/{question_id} [put]
func (h *SessionHandler) RecordAnswer(c *gin.Context) {
	userID := c.GetUint("user_id")
	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}
	questionID, ok := parseUintParam(c, "question_id")
	if !ok {
		return
	}

	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	feedback, err := h.sessionService.RecordAnswer(c.Request.Context(), userID, sessionID, questionID, req.OptionIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.Broadcast(sessionID, ws.WSMessage{
		Type: ws.MessageAnswerRecorded,
		Data: gin.H{"question_id": feedback.QuestionID, "option_ids": feedback.OptionIDs},
	})

	c.JSON(http.StatusOK, feedback)
}

// SubmitSession godoc
// @Summary      Submit a session
// @Description  Grades the session and stores its result. A session can be submitted once.
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Session ID"
// @Success      200 {object} Result
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/sessions/{id}/submit [post]
func (h *SessionHandler) SubmitSession(c *gin.Context) {
	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}

	result, err := h.sessionService.Submit(c.Request.Context(), c.GetUint("user_id"), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.Close(sessionID, &ws.WSMessage{
		Type: ws.MessageSessionSubmitted,
		Data: gin.H{
			"score_percentage": result.ScorePercentage,
			"passed":           result.Passed,
		},
	})

	c.JSON(http.StatusOK, result)
}

// GetResult godoc
// @Summary      Get a session result
// @Description  The stored result of a submitted session
// @Tags         results
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Session ID"
// @Success      200 {object} Result
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/sessions/{id}/result [get]
func (h *SessionHandler) GetResult(c *gin.Context) {
	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}

	result, err := h.sessionService.GetResult(c.Request.Context(), c.GetUint("user_id"), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListResults godoc
// @Summary      List my results
// @Description  Results of the authenticated user, newest first
// @Tags         results
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Max results (default 50, max 100)"
// @Success      200 {array} Result
// @Router       /api/v1/results [get]
func (h *SessionHandler) ListResults(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	results, err := h.sessionService.ListResults(c.Request.Context(), c.GetUint("user_id"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if results == nil {
		results = []models.Result{}
	}
	c.JSON(http.StatusOK, results)
}
