package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/MikeGii/medunacy-sub000/internal/models"
	"github.com/MikeGii/medunacy-sub000/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
	Code  string `json:"code,omitempty" example:"quota_exhausted"`
}

// QuotaErrorResponse is returned with 429 when the daily limit is used up.
type QuotaErrorResponse struct {
	Error    string    `json:"error" example:"You have used all of today's attempts. Try again tomorrow or upgrade to premium."`
	Code     string    `json:"code" example:"quota_exhausted"`
	ResetsAt time.Time `json:"resets_at"`
}

type MessageResponse struct {
	Message string `json:"message" example:"operation successful"`
}

// Type aliases so swag can resolve models in annotations.
type Result = models.Result
type User = models.User
type Category = models.Category

const (
	msgAccessDenied  = "This test is available to premium subscribers. Upgrade your plan to take it."
	msgQuotaReached  = "You have used all of today's attempts for this mode. Try again tomorrow or upgrade to premium."
	msgUnableToStart = "Unable to start test."
	msgStaleRequest  = "This session can no longer be changed. Reload it and try again."
	msgInvalidAnswer = "The answer does not match this test. Reload the session and try again."
	msgInternal      = "internal server error"
)

// respondError maps a service error to a status and a message that is safe to
// show end users. Anything unexpected is logged and reported as 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrAccessDenied):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: msgAccessDenied, Code: "access_denied"})
	case errors.Is(err, services.ErrEmptyTest):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: msgUnableToStart, Code: "unable_to_start"})
	case errors.Is(err, services.ErrInvalidQuestion), errors.Is(err, services.ErrInvalidOption):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidAnswer, Code: "invalid_answer"})
	case errors.Is(err, services.ErrSessionClosed):
		c.JSON(http.StatusConflict, ErrorResponse{Error: msgStaleRequest, Code: "session_closed"})
	case errors.Is(err, services.ErrInvalidMode), errors.Is(err, services.ErrInvalidTest),
		errors.Is(err, services.ErrInvalidAccess):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "invalid_request"})
	case errors.Is(err, services.ErrSessionNotFound), errors.Is(err, services.ErrResultNotFound),
		errors.Is(err, services.ErrTestNotFound), errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "not_found"})
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "email_taken"})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error(), Code: "invalid_credentials"})
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgInternal})
	}
}

func respondQuotaExhausted(c *gin.Context, resetsAt time.Time) {
	c.JSON(http.StatusTooManyRequests, QuotaErrorResponse{
		Error:    msgQuotaReached,
		Code:     "quota_exhausted",
		ResetsAt: resetsAt,
	})
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + name})
		return 0, false
	}
	return uint(v), true
}

func parseSessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid session id"})
		return uuid.Nil, false
	}
	return id, true
}
