package handlers

import (
	"net/http"
	"strconv"

	"github.com/MikeGii/medunacy-sub000/internal/services"

	"github.com/gin-gonic/gin"
)

type TestHandler struct {
	testService *services.TestService
}

func NewTestHandler(testService *services.TestService) *TestHandler {
	return &TestHandler{testService: testService}
}

// ListTests godoc
// @Summary      List published tests
// @Description  Published tests with a can_access flag for the authenticated user
// @Tags         tests
// @Produce      json
// @Security     BearerAuth
// @Param        category_id query int false "Filter by category"
// @Success      200 {array} services.TestSummary
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/tests [get]
func (h *TestHandler) ListTests(c *gin.Context) {
	var categoryID *uint
	if raw := c.Query("category_id"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid category_id"})
			return
		}
		id := uint(v)
		categoryID = &id
	}

	tests, err := h.testService.ListForUser(c.Request.Context(), c.GetUint("user_id"), categoryID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tests)
}

// GetTest godoc
// @Summary      Get a test for taking
// @Description  Questions and options without correctness; premium tests require a premium subscription
// @Tags         tests
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Test ID"
// @Success      200 {object} services.TestView
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/tests/{id} [get]
func (h *TestHandler) GetTest(c *gin.Context) {
	testID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	view, err := h.testService.GetForTaking(c.Request.Context(), c.GetUint("user_id"), testID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
