package handlers

import (
	"net/http"

	"github.com/MikeGii/medunacy-sub000/internal/services"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	testService *services.TestService
	userService *services.UserService
}

func NewAdminHandler(testService *services.TestService, userService *services.UserService) *AdminHandler {
	return &AdminHandler{testService: testService, userService: userService}
}

type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100" example:"Cardiology"`
	Description string `json:"description" example:"Heart and circulation"`
}

type UpdateTestFlagsRequest struct {
	IsPublished *bool `json:"is_published,omitempty"`
	IsPremium   *bool `json:"is_premium,omitempty"`
}

type UpdateSubscriptionRequest struct {
	SubscriptionTier string `json:"subscription_tier" example:"premium"`
	Role             string `json:"role" example:"doctor"`
}

// CreateCategory godoc
// @Summary      Create a category
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateCategoryRequest true "Category"
// @Success      201 {object} Category
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/admin/categories [post]
func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	cat, err := h.testService.CreateCategory(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

// CreateTest godoc
// @Summary      Create a test
// @Description  Create a test with its questions and options in one request
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body services.CreateTestInput true "Test definition"
// @Success      201 {object} services.TestView
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/admin/tests [post]
func (h *AdminHandler) CreateTest(c *gin.Context) {
	var req services.CreateTestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	test, err := h.testService.CreateTest(c.Request.Context(), c.GetUint("user_id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, services.NewTestView(test))
}

// UpdateTestFlags godoc
// @Summary      Publish or gate a test
// @Description  Set is_published and/or is_premium. Sessions already started keep their snapshot.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Test ID"
// @Param        request body UpdateTestFlagsRequest true "Flags"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/admin/tests/{id} [patch]
func (h *AdminHandler) UpdateTestFlags(c *gin.Context) {
	testID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req UpdateTestFlagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if _, err := h.testService.SetFlags(c.Request.Context(), testID, req.IsPublished, req.IsPremium); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "test updated"})
}

// UpdateSubscription godoc
// @Summary      Change a user's tier or role
// @Description  Takes effect on the user's next request; tokens do not carry the tier
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "User ID"
// @Param        request body UpdateSubscriptionRequest true "Tier and role"
// @Success      200 {object} User
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/admin/users/{id}/subscription [put]
func (h *AdminHandler) UpdateSubscription(c *gin.Context) {
	userID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if req.SubscriptionTier == "" && req.Role == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "subscription_tier or role is required"})
		return
	}

	user, err := h.userService.SetAccess(c.Request.Context(), userID, req.Role, req.SubscriptionTier)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
