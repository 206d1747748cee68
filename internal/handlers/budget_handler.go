package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"expensely/internal/budgets"
)

// BudgetHandler handles budget-related requests
type BudgetHandler struct {
	profiles ProfileProvider
	now      func() time.Time
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(profiles ProfileProvider) *BudgetHandler {
	return &BudgetHandler{profiles: profiles, now: time.Now}
}

// BudgetRequest represents the request body for creating or updating a budget
type BudgetRequest struct {
	Category string          `json:"category" binding:"required,max=100"`
	Limit    decimal.Decimal `json:"limit" swaggertype:"string" example:"600"`
}

func (r BudgetRequest) input() budgets.Input {
	return budgets.Input{Category: r.Category, Limit: r.Limit}
}

// ListBudgets returns the user's budgets
// @Summary     List budgets
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} budgets.Budget
// @Router      /budgets [get]
func (h *BudgetHandler) ListBudgets(c *gin.Context) {
	p, err := getProfile(c, h.profiles)
	if err != nil {
		respondWithError(c, err)
		return
	}

	list, err := p.Budgets.List(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// CreateBudget creates a monthly budget
// @Summary     Create budget
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body BudgetRequest true "Budget data"
// @Success     201 {object} budgets.Budget
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	p, err := getProfile(c, h.profiles)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failWrite(c, p, badRequest(err))
		return
	}

	b, err := p.Budgets.Create(c.Request.Context(), req.input())
	if err != nil {
		failWrite(c, p, err)
		return
	}

	p.Notifications.Show("Budget created")
	c.JSON(http.StatusCreated, b)
}

// UpdateBudget changes a budget's category and limit
// @Summary     Update budget
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string        true "Budget ID"
// @Param       request body BudgetRequest true "Budget data"
// @Success     200 {object} budgets.Budget
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id} [patch]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	p, err := getProfile(c, h.profiles)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failWrite(c, p, badRequest(err))
		return
	}

	b, err := p.Budgets.Update(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		failWrite(c, p, err)
		return
	}

	p.Notifications.Show("Budget updated")
	c.JSON(http.StatusOK, b)
}

// DeleteBudget removes a budget
// @Summary     Delete budget
// @Tags        budgets
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     204 "Deleted"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	p, err := getProfile(c, h.profiles)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := p.Budgets.Delete(c.Request.Context(), c.Param("id")); err != nil {
		failWrite(c, p, err)
		return
	}

	p.Notifications.Show("Budget deleted")
	c.Status(http.StatusNoContent)
}

// GetBudgetProgress evaluates every budget against this month's spending
// @Summary     Budget progress
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} budgets.Progress
// @Router      /budgets/progress [get]
func (h *BudgetHandler) GetBudgetProgress(c *gin.Context) {
	p, err := getProfile(c, h.profiles)
	if err != nil {
		respondWithError(c, err)
		return
	}

	progress, err := p.Budgets.Progress(c.Request.Context(), h.now())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}
