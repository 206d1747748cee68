package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"expensely/internal/money"
	"expensely/internal/transactions"
)

// SummaryHandler serves the dashboard totals.
type SummaryHandler struct {
	profiles ProfileProvider
}

// NewSummaryHandler creates a new SummaryHandler
func NewSummaryHandler(profiles ProfileProvider) *SummaryHandler {
	return &SummaryHandler{profiles: profiles}
}

// FormattedCategory is a category total with its display string.
type FormattedCategory struct {
	transactions.CategoryTotal
	Formatted string `json:"formatted"`
}

// SummaryResponse is the dashboard payload.
type SummaryResponse struct {
	Currency       string                    `json:"currency"`
	Total          string                    `json:"total"`
	TotalFormatted string                    `json:"totalFormatted"`
	Count          int                       `json:"count"`
	Categories     []FormattedCategory       `json:"categories"`
	Months         []transactions.MonthTotal `json:"months"`
}

// GetSummary returns totals per category and month
// @Summary     Dashboard summary
// @Description Totals formatted in the user's preferred currency
// @Tags        summary
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} SummaryResponse
// @Router      /summary [get]
func (h *SummaryHandler) GetSummary(c *gin.Context) {
	p, err := getProfile(c, h.profiles)
	if err != nil {
		respondWithError(c, err)
		return
	}

	prefs, err := p.Preferences.Load(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	records, err := p.Transactions.FetchAll(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	s := transactions.Summarize(records)
	resp := SummaryResponse{
		Currency:       prefs.Currency,
		Total:          s.Total.String(),
		TotalFormatted: money.Format(s.Total, prefs.Currency),
		Count:          s.Count,
		Categories:     make([]FormattedCategory, 0, len(s.Categories)),
		Months:         s.Months,
	}
	for _, ct := range s.Categories {
		resp.Categories = append(resp.Categories, FormattedCategory{
			CategoryTotal: ct,
			Formatted:     money.Format(ct.Total, prefs.Currency),
		})
	}
	c.JSON(http.StatusOK, resp)
}
