package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "expensely/internal/errors"
	"expensely/internal/pagination"
	"expensely/internal/transactions"
)

// TransactionHandler handles transaction-related requests
type TransactionHandler struct {
	profiles ProfileProvider
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(profiles ProfileProvider) *TransactionHandler {
	return &TransactionHandler{profiles: profiles}
}

// CreateTransactionRequest represents the request body for creating a transaction
type CreateTransactionRequest struct {
	Amount     decimal.Decimal `json:"amount" swaggertype:"string" example:"500"`
	Category   string          `json:"category" binding:"required,max=100"`
	Date       string          `json:"date" binding:"required,date_only" example:"2024-01-01"`
	Notes      string          `json:"notes" binding:"max=500"`
	ReceiptURL string          `json:"receiptUrl"`
}

// UpdateTransactionRequest is a partial update; omitted fields keep their value
type UpdateTransactionRequest struct {
	Amount     *decimal.Decimal `json:"amount" swaggertype:"string"`
	Category   *string          `json:"category" binding:"omitempty,min=1,max=100"`
	Date       *string          `json:"date" binding:"omitempty,date_only"`
	Notes      *string          `json:"notes" binding:"omitempty,max=500"`
	ReceiptURL *string          `json:"receiptUrl"`
}

func (r UpdateTransactionRequest) patch() transactions.Patch {
	p := transactions.Patch{
		Amount:     r.Amount,
		Category:   r.Category,
		Notes:      r.Notes,
		ReceiptURL: r.ReceiptURL,
	}
	if r.Date != nil {
		d := transactions.Date(*r.Date)
		p.Date = &d
	}
	return p
}

// ReceiptResponse carries the embeddable receipt reference.
type ReceiptResponse struct {
	ReceiptURL string `json:"receiptUrl"`
}

// SeedResponse reports whether demo data was written.
type SeedResponse struct {
	Seeded bool `json:"seeded"`
}

// ListTransactions returns the user's transactions
// @Summary     List transactions
// @Description Get the user's transactions in insertion order
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[transactions.Record]
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     499 {object} ErrorResponse "Request cancelled"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, badRequest(err))
		return
	}

	p, err := getProfile(c, h.profiles)
	if err != nil {
		respondWithError(c, err)
		return
	}

	records, err := p.Transactions.FetchAll(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, pagination.Paginate(records, page))
}

// CreateTransaction creates a new transaction
// @Summary     Create transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction data"
// @Success     201 {object} transactions.Record
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	p, err := getProfile(c, h.profiles)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failWrite(c, p, badRequest(err))
		return
	}

	rec, err := p.Transactions.Create(c.Request.Context(), transactions.Fields{
		Amount:     req.Amount,
		Category:   req.Category,
		Date:       transactions.Date(req.Date),
		Notes:      req.Notes,
		ReceiptURL: req.ReceiptURL,
	})
	if err != nil {
		failWrite(c, p, err)
		return
	}

	p.Notifications.Show("Transaction added")
	c.JSON(http.StatusCreated, rec)
}

// UpdateTransaction merges the supplied fields into a transaction
// @Summary     Update transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Fields to change"
// @Success     200 {object} transactions.Record
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [patch]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	p, err := getProfile(c, h.profiles)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failWrite(c, p, badRequest(err))
		return
	}

	rec, err := p.Transactions.Update(c.Request.Context(), c.Param("id"), req.patch())
	if err != nil {
		failWrite(c, p, err)
		return
	}

	p.Notifications.Show("Transaction updated")
	c.JSON(http.StatusOK, rec)
}

// DeleteTransaction removes a transaction; unknown ids succeed
// @Summary     Delete transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} transactions.Ack
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	p, err := getProfile(c, h.profiles)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ack, err := p.Transactions.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		failWrite(c, p, err)
		return
	}

	p.Notifications.Show("Transaction deleted")
	c.JSON(http.StatusOK, ack)
}

// SeedTransactions writes the demo records into an empty collection
// @Summary     Seed demo data
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} SeedResponse
// @Router      /transactions/seed [post]
func (h *TransactionHandler) SeedTransactions(c *gin.Context) {
	p, err := getProfile(c, h.profiles)
	if err != nil {
		respondWithError(c, err)
		return
	}

	seeded, err := p.Transactions.SeedIfEmpty(c.Request.Context())
	if err != nil {
		failWrite(c, p, err)
		return
	}

	c.JSON(http.StatusOK, SeedResponse{Seeded: seeded})
}

// UploadReceipt converts an uploaded file into a receipt reference
// @Summary     Upload receipt
// @Tags        transactions
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       file formData file true "Receipt image or PDF"
// @Success     200 {object} ReceiptResponse
// @Failure     400 {object} ErrorResponse "Unreadable file"
// @Router      /transactions/receipt [post]
func (h *TransactionHandler) UploadReceipt(c *gin.Context) {
	p, err := getProfile(c, h.profiles)
	if err != nil {
		respondWithError(c, err)
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		failWrite(c, p, apperrors.Wrap(apperrors.ErrReceiptUnreadable, err))
		return
	}
	f, err := fh.Open()
	if err != nil {
		failWrite(c, p, apperrors.Wrap(apperrors.ErrReceiptUnreadable, err))
		return
	}
	defer f.Close()

	ref, err := p.Transactions.UploadReceipt(f)
	if err != nil {
		failWrite(c, p, err)
		return
	}

	c.JSON(http.StatusOK, ReceiptResponse{ReceiptURL: ref})
}

// ExportTransactions downloads the collection as csv, json or yaml
// @Summary     Export transactions
// @Tags        transactions
// @Produce     json
// @Produce     text/csv
// @Produce     application/yaml
// @Security    BearerAuth
// @Param       format query string false "csv, json or yaml (default json)"
// @Success     200 {file} file
// @Failure     400 {object} ErrorResponse "Unsupported format"
// @Router      /transactions/export [get]
func (h *TransactionHandler) ExportTransactions(c *gin.Context) {
	p, err := getProfile(c, h.profiles)
	if err != nil {
		respondWithError(c, err)
		return
	}

	records, err := p.Transactions.FetchAll(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	out, enc, err := transactions.Export(records, c.DefaultQuery("format", "json"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	filename := fmt.Sprintf("transactions-%s.%s", time.Now().Format(transactions.DateLayout), enc.Extension())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, enc.ContentType(), out)
}
