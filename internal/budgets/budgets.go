// Package budgets tracks monthly spending limits per category.
package budgets

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	apperrors "expensely/internal/errors"
	"expensely/internal/ids"
	"expensely/internal/kvstore"
	"expensely/internal/transactions"
)

// PeriodMonthly is the only supported budget period.
const PeriodMonthly = "monthly"

// Progress thresholds, in percent of the limit.
var (
	warningAt = decimal.NewFromInt(80)
	overAt    = decimal.NewFromInt(100)
)

// Status classifies spending against a limit.
type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusOver    Status = "over"
)

// Budget is a spending limit for one category.
type Budget struct {
	ID       string          `json:"id"`
	Category string          `json:"category"`
	Limit    decimal.Decimal `json:"limit"`
	Period   string          `json:"period"`
}

// Input carries the caller-supplied fields of a budget.
type Input struct {
	Category string
	Limit    decimal.Decimal
}

// Validate rejects blank categories and non-positive limits.
func (in Input) Validate() error {
	if strings.TrimSpace(in.Category) == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}
	if !in.Limit.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "limit must be greater than zero")
	}
	return nil
}

// Progress is a budget evaluated against one month of transactions.
type Progress struct {
	Budget
	Month      string          `json:"month"`
	Spent      decimal.Decimal `json:"spent"`
	Percentage decimal.Decimal `json:"percentage"`
	Status     Status          `json:"status"`
	Remaining  decimal.Decimal `json:"remaining"`
	Over       decimal.Decimal `json:"over"`
}

// RecordSource supplies the transactions budgets are measured against.
type RecordSource interface {
	FetchAll(ctx context.Context) ([]transactions.Record, error)
}

// Service persists budgets as one JSON array under kvstore.KeyBudgets.
type Service struct {
	mu      sync.Mutex
	kv      *kvstore.Store
	records RecordSource
}

// NewService returns a budget service for one profile.
func NewService(kv *kvstore.Store, records RecordSource) *Service {
	return &Service{kv: kv, records: records}
}

// List returns the budgets in creation order.
func (s *Service) List(ctx context.Context) ([]Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

// Create adds a monthly budget.
func (s *Service) Create(ctx context.Context, in Input) (Budget, error) {
	if err := in.Validate(); err != nil {
		return Budget{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.loadLocked(ctx)
	if err != nil {
		return Budget{}, err
	}
	b := Budget{ID: ids.New(), Category: strings.TrimSpace(in.Category), Limit: in.Limit, Period: PeriodMonthly}
	if err := s.kv.SetJSON(ctx, kvstore.KeyBudgets, append(list, b)); err != nil {
		return Budget{}, err
	}
	return b, nil
}

// Update replaces the category and limit of an existing budget.
func (s *Service) Update(ctx context.Context, id string, in Input) (Budget, error) {
	if err := in.Validate(); err != nil {
		return Budget{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.loadLocked(ctx)
	if err != nil {
		return Budget{}, err
	}
	for i := range list {
		if list[i].ID != id {
			continue
		}
		list[i].Category = strings.TrimSpace(in.Category)
		list[i].Limit = in.Limit
		if err := s.kv.SetJSON(ctx, kvstore.KeyBudgets, list); err != nil {
			return Budget{}, err
		}
		return list[i], nil
	}
	return Budget{}, apperrors.ErrBudgetNotFound
}

// Delete removes a budget. Deleting an unknown id is ErrBudgetNotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.loadLocked(ctx)
	if err != nil {
		return err
	}
	for i := range list {
		if list[i].ID == id {
			return s.kv.SetJSON(ctx, kvstore.KeyBudgets, append(list[:i], list[i+1:]...))
		}
	}
	return apperrors.ErrBudgetNotFound
}

// Progress evaluates every budget against the transactions of now's month.
func (s *Service) Progress(ctx context.Context, now time.Time) ([]Progress, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.records.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	month := transactions.DateOf(now).Month()
	out := make([]Progress, 0, len(list))
	for _, b := range list {
		out = append(out, Evaluate(b, transactions.SpentIn(records, b.Category, month), month))
	}
	return out, nil
}

// Evaluate computes the progress of b given the amount spent in month.
func Evaluate(b Budget, spent decimal.Decimal, month string) Progress {
	p := Progress{
		Budget:     b,
		Month:      month,
		Spent:      spent,
		Percentage: decimal.Zero,
		Remaining:  decimal.Zero,
		Over:       decimal.Zero,
		Status:     StatusOK,
	}

	pct := decimal.Zero
	if b.Limit.IsPositive() {
		pct = decimal.Min(spent.Div(b.Limit).Mul(overAt), overAt)
	}
	p.Percentage = pct.Round(0)

	switch {
	case pct.GreaterThanOrEqual(overAt):
		p.Status = StatusOver
	case pct.GreaterThanOrEqual(warningAt):
		p.Status = StatusWarning
	}

	if spent.GreaterThan(b.Limit) {
		p.Over = spent.Sub(b.Limit)
	} else {
		p.Remaining = b.Limit.Sub(spent)
	}
	return p
}

func (s *Service) loadLocked(ctx context.Context) ([]Budget, error) {
	list, err := kvstore.Load[[]Budget](ctx, s.kv, kvstore.KeyBudgets, nil)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []Budget{}
	}
	return list, nil
}
