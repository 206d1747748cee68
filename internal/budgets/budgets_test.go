package budgets

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"expensely/internal/kvstore"
	"expensely/internal/logger"
	"expensely/internal/testutil"
	"expensely/internal/transactions"
)

func init() {
	logger.Init("test")
}

type stubRecords struct {
	records []transactions.Record
	err     error
}

func (s stubRecords) FetchAll(context.Context) ([]transactions.Record, error) {
	return s.records, s.err
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestService_CRUD(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewMemoryStore(t)
	svc := NewService(kv, stubRecords{})

	b, err := svc.Create(ctx, Input{Category: " Groceries ", Limit: dec(600)})
	testutil.AssertNoError(t, err)
	if b.ID == "" || b.Category != "Groceries" || b.Period != PeriodMonthly {
		t.Fatalf("created = %+v", b)
	}

	updated, err := svc.Update(ctx, b.ID, Input{Category: "Groceries", Limit: dec(700)})
	testutil.AssertNoError(t, err)
	if !updated.Limit.Equal(dec(700)) {
		t.Errorf("limit = %s", updated.Limit)
	}

	list, err := NewService(kv, stubRecords{}).List(ctx)
	testutil.AssertNoError(t, err)
	if len(list) != 1 || !list[0].Limit.Equal(dec(700)) {
		t.Fatalf("persisted list = %+v", list)
	}

	testutil.AssertNoError(t, svc.Delete(ctx, b.ID))
	err = svc.Delete(ctx, b.ID)
	testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")

	_, err = svc.Update(ctx, b.ID, Input{Category: "x", Limit: dec(1)})
	testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
}

func TestService_CreateValidates(t *testing.T) {
	svc := NewService(testutil.NewMemoryStore(t), stubRecords{})

	_, err := svc.Create(context.Background(), Input{Category: "", Limit: dec(10)})
	testutil.AssertAppError(t, err, "INVALID_INPUT")

	_, err = svc.Create(context.Background(), Input{Category: "Food", Limit: dec(0)})
	testutil.AssertAppError(t, err, "INVALID_INPUT")
}

func TestService_CorruptListReadsEmpty(t *testing.T) {
	kv := testutil.NewMemoryStore(t)
	testutil.SetRaw(t, kv, kvstore.KeyBudgets, "not json")

	list, err := NewService(kv, stubRecords{}).List(context.Background())
	testutil.AssertNoError(t, err)
	if len(list) != 0 {
		t.Errorf("expected empty list, got %+v", list)
	}
}

func TestEvaluate(t *testing.T) {
	b := Budget{Category: "Food", Limit: dec(200)}

	tests := []struct {
		name      string
		spent     int64
		wantPct   int64
		status    Status
		remaining int64
		over      int64
	}{
		{"under", 100, 50, StatusOK, 100, 0},
		{"just_under_warning", 159, 80, StatusOK, 41, 0},
		{"warning", 160, 80, StatusWarning, 40, 0},
		{"at_limit", 200, 100, StatusOver, 0, 0},
		{"over_caps_percentage", 300, 100, StatusOver, 0, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Evaluate(b, dec(tt.spent), "2024-01")
			if !p.Percentage.Equal(dec(tt.wantPct)) {
				t.Errorf("percentage = %s, want %d", p.Percentage, tt.wantPct)
			}
			if p.Status != tt.status {
				t.Errorf("status = %s, want %s", p.Status, tt.status)
			}
			if !p.Remaining.Equal(dec(tt.remaining)) || !p.Over.Equal(dec(tt.over)) {
				t.Errorf("remaining = %s over = %s", p.Remaining, p.Over)
			}
		})
	}
}

func TestService_Progress(t *testing.T) {
	ctx := context.Background()
	records := stubRecords{records: []transactions.Record{
		{Category: "Groceries", Amount: dec(450), Date: "2024-03-02"},
		{Category: "Groceries", Amount: dec(100), Date: "2024-02-28"},
		{Category: "Dining Out", Amount: dec(300), Date: "2024-03-05"},
	}}
	svc := NewService(testutil.NewMemoryStore(t), records)

	_, err := svc.Create(ctx, Input{Category: "Groceries", Limit: dec(600)})
	testutil.AssertNoError(t, err)
	_, err = svc.Create(ctx, Input{Category: "Dining Out", Limit: dec(250)})
	testutil.AssertNoError(t, err)

	progress, err := svc.Progress(ctx, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	testutil.AssertNoError(t, err)
	if len(progress) != 2 {
		t.Fatalf("progress = %+v", progress)
	}

	groceries := progress[0]
	if !groceries.Spent.Equal(dec(450)) || groceries.Status != StatusOK || groceries.Month != "2024-03" {
		t.Errorf("groceries = %+v", groceries)
	}
	dining := progress[1]
	if dining.Status != StatusOver || !dining.Over.Equal(dec(50)) {
		t.Errorf("dining = %+v", dining)
	}
}
