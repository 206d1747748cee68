package transactions

import (
	"testing"

	"github.com/shopspring/decimal"
)

func rec(category string, amount int64, date Date) Record {
	return Record{Category: category, Amount: decimal.NewFromInt(amount), Date: date}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Record{
		rec("Food", 250, "2024-01-05"),
		rec("Groceries", 500, "2024-01-06"),
		rec("Food", 300, "2024-02-01"),
		rec("Transport", 550, ""),
	})

	if !s.Total.Equal(decimal.NewFromInt(1600)) || s.Count != 4 {
		t.Errorf("total = %s count = %d", s.Total, s.Count)
	}

	wantCats := []string{"Food", "Transport", "Groceries"}
	if len(s.Categories) != len(wantCats) {
		t.Fatalf("categories = %+v", s.Categories)
	}
	for i, c := range wantCats {
		if s.Categories[i].Category != c {
			t.Errorf("categories[%d] = %s, want %s", i, s.Categories[i].Category, c)
		}
	}

	if len(s.Months) != 2 || s.Months[0].Month != "2024-01" || s.Months[1].Month != "2024-02" {
		t.Fatalf("months = %+v", s.Months)
	}
	if !s.Months[0].Total.Equal(decimal.NewFromInt(750)) {
		t.Errorf("january total = %s", s.Months[0].Total)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if !s.Total.IsZero() || s.Count != 0 || s.Categories == nil || s.Months == nil {
		t.Errorf("unexpected empty summary: %+v", s)
	}
}

func TestSpentIn(t *testing.T) {
	records := []Record{
		rec("Food", 100, "2024-01-05"),
		rec("Food", 50, "2024-02-05"),
		rec("Travel", 70, "2024-01-09"),
	}
	if got := SpentIn(records, "Food", "2024-01"); !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("SpentIn = %s", got)
	}
}
