package transactions

import (
	"time"

	"github.com/shopspring/decimal"

	"expensely/internal/ids"
)

// DemoRecords returns the illustrative records: two dated on now's day and
// two on the day before.
func DemoRecords(now time.Time) []Record {
	today := DateOf(now)
	yesterday := DateOf(now.AddDate(0, 0, -1))
	return []Record{
		{ID: ids.New(), Amount: decimal.NewFromInt(250), Category: "Food", Date: today, Notes: "Lunch at restaurant"},
		{ID: ids.New(), Amount: decimal.NewFromInt(500), Category: "Groceries", Date: today, Notes: "Weekly groceries"},
		{ID: ids.New(), Amount: decimal.NewFromInt(1200), Category: "Transport", Date: yesterday, Notes: "Fuel"},
		{ID: ids.New(), Amount: decimal.NewFromInt(350), Category: "Shopping", Date: yesterday, Notes: "Clothes"},
	}
}
