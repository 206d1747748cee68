package transactions

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CategoryTotal is the spend of one category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

// MonthTotal is the spend of one calendar month (YYYY-MM).
type MonthTotal struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// Summary aggregates a collection for the dashboard.
type Summary struct {
	Total      decimal.Decimal `json:"total"`
	Count      int             `json:"count"`
	Categories []CategoryTotal `json:"categories"`
	Months     []MonthTotal    `json:"months"`
}

// Summarize totals records overall, per category (largest first, ties by
// name) and per month (oldest first). Records without a date are left out
// of the monthly series only.
func Summarize(records []Record) Summary {
	s := Summary{Total: decimal.Zero, Categories: []CategoryTotal{}, Months: []MonthTotal{}}
	byCategory := map[string]*CategoryTotal{}
	byMonth := map[string]*MonthTotal{}

	for _, rec := range records {
		s.Total = s.Total.Add(rec.Amount)
		s.Count++

		ct, ok := byCategory[rec.Category]
		if !ok {
			ct = &CategoryTotal{Category: rec.Category, Total: decimal.Zero}
			byCategory[rec.Category] = ct
		}
		ct.Total = ct.Total.Add(rec.Amount)
		ct.Count++

		month := rec.Date.Month()
		if month == "" {
			continue
		}
		mt, ok := byMonth[month]
		if !ok {
			mt = &MonthTotal{Month: month, Total: decimal.Zero}
			byMonth[month] = mt
		}
		mt.Total = mt.Total.Add(rec.Amount)
		mt.Count++
	}

	for _, ct := range byCategory {
		s.Categories = append(s.Categories, *ct)
	}
	sort.Slice(s.Categories, func(i, j int) bool {
		if c := s.Categories[i].Total.Cmp(s.Categories[j].Total); c != 0 {
			return c > 0
		}
		return s.Categories[i].Category < s.Categories[j].Category
	})

	for _, mt := range byMonth {
		s.Months = append(s.Months, *mt)
	}
	sort.Slice(s.Months, func(i, j int) bool { return s.Months[i].Month < s.Months[j].Month })
	return s
}

// SpentIn sums the records of category dated within month (YYYY-MM).
func SpentIn(records []Record, category, month string) decimal.Decimal {
	total := decimal.Zero
	for _, rec := range records {
		if rec.Category == category && rec.Date.Month() == month {
			total = total.Add(rec.Amount)
		}
	}
	return total
}
