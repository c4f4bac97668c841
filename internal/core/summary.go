package core

import "sort"

type (
	// DailyFlow is one point of the by-date series: income and expense
	// totals for a single calendar day.
	DailyFlow struct {
		Date    string  `json:"date"`
		Income  float64 `json:"income"`
		Expense float64 `json:"expense"`
	}

	// Summary holds the derived figures the dashboard renders. ByCategory
	// sums income and expense into one bucket per category.
	Summary struct {
		TotalIncome  float64            `json:"totalIncome"`
		TotalExpense float64            `json:"totalExpense"`
		Balance      float64            `json:"balance"`
		ByCategory   map[string]float64 `json:"byCategory"`
		ByDate       []DailyFlow        `json:"byDate"`
	}
)

// Summarize derives the dashboard figures from a transaction list. Pure and
// synchronous; callers recompute it whenever the list changes. The ByDate
// series is sorted ascending by date so it can be charted directly.
func Summarize(items []Transaction) Summary {
	s := Summary{ByCategory: make(map[string]float64)}
	days := make(map[string]*DailyFlow)

	for _, tx := range items {
		switch tx.Type {
		case TypeIncome:
			s.TotalIncome += tx.Amount
		case TypeExpense:
			s.TotalExpense += tx.Amount
		}

		s.ByCategory[tx.Category] += tx.Amount

		day := tx.Day().Format(DateLayout)
		flow, ok := days[day]
		if !ok {
			flow = &DailyFlow{Date: day}
			days[day] = flow
		}
		if tx.Type == TypeIncome {
			flow.Income += tx.Amount
		} else {
			flow.Expense += tx.Amount
		}
	}

	s.Balance = s.TotalIncome - s.TotalExpense

	s.ByDate = make([]DailyFlow, 0, len(days))
	for _, flow := range days {
		s.ByDate = append(s.ByDate, *flow)
	}
	sort.Slice(s.ByDate, func(i, j int) bool {
		return s.ByDate[i].Date < s.ByDate[j].Date
	})

	return s
}
