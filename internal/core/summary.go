package core

import "time"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string `json:"name"`
	Amount Money  `json:"amount"`
	Color  string `json:"color"`
}

// Summary holds the figures derived from the transaction list and the
// starting balance at a given instant.
type Summary struct {
	StartingBalance Money `json:"startingBalance"`
	TotalIncome     Money `json:"totalIncome"`
	TotalExpense    Money `json:"totalExpense"`
	Balance         Money `json:"balance"`
	// MonthlyExpense covers the calendar month of the instant the summary
	// was derived at, so it moves on its own across a month boundary.
	MonthlyExpense Money `json:"monthlyExpense"`
}

// Derive computes the summary in a single pass over txs.
func Derive(txs []Transaction, startingBalance Money, now time.Time) Summary {
	var income, expense, monthly int64
	for _, t := range txs {
		switch t.Type {
		case Income:
			income += t.Amount.Cents
		case Expense:
			expense += t.Amount.Cents
			if t.Date.InMonth(now) {
				monthly += t.Amount.Cents
			}
		}
	}
	return Summary{
		StartingBalance: startingBalance,
		TotalIncome:     Money{Cents: income},
		TotalExpense:    Money{Cents: expense},
		Balance:         Money{Cents: startingBalance.Cents + income - expense},
		MonthlyExpense:  Money{Cents: monthly},
	}
}
