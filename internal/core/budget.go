package core

// BudgetLevel selects the visual treatment of the budget bar.
type BudgetLevel string

const (
	BudgetOK      BudgetLevel = "ok"
	BudgetWarning BudgetLevel = "warning"
	BudgetOver    BudgetLevel = "over"
)

// warningThreshold is the spent percentage above which the bar turns amber.
const warningThreshold = 80.0

// DefaultBudget is the monthly budget used before the user sets one.
var DefaultBudget = Money{Cents: 100000}

type BudgetStatus struct {
	Budget          Money       `json:"monthlyBudget"`
	MonthlyExpense  Money       `json:"monthlyExpense"`
	SpentPercentage float64     `json:"spentPercentage"` // always within [0, 100]
	IsOverBudget    bool        `json:"isOverBudget"`
	Level           BudgetLevel `json:"level"`
	AdviceNeeded    bool        `json:"adviceNeeded"`
}

// EvaluateBudget compares this month's expense against the budget.
func EvaluateBudget(budget, monthlyExpense, balance Money) BudgetStatus {
	var pct float64
	if budget.Cents > 0 {
		pct = float64(monthlyExpense.Cents) / float64(budget.Cents) * 100
		if pct > 100 {
			pct = 100
		}
		if pct < 0 {
			pct = 0
		}
	}
	over := monthlyExpense.Cents > budget.Cents

	level := BudgetOK
	switch {
	case over:
		level = BudgetOver
	case pct > warningThreshold:
		level = BudgetWarning
	}

	return BudgetStatus{
		Budget:          budget,
		MonthlyExpense:  monthlyExpense,
		SpentPercentage: pct,
		IsOverBudget:    over,
		Level:           level,
		AdviceNeeded:    (over && budget.Cents > 0) || balance.Cents < 0,
	}
}

// EntryTab is the selected tab of the transaction entry form.
type EntryTab struct {
	Type     TransactionType
	Category string
}

// NewEntryTab starts on the expense tab.
func NewEntryTab() EntryTab {
	return EntryTab{Type: Expense}
}

// Select switches to t and clears the chosen category.
func (e EntryTab) Select(t TransactionType) EntryTab {
	if !t.Valid() {
		return e
	}
	return EntryTab{Type: t}
}

// Suggestions lists the category suggestions for the selected tab.
func (e EntryTab) Suggestions() []string {
	return SuggestedCategories(e.Type)
}
