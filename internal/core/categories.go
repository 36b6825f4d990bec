package core

import "unicode/utf16"

// CategoryPalette is the fixed, ordered list of category colors.
var CategoryPalette = []string{
	"#3b82f6", // blue-500
	"#22c55e", // green-500
	"#f97316", // orange-500
	"#ef4444", // red-500
	"#8b5cf6", // violet-500
	"#db2777", // pink-600
	"#f59e0b", // amber-500
	"#14b8a6", // teal-500
}

var (
	incomeCategories  = []string{"Salary", "Freelance", "Investment", "Gift", "Bonus", "Other"}
	expenseCategories = []string{"Food", "Transport", "Housing", "Bills", "Entertainment", "Health", "Shopping", "Education", "Other"}
)

// SuggestedCategories returns the category suggestions for a transaction type.
// Users may still enter any other category.
func SuggestedCategories(t TransactionType) []string {
	var src []string
	if t == Income {
		src = incomeCategories
	} else {
		src = expenseCategories
	}
	return append([]string(nil), src...)
}

// CategoryColor maps a category name to a palette color. The mapping only
// depends on the name, so it is stable across sessions.
func CategoryColor(name string) string {
	var h int32
	for _, c := range utf16.Encode([]rune(name)) {
		h = int32(c) + ((h << 5) - h)
	}
	idx := int(h % int32(len(CategoryPalette)))
	if idx < 0 {
		idx = -idx
	}
	return CategoryPalette[idx]
}

// AggregateExpenses sums expense amounts per category in order of first
// occurrence. Income records are ignored.
func AggregateExpenses(txs []Transaction) []CategoryAmount {
	index := make(map[string]int)
	var out []CategoryAmount
	for _, t := range txs {
		if t.Type != Expense {
			continue
		}
		i, ok := index[t.Category]
		if !ok {
			i = len(out)
			index[t.Category] = i
			out = append(out, CategoryAmount{Name: t.Category, Color: CategoryColor(t.Category)})
		}
		out[i].Amount.Cents += t.Amount.Cents
	}
	return out
}
