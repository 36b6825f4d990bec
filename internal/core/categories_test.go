package core

import "testing"

func TestAggregateExpenses(t *testing.T) {
	txs := []Transaction{
		tx("1", Expense, 500, "Bus", "Transport", NewDate(2025, 1, 1)),
		tx("2", Income, 9999, "Pay", "Salary", NewDate(2025, 1, 1)),
		tx("3", Expense, 300, "Coffee", "Food", NewDate(2025, 1, 1)),
		tx("4", Expense, 700, "Train", "Transport", NewDate(2025, 1, 1)),
	}
	got := AggregateExpenses(txs)
	if len(got) != 2 {
		t.Fatalf("expected 2 categories, got %v", got)
	}
	if got[0].Name != "Transport" || got[0].Amount.Cents != 1200 {
		t.Fatalf("first entry = %+v", got[0])
	}
	if got[1].Name != "Food" || got[1].Amount.Cents != 300 {
		t.Fatalf("second entry = %+v", got[1])
	}

	var sum int64
	for _, c := range got {
		sum += c.Amount.Cents
	}
	if total := Derive(txs, Money{}, testNow).TotalExpense.Cents; sum != total {
		t.Fatalf("category sum %d != total expense %d", sum, total)
	}
}

func TestAggregateExpensesIncomeOnly(t *testing.T) {
	txs := []Transaction{tx("1", Income, 100, "Pay", "Salary", NewDate(2025, 1, 1))}
	if got := AggregateExpenses(txs); len(got) != 0 {
		t.Fatalf("expected no categories, got %v", got)
	}
}

func TestCategoryColor(t *testing.T) {
	cases := map[string]string{
		"Food":      "#f59e0b",
		"Housing":   "#ef4444",
		"Transport": "#14b8a6",
	}
	for name, want := range cases {
		if got := CategoryColor(name); got != want {
			t.Errorf("CategoryColor(%q) = %s, want %s", name, got, want)
		}
		if CategoryColor(name) != CategoryColor(name) {
			t.Errorf("CategoryColor(%q) not stable", name)
		}
	}
	if got := CategoryColor(""); got != CategoryPalette[0] {
		t.Errorf("empty name = %s", got)
	}
}

func TestSuggestedCategories(t *testing.T) {
	inc := SuggestedCategories(Income)
	if inc[0] != "Salary" {
		t.Fatalf("income suggestions = %v", inc)
	}
	inc[0] = "mutated"
	if SuggestedCategories(Income)[0] != "Salary" {
		t.Fatalf("suggestions must be copied")
	}
	if exp := SuggestedCategories(Expense); exp[0] != "Food" || len(exp) != 9 {
		t.Fatalf("expense suggestions = %v", exp)
	}
}
