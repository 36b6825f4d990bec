package core

import (
	"reflect"
	"testing"
)

func TestFilter(t *testing.T) {
	coffee := tx("1", Expense, 300, "Coffee", "Food", NewDate(2025, 1, 1))
	lunch := tx("2", Expense, 1200, "Lunch", "Food", NewDate(2025, 1, 2))
	salary := tx("3", Income, 100000, "Monthly pay", "Salary", NewDate(2025, 1, 3))
	all := []Transaction{coffee, lunch, salary}

	cases := []struct {
		name  string
		query string
		want  []Transaction
	}{
		{"matches description", "cof", []Transaction{coffee}},
		{"case insensitive", "COF", []Transaction{coffee}},
		{"matches category", "foo", []Transaction{coffee, lunch}},
		{"category only text does not match description", "sal", []Transaction{salary}},
		{"no match", "rent", []Transaction{}},
		{"empty is identity", "", all},
		{"blank is identity", "   ", all},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Filter(all, tc.query)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Filter(%q) = %v, want %v", tc.query, got, tc.want)
			}
		})
	}
}

func TestFilterExcludesCategoryOnlyFood(t *testing.T) {
	groceries := tx("1", Expense, 300, "Groceries", "Food", NewDate(2025, 1, 1))
	if got := Filter([]Transaction{groceries}, "cof"); len(got) != 0 {
		t.Fatalf("expected no match, got %v", got)
	}
}

func TestFilterIdempotent(t *testing.T) {
	all := []Transaction{
		tx("1", Expense, 300, "Coffee", "Food", NewDate(2025, 1, 1)),
		tx("2", Expense, 300, "Bus", "Transport", NewDate(2025, 1, 1)),
		tx("3", Expense, 300, "Coffee beans", "Shopping", NewDate(2025, 1, 1)),
	}
	once := Filter(all, "coffee")
	twice := Filter(once, "coffee")
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("filter not idempotent: %v vs %v", once, twice)
	}
}
