package http

import (
	"strings"
	"testing"

	"pocketledger/internal/core"
	"pocketledger/internal/currency"
	"pocketledger/internal/ledger"
)

func usd(t *testing.T) *currency.Formatter {
	t.Helper()
	f, ok := currency.New("USD")
	if !ok {
		t.Fatalf("USD should be valid")
	}
	return f
}

func TestHistoryViewEmptyStates(t *testing.T) {
	f := usd(t)
	if v := newHistoryView(ledger.Snapshot{}, f); v.EmptyMessage != emptyHistory {
		t.Fatalf("empty ledger message = %q", v.EmptyMessage)
	}
	if v := newHistoryView(ledger.Snapshot{TotalCount: 3, Query: "x"}, f); v.EmptyMessage != noSearchResult {
		t.Fatalf("no match message = %q", v.EmptyMessage)
	}
}

func TestChartViewSingleSlice(t *testing.T) {
	v := newChartView([]core.CategoryAmount{{Name: "Food", Amount: core.Money{Cents: 500}, Color: "#3b82f6"}}, usd(t))
	if len(v.Slices) != 1 || v.Slices[0].Path != "" || v.Slices[0].Percent != "100.0" {
		t.Fatalf("single category should be a full circle: %+v", v.Slices)
	}
	if v := newChartView(nil, usd(t)); v.EmptyMessage != emptyChart {
		t.Fatalf("empty chart message = %q", v.EmptyMessage)
	}
}

func TestArcPath(t *testing.T) {
	half := arcPath(0, 0.5)
	if !strings.HasPrefix(half, "M100.00 100.00 L100.00 10.00") {
		t.Fatalf("wedge should start at twelve o'clock: %s", half)
	}
	if !strings.Contains(arcPath(0, 0.75), " 0 1 1 ") {
		t.Fatalf("large arc flag not set for 75%% wedge")
	}
	if !strings.Contains(arcPath(0.75, 1), " 0 0 1 ") {
		t.Fatalf("small wedge should not use the large arc")
	}
}

func TestCurrencyOptionsIncludesActive(t *testing.T) {
	opts := currencyOptions("CHF")
	if opts[len(opts)-1].Code != "CHF" {
		t.Fatalf("active currency missing: %+v", opts)
	}
	if len(currencyOptions("EUR")) != len(currency.Supported) {
		t.Fatalf("supported currency duplicated")
	}
}
