package http

import (
	"fmt"
	"math"
	"strconv"

	"pocketledger/internal/core"
	"pocketledger/internal/currency"
	"pocketledger/internal/ledger"
)

const (
	emptyHistory   = "No transactions yet."
	noSearchResult = "No transactions match your search."
	emptyChart     = "No expense data to display."
)

type summaryView struct {
	Currency        string
	Options         []currency.Option
	Symbol          string
	StartingBalance string
	StartingRaw     string
	TotalIncome     string
	TotalExpense    string
	Balance         string
	BalanceNegative bool
	Budget          string
	BudgetRaw       string
	MonthlyExpense  string
	SpentPercentage string
	Level           string
	OverBudget      bool
	AdviceNeeded    bool
}

type historyItem struct {
	ID          string
	Description string
	Category    string
	Color       string
	Date        string
	Amount      string
	Income      bool
}

type historyView struct {
	Query        string
	EmptyMessage string
	Items        []historyItem
}

type chartSlice struct {
	Name    string
	Color   string
	Amount  string
	Percent string
	Path    string // empty when the slice is the whole pie
}

type chartView struct {
	EmptyMessage string
	Slices       []chartSlice
}

type entryFormView struct {
	Type        string
	Income      bool
	Suggestions []string
	Symbol      string
	Description string
	Amount      string
	Category    string
	Date        string
	Error       string
}

type adviceView struct {
	Needed   bool
	Lines    []string
	Error    string
	Provider string
	Cached   bool
}

type pageView struct {
	Summary summaryView
	History historyView
	Chart   chartView
	Entry   entryFormView
}

func newSummaryView(s ledger.Snapshot, f *currency.Formatter) summaryView {
	return summaryView{
		Currency:        f.Code(),
		Options:         currencyOptions(f.Code()),
		Symbol:          f.Symbol(),
		StartingBalance: f.Format(s.Summary.StartingBalance),
		StartingRaw:     s.Summary.StartingBalance.Decimal().String(),
		TotalIncome:     f.Format(s.Summary.TotalIncome),
		TotalExpense:    f.Format(s.Summary.TotalExpense),
		Balance:         f.Format(s.Summary.Balance),
		BalanceNegative: s.Summary.Balance.Cents < 0,
		Budget:          f.Format(s.Budget.Budget),
		BudgetRaw:       s.Budget.Budget.Decimal().String(),
		MonthlyExpense:  f.Format(s.Budget.MonthlyExpense),
		SpentPercentage: strconv.FormatFloat(s.Budget.SpentPercentage, 'f', 1, 64),
		Level:           string(s.Budget.Level),
		OverBudget:      s.Budget.IsOverBudget,
		AdviceNeeded:    s.Budget.AdviceNeeded,
	}
}

// currencyOptions lists the supported currencies plus the active one when
// it was set outside the selector.
func currencyOptions(active string) []currency.Option {
	opts := append([]currency.Option(nil), currency.Supported...)
	for _, o := range opts {
		if o.Code == active {
			return opts
		}
	}
	return append(opts, currency.Option{Code: active, Name: active})
}

func newHistoryView(s ledger.Snapshot, f *currency.Formatter) historyView {
	v := historyView{Query: s.Query}
	switch {
	case s.TotalCount == 0:
		v.EmptyMessage = emptyHistory
		return v
	case len(s.Transactions) == 0:
		v.EmptyMessage = noSearchResult
		return v
	}

	v.Items = make([]historyItem, 0, len(s.Transactions))
	for _, t := range s.Transactions {
		v.Items = append(v.Items, historyItem{
			ID:          t.ID,
			Description: t.Description,
			Category:    t.Category,
			Color:       core.CategoryColor(t.Category),
			Date:        t.Date.Format("Jan 2, 2006"),
			Amount:      f.FormatSigned(t.Type, t.Amount),
			Income:      t.Type == core.Income,
		})
	}
	return v
}

// Pie geometry in SVG user units.
const (
	pieCenter = 100.0
	pieRadius = 90.0
)

func newChartView(cats []core.CategoryAmount, f *currency.Formatter) chartView {
	var total int64
	for _, c := range cats {
		total += c.Amount.Cents
	}
	if len(cats) == 0 || total <= 0 {
		return chartView{EmptyMessage: emptyChart}
	}

	v := chartView{Slices: make([]chartSlice, 0, len(cats))}
	var acc int64
	for _, c := range cats {
		start := float64(acc) / float64(total)
		acc += c.Amount.Cents
		end := float64(acc) / float64(total)

		slice := chartSlice{
			Name:    c.Name,
			Color:   c.Color,
			Amount:  f.Format(c.Amount),
			Percent: strconv.FormatFloat((end-start)*100, 'f', 1, 64),
		}
		if len(cats) > 1 {
			slice.Path = arcPath(start, end)
		}
		v.Slices = append(v.Slices, slice)
	}
	return v
}

// arcPath draws a pie wedge between two fractions of the full turn,
// starting at twelve o'clock and going clockwise.
func arcPath(start, end float64) string {
	point := func(frac float64) (float64, float64) {
		a := 2*math.Pi*frac - math.Pi/2
		return pieCenter + pieRadius*math.Cos(a), pieCenter + pieRadius*math.Sin(a)
	}
	x1, y1 := point(start)
	x2, y2 := point(end)
	large := 0
	if end-start > 0.5 {
		large = 1
	}
	return fmt.Sprintf("M%.2f %.2f L%.2f %.2f A%.2f %.2f 0 %d 1 %.2f %.2f Z",
		pieCenter, pieCenter, x1, y1, pieRadius, pieRadius, large, x2, y2)
}

func newEntryFormView(tab core.EntryTab, f *currency.Formatter, today core.Date) entryFormView {
	return entryFormView{
		Type:        string(tab.Type),
		Income:      tab.Type == core.Income,
		Suggestions: tab.Suggestions(),
		Symbol:      f.Symbol(),
		Category:    tab.Category,
		Date:        today.String(),
	}
}
