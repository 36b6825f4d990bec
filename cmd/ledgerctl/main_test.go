package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"pocketledger/internal/core"
	"pocketledger/internal/ledger"
	"pocketledger/internal/services"
	"pocketledger/internal/storage/memory"
)

var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T) (*app, *bytes.Buffer, *memory.Store) {
	t.Helper()
	store := memory.New()
	out := &bytes.Buffer{}
	clock := core.FixedClock{T: fixedNow}
	ids := 0
	a := &app{
		out:   out,
		clock: clock,
		open: func(ctx context.Context) (*services.LedgerService, func() error, error) {
			l, err := ledger.Open(ctx, store,
				ledger.WithClock(clock),
				ledger.WithIDGenerator(func() string {
					ids++
					return fmt.Sprintf("tx-%d", ids)
				}))
			if err != nil {
				return nil, nil, err
			}
			return services.NewLedgerService(l, nil), nil, nil
		},
	}
	return a, out, store
}

func execute(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	out := a.out.(*bytes.Buffer)
	out.Reset()
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAddAndList(t *testing.T) {
	a, _, _ := newTestApp(t)

	if _, err := execute(t, a, "add", "--type", "income", "--amount", "2000", "--category", "Salary", "March", "pay"); err != nil {
		t.Fatalf("add income: %v", err)
	}
	if _, err := execute(t, a, "add", "-a", "12,50", "-c", "Food", "-d", "2024-03-10", "Lunch"); err != nil {
		t.Fatalf("add expense: %v", err)
	}

	out, err := execute(t, a, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{"March pay", "+$2,000.00", "Lunch", "-$12.50", "2024-03-15"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}

	out, err = execute(t, a, "list", "--q", "food")
	if err != nil {
		t.Fatalf("list --q: %v", err)
	}
	if strings.Contains(out, "March pay") || !strings.Contains(out, "Lunch") {
		t.Errorf("filtered list = %q", out)
	}

	out, _ = execute(t, a, "list", "--q", "nothing-like-this")
	if !strings.Contains(out, "No transactions match your search.") {
		t.Errorf("expected no-match message, got %q", out)
	}
}

func TestListEmpty(t *testing.T) {
	a, _, _ := newTestApp(t)
	out, err := execute(t, a, "list")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "No transactions yet." {
		t.Errorf("got %q", out)
	}
}

func TestAddRejectsInvalidInput(t *testing.T) {
	a, _, store := newTestApp(t)
	tests := []struct {
		name string
		args []string
	}{
		{"zero amount", []string{"add", "-a", "0", "-c", "Food", "x"}},
		{"negative amount", []string{"add", "-a", "-5", "-c", "Food", "x"}},
		{"bad type", []string{"add", "-t", "refund", "-a", "5", "-c", "Food", "x"}},
		{"bad date", []string{"add", "-a", "5", "-c", "Food", "-d", "2024-02-30", "x"}},
		{"missing category", []string{"add", "-a", "5", "x"}},
		{"missing description", []string{"add", "-a", "5", "-c", "Food"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, a, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
	if len(store.Keys()) != 0 {
		t.Errorf("invalid input persisted slots: %v", store.Keys())
	}
}

func TestRemove(t *testing.T) {
	a, _, _ := newTestApp(t)
	if _, err := execute(t, a, "add", "-a", "5", "-c", "Food", "Snack"); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, a, "rm", "unknown-id"); err != nil {
		t.Fatalf("rm unknown id: %v", err)
	}
	if _, err := execute(t, a, "rm", "tx-1"); err != nil {
		t.Fatalf("rm: %v", err)
	}
	out, _ := execute(t, a, "list")
	if strings.TrimSpace(out) != "No transactions yet." {
		t.Errorf("after rm, list = %q", out)
	}
}

func TestSettingsAndSummary(t *testing.T) {
	a, _, _ := newTestApp(t)
	steps := [][]string{
		{"set-balance", "--", "-100"},
		{"set-budget", "50"},
		{"set-currency", "eur"},
		{"add", "-a", "80", "-c", "Food", "Groceries"},
	}
	for _, args := range steps {
		if _, err := execute(t, a, args...); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
	}

	out, err := execute(t, a, "summary")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"EUR", "-€100.00", "-€180.00", "€50.00", "100%", "You are over budget!"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestSettingsRejectInvalid(t *testing.T) {
	a, _, _ := newTestApp(t)
	for _, args := range [][]string{
		{"set-budget", "--", "-1"},
		{"set-budget", "abc"},
		{"set-balance", "abc"},
		{"set-currency", "XYZW"},
	} {
		if _, err := execute(t, a, args...); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestDump(t *testing.T) {
	a, _, _ := newTestApp(t)
	if _, err := execute(t, a, "add", "-a", "9.99", "-c", "Bills", "-d", "2024-03-01", "Phone"); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, a, "dump")
	if err != nil {
		t.Fatal(err)
	}
	var got struct {
		Currency     string `json:"currency"`
		Transactions []struct {
			Amount string `json:"amount"`
			Date   string `json:"date"`
		} `json:"transactions"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("dump is not JSON: %v\n%s", err, out)
	}
	if got.Currency != "USD" || len(got.Transactions) != 1 || got.Transactions[0].Amount != "9.99" {
		t.Errorf("unexpected dump %+v", got)
	}

	out, err = execute(t, a, "dump", "--format", "csv")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Phone") {
		t.Errorf("csv dump missing row:\n%s", out)
	}

	if _, err := execute(t, a, "dump", "--format", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestExportPDFToStdout(t *testing.T) {
	a, _, _ := newTestApp(t)
	out, err := execute(t, a, "export", "pdf", "--out", "-")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "%PDF-") {
		t.Errorf("output does not look like a PDF: %q", out[:min(len(out), 16)])
	}
}

func TestExportPDFToFile(t *testing.T) {
	a, _, _ := newTestApp(t)
	path := filepath.Join(t.TempDir(), "report.pdf")
	out, err := execute(t, a, "export", "pdf", "-o", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Wrote "+path) {
		t.Errorf("got %q", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("file is not a PDF")
	}
}

func TestSeed(t *testing.T) {
	a, _, _ := newTestApp(t)
	out, err := execute(t, a, "seed", "--count", "15", "--seed", "42")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "Added 15 transactions" {
		t.Errorf("got %q", out)
	}
	if _, err := execute(t, a, "seed", "--count", "0"); err == nil {
		t.Error("expected error for count 0")
	}
}

func TestSeedDraftsAreValid(t *testing.T) {
	drafts := seedDrafts(gofakeit.New(7), 200, 2, fixedNow)
	if len(drafts) != 200 {
		t.Fatalf("got %d drafts", len(drafts))
	}
	earliest := fixedNow.AddDate(0, -2, -1)
	var incomes int
	for i, d := range drafts {
		if err := d.Validate(); err != nil {
			t.Errorf("draft %d invalid: %v (%+v)", i, err, d)
		}
		if d.Date.After(fixedNow) || d.Date.Before(earliest) {
			t.Errorf("draft %d date %s out of range", i, d.Date)
		}
		if d.Type == core.Income {
			incomes++
		}
	}
	if incomes == 0 || incomes == len(drafts) {
		t.Errorf("expected a mix of income and expense, got %d incomes", incomes)
	}
}
