package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"pocketledger/internal/core"
	"pocketledger/internal/currency"
	"pocketledger/internal/export"
	"pocketledger/internal/services"
)

// formatterFor falls back to USD for codes x/text does not know.
func formatterFor(code string) *currency.Formatter {
	f, _ := currency.New(code)
	return f
}

func (a *app) summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print balance, totals and budget status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLedger(cmd.Context(), func(svc *services.LedgerService) error {
				snap := svc.Ledger().Snapshot("")
				writeSummary(a.out, snap.Summary, snap.Budget, formatterFor(snap.Currency))
				return nil
			})
		},
	}
}

func writeSummary(w io.Writer, s core.Summary, b core.BudgetStatus, f *currency.Formatter) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Currency\t%s\n", f.Code())
	fmt.Fprintf(tw, "Starting balance\t%s\n", f.Format(s.StartingBalance))
	fmt.Fprintf(tw, "Total income\t%s\n", f.Format(s.TotalIncome))
	fmt.Fprintf(tw, "Total expense\t%s\n", f.Format(s.TotalExpense))
	fmt.Fprintf(tw, "Balance\t%s\n", f.Format(s.Balance))
	fmt.Fprintf(tw, "Monthly budget\t%s\n", f.Format(b.Budget))
	fmt.Fprintf(tw, "Spent this month\t%s (%.0f%%)\n", f.Format(b.MonthlyExpense), b.SpentPercentage)
	tw.Flush()
	if b.IsOverBudget {
		fmt.Fprintln(w, "You are over budget!")
	}
}

func (a *app) listCmd() *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLedger(cmd.Context(), func(svc *services.LedgerService) error {
				snap := svc.Ledger().Snapshot(query)
				if len(snap.Transactions) == 0 {
					if snap.TotalCount == 0 {
						fmt.Fprintln(a.out, "No transactions yet.")
					} else {
						fmt.Fprintln(a.out, "No transactions match your search.")
					}
					return nil
				}
				f := formatterFor(snap.Currency)
				tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tDATE\tDESCRIPTION\tCATEGORY\tAMOUNT")
				for _, t := range snap.Transactions {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
						t.ID, t.Date, t.Description, t.Category, f.FormatSigned(t.Type, t.Amount))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVarP(&query, "q", "q", "", "Filter by description or category (case insensitive)")
	return cmd
}

func (a *app) addCmd() *cobra.Command {
	var (
		txType   string
		amount   string
		category string
		date     string
	)
	cmd := &cobra.Command{
		Use:   "add [flags] <description>",
		Short: "Record an income or expense",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.draftFromFlags(strings.Join(args, " "), txType, amount, category, date)
			if err != nil {
				return err
			}
			return a.withLedger(cmd.Context(), func(svc *services.LedgerService) error {
				t, err := svc.AddTransaction(cmd.Context(), d)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Added %s %s\n", strings.ToLower(t.Type.Label()), t.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&txType, "type", "t", string(core.Expense), "income or expense")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Positive amount, e.g. 12.50")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category name")
	cmd.Flags().StringVarP(&date, "date", "d", "", "Date as YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func (a *app) draftFromFlags(description, txType, amount, category, date string) (core.TransactionDraft, error) {
	t, err := core.ParseTransactionType(txType)
	if err != nil {
		return core.TransactionDraft{}, err
	}
	cents, err := core.ParseDecimalToCents(amount)
	if err != nil {
		return core.TransactionDraft{}, fmt.Errorf("amount %q: %w", amount, err)
	}
	var d core.Date
	if date == "" {
		now := a.clock.Now()
		d = core.NewDate(now.Year(), int(now.Month()), now.Day())
	} else if d, err = core.ParseDate(date); err != nil {
		return core.TransactionDraft{}, err
	}
	draft := core.TransactionDraft{
		Description: strings.TrimSpace(description),
		Amount:      core.Money{Cents: cents},
		Type:        t,
		Category:    strings.TrimSpace(category),
		Date:        d,
	}
	return draft, draft.Validate()
}

func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a transaction; unknown ids are ignored",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd.Context(), func(svc *services.LedgerService) error {
				return svc.RemoveTransaction(cmd.Context(), args[0])
			})
		},
	}
}

func (a *app) setBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "set-balance <amount>",
		Short:   "Set the starting balance (may be negative: use -- -50)",
		Example: "  ledgerctl set-balance 1500\n  ledgerctl set-balance -- -200.50",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cents, err := core.ParseSignedDecimalToCents(args[0])
			if err != nil {
				return fmt.Errorf("balance %q: %w", args[0], err)
			}
			return a.withLedger(cmd.Context(), func(svc *services.LedgerService) error {
				return svc.SetStartingBalance(cmd.Context(), core.Money{Cents: cents})
			})
		},
	}
}

func (a *app) setBudgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-budget <amount>",
		Short: "Set the monthly expense budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cents, err := core.ParseNonNegativeDecimalToCents(args[0])
			if err != nil {
				return fmt.Errorf("budget %q: %w", args[0], err)
			}
			return a.withLedger(cmd.Context(), func(svc *services.LedgerService) error {
				return svc.SetBudget(cmd.Context(), core.Money{Cents: cents})
			})
		},
	}
}

func (a *app) setCurrencyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-currency <code>",
		Short: "Set the display currency (ISO 4217 code)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, ok := currency.New(args[0])
			if !ok {
				return fmt.Errorf("unknown currency %q", args[0])
			}
			return a.withLedger(cmd.Context(), func(svc *services.LedgerService) error {
				return svc.SetCurrency(cmd.Context(), f.Code())
			})
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	parent := &cobra.Command{
		Use:   "export",
		Short: "Export reports",
	}
	var (
		out          string
		uncompressed bool
	)
	pdfCmd := &cobra.Command{
		Use:   "pdf",
		Short: "Write the financial summary PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLedger(cmd.Context(), func(svc *services.LedgerService) error {
				return a.writePDF(svc, out, uncompressed)
			})
		},
	}
	pdfCmd.Flags().StringVarP(&out, "out", "o", "", "Output file, - for stdout (default financial_summary_<date>.pdf)")
	pdfCmd.Flags().BoolVar(&uncompressed, "uncompressed", false, "Disable stream compression")
	parent.AddCommand(pdfCmd)
	return parent
}

func (a *app) writePDF(svc *services.LedgerService, out string, uncompressed bool) error {
	snap := svc.Ledger().Snapshot("")
	opts := export.PDFOptions{Uncompressed: uncompressed}
	f := formatterFor(snap.Currency)
	if out == "-" {
		return export.WritePDF(a.out, snap, f, snap.At, opts)
	}
	if out == "" {
		out = export.FileName(snap.At)
	}
	file, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := export.WritePDF(file, snap, f, snap.At, opts); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Wrote %s\n", out)
	return nil
}

func (a *app) dumpCmd() *cobra.Command {
	var (
		format string
		query  string
	)
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Write the ledger state as json, yaml or csv",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			return a.withLedger(cmd.Context(), func(svc *services.LedgerService) error {
				return export.NewDump(svc.Ledger().Snapshot(query)).Write(a.out, f)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatJSON), "json, yaml or csv")
	cmd.Flags().StringVarP(&query, "q", "q", "", "Only dump matching transactions")
	return cmd
}
