package main

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/spf13/cobra"
	"pocketledger/internal/core"
	"pocketledger/internal/services"
)

func (a *app) seedCmd() *cobra.Command {
	var (
		count  int
		months int
		seed   int64
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Add random demo transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 1 {
				return fmt.Errorf("count must be at least 1, got %d", count)
			}
			if months < 1 {
				return fmt.Errorf("months must be at least 1, got %d", months)
			}
			drafts := seedDrafts(gofakeit.New(seed), count, months, a.clock.Now())
			return a.withLedger(cmd.Context(), func(svc *services.LedgerService) error {
				for _, d := range drafts {
					if _, err := svc.AddTransaction(cmd.Context(), d); err != nil {
						return err
					}
				}
				fmt.Fprintf(a.out, "Added %d transactions\n", len(drafts))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 20, "Number of transactions")
	cmd.Flags().IntVar(&months, "months", 3, "Spread dates over this many past months")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 picks one)")
	return cmd
}

// seedDrafts generates count valid drafts dated between now-months and now.
// Roughly one in five is income.
func seedDrafts(f *gofakeit.Faker, count, months int, now time.Time) []core.TransactionDraft {
	start := now.AddDate(0, -months, 0)
	incomeCats := core.SuggestedCategories(core.Income)
	expenseCats := core.SuggestedCategories(core.Expense)

	drafts := make([]core.TransactionDraft, 0, count)
	for i := 0; i < count; i++ {
		day := f.DateRange(start, now)
		d := core.TransactionDraft{
			Date: core.NewDate(day.Year(), int(day.Month()), day.Day()),
		}
		if f.Number(1, 5) == 1 {
			d.Type = core.Income
			d.Category = f.RandomString(incomeCats)
			d.Description = "Payment from " + f.Company()
			d.Amount = core.Money{Cents: int64(f.Number(50_000, 500_000))}
		} else {
			d.Type = core.Expense
			d.Category = f.RandomString(expenseCats)
			d.Description = f.ProductName()
			d.Amount = core.Money{Cents: int64(f.Number(150, 25_000))}
		}
		drafts = append(drafts, d)
	}
	return drafts
}
