// Package advice asks a text-generation provider for budget tips when the
// user is over budget or in the red.
package advice

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"pocketledger/internal/currency"
	"pocketledger/internal/ledger"
)

// ErrNotConfigured is returned when no API key was provided.
var ErrNotConfigured = errors.New("API key is not configured. Please set up your API key to receive financial advice.")

// ErrEmptyResponse is returned when the provider answered with no text.
var ErrEmptyResponse = errors.New("the advice service returned an empty response")

// Provider generates free text for a prompt.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Request carries the already formatted figures the prompt is built from.
type Request struct {
	Budget          string
	Spent           string
	Balance         string
	NegativeBalance bool
	OverBudget      bool
}

// RequestFromSnapshot formats the snapshot figures with f.
func RequestFromSnapshot(s ledger.Snapshot, f *currency.Formatter) Request {
	return Request{
		Budget:          f.Format(s.Budget.Budget),
		Spent:           f.Format(s.Summary.MonthlyExpense),
		Balance:         f.Format(s.Summary.Balance),
		NegativeBalance: s.Summary.Balance.Cents < 0,
		OverBudget:      s.Budget.IsOverBudget,
	}
}

// BuildPrompt renders the prompt sent to the provider.
func BuildPrompt(r Request) string {
	var negative, over string
	if r.NegativeBalance {
		negative = "My account balance is negative."
	}
	if r.OverBudget {
		over = "I have overspent my budget this month."
	}
	return fmt.Sprintf(`My current financial situation is as follows:
- Monthly Budget: %s
- Spent This Month: %s
- Current Account Balance: %s

%s
%s

Please provide some friendly, practical, and actionable advice on how to stick to my budget and improve my financial situation. Provide a few short, concise tips in a bulleted list format.`,
		r.Budget, r.Spent, r.Balance, negative, over)
}

var bulletPrefix = regexp.MustCompile(`^[*\-]\s*`)

// ParseLines splits text into list items: one per non-blank line, with a
// single leading "*" or "-" marker removed.
func ParseLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		cleaned := bulletPrefix.ReplaceAllString(strings.TrimSpace(line), "")
		if cleaned == "" {
			continue
		}
		out = append(out, cleaned)
	}
	return out
}

// Result is one piece of generated advice.
type Result struct {
	Text        string
	Lines       []string
	Provider    string
	GeneratedAt time.Time
	Cached      bool
}

// unconfigured stands in for a provider whose credentials are missing.
type unconfigured struct{ name string }

func (u unconfigured) Name() string { return u.name }

func (unconfigured) Generate(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}

// Unconfigured returns a provider that always fails with ErrNotConfigured.
func Unconfigured(name string) Provider {
	return unconfigured{name: name}
}

const genericFailure = "Sorry, I couldn't fetch financial advice right now. Please try again later."

// UserMessage turns an Advise error into text fit for display.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotConfigured):
		return ErrNotConfigured.Error()
	default:
		return genericFailure
	}
}
