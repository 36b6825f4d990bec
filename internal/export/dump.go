package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"pocketledger/internal/core"
	"pocketledger/internal/ledger"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML, FormatCSV:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown dump format %q (want json, yaml or csv)", s)
	}
}

// Dump is the portable form of the ledger state. Amounts are decimal strings
// in currency units.
type Dump struct {
	Currency        string            `json:"currency" yaml:"currency"`
	StartingBalance string            `json:"startingBalance" yaml:"starting_balance"`
	Budget          string            `json:"budget" yaml:"budget"`
	Transactions    []DumpTransaction `json:"transactions" yaml:"transactions"`
}

type DumpTransaction struct {
	ID          string `json:"id" yaml:"id"`
	Date        string `json:"date" yaml:"date"`
	Description string `json:"description" yaml:"description"`
	Category    string `json:"category" yaml:"category"`
	Type        string `json:"type" yaml:"type"`
	Amount      string `json:"amount" yaml:"amount"`
}

// NewDump captures every transaction in s together with the settings.
func NewDump(s ledger.Snapshot) Dump {
	d := Dump{
		Currency:        s.Currency,
		StartingBalance: s.Summary.StartingBalance.Decimal().StringFixed(2),
		Budget:          s.Budget.Budget.Decimal().StringFixed(2),
		Transactions:    make([]DumpTransaction, 0, len(s.Transactions)),
	}
	for _, t := range s.Transactions {
		d.Transactions = append(d.Transactions, dumpTransaction(t))
	}
	return d
}

func dumpTransaction(t core.Transaction) DumpTransaction {
	return DumpTransaction{
		ID:          t.ID,
		Date:        t.Date.String(),
		Description: t.Description,
		Category:    t.Category,
		Type:        string(t.Type),
		Amount:      t.Amount.Decimal().StringFixed(2),
	}
}

// Write encodes d in the given format. CSV carries only the transactions.
func (d Dump) Write(w io.Writer, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatCSV:
		return d.writeCSV(w)
	default:
		return fmt.Errorf("unknown dump format %q", f)
	}
}

func (d Dump) writeCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "date", "description", "category", "type", "amount"}); err != nil {
		return err
	}
	for _, t := range d.Transactions {
		if err := cw.Write([]string{t.ID, t.Date, t.Description, t.Category, t.Type, t.Amount}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
