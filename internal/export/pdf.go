// Package export renders the ledger as a PDF summary and as plain data
// dumps (JSON, YAML, CSV).
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"pocketledger/internal/core"
	"pocketledger/internal/currency"
	"pocketledger/internal/ledger"
)

type rgb struct{ R, G, B int }

var (
	colorBlack  = rgb{0, 0, 0}
	colorGreen  = rgb{46, 204, 113}
	colorRed    = rgb{231, 76, 60}
	colorMuted  = rgb{150, 150, 150}
	colorStripe = rgb{245, 245, 245}
	colorHeader = rgb{33, 37, 41}
)

type summaryRow struct {
	Label string
	Value string
	Color rgb
}

// summaryRows lists the six summary figures with their text colors.
func summaryRows(s ledger.Snapshot, f *currency.Formatter) []summaryRow {
	balanceColor := colorBlack
	if s.Summary.Balance.Cents < 0 {
		balanceColor = colorRed
	}
	spentColor := colorBlack
	if s.Summary.MonthlyExpense.Cents > s.Budget.Budget.Cents {
		spentColor = colorRed
	}
	return []summaryRow{
		{"Starting Balance", f.Format(s.Summary.StartingBalance), colorBlack},
		{"Total Income", f.Format(s.Summary.TotalIncome), colorGreen},
		{"Total Expense", f.Format(s.Summary.TotalExpense), colorRed},
		{"Final Balance", f.Format(s.Summary.Balance), balanceColor},
		{"Monthly Budget", f.Format(s.Budget.Budget), colorBlack},
		{"Spent This Month", f.Format(s.Summary.MonthlyExpense), spentColor},
	}
}

type transactionRow struct {
	Cells [5]string
	Color rgb
}

func transactionRows(txs []core.Transaction, f *currency.Formatter) []transactionRow {
	rows := make([]transactionRow, 0, len(txs))
	for _, t := range txs {
		color := colorRed
		if t.Type == core.Income {
			color = colorGreen
		}
		rows = append(rows, transactionRow{
			Cells: [5]string{t.Date.String(), t.Description, t.Category, t.Type.Label(), f.FormatSigned(t.Type, t.Amount)},
			Color: color,
		})
	}
	return rows
}

// FileName is the download name for a summary generated at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("financial_summary_%s.pdf", t.Format("2006-01-02"))
}

// PDFOptions tweaks rendering; the zero value compresses page streams.
type PDFOptions struct {
	Uncompressed bool
}

var (
	summaryWidths = []float64{90, 92}
	txWidths      = []float64{26, 62, 36, 22, 36}
	txHeaders     = []string{"Date", "Description", "Category", "Type", "Amount"}
)

const (
	rowHeight    = 8
	bottomMargin = 15
)

// WritePDF renders the summary table followed by every transaction in s.
func WritePDF(w io.Writer, s ledger.Snapshot, f *currency.Formatter, generated time.Time, opts PDFOptions) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(!opts.Uncompressed)
	pdf.SetTitle("Financial Summary", true)
	pdf.SetCreator("pocketledger", true)
	pdf.SetCreationDate(generated)
	pdf.SetModificationDate(generated)
	pdf.SetMargins(14, 14, 14)
	pdf.SetAutoPageBreak(true, bottomMargin)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string { return tr(pdfSafe(s)) }

	pdf.SetFont("Helvetica", "B", 22)
	pdf.Text(14, 22, "Financial Summary")
	pdf.SetFont("Helvetica", "", 12)
	setText(pdf, colorMuted)
	pdf.Text(14, 30, "Generated on: "+generated.Format("January 2, 2006"))

	pdf.SetY(40)
	for i, row := range summaryRows(s, f) {
		fill := i%2 == 0
		pdf.SetFillColor(colorStripe.R, colorStripe.G, colorStripe.B)
		setText(pdf, colorBlack)
		pdf.CellFormat(summaryWidths[0], rowHeight, text(row.Label), "", 0, "L", fill, 0, "")
		setText(pdf, row.Color)
		pdf.CellFormat(summaryWidths[1], rowHeight, text(row.Value), "", 1, "L", fill, 0, "")
	}

	pdf.Ln(15)
	_, pageHeight := pdf.GetPageSize()
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetDrawColor(200, 200, 200)
	txHeader(pdf)
	for _, row := range transactionRows(s.Transactions, f) {
		if pdf.GetY()+rowHeight > pageHeight-bottomMargin {
			pdf.AddPage()
			txHeader(pdf)
		}
		for i, cell := range row.Cells {
			setText(pdf, colorBlack)
			if i == 4 {
				setText(pdf, row.Color)
			}
			ln := 0
			if i == len(row.Cells)-1 {
				ln = 1
			}
			pdf.CellFormat(txWidths[i], rowHeight, fit(pdf, tr, pdfSafe(cell), txWidths[i]-2), "1", ln, "L", false, 0, "")
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func txHeader(pdf *fpdf.Fpdf) {
	pdf.SetFillColor(colorHeader.R, colorHeader.G, colorHeader.B)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range txHeaders {
		ln := 0
		if i == len(txHeaders)-1 {
			ln = 1
		}
		pdf.CellFormat(txWidths[i], rowHeight, h, "1", ln, "L", true, 0, "")
	}
	pdf.SetFont("Helvetica", "", 10)
}

func setText(pdf *fpdf.Fpdf, c rgb) {
	pdf.SetTextColor(c.R, c.G, c.B)
}

// pdfSafe replaces symbols the core fonts cannot encode.
func pdfSafe(s string) string {
	return strings.ReplaceAll(s, "₹", "Rs ")
}

// fit translates s for the core fonts, shortening it with an ellipsis
// until it is at most width wide.
func fit(pdf *fpdf.Fpdf, tr func(string) string, s string, width float64) string {
	if out := tr(s); pdf.GetStringWidth(out) <= width {
		return out
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(tr(string(r)+"...")) > width {
		r = r[:len(r)-1]
	}
	return tr(string(r) + "...")
}
