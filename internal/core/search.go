package core

import "strings"

// Filter keeps the transactions whose description or category contains
// query, case-insensitively. Order is preserved; a blank query returns txs.
func Filter(txs []Transaction, query string) []Transaction {
	if strings.TrimSpace(query) == "" {
		return txs
	}
	q := strings.ToLower(query)
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if strings.Contains(strings.ToLower(t.Description), q) ||
			strings.Contains(strings.ToLower(t.Category), q) {
			out = append(out, t)
		}
	}
	return out
}
