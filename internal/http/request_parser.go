// Package http provides HTTP server and handler implementations.
//
// This file implements parsing and validation of form and JSON request
// bodies into ledger inputs.

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"pocketledger/internal/core"
	"pocketledger/internal/currency"
)

// Messages shown next to the forms.
const (
	msgFillAllFields   = "Please fill all fields"
	msgPositiveAmount  = "Please enter a valid positive amount"
	msgInvalidType     = "Please choose income or expense"
	msgInvalidDate     = "Please enter a valid date"
	msgDescriptionLong = "Description is too long (max 200 characters)"
	msgValidNumber     = "Please enter a valid number"
	msgNonNegative     = "Please enter a valid non-negative number"
	msgUnknownCurrency = "Please choose a valid currency"
	msgBadRequest      = "Invalid request format"
)

const maxDescriptionLen = 200

// maxBodyBytes bounds request bodies; forms here are tiny.
const maxBodyBytes = 64 << 10

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

// NewRequestBodyParser reads the body once and stores it for parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	return p.err
}

// Get returns a sanitized string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput drops control characters other than tab and newlines and
// trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// valueGetter is satisfied by RequestBodyParser and url.Values.
type valueGetter interface {
	Get(key string) string
}

// formError carries the message shown to the user.
type formError struct {
	msg string
	err error
}

func (e *formError) Error() string { return e.msg }
func (e *formError) Unwrap() error { return e.err }

func invalid(msg string, err error) error {
	return &formError{msg: msg, err: err}
}

// userMessage extracts the display text of a validation failure.
func userMessage(err error) string {
	var fe *formError
	if errors.As(err, &fe) {
		return fe.msg
	}
	return msgBadRequest
}

// ParseTransactionForm validates the entry form. Every field is required;
// the amount must be a positive decimal.
func ParseTransactionForm(v valueGetter) (core.TransactionDraft, error) {
	description := v.Get("description")
	amount := v.Get("amount")
	category := v.Get("category")
	date := v.Get("date")
	rawType := v.Get("type")

	if description == "" || amount == "" || category == "" || date == "" {
		return core.TransactionDraft{}, invalid(msgFillAllFields, core.ErrEmptyDescription)
	}
	if len(description) > maxDescriptionLen {
		return core.TransactionDraft{}, invalid(msgDescriptionLong, core.ErrEmptyDescription)
	}

	t, err := core.ParseTransactionType(rawType)
	if err != nil {
		return core.TransactionDraft{}, invalid(msgInvalidType, err)
	}
	cents, err := core.ParseDecimalToCents(amount)
	if err != nil {
		return core.TransactionDraft{}, invalid(msgPositiveAmount, err)
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.TransactionDraft{}, invalid(msgInvalidDate, err)
	}

	return core.TransactionDraft{
		Description: description,
		Amount:      core.Money{Cents: cents},
		Type:        t,
		Category:    category,
		Date:        d,
	}, nil
}

// ParseStartingBalance accepts any decimal, negative included.
func ParseStartingBalance(v valueGetter) (core.Money, error) {
	cents, err := core.ParseSignedDecimalToCents(v.Get("amount"))
	if err != nil {
		return core.Money{}, invalid(msgValidNumber, err)
	}
	return core.Money{Cents: cents}, nil
}

// ParseBudget accepts zero or a positive decimal.
func ParseBudget(v valueGetter) (core.Money, error) {
	cents, err := core.ParseNonNegativeDecimalToCents(v.Get("amount"))
	if err != nil {
		return core.Money{}, invalid(msgNonNegative, err)
	}
	return core.Money{Cents: cents}, nil
}

// ParseCurrency accepts any ISO 4217 code.
func ParseCurrency(v valueGetter) (string, error) {
	code := strings.ToUpper(v.Get("currency"))
	if code == "" {
		return "", invalid(msgUnknownCurrency, nil)
	}
	if _, ok := currency.New(code); !ok {
		return "", invalid(msgUnknownCurrency, nil)
	}
	return code, nil
}
