package http

import (
	"context"
	"errors"
	"net/http"

	"pocketledger/internal/amqp"
	applog "pocketledger/internal/log"
)

func (s *Server) handleSetStartingBalance(w http.ResponseWriter, r *http.Request) {
	s.applySetting(w, r, "starting balance", func(ctx context.Context, v valueGetter) error {
		m, err := ParseStartingBalance(v)
		if err != nil {
			return err
		}
		return s.ledger.SetStartingBalance(ctx, m)
	})
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	s.applySetting(w, r, "budget", func(ctx context.Context, v valueGetter) error {
		m, err := ParseBudget(v)
		if err != nil {
			return err
		}
		return s.ledger.SetBudget(ctx, m)
	})
}

func (s *Server) handleSetCurrency(w http.ResponseWriter, r *http.Request) {
	s.applySetting(w, r, "currency", func(ctx context.Context, v valueGetter) error {
		code, err := ParseCurrency(v)
		if err != nil {
			return err
		}
		return s.ledger.SetCurrency(ctx, code)
	})
}

// applySetting parses the body, runs apply and answers with an empty body
// plus a refresh trigger, or with the error message for the form.
func (s *Server) applySetting(w http.ResponseWriter, r *http.Request, name string, apply func(context.Context, valueGetter) error) {
	ctx := r.Context()
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError(msgBadRequest).Write(w)
		return
	}

	if err := apply(ctx, parser); err != nil {
		var fe *formError
		if errors.As(err, &fe) {
			UnprocessableEntityError(fe.msg).Write(w)
			return
		}
		applog.NewStructuredLogger(applog.FromContext(ctx)).LogError(ctx,
			"Failed to update setting", err, applog.OpSettings,
			applog.NewFields().WithComponent(applog.ComponentHTTP))
		InternalServerError("Could not save the " + name + ", please try again").Write(w)
		return
	}

	applog.FromContext(ctx).InfoContext(ctx, "Setting updated",
		"setting", name, applog.FieldOperation, applog.OpSettings)
	NewHTMXResponse().
		TriggerLedgerChanged(string(amqp.SettingsChanged)).
		Write(w)
}
