package http

import (
	"net/http"

	"pocketledger/internal/amqp"
	"pocketledger/internal/core"
	applog "pocketledger/internal/log"
)

// handleCreateTransaction accepts the entry form (or a JSON body). On
// success the form comes back empty on the same tab; on a validation
// failure it comes back with the input kept and the message shown.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError(msgBadRequest).Write(w)
		return
	}

	f := s.formatter()
	tab := core.NewEntryTab()
	if t, err := core.ParseTransactionType(parser.Get("type")); err == nil {
		tab = tab.Select(t)
	}

	draft, err := ParseTransactionForm(parser)
	if err != nil {
		if parser.IsJSON() {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": userMessage(err)})
			return
		}
		v := newEntryFormView(tab, f, s.today())
		v.Description = parser.Get("description")
		v.Amount = parser.Get("amount")
		v.Category = parser.Get("category")
		if d := parser.Get("date"); d != "" {
			v.Date = d
		}
		v.Error = userMessage(err)
		s.render(w, r, "entry_form", v, NewHTMXResponse().Status(http.StatusUnprocessableEntity))
		return
	}

	tx, err := s.ledger.AddTransaction(ctx, draft)
	if err != nil {
		applog.NewStructuredLogger(applog.FromContext(ctx)).LogError(ctx,
			"Failed to add transaction", err, applog.OpAdd, nil)
		if parser.IsJSON() {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not save transaction"})
			return
		}
		InternalServerError("Could not save the transaction, please try again").Write(w)
		return
	}
	if parser.IsJSON() {
		writeJSON(w, http.StatusCreated, tx)
		return
	}
	s.render(w, r, "entry_form", newEntryFormView(tab, f, s.today()),
		NewHTMXResponse().
			TriggerLedgerChanged(string(amqp.TransactionAdded)).
			TriggerFormReset().
			TriggerSuccessNotification(tx.Type.Label()+" added"))
}

// handleDeleteTransaction removes one record. Unknown ids succeed too.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	if err := s.ledger.RemoveTransaction(ctx, id); err != nil {
		applog.NewStructuredLogger(applog.FromContext(ctx)).LogError(ctx,
			"Failed to remove transaction", err, applog.OpRemove,
			applog.NewFields().WithTransaction(id, "", "", 0))
		InternalServerError("Could not delete the transaction, please try again").Write(w)
		return
	}

	NewHTMXResponse().
		TriggerLedgerChanged(string(amqp.TransactionRemoved)).
		Write(w)
}
