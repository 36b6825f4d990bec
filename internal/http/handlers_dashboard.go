package http

import (
	"bytes"
	"net/http"
	"strings"

	"pocketledger/internal/advice"
	"pocketledger/internal/core"
	"pocketledger/internal/export"
	applog "pocketledger/internal/log"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot(r, r.URL.Query().Get("q"))
	f := s.formatter()

	s.render(w, r, "index.html", pageView{
		Summary: newSummaryView(snap, f),
		History: newHistoryView(snap, f),
		Chart:   newChartView(snap.Categories, f),
		Entry:   newEntryFormView(core.NewEntryTab(), f, s.today()),
	}, nil)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot(r, "")
	s.render(w, r, "summary", newSummaryView(snap, s.formatter()), nil)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot(r, r.URL.Query().Get("q"))
	s.render(w, r, "history", newHistoryView(snap, s.formatter()), nil)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot(r, "")
	s.render(w, r, "chart", newChartView(snap.Categories, s.formatter()), nil)
}

// handleEntryForm switches the entry tab. An unknown type keeps the
// expense tab.
func (s *Server) handleEntryForm(w http.ResponseWriter, r *http.Request) {
	tab := core.NewEntryTab()
	if t, err := core.ParseTransactionType(r.URL.Query().Get("type")); err == nil {
		tab = tab.Select(t)
	}
	s.render(w, r, "entry_form", newEntryFormView(tab, s.formatter(), s.today()), nil)
}

// handleAdvice renders nothing while finances look fine. Failures are shown
// inline and never turn into an error status.
func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot(r, "")
	if !snap.Budget.AdviceNeeded {
		s.render(w, r, "advice", adviceView{}, nil)
		return
	}

	regenerate := r.URL.Query().Get("regenerate") != ""
	req := advice.RequestFromSnapshot(snap, s.formatter())
	res, err := s.advisor.Advise(r.Context(), req, regenerate)

	v := adviceView{Needed: true, Provider: s.advisor.ProviderName()}
	if err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Advice unavailable",
			applog.NewFields().WithError(err).WithOperation(applog.OpAdvise).ToSlice()...)
		v.Error = advice.UserMessage(err)
	} else {
		v.Lines = res.Lines
		v.Cached = res.Cached
	}
	s.render(w, r, "advice", v, nil)
}

func (s *Server) handleAPIState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshot(r, r.URL.Query().Get("q")))
}

func (s *Server) handleAPICategories(w http.ResponseWriter, r *http.Request) {
	tab := core.NewEntryTab()
	if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
		t, err := core.ParseTransactionType(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		tab = tab.Select(t)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"type":       tab.Type,
		"categories": tab.Suggestions(),
	})
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot(r, "")

	var buf bytes.Buffer
	if err := export.WritePDF(&buf, snap, s.formatter(), snap.At, export.PDFOptions{}); err != nil {
		applog.NewStructuredLogger(applog.FromContext(r.Context())).LogError(r.Context(),
			"PDF export failed", err, applog.OpExport, nil)
		http.Error(w, "could not generate PDF", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName(snap.At)+`"`)
	_, _ = w.Write(buf.Bytes())
}
