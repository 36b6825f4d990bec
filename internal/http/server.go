package http

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"pocketledger/internal/advice"
	"pocketledger/internal/core"
	"pocketledger/internal/currency"
	"pocketledger/internal/ledger"
	applog "pocketledger/internal/log"
	"pocketledger/internal/middleware/ratelimit"
	"pocketledger/internal/middleware/security"
	"pocketledger/internal/middleware/trace"
	"pocketledger/internal/services"
	appweb "pocketledger/web"
)

// Deps are the collaborators the server needs.
type Deps struct {
	Ledger  *services.LedgerService
	Advisor *advice.Service
	// Ready reports whether the backing store is reachable.
	Ready              func(ctx context.Context) error
	Clock              core.Clock
	Logger             *applog.Logger
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	templates *template.Template
	ledger    *services.LedgerService
	advisor   *advice.Service
	ready     func(ctx context.Context) error
	clock     core.Clock
	logger    *applog.Logger
	startedAt time.Time

	detector     *security.Detector
	limiter      *ratelimit.Limiter
	tracer       *trace.Middleware
	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and wires routes and middleware.
func NewServer(addr string, deps Deps) (*Server, error) {
	if deps.Ledger == nil {
		return nil, fmt.Errorf("ledger service is required")
	}
	if deps.Advisor == nil {
		deps.Advisor = advice.NewService(nil)
	}
	if deps.Ready == nil {
		deps.Ready = func(context.Context) error { return nil }
	}
	if deps.Clock == nil {
		deps.Clock = core.SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = applog.New(applog.Config{Component: applog.ComponentHTTP})
	}

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		templates: t,
		ledger:    deps.Ledger,
		advisor:   deps.Advisor,
		ready:     deps.Ready,
		clock:     deps.Clock,
		logger:    deps.Logger,
		startedAt: time.Now(),
		detector:  security.NewDetector(),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RateLimitPerMinute}),
	}
	s.tracer = trace.NewMiddleware(deps.Logger, s.detector.ExtractClientIP)

	mux := http.NewServeMux()

	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(
		http.StripPrefix("/static/", http.FileServer(http.FS(static)))))

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /ui/summary", s.handleSummary)
	mux.HandleFunc("GET /ui/history", s.handleHistory)
	mux.HandleFunc("GET /ui/chart", s.handleChart)
	mux.HandleFunc("GET /ui/advice", s.handleAdvice)
	mux.HandleFunc("GET /ui/entry-form", s.handleEntryForm)

	mux.HandleFunc("POST /transactions", s.handleCreateTransaction)
	mux.HandleFunc("DELETE /transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("POST /settings/starting-balance", s.handleSetStartingBalance)
	mux.HandleFunc("POST /settings/budget", s.handleSetBudget)
	mux.HandleFunc("POST /settings/currency", s.handleSetCurrency)

	mux.HandleFunc("GET /api/state", s.handleAPIState)
	mux.HandleFunc("GET /api/categories", s.handleAPICategories)
	mux.HandleFunc("GET /export.pdf", s.handleExportPDF)

	var h http.Handler = mux
	h = s.limiter.Middleware(s.detector.ExtractClientIP, nil)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.detector.Middleware(h)
	h = s.tracer.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Shutdown stops background goroutines and drains the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

var templateFuncs = template.FuncMap{
	"lower": strings.ToLower,
}

// render executes a template into a buffer so a failure never leaves a
// half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any, b *HTMXResponseBuilder) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		applog.NewStructuredLogger(applog.FromContext(r.Context())).LogError(r.Context(),
			"Template execution failed", err, applog.OpRender,
			applog.NewFields().WithComponent(applog.ComponentTemplate))
		InternalServerError("Something went wrong, please reload the page").Write(w)
		return
	}
	if b == nil {
		b = NewHTMXResponse()
	}
	b.BodyHTML(buf.Bytes()).Write(w)
}

// snapshot re-reads the store first so changes made by other processes
// (ledgerctl, another instance) are shown. A failed re-read serves the
// cached state.
func (s *Server) snapshot(r *http.Request, query string) ledger.Snapshot {
	ctx := r.Context()
	l := s.ledger.Ledger()
	if err := l.Refresh(ctx); err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Serving cached ledger state",
			applog.NewFields().WithError(err).WithComponent(applog.ComponentStorage).ToSlice()...)
	}
	return l.Snapshot(query)
}

// formatter returns the display formatter for the active currency.
func (s *Server) formatter() *currency.Formatter {
	f, _ := currency.New(s.ledger.Ledger().Currency())
	return f
}

func (s *Server) today() core.Date {
	now := s.clock.Now()
	return core.NewDate(now.Year(), int(now.Month()), now.Day())
}
