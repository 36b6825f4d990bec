package advice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pocketledger/internal/cache"
)

// Service fronts a Provider with a prompt-keyed cache and a per-call timeout.
// Concurrent identical requests are not coalesced.
type Service struct {
	provider Provider
	cache    *cache.LRUCache[Result]
	timeout  time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

type ServiceOption func(*Service)

// WithCache enables result caching. A nil cache disables it.
func WithCache(c *cache.LRUCache[Result]) ServiceOption {
	return func(s *Service) { s.cache = c }
}

func WithTimeout(d time.Duration) ServiceOption {
	return func(s *Service) { s.timeout = d }
}

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

func NewService(p Provider, opts ...ServiceOption) *Service {
	if p == nil {
		p = Unconfigured("none")
	}
	s := &Service{
		provider: p,
		timeout:  30 * time.Second,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) ProviderName() string { return s.provider.Name() }

// Advise returns advice for r. With regenerate set the cache is skipped and
// the fresh answer replaces any cached one.
func (s *Service) Advise(ctx context.Context, r Request, regenerate bool) (Result, error) {
	prompt := BuildPrompt(r)

	if s.cache != nil && !regenerate {
		if res, ok := s.cache.Get(prompt); ok {
			res.Cached = true
			return res, nil
		}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := s.now()
	text, err := s.provider.Generate(ctx, prompt)
	if err != nil {
		s.logger.WarnContext(ctx, "Advice generation failed",
			"provider", s.provider.Name(), "error", err)
		return Result{}, fmt.Errorf("generate advice: %w", err)
	}
	lines := ParseLines(text)
	if len(lines) == 0 {
		return Result{}, ErrEmptyResponse
	}

	res := Result{
		Text:        strings.TrimSpace(text),
		Lines:       lines,
		Provider:    s.provider.Name(),
		GeneratedAt: s.now(),
	}
	if s.cache != nil {
		s.cache.Set(prompt, res)
	}
	s.logger.InfoContext(ctx, "Advice generated",
		"provider", res.Provider,
		"lines", len(lines),
		"duration_ms", res.GeneratedAt.Sub(start).Milliseconds(),
		"regenerate", regenerate)
	return res, nil
}
