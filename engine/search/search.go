// Package search ranks the available inventory against free-text customer
// queries: parse criteria, filter hard bounds, score the rest, return the
// best matches with the reasons they matched.
package search

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/CarBotAI/carbot-mvp/engine/domain"
	"github.com/CarBotAI/carbot-mvp/engine/inventory"
	"github.com/CarBotAI/carbot-mvp/engine/query"
	"github.com/CarBotAI/carbot-mvp/pkg/fn"
	"github.com/CarBotAI/carbot-mvp/pkg/metrics"
)

// DefaultMaxResults caps a search when the caller does not.
const DefaultMaxResults = 10

const maxHistorySize = 100

// HistoryEntry records one executed search.
type HistoryEntry struct {
	Timestamp    time.Time      `json:"timestamp"`
	Query        string         `json:"query"`
	ResultsCount int            `json:"results_count"`
	Criteria     query.Criteria `json:"criteria"`
}

// Service executes searches over an inventory store.
type Service struct {
	store    *inventory.Store
	log      *slog.Logger
	workers  int
	pipeline fn.Stage[request, response]

	searches *metrics.Counter
	duration *metrics.Histogram

	mu      sync.Mutex
	history []HistoryEntry
}

type request struct {
	query      string
	maxResults int
	criteria   query.Criteria
	cars       []domain.Car
}

type response struct {
	results  []Result
	criteria query.Criteria
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.log = l }
}

// WithMetrics registers search metrics on reg.
func WithMetrics(reg *metrics.Registry) ServiceOption {
	return func(s *Service) {
		s.searches = reg.Counter("searches_total", "Total searches executed")
		s.duration = reg.Histogram("search_duration_seconds", "Search latency", nil)
	}
}

// WithWorkers sets the scoring fan-out width.
func WithWorkers(n int) ServiceOption {
	return func(s *Service) { s.workers = n }
}

// NewService creates a search service over the store.
func NewService(store *inventory.Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:   store,
		log:     slog.Default(),
		workers: 8,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.pipeline = fn.Then(
		fn.Then(
			fn.TracedStage("search.parse", s.parseStage),
			fn.TracedStage("search.filter", s.filterStage),
		),
		fn.TracedStage("search.rank", s.rankStage),
	)
	return s
}

func (s *Service) parseStage(_ context.Context, req request) fn.Result[request] {
	req.criteria = query.Parse(req.query)
	req.cars = s.store.Active()
	return fn.Ok(req)
}

func (s *Service) filterStage(_ context.Context, req request) fn.Result[request] {
	req.cars = Filter(req.cars, req.criteria)
	return fn.Ok(req)
}

func (s *Service) rankStage(_ context.Context, req request) fn.Result[response] {
	results := rank(req.cars, req.query, req.criteria, s.workers)
	if len(results) > req.maxResults {
		results = results[:req.maxResults]
	}
	return fn.Ok(response{results: results, criteria: req.criteria})
}

// Search runs the full pipeline for a free-text query. maxResults <= 0 uses
// DefaultMaxResults. Only Available vehicles are considered.
func (s *Service) Search(ctx context.Context, q string, maxResults int) ([]Result, error) {
	if !s.store.Loaded() {
		return nil, domain.ErrNotLoaded
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	start := time.Now()

	out := s.pipeline(ctx, request{query: q, maxResults: maxResults})
	resp, err := out.Unwrap()
	if err != nil {
		return nil, err
	}

	if s.searches != nil {
		s.searches.Inc()
		s.duration.Since(start)
	}
	s.recordSearch(q, resp)
	s.log.Info("search", "query", q, "results", len(resp.results), "duration", time.Since(start))
	return resp.results, nil
}

// Lookup fetches a single vehicle by VIN as a fully scored direct match.
func (s *Service) Lookup(vin string) (Result, bool) {
	car, ok := s.store.GetByVIN(vin)
	if !ok {
		return Result{}, false
	}
	return Result{
		Car:          car,
		MatchScore:   1.0,
		MatchReasons: []string{"Direct VIN lookup"},
	}, true
}

// History returns a copy of the most recent searches, newest last.
func (s *Service) History() []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]HistoryEntry, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Service) recordSearch(q string, resp response) {
	entry := HistoryEntry{
		Timestamp:    time.Now().UTC(),
		Query:        q,
		ResultsCount: len(resp.results),
		Criteria:     resp.criteria,
	}
	s.mu.Lock()
	s.history = append(s.history, entry)
	if len(s.history) > maxHistorySize {
		s.history = s.history[len(s.history)-maxHistorySize:]
	}
	s.mu.Unlock()
}
