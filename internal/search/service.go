// Package search hosts the embedded engine behind the single-writer /
// multi-reader discipline the engine requires, and records service
// metrics around every operation.
package search

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/searchcore/searchcore/internal/engine"
	"github.com/searchcore/searchcore/pkg/metrics"
)

// Service owns a SearchServer. The engine itself takes no locks, so the
// service serializes writers against readers with an RWMutex.
type Service struct {
	mu      sync.RWMutex
	server  *engine.SearchServer
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewService wraps a server. Metrics may be nil in tests.
func NewService(server *engine.SearchServer, m *metrics.Metrics) *Service {
	return &Service{
		server:  server,
		metrics: m,
		logger:  slog.Default().With("component", "search-service"),
	}
}

// AddDocument indexes a document under the write lock.
func (s *Service) AddDocument(id int, text string, status engine.DocumentStatus, ratings []int) error {
	s.mu.Lock()
	err := s.server.AddDocument(id, text, status, ratings)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.DocsIndexedTotal.Inc()
	}
	return nil
}

// RemoveDocument removes a document under the write lock. Unknown ids are
// a no-op.
func (s *Service) RemoveDocument(id int) {
	s.mu.Lock()
	known := s.server.DocumentCount()
	s.server.RemoveDocument(id)
	removed := known - s.server.DocumentCount()
	s.mu.Unlock()
	if removed > 0 && s.metrics != nil {
		s.metrics.DocsRemovedTotal.Inc()
	}
}

// FindTopDocuments ranks documents with status ACTUAL under the read lock.
func (s *Service) FindTopDocuments(query string) ([]engine.Document, error) {
	start := time.Now()
	s.mu.RLock()
	result, err := s.server.FindTopDocuments(query)
	s.mu.RUnlock()
	s.observeQuery(result, err, time.Since(start))
	return result, err
}

// FindTopDocumentsByStatus ranks documents with the given status under the
// read lock.
func (s *Service) FindTopDocumentsByStatus(query string, status engine.DocumentStatus) ([]engine.Document, error) {
	start := time.Now()
	s.mu.RLock()
	result, err := s.server.FindTopDocumentsByStatus(query, status)
	s.mu.RUnlock()
	s.observeQuery(result, err, time.Since(start))
	return result, err
}

// MatchDocument reports which query words match the given document.
func (s *Service) MatchDocument(query string, id int) ([]string, engine.DocumentStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.server.MatchDocument(query, id)
}

// RemoveDuplicates deduplicates the corpus under the write lock, writing
// one diagnostic line per removed document to w.
func (s *Service) RemoveDuplicates(w io.Writer) int {
	s.mu.Lock()
	before := s.server.DocumentCount()
	engine.RemoveDuplicates(s.server, w)
	removed := before - s.server.DocumentCount()
	s.mu.Unlock()
	if removed > 0 {
		if s.metrics != nil {
			s.metrics.DuplicatesRemovedTotal.Add(float64(removed))
		}
		s.logger.Info("duplicates removed", "count", removed)
	}
	return removed
}

// DocumentCount returns the number of live documents.
func (s *Service) DocumentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.server.DocumentCount()
}

// NormalizeQuery returns the canonical form of a query for cache keys.
func (s *Service) NormalizeQuery(query string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.server.NormalizeQuery(query)
}

func (s *Service) observeQuery(result []engine.Document, err error, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	switch {
	case err != nil:
		s.metrics.SearchQueriesTotal.WithLabelValues("error").Inc()
	case len(result) == 0:
		s.metrics.SearchQueriesTotal.WithLabelValues("zero_result").Inc()
	default:
		s.metrics.SearchQueriesTotal.WithLabelValues("hit").Inc()
	}
	if err == nil {
		s.metrics.SearchResultsCount.Observe(float64(len(result)))
	}
	s.metrics.SearchLatency.WithLabelValues("none").Observe(elapsed.Seconds())
}
