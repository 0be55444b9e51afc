package search

import (
	"context"
	"log/slog"

	"github.com/searchcore/searchcore/internal/engine"
	"github.com/searchcore/searchcore/internal/search/cache"
	"github.com/searchcore/searchcore/pkg/kafka"
)

// QueryRequest is a search request consumed from the search-requests
// topic.
type QueryRequest struct {
	RequestID string `json:"request_id"`
	Query     string `json:"query"`
}

// QueryResponse is published to the search-results topic for every
// processed request.
type QueryResponse struct {
	RequestID string            `json:"request_id"`
	Query     string            `json:"query"`
	Documents []engine.Document `json:"documents"`
	Error     string            `json:"error,omitempty"`
}

// HandleQueryMessage returns a Kafka MessageHandler that answers search
// requests through the query cache and publishes results. The cache may be
// nil, in which case every request hits the engine.
func HandleQueryMessage(svc *Service, qc *cache.QueryCache, producer *kafka.Producer) kafka.MessageHandler {
	logger := slog.Default().With("component", "search-worker")
	return func(ctx context.Context, key []byte, value []byte) error {
		req, err := kafka.DecodeJSON[QueryRequest](value)
		if err != nil {
			logger.Error("failed to decode search request", "error", err, "key", string(key))
			return nil
		}

		var (
			docs   []engine.Document
			cached bool
		)
		if qc != nil {
			normalized := svc.NormalizeQuery(req.Query)
			docs, cached, err = qc.GetOrCompute(ctx, normalized, func() ([]engine.Document, error) {
				return svc.FindTopDocuments(req.Query)
			})
		} else {
			docs, err = svc.FindTopDocuments(req.Query)
		}

		resp := QueryResponse{
			RequestID: req.RequestID,
			Query:     req.Query,
			Documents: docs,
		}
		if err != nil {
			resp.Error = err.Error()
			logger.Warn("search request failed", "request_id", req.RequestID, "error", err)
		} else {
			logger.Debug("search request served",
				"request_id", req.RequestID,
				"results", len(docs),
				"cached", cached,
			)
		}
		return producer.Publish(ctx, kafka.Event{Key: req.RequestID, Value: resp})
	}
}
