package ingest

import (
	"context"
	"log/slog"

	"github.com/searchcore/searchcore/internal/engine"
	"github.com/searchcore/searchcore/internal/search"
	"github.com/searchcore/searchcore/pkg/apperr"
	"github.com/searchcore/searchcore/pkg/kafka"
	"github.com/searchcore/searchcore/pkg/metrics"
)

// HandleMessage returns a Kafka MessageHandler that applies document
// events to the service. Malformed and invalid events are counted and
// skipped so the consumer keeps draining the topic.
func HandleMessage(svc *search.Service, m *metrics.Metrics) kafka.MessageHandler {
	logger := slog.Default().With("component", "ingest-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[DocumentEvent](value)
		if err != nil {
			logger.Error("failed to decode document event", "error", err, "key", string(key))
			countIngestError(m, "decode")
			return nil
		}

		if event.Remove {
			svc.RemoveDocument(event.DocumentID)
			logger.Info("document removed", "doc_id", event.DocumentID)
			return nil
		}

		status := engine.StatusActual
		if event.Status != "" {
			status, err = engine.ParseDocumentStatus(event.Status)
			if err != nil {
				logger.Error("document event carries unknown status",
					"doc_id", event.DocumentID,
					"status", event.Status,
				)
				countIngestError(m, "invalid_argument")
				return nil
			}
		}

		if err := svc.AddDocument(event.DocumentID, event.Text, status, event.Ratings); err != nil {
			if apperr.IsInvalidArgument(err) {
				logger.Error("document event rejected", "doc_id", event.DocumentID, "error", err)
				countIngestError(m, "invalid_argument")
				return nil
			}
			countIngestError(m, "other")
			return err
		}

		logger.Info("document indexed", "doc_id", event.DocumentID)
		return nil
	}
}

func countIngestError(m *metrics.Metrics, reason string) {
	if m != nil {
		m.IngestErrorsTotal.WithLabelValues(reason).Inc()
	}
}
