package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/searchcore/searchcore/internal/engine"
	"github.com/searchcore/searchcore/internal/search"
	"github.com/searchcore/searchcore/pkg/apperr"
)

// LoadCorpus bulk-loads the documents table into the service and returns
// the number of documents indexed. Rows the engine rejects are logged and
// skipped; the load keeps going.
func LoadCorpus(ctx context.Context, db *sql.DB, svc *search.Service) (int, error) {
	logger := slog.Default().With("component", "corpus-loader")

	rows, err := db.QueryContext(ctx,
		`SELECT id, body, status, ratings FROM documents ORDER BY id`)
	if err != nil {
		return 0, fmt.Errorf("querying documents: %w", apperr.New(apperr.ErrCorpusUnavailable, err.Error()))
	}
	defer rows.Close()

	loaded := 0
	for rows.Next() {
		var (
			id         int
			body       string
			statusName string
			ratings    pq.Int64Array
		)
		if err := rows.Scan(&id, &body, &statusName, &ratings); err != nil {
			return loaded, fmt.Errorf("scanning document row: %w", err)
		}

		status, err := engine.ParseDocumentStatus(statusName)
		if err != nil {
			logger.Warn("skipping row with unknown status", "doc_id", id, "status", statusName)
			continue
		}

		ints := make([]int, len(ratings))
		for i, r := range ratings {
			ints[i] = int(r)
		}

		if err := svc.AddDocument(id, body, status, ints); err != nil {
			logger.Warn("skipping rejected document", "doc_id", id, "error", err)
			continue
		}
		loaded++
	}
	if err := rows.Err(); err != nil {
		return loaded, fmt.Errorf("iterating document rows: %w", err)
	}

	logger.Info("corpus loaded", "documents", loaded)
	return loaded, nil
}
