// Package engine implements an embedded, in-memory inverted-index search
// engine with TF-IDF ranking, minus-word exclusion, stop-word filtering and
// parallel execution policies for its hot paths.
//
// The engine takes no locks around its primary data structures: read-only
// operations may run concurrently from multiple goroutines as long as no
// AddDocument or RemoveDocument call is in flight. Callers that mix readers
// and writers enforce that discipline themselves.
package engine

import (
	"fmt"
	"strconv"
)

// DocumentStatus classifies a document for filtering at query time.
type DocumentStatus int

const (
	StatusActual DocumentStatus = iota
	StatusIrrelevant
	StatusBanned
	StatusRemoved
)

// String returns the status name in wire form.
func (s DocumentStatus) String() string {
	switch s {
	case StatusActual:
		return "ACTUAL"
	case StatusIrrelevant:
		return "IRRELEVANT"
	case StatusBanned:
		return "BANNED"
	case StatusRemoved:
		return "REMOVED"
	default:
		return "UNKNOWN"
	}
}

// ParseDocumentStatus converts a wire-form status name back into a
// DocumentStatus.
func ParseDocumentStatus(s string) (DocumentStatus, error) {
	switch s {
	case "ACTUAL":
		return StatusActual, nil
	case "IRRELEVANT":
		return StatusIrrelevant, nil
	case "BANNED":
		return StatusBanned, nil
	case "REMOVED":
		return StatusRemoved, nil
	default:
		return 0, fmt.Errorf("unknown document status %q", s)
	}
}

// Document is a single ranked search result.
type Document struct {
	ID        int     `json:"document_id"`
	Relevance float64 `json:"relevance"`
	Rating    int     `json:"rating"`
}

// String formats the document in the engine's canonical result form.
func (d Document) String() string {
	return fmt.Sprintf("{ document_id = %d, relevance = %s, rating = %d }",
		d.ID, strconv.FormatFloat(d.Relevance, 'g', 6, 64), d.Rating)
}

// DocumentPredicate decides whether a document participates in ranking.
// Predicates passed to parallel search paths must be safe for concurrent
// calls.
type DocumentPredicate func(id int, status DocumentStatus, rating int) bool

// StatusFilter returns a predicate matching documents with the given
// status.
func StatusFilter(status DocumentStatus) DocumentPredicate {
	return func(id int, docStatus DocumentStatus, rating int) bool {
		return docStatus == status
	}
}

// Policy selects the execution strategy for search, match and remove
// operations.
type Policy int

const (
	// Sequential runs the operation on the calling goroutine.
	Sequential Policy = iota
	// Parallel fans the operation out across worker goroutines.
	Parallel
)
