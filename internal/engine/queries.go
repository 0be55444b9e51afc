package engine

import (
	"golang.org/x/sync/errgroup"
)

// ProcessQueries runs every query against the server concurrently and
// returns the result lists in input order. The first query error observed
// is returned.
func ProcessQueries(s *SearchServer, queries []string) ([][]Document, error) {
	results := make([][]Document, len(queries))
	var g errgroup.Group
	for i, query := range queries {
		g.Go(func() error {
			found, err := s.FindTopDocuments(query)
			if err != nil {
				return err
			}
			results[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ProcessQueriesJoined flattens ProcessQueries output into a single list,
// preserving query order.
func ProcessQueriesJoined(s *SearchServer, queries []string) ([]Document, error) {
	results, err := ProcessQueries(s, queries)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, docs := range results {
		total += len(docs)
	}
	joined := make([]Document, 0, total)
	for _, docs := range results {
		joined = append(joined, docs...)
	}
	return joined, nil
}
