package engine

import (
	"math"
	"runtime"
	"slices"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/searchcore/searchcore/pkg/apperr"
)

const (
	// maxResultDocumentCount bounds every FindTopDocuments result.
	maxResultDocumentCount = 5
	// relevanceEpsilon is the tie threshold under which ranking falls
	// back to the rating.
	relevanceEpsilon = 1e-6
	// relevanceBucketCount stripes the parallel scoring map.
	relevanceBucketCount = 10
)

// FindTopDocuments returns up to 5 documents with status ACTUAL ranked by
// TF-IDF relevance, ties under 1e-6 broken by rating.
func (s *SearchServer) FindTopDocuments(query string) ([]Document, error) {
	return s.FindTopDocumentsWith(Sequential, query, nil)
}

// FindTopDocumentsByStatus ranks documents with the given status.
func (s *SearchServer) FindTopDocumentsByStatus(query string, status DocumentStatus) ([]Document, error) {
	return s.FindTopDocumentsWith(Sequential, query, StatusFilter(status))
}

// FindTopDocumentsFunc ranks documents accepted by the given predicate.
func (s *SearchServer) FindTopDocumentsFunc(query string, predicate DocumentPredicate) ([]Document, error) {
	return s.FindTopDocumentsWith(Sequential, query, predicate)
}

// FindTopDocumentsWith is the full form: an execution policy plus a
// predicate. A nil predicate filters for status ACTUAL. Under the Parallel
// policy the predicate must be safe for concurrent calls.
func (s *SearchServer) FindTopDocumentsWith(policy Policy, query string, predicate DocumentPredicate) ([]Document, error) {
	if predicate == nil {
		predicate = StatusFilter(StatusActual)
	}
	parsed, err := s.parseQuery(query, true)
	if err != nil {
		return nil, err
	}

	var matched []Document
	if policy == Parallel {
		matched = s.findAllDocumentsParallel(parsed, predicate)
	} else {
		matched = s.findAllDocuments(parsed, predicate)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if math.Abs(matched[i].Relevance-matched[j].Relevance) < relevanceEpsilon {
			return matched[i].Rating > matched[j].Rating
		}
		return matched[i].Relevance > matched[j].Relevance
	})
	if len(matched) > maxResultDocumentCount {
		matched = matched[:maxResultDocumentCount]
	}
	return matched, nil
}

// findAllDocuments accumulates relevance for every candidate document
// sequentially.
func (s *SearchServer) findAllDocuments(query parsedQuery, predicate DocumentPredicate) []Document {
	relevance := make(map[int]float64)
	for _, word := range query.plusWords {
		postings, ok := s.wordDocFreqs[word]
		if !ok {
			continue
		}
		idf := s.inverseDocumentFreq(word)
		for id, termFreq := range postings {
			data := s.documents[id]
			if predicate(id, data.status, data.rating) {
				relevance[id] += termFreq * idf
			}
		}
	}
	for _, word := range query.minusWords {
		for id := range s.wordDocFreqs[word] {
			delete(relevance, id)
		}
	}

	matched := make([]Document, 0, len(relevance))
	for id, rel := range relevance {
		matched = append(matched, Document{ID: id, Relevance: rel, Rating: s.documents[id].rating})
	}
	// Ascending id before the relevance sort keeps results deterministic
	// and identical to the parallel path's merged ordering.
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return matched
}

// findAllDocumentsParallel fans plus-word scoring and minus-word erasure
// out across worker goroutines, accumulating into a striped map.
func (s *SearchServer) findAllDocumentsParallel(query parsedQuery, predicate DocumentPredicate) []Document {
	relevance := NewConcurrentMap[float64](relevanceBucketCount)

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, word := range query.plusWords {
		g.Go(func() error {
			postings, ok := s.wordDocFreqs[word]
			if !ok {
				return nil
			}
			idf := s.inverseDocumentFreq(word)
			for id, termFreq := range postings {
				data := s.documents[id]
				if predicate(id, data.status, data.rating) {
					slot := relevance.Access(id)
					*slot.Value += termFreq * idf
					slot.Release()
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, word := range query.minusWords {
		g.Go(func() error {
			for id := range s.wordDocFreqs[word] {
				relevance.Erase(id)
			}
			return nil
		})
	}
	_ = g.Wait()

	entries := relevance.BuildOrdinaryMap()
	matched := make([]Document, 0, len(entries))
	for _, entry := range entries {
		matched = append(matched, Document{ID: entry.Key, Relevance: entry.Value, Rating: s.documents[entry.Key].rating})
	}
	return matched
}

// MatchDocument returns the query plus-words present in the document,
// sorted and deduplicated, together with the document's status. A document
// containing any minus-word matches nothing. An unknown id is out of
// range.
func (s *SearchServer) MatchDocument(query string, id int) ([]string, DocumentStatus, error) {
	return s.MatchDocumentWith(Sequential, query, id)
}

// MatchDocumentWith matches under the given execution policy. The parallel
// variant parses the query in raw form and scans plus and minus words
// concurrently.
func (s *SearchServer) MatchDocumentWith(policy Policy, query string, id int) ([]string, DocumentStatus, error) {
	data, exists := s.documents[id]
	if !exists {
		return nil, 0, apperr.Newf(apperr.ErrOutOfRange, "no document with id %d", id)
	}
	if policy == Parallel {
		return s.matchDocumentParallel(query, id, data.status)
	}

	parsed, err := s.parseQuery(query, true)
	if err != nil {
		return nil, 0, err
	}
	for _, word := range parsed.minusWords {
		if _, ok := s.wordDocFreqs[word][id]; ok {
			return []string{}, data.status, nil
		}
	}
	matched := make([]string, 0, len(parsed.plusWords))
	for _, word := range parsed.plusWords {
		if _, ok := s.wordDocFreqs[word][id]; ok {
			matched = append(matched, word)
		}
	}
	return matched, data.status, nil
}

func (s *SearchServer) matchDocumentParallel(query string, id int, status DocumentStatus) ([]string, DocumentStatus, error) {
	parsed, err := s.parseQuery(query, false)
	if err != nil {
		return nil, 0, err
	}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	var minusHit atomic.Bool
	for _, word := range parsed.minusWords {
		g.Go(func() error {
			if _, ok := s.wordDocFreqs[word][id]; ok {
				minusHit.Store(true)
			}
			return nil
		})
	}
	_ = g.Wait()
	if minusHit.Load() {
		return []string{}, status, nil
	}

	candidates := make([]string, len(parsed.plusWords))
	for i, word := range parsed.plusWords {
		g.Go(func() error {
			if _, ok := s.wordDocFreqs[word][id]; ok {
				candidates[i] = word
			}
			return nil
		})
	}
	_ = g.Wait()

	matched := candidates[:0]
	for _, word := range candidates {
		if word != "" {
			matched = append(matched, word)
		}
	}
	slices.Sort(matched)
	return slices.Compact(matched), status, nil
}

// inverseDocumentFreq is ln(total documents / documents containing word).
// The word must be present in the index.
func (s *SearchServer) inverseDocumentFreq(word string) float64 {
	return math.Log(float64(s.DocumentCount()) / float64(len(s.wordDocFreqs[word])))
}
