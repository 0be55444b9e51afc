package engine

import (
	"log/slog"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/searchcore/searchcore/pkg/apperr"
)

type documentData struct {
	rating int
	status DocumentStatus
}

// SearchServer is the inverted-index store. It maintains two mirrored maps,
// term -> (doc -> frequency) and doc -> (term -> frequency), which stay
// consistent across AddDocument and RemoveDocument.
type SearchServer struct {
	stopWords    stopWordSet
	wordDocFreqs map[string]map[int]float64
	docWordFreqs map[int]map[string]float64
	documents    map[int]documentData
	docIDs       []int // ascending
	logger       *slog.Logger
}

// NewSearchServer creates a server with the given stop words. Empty strings
// are discarded; a stop word containing a control character is rejected.
func NewSearchServer(stopWords []string) (*SearchServer, error) {
	set, err := newStopWordSet(stopWords)
	if err != nil {
		return nil, err
	}
	return &SearchServer{
		stopWords:    set,
		wordDocFreqs: make(map[string]map[int]float64),
		docWordFreqs: make(map[int]map[string]float64),
		documents:    make(map[int]documentData),
		logger:       slog.Default().With("component", "search-server"),
	}, nil
}

// NewSearchServerFromText creates a server from a whitespace-delimited stop
// word string.
func NewSearchServerFromText(stopWordsText string) (*SearchServer, error) {
	return NewSearchServer(SplitIntoWords(stopWordsText))
}

// AddDocument indexes text under the given id. The id must be non-negative
// and unused, and every word of the text must be free of control
// characters; violations leave the server untouched.
func (s *SearchServer) AddDocument(id int, text string, status DocumentStatus, ratings []int) error {
	if id < 0 {
		return apperr.Newf(apperr.ErrInvalidArgument, "document id %d is negative", id)
	}
	if _, exists := s.documents[id]; exists {
		return apperr.Newf(apperr.ErrInvalidArgument, "document id %d is already in use", id)
	}
	words, err := s.splitIntoWordsNoStop(text)
	if err != nil {
		return err
	}

	if len(words) > 0 {
		invWordCount := 1.0 / float64(len(words))
		docFreqs := make(map[string]float64, len(words))
		for _, word := range words {
			docFreqs[word] += invWordCount
			postings := s.wordDocFreqs[word]
			if postings == nil {
				postings = make(map[int]float64)
				s.wordDocFreqs[word] = postings
			}
			postings[id] += invWordCount
		}
		s.docWordFreqs[id] = docFreqs
	} else {
		s.docWordFreqs[id] = make(map[string]float64)
	}

	s.documents[id] = documentData{rating: averageRating(ratings), status: status}
	s.insertDocID(id)
	s.logger.Debug("document added", "doc_id", id, "words", len(words), "status", status.String())
	return nil
}

// RemoveDocument removes the document with the given id. Removing an
// unknown id is a no-op. Posting lists that become empty are dropped.
func (s *SearchServer) RemoveDocument(id int) {
	s.RemoveDocumentWith(Sequential, id)
}

// RemoveDocumentWith removes a document under the given execution policy.
// The parallel policy erases the document from its terms' posting lists
// concurrently.
func (s *SearchServer) RemoveDocumentWith(policy Policy, id int) {
	wordFreqs, exists := s.docWordFreqs[id]
	if !exists {
		return
	}

	switch policy {
	case Parallel:
		var g errgroup.Group
		g.SetLimit(runtime.GOMAXPROCS(0))
		for word := range wordFreqs {
			// Each word owns a distinct posting map, so the
			// deletions never touch the same map concurrently.
			postings := s.wordDocFreqs[word]
			g.Go(func() error {
				delete(postings, id)
				return nil
			})
		}
		_ = g.Wait()
		for word := range wordFreqs {
			if len(s.wordDocFreqs[word]) == 0 {
				delete(s.wordDocFreqs, word)
			}
		}
	default:
		for word := range wordFreqs {
			postings := s.wordDocFreqs[word]
			delete(postings, id)
			if len(postings) == 0 {
				delete(s.wordDocFreqs, word)
			}
		}
	}

	delete(s.docWordFreqs, id)
	delete(s.documents, id)
	s.removeDocID(id)
	s.logger.Debug("document removed", "doc_id", id, "policy", policy)
}

// emptyWordFreqs is the stable result returned for unknown document ids.
var emptyWordFreqs = map[string]float64{}

// WordFrequencies returns the term-frequency map of the given document, or
// a shared empty map when the id is unknown. The returned map is the
// engine's own storage and must not be modified.
func (s *SearchServer) WordFrequencies(id int) map[string]float64 {
	if freqs, ok := s.docWordFreqs[id]; ok {
		return freqs
	}
	return emptyWordFreqs
}

// DocumentCount returns the number of live documents.
func (s *SearchServer) DocumentCount() int {
	return len(s.documents)
}

// DocumentIDs returns the live document ids in ascending order. The
// returned slice is a copy.
func (s *SearchServer) DocumentIDs() []int {
	ids := make([]int, len(s.docIDs))
	copy(ids, s.docIDs)
	return ids
}

// splitIntoWordsNoStop tokenizes text, validates every word and drops stop
// words.
func (s *SearchServer) splitIntoWordsNoStop(text string) ([]string, error) {
	var words []string
	for _, word := range SplitIntoWords(text) {
		if !isValidWord(word) {
			return nil, apperr.Newf(apperr.ErrInvalidArgument, "word %q contains a control character", word)
		}
		if !s.stopWords.contains(word) {
			words = append(words, word)
		}
	}
	return words, nil
}

// averageRating is the integer mean truncated toward zero, 0 for an empty
// list.
func averageRating(ratings []int) int {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return sum / len(ratings)
}

func (s *SearchServer) insertDocID(id int) {
	i := sort.SearchInts(s.docIDs, id)
	s.docIDs = append(s.docIDs, 0)
	copy(s.docIDs[i+1:], s.docIDs[i:])
	s.docIDs[i] = id
}

func (s *SearchServer) removeDocID(id int) {
	i := sort.SearchInts(s.docIDs, id)
	if i < len(s.docIDs) && s.docIDs[i] == id {
		s.docIDs = append(s.docIDs[:i], s.docIDs[i+1:]...)
	}
}
