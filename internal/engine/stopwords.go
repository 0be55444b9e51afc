package engine

import (
	"github.com/searchcore/searchcore/pkg/apperr"
)

// stopWordSet holds the words excluded from indexing and querying.
type stopWordSet map[string]struct{}

// newStopWordSet builds a set from the given words. Empty strings are
// discarded; a word containing a control character fails construction.
func newStopWordSet(words []string) (stopWordSet, error) {
	set := make(stopWordSet, len(words))
	for _, word := range words {
		if word == "" {
			continue
		}
		if !isValidWord(word) {
			return nil, apperr.Newf(apperr.ErrInvalidArgument, "stop word %q contains a control character", word)
		}
		set[word] = struct{}{}
	}
	return set, nil
}

func (s stopWordSet) contains(word string) bool {
	_, ok := s[word]
	return ok
}
