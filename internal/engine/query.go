package engine

import (
	"slices"
	"strings"

	"github.com/searchcore/searchcore/pkg/apperr"
)

type queryWord struct {
	word    string
	isMinus bool
	isStop  bool
}

type parsedQuery struct {
	plusWords  []string
	minusWords []string
}

// parseQueryWord classifies a single query token. A leading '-' marks a
// minus word. An empty token, a token that is bare or doubled '-', or a
// token with control characters is rejected.
func (s *SearchServer) parseQueryWord(text string) (queryWord, error) {
	if text == "" {
		return queryWord{}, apperr.New(apperr.ErrInvalidArgument, "query word is empty")
	}
	isMinus := false
	if text[0] == '-' {
		isMinus = true
		text = text[1:]
	}
	if text == "" || text[0] == '-' || !isValidWord(text) {
		return queryWord{}, apperr.Newf(apperr.ErrInvalidArgument, "query word %q is invalid", text)
	}
	return queryWord{word: text, isMinus: isMinus, isStop: s.stopWords.contains(text)}, nil
}

// parseQuery splits a raw query into plus and minus words, dropping stop
// words. With sortAndDedupe both lists come back sorted with duplicates
// removed; the raw form keeps insertion order and repeats for callers that
// tolerate them.
func (s *SearchServer) parseQuery(text string, sortAndDedupe bool) (parsedQuery, error) {
	var result parsedQuery
	for _, word := range SplitIntoWords(text) {
		qw, err := s.parseQueryWord(word)
		if err != nil {
			return parsedQuery{}, err
		}
		if qw.isStop {
			continue
		}
		if qw.isMinus {
			result.minusWords = append(result.minusWords, qw.word)
		} else {
			result.plusWords = append(result.plusWords, qw.word)
		}
	}
	if sortAndDedupe {
		result.plusWords = sortUnique(result.plusWords)
		result.minusWords = sortUnique(result.minusWords)
	}
	return result, nil
}

func sortUnique(words []string) []string {
	if len(words) < 2 {
		return words
	}
	slices.Sort(words)
	return slices.Compact(words)
}

// normalizeQuery returns a canonical form of a query for cache keying:
// sorted plus words, then sorted minus words. Invalid queries normalize to
// their trimmed raw text.
func (s *SearchServer) normalizeQuery(text string) string {
	q, err := s.parseQuery(text, true)
	if err != nil {
		return strings.TrimSpace(text)
	}
	var b strings.Builder
	for i, w := range q.plusWords {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(w)
	}
	if len(q.minusWords) > 0 {
		b.WriteString(" |")
		for _, w := range q.minusWords {
			b.WriteByte(' ')
			b.WriteByte('-')
			b.WriteString(w)
		}
	}
	return b.String()
}

// NormalizeQuery exposes the canonical query form used for cache keys.
func (s *SearchServer) NormalizeQuery(text string) string {
	return s.normalizeQuery(text)
}
