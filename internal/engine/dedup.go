package engine

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// RemoveDuplicates removes every document whose word set matches an
// earlier document's word set, keeping the smallest id among equivalents.
// A diagnostic line is written to w for each removed duplicate.
func RemoveDuplicates(s *SearchServer, w io.Writer) {
	seen := make(map[string]struct{})
	var duplicates []int

	for _, id := range s.DocumentIDs() {
		key := wordSetKey(s.WordFrequencies(id))
		if _, ok := seen[key]; ok {
			duplicates = append(duplicates, id)
		} else {
			seen[key] = struct{}{}
		}
	}

	for _, id := range duplicates {
		s.RemoveDocument(id)
		fmt.Fprintf(w, "Found duplicate document id %d\n", id)
	}
}

// wordSetKey canonicalizes a document's word set. Words never contain
// spaces, so a space-joined sorted list identifies the set.
func wordSetKey(freqs map[string]float64) string {
	words := make([]string, 0, len(freqs))
	for word := range freqs {
		words = append(words, word)
	}
	sort.Strings(words)
	return strings.Join(words, " ")
}
