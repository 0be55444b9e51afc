package engine

import "strings"

// SplitIntoWords splits text into words on runs of space characters. Only
// 0x20 separates words; tabs and newlines are treated as word bytes. The
// returned strings are substrings of the input.
func SplitIntoWords(text string) []string {
	var words []string
	for len(text) > 0 {
		start := 0
		for start < len(text) && text[start] == ' ' {
			start++
		}
		text = text[start:]
		if len(text) == 0 {
			break
		}
		end := strings.IndexByte(text, ' ')
		if end < 0 {
			words = append(words, text)
			break
		}
		words = append(words, text[:end])
		text = text[end:]
	}
	return words
}

// isValidWord reports whether word is free of control characters
// (bytes 0x00 through 0x1F).
func isValidWord(word string) bool {
	for i := 0; i < len(word); i++ {
		if word[i] < 0x20 {
			return false
		}
	}
	return true
}
