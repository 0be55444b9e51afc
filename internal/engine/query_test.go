package engine

import (
	"reflect"
	"testing"

	"github.com/searchcore/searchcore/pkg/apperr"
)

func TestParseQueryNormalized(t *testing.T) {
	s := mustServer(t, "the")

	q, err := s.parseQuery("dog cat -walrus cat -zoo dog the", true)
	if err != nil {
		t.Fatalf("parseQuery: %v", err)
	}
	if want := []string{"cat", "dog"}; !reflect.DeepEqual(q.plusWords, want) {
		t.Errorf("plusWords = %v, want %v", q.plusWords, want)
	}
	if want := []string{"walrus", "zoo"}; !reflect.DeepEqual(q.minusWords, want) {
		t.Errorf("minusWords = %v, want %v", q.minusWords, want)
	}
}

func TestParseQueryRawKeepsOrderAndDuplicates(t *testing.T) {
	s := mustServer(t, "")

	q, err := s.parseQuery("dog cat dog -zoo -zoo", false)
	if err != nil {
		t.Fatalf("parseQuery: %v", err)
	}
	if want := []string{"dog", "cat", "dog"}; !reflect.DeepEqual(q.plusWords, want) {
		t.Errorf("plusWords = %v, want %v", q.plusWords, want)
	}
	if want := []string{"zoo", "zoo"}; !reflect.DeepEqual(q.minusWords, want) {
		t.Errorf("minusWords = %v, want %v", q.minusWords, want)
	}
}

func TestParseQueryDropsStopWordsFromBothLists(t *testing.T) {
	s := mustServer(t, "in the")

	q, err := s.parseQuery("cat -in the -city", true)
	if err != nil {
		t.Fatalf("parseQuery: %v", err)
	}
	if want := []string{"cat"}; !reflect.DeepEqual(q.plusWords, want) {
		t.Errorf("plusWords = %v, want %v", q.plusWords, want)
	}
	if want := []string{"city"}; !reflect.DeepEqual(q.minusWords, want) {
		t.Errorf("minusWords = %v, want %v", q.minusWords, want)
	}
}

func TestParseQueryRejectsMalformedWords(t *testing.T) {
	s := mustServer(t, "")
	for _, query := range []string{
		"cat -",
		"cat --dog",
		"cat -dog- --",
		"ca\x1ft",
		"cat -d\x05og",
	} {
		if _, err := s.parseQuery(query, true); !apperr.IsInvalidArgument(err) {
			t.Errorf("parseQuery(%q): got %v, want invalid argument", query, err)
		}
	}
}

func TestNormalizeQuery(t *testing.T) {
	s := mustServer(t, "the")
	tests := []struct {
		query string
		want  string
	}{
		{"dog cat dog", "cat dog"},
		{"cat -zoo -walrus", "cat | -walrus -zoo"},
		{"the", ""},
		{"  cat  ", "cat"},
	}
	for _, tt := range tests {
		if got := s.NormalizeQuery(tt.query); got != tt.want {
			t.Errorf("NormalizeQuery(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}

	// Equivalent queries share a normal form.
	if s.NormalizeQuery("cat dog -zoo") != s.NormalizeQuery("dog -zoo cat dog") {
		t.Error("equivalent queries normalize differently")
	}
}
