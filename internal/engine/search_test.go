package engine

import (
	"math"
	"reflect"
	"testing"

	"github.com/searchcore/searchcore/pkg/apperr"
)

func TestStopWordsExcludedFromSearch(t *testing.T) {
	const (
		docID   = 42
		content = "cat in the city"
	)
	ratings := []int{1, 2, 3}

	s := mustServer(t, "")
	mustAdd(t, s, docID, content, StatusActual, ratings)
	found, err := s.FindTopDocuments("in")
	if err != nil {
		t.Fatalf("FindTopDocuments: %v", err)
	}
	if len(found) != 1 || found[0].ID != docID {
		t.Errorf("without stop words: got %v, want doc %d", found, docID)
	}

	s = mustServer(t, "in the")
	mustAdd(t, s, docID, content, StatusActual, ratings)
	found, err = s.FindTopDocuments("in")
	if err != nil {
		t.Fatalf("FindTopDocuments: %v", err)
	}
	if len(found) != 0 {
		t.Errorf("with stop words: got %v, want empty", found)
	}
}

func TestMinusWordsExcludeDocuments(t *testing.T) {
	s := mustServer(t, "")
	mustAdd(t, s, 1, "cat in the city", StatusActual, []int{1, 2, 3})
	mustAdd(t, s, 2, "dog in the city", StatusActual, []int{1, 2, 3})

	found, err := s.FindTopDocuments("cat -in")
	if err != nil {
		t.Fatalf("FindTopDocuments: %v", err)
	}
	if len(found) != 0 {
		t.Errorf("cat -in: got %v, want empty", found)
	}

	found, err = s.FindTopDocuments("cat -dog")
	if err != nil {
		t.Fatalf("FindTopDocuments: %v", err)
	}
	if len(found) != 1 || found[0].ID != 1 {
		t.Errorf("cat -dog: got %v, want doc 1", found)
	}
}

func TestRatingIsTruncatedMean(t *testing.T) {
	s := mustServer(t, "")
	mustAdd(t, s, 1, "cat in the city", StatusActual, []int{1, 2, 3, 8, 13})

	found, err := s.FindTopDocuments("cat")
	if err != nil {
		t.Fatalf("FindTopDocuments: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("got %d docs, want 1", len(found))
	}
	if found[0].Rating != 5 {
		t.Errorf("rating = %d, want 5", found[0].Rating)
	}
}

func addRelevanceFixture(t *testing.T, s *SearchServer, statuses [3]DocumentStatus) {
	t.Helper()
	mustAdd(t, s, 1, "cat in the city", statuses[0], []int{1, 2, 3})
	mustAdd(t, s, 2, "walrus in the zoo", statuses[1], []int{1, 2, 3})
	mustAdd(t, s, 3, "walrus with a ball", statuses[2], []int{1, 2, 3})
}

func TestRelevanceRanking(t *testing.T) {
	s := mustServer(t, "")
	addRelevanceFixture(t, s, [3]DocumentStatus{StatusActual, StatusActual, StatusActual})

	found, err := s.FindTopDocuments("walrus in the")
	if err != nil {
		t.Fatalf("FindTopDocuments: %v", err)
	}
	if len(found) != 3 {
		t.Fatalf("got %d docs, want 3", len(found))
	}

	wantIDs := []int{2, 1, 3}
	wantRelevance := []float64{0.304099, 0.202733, 0.101366}
	for i, doc := range found {
		if doc.ID != wantIDs[i] {
			t.Errorf("position %d: id = %d, want %d", i, doc.ID, wantIDs[i])
		}
		if math.Abs(doc.Relevance-wantRelevance[i]) > 1e-6 {
			t.Errorf("position %d: relevance = %v, want %v", i, doc.Relevance, wantRelevance[i])
		}
		if i > 0 && found[i-1].Relevance < doc.Relevance {
			t.Errorf("relevance not descending at %d", i)
		}
	}
}

func TestPredicateFilter(t *testing.T) {
	s := mustServer(t, "")
	addRelevanceFixture(t, s, [3]DocumentStatus{StatusActual, StatusIrrelevant, StatusBanned})

	found, err := s.FindTopDocumentsFunc("walrus in the",
		func(id int, status DocumentStatus, rating int) bool {
			return status == StatusActual || status == StatusBanned
		})
	if err != nil {
		t.Fatalf("FindTopDocumentsFunc: %v", err)
	}
	gotIDs := make([]int, len(found))
	for i, doc := range found {
		gotIDs[i] = doc.ID
	}
	if want := []int{1, 3}; !reflect.DeepEqual(gotIDs, want) {
		t.Errorf("ids = %v, want %v", gotIDs, want)
	}
}

func TestStatusFilterDefaultsToActual(t *testing.T) {
	s := mustServer(t, "")
	addRelevanceFixture(t, s, [3]DocumentStatus{StatusBanned, StatusActual, StatusIrrelevant})

	found, err := s.FindTopDocuments("walrus in the")
	if err != nil {
		t.Fatalf("FindTopDocuments: %v", err)
	}
	if len(found) != 1 || found[0].ID != 2 {
		t.Errorf("default status: got %v, want doc 2", found)
	}

	found, err = s.FindTopDocumentsByStatus("walrus in the", StatusBanned)
	if err != nil {
		t.Fatalf("FindTopDocumentsByStatus: %v", err)
	}
	if len(found) != 1 || found[0].ID != 1 {
		t.Errorf("banned status: got %v, want doc 1", found)
	}
}

func TestTopFiveTruncation(t *testing.T) {
	s := mustServer(t, "")
	for id := 0; id < 9; id++ {
		mustAdd(t, s, id, "cat", StatusActual, []int{id})
	}
	found, err := s.FindTopDocuments("cat")
	if err != nil {
		t.Fatalf("FindTopDocuments: %v", err)
	}
	if len(found) != 5 {
		t.Fatalf("got %d docs, want 5", len(found))
	}
	// Equal relevance everywhere, so the tie rule orders by rating.
	for i, doc := range found {
		if want := 8 - i; doc.Rating != want {
			t.Errorf("position %d: rating = %d, want %d", i, doc.Rating, want)
		}
	}
}

func TestRelevanceTieBrokenByRating(t *testing.T) {
	s := mustServer(t, "")
	mustAdd(t, s, 1, "cat dog", StatusActual, []int{2})
	mustAdd(t, s, 2, "cat fox", StatusActual, []int{9})

	found, err := s.FindTopDocuments("cat")
	if err != nil {
		t.Fatalf("FindTopDocuments: %v", err)
	}
	gotIDs := make([]int, len(found))
	for i, doc := range found {
		gotIDs[i] = doc.ID
	}
	if want := []int{2, 1}; !reflect.DeepEqual(gotIDs, want) {
		t.Errorf("ids = %v, want %v", gotIDs, want)
	}
}

func TestFindTopDocumentsRejectsInvalidQueries(t *testing.T) {
	s := mustServer(t, "")
	mustAdd(t, s, 1, "cat", StatusActual, nil)
	for _, query := range []string{"cat -", "--cat", "ca\x01t"} {
		if _, err := s.FindTopDocuments(query); !apperr.IsInvalidArgument(err) {
			t.Errorf("FindTopDocuments(%q): got %v, want invalid argument", query, err)
		}
	}
	// Query failures leave the index untouched.
	if got := s.DocumentCount(); got != 1 {
		t.Errorf("DocumentCount = %d, want 1", got)
	}
}

func TestParallelMatchesSequentialRanking(t *testing.T) {
	s := mustServer(t, "and with")
	texts := []string{
		"white cat and fashionable collar",
		"fluffy cat fluffy tail",
		"groomed dog expressive eyes",
		"groomed starling eugene",
		"walrus in the zoo",
		"walrus with a ball",
		"cat in the city",
	}
	for i, text := range texts {
		mustAdd(t, s, i, text, DocumentStatus(i%3), []int{i, i * 2, 3})
	}

	queries := []string{
		"fluffy groomed cat",
		"walrus -zoo",
		"cat dog -collar",
		"starling",
		"nothing matches this",
	}
	for _, query := range queries {
		for _, pred := range []DocumentPredicate{
			nil,
			func(id int, status DocumentStatus, rating int) bool { return id%2 == 0 },
		} {
			seq, err := s.FindTopDocumentsWith(Sequential, query, pred)
			if err != nil {
				t.Fatalf("sequential %q: %v", query, err)
			}
			par, err := s.FindTopDocumentsWith(Parallel, query, pred)
			if err != nil {
				t.Fatalf("parallel %q: %v", query, err)
			}
			if len(seq) != len(par) {
				t.Fatalf("query %q: %d sequential vs %d parallel results", query, len(seq), len(par))
			}
			for i := range seq {
				if seq[i].ID != par[i].ID || seq[i].Rating != par[i].Rating {
					t.Errorf("query %q position %d: %v vs %v", query, i, seq[i], par[i])
				}
				if math.Abs(seq[i].Relevance-par[i].Relevance) > 1e-6 {
					t.Errorf("query %q position %d: relevance %v vs %v",
						query, i, seq[i].Relevance, par[i].Relevance)
				}
			}
		}
	}
}

func TestMatchDocument(t *testing.T) {
	s := mustServer(t, "")
	mustAdd(t, s, 1, "cat in the city", StatusActual, []int{1, 2, 3})
	mustAdd(t, s, 2, "dog in the city", StatusActual, []int{1, 2, 3})

	words, status, err := s.MatchDocument("in cat dog", 1)
	if err != nil {
		t.Fatalf("MatchDocument: %v", err)
	}
	if want := []string{"cat", "in"}; !reflect.DeepEqual(words, want) {
		t.Errorf("words = %v, want %v", words, want)
	}
	if status != StatusActual {
		t.Errorf("status = %v, want ACTUAL", status)
	}

	words, _, err = s.MatchDocument("cat", 2)
	if err != nil {
		t.Fatalf("MatchDocument: %v", err)
	}
	if len(words) != 0 {
		t.Errorf("words = %v, want empty", words)
	}

	words, status, err = s.MatchDocument("-the cat", 1)
	if err != nil {
		t.Fatalf("MatchDocument: %v", err)
	}
	if len(words) != 0 {
		t.Errorf("minus word hit: words = %v, want empty", words)
	}
	if status != StatusActual {
		t.Errorf("status = %v, want ACTUAL", status)
	}
}

func TestMatchDocumentUnknownID(t *testing.T) {
	s := mustServer(t, "")
	mustAdd(t, s, 1, "cat", StatusActual, nil)
	for _, policy := range []Policy{Sequential, Parallel} {
		if _, _, err := s.MatchDocumentWith(policy, "cat", 7); !apperr.IsOutOfRange(err) {
			t.Errorf("policy %v: got %v, want out of range", policy, err)
		}
	}
}

func TestMatchDocumentParallel(t *testing.T) {
	s := mustServer(t, "")
	mustAdd(t, s, 1, "cat in the city", StatusIrrelevant, []int{1})

	words, status, err := s.MatchDocumentWith(Parallel, "city cat city in dog", 1)
	if err != nil {
		t.Fatalf("MatchDocumentWith: %v", err)
	}
	if want := []string{"cat", "city", "in"}; !reflect.DeepEqual(words, want) {
		t.Errorf("words = %v, want %v", words, want)
	}
	if status != StatusIrrelevant {
		t.Errorf("status = %v, want IRRELEVANT", status)
	}

	words, _, err = s.MatchDocumentWith(Parallel, "cat -city", 1)
	if err != nil {
		t.Fatalf("MatchDocumentWith: %v", err)
	}
	if len(words) != 0 {
		t.Errorf("minus word hit: words = %v, want empty", words)
	}
}
