package search

import (
	"strings"
	"sync"
	"testing"

	"github.com/searchcore/searchcore/internal/engine"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	server, err := engine.NewSearchServerFromText("and with")
	if err != nil {
		t.Fatalf("NewSearchServerFromText: %v", err)
	}
	return NewService(server, nil)
}

func TestServiceAddFindRemove(t *testing.T) {
	svc := newTestService(t)

	if err := svc.AddDocument(1, "funny pet and nasty rat", engine.StatusActual, []int{7, 2, 7}); err != nil {
		t.Fatalf("AddDocument: %v", err)
	}
	if err := svc.AddDocument(2, "funny pet with curly hair", engine.StatusActual, []int{1, 2}); err != nil {
		t.Fatalf("AddDocument: %v", err)
	}

	found, err := svc.FindTopDocuments("curly pet")
	if err != nil {
		t.Fatalf("FindTopDocuments: %v", err)
	}
	if len(found) != 2 || found[0].ID != 2 {
		t.Errorf("got %v, want doc 2 first", found)
	}

	words, status, err := svc.MatchDocument("nasty rat", 1)
	if err != nil {
		t.Fatalf("MatchDocument: %v", err)
	}
	if len(words) != 2 || status != engine.StatusActual {
		t.Errorf("got words=%v status=%v", words, status)
	}

	svc.RemoveDocument(1)
	if got := svc.DocumentCount(); got != 1 {
		t.Errorf("DocumentCount = %d, want 1", got)
	}
}

func TestServiceRemoveDuplicates(t *testing.T) {
	svc := newTestService(t)
	for i, text := range []string{"cat city", "city cat", "cat city cat"} {
		if err := svc.AddDocument(i+1, text, engine.StatusActual, nil); err != nil {
			t.Fatalf("AddDocument: %v", err)
		}
	}

	var out strings.Builder
	removed := svc.RemoveDuplicates(&out)
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if got := svc.DocumentCount(); got != 1 {
		t.Errorf("DocumentCount = %d, want 1", got)
	}
	if !strings.Contains(out.String(), "Found duplicate document id 2") {
		t.Errorf("output = %q", out.String())
	}
}

func TestServiceConcurrentReadersAndWriter(t *testing.T) {
	svc := newTestService(t)
	if err := svc.AddDocument(0, "seed doc for queries", engine.StatusActual, []int{1}); err != nil {
		t.Fatalf("AddDocument: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 1; i <= 200; i++ {
			_ = svc.AddDocument(i, "seed doc for queries", engine.StatusActual, []int{i})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if _, err := svc.FindTopDocuments("doc queries"); err != nil {
				t.Errorf("FindTopDocuments: %v", err)
				return
			}
		}
	}()
	wg.Wait()

	if got := svc.DocumentCount(); got != 201 {
		t.Errorf("DocumentCount = %d, want 201", got)
	}
}
