package engine

import "testing"

func TestDocumentString(t *testing.T) {
	tests := []struct {
		doc  Document
		want string
	}{
		{Document{ID: 1, Relevance: 0.5, Rating: 4},
			"{ document_id = 1, relevance = 0.5, rating = 4 }"},
		{Document{ID: 2, Relevance: 0.30409883108296, Rating: 2},
			"{ document_id = 2, relevance = 0.304099, rating = 2 }"},
		{Document{ID: 0, Relevance: 0, Rating: -3},
			"{ document_id = 0, relevance = 0, rating = -3 }"},
	}
	for _, tt := range tests {
		if got := tt.doc.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestDocumentStatusRoundTrip(t *testing.T) {
	statuses := []DocumentStatus{StatusActual, StatusIrrelevant, StatusBanned, StatusRemoved}
	for _, status := range statuses {
		parsed, err := ParseDocumentStatus(status.String())
		if err != nil {
			t.Fatalf("ParseDocumentStatus(%q): %v", status.String(), err)
		}
		if parsed != status {
			t.Errorf("round trip %v -> %v", status, parsed)
		}
	}
	if _, err := ParseDocumentStatus("NOPE"); err == nil {
		t.Error("ParseDocumentStatus accepted an unknown status")
	}
}
