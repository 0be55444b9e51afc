package engine

// requestWindow is the number of recent requests the queue remembers,
// one per minute of a day.
const requestWindow = 1440

// RequestQueue wraps a SearchServer and tracks how many of the most recent
// requests came back empty. It is owned by a single goroutine.
type RequestQueue struct {
	server        *SearchServer
	emptyFlags    []bool
	head          int
	size          int
	noResultCount int
}

// NewRequestQueue creates a tracker over the given server.
func NewRequestQueue(s *SearchServer) *RequestQueue {
	return &RequestQueue{
		server:     s,
		emptyFlags: make([]bool, requestWindow),
	}
}

// AddFindRequest runs FindTopDocuments and records whether the result was
// empty. Query errors propagate without being recorded.
func (q *RequestQueue) AddFindRequest(query string) ([]Document, error) {
	result, err := q.server.FindTopDocuments(query)
	if err != nil {
		return nil, err
	}
	q.record(len(result) == 0)
	return result, nil
}

// AddFindRequestByStatus is AddFindRequest with a status filter.
func (q *RequestQueue) AddFindRequestByStatus(query string, status DocumentStatus) ([]Document, error) {
	return q.AddFindRequestFunc(query, StatusFilter(status))
}

// AddFindRequestFunc is AddFindRequest with an arbitrary predicate.
func (q *RequestQueue) AddFindRequestFunc(query string, predicate DocumentPredicate) ([]Document, error) {
	result, err := q.server.FindTopDocumentsFunc(query, predicate)
	if err != nil {
		return nil, err
	}
	q.record(len(result) == 0)
	return result, nil
}

// NoResultRequests returns the number of empty results currently in the
// window.
func (q *RequestQueue) NoResultRequests() int {
	return q.noResultCount
}

// record enqueues an emptiness flag, evicting the oldest entry once the
// window is full.
func (q *RequestQueue) record(empty bool) {
	if q.size == requestWindow {
		if q.emptyFlags[q.head] {
			q.noResultCount--
		}
		q.head = (q.head + 1) % requestWindow
		q.size--
	}
	tail := (q.head + q.size) % requestWindow
	q.emptyFlags[tail] = empty
	q.size++
	if empty {
		q.noResultCount++
	}
}
