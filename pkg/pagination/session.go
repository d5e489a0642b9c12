package pagination

import "fmt"

// PageError reports a page that could not be fetched or decoded.
type PageError struct {
	Request PageRequest
	Err     error
}

// Error implements the error interface.
func (e *PageError) Error() string {
	return fmt.Sprintf("page %d (offset %d) of %s: %v",
		e.Request.Index(), e.Request.Offset, e.Request.Endpoint, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *PageError) Unwrap() error {
	return e.Err
}

// Session accumulates the outcome of one paginated fetch.
// It is owned by the goroutine running the fetch and is only
// handed to the caller once all pages have been joined.
type Session struct {
	Endpoint string
	PageSize int

	// PagesAttempted counts every page request that was issued, page 0 included.
	PagesAttempted int

	// EarlyStop is set when a page shorter than PageSize ended the fetch.
	EarlyStop bool

	// StopOffset is the offset of the page that ended the fetch (valid if EarlyStop).
	StopOffset int

	// Discarded counts pages that were fetched past the end-of-data signal.
	Discarded int

	// Failures lists the pages that were skipped because of an error.
	Failures []*PageError

	records []Record
}

func newSession(endpoint string, pageSize int) *Session {
	return &Session{
		Endpoint: endpoint,
		PageSize: pageSize,
		records:  []Record{},
	}
}

// Records returns the accumulated records in page-offset order.
func (s *Session) Records() []Record {
	return s.records
}

// Len returns the number of accumulated records.
func (s *Session) Len() int {
	return len(s.records)
}

// append adds a page and reports whether it signals end-of-data.
func (s *Session) append(req PageRequest, records []Record) bool {
	s.records = append(s.records, records...)
	if len(records) < s.PageSize {
		s.EarlyStop = true
		s.StopOffset = req.Offset
		return true
	}
	return false
}

func (s *Session) fail(req PageRequest, err error) *PageError {
	pageErr := &PageError{Request: req, Err: err}
	s.Failures = append(s.Failures, pageErr)
	return pageErr
}
