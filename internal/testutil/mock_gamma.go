// Package testutil provides testing utilities for the Gamma client.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// MockGammaResponse defines the behavior for a single mock response.
type MockGammaResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockGamma is a configurable mock Gamma server for testing.
//
// Collection paths registered with SetCollection serve limit/offset pages
// out of a fixed number of generated records. Individual offsets can be
// overridden with SetPageResponse to inject failures, malformed bodies or delays.
type MockGamma struct {
	server      *httptest.Server
	mu          sync.RWMutex
	handlers    map[string]func(w http.ResponseWriter, r *http.Request)
	collections map[string]int
	pages       map[string]map[int]MockGammaResponse

	// Tracking
	RequestCount   int
	OffsetRequests []int
	LastQuery      map[string]string
	LastUserAgent  string
}

// NewMockGamma creates a new mock Gamma server.
func NewMockGamma() *MockGamma {
	mock := &MockGamma{
		handlers:    make(map[string]func(w http.ResponseWriter, r *http.Request)),
		collections: make(map[string]int),
		pages:       make(map[string]map[int]MockGammaResponse),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := make(map[string]string)
		for key := range r.URL.Query() {
			query[key] = r.URL.Query().Get(key)
		}

		mock.mu.Lock()
		mock.RequestCount++
		mock.LastQuery = query
		mock.LastUserAgent = r.UserAgent()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "not found"}`))
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockGamma) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockGamma) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockGamma) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.OffsetRequests = nil
	m.LastQuery = nil
	m.LastUserAgent = ""
}

// SetHandler sets a custom handler for a specific path.
func (m *MockGamma) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockGamma) SetResponse(path string, resp MockGammaResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, resp)
	})
}

// SetCollection serves total generated records at path, paged by the
// limit and offset query parameters.
func (m *MockGamma) SetCollection(path string, total int) {
	m.mu.Lock()
	m.collections[path] = total
	m.mu.Unlock()

	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		m.serveCollection(path, w, r)
	})
}

// SetPageResponse overrides the response for one offset of a collection.
func (m *MockGamma) SetPageResponse(path string, offset int, resp MockGammaResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pages[path] == nil {
		m.pages[path] = make(map[int]MockGammaResponse)
	}
	m.pages[path][offset] = resp
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockGamma) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetOffsetRequests returns the offsets requested from collections, in arrival order.
func (m *MockGamma) GetOffsetRequests() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]int(nil), m.OffsetRequests...)
}

// GetLastQuery returns the query parameters of the most recent request.
func (m *MockGamma) GetLastQuery() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastQuery
}

// GetLastUserAgent returns the User-Agent of the most recent request.
func (m *MockGamma) GetLastUserAgent() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastUserAgent
}

func (m *MockGamma) serveCollection(path string, w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 100)
	offset := queryInt(r, "offset", 0)

	m.mu.Lock()
	m.OffsetRequests = append(m.OffsetRequests, offset)
	total := m.collections[path]
	override, overridden := m.pages[path][offset]
	m.mu.Unlock()

	if overridden {
		if override.StatusCode != 0 {
			writeResponse(w, override)
			return
		}
		// Delay only: fall through to the generated page.
		time.Sleep(override.Delay)
	}

	records := make([]map[string]any, 0, limit)
	for i := offset; i < total && i < offset+limit; i++ {
		records = append(records, NewRecord(path, i))
	}

	body, err := json.Marshal(records)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// NewRecord returns the generated record at index i of a collection.
// Its "id" equals the index, so tests can assert ordering by id.
func NewRecord(path string, i int) map[string]any {
	return map[string]any{
		"id":       strconv.Itoa(i),
		"slug":     fmt.Sprintf("%s-%d", path[1:], i),
		"question": fmt.Sprintf("Question %d?", i),
		"title":    fmt.Sprintf("Title %d", i),
		"outcomes": `["Yes", "No"]`,
		"volume":   strconv.Itoa(i * 10),
		"active":   true,
		"closed":   false,
	}
}

func writeResponse(w http.ResponseWriter, resp MockGammaResponse) {
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}

	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}

	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// NewJSONResponse creates a standard 200 OK response.
func NewJSONResponse(data string) MockGammaResponse {
	return MockGammaResponse{
		StatusCode: http.StatusOK,
		Body:       data,
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockGammaResponse {
	return MockGammaResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
	}
}

// NewNotFoundResponse creates a 404 Not Found response.
func NewNotFoundResponse() MockGammaResponse {
	return MockGammaResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"error": "not found"}`,
	}
}

// NewMalformedResponse creates a 200 response whose body is not valid JSON.
func NewMalformedResponse() MockGammaResponse {
	return MockGammaResponse{
		StatusCode: http.StatusOK,
		Body:       `[{"id": "1",`,
	}
}
