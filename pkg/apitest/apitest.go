package apitest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/parcelvoy/go-sdk/pkg/config"
)

// APIKey is the key the fake server accepts.
const APIKey = "pk_test_key"

// Request is a recorded inbound request.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// JSON decodes the recorded body into v.
func (r Request) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

type failure struct {
	status    int
	remaining int // negative means forever
}

type notification struct {
	id  int64
	raw json.RawMessage
}

// Server is a fake Parcelvoy API.
type Server struct {
	*httptest.Server

	mu            sync.Mutex
	requests      []Request
	failures      map[string]*failure
	notifications []notification
	consumed      []int64
	nextCursor    string
}

// New starts a server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{failures: make(map[string]*failure)}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

// Config returns a valid SDK config pointing at the server.
func (s *Server) Config(t testing.TB, opts ...config.Option) config.Config {
	t.Helper()
	cfg, err := config.New(APIKey, s.URL, opts...)
	if err != nil {
		t.Fatalf("apitest: config: %v", err)
	}
	return cfg
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record, s.injectFailures)

	r.Route("/api/client", func(r chi.Router) {
		r.Use(requireBearer)
		r.Post("/identify", s.accept)
		r.Post("/alias", s.accept)
		r.Post("/events", s.accept)
		r.Post("/devices", s.accept)
		r.Get("/notifications", s.listNotifications)
		r.Put("/notifications/{id}", s.consumeNotification)
	})

	// Click-tracking redirects live outside the API prefix.
	r.Get("/c", s.accept)
	r.Get("/c/*", s.accept)
	r.Get("/*", s.accept)
	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		f, ok := s.failures[routeKey(r.Method, r.URL.Path)]
		status := 0
		if ok && f.remaining != 0 {
			status = f.status
			if f.remaining > 0 {
				f.remaining--
			}
		}
		s.mu.Unlock()

		if status != 0 {
			http.Error(w, fmt.Sprintf("forced failure %d", status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+APIKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) accept(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	results := make([]json.RawMessage, 0, len(s.notifications))
	for _, n := range s.notifications {
		results = append(results, n.raw)
	}
	var cursor *string
	if s.nextCursor != "" {
		c := s.nextCursor
		cursor = &c
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"results":     results,
		"next_cursor": cursor,
	})
}

func (s *Server) consumeNotification(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.notifications = slices.DeleteFunc(s.notifications, func(n notification) bool { return n.id == id })
	s.consumed = append(s.consumed, id)
	s.mu.Unlock()

	w.WriteHeader(http.StatusOK)
}

// AddNotification appends a raw notification JSON document to the backlog.
func (s *Server) AddNotification(id int64, raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, notification{id: id, raw: json.RawMessage(raw)})
}

// AddBanner appends a minimal banner notification.
func (s *Server) AddBanner(id int64, title string) {
	s.AddNotification(id, fmt.Sprintf(
		`{"id":%d,"content_type":"banner","content":{"title":%q,"body":"body"},"read_at":null,"expires_at":null}`,
		id, title,
	))
}

// SetNextCursor sets the cursor returned with listings.
func (s *Server) SetNextCursor(cursor string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCursor = cursor
}

// Fail makes the next `times` requests to method+path answer with status.
// A negative count fails forever.
func (s *Server) Fail(method, path string, status, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[routeKey(method, path)] = &failure{status: status, remaining: times}
}

// Requests returns recorded requests matching method and path. Empty method
// or path match anything.
func (s *Server) Requests(method, path string) []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Request
	for _, r := range s.requests {
		if (method == "" || r.Method == method) && (path == "" || r.Path == path) {
			out = append(out, r)
		}
	}
	return out
}

// Count returns the number of matching requests.
func (s *Server) Count(method, path string) int {
	return len(s.Requests(method, path))
}

// Consumed returns consumed notification ids in the order they were consumed.
func (s *Server) Consumed() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.consumed)
}

// Paths returns "METHOD /path" for every recorded request, in order.
func (s *Server) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.requests))
	for _, r := range s.requests {
		out = append(out, routeKey(r.Method, r.Path))
	}
	return out
}

func routeKey(method, path string) string {
	return strings.ToUpper(method) + " " + path
}
