// Package smshubtest provides a fake SMSHub handler for tests.
package smshubtest

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/oggyb/smshub/internal/smshub"
)

// ResponseFunc builds the body for one request from its query.
type ResponseFunc func(q url.Values) string

// Server is an httptest server that answers SMSHub actions with canned
// bodies. Unknown actions get BAD_ACTION, like the real handler.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	responses map[string]ResponseFunc
	requests  []url.Values
}

// NewServer starts a fake handler and closes it when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{responses: make(map[string]ResponseFunc)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Respond makes action answer with body.
func (s *Server) Respond(action, body string) {
	s.RespondFunc(action, func(url.Values) string { return body })
}

// RespondFunc makes action answer with whatever fn returns.
func (s *Server) RespondFunc(action string, fn ResponseFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[action] = fn
}

// Requests returns the queries received so far.
func (s *Server) Requests() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]url.Values, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent query, or nil.
func (s *Server) LastRequest() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return nil
	}
	return s.requests[len(s.requests)-1]
}

// Client returns a smshub.Client pointed at the fake handler.
func (s *Server) Client(apiKey string) *smshub.Client {
	return smshub.New(apiKey, s.Server.Client(), smshub.WithEndpoint(s.URL+"/stubs/handler_api.php"))
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()

	s.mu.Lock()
	s.requests = append(s.requests, q)
	fn, ok := s.responses[q.Get("action")]
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if !ok {
		_, _ = w.Write([]byte("BAD_ACTION"))
		return
	}
	_, _ = w.Write([]byte(fn(q)))
}
