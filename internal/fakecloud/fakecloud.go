// Package fakecloud runs an in-process imitation of the Gigaset Elements
// cloud for tests. Requests to the real hostnames are routed to it by the
// *http.Client returned from Server.Client.
package fakecloud

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/matthsc/gigaset-elements-api/internal/endpoint"
	"github.com/matthsc/gigaset-elements-api/internal/model"
	"github.com/matthsc/gigaset-elements-api/internal/testdata"
)

const sessionCookie = "connect.sid"

// Server is a fake cloud. All fields are guarded by mu.
type Server struct {
	srv *httptest.Server

	mu          sync.Mutex
	email       string
	password    string
	maintenance bool
	loggedIn    bool
	token       string
	events      []model.Event
	failures    map[string][]int
	requests    []*http.Request
	commands    []Command
}

// Command is a command received by the fake.
type Command struct {
	BaseStationID string
	EndnodeID     string
	Name          string
}

// New starts a fake accepting the given credentials and serving the
// embedded event fixtures.
func New(email, password string) *Server {
	page, err := testdata.LoadEvents()
	if err != nil {
		panic(err)
	}
	s := &Server{
		email:    email,
		password: password,
		events:   page.Events,
		failures: make(map[string][]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+path(endpoint.Status), s.status)
	mux.HandleFunc("POST "+path(endpoint.Login), s.login)
	mux.HandleFunc("GET "+path(endpoint.Auth), s.auth)
	mux.HandleFunc("GET "+path(endpoint.BaseStations), s.authorized(s.raw(testdata.BaseStationsJSON())))
	mux.HandleFunc("GET "+path(endpoint.Elements), s.authorized(s.raw(testdata.ElementsJSON())))
	mux.HandleFunc("GET "+path(endpoint.Health), s.authorized(s.raw([]byte(`{"systemHealth":"green","statusMsgId":"system.all_ok","affectedElements":[]}`))))
	mux.HandleFunc("GET "+path(endpoint.Events), s.authorized(s.eventsHandler))
	mux.HandleFunc("POST "+path(endpoint.BaseStations)+"/{bs}/endnodes/{node}/cmd", s.authorized(s.command))

	s.srv = httptest.NewServer(s.record(mux))
	return s
}

func path(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		panic(err)
	}
	return u.Path
}

// Close shuts the server down.
func (s *Server) Close() {
	s.srv.Close()
}

// Client returns an HTTP client that sends every request to the fake,
// whatever host the URL names.
func (s *Server) Client() *http.Client {
	target, _ := url.Parse(s.srv.URL)
	return &http.Client{Transport: &rewrite{target: target, base: s.srv.Client().Transport}}
}

// SetEvents replaces the served events. They must be sorted newest first.
func (s *Server) SetEvents(events []model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = events
}

// SetMaintenance sets the status endpoint's answer.
func (s *Server) SetMaintenance(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maintenance = on
}

// Expire invalidates the current session cookie.
func (s *Server) Expire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.loggedIn = false
}

// FailNext makes the next len(statuses) requests to the URL path of uri
// answer with the given statuses.
func (s *Server) FailNext(uri string, statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := path(uri)
	s.failures[p] = append(s.failures[p], statuses...)
}

// Count returns how many requests hit the URL path of uri.
func (s *Server) Count(uri string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := path(uri)
	n := 0
	for _, r := range s.requests {
		if r.URL.Path == p {
			n++
		}
	}
	return n
}

// Total returns the number of requests received.
func (s *Server) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// EventQueries returns the query parameters of every events request.
func (s *Server) EventQueries() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []url.Values
	for _, r := range s.requests {
		if r.URL.Path == path(endpoint.Events) {
			out = append(out, r.URL.Query())
		}
	}
	return out
}

// Commands returns the endnode commands received.
func (s *Server) Commands() []Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Command(nil), s.commands...)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Clone(r.Context()))
		var status int
		if q := s.failures[r.URL.Path]; len(q) > 0 {
			status = q[0]
			s.failures[r.URL.Path] = q[1:]
		}
		s.mu.Unlock()

		if status != 0 {
			w.WriteHeader(status)
			w.Write([]byte(`{"error":"injected failure"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	on := s.maintenance
	s.mu.Unlock()
	writeJSON(w, map[string]bool{"isMaintenance": on})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	ok := r.PostForm.Get("email") == s.email && r.PostForm.Get("password") == s.password
	s.loggedIn = ok
	s.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":"invalid_credentials"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) auth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loggedIn {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	s.token = uuid.NewString()
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: s.token, Path: "/", HttpOnly: true})
	w.WriteHeader(http.StatusOK)
}

func (s *Server) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(sessionCookie)
		s.mu.Lock()
		ok := err == nil && s.token != "" && c.Value == s.token
		s.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		next(w, r)
	}
}

func (s *Server) raw(body []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}
}

func (s *Server) eventsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := strconv.ParseInt(q.Get(endpoint.ParamFrom), 10, 64)
	if err != nil {
		http.Error(w, "from_ts required", http.StatusBadRequest)
		return
	}
	to := int64(1<<63 - 1)
	if v := q.Get(endpoint.ParamTo); v != "" {
		if to, err = strconv.ParseInt(v, 10, 64); err != nil {
			http.Error(w, "bad to_ts", http.StatusBadRequest)
			return
		}
	}
	limit := 500
	if v := q.Get(endpoint.ParamLimit); v != "" {
		if limit, err = strconv.Atoi(v); err != nil {
			http.Error(w, "bad limit", http.StatusBadRequest)
			return
		}
	}

	s.mu.Lock()
	page := model.EventPage{HomeState: "ok", Events: []model.Event{}}
	for _, e := range s.events {
		ts, _ := e.Timestamp()
		if ts < from || ts > to {
			continue
		}
		if len(page.Events) == limit {
			break
		}
		page.Events = append(page.Events, e)
	}
	s.mu.Unlock()

	writeJSON(w, page)
}

func (s *Server) command(w http.ResponseWriter, r *http.Request) {
	var cmd model.Command
	body, _ := io.ReadAll(r.Body)
	if err := json.Unmarshal(body, &cmd); err != nil || cmd.Name == "" {
		http.Error(w, "bad command", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.commands = append(s.commands, Command{
		BaseStationID: r.PathValue("bs"),
		EndnodeID:     r.PathValue("node"),
		Name:          cmd.Name,
	})
	s.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// rewrite sends requests to target, keeping the path and query.
type rewrite struct {
	target *url.URL
	base   http.RoundTripper
}

func (rt *rewrite) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.URL.Scheme = rt.target.Scheme
	out.URL.Host = rt.target.Host
	return rt.base.RoundTrip(out)
}
