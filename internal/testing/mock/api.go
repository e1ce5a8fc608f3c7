package mock

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
)

// DefaultReadyAfter is the number of job reads that report "pending" before a
// job becomes "ready".
const DefaultReadyAfter = 2

// API is an in-memory user and job service used by end-to-end tests.
//
//	POST /login          form user=<name>              -> {"token":"token-<name>"}
//	GET  /whoami         Authorization: Bearer <token> -> {"user":<name>}
//	POST /users          JSON object                   -> 201 {"id":"u-N",...}
//	GET  /users/{id}                                   -> 200 user or 404
//	GET  /jobs/{id}                                    -> {"id":..,"status":"pending"|"ready"}
//	GET  /moved                                        -> 302 to /jobs/moved
type API struct {
	// ReadyAfter must be set before the API serves requests.
	ReadyAfter int

	mu       sync.Mutex
	users    map[string]map[string]any
	nextUser int
	jobReads map[string]int

	requests atomic.Int64
	router   chi.Router
}

// NewAPI creates an empty API.
func NewAPI() *API {
	a := &API{
		ReadyAfter: DefaultReadyAfter,
		users:      make(map[string]map[string]any),
		jobReads:   make(map[string]int),
	}

	r := chi.NewRouter()
	r.Use(a.count)
	r.Post("/login", a.login)
	r.Get("/whoami", a.whoami)
	r.Route("/users", func(r chi.Router) {
		r.Post("/", a.createUser)
		r.Get("/{id}", a.getUser)
	})
	r.Get("/jobs/{id}", a.getJob)
	r.Get("/moved", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/jobs/moved", http.StatusFound)
	})
	a.router = r
	return a
}

// ServeHTTP implements http.Handler.
func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Requests returns the number of requests served.
func (a *API) Requests() int {
	return int(a.requests.Load())
}

// User returns a stored user.
func (a *API) User(id string) (map[string]any, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	u, ok := a.users[id]
	return u, ok
}

func (a *API) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.requests.Add(1)
		next.ServeHTTP(w, r)
	})
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	user := r.PostForm.Get("user")
	if user == "" {
		writeError(w, http.StatusBadRequest, "user is required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": "token-" + user})
}

func (a *API) whoami(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !strings.HasPrefix(token, "token-") {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": strings.TrimPrefix(token, "token-")})
}

func (a *API) createUser(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	a.mu.Lock()
	a.nextUser++
	id := fmt.Sprintf("u-%d", a.nextUser)
	body["id"] = id
	a.users[id] = body
	a.mu.Unlock()

	writeJSON(w, http.StatusCreated, body)
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request) {
	user, ok := a.User(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (a *API) getJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	a.mu.Lock()
	a.jobReads[id]++
	reads := a.jobReads[id]
	a.mu.Unlock()

	status := "pending"
	if reads > a.ReadyAfter {
		status = "ready"
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": status, "reads": reads})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
