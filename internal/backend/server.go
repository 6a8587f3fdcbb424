// Package backend is a self-contained reference implementation of the sync
// backend: token auth, per-user row storage and a realtime change feed. It
// exists for development and end-to-end tests; it keeps everything in memory.
package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mbuchner/linkhaven/internal/logger"
	"github.com/mbuchner/linkhaven/internal/model"
	"github.com/mbuchner/linkhaven/internal/remote"
)

type account struct {
	userID   string
	email    string
	password string
}

// dataset is one user's rows.
type dataset struct {
	bookmarks   map[string]remote.BookmarkRow
	collections map[string]remote.CollectionRow
	tags        map[string]remote.TagRow
}

func newDataset() *dataset {
	return &dataset{
		bookmarks:   make(map[string]remote.BookmarkRow),
		collections: make(map[string]remote.CollectionRow),
		tags:        make(map[string]remote.TagRow),
	}
}

type token struct {
	userID    string
	expiresAt time.Time
}

// Server is the reference sync backend.
type Server struct {
	log    logger.Logger
	router chi.Router
	hub    *hub

	mu       sync.Mutex
	accounts map[string]account // by email
	access   map[string]token   // by access token
	refresh  map[string]string  // refresh token -> userID
	data     map[string]*dataset
}

// New creates a reference backend server.
func New(log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}

	s := &Server{
		log:      log,
		hub:      newHub(log),
		accounts: make(map[string]account),
		access:   make(map[string]token),
		refresh:  make(map[string]string),
		data:     make(map[string]*dataset),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/token", s.handleAuthToken)
		r.Post("/auth/refresh", s.handleAuthRefresh)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			for _, table := range []string{remote.TableBookmarks, remote.TableCollections, remote.TableTags} {
				table := table
				r.Get("/"+table, s.handleList(table))
				r.Post("/"+table, s.handleInsert(table))
				r.Patch("/"+table+"/{id}", s.handleUpdate(table))
				r.Delete("/"+table+"/{id}", s.handleDelete(table))
			}
		})

		r.Get("/realtime", s.handleRealtime)
	})
	s.router = r

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

const tokenTTL = time.Hour

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// handleAuthToken signs a user in. Unknown emails get an account on first
// sign-in; known emails must present the right password.
func (s *Server) handleAuthToken(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Email == "" || creds.Password == "" {
		http.Error(w, "email and password required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	acc, ok := s.accounts[creds.Email]
	if !ok {
		acc = account{
			userID:   model.GenerateUUID(),
			email:    creds.Email,
			password: creds.Password,
		}
		s.accounts[creds.Email] = acc
		s.data[acc.userID] = newDataset()
		s.log.Info("account created", logger.String("email", creds.Email))
	} else if acc.password != creds.Password {
		s.mu.Unlock()
		http.Error(w, "bad credentials", http.StatusUnauthorized)
		return
	}
	session := s.issueSessionLocked(acc)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleAuthRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		http.Error(w, "refresh_token required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	userID, ok := s.refresh[req.RefreshToken]
	if !ok {
		s.mu.Unlock()
		http.Error(w, "unknown refresh token", http.StatusUnauthorized)
		return
	}
	delete(s.refresh, req.RefreshToken)

	var acc account
	for _, a := range s.accounts {
		if a.userID == userID {
			acc = a
			break
		}
	}
	session := s.issueSessionLocked(acc)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, session)
}

func (s *Server) issueSessionLocked(acc account) remote.Session {
	session := remote.Session{
		UserID:       acc.userID,
		Email:        acc.email,
		AccessToken:  model.GenerateUUID(),
		RefreshToken: model.GenerateUUID(),
		ExpiresAt:    time.Now().Add(tokenTTL),
	}
	s.access[session.AccessToken] = token{userID: acc.userID, expiresAt: session.ExpiresAt}
	s.refresh[session.RefreshToken] = acc.userID
	return session
}

func (s *Server) authenticate(accessToken string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, ok := s.access[accessToken]
	if !ok || time.Now().After(tok.expiresAt) {
		return "", false
	}
	return tok.userID, true
}

type ctxKey int

const userKey ctxKey = 0

func withUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userKey, userID))
}

func userFrom(r *http.Request) string {
	userID, _ := r.Context().Value(userKey).(string)
	return userID
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		userID, ok := s.authenticate(auth[len(prefix):])
		if !ok {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, withUser(r, userID))
	})
}

func (s *Server) userData(userID string) *dataset {
	if d, ok := s.data[userID]; ok {
		return d
	}
	d := newDataset()
	s.data[userID] = d
	return d
}

func (s *Server) handleList(table string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		d := s.userData(userFrom(r))
		var out any
		switch table {
		case remote.TableBookmarks:
			rows := make([]remote.BookmarkRow, 0, len(d.bookmarks))
			for _, row := range d.bookmarks {
				rows = append(rows, row)
			}
			out = rows
		case remote.TableCollections:
			rows := make([]remote.CollectionRow, 0, len(d.collections))
			for _, row := range d.collections {
				rows = append(rows, row)
			}
			out = rows
		case remote.TableTags:
			rows := make([]remote.TagRow, 0, len(d.tags))
			for _, row := range d.tags {
				rows = append(rows, row)
			}
			out = rows
		}
		s.mu.Unlock()

		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) handleInsert(table string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.upsert(w, r, table, "", "insert", http.StatusCreated)
	}
}

func (s *Server) handleUpdate(table string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.upsert(w, r, table, chi.URLParam(r, "id"), "update", http.StatusOK)
	}
}

// upsert stores the decoded row and broadcasts the change. Inserts with an
// existing id and updates for a missing id are both accepted; the row state
// simply converges, matching the client's last-write-wins merge.
func (s *Server) upsert(w http.ResponseWriter, r *http.Request, table, wantID, changeType string, okStatus int) {
	userID := userFrom(r)

	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		http.Error(w, "malformed record", http.StatusBadRequest)
		return
	}

	id, err := s.storeRow(userID, table, raw)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if wantID != "" && id != wantID {
		http.Error(w, "record id does not match url", http.StatusBadRequest)
		return
	}

	s.hub.broadcast(userID, remote.ChangeMessage{Table: table, Type: changeType, Record: raw})
	w.WriteHeader(okStatus)
}

func (s *Server) handleDelete(table string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := userFrom(r)
		id := chi.URLParam(r, "id")

		s.mu.Lock()
		d := s.userData(userID)
		switch table {
		case remote.TableBookmarks:
			delete(d.bookmarks, id)
		case remote.TableCollections:
			delete(d.collections, id)
		case remote.TableTags:
			delete(d.tags, id)
		}
		s.mu.Unlock()

		// Deletes of unknown ids still broadcast; clients treat them as
		// no-ops.
		record, _ := json.Marshal(map[string]string{"id": id})
		s.hub.broadcast(userID, remote.ChangeMessage{Table: table, Type: "delete", Record: record})
		w.WriteHeader(http.StatusNoContent)
	}
}

type invalidRowError string

func (e invalidRowError) Error() string { return string(e) }

func (s *Server) storeRow(userID, table string, raw json.RawMessage) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.userData(userID)

	switch table {
	case remote.TableBookmarks:
		var row remote.BookmarkRow
		if err := json.Unmarshal(raw, &row); err != nil || row.ID == "" {
			return "", invalidRowError("invalid bookmark record")
		}
		d.bookmarks[row.ID] = row
		return row.ID, nil
	case remote.TableCollections:
		var row remote.CollectionRow
		if err := json.Unmarshal(raw, &row); err != nil || row.ID == "" {
			return "", invalidRowError("invalid collection record")
		}
		d.collections[row.ID] = row
		return row.ID, nil
	default:
		var row remote.TagRow
		if err := json.Unmarshal(raw, &row); err != nil || row.ID == "" {
			return "", invalidRowError("invalid tag record")
		}
		d.tags[row.ID] = row
		return row.ID, nil
	}
}

// handleRealtime upgrades to a websocket and streams the user's change feed.
// Auth uses an access_token query parameter because browsers cannot set
// headers on websocket dials.
func (s *Server) handleRealtime(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(r.URL.Query().Get("access_token"))
	if !ok {
		http.Error(w, "invalid or expired token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", logger.Error(err))
		return
	}

	client := &feedClient{
		userID: userID,
		conn:   conn,
		send:   make(chan remote.ChangeMessage, 64),
		hub:    s.hub,
	}
	s.hub.register(client)

	go client.writePump()
	go client.readPump()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
