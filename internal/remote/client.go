package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mbuchner/linkhaven/internal/logger"
	"github.com/mbuchner/linkhaven/internal/model"
)

var (
	ErrNoSession    = errors.New("no active session")
	ErrUnauthorized = errors.New("session rejected by backend")
	ErrRequest      = errors.New("backend request failed")
)

// OfflineError marks a request that failed because the device has no
// connectivity. Callers skip the write instead of rolling back.
type OfflineError struct {
	Err error
}

func (e *OfflineError) Error() string { return "backend unreachable: " + e.Err.Error() }
func (e *OfflineError) Unwrap() error { return e.Err }
func (e *OfflineError) Offline() bool { return true }

// Client talks to the hosted sync backend. It implements the store's Remote
// interface and owns the session lifecycle. The session is refreshed by the
// startup sync while the dispatch loop mirrors writes, so access to it is
// serialized.
type Client struct {
	baseURL     string
	sessionPath string
	httpClient  *http.Client
	log         logger.Logger

	mu      sync.Mutex // guards session and offline
	session *Session
	offline bool
}

// Params configures a new Client.
type Params struct {
	BaseURL string
	// APIKey, when set, is used as a static access token and no
	// email/password authentication is needed.
	APIKey string
	// SessionPath is where the session is persisted between runs. Empty
	// disables session persistence.
	SessionPath string
	Logger      logger.Logger
}

// NewClient creates a sync client for the given backend.
func NewClient(params Params) *Client {
	log := params.Logger
	if log == nil {
		log = logger.Nop()
	}

	c := &Client{
		baseURL:     params.BaseURL,
		sessionPath: params.SessionPath,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		log:         log,
	}
	if params.APIKey != "" {
		c.session = &Session{
			AccessToken: params.APIKey,
			ExpiresAt:   time.Now().Add(365 * 24 * time.Hour),
		}
	}
	return c
}

// Session returns the current session, nil when signed out.
func (c *Client) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Client) setSession(s *Session) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
}

// SetOffline forces the client into (or out of) offline mode. While offline
// every request fails with an OfflineError without touching the network.
func (c *Client) SetOffline(offline bool) {
	c.mu.Lock()
	c.offline = offline
	c.mu.Unlock()
}

func (c *Client) isOffline() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offline
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Authenticate signs in with email and password and persists the session.
func (c *Client) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	err := c.post(ctx, "/api/v1/auth/token", "", credentials{Email: email, Password: password}, &session)
	if err != nil {
		return nil, err
	}

	c.setSession(&session)
	c.saveSession(&session)
	return &session, nil
}

// RefreshSession exchanges the refresh token for a new access token.
func (c *Client) RefreshSession(ctx context.Context) error {
	var refreshToken string
	if s := c.Session(); s != nil {
		refreshToken = s.RefreshToken
	}
	if refreshToken == "" {
		return ErrNoSession
	}

	var session Session
	err := c.post(ctx, "/api/v1/auth/refresh", "", refreshRequest{RefreshToken: refreshToken}, &session)
	if err != nil {
		return err
	}

	c.setSession(&session)
	c.saveSession(&session)
	return nil
}

// RecoverSession restores a persisted session from disk, refreshing it when
// the access token has expired. Returns ErrNoSession when nothing usable is
// stored.
func (c *Client) RecoverSession(ctx context.Context) error {
	if c.Session().Valid() {
		return nil
	}
	if c.sessionPath == "" {
		return ErrNoSession
	}

	data, err := os.ReadFile(c.sessionPath)
	if err != nil {
		return ErrNoSession
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return ErrNoSession
	}

	c.setSession(&session)
	if session.Valid() {
		return nil
	}
	return c.RefreshSession(ctx)
}

// SignOut drops the session in memory and on disk.
func (c *Client) SignOut() {
	c.setSession(nil)
	if c.sessionPath != "" {
		_ = os.Remove(c.sessionPath)
	}
}

func (c *Client) saveSession(session *Session) {
	if c.sessionPath == "" || session == nil {
		return
	}
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(c.sessionPath), 0o755); err != nil {
		c.log.Warn("failed to create session directory", logger.Error(err))
		return
	}
	if err := os.WriteFile(c.sessionPath, data, 0o600); err != nil {
		c.log.Warn("failed to persist session", logger.Error(err))
	}
}

// FetchAll downloads the full remote dataset as a normalized state. View
// preferences are device-local and keep their defaults.
func (c *Client) FetchAll(ctx context.Context) (*model.State, error) {
	var bookmarkRows []BookmarkRow
	if err := c.get(ctx, "/api/v1/"+TableBookmarks, &bookmarkRows); err != nil {
		return nil, err
	}
	var collectionRows []CollectionRow
	if err := c.get(ctx, "/api/v1/"+TableCollections, &collectionRows); err != nil {
		return nil, err
	}
	var tagRows []TagRow
	if err := c.get(ctx, "/api/v1/"+TableTags, &tagRows); err != nil {
		return nil, err
	}

	state := model.NewState()
	state.Bookmarks = make([]model.Bookmark, 0, len(bookmarkRows))
	for _, r := range bookmarkRows {
		state.Bookmarks = append(state.Bookmarks, RowToBookmark(r))
	}
	for _, r := range collectionRows {
		state.Collections = append(state.Collections, RowToCollection(r))
	}
	state.Tags = make([]model.Tag, 0, len(tagRows))
	for _, r := range tagRows {
		state.Tags = append(state.Tags, RowToTag(r))
	}

	state.Normalize()
	return state, nil
}

func (c *Client) InsertBookmark(ctx context.Context, b model.Bookmark) error {
	return c.insert(ctx, TableBookmarks, bookmarkToRow(b))
}

func (c *Client) UpdateBookmark(ctx context.Context, b model.Bookmark) error {
	return c.update(ctx, TableBookmarks, b.ID, bookmarkToRow(b))
}

func (c *Client) DeleteBookmark(ctx context.Context, id string) error {
	return c.delete(ctx, TableBookmarks, id)
}

func (c *Client) InsertCollection(ctx context.Context, coll model.Collection) error {
	return c.insert(ctx, TableCollections, collectionToRow(coll))
}

func (c *Client) UpdateCollection(ctx context.Context, coll model.Collection) error {
	return c.update(ctx, TableCollections, coll.ID, collectionToRow(coll))
}

func (c *Client) DeleteCollection(ctx context.Context, id string) error {
	return c.delete(ctx, TableCollections, id)
}

func (c *Client) InsertTag(ctx context.Context, t model.Tag) error {
	return c.insert(ctx, TableTags, tagToRow(t))
}

func (c *Client) UpdateTag(ctx context.Context, t model.Tag) error {
	return c.update(ctx, TableTags, t.ID, tagToRow(t))
}

func (c *Client) DeleteTag(ctx context.Context, id string) error {
	return c.delete(ctx, TableTags, id)
}

func (c *Client) insert(ctx context.Context, table string, row any) error {
	token, err := c.accessToken()
	if err != nil {
		return err
	}
	return c.post(ctx, "/api/v1/"+table, token, row, nil)
}

func (c *Client) update(ctx context.Context, table, id string, row any) error {
	token, err := c.accessToken()
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPatch, "/api/v1/"+table+"/"+id, token, row, nil)
}

func (c *Client) delete(ctx context.Context, table, id string) error {
	token, err := c.accessToken()
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, "/api/v1/"+table+"/"+id, token, nil, nil)
}

func (c *Client) accessToken() (string, error) {
	s := c.Session()
	if s == nil || s.AccessToken == "" {
		return "", ErrNoSession
	}
	return s.AccessToken, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	token, err := c.accessToken()
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodGet, path, token, nil, out)
}

func (c *Client) post(ctx context.Context, path, token string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, token, body, out)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	if c.isOffline() {
		return &OfflineError{Err: errors.New("client forced offline")}
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) && ctx.Err() == nil {
			// Connection-level failures mean the backend is unreachable, not
			// that the write was rejected.
			return &OfflineError{Err: err}
		}
		return fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, string(respBody))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%w: status %d: %s", ErrRequest, resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
