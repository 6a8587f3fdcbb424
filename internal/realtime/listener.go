// Package realtime subscribes to the backend's change feed and merges
// server-pushed row changes into the store.
package realtime

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/mbuchner/linkhaven/internal/logger"
	"github.com/mbuchner/linkhaven/internal/model"
	"github.com/mbuchner/linkhaven/internal/remote"
	"github.com/mbuchner/linkhaven/internal/store"
)

// Listener keeps a websocket subscription to the backend change feed. Each
// received message is applied to the store with last-write-wins semantics;
// the listener itself never mutates through the optimistic action surface.
type Listener struct {
	baseURL string
	store   *store.Store
	log     logger.Logger

	mu   sync.Mutex
	conn *websocket.Conn
}

// New creates a listener for the given backend base URL (http or https; the
// scheme is rewritten for the websocket dial).
func New(baseURL string, st *store.Store, log logger.Logger) *Listener {
	if log == nil {
		log = logger.Nop()
	}
	return &Listener{baseURL: baseURL, store: st, log: log}
}

// Subscribe opens the change feed for the session's user and processes
// messages until the connection drops or ctx is canceled. An existing
// subscription is torn down first, so at most one feed is open per listener.
func (l *Listener) Subscribe(ctx context.Context, session *remote.Session) error {
	l.Close()

	wsURL, err := l.feedURL(session)
	if err != nil {
		return err
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if resp != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.conn = conn
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.Close()
	}()

	l.log.Info("realtime feed connected")
	return l.readLoop(conn)
}

// Close tears down the current subscription, if any.
func (l *Listener) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn != nil {
		_ = l.conn.Close()
		l.conn = nil
	}
}

func (l *Listener) feedURL(session *remote.Session) (string, error) {
	u, err := url.Parse(l.baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/api/v1/realtime"

	q := u.Query()
	q.Set("access_token", session.AccessToken)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (l *Listener) readLoop(conn *websocket.Conn) error {
	for {
		var msg remote.ChangeMessage
		if err := conn.ReadJSON(&msg); err != nil {
			l.mu.Lock()
			closed := l.conn == nil
			l.mu.Unlock()
			if closed || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		l.dispatch(msg)
	}
}

// dispatch decodes a change envelope and applies it. Malformed messages are
// logged and dropped; they never kill the feed.
func (l *Listener) dispatch(msg remote.ChangeMessage) {
	kind, ok := changeKind(msg.Type)
	if !ok {
		l.log.Warn("unknown change type on realtime feed", logger.String("type", msg.Type))
		return
	}

	switch msg.Table {
	case remote.TableBookmarks:
		var row remote.BookmarkRow
		if err := json.Unmarshal(msg.Record, &row); err != nil {
			l.log.Warn("malformed bookmark change", logger.Error(err))
			return
		}
		l.store.ApplyBookmarkChange(model.BookmarkChange{Kind: kind, Bookmark: remote.RowToBookmark(row)})

	case remote.TableCollections:
		var row remote.CollectionRow
		if err := json.Unmarshal(msg.Record, &row); err != nil {
			l.log.Warn("malformed collection change", logger.Error(err))
			return
		}
		l.store.ApplyCollectionChange(model.CollectionChange{Kind: kind, Collection: remote.RowToCollection(row)})

	case remote.TableTags:
		var row remote.TagRow
		if err := json.Unmarshal(msg.Record, &row); err != nil {
			l.log.Warn("malformed tag change", logger.Error(err))
			return
		}
		l.store.ApplyTagChange(model.TagChange{Kind: kind, Tag: remote.RowToTag(row)})

	default:
		l.log.Warn("unknown table on realtime feed", logger.String("table", msg.Table))
	}
}

func changeKind(wire string) (model.ChangeKind, bool) {
	switch wire {
	case "insert":
		return model.ChangeInserted, true
	case "update":
		return model.ChangeUpdated, true
	case "delete":
		return model.ChangeDeleted, true
	default:
		return "", false
	}
}
