package handlers

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Adjust CORS as needed, e.g., check r.Header.Get("Origin")
	},
}

// ChangeAction is the kind of mutation a change event describes
type ChangeAction string

// Valid change actions
const (
	ChangeInsert ChangeAction = "insert"
	ChangeUpdate ChangeAction = "update"
	ChangeDelete ChangeAction = "delete"
)

// ChangeEvent is a push-change notification for a single row of a watched
// collection. Events are emitted after the authoritative write succeeds, in
// write-completion order: the last event for a row wins.
type ChangeEvent struct {
	Collection string       `json:"collection"`
	Action     ChangeAction `json:"action"`
	ID         string       `json:"id"`
	Row        interface{}  `json:"row,omitempty"`
}

// snapshotLimit caps how many rows per collection are retained for replay
// to new subscribers; broadcasting is unaffected once the cap is reached
const snapshotLimit = 256

// ChangeFeed fans change events out to websocket subscribers, one
// subscription per collection. It also keeps a per-collection row cache,
// merged by the same reconciliation rule subscribers apply, which is sent to
// new subscribers as an initial snapshot.
type ChangeFeed struct {
	mu          sync.Mutex
	subscribers map[string]map[*websocket.Conn]bool
	cache       map[string]map[string]interface{}
}

// NewChangeFeed creates an empty change feed hub
func NewChangeFeed() *ChangeFeed {
	return &ChangeFeed{
		subscribers: make(map[string]map[*websocket.Conn]bool),
		cache:       make(map[string]map[string]interface{}),
	}
}

// Apply merges one event into the snapshot cache: insert and update both
// insert-or-replace the row, delete removes it. Rows beyond the snapshot cap
// are not cached.
func (f *ChangeFeed) Apply(ev ChangeEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applyLocked(ev)
}

func (f *ChangeFeed) applyLocked(ev ChangeEvent) {
	rows, ok := f.cache[ev.Collection]
	if !ok {
		rows = make(map[string]interface{})
		f.cache[ev.Collection] = rows
	}
	switch ev.Action {
	case ChangeInsert, ChangeUpdate:
		if _, exists := rows[ev.ID]; !exists && len(rows) >= snapshotLimit {
			return
		}
		rows[ev.ID] = ev.Row
	case ChangeDelete:
		delete(rows, ev.ID)
	}
}

// Snapshot returns the cached rows for a collection
func (f *ChangeFeed) Snapshot(collection string) []interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := make([]interface{}, 0, len(f.cache[collection]))
	for _, row := range f.cache[collection] {
		rows = append(rows, row)
	}
	return rows
}

// Publish merges the event into the snapshot cache and broadcasts it to
// every subscriber of the collection. Safe to call on a nil feed so handler
// tests can run without a hub.
func (f *ChangeFeed) Publish(ev ChangeEvent) {
	if f == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.applyLocked(ev)

	for conn := range f.subscribers[ev.Collection] {
		if err := conn.WriteJSON(ev); err != nil {
			zap.S().Warnw("dropping change feed subscriber",
				"collection", ev.Collection,
				"error", err)
			delete(f.subscribers[ev.Collection], conn)
			conn.Close()
		}
	}
}

// SubscribeHandler upgrades the request to a websocket and streams change
// events for the collection named in the query string. The current snapshot
// is sent first so the client starts from authoritative state.
func (f *ChangeFeed) SubscribeHandler(w http.ResponseWriter, r *http.Request) {
	collection := r.URL.Query().Get("collection")
	if collection == "" {
		http.Error(w, "collection query parameter required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Errorw("websocket upgrade failed", "error", err)
		return
	}

	// The snapshot write and the registration both happen under the feed
	// lock: Publish writes under the same lock, so the connection never has
	// two concurrent writers and no live event can precede the snapshot.
	f.mu.Lock()
	snapshot := make([]interface{}, 0, len(f.cache[collection]))
	for _, row := range f.cache[collection] {
		snapshot = append(snapshot, row)
	}
	if err := conn.WriteJSON(map[string]interface{}{
		"collection": collection,
		"snapshot":   snapshot,
	}); err != nil {
		f.mu.Unlock()
		conn.Close()
		return
	}
	if f.subscribers[collection] == nil {
		f.subscribers[collection] = make(map[*websocket.Conn]bool)
	}
	f.subscribers[collection][conn] = true
	f.mu.Unlock()

	zap.S().Debugw("change feed subscriber connected", "collection", collection)

	// Keep connection alive until the client goes away
	for {
		if _, _, err := conn.NextReader(); err != nil {
			f.unsubscribe(collection, conn)
			break
		}
	}
}

func (f *ChangeFeed) unsubscribe(collection string, conn *websocket.Conn) {
	f.mu.Lock()
	delete(f.subscribers[collection], conn)
	f.mu.Unlock()
	conn.Close()
}
