package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"

	"github.com/safevoice-app/safevoice-api/api/handlers"
)

func TestChangeFeedApplyInsertThenUpdateReplacesRow(t *testing.T) {
	feed := handlers.NewChangeFeed()

	feed.Apply(handlers.ChangeEvent{
		Collection: "reports",
		Action:     handlers.ChangeInsert,
		ID:         "r1",
		Row:        map[string]interface{}{"title": "original"},
	})
	feed.Apply(handlers.ChangeEvent{
		Collection: "reports",
		Action:     handlers.ChangeUpdate,
		ID:         "r1",
		Row:        map[string]interface{}{"title": "edited"},
	})

	rows := feed.Snapshot("reports")
	assert.Len(t, rows, 1, "update of a known row must replace, not append")
	assert.Equal(t, "edited", rows[0].(map[string]interface{})["title"])
}

func TestChangeFeedApplyUpdateOfUnknownRowInserts(t *testing.T) {
	feed := handlers.NewChangeFeed()

	// An update for a row never seen before still lands in the snapshot,
	// so subscribers converge regardless of event ordering
	feed.Apply(handlers.ChangeEvent{
		Collection: "stories",
		Action:     handlers.ChangeUpdate,
		ID:         "s9",
		Row:        map[string]interface{}{"title": "late arrival"},
	})

	assert.Len(t, feed.Snapshot("stories"), 1)
}

func TestChangeFeedApplyDeleteRemovesRow(t *testing.T) {
	feed := handlers.NewChangeFeed()

	feed.Apply(handlers.ChangeEvent{Collection: "reports", Action: handlers.ChangeInsert, ID: "r1", Row: "a"})
	feed.Apply(handlers.ChangeEvent{Collection: "reports", Action: handlers.ChangeDelete, ID: "r1"})
	// deleting an absent row is a no-op
	feed.Apply(handlers.ChangeEvent{Collection: "reports", Action: handlers.ChangeDelete, ID: "r2"})

	assert.Len(t, feed.Snapshot("reports"), 0)
}

func TestChangeFeedCollectionsAreIndependent(t *testing.T) {
	feed := handlers.NewChangeFeed()

	feed.Apply(handlers.ChangeEvent{Collection: "reports", Action: handlers.ChangeInsert, ID: "1", Row: "a"})
	feed.Apply(handlers.ChangeEvent{Collection: "stories", Action: handlers.ChangeInsert, ID: "1", Row: "b"})
	feed.Apply(handlers.ChangeEvent{Collection: "stories", Action: handlers.ChangeDelete, ID: "1"})

	assert.Len(t, feed.Snapshot("reports"), 1)
	assert.Len(t, feed.Snapshot("stories"), 0)
}

func TestChangeFeedSnapshotCapStillReplacesKnownRows(t *testing.T) {
	feed := handlers.NewChangeFeed()

	for i := 0; i < 300; i++ {
		feed.Apply(handlers.ChangeEvent{
			Collection: "comments",
			Action:     handlers.ChangeInsert,
			ID:         fmt.Sprintf("c%d", i),
			Row:        i,
		})
	}

	rows := feed.Snapshot("comments")
	assert.Len(t, rows, 256)

	// a known row is still replaceable once the cap is hit
	feed.Apply(handlers.ChangeEvent{Collection: "comments", Action: handlers.ChangeUpdate, ID: "c0", Row: "updated"})
	assert.Len(t, feed.Snapshot("comments"), 256)
}

func TestChangeFeedSubscribersGetSnapshotBeforeLiveEvents(t *testing.T) {
	feed := handlers.NewChangeFeed()
	feed.Apply(handlers.ChangeEvent{
		Collection: "reports",
		Action:     handlers.ChangeInsert,
		ID:         "seed",
		Row:        map[string]interface{}{"title": "seed row"},
	})

	srv := httptest.NewServer(http.HandlerFunc(feed.SubscribeHandler))
	defer srv.Close()

	// Publish continuously while clients connect. Publish and the subscribe
	// path share one writer at a time per connection, and every client's
	// first frame must be the snapshot, never a live event.
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			feed.Publish(handlers.ChangeEvent{
				Collection: "reports",
				Action:     handlers.ChangeUpdate,
				ID:         "seed",
				Row:        map[string]interface{}{"title": fmt.Sprintf("update %d", i)},
			})
		}
	}()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "?collection=reports"
	for i := 0; i < 25; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if !assert.NoError(t, err) {
			break
		}
		var first map[string]interface{}
		if assert.NoError(t, conn.ReadJSON(&first)) {
			_, gotSnapshot := first["snapshot"]
			assert.True(t, gotSnapshot, "first frame must carry the snapshot")
		}
		conn.Close()
	}

	close(stop)
	wg.Wait()
}

func TestChangeFeedPublishOnNilFeed(t *testing.T) {
	var feed *handlers.ChangeFeed
	assert.NotPanics(t, func() {
		feed.Publish(handlers.ChangeEvent{Collection: "reports", Action: handlers.ChangeInsert, ID: "1"})
	})
}
