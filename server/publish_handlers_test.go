package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/newsdesk/pkg/domain"
	"github.com/umputun/newsdesk/pkg/journal"
	"github.com/umputun/newsdesk/pkg/publish"
	"github.com/umputun/newsdesk/pkg/remote"
)

func waitPhase(t *testing.T, srv *Server, phase publish.Phase) publish.ModalState {
	t.Helper()
	var st publish.ModalState
	require.Eventually(t, func() bool {
		st = srv.modal.Snapshot()
		return st.Phase == phase
	}, 2*time.Second, 5*time.Millisecond)
	return st
}

func TestServer_publishHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		store := testStore(sampleNews()...)
		jrnl := testJournal()
		srv := testServer(t, store, nil, jrnl)
		serve(srv, http.MethodGet, "/news", nil)

		w := serve(srv, http.MethodPost, "/news/1/publish", nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, `id="publish-modal"`)
		assert.Contains(t, body, "Publishing News")
		assert.Contains(t, body, "Initializing connection...")
		assert.Contains(t, body, "BTC")

		st := waitPhase(t, srv, publish.PhaseSuccess)
		assert.Equal(t, "Published!", st.Title)
		assert.Equal(t, "✓ News published successfully!", st.Lines[len(st.Lines)-1])
		assert.True(t, st.Dismissable)
		require.Len(t, store.PublishNewsCalls(), 1)
		assert.Equal(t, domain.ID("1"), store.PublishNewsCalls()[0].ID)

		require.Eventually(t, func() bool { return len(jrnl.RecordCalls()) == 1 }, time.Second, 5*time.Millisecond)
		assert.Equal(t, journal.OpPublish, jrnl.RecordCalls()[0].E.Op)
		assert.False(t, jrnl.RecordCalls()[0].E.Failed())
		require.Eventually(t, func() bool { return len(store.ListNewsCalls()) == 2 }, time.Second, 5*time.Millisecond,
			"news reloaded after publish")
	})

	t.Run("failure shows the store detail", func(t *testing.T) {
		store := testStore(sampleNews()...)
		store.PublishNewsFunc = func(context.Context, domain.ID) error {
			return &remote.Error{Kind: remote.KindRejected, Status: 400, Detail: "terminal offline"}
		}
		jrnl := testJournal()
		srv := testServer(t, store, nil, jrnl)
		serve(srv, http.MethodGet, "/news", nil)

		serve(srv, http.MethodPost, "/news/1/publish", nil)
		st := waitPhase(t, srv, publish.PhaseError)
		assert.Equal(t, "Error", st.Title)
		assert.Equal(t, "✗ Error: terminal offline", st.Lines[len(st.Lines)-1])

		w := serve(srv, http.MethodGet, "/publish/modal", nil)
		assert.Contains(t, w.Body.String(), "Failed to publish news")
		require.Eventually(t, func() bool { return len(jrnl.RecordCalls()) == 1 }, time.Second, 5*time.Millisecond)
		assert.Equal(t, "rejected", jrnl.RecordCalls()[0].E.ErrorKind)
		assert.Len(t, store.ListNewsCalls(), 1, "no reload after a failure")
	})

	t.Run("narrates the title saved after the last refresh", func(t *testing.T) {
		store := testStore(sampleNews()...)
		srv := testServer(t, store, nil, nil)
		serve(srv, http.MethodGet, "/news", nil)
		serve(srv, http.MethodPost, "/news/1/fields/title/focus", url.Values{"value": {"Bitcoin rallies"}})
		serve(srv, http.MethodPost, "/news/1/fields/title/blur", url.Values{"value": {"Bitcoin soars"}})

		serve(srv, http.MethodPost, "/news/1/publish", nil)
		st := waitPhase(t, srv, publish.PhaseSuccess)
		assert.Contains(t, strings.Join(st.Lines, "\n"), `Preparing news: "Bitcoin soars`)
		assert.NotContains(t, strings.Join(st.Lines, "\n"), "Bitcoin rallies")
	})

	t.Run("published item", func(t *testing.T) {
		store := testStore(sampleNews()...)
		srv := testServer(t, store, nil, nil)
		serve(srv, http.MethodGet, "/news", nil)

		w := serve(srv, http.MethodPost, "/news/2/publish", nil)
		assert.Contains(t, w.Header().Get("HX-Trigger"), "already published")
		assert.Empty(t, store.PublishNewsCalls())
		assert.Equal(t, publish.PhaseIdle, srv.modal.Snapshot().Phase)
	})

	t.Run("unknown item", func(t *testing.T) {
		store := testStore()
		srv := testServer(t, store, nil, nil)
		w := serve(srv, http.MethodPost, "/news/42/publish", nil)
		assert.Contains(t, w.Header().Get("HX-Trigger"), "News not found")
		assert.Empty(t, store.PublishNewsCalls())
	})
}

func TestServer_publishDismissHandler(t *testing.T) {
	release := make(chan struct{})
	store := testStore(sampleNews()...)
	store.PublishNewsFunc = func(context.Context, domain.ID) error {
		<-release
		return nil
	}
	srv := testServer(t, store, nil, nil)
	serve(srv, http.MethodGet, "/news", nil)
	serve(srv, http.MethodPost, "/news/1/publish", nil)

	w := serve(srv, http.MethodPost, "/publish/dismiss", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.True(t, srv.modal.Snapshot().Open)

	close(release)
	waitPhase(t, srv, publish.PhaseSuccess)
	w = serve(srv, http.MethodPost, "/publish/dismiss", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "modal-title")
	assert.False(t, srv.modal.Snapshot().Open)
}

func TestServer_publishStreamHandler(t *testing.T) {
	store := testStore(sampleNews()...)
	srv := testServer(t, store, nil, nil)
	ts := httptest.NewServer(srv.router)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/news")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/publish/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	// current state comes first
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(msg), `id="publish-modal"`)
	assert.Contains(t, string(msg), `data-phase="idle"`)

	resp, err = http.Post(ts.URL+"/news/1/publish", "application/x-www-form-urlencoded", http.NoBody)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	var frames []string
	for {
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		frames = append(frames, string(msg))
		if strings.Contains(string(msg), `data-phase="success"`) {
			break
		}
	}
	assert.GreaterOrEqual(t, len(frames), 6, "reset, four steps and the result")
	assert.Contains(t, frames[0], "Initializing connection...")
	last := frames[len(frames)-1]
	assert.Contains(t, last, "Published!")
	assert.Contains(t, last, "Asset: BTC")
	assert.NotContains(t, last, "disabled")
}

func TestServer_publishStreamPushesNewsList(t *testing.T) {
	var mu sync.Mutex
	published := false
	store := testStore()
	store.ListNewsFunc = func(context.Context, domain.NewsFilter) ([]domain.NewsItem, error) {
		mu.Lock()
		defer mu.Unlock()
		items := sampleNews()
		items[0].Published = published
		return items, nil
	}
	store.PublishNewsFunc = func(context.Context, domain.ID) error {
		mu.Lock()
		defer mu.Unlock()
		published = true
		return nil
	}
	srv := testServer(t, store, nil, nil)
	ts := httptest.NewServer(srv.router)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/news")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/publish/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = conn.ReadMessage() // current modal
	require.NoError(t, err)

	resp, err = http.Post(ts.URL+"/news/1/publish", "application/x-www-form-urlencoded", http.NoBody)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	var list string
	for list == "" {
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err, "news list must be pushed after a successful publish")
		if strings.Contains(string(msg), `id="news-list"`) {
			list = string(msg)
		}
	}
	assert.Contains(t, list, `hx-swap-oob="true"`)
	assert.Contains(t, list, `class="news-item published" id="news-1"`)
	assert.NotContains(t, list, `hx-post="/news/1/publish"`)
	assert.NotContains(t, list, `contenteditable="true"`)
	assert.Equal(t, publish.PhaseSuccess, srv.modal.Snapshot().Phase)
}

func TestFragmentHub(t *testing.T) {
	hub := newFragmentHub()
	first, unsubFirst := hub.subscribe(1)
	second, unsubSecond := hub.subscribe(1)

	hub.broadcast([]byte("one"))
	hub.broadcast([]byte("two")) // dropped, buffers are full
	assert.Equal(t, "one", string(<-first))
	assert.Equal(t, "one", string(<-second))

	unsubSecond()
	unsubSecond()
	_, ok := <-second
	assert.False(t, ok, "channel closed on unsubscribe")

	hub.broadcast([]byte("three"))
	assert.Equal(t, "three", string(<-first))
	unsubFirst()
}
