package server

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/umputun/newsdesk/pkg/domain"
	"github.com/umputun/newsdesk/pkg/journal"
	"github.com/umputun/newsdesk/pkg/publish"
)

const (
	templatePublishModal = "publish-modal.html"

	wsWriteWait  = 10 * time.Second
	wsPongWait   = 90 * time.Second
	wsPingPeriod = 45 * time.Second
	wsBuffer     = 64
)

// publishHandler starts a publish run and answers with the freshly reset modal.
// The run continues in background, its progress is streamed over the websocket.
func (s *Server) publishHandler(w http.ResponseWriter, r *http.Request) {
	id := domain.ID(r.PathValue("id"))
	item, ok := s.news.Find(func(it domain.NewsItem) bool { return it.ID == id })
	if !ok {
		alert(w, "News not found, refresh the list")
		return
	}

	_, done, err := s.publisher.Start(s.bgCtx, publish.SubjectOf(item))
	if errors.Is(err, publish.ErrAlreadyPublished) {
		alert(w, "This news is already published")
		return
	}
	if err != nil {
		s.respondWithError(w, http.StatusInternalServerError, "Failed to start publishing", err)
		return
	}

	s.bgWG.Add(1)
	go func() {
		defer s.bgWG.Done()
		out := <-done
		s.record(s.bgCtx, journal.OpPublish, id.String(), out.Err)
	}()

	s.renderTemplate(w, templatePublishModal, s.modal.Snapshot())
}

// publishModalHandler renders the current modal state
func (s *Server) publishModalHandler(w http.ResponseWriter, _ *http.Request) {
	s.renderTemplate(w, templatePublishModal, s.modal.Snapshot())
}

// publishDismissHandler closes the modal, a run still sending can't be dismissed
func (s *Server) publishDismissHandler(w http.ResponseWriter, _ *http.Request) {
	if err := s.modal.Dismiss(); err != nil {
		w.Header().Set("HX-Reswap", "none")
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	s.renderTemplate(w, templatePublishModal, s.modal.Snapshot())
}

// publishStreamHandler pushes the rendered modal to the page on every modal change,
// and the news list once a publish succeeded
func (s *Server) publishStreamHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WARN] websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// subscribe before the first write, a change in between is sent twice but never lost
	events, unsubscribe := s.modal.Subscribe(wsBuffer)
	defer unsubscribe()
	fragments, unsubscribeFragments := s.fragments.subscribe(wsBuffer)
	defer unsubscribeFragments()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(1024)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error { return conn.SetReadDeadline(time.Now().Add(wsPongWait)) })
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	if err := s.writeModal(conn, s.modal.Snapshot()); err != nil {
		log.Printf("[DEBUG] publish stream closed: %v", err)
		return
	}
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := s.writeModal(conn, ev.State); err != nil {
				log.Printf("[DEBUG] publish stream closed: %v", err)
				return
			}
		case msg, ok := <-fragments:
			if !ok {
				return
			}
			if err := writeFragment(conn, msg); err != nil {
				log.Printf("[DEBUG] publish stream closed: %v", err)
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-s.bgCtx.Done():
			// shutdown doesn't close hijacked connections
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"), time.Now().Add(time.Second))
			return
		}
	}
}

// writeModal sends the modal fragment, the page swaps it by id
func (s *Server) writeModal(conn *websocket.Conn, st publish.ModalState) error {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templatePublishModal, st); err != nil {
		return err
	}
	return writeFragment(conn, buf.Bytes())
}

func writeFragment(conn *websocket.Conn, msg []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteMessage(websocket.TextMessage, msg)
}
