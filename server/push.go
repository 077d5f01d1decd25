package server

import (
	"bytes"
	"context"
	"log"
	"sync"
)

// fragmentHub fans rendered fragments out to the open publish streams.
// The page applies them as out-of-band swaps, a slow stream misses fragments rather than blocking.
type fragmentHub struct {
	mu      sync.Mutex
	subs    map[int]chan []byte
	nextSub int
}

func newFragmentHub() *fragmentHub {
	return &fragmentHub{subs: map[int]chan []byte{}}
}

func (h *fragmentHub) subscribe(buf int) (fragments <-chan []byte, unsubscribe func()) {
	ch := make(chan []byte, buf)
	h.mu.Lock()
	id := h.nextSub
	h.nextSub++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *fragmentHub) broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}

// pushNewsList reloads news and sends the list to every open page, used after a publish
// so the item shows as published without a manual refresh
func (s *Server) pushNewsList(ctx context.Context) {
	s.reloadNews(ctx)
	list := s.newsView()
	list.OOB = true
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateNewsList, list); err != nil {
		log.Printf("[WARN] can't render news list for the publish stream: %v", err)
		return
	}
	s.fragments.broadcast(buf.Bytes())
}
