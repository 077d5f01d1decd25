package server

import (
	"log"
	"net/http"
)

// rssHandler serves published news as RSS, filtered by the same asset and source query as the console list.
// The feed reads the store directly, the console's own snapshot and filter are left alone.
func (s *Server) rssHandler(w http.ResponseWriter, r *http.Request) {
	filter := newsFilter(r)

	items, err := s.store.ListNews(r.Context(), filter)
	if err != nil {
		log.Printf("[ERROR] failed to get news for RSS: %v", err)
		http.Error(w, "Failed to generate RSS feed", http.StatusBadGateway)
		return
	}

	rss, err := s.rss.GenerateRSS(items, filter)
	if err != nil {
		log.Printf("[ERROR] failed to generate RSS feed: %v", err)
		http.Error(w, "Failed to generate RSS feed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if _, err := w.Write([]byte(rss)); err != nil {
		log.Printf("[ERROR] failed to write RSS response: %v", err)
	}
}
