// Package server exposes the feed over a small JSON HTTP API.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/0x0BSoD/newsfeed/internal/feedstore"
	"github.com/0x0BSoD/newsfeed/internal/model"
	"github.com/0x0BSoD/newsfeed/internal/view"
)

type Feed interface {
	View(category, term string) (feedstore.Snapshot, []model.Item)
	Trending(filtered []model.Item) []model.Item
	Item(key string) (model.Item, bool)
	RefreshNow(category string)
}

type Server struct {
	feed   Feed
	router chi.Router
}

func New(feed Feed) *Server {
	s := &Server{feed: feed}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/news", s.handleNews)
		r.Get("/news/{key}", s.handleItem)
		r.Get("/categories", s.handleCategories)
		r.Post("/refresh", s.handleRefresh)
	})

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type newsResponse struct {
	State         view.State   `json:"state"`
	Items         []model.Item `json:"items"`
	Trending      []model.Item `json:"trending"`
	IsRefreshing  bool         `json:"isRefreshing"`
	LastError     string       `json:"lastError,omitempty"`
	LastRefreshAt *time.Time   `json:"lastRefreshAt,omitempty"`
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	term := r.URL.Query().Get("q")

	snap, filtered := s.feed.View(category, term)

	resp := newsResponse{
		State:        view.StateOf(snap),
		Items:        filtered,
		Trending:     view.Prominent(s.feed.Trending(filtered)),
		IsRefreshing: snap.IsRefreshing,
		LastError:    snap.LastError,
	}
	if !snap.LastRefreshAt.IsZero() {
		at := snap.LastRefreshAt
		resp.LastRefreshAt = &at
	}

	writeJSON(w, http.StatusOK, resp)
}

type itemResponse struct {
	model.Item
	Body string `json:"body"`
}

func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	item, ok := s.feed.Item(chi.URLParam(r, "key"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	writeJSON(w, http.StatusOK, itemResponse{Item: item, Body: item.Body()})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, append([]string{model.CategoryAll}, model.Categories...))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.feed.RefreshNow(r.URL.Query().Get("category"))
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "refreshing"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "err", err)
	}
}
