// Package youtubetest serves a minimal fake of the YouTube Data API v3
// channels, playlistItems and videos endpoints for tests.
package youtubetest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/goccy/go-json"
)

// Video is a fake video resource.
type Video struct {
	ID          string
	Title       string
	PublishedAt string
	// Comments is omitted from the response when nil.
	Comments *uint64
	// NoStatistics drops the statistics object entirely.
	NoStatistics bool
}

// Channel is a fake channel with its uploads playlist split into pages.
type Channel struct {
	ID      string
	Uploads string
	Pages   [][]string
}

// Server is an httptest server impersonating the Data API.
type Server struct {
	*httptest.Server

	// Key, when set, is the only API key accepted.
	Key string

	mu       sync.Mutex
	channels map[string]Channel
	videos   map[string]Video
	requests []Request
}

// Request records one call received by the server.
type Request struct {
	Path       string
	ID         string
	PlaylistID string
	PageToken  string
	MaxResults int
	Key        string
}

// NewServer starts a server closed at the end of the test.
func NewServer(t *testing.T) *Server {
	t.Helper()
	s := &Server{
		channels: map[string]Channel{},
		videos:   map[string]Video{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/youtube/v3/channels", s.handleChannels)
	mux.HandleFunc("/youtube/v3/playlistItems", s.handlePlaylistItems)
	mux.HandleFunc("/youtube/v3/videos", s.handleVideos)
	s.Server = httptest.NewServer(s.authorize(mux))
	t.Cleanup(s.Close)
	return s
}

// Endpoint is the API root to hand to the client.
func (s *Server) Endpoint() string {
	return s.URL + "/"
}

// AddChannel registers c.
func (s *Server) AddChannel(c Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels[c.ID] = c
}

// AddVideos registers vs.
func (s *Server) AddVideos(vs ...Video) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vs {
		s.videos[v.ID] = v
	}
}

// Requests returns the calls received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns a pointer to n, for Video.Comments.
func Count(n uint64) *uint64 {
	return &n
}

func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		maxResults, _ := strconv.Atoi(q.Get("maxResults"))
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Path:       r.URL.Path,
			ID:         q.Get("id"),
			PlaylistID: q.Get("playlistId"),
			PageToken:  q.Get("pageToken"),
			MaxResults: maxResults,
			Key:        q.Get("key"),
		})
		s.mu.Unlock()

		if s.Key != "" && q.Get("key") != s.Key {
			writeError(w, http.StatusBadRequest, "keyInvalid", "API key not valid. Please pass a valid API key.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleChannels(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	c, ok := s.channels[r.URL.Query().Get("id")]
	s.mu.Unlock()

	items := []any{}
	if ok {
		items = append(items, map[string]any{
			"kind": "youtube#channel",
			"id":   c.ID,
			"contentDetails": map[string]any{
				"relatedPlaylists": map[string]any{"uploads": c.Uploads},
			},
		})
	}
	writeJSON(w, map[string]any{"kind": "youtube#channelListResponse", "items": items})
}

func (s *Server) handlePlaylistItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	s.mu.Lock()
	var pages [][]string
	found := false
	for _, c := range s.channels {
		if c.Uploads == q.Get("playlistId") {
			pages, found = c.Pages, true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "playlistNotFound", "The playlist identified with the request's playlistId parameter cannot be found.")
		return
	}

	page := 0
	if tok := q.Get("pageToken"); tok != "" {
		if _, err := fmt.Sscanf(tok, "page-%d", &page); err != nil || page >= len(pages) {
			writeError(w, http.StatusBadRequest, "invalidPageToken", "The request specifies an invalid page token.")
			return
		}
	}

	items := []any{}
	resp := map[string]any{"kind": "youtube#playlistItemListResponse"}
	if page < len(pages) {
		for _, id := range pages[page] {
			items = append(items, map[string]any{
				"kind": "youtube#playlistItem",
				"id":   "item-" + id,
				"snippet": map[string]any{
					"resourceId": map[string]any{"kind": "youtube#video", "videoId": id},
				},
			})
		}
		if page+1 < len(pages) {
			resp["nextPageToken"] = fmt.Sprintf("page-%d", page+1)
		}
	}
	resp["items"] = items
	writeJSON(w, resp)
}

func (s *Server) handleVideos(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	v, ok := s.videos[r.URL.Query().Get("id")]
	s.mu.Unlock()

	items := []any{}
	if ok {
		item := map[string]any{
			"kind": "youtube#video",
			"id":   v.ID,
			"snippet": map[string]any{
				"title":       v.Title,
				"publishedAt": v.PublishedAt,
			},
		}
		if !v.NoStatistics {
			st := map[string]any{"viewCount": "1"}
			if v.Comments != nil {
				st["commentCount"] = strconv.FormatUint(*v.Comments, 10)
			}
			item["statistics"] = st
		}
		items = append(items, item)
	}
	writeJSON(w, map[string]any{"kind": "youtube#videoListResponse", "items": items})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, reason, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
			"errors": []any{
				map[string]any{"reason": reason, "domain": "youtube", "message": message},
			},
		},
	})
}
