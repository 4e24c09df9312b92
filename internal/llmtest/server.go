// Package llmtest provides a scripted chat-completions server for tests.
package llmtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Message is a decoded request message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a decoded chat-completion request.
type Request struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	MaxTokens int64     `json:"max_tokens"`
}

// Reply scripts one response. A non-zero Status returns an API error.
type Reply struct {
	Content string
	Status  int
}

// Server answers chat-completion requests with scripted replies in order.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	replies  []Reply
	requests []Request
}

// NewServer starts a server that is closed when the test ends.
func NewServer(t *testing.T, replies ...Reply) *Server {
	t.Helper()
	s := &Server{replies: replies}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	var reply Reply
	if len(s.replies) > 0 {
		reply = s.replies[0]
		s.replies = s.replies[1:]
	} else {
		reply = Reply{Status: http.StatusInternalServerError, Content: "no scripted reply"}
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if reply.Status != 0 {
		w.WriteHeader(reply.Status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": reply.Content,
				"type":    "invalid_request_error",
			},
		})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1,
		"model":   req.Model,
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": reply.Content,
				},
			},
		},
	})
}
