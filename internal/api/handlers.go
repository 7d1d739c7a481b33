package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// askRequest is a one-shot question with no session to come back to.
type askRequest struct {
	Message string `json:"message"`
}

// chatRequest continues a conversation. A blank session_id opens a new
// one; the reply carries the id to send back on the next turn.
type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type resetRequest struct {
	SessionID string `json:"session_id"`
}

// ask handles POST /api/v1/ask. Each call runs in a fresh session that
// the idle sweep later collects.
func (s *Server) ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply := s.pipeline.HandleTurn(r.Context(), "", req.Message)
	respondJSON(w, http.StatusOK, reply)
}

// chat handles POST /api/v1/chat.
func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply := s.pipeline.HandleTurn(r.Context(), req.SessionID, req.Message)
	respondJSON(w, http.StatusOK, reply)
}

// reset handles POST /api/v1/chat/reset.
func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SessionID == "" {
		respondError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	s.pipeline.Reset(r.Context(), req.SessionID)
	respondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
