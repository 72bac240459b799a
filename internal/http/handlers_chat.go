package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"bilancio/internal/insight"
)

type chatRequest struct {
	Question    string `json:"question"`
	Name        string `json:"name"`
	PartnerName string `json:"partnerName"`
	Currency    string `json:"currency"`
}

func (req chatRequest) profile() insight.Profile {
	return insight.Profile{
		Name:        sanitizeInput(req.Name),
		PartnerName: sanitizeInput(req.PartnerName),
		Currency:    sanitizeInput(req.Currency),
	}
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.chat == nil {
		writeError(w, http.StatusServiceUnavailable, "chat is not configured")
		return
	}

	couple, err := coupleID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answer, err := s.chat.Ask(r.Context(), couple, req.profile(), req.Question)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"answer": answer})
}

type wsChatReply struct {
	Answer string `json:"answer,omitempty"`
	Error  string `json:"error,omitempty"`
}

// handleChatSocket runs a question/answer loop over a WebSocket. Each inbound
// frame is an independent chatRequest; context is rebuilt per question so
// answers always reflect the current ledger.
func (s *Server) handleChatSocket(w http.ResponseWriter, r *http.Request) {
	if s.chat == nil {
		writeError(w, http.StatusServiceUnavailable, "chat is not configured")
		return
	}

	couple, err := coupleID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.ErrorContext(r.Context(), "WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	slog.InfoContext(r.Context(), "Chat socket opened", "couple_id", couple)

	for {
		var req chatRequest
		if err := conn.ReadJSON(&req); err != nil {
			slog.DebugContext(r.Context(), "Chat socket closed", "couple_id", couple, "reason", err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
		answer, err := s.chat.Ask(ctx, couple, req.profile(), req.Question)
		cancel()

		reply := wsChatReply{Answer: answer}
		if err != nil {
			reply = wsChatReply{Error: err.Error()}
		}
		if err := conn.WriteJSON(reply); err != nil {
			slog.DebugContext(r.Context(), "Chat socket write failed", "couple_id", couple, "error", err)
			return
		}
	}
}
