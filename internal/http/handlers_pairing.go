package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"bilancio/internal/core"
)

type invitationDTO struct {
	ID           int64  `json:"id"`
	Token        string `json:"token"`
	InviteeEmail string `json:"inviteeEmail"`
	Status       string `json:"status"`
	ExpiresAt    string `json:"expiresAt"`
}

func toInvitationDTO(inv core.Invitation) invitationDTO {
	return invitationDTO{
		ID:           inv.ID,
		Token:        inv.Token,
		InviteeEmail: inv.InviteeEmail,
		Status:       string(inv.Status),
		ExpiresAt:    inv.ExpiresAt.Format(time.RFC3339),
	}
}

type createInvitationRequest struct {
	InviterID    string `json:"inviterId"`
	InviteeEmail string `json:"inviteeEmail"`
}

func (s *Server) handleCreateInvitation(w http.ResponseWriter, r *http.Request) {
	couple, err := coupleID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var req createInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	inv, err := s.pairing.Invite(r.Context(), couple,
		sanitizeInput(req.InviterID), sanitizeInput(req.InviteeEmail), time.Now())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toInvitationDTO(inv))
}

type acceptInvitationRequest struct {
	Token string `json:"token"`
}

func (s *Server) handleAcceptInvitation(w http.ResponseWriter, r *http.Request) {
	var req acceptInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Token) == "" {
		writeError(w, http.StatusBadRequest, "missing token")
		return
	}

	inv, err := s.pairing.Accept(r.Context(), strings.TrimSpace(req.Token), time.Now())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"coupleId": inv.CoupleID,
		"status":   string(inv.Status),
	})
}
