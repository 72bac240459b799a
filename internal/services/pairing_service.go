package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/core"
	"bilancio/internal/store"
)

// invitationTTL is how long a pairing invitation stays redeemable.
const invitationTTL = 7 * 24 * time.Hour

// PairingService manages partner invitations: one half of a couple invites
// the other by email, the invitee redeems the token within the TTL.
type PairingService struct {
	invitations store.InvitationStore
}

func NewPairingService(invitations store.InvitationStore) *PairingService {
	return &PairingService{invitations: invitations}
}

// Invite creates a pending invitation with a fresh opaque token.
func (s *PairingService) Invite(ctx context.Context, coupleID, inviterID, inviteeEmail string, now time.Time) (core.Invitation, error) {
	inv := core.Invitation{
		Token:        uuid.NewString(),
		CoupleID:     coupleID,
		InviterID:    inviterID,
		InviteeEmail: inviteeEmail,
		Status:       core.InvitationPending,
		CreatedAt:    now,
		ExpiresAt:    now.Add(invitationTTL),
	}
	if err := inv.Validate(); err != nil {
		return core.Invitation{}, err
	}

	id, err := s.invitations.CreateInvitation(ctx, inv)
	if err != nil {
		return core.Invitation{}, fmt.Errorf("create invitation: %w", err)
	}
	inv.ID = id

	slog.InfoContext(ctx, "Created pairing invitation",
		"couple_id", coupleID,
		"invitation_id", id,
		"expires_at", inv.ExpiresAt)

	return inv, nil
}

// Accept redeems an invitation token. Expired tokens return
// store.ErrInvitationExpired, already-redeemed ones store.ErrInvitationUsed,
// unknown ones store.ErrNotFound.
func (s *PairingService) Accept(ctx context.Context, token string, now time.Time) (core.Invitation, error) {
	inv, err := s.invitations.GetInvitationByToken(ctx, token)
	if err != nil {
		return core.Invitation{}, fmt.Errorf("get invitation: %w", err)
	}

	if inv.Status == core.InvitationAccepted {
		return core.Invitation{}, store.ErrInvitationUsed
	}
	if inv.Expired(now) {
		return core.Invitation{}, store.ErrInvitationExpired
	}

	if err := s.invitations.MarkInvitationAccepted(ctx, token); err != nil {
		return core.Invitation{}, fmt.Errorf("mark invitation accepted: %w", err)
	}
	inv.Status = core.InvitationAccepted

	slog.InfoContext(ctx, "Accepted pairing invitation",
		"couple_id", inv.CoupleID,
		"invitation_id", inv.ID)

	return inv, nil
}
