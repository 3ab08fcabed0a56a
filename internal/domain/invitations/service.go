// Package invitations implements Invitation & Membership (C10): token
// issuance and the single-use, transactional acceptance flow from spec
// §4.8.
package invitations

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arc-self/tracehub/internal/platform/apperr"
	"github.com/arc-self/tracehub/internal/platform/tenant"
	"github.com/arc-self/tracehub/internal/repository/db"
)

const tokenExpiry = 7 * 24 * time.Hour

func newUUID() pgtype.UUID {
	id, _ := uuid.NewV7()
	var u pgtype.UUID
	_ = u.Scan(id.String())
	return u
}

func parseUUID(s string) (pgtype.UUID, error) {
	if s == "" {
		return pgtype.UUID{}, nil
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("%w: invalid id %q", apperr.ErrInvalidInput, s)
	}
	var out pgtype.UUID
	_ = out.Scan(parsed.String())
	return out, nil
}

// newToken returns (plaintext, sha256Hex). The plaintext is surfaced to the
// caller exactly once, in the invitation response URL; only the hash is
// ever persisted (spec: "token itself is never stored").
func newToken() (plaintext, hashHex string, err error) {
	raw := make([]byte, 32)
	if _, err = rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("generate invitation token: %w", err)
	}
	plaintext = base64.RawURLEncoding.EncodeToString(raw)
	sum := sha256.Sum256([]byte(plaintext))
	hashHex = hex.EncodeToString(sum[:])
	return plaintext, hashHex, nil
}

type Service struct {
	pool    *pgxpool.Pool
	querier db.Querier
}

func NewService(pool *pgxpool.Pool, q db.Querier) *Service {
	return &Service{pool: pool, querier: q}
}

type SendInput struct {
	Email   string
	OrgRole tenant.OrgRole
}

// Send requires ActionInvitationsSend; enforced by the API middleware
// calling tenant.Authorize before reaching this service.
func (s *Service) Send(ctx context.Context, in SendInput) (db.Invitation, string, error) {
	tc, err := tenant.MustFromContext(ctx)
	if err != nil {
		return db.Invitation{}, "", err
	}
	if in.Email == "" {
		return db.Invitation{}, "", fmt.Errorf("%w: email is required", apperr.ErrInvalidInput)
	}
	orgID, err := parseUUID(tc.OrganizationID)
	if err != nil {
		return db.Invitation{}, "", err
	}
	actorID, err := parseUUID(tc.UserID)
	if err != nil {
		return db.Invitation{}, "", err
	}
	plaintext, hashHex, err := newToken()
	if err != nil {
		return db.Invitation{}, "", err
	}

	var expiresAt pgtype.Timestamptz
	_ = expiresAt.Scan(time.Now().Add(tokenExpiry))

	inv, err := s.querier.CreateInvitation(ctx, db.CreateInvitationParams{
		ID: newUUID(), OrganizationID: orgID, Email: in.Email, OrgRole: string(in.OrgRole),
		TokenHash: hashHex, ExpiresAt: expiresAt, CreatedBy: actorID,
	})
	if err != nil {
		return db.Invitation{}, "", err
	}
	return inv, plaintext, nil
}

// Resend issues a fresh token for a still-pending invitation, replacing the
// stored hash and pushing the expiry out another 7 days.
func (s *Service) Resend(ctx context.Context, invitationID string) (string, error) {
	id, err := parseUUID(invitationID)
	if err != nil {
		return "", err
	}
	plaintext, hashHex, err := newToken()
	if err != nil {
		return "", err
	}
	var expiresAt pgtype.Timestamptz
	_ = expiresAt.Scan(time.Now().Add(tokenExpiry))

	if err := s.querier.UpdateInvitationToken(ctx, db.UpdateInvitationTokenParams{
		ID: id, TokenHash: hashHex, ExpiresAt: expiresAt,
	}); err != nil {
		return "", err
	}
	return plaintext, nil
}

type AcceptInput struct {
	Token        string
	FullName     string
	PasswordHash string
}

// Accept resolves the plaintext token to its invitation, re-verifies it is
// still pending and unexpired, then creates (or reuses) the invited user
// and their membership, all in one transaction. Any subsequent acceptance
// of the same token fails with apperr.ErrAlreadyUsed (spec: "single-use").
func (s *Service) Accept(ctx context.Context, in AcceptInput) (db.User, error) {
	if in.Token == "" {
		return db.User{}, fmt.Errorf("%w: token is required", apperr.ErrInvalidInput)
	}
	sum := sha256.Sum256([]byte(in.Token))
	hashHex := hex.EncodeToString(sum[:])

	inv, err := s.querier.GetInvitationByTokenHash(ctx, hashHex)
	if err != nil {
		return db.User{}, fmt.Errorf("%w: invitation", apperr.ErrNotFound)
	}
	if inv.Status != "pending" {
		return db.User{}, fmt.Errorf("%w: invitation", apperr.ErrAlreadyUsed)
	}
	if inv.ExpiresAt.Valid && inv.ExpiresAt.Time.Before(time.Now()) {
		return db.User{}, fmt.Errorf("%w: invitation", apperr.ErrExpired)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return db.User{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)
	// Acceptance happens before the caller has a session of their own; the
	// invitation's own organization_id (already resolved from an unguessable
	// token hash) is the tenant this transaction is scoped to.
	if err := db.BindSession(ctx, tx, inv.OrganizationID.String(), false); err != nil {
		return db.User{}, err
	}
	qtx := db.New(tx)

	// Re-verify inside the transaction to close the race between two
	// concurrent acceptances of the same token.
	fresh, err := qtx.GetInvitationByTokenHash(ctx, hashHex)
	if err != nil {
		return db.User{}, fmt.Errorf("%w: invitation", apperr.ErrNotFound)
	}
	if fresh.Status != "pending" {
		return db.User{}, fmt.Errorf("%w: invitation", apperr.ErrAlreadyUsed)
	}

	user, err := qtx.GetUserByEmail(ctx, fresh.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		user, err = qtx.CreateUser(ctx, db.CreateUserParams{
			ID: newUUID(), Email: fresh.Email, PasswordHash: in.PasswordHash, FullName: in.FullName,
			Role: "member", OrganizationID: fresh.OrganizationID,
		})
	}
	if err != nil {
		return db.User{}, fmt.Errorf("resolve invited user: %w", err)
	}

	// A user invited into a second org (cross-org onboarding) must not get a
	// second primary membership — org_memberships_one_primary_per_user
	// enforces this at the DB level, so check it here first.
	_, err = qtx.GetPrimaryMembership(ctx, user.ID)
	hasPrimary := err == nil
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return db.User{}, fmt.Errorf("check existing primary membership: %w", err)
	}

	if _, err := qtx.CreateMembership(ctx, db.CreateMembershipParams{
		ID: newUUID(), UserID: user.ID, OrganizationID: fresh.OrganizationID, OrgRole: fresh.OrgRole,
		IsPrimary: !hasPrimary, Status: "active",
	}); err != nil {
		return db.User{}, fmt.Errorf("create membership: %w", err)
	}

	if err := qtx.MarkInvitationAccepted(ctx, fresh.ID); err != nil {
		return db.User{}, fmt.Errorf("mark invitation accepted: %w", err)
	}

	return user, tx.Commit(ctx)
}

func (s *Service) Revoke(ctx context.Context, invitationID string) error {
	id, err := parseUUID(invitationID)
	if err != nil {
		return err
	}
	return s.querier.MarkInvitationRevoked(ctx, id)
}

func (s *Service) ListPending(ctx context.Context, orgID string) ([]db.Invitation, error) {
	oid, err := parseUUID(orgID)
	if err != nil {
		return nil, err
	}
	return s.querier.ListPendingInvitationsByOrg(ctx, oid)
}
