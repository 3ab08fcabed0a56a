package invitations

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"

	"github.com/arc-self/tracehub/internal/platform/apperr"
	"github.com/arc-self/tracehub/internal/repository/db"
)

type fakeQuerier struct {
	db.Querier
	invitation db.Invitation
	getErr     error
}

func (f *fakeQuerier) GetInvitationByTokenHash(ctx context.Context, hash string) (db.Invitation, error) {
	return f.invitation, f.getErr
}

func hashOf(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func TestAccept_RejectsAlreadyAccepted(t *testing.T) {
	token := "plaintext-token"
	fq := &fakeQuerier{invitation: db.Invitation{Status: "accepted", TokenHash: hashOf(token)}}
	svc := NewService(nil, fq)

	_, err := svc.Accept(context.Background(), AcceptInput{Token: token})
	assert.ErrorIs(t, err, apperr.ErrAlreadyUsed)
}

func TestAccept_RejectsExpired(t *testing.T) {
	token := "plaintext-token"
	var expires pgtype.Timestamptz
	_ = expires.Scan(time.Now().Add(-time.Hour))
	fq := &fakeQuerier{invitation: db.Invitation{Status: "pending", TokenHash: hashOf(token), ExpiresAt: expires}}
	svc := NewService(nil, fq)

	_, err := svc.Accept(context.Background(), AcceptInput{Token: token})
	assert.ErrorIs(t, err, apperr.ErrExpired)
}

func TestAccept_RequiresToken(t *testing.T) {
	svc := NewService(nil, &fakeQuerier{})
	_, err := svc.Accept(context.Background(), AcceptInput{})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestNewToken_HashMatchesPlaintext(t *testing.T) {
	plaintext, hashHex, err := newToken()
	assert.NoError(t, err)
	assert.Equal(t, hashOf(plaintext), hashHex)
	assert.NotEmpty(t, plaintext)
}
