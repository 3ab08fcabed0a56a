package documents

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition_LegalPathsAllowed(t *testing.T) {
	cases := []struct{ from, to Status }{
		{StatusDraft, StatusUploaded},
		{StatusUploaded, StatusPendingValidation},
		{StatusUploaded, StatusValidated},
		{StatusPendingValidation, StatusValidated},
		{StatusUploaded, StatusRejected},
		{StatusValidated, StatusRejected},
		{StatusValidated, StatusComplianceOK},
		{StatusValidated, StatusComplianceFailed},
		{StatusComplianceOK, StatusLinked},
		{StatusComplianceFailed, StatusLinked},
		{StatusLinked, StatusArchived},
	}
	for _, c := range cases {
		assert.Truef(t, CanTransition(c.from, c.to), "%s -> %s should be legal", c.from, c.to)
	}
}

func TestCanTransition_IllegalPathsRejected(t *testing.T) {
	cases := []struct{ from, to Status }{
		{StatusDraft, StatusValidated},
		{StatusDraft, StatusLinked},
		{StatusLinked, StatusValidated},
		{StatusArchived, StatusUploaded},
		{StatusComplianceOK, StatusValidated},
	}
	for _, c := range cases {
		assert.Falsef(t, CanTransition(c.from, c.to), "%s -> %s should be illegal", c.from, c.to)
	}
}

func TestCanTransition_ExpiryFromAnyNonTerminal(t *testing.T) {
	nonTerminal := []Status{
		StatusDraft, StatusUploaded, StatusPendingValidation, StatusValidated,
		StatusComplianceOK, StatusComplianceFailed, StatusLinked,
	}
	for _, s := range nonTerminal {
		assert.True(t, CanTransition(s, StatusExpired))
	}
	for s := range terminalStates {
		assert.False(t, CanTransition(s, StatusExpired))
	}
}
