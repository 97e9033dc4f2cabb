package statemachine

import (
	"testing"

	"booktable-api/models"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    models.ApprovalStatus
		to      models.ApprovalStatus
		actor   models.UserRole
		wantErr error
	}{
		{"admin approves", models.ApprovalPending, models.ApprovalApproved, models.RoleAdmin, nil},
		{"admin rejects", models.ApprovalPending, models.ApprovalRejected, models.RoleAdmin, nil},
		{"manager cannot approve", models.ApprovalPending, models.ApprovalApproved, models.RoleManager, ErrNotPermitted},
		{"pending to pending", models.ApprovalPending, models.ApprovalPending, models.RoleAdmin, ErrNotPermitted},
		{"approved is terminal", models.ApprovalApproved, models.ApprovalRejected, models.RoleAdmin, ErrTerminal},
		{"rejected is terminal", models.ApprovalRejected, models.ApprovalApproved, models.RoleAdmin, ErrTerminal},
		{"no way back to pending", models.ApprovalApproved, models.ApprovalPending, models.RoleAdmin, ErrTerminal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := CanTransition(tc.from, tc.to, tc.actor)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestValidTransitionsFrom(t *testing.T) {
	assert.ElementsMatch(t,
		[]models.ApprovalStatus{models.ApprovalApproved, models.ApprovalRejected},
		ValidTransitionsFrom(models.ApprovalPending))
	assert.True(t, IsTerminal(models.ApprovalApproved))
	assert.True(t, IsTerminal(models.ApprovalRejected))
	assert.False(t, IsTerminal(models.ApprovalPending))
	assert.Len(t, GetAllTransitions(), 2)
}
