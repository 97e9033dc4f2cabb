package services

import (
	"context"
	"testing"

	"booktable-api/apperr"
	"booktable-api/events"
	"booktable-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func approvalFor(t *testing.T, e *env, restaurantID uint) models.Approval {
	t.Helper()
	var a models.Approval
	require.NoError(t, e.db.Where("restaurant_id = ?", restaurantID).First(&a).Error)
	return a
}

func TestApproval_GateControlsVisibility(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.user(t, "admin@example.com", models.RoleAdmin)
	customer := e.user(t, "c@example.com", models.RoleCustomer)
	r := e.restaurant(t, "Gated", "Portland", models.ApprovalPending)
	tb := e.table(t, r.ID, 2, "18:00")
	book := BookRequest{RestaurantID: r.ID, TableID: tb.ID, Date: "2025-06-02", Time: "18:00", PartySize: 2}

	assertHidden := func() {
		t.Helper()
		slots, err := e.svc.Search.FindSlots(ctx, AvailabilityQuery{Date: "2025-06-02", Time: "18:00", People: 2})
		require.NoError(t, err)
		assert.Empty(t, slots)
		list, err := e.svc.Search.SearchRestaurants(ctx, RestaurantFilter{})
		require.NoError(t, err)
		assert.Empty(t, list)
		_, err = e.svc.Restaurants.GetPublic(ctx, r.ID)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		_, err = e.svc.Booking.Book(ctx, customer, book)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	}
	assertHidden()

	pending, err := e.svc.Approvals.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Gated", pending[0].RestaurantName)

	decided, err := e.svc.Approvals.Decide(ctx, admin, pending[0].ApprovalID, models.ApprovalApproved, "looks good")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, decided.Status)
	require.NotNil(t, decided.ReviewedBy)
	assert.Equal(t, admin.UserID, *decided.ReviewedBy)
	assert.Contains(t, e.publisher.types(), events.ApprovalDecided)

	got, err := e.svc.Restaurants.GetPublic(ctx, r.ID)
	require.NoError(t, err)
	assert.Len(t, got.Tables, 1)
	_, err = e.svc.Booking.Book(ctx, customer, book)
	require.NoError(t, err)

	pending, err = e.svc.Approvals.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestApproval_RejectedStaysHidden(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.user(t, "admin@example.com", models.RoleAdmin)
	r := e.restaurant(t, "Nope", "Portland", models.ApprovalPending)
	a := approvalFor(t, e, r.ID)

	_, err := e.svc.Approvals.Decide(ctx, admin, a.ID, models.ApprovalRejected, "incomplete")
	require.NoError(t, err)

	_, err = e.svc.Restaurants.GetPublic(ctx, r.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestApproval_DecideRules(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.user(t, "admin@example.com", models.RoleAdmin)
	manager := e.user(t, "m@example.com", models.RoleManager)
	r := e.restaurant(t, "Once", "Salem", models.ApprovalPending)
	a := approvalFor(t, e, r.ID)

	_, err := e.svc.Approvals.Decide(ctx, manager, a.ID, models.ApprovalApproved, "")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = e.svc.Approvals.Decide(ctx, admin, a.ID, models.ApprovalPending, "")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = e.svc.Approvals.Decide(ctx, admin, 999, models.ApprovalApproved, "")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = e.svc.Approvals.Decide(ctx, admin, a.ID, models.ApprovalApproved, "")
	require.NoError(t, err)

	_, err = e.svc.Approvals.Decide(ctx, admin, a.ID, models.ApprovalRejected, "too late")
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	assert.Equal(t, models.ApprovalApproved, approvalFor(t, e, r.ID).Status)
}
