package services

import (
	"context"
	"testing"
	"time"

	"booktable-api/apperr"
	"booktable-api/cache"
	"booktable-api/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindSlots_FiltersAndOrder(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	first := e.restaurant(t, "First", "San Francisco", models.ApprovalApproved)
	second := e.restaurant(t, "Second", "Oakland", models.ApprovalApproved)
	e.restaurant(t, "Hidden", "San Francisco", models.ApprovalPending)

	small := e.table(t, first.ID, 2, "18:00")
	big := e.table(t, first.ID, 6, "19:00", "17:45", "18:30", "bogus", "18:00")
	other := e.table(t, second.ID, 4, "18:20")

	got, err := e.svc.Search.FindSlots(ctx, AvailabilityQuery{Date: "2025-06-01", Time: "18:15", People: 2})
	require.NoError(t, err)

	type row struct {
		restaurant uint
		table      uint
		time       string
	}
	var rows []row
	for _, m := range got {
		rows = append(rows, row{m.RestaurantID, m.TableID, m.AvailableTime})
	}
	assert.Equal(t, []row{
		{first.ID, small.ID, "18:00"},
		{first.ID, big.ID, "17:45"},
		{first.ID, big.ID, "18:30"},
		{first.ID, big.ID, "18:00"},
		{second.ID, other.ID, "18:20"},
	}, rows)

	got, err = e.svc.Search.FindSlots(ctx, AvailabilityQuery{Date: "2025-06-01", Time: "18:15", People: 5})
	require.NoError(t, err)
	assert.Len(t, got, 3, "only the big table seats five")

	got, err = e.svc.Search.FindSlots(ctx, AvailabilityQuery{Date: "2025-06-01", Time: "18:15", People: 2,
		RestaurantFilter: RestaurantFilter{City: "oak"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Second", got[0].RestaurantName)

	got, err = e.svc.Search.FindSlots(ctx, AvailabilityQuery{Date: "2025-06-01", Time: "18:15", People: 2,
		RestaurantFilter: RestaurantFilter{ZipCode: "9511"}})
	require.NoError(t, err)
	assert.Empty(t, got, "zip code must match exactly")

	got, err = e.svc.Search.FindSlots(ctx, AvailabilityQuery{Date: "2025-06-01", Time: "03:00", People: 2})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFindSlots_IgnoresExistingBookings(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	customer := e.user(t, "c@example.com", models.RoleCustomer)
	r := e.restaurant(t, "Optimistic", "Reno", models.ApprovalApproved)
	tb := e.table(t, r.ID, 2, "18:00")
	_, err := e.svc.Booking.Book(ctx, customer, BookRequest{RestaurantID: r.ID, TableID: tb.ID, Date: "2025-06-01", Time: "18:00", PartySize: 2})
	require.NoError(t, err)

	got, err := e.svc.Search.FindSlots(ctx, AvailabilityQuery{Date: "2025-06-01", Time: "18:00", People: 2})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFindSlots_Validation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	for _, q := range []AvailabilityQuery{
		{Date: "2025-13-01", Time: "18:00", People: 2},
		{Date: "2025-06-01", Time: "18:0", People: 2},
		{Date: "2025-06-01", Time: "24:00", People: 2},
		{Date: "2025-06-01", Time: "18:00", People: 0},
	} {
		_, err := e.svc.Search.FindSlots(ctx, q)
		assert.ErrorIs(t, err, apperr.ErrValidation, "%+v", q)
	}
}

func TestFindSlots_UsesCacheUntilInvalidated(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	e.deps.Cache = cache.NewSearchCache(client, time.Minute)

	manager := e.user(t, "m@example.com", models.RoleManager)
	r := e.restaurant(t, "Cached", "Provo", models.ApprovalApproved)
	require.NoError(t, e.db.Model(r).Update("owner_id", manager.UserID).Error)
	tb := e.table(t, r.ID, 4, "18:00")

	q := AvailabilityQuery{Date: "2025-06-01", Time: "18:00", People: 2}
	got, err := e.svc.Search.FindSlots(ctx, q)
	require.NoError(t, err)
	require.Len(t, got, 1)

	// bypass the service so the cache is not told
	require.NoError(t, e.db.Model(tb).Update("available_times", "21:00").Error)
	got, err = e.svc.Search.FindSlots(ctx, q)
	require.NoError(t, err)
	assert.Len(t, got, 1, "served from cache")

	_, err = e.svc.Restaurants.AddTable(ctx, manager, r.ID, TableInput{Size: 2, AvailableTimes: []string{"18:30"}})
	require.NoError(t, err)
	got, err = e.svc.Search.FindSlots(ctx, q)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "18:30", got[0].AvailableTime)
}

func TestFindSlots_CacheDownFallsBackToDatabase(t *testing.T) {
	e := newEnv(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	e.deps.Cache = cache.NewSearchCache(client, time.Minute)
	mr.Close()

	r := e.restaurant(t, "NoRedis", "Boise", models.ApprovalApproved)
	e.table(t, r.ID, 2, "18:00")
	got, err := e.svc.Search.FindSlots(context.Background(), AvailabilityQuery{Date: "2025-06-01", Time: "18:00", People: 2})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSearchRestaurants(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.restaurant(t, "Blue Door Cafe", "New York", models.ApprovalApproved)
	e.restaurant(t, "Red Door", "Newark", models.ApprovalRejected)

	got, err := e.svc.Search.SearchRestaurants(ctx, RestaurantFilter{City: "NEW", Cuisine: "ital"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Blue Door Cafe", got[0].Name)
	assert.Equal(t, "https://www.google.com/maps/search/?api=1&query=Blue+Door+Cafe+95112+New+York+CA", got[0].MapsURL)

	got, err = e.svc.Search.SearchRestaurants(ctx, RestaurantFilter{Cuisine: "thai"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

// invalidatingCache bumps the restaurant version between the lookup and the
// write, the way a concurrent booking would.
type invalidatingCache struct {
	*cache.SearchCache
	restaurantID uint
}

func (c invalidatingCache) Set(ctx context.Context, entryKey string, val any) error {
	if err := c.Invalidate(ctx, c.restaurantID); err != nil {
		return err
	}
	return c.SearchCache.Set(ctx, entryKey, val)
}

func TestFindSlots_InvalidationDuringLookupIsNotMasked(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	r := e.restaurant(t, "Racy", "Ogden", models.ApprovalApproved)
	tb := e.table(t, r.ID, 4, "18:00")
	e.deps.Cache = invalidatingCache{SearchCache: cache.NewSearchCache(client, time.Minute), restaurantID: r.ID}

	q := AvailabilityQuery{Date: "2025-06-01", Time: "18:00", People: 2}
	got, err := e.svc.Search.FindSlots(ctx, q)
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.NoError(t, e.db.Model(tb).Update("available_times", "21:00").Error)
	got, err = e.svc.Search.FindSlots(ctx, q)
	require.NoError(t, err)
	assert.Empty(t, got)
}
