package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"booktable-api/config"
	"booktable-api/logging"
	"booktable-api/models"
	"booktable-api/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (c *captured) Dispatch(msg notify.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
}

func TestReminderJob_OnlyToday(t *testing.T) {
	db, err := config.OpenDB("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	u := models.User{Email: "ana@example.com", FullName: "Ana", PasswordHash: "x", Role: models.RoleCustomer, Phone: "+15550001"}
	require.NoError(t, db.Create(&u).Error)
	r := models.Restaurant{Name: "Trattoria", Cuisine: "Italian", City: "Rome", State: "GA", ZipCode: "30161"}
	require.NoError(t, db.Create(&r).Error)
	tb := models.Table{RestaurantID: r.ID, Size: 4, AvailableTimes: "18:00,20:00"}
	require.NoError(t, db.Create(&tb).Error)
	for _, res := range []models.Reservation{
		{UserID: u.ID, RestaurantID: r.ID, TableID: tb.ID, Date: "2025-06-01", Time: "20:00", PartySize: 2},
		{UserID: u.ID, RestaurantID: r.ID, TableID: tb.ID, Date: "2025-06-01", Time: "18:00", PartySize: 3},
		{UserID: u.ID, RestaurantID: r.ID, TableID: tb.ID, Date: "2025-06-02", Time: "18:00", PartySize: 2},
	} {
		require.NoError(t, db.Create(&res).Error)
	}

	out := &captured{}
	job := &ReminderJob{
		DB:       db,
		Notifier: out,
		Log:      logging.Discard(),
		Now:      func() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) },
	}
	n, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, out.msgs, 2)
	assert.Equal(t, "ana@example.com", out.msgs[0].ToEmail)
	assert.Contains(t, out.msgs[0].Text, "18:00")
	assert.Contains(t, out.msgs[1].Text, "20:00")
}

func TestScheduler_RejectsBadSpec(t *testing.T) {
	s := NewScheduler(logging.Discard())
	assert.Error(t, s.AddReminders("not a cron spec", &ReminderJob{}))
	require.NoError(t, s.AddReminders("0 9 * * *", &ReminderJob{}))

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
