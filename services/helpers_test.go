package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"booktable-api/config"
	"booktable-api/events"
	"booktable-api/logging"
	"booktable-api/models"
	"booktable-api/notify"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (n *recordingNotifier) Dispatch(msg notify.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.msgs)
}

type stubTokens struct{ err error }

func (s stubTokens) GenerateToken(u *models.User) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "token-for-" + u.Email, nil
}

type env struct {
	db        *gorm.DB
	deps      *Deps
	svc       *Services
	publisher *recordingPublisher
	notifier  *recordingNotifier
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := config.OpenDB("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	pub := &recordingPublisher{}
	n := &recordingNotifier{}
	deps := &Deps{
		DB:       db,
		Log:      logging.Discard(),
		Events:   pub,
		Notifier: n,
		Tokens:   stubTokens{},
		Now:      func() time.Time { return fixedNow },
	}
	return &env{db: db, deps: deps, svc: New(deps), publisher: pub, notifier: n}
}

func (e *env) user(t *testing.T, email string, role models.UserRole) Caller {
	t.Helper()
	u := models.User{Email: email, FullName: email, PasswordHash: "x", Role: role}
	require.NoError(t, e.db.Create(&u).Error)
	return Caller{UserID: u.ID, Role: role}
}

func (e *env) restaurant(t *testing.T, name, city string, status models.ApprovalStatus) *models.Restaurant {
	t.Helper()
	r := models.Restaurant{Name: name, Cuisine: "Italian", CostRating: 2, City: city, State: "CA", ZipCode: "95112"}
	require.NoError(t, e.db.Create(&r).Error)
	require.NoError(t, e.db.Create(&models.Approval{RestaurantID: r.ID, Status: status}).Error)
	return &r
}

func (e *env) table(t *testing.T, restaurantID uint, size int, times ...string) *models.Table {
	t.Helper()
	tb := models.Table{RestaurantID: restaurantID, Size: size, AvailableTimes: models.JoinTimes(times)}
	require.NoError(t, e.db.Create(&tb).Error)
	return &tb
}

func (e *env) totalBookings(t *testing.T, restaurantID uint) int {
	t.Helper()
	var r models.Restaurant
	require.NoError(t, e.db.First(&r, restaurantID).Error)
	return r.TotalBookings
}

var errBoom = errors.New("boom")
