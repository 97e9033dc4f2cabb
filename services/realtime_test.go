package services

import (
	"context"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"booktable-api/events"
	"booktable-api/logging"
	"booktable-api/models"
	"booktable-api/realtime"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBooking_StalledSubscriberDoesNotDelayBook(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	customer := e.user(t, "c@example.com", models.RoleCustomer)
	r := e.restaurant(t, "Watched", "Dayton", models.ApprovalApproved)
	tb := e.table(t, r.ID, 4, "17:00", "18:00", "19:00", "20:00")

	gin.SetMode(gin.TestMode)
	hub := realtime.NewHub(logging.Discard(), []string{"*"})
	router := gin.New()
	router.GET("/ws/restaurants/:id", hub.ServeWS)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	e.deps.Events = events.Fanout{hub, e.publisher}

	// subscribe and never read
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/restaurants/" + strconv.FormatUint(uint64(r.ID), 10)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool { return hub.Subscribers(r.ID) == 1 }, time.Second, 10*time.Millisecond)

	backlog := events.New(events.ReservationCreated, r.ID)
	backlog.Status = strings.Repeat("x", 4096)
	for i := 0; i < 5000; i++ {
		require.NoError(t, hub.Publish(ctx, backlog))
	}

	for _, slot := range []string{"17:00", "18:00", "19:00", "20:00"} {
		start := time.Now()
		_, err := e.svc.Booking.Book(ctx, customer, BookRequest{RestaurantID: r.ID, TableID: tb.ID, Date: "2025-06-03", Time: slot, PartySize: 2})
		require.NoError(t, err)
		assert.Less(t, time.Since(start), time.Second, "booking at %s", slot)
	}
	assert.Len(t, e.publisher.types(), 4)
}
