// Package services holds the booking core and the restaurant, review,
// approval, analytics and account operations built around it. Every
// operation takes the caller explicitly; handlers only translate HTTP.
package services

import (
	"context"
	"log/slog"
	"time"

	"booktable-api/events"
	"booktable-api/models"
	"booktable-api/notify"

	"gorm.io/gorm"
)

// Caller is the authenticated principal behind a request.
type Caller struct {
	UserID uint
	Role   models.UserRole
}

type Notifier interface {
	Dispatch(msg notify.Message)
}

// SlotCache stores per-restaurant availability results.
type SlotCache interface {
	Key(ctx context.Context, restaurantID uint, key string) (string, error)
	Get(ctx context.Context, entryKey string, dst any) (bool, error)
	Set(ctx context.Context, entryKey string, val any) error
	Invalidate(ctx context.Context, restaurantID uint) error
}

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	GenerateToken(user *models.User) (string, error)
}

// Deps are the collaborators shared by every service. Only DB is required.
type Deps struct {
	DB       *gorm.DB
	Log      *slog.Logger
	Events   events.Publisher
	Notifier Notifier
	Cache    SlotCache
	Tokens   TokenIssuer
	Now      func() time.Time
}

const publishTimeout = 3 * time.Second

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Deps) today() string {
	return d.now().Format("2006-01-02")
}

func (d *Deps) logger() *slog.Logger {
	if d.Log != nil {
		return d.Log
	}
	return slog.Default()
}

// publish runs after commit; failures are logged only.
func (d *Deps) publish(ctx context.Context, ev events.Event) {
	if d.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := d.Events.Publish(ctx, ev); err != nil {
		d.logger().Warn("event publish failed", slog.String("type", string(ev.Type)), slog.Any("error", err))
	}
}

func (d *Deps) invalidate(ctx context.Context, restaurantID uint) {
	if d.Cache == nil {
		return
	}
	if err := d.Cache.Invalidate(context.WithoutCancel(ctx), restaurantID); err != nil {
		d.logger().Warn("search cache invalidation failed", slog.Uint64("restaurant_id", uint64(restaurantID)), slog.Any("error", err))
	}
}

func (d *Deps) notify(msg notify.Message) {
	if d.Notifier == nil {
		return
	}
	d.Notifier.Dispatch(msg)
}

// Services bundles every service over one set of Deps.
type Services struct {
	Auth        *AuthService
	Booking     *BookingService
	Search      *SearchService
	Reviews     *ReviewService
	Approvals   *ApprovalService
	Restaurants *RestaurantService
	Analytics   *AnalyticsService
}

func New(d *Deps) *Services {
	return &Services{
		Auth:        &AuthService{deps: d},
		Booking:     &BookingService{deps: d},
		Search:      &SearchService{deps: d},
		Reviews:     &ReviewService{deps: d},
		Approvals:   &ApprovalService{deps: d},
		Restaurants: &RestaurantService{deps: d},
		Analytics:   &AnalyticsService{deps: d},
	}
}
