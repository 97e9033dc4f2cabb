// Package jobs runs scheduled background work.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"booktable-api/models"
	"booktable-api/notify"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

type Notifier interface {
	Dispatch(msg notify.Message)
}

// ReminderJob notifies every customer holding a reservation dated today.
type ReminderJob struct {
	DB       *gorm.DB
	Notifier Notifier
	Log      *slog.Logger
	Now      func() time.Time
}

// Run returns how many reminders were dispatched.
func (j *ReminderJob) Run(ctx context.Context) (int, error) {
	now := time.Now
	if j.Now != nil {
		now = j.Now
	}
	today := now().Format("2006-01-02")

	var rows []models.Reservation
	err := j.DB.WithContext(ctx).
		Preload("User").Preload("Restaurant").
		Where("date = ?", today).
		Order("time, id").
		Find(&rows).Error
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, r := range rows {
		if r.User == nil || r.Restaurant == nil {
			continue
		}
		j.Notifier.Dispatch(notify.BookingReminder(r.User.Email, r.User.FullName, r.User.Phone, notify.BookingDetails{
			ReservationID:  r.ID,
			RestaurantName: r.Restaurant.Name,
			Address:        r.Restaurant.Address,
			Contact:        r.Restaurant.ContactPhone,
			Date:           r.Date,
			Time:           r.Time,
			People:         r.PartySize,
		}))
		sent++
	}
	return sent, nil
}

// Scheduler wraps a cron runner with logging.
type Scheduler struct {
	cron *cron.Cron
	log  *slog.Logger
}

func NewScheduler(log *slog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		log:  log,
	}
}

// AddReminders schedules the reminder job on a standard five field spec.
func (s *Scheduler) AddReminders(spec string, job *ReminderJob) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n, err := job.Run(ctx)
		if err != nil {
			s.log.Error("reminder job failed", slog.Any("error", err))
			return
		}
		s.log.Info("reminders dispatched", slog.Int("count", n))
	})
	return err
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}
