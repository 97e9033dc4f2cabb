// Package notify delivers booking notifications by email and SMS. Delivery
// is best effort: failures are logged and never reach the caller.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Message is one notification to one person over every channel that can
// reach them.
type Message struct {
	ToEmail string
	ToName  string
	ToPhone string
	Subject string
	HTML    string
	Text    string
}

type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Dispatcher sends messages on background goroutines.
type Dispatcher struct {
	senders []Sender
	log     *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(log *slog.Logger, timeout time.Duration, senders ...Sender) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{senders: senders, log: log, timeout: timeout}
}

// Dispatch returns immediately.
func (d *Dispatcher) Dispatch(msg Message) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.send(msg)
	}()
}

func (d *Dispatcher) send(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	for _, s := range d.senders {
		if err := s.Send(ctx, msg); err != nil {
			d.log.Warn("notification failed",
				slog.String("channel", s.Name()),
				slog.String("subject", msg.Subject),
				slog.Any("error", err))
			continue
		}
		d.log.Debug("notification sent", slog.String("channel", s.Name()), slog.String("subject", msg.Subject))
	}
}

// Wait blocks until every dispatched message has been attempted.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// LogSender writes notifications to the log; used when no provider is set.
type LogSender struct {
	Log *slog.Logger
}

func (LogSender) Name() string { return "log" }

func (s LogSender) Send(_ context.Context, msg Message) error {
	s.Log.Info("notification", slog.String("to", msg.ToEmail), slog.String("subject", msg.Subject))
	return nil
}
