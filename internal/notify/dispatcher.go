package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"sitebackend/internal/domain/models"
	"sitebackend/internal/metrics"
	"sitebackend/internal/utils"
)

type Kind string

const (
	KindNewBooking         Kind = "new_booking"
	KindBookingCancelled   Kind = "booking_cancelled"
	KindBookingRescheduled Kind = "booking_rescheduled"
	KindCustomEmail        Kind = "custom_email"
)

// ErrDisabled is returned by a sink that is not configured for a kind.
var ErrDisabled = errors.New("notification disabled")

// Event is the JSON payload delivered to every sink.
type Event struct {
	Kind      Kind                        `json:"event"`
	Booking   *models.Booking             `json:"booking,omitempty"`
	Previous  *models.Booking             `json:"previous,omitempty"`
	Links     map[string]string           `json:"links,omitempty"`
	Email     *models.TriggerEmailRequest `json:"email,omitempty"`
	RequestID string                      `json:"request_id,omitempty"`
	SentAt    time.Time                   `json:"sent_at"`
}

type Sink interface {
	Name() string
	Send(ctx context.Context, ev Event) error
}

// Dispatcher delivers events off the request path. Each sink is attempted
// once; failures are logged and counted, never returned to the caller.
type Dispatcher struct {
	sinks []Sink
	wg    sync.WaitGroup
	now   func() time.Time
}

func NewDispatcher(sinks ...Sink) *Dispatcher {
	return &Dispatcher{sinks: sinks, now: time.Now}
}

// Dispatch hands ev to a background goroutine and returns immediately. The
// goroutine keeps the request's values but not its cancellation.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) {
	if d == nil || len(d.sinks) == 0 {
		return
	}
	if ev.SentAt.IsZero() {
		ev.SentAt = d.now().UTC()
	}
	if ev.RequestID == "" {
		ev.RequestID = utils.RequestIDFrom(ctx)
	}
	bg := context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for _, s := range d.sinks {
			d.deliver(bg, s, ev)
		}
	}()
}

func (d *Dispatcher) deliver(ctx context.Context, s Sink, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			metrics.ObserveNotification(string(ev.Kind), s.Name(), "failed")
			utils.LogCtx(ctx, "notify", string(ev.Kind), fmt.Sprintf("sink=%s panic=%v", s.Name(), r))
		}
	}()

	err := s.Send(ctx, ev)
	switch {
	case errors.Is(err, ErrDisabled):
		metrics.ObserveNotification(string(ev.Kind), s.Name(), "skipped")
	case err != nil:
		metrics.ObserveNotification(string(ev.Kind), s.Name(), "failed")
		utils.LogCtx(ctx, "notify", string(ev.Kind), fmt.Sprintf("sink=%s failed: %v", s.Name(), err))
	default:
		metrics.ObserveNotification(string(ev.Kind), s.Name(), "sent")
	}
}

// Wait blocks until in-flight deliveries finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	if d == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
