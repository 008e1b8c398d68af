package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"sitebackend/internal/domain"
	"sitebackend/internal/domain/models"
	"sitebackend/internal/metrics"
	"sitebackend/internal/notify"
	"sitebackend/internal/utils"
	"sitebackend/internal/validation"

	"github.com/google/uuid"
)

// BookingStore is the persistence surface the workflow needs.
// repositories.BookingRepo satisfies it.
type BookingStore interface {
	Create(ctx context.Context, b models.Booking) error
	GetByID(ctx context.Context, id string) (models.Booking, error)
	GetByToken(ctx context.Context, token string) (models.Booking, error)
	List(ctx context.Context, f models.BookingFilter) ([]models.Booking, error)
	Update(ctx context.Context, id string, upd models.BookingUpdate) error
	Delete(ctx context.Context, id string) error
	Cancel(ctx context.Context, id string, reason *string, at time.Time) (bool, error)
	Reschedule(ctx context.Context, originalID string, reason *string, at time.Time, replacement models.Booking) (bool, error)
}

type Notifier interface {
	Dispatch(ctx context.Context, ev notify.Event)
}

type BookingService struct {
	Store     BookingStore
	Notifier  Notifier
	Validator *validation.Validator
	BaseURL   string
	Now       func() time.Time
}

// RescheduleResult pairs the superseded booking with its replacement.
type RescheduleResult struct {
	Original models.Booking `json:"original"`
	Booking  models.Booking `json:"booking"`
}

func (s BookingService) now() time.Time { return clock(s.Now) }

func (s BookingService) validate(req any) error {
	v := s.Validator
	if v == nil {
		v = validation.New(s.Now)
	}
	return v.Struct(req)
}

func (s BookingService) notify(ctx context.Context, ev notify.Event) {
	if s.Notifier == nil {
		return
	}
	s.Notifier.Dispatch(ctx, ev)
}

// Links returns the self-service URLs embedded in notifications.
func (s BookingService) Links(token string) map[string]string {
	base := strings.TrimRight(s.BaseURL, "/")
	q := url.QueryEscape(token)
	return map[string]string{
		"cancel":     base + "/booking/cancel?token=" + q,
		"reschedule": base + "/booking/reschedule?token=" + q,
	}
}

func (s BookingService) Create(ctx context.Context, req models.CreateBookingRequest) (models.Booking, error) {
	if err := s.validate(req); err != nil {
		return models.Booking{}, err
	}

	now := s.now()
	b := models.Booking{
		ID:           uuid.NewString(),
		Name:         utils.NormalizeSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Company:      utils.OptionalString(req.Company),
		Phone:        utils.OptionalString(req.Phone),
		Message:      utils.OptionalString(req.Message),
		SelectedDate: req.SelectedDate,
		SelectedTime: strings.TrimSpace(req.SelectedTime),
		Timezone:     utils.OptionalString(req.Timezone),
		Status:       models.BookingPending,
		Token:        uuid.NewString(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Create(ctx, b); err != nil {
		return models.Booking{}, storeErr(ctx, "booking", "create", err)
	}

	metrics.IncBookingTransition(string(b.Status))
	utils.LogCtx(ctx, "booking", "create", "booking_id="+b.ID)
	s.notify(ctx, notify.Event{Kind: notify.KindNewBooking, Booking: &b, Links: s.Links(b.Token)})
	return b, nil
}

func (s BookingService) Get(ctx context.Context, id string) (models.Booking, error) {
	b, err := s.Store.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return models.Booking{}, storeErr(ctx, "booking", "get", err)
	}
	return b, nil
}

func (s BookingService) List(ctx context.Context, f models.BookingFilter) ([]models.Booking, error) {
	if f.Status == "all" {
		f.Status = ""
	}
	if f.Status != "" && !validStatus(f.Status) {
		return nil, domain.ValidationError{Field: "status", Msg: "unknown booking status"}
	}
	for field, d := range map[string]string{"from": f.From, "to": f.To} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(utils.LayoutDate, d); err != nil {
			return nil, domain.ValidationError{Field: field, Msg: "must be a date in YYYY-MM-DD format"}
		}
	}
	list, err := s.Store.List(ctx, f)
	if err != nil {
		return nil, storeErr(ctx, "booking", "list", err)
	}
	return list, nil
}

// Update applies an administrative change. No transition guard applies here;
// only the request schema is enforced.
func (s BookingService) Update(ctx context.Context, id string, req models.UpdateBookingRequest) (models.Booking, error) {
	if err := s.validate(req); err != nil {
		return models.Booking{}, err
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return models.Booking{}, err
	}

	now := s.now()
	upd := models.BookingUpdate{
		SelectedDate:       req.SelectedDate,
		Notes:              req.Notes,
		CancellationReason: req.CancellationReason,
		ConfirmationSent:   req.ConfirmationSent,
		ReminderSent:       req.ReminderSent,
		UpdatedAt:          now,
	}
	if req.SelectedTime != nil {
		t := strings.TrimSpace(*req.SelectedTime)
		upd.SelectedTime = &t
	}
	if req.Status != nil {
		st := models.BookingStatus(*req.Status)
		upd.Status = &st
		switch {
		case st == models.BookingCancelled && current.CancelledAt == nil:
			upd.CancelledAt = &now
		case st == models.BookingRescheduled && current.RescheduledAt == nil:
			upd.RescheduledAt = &now
		}
	}
	if req.ConfirmationSent != nil && *req.ConfirmationSent && current.ConfirmationSentAt == nil {
		upd.ConfirmationSentAt = &now
	}
	if req.ReminderSent != nil && *req.ReminderSent && current.ReminderSentAt == nil {
		upd.ReminderSentAt = &now
	}
	if upd.Empty() {
		return models.Booking{}, domain.ValidationError{Msg: "at least one field must be provided"}
	}

	if err := s.Store.Update(ctx, current.ID, upd); err != nil {
		return models.Booking{}, storeErr(ctx, "booking", "update", err)
	}
	if upd.Status != nil && *upd.Status != current.Status {
		metrics.IncBookingTransition(string(*upd.Status))
		utils.LogCtx(ctx, "booking", "update", fmt.Sprintf("booking_id=%s status=%s->%s", current.ID, current.Status, *upd.Status))
	}
	return s.Get(ctx, current.ID)
}

func (s BookingService) Delete(ctx context.Context, id string) error {
	if err := s.Store.Delete(ctx, strings.TrimSpace(id)); err != nil {
		return storeErr(ctx, "booking", "delete", err)
	}
	utils.LogCtx(ctx, "booking", "delete", "booking_id="+id)
	return nil
}

func terminalConflict(b models.Booking) error {
	return domain.ConflictError{Resource: "booking", Msg: fmt.Sprintf("booking is already %s", b.Status)}
}

func (s BookingService) CancelByToken(ctx context.Context, req models.CancelBookingRequest) (models.Booking, error) {
	if err := s.validate(req); err != nil {
		return models.Booking{}, err
	}
	b, err := s.Store.GetByToken(ctx, req.Token)
	if err != nil {
		return models.Booking{}, storeErr(ctx, "booking", "cancel", err)
	}
	if b.Status.Terminal() {
		return models.Booking{}, terminalConflict(b)
	}

	now := s.now()
	reason := utils.OptionalString(req.Reason)
	ok, err := s.Store.Cancel(ctx, b.ID, reason, now)
	if err != nil {
		return models.Booking{}, storeErr(ctx, "booking", "cancel", err)
	}
	if !ok {
		// Lost a race with another cancel or reschedule.
		return models.Booking{}, domain.ConflictError{Resource: "booking", Msg: "booking is no longer active"}
	}

	b.Status = models.BookingCancelled
	b.CancellationReason = reason
	b.CancelledAt = &now
	b.UpdatedAt = now

	metrics.IncBookingTransition(string(b.Status))
	utils.LogCtx(ctx, "booking", "cancel", "booking_id="+b.ID)
	s.notify(ctx, notify.Event{Kind: notify.KindBookingCancelled, Booking: &b})
	return b, nil
}

func (s BookingService) RescheduleByToken(ctx context.Context, req models.RescheduleBookingRequest) (RescheduleResult, error) {
	if err := s.validate(req); err != nil {
		return RescheduleResult{}, err
	}
	orig, err := s.Store.GetByToken(ctx, req.Token)
	if err != nil {
		return RescheduleResult{}, storeErr(ctx, "booking", "reschedule", err)
	}
	if orig.Status.Terminal() {
		return RescheduleResult{}, terminalConflict(orig)
	}

	now := s.now()
	reason := utils.OptionalString(req.Reason)
	origID := orig.ID
	next := models.Booking{
		ID:                uuid.NewString(),
		Name:              orig.Name,
		Email:             orig.Email,
		Company:           orig.Company,
		Phone:             orig.Phone,
		Message:           orig.Message,
		SelectedDate:      req.NewDate,
		SelectedTime:      strings.TrimSpace(req.NewTime),
		Timezone:          orig.Timezone,
		Status:            models.BookingPending,
		Token:             uuid.NewString(),
		OriginalBookingID: &origID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	ok, err := s.Store.Reschedule(ctx, orig.ID, reason, now, next)
	if err != nil {
		return RescheduleResult{}, storeErr(ctx, "booking", "reschedule", err)
	}
	if !ok {
		return RescheduleResult{}, domain.ConflictError{Resource: "booking", Msg: "booking is no longer active"}
	}

	orig.Status = models.BookingRescheduled
	orig.RescheduledAt = &now
	orig.UpdatedAt = now
	if reason != nil {
		orig.CancellationReason = reason
	}

	metrics.IncBookingTransition(string(orig.Status))
	metrics.IncBookingTransition(string(next.Status))
	utils.LogCtx(ctx, "booking", "reschedule", fmt.Sprintf("booking_id=%s replacement_id=%s", orig.ID, next.ID))
	s.notify(ctx, notify.Event{
		Kind:     notify.KindBookingRescheduled,
		Booking:  &next,
		Previous: &orig,
		Links:    s.Links(next.Token),
	})
	return RescheduleResult{Original: orig, Booking: next}, nil
}

// VerifyToken gates the self-service pages: the token must resolve to an
// active booking whose date has not passed.
func (s BookingService) VerifyToken(ctx context.Context, token string) (models.Booking, error) {
	if err := s.validate(models.VerifyTokenRequest{Token: strings.TrimSpace(token)}); err != nil {
		return models.Booking{}, err
	}
	b, err := s.Store.GetByToken(ctx, strings.TrimSpace(token))
	if err != nil {
		return models.Booking{}, storeErr(ctx, "booking", "verify_token", err)
	}
	if b.Status.Terminal() {
		return models.Booking{}, terminalConflict(b)
	}
	if utils.IsBeforeToday(b.SelectedDate, s.now()) {
		return models.Booking{}, domain.ConflictError{Resource: "booking", Msg: "booking date has already passed"}
	}
	return b, nil
}

// TriggerEmail forwards an assisted-email request for a booking to the
// automation service. Delivery is best-effort like every other notification.
func (s BookingService) TriggerEmail(ctx context.Context, req models.TriggerEmailRequest) (models.Booking, error) {
	if err := s.validate(req); err != nil {
		return models.Booking{}, err
	}
	b, err := s.Get(ctx, req.BookingID)
	if err != nil {
		return models.Booking{}, err
	}
	req.Subject = utils.OptionalString(req.Subject)
	req.Prompt = utils.OptionalString(req.Prompt)

	utils.LogCtx(ctx, "booking", "trigger_email", fmt.Sprintf("booking_id=%s type=%s", b.ID, req.EmailType))
	s.notify(ctx, notify.Event{Kind: notify.KindCustomEmail, Booking: &b, Email: &req, Links: s.Links(b.Token)})
	return b, nil
}

func validStatus(st string) bool {
	for _, s := range models.BookingStatuses {
		if string(s) == st {
			return true
		}
	}
	return false
}
