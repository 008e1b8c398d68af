package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	intconfig "sitebackend/internal/config"
	intdb "sitebackend/internal/db"
	"sitebackend/internal/domain/models"
)

const bookingColumns = `
	id, name, email, company, phone, message,
	DATE_FORMAT(selected_date, '%Y-%m-%d'), selected_time, timezone,
	status, token, cancellation_reason, original_booking_id, notes,
	confirmation_sent, confirmation_sent_at, reminder_sent, reminder_sent_at,
	created_at, updated_at, cancelled_at, rescheduled_at`

type BookingRepo struct {
	DB *sql.DB
}

func (r BookingRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(s rowScanner) (models.Booking, error) {
	var (
		b                                                      models.Booking
		status                                                 string
		company, phone, message, timezone, reason, orig, notes sql.NullString
		confirmAt, remindAt, cancelledAt, rescheduledAt        sql.NullTime
	)
	err := s.Scan(
		&b.ID, &b.Name, &b.Email, &company, &phone, &message,
		&b.SelectedDate, &b.SelectedTime, &timezone,
		&status, &b.Token, &reason, &orig, &notes,
		&b.ConfirmationSent, &confirmAt, &b.ReminderSent, &remindAt,
		&b.CreatedAt, &b.UpdatedAt, &cancelledAt, &rescheduledAt,
	)
	if err != nil {
		return models.Booking{}, err
	}
	b.Status = models.BookingStatus(status)
	b.Company = nullString(company)
	b.Phone = nullString(phone)
	b.Message = nullString(message)
	b.Timezone = nullString(timezone)
	b.CancellationReason = nullString(reason)
	b.OriginalBookingID = nullString(orig)
	b.Notes = nullString(notes)
	b.ConfirmationSentAt = nullTime(confirmAt)
	b.ReminderSentAt = nullTime(remindAt)
	b.CancelledAt = nullTime(cancelledAt)
	b.RescheduledAt = nullTime(rescheduledAt)
	return b, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertBooking(ctx context.Context, ex execer, b models.Booking) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO bookings (
			id, name, email, company, phone, message,
			selected_date, selected_time, timezone,
			status, token, original_booking_id,
			created_at, updated_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		b.ID, b.Name, b.Email, ptrArg(b.Company), ptrArg(b.Phone), ptrArg(b.Message),
		b.SelectedDate, b.SelectedTime, ptrArg(b.Timezone),
		string(b.Status), b.Token, ptrArg(b.OriginalBookingID),
		b.CreatedAt, b.UpdatedAt,
	)
	return err
}

// Create inserts a new booking row.
func (r BookingRepo) Create(ctx context.Context, b models.Booking) error {
	if err := insertBooking(ctx, r.db(), b); err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (r BookingRepo) GetByID(ctx context.Context, id string) (models.Booking, error) {
	return r.getOne(ctx, "id", id)
}

func (r BookingRepo) GetByToken(ctx context.Context, token string) (models.Booking, error) {
	return r.getOne(ctx, "token", token)
}

func (r BookingRepo) getOne(ctx context.Context, col, val string) (models.Booking, error) {
	row := r.db().QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE `+col+`=? LIMIT 1`, val)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, ErrNotFound
		}
		return models.Booking{}, fmt.Errorf("select booking by %s: %w", col, err)
	}
	return b, nil
}

// List returns bookings newest first.
func (r BookingRepo) List(ctx context.Context, f models.BookingFilter) ([]models.Booking, error) {
	where := []string{}
	args := []any{}
	if s := strings.TrimSpace(f.Status); s != "" && s != "all" {
		where = append(where, "status=?")
		args = append(args, s)
	}
	if f.From != "" {
		where = append(where, "selected_date>=?")
		args = append(args, f.From)
	}
	if f.To != "" {
		where = append(where, "selected_date<=?")
		args = append(args, f.To)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, "(name LIKE ? OR email LIKE ? OR company LIKE ?)")
		like := "%" + s + "%"
		args = append(args, like, like, like)
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`
	query, args = withLimit(query, args, f.Limit, f.Offset)

	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Update performs PATCH-style updates based on key presence.
func (r BookingRepo) Update(ctx context.Context, id string, upd models.BookingUpdate) error {
	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		sets = append(sets, col+"=?")
		args = append(args, v)
	}

	if upd.Status != nil {
		add("status", string(*upd.Status))
	}
	if upd.SelectedDate != nil {
		add("selected_date", *upd.SelectedDate)
	}
	if upd.SelectedTime != nil {
		add("selected_time", strings.TrimSpace(*upd.SelectedTime))
	}
	if upd.Notes != nil {
		add("notes", intdb.NullIfEmpty(strings.TrimSpace(*upd.Notes)))
	}
	if upd.CancellationReason != nil {
		add("cancellation_reason", intdb.NullIfEmpty(strings.TrimSpace(*upd.CancellationReason)))
	}
	if upd.ConfirmationSent != nil {
		add("confirmation_sent", *upd.ConfirmationSent)
	}
	if upd.ConfirmationSentAt != nil {
		add("confirmation_sent_at", *upd.ConfirmationSentAt)
	}
	if upd.ReminderSent != nil {
		add("reminder_sent", *upd.ReminderSent)
	}
	if upd.ReminderSentAt != nil {
		add("reminder_sent_at", *upd.ReminderSentAt)
	}
	if upd.CancelledAt != nil {
		add("cancelled_at", *upd.CancelledAt)
	}
	if upd.RescheduledAt != nil {
		add("rescheduled_at", *upd.RescheduledAt)
	}
	if len(sets) == 0 {
		return nil
	}
	updatedAt := upd.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	add("updated_at", updatedAt)
	args = append(args, id)

	res, err := r.db().ExecContext(ctx, `UPDATE bookings SET `+strings.Join(sets, ", ")+` WHERE id=?`, args...)
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r BookingRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db().ExecContext(ctx, `DELETE FROM bookings WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

const nonTerminal = `status NOT IN ('cancelled','rescheduled')`

// Cancel marks a non-terminal booking cancelled. It reports false when the
// row was already terminal (or missing) at write time.
func (r BookingRepo) Cancel(ctx context.Context, id string, reason *string, at time.Time) (bool, error) {
	res, err := r.db().ExecContext(ctx, `
		UPDATE bookings
		SET status='cancelled', cancellation_reason=?, cancelled_at=?, updated_at=?
		WHERE id=? AND `+nonTerminal,
		ptrArg(reason), at, at, id,
	)
	if err != nil {
		return false, fmt.Errorf("cancel booking: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("cancel booking: %w", err)
	}
	return n > 0, nil
}

// Reschedule marks the original row rescheduled and inserts its replacement in
// one transaction. The original slot is left untouched.
func (r BookingRepo) Reschedule(ctx context.Context, originalID string, reason *string, at time.Time, replacement models.Booking) (bool, error) {
	tx, err := r.db().BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin reschedule: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE bookings
		SET status='rescheduled', rescheduled_at=?, cancellation_reason=COALESCE(?, cancellation_reason), updated_at=?
		WHERE id=? AND `+nonTerminal,
		at, ptrArg(reason), at, originalID,
	)
	if err != nil {
		return false, fmt.Errorf("mark booking rescheduled: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark booking rescheduled: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	if err := insertBooking(ctx, tx, replacement); err != nil {
		return false, fmt.Errorf("insert replacement booking: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit reschedule: %w", err)
	}
	return true, nil
}
