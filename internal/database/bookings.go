package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lendhub/internal/domain"
	"lendhub/internal/models"
)

const bookingColumns = `id, item_id, booker_id, start_at, end_at, status, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*models.Booking, error) {
	var booking models.Booking
	var startAt, endAt int64
	err := row.Scan(
		&booking.ID,
		&booking.ItemID,
		&booking.BookerID,
		&startAt,
		&endAt,
		&booking.Status,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	booking.Start = time.Unix(startAt, 0)
	booking.End = time.Unix(endAt, 0)
	return &booking, nil
}

// CreateBooking inserts the booking after re-checking the item's
// availability inside the same transaction, so two racing creations
// cannot both pass the availability gate.
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var available bool
	err = tx.QueryRowContext(ctx, `SELECT available FROM items WHERE id = ?`, booking.ItemID).Scan(&available)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundf("item with id %d not found", booking.ItemID)
	}
	if err != nil {
		return fmt.Errorf("failed to check availability in tx: %w", err)
	}
	if !available {
		return domain.BadRequestf("item with id %d is not available", booking.ItemID)
	}

	query := `INSERT INTO bookings (item_id, booker_id, start_at, end_at, status, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := tx.ExecContext(ctx, query,
		booking.ItemID,
		booking.BookerID,
		booking.Start.Unix(),
		booking.End.Unix(),
		booking.Status,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now

	return tx.Commit()
}

func (db *DB) GetBookingByID(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`

	booking, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("booking with id %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return booking, nil
}

func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return domain.NotFoundf("booking with id %d not found", id)
	}

	return nil
}

// stateCondition translates a state filter into a SQL fragment on the
// bookings table (aliased b) plus its arguments.
func stateCondition(filter models.StateFilter, now time.Time) (string, []any) {
	ts := now.Unix()
	switch filter {
	case models.FilterCurrent:
		return ` AND b.start_at < ? AND b.end_at > ?`, []any{ts, ts}
	case models.FilterPast:
		return ` AND b.end_at < ?`, []any{ts}
	case models.FilterFuture:
		return ` AND b.start_at > ?`, []any{ts}
	case models.FilterWaiting, models.FilterRejected:
		return ` AND b.status = ?`, []any{string(filter)}
	default: // FilterAll
		return ``, nil
	}
}

// ListBookingsByBooker returns the booker's bookings matching the filter,
// newest start first. from is a zero-based page index, not a row offset.
func (db *DB) ListBookingsByBooker(ctx context.Context, bookerID int64, filter models.StateFilter, now time.Time, from, size int) ([]models.Booking, error) {
	cond, args := stateCondition(filter, now)
	query := `SELECT b.id, b.item_id, b.booker_id, b.start_at, b.end_at, b.status, b.created_at, b.updated_at
              FROM bookings b WHERE b.booker_id = ?` + cond + `
              ORDER BY b.start_at DESC LIMIT ? OFFSET ?`

	queryArgs := append([]any{bookerID}, args...)
	queryArgs = append(queryArgs, size, from*size)
	return db.queryBookings(ctx, query, queryArgs...)
}

// ListBookingsByOwner returns bookings on items owned by ownerID.
func (db *DB) ListBookingsByOwner(ctx context.Context, ownerID int64, filter models.StateFilter, now time.Time, from, size int) ([]models.Booking, error) {
	cond, args := stateCondition(filter, now)
	query := `SELECT b.id, b.item_id, b.booker_id, b.start_at, b.end_at, b.status, b.created_at, b.updated_at
              FROM bookings b JOIN items i ON i.id = b.item_id
              WHERE i.owner_id = ?` + cond + `
              ORDER BY b.start_at DESC LIMIT ? OFFSET ?`

	queryArgs := append([]any{ownerID}, args...)
	queryArgs = append(queryArgs, size, from*size)
	return db.queryBookings(ctx, query, queryArgs...)
}

// GetLastBooking returns the item's booking with the latest end strictly
// before now, or nil when there is none.
func (db *DB) GetLastBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE item_id = ? AND end_at < ? ORDER BY end_at DESC LIMIT 1`

	booking, err := scanBooking(db.QueryRowContext(ctx, query, itemID, now.Unix()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last booking: %w", err)
	}
	return booking, nil
}

// GetNextBooking returns the item's booking with the earliest end strictly
// after now, or nil when there is none.
func (db *DB) GetNextBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE item_id = ? AND end_at > ? ORDER BY end_at ASC LIMIT 1`

	booking, err := scanBooking(db.QueryRowContext(ctx, query, itemID, now.Unix()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get next booking: %w", err)
	}
	return booking, nil
}

// HasStartedBooking reports whether bookerID has any booking on the item
// whose start has already passed, regardless of its status.
func (db *DB) HasStartedBooking(ctx context.Context, itemID, bookerID int64, now time.Time) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM bookings WHERE item_id = ? AND booker_id = ? AND start_at < ?)`
	var exists bool
	err := db.QueryRowContext(ctx, query, itemID, bookerID, now.Unix()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check started booking: %w", err)
	}
	return exists, nil
}

// ListAllBookings returns the whole ledger, newest start first. Used by
// the export worker.
func (db *DB) ListAllBookings(ctx context.Context) ([]models.Booking, error) {
	query := `SELECT b.id, b.item_id, b.booker_id, b.start_at, b.end_at, b.status, b.created_at, b.updated_at
              FROM bookings b ORDER BY b.start_at DESC`
	return db.queryBookings(ctx, query)
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *booking)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}
