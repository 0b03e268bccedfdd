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

func (db *DB) CreateRequest(ctx context.Context, request *models.Request) error {
	query := `INSERT INTO requests (description, requestor_id, created) VALUES (?, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		request.Description,
		request.RequestorID,
		request.Created.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	request.ID = id

	return nil
}

func (db *DB) GetRequestByID(ctx context.Context, id int64) (*models.Request, error) {
	query := `SELECT id, description, requestor_id, created FROM requests WHERE id = ?`

	var request models.Request
	var created int64
	err := db.QueryRowContext(ctx, query, id).Scan(
		&request.ID,
		&request.Description,
		&request.RequestorID,
		&created,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("request with id %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	request.Created = time.Unix(created, 0)

	if err := db.attachItems(ctx, &request); err != nil {
		return nil, err
	}

	return &request, nil
}

func (db *DB) GetRequestsByRequestor(ctx context.Context, requestorID int64) ([]models.Request, error) {
	query := `SELECT id, description, requestor_id, created FROM requests
              WHERE requestor_id = ? ORDER BY created DESC`
	return db.queryRequests(ctx, query, requestorID)
}

// GetRequestsExcludingRequestor lists requests authored by anyone but the
// given user, newest first. from is a zero-based page index.
func (db *DB) GetRequestsExcludingRequestor(ctx context.Context, requestorID int64, from, size int) ([]models.Request, error) {
	query := `SELECT id, description, requestor_id, created FROM requests
              WHERE requestor_id != ? ORDER BY created DESC LIMIT ? OFFSET ?`
	return db.queryRequests(ctx, query, requestorID, size, from*size)
}

func (db *DB) queryRequests(ctx context.Context, query string, args ...any) ([]models.Request, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var requests []models.Request
	for rows.Next() {
		var request models.Request
		var created int64
		err := rows.Scan(&request.ID, &request.Description, &request.RequestorID, &created)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		request.Created = time.Unix(created, 0)
		requests = append(requests, request)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	for i := range requests {
		if err := db.attachItems(ctx, &requests[i]); err != nil {
			return nil, err
		}
	}

	return requests, nil
}

func (db *DB) attachItems(ctx context.Context, request *models.Request) error {
	items, err := db.GetItemsByRequest(ctx, request.ID)
	if err != nil {
		return err
	}
	request.Items = items
	return nil
}
