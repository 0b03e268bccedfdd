package database

import (
	"context"
	"testing"
	"time"

	"lendhub/internal/domain"
	"lendhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestRequest(t *testing.T, db *DB, requestorID int64, description string, created time.Time) *models.Request {
	t.Helper()
	request := &models.Request{Description: description, RequestorID: requestorID, Created: created}
	require.NoError(t, db.CreateRequest(context.Background(), request))
	return request
}

func TestCreateRequestAndGet(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	requestor := createTestUser(t, db, "Requestor", "requestor@example.com")
	created := time.Now().Truncate(time.Second)
	request := createTestRequest(t, db, requestor.ID, "need a drill", created)

	got, err := db.GetRequestByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, "need a drill", got.Description)
	assert.Equal(t, requestor.ID, got.RequestorID)
	assert.True(t, got.Created.Equal(created))
	assert.Empty(t, got.Items)
}

func TestGetRequestNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetRequestByID(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestGetRequestAttachesItems(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	requestor := createTestUser(t, db, "Requestor", "requestor@example.com")
	owner := createTestUser(t, db, "Owner", "owner@example.com")
	request := createTestRequest(t, db, requestor.ID, "need a drill", time.Now())

	item := &models.Item{Name: "Drill", Description: "a drill", Available: true, OwnerID: owner.ID, RequestID: request.ID}
	require.NoError(t, db.CreateItem(ctx, item))

	got, err := db.GetRequestByID(ctx, request.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, item.ID, got.Items[0].ID)
}

func TestGetRequestsByRequestorNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	requestor := createTestUser(t, db, "Requestor", "requestor@example.com")
	other := createTestUser(t, db, "Other", "other@example.com")

	now := time.Now()
	old := createTestRequest(t, db, requestor.ID, "old", now.Add(-2*time.Hour))
	fresh := createTestRequest(t, db, requestor.ID, "fresh", now)
	createTestRequest(t, db, other.ID, "theirs", now.Add(-time.Hour))

	requests, err := db.GetRequestsByRequestor(ctx, requestor.ID)
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, fresh.ID, requests[0].ID)
	assert.Equal(t, old.ID, requests[1].ID)
}

func TestGetRequestsExcludingRequestor(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	requestor := createTestUser(t, db, "Requestor", "requestor@example.com")
	other := createTestUser(t, db, "Other", "other@example.com")

	now := time.Now()
	createTestRequest(t, db, requestor.ID, "mine", now)
	first := createTestRequest(t, db, other.ID, "theirs first", now.Add(-time.Hour))
	second := createTestRequest(t, db, other.ID, "theirs second", now.Add(-30*time.Minute))

	requests, err := db.GetRequestsExcludingRequestor(ctx, requestor.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, second.ID, requests[0].ID)
	assert.Equal(t, first.ID, requests[1].ID)

	page1, err := db.GetRequestsExcludingRequestor(ctx, requestor.ID, 1, 1)
	require.NoError(t, err)
	require.Len(t, page1, 1)
	assert.Equal(t, first.ID, page1[0].ID)
}
