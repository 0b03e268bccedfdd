package service

import (
	"context"
	"testing"
	"time"

	"lendhub/internal/domain"
	"lendhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newBookingService(store *mockStore) *BookingService {
	users := NewUserService(store, nil, testLogger())
	return NewBookingService(store, users, nil, nil, 10, testLogger())
}

func TestBookingCreate(t *testing.T) {
	store := new(mockStore)
	svc := newBookingService(store)
	ctx := context.Background()

	item := &models.Item{ID: 1, OwnerID: 10, Available: true}
	booker := &models.User{ID: 20, Name: "Booker"}

	store.On("GetItemByID", ctx, int64(1)).Return(item, nil)
	store.On("GetUserByID", ctx, int64(20)).Return(booker, nil)
	store.On("CreateBooking", ctx, mock.AnythingOfType("*models.Booking")).Return(nil)

	booking := &models.Booking{
		Start: time.Now().Add(time.Hour),
		End:   time.Now().Add(2 * time.Hour),
	}
	created, err := svc.Create(ctx, 20, booking, 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusWaiting, created.Status)
	assert.Equal(t, int64(1), created.ItemID)
	assert.Equal(t, int64(20), created.BookerID)
	store.AssertExpectations(t)
}

func TestBookingCreateUnavailableItem(t *testing.T) {
	store := new(mockStore)
	svc := newBookingService(store)
	ctx := context.Background()

	store.On("GetItemByID", ctx, int64(1)).Return(&models.Item{ID: 1, OwnerID: 10, Available: false}, nil)

	booking := &models.Booking{
		Start: time.Now().Add(time.Hour),
		End:   time.Now().Add(2 * time.Hour),
	}
	_, err := svc.Create(ctx, 20, booking, 1)
	require.Error(t, err)
	assert.True(t, domain.IsBadRequest(err))
	store.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
}

func TestBookingCreateItemNotFound(t *testing.T) {
	store := new(mockStore)
	svc := newBookingService(store)
	ctx := context.Background()

	store.On("GetItemByID", ctx, int64(1)).Return(nil, domain.NotFoundf("item with id 1 not found"))

	_, err := svc.Create(ctx, 20, &models.Booking{}, 1)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestBookingCreateDateValidation(t *testing.T) {
	item := &models.Item{ID: 1, OwnerID: 10, Available: true}
	now := time.Now()

	cases := []struct {
		name  string
		start time.Time
		end   time.Time
	}{
		{"end in the past", now.Add(-2 * time.Hour), now.Add(-time.Hour)},
		{"start in the past", now.Add(-time.Hour), now.Add(time.Hour)},
		{"end before start", now.Add(2 * time.Hour), now.Add(time.Hour)},
		{"end equals start", now.Add(time.Hour), now.Add(time.Hour)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := new(mockStore)
			svc := newBookingService(store)
			ctx := context.Background()

			store.On("GetItemByID", ctx, int64(1)).Return(item, nil)

			_, err := svc.Create(ctx, 20, &models.Booking{Start: tc.start, End: tc.end}, 1)
			require.Error(t, err)
			assert.True(t, domain.IsBadRequest(err))
			store.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
		})
	}
}

func TestBookingCreateByOwnerHidden(t *testing.T) {
	store := new(mockStore)
	svc := newBookingService(store)
	ctx := context.Background()

	store.On("GetItemByID", ctx, int64(1)).Return(&models.Item{ID: 1, OwnerID: 10, Available: true}, nil)

	booking := &models.Booking{
		Start: time.Now().Add(time.Hour),
		End:   time.Now().Add(2 * time.Hour),
	}
	_, err := svc.Create(ctx, 10, booking, 1)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestBookingApprove(t *testing.T) {
	store := new(mockStore)
	svc := newBookingService(store)
	ctx := context.Background()

	booking := &models.Booking{ID: 5, ItemID: 1, BookerID: 20, Status: models.StatusWaiting}
	store.On("GetBookingByID", ctx, int64(5)).Return(booking, nil)
	store.On("GetItemByID", ctx, int64(1)).Return(&models.Item{ID: 1, OwnerID: 10}, nil)
	store.On("UpdateBookingStatus", ctx, int64(5), models.StatusApproved).Return(nil)

	decided, err := svc.Approve(ctx, 10, 5, true)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, decided.Status)
	store.AssertExpectations(t)
}

func TestBookingReject(t *testing.T) {
	store := new(mockStore)
	svc := newBookingService(store)
	ctx := context.Background()

	booking := &models.Booking{ID: 5, ItemID: 1, BookerID: 20, Status: models.StatusWaiting}
	store.On("GetBookingByID", ctx, int64(5)).Return(booking, nil)
	store.On("GetItemByID", ctx, int64(1)).Return(&models.Item{ID: 1, OwnerID: 10}, nil)
	store.On("UpdateBookingStatus", ctx, int64(5), models.StatusRejected).Return(nil)

	decided, err := svc.Approve(ctx, 10, 5, false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, decided.Status)
}

func TestBookingApproveByBooker(t *testing.T) {
	store := new(mockStore)
	svc := newBookingService(store)
	ctx := context.Background()

	booking := &models.Booking{ID: 5, ItemID: 1, BookerID: 20, Status: models.StatusWaiting}
	store.On("GetBookingByID", ctx, int64(5)).Return(booking, nil)

	_, err := svc.Approve(ctx, 20, 5, true)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestBookingApproveByStranger(t *testing.T) {
	store := new(mockStore)
	svc := newBookingService(store)
	ctx := context.Background()

	booking := &models.Booking{ID: 5, ItemID: 1, BookerID: 20, Status: models.StatusWaiting}
	store.On("GetBookingByID", ctx, int64(5)).Return(booking, nil)
	store.On("GetItemByID", ctx, int64(1)).Return(&models.Item{ID: 1, OwnerID: 10}, nil)

	_, err := svc.Approve(ctx, 99, 5, true)
	require.Error(t, err)
	assert.True(t, domain.IsBadRequest(err))
}

func TestBookingApproveTwice(t *testing.T) {
	store := new(mockStore)
	svc := newBookingService(store)
	ctx := context.Background()

	booking := &models.Booking{ID: 5, ItemID: 1, BookerID: 20, Status: models.StatusApproved}
	store.On("GetBookingByID", ctx, int64(5)).Return(booking, nil)
	store.On("GetItemByID", ctx, int64(1)).Return(&models.Item{ID: 1, OwnerID: 10}, nil)

	_, err := svc.Approve(ctx, 10, 5, true)
	require.Error(t, err)
	assert.True(t, domain.IsBadRequest(err))
	store.AssertNotCalled(t, "UpdateBookingStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingCancel(t *testing.T) {
	store := new(mockStore)
	svc := newBookingService(store)
	ctx := context.Background()

	booking := &models.Booking{ID: 5, ItemID: 1, BookerID: 20, Status: models.StatusWaiting}
	store.On("GetBookingByID", ctx, int64(5)).Return(booking, nil)
	store.On("UpdateBookingStatus", ctx, int64(5), models.StatusCanceled).Return(nil)

	canceled, err := svc.Cancel(ctx, 20, 5)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCanceled, canceled.Status)
}

func TestBookingCancelByNonBooker(t *testing.T) {
	store := new(mockStore)
	svc := newBookingService(store)
	ctx := context.Background()

	booking := &models.Booking{ID: 5, ItemID: 1, BookerID: 20, Status: models.StatusWaiting}
	store.On("GetBookingByID", ctx, int64(5)).Return(booking, nil)

	_, err := svc.Cancel(ctx, 10, 5)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestBookingCancelDecided(t *testing.T) {
	store := new(mockStore)
	svc := newBookingService(store)
	ctx := context.Background()

	booking := &models.Booking{ID: 5, ItemID: 1, BookerID: 20, Status: models.StatusApproved}
	store.On("GetBookingByID", ctx, int64(5)).Return(booking, nil)

	_, err := svc.Cancel(ctx, 20, 5)
	require.Error(t, err)
	assert.True(t, domain.IsBadRequest(err))
}

func TestBookingGetByIDForUser(t *testing.T) {
	store := new(mockStore)
	svc := newBookingService(store)
	ctx := context.Background()

	booking := &models.Booking{ID: 5, ItemID: 1, BookerID: 20}
	store.On("GetBookingByID", ctx, int64(5)).Return(booking, nil)
	store.On("GetItemByID", ctx, int64(1)).Return(&models.Item{ID: 1, OwnerID: 10}, nil)

	got, err := svc.GetByIDForUser(ctx, 5, 20)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, got.ID)

	got, err = svc.GetByIDForUser(ctx, 5, 10)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, got.ID)

	_, err = svc.GetByIDForUser(ctx, 5, 99)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestBookingListForBooker(t *testing.T) {
	store := new(mockStore)
	svc := newBookingService(store)
	ctx := context.Background()

	store.On("UserExists", ctx, int64(20)).Return(true, nil)
	store.On("ListBookingsByBooker", ctx, int64(20), models.FilterWaiting, mock.AnythingOfType("time.Time"), 0, 10).
		Return([]models.Booking{{ID: 5}}, nil)

	bookings, err := svc.ListForBooker(ctx, 20, "waiting", 0, 0)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, int64(5), bookings[0].ID)
}

func TestBookingListForBookerUnknownUser(t *testing.T) {
	store := new(mockStore)
	svc := newBookingService(store)
	ctx := context.Background()

	store.On("UserExists", ctx, int64(99)).Return(false, nil)

	_, err := svc.ListForBooker(ctx, 99, "", 0, 0)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestBookingListUnknownState(t *testing.T) {
	store := new(mockStore)
	svc := newBookingService(store)
	ctx := context.Background()

	store.On("UserExists", ctx, int64(20)).Return(true, nil)

	_, err := svc.ListForBooker(ctx, 20, "BANANA", 0, 0)
	require.Error(t, err)
	assert.True(t, domain.IsBadRequest(err))
	assert.Contains(t, err.Error(), "Unknown state: BANANA")
}

func TestBookingListForOwner(t *testing.T) {
	store := new(mockStore)
	svc := newBookingService(store)
	ctx := context.Background()

	store.On("UserExists", ctx, int64(10)).Return(true, nil)
	store.On("ListBookingsByOwner", ctx, int64(10), models.FilterAll, mock.AnythingOfType("time.Time"), 0, 10).
		Return([]models.Booking{{ID: 5}, {ID: 4}}, nil)

	bookings, err := svc.ListForOwner(ctx, 10, "", -3, 0)
	require.NoError(t, err)
	assert.Len(t, bookings, 2)
}

func TestParseStateFilter(t *testing.T) {
	cases := map[string]models.StateFilter{
		"":         models.FilterAll,
		"ALL":      models.FilterAll,
		"current":  models.FilterCurrent,
		"Past":     models.FilterPast,
		"FUTURE":   models.FilterFuture,
		"waiting":  models.FilterWaiting,
		"rejected": models.FilterRejected,
	}
	for input, want := range cases {
		got, err := parseStateFilter(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got)
	}

	_, err := parseStateFilter("canceled")
	require.Error(t, err)
	assert.True(t, domain.IsBadRequest(err))
}
