package domain

import (
	"context"
	"time"

	"lendhub/internal/models"
)

// Store is the persistence boundary. Implementations must keep the
// read-modify-write sequences of booking creation and approval atomic.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
	UserExists(ctx context.Context, id int64) (bool, error)
	GetAllUsers(ctx context.Context) ([]models.User, error)

	CreateItem(ctx context.Context, item *models.Item) error
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	GetItemsByOwner(ctx context.Context, ownerID int64) ([]models.Item, error)
	SearchItems(ctx context.Context, text string) ([]models.Item, error)
	GetItemsByRequest(ctx context.Context, requestID int64) ([]models.Item, error)
	GetLastBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	GetNextBooking(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)

	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBookingByID(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status string) error
	ListBookingsByBooker(ctx context.Context, bookerID int64, filter models.StateFilter, now time.Time, from, size int) ([]models.Booking, error)
	ListBookingsByOwner(ctx context.Context, ownerID int64, filter models.StateFilter, now time.Time, from, size int) ([]models.Booking, error)
	HasStartedBooking(ctx context.Context, itemID, bookerID int64, now time.Time) (bool, error)

	CreateRequest(ctx context.Context, request *models.Request) error
	GetRequestByID(ctx context.Context, id int64) (*models.Request, error)
	GetRequestsByRequestor(ctx context.Context, requestorID int64) ([]models.Request, error)
	GetRequestsExcludingRequestor(ctx context.Context, requestorID int64, from, size int) ([]models.Request, error)

	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentsByItem(ctx context.Context, itemID int64) ([]models.Comment, error)
}

// SearchCache keeps item search results hot. A miss is not an error.
type SearchCache interface {
	Get(ctx context.Context, query string) ([]models.Item, bool, error)
	Set(ctx context.Context, query string, items []models.Item) error
	Invalidate(ctx context.Context) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// ExportWorker schedules background snapshot exports of the booking ledger.
type ExportWorker interface {
	EnqueueExport(ctx context.Context) error
}

type UserService interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
	CheckExists(ctx context.Context, id int64) error
	GetAll(ctx context.Context) ([]models.User, error)
}

type ItemService interface {
	Create(ctx context.Context, ownerID int64, item *models.Item, requestID int64) (*models.Item, error)
	GetByID(ctx context.Context, id int64) (*models.Item, error)
	GetView(ctx context.Context, itemID, viewerID int64) (*models.ItemView, error)
	Update(ctx context.Context, callerID, itemID int64, patch models.ItemPatch, requestID int64) (*models.Item, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]models.ItemView, error)
	Search(ctx context.Context, text string) ([]models.Item, error)
	CreateComment(ctx context.Context, authorID, itemID int64, comment *models.Comment) (*models.Comment, error)
}

type RequestService interface {
	Create(ctx context.Context, requestorID int64, request *models.Request) (*models.Request, error)
	GetByID(ctx context.Context, id int64) (*models.Request, error)
	GetByIDForUser(ctx context.Context, id, userID int64) (*models.Request, error)
	ListForRequestor(ctx context.Context, userID int64) ([]models.Request, error)
	ListOthers(ctx context.Context, userID int64, from, size int) ([]models.Request, error)
}

type BookingService interface {
	Create(ctx context.Context, bookerID int64, booking *models.Booking, itemID int64) (*models.Booking, error)
	Approve(ctx context.Context, ownerID, bookingID int64, approved bool) (*models.Booking, error)
	Cancel(ctx context.Context, bookerID, bookingID int64) (*models.Booking, error)
	GetByIDForUser(ctx context.Context, bookingID, userID int64) (*models.Booking, error)
	ListForBooker(ctx context.Context, bookerID int64, state string, from, size int) ([]models.Booking, error)
	ListForOwner(ctx context.Context, ownerID int64, state string, from, size int) ([]models.Booking, error)
}
