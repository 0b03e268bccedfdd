package service

import (
	"context"
	"strings"
	"time"

	"lendhub/internal/domain"
	"lendhub/internal/events"
	"lendhub/internal/metrics"
	"lendhub/internal/models"

	"github.com/rs/zerolog"
)

// BookingService owns the booking ledger: the WAITING → APPROVED/REJECTED
// state machine, the availability and date invariants gating creation, and
// the role-based filtered listings.
type BookingService struct {
	store        domain.Store
	users        domain.UserService
	eventBus     domain.EventPublisher
	exportWorker domain.ExportWorker
	pageSize     int
	logger       *zerolog.Logger
}

func NewBookingService(store domain.Store, users domain.UserService, eventBus domain.EventPublisher, exportWorker domain.ExportWorker, pageSize int, logger *zerolog.Logger) *BookingService {
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}
	return &BookingService{
		store:        store,
		users:        users,
		eventBus:     eventBus,
		exportWorker: exportWorker,
		pageSize:     pageSize,
		logger:       logger,
	}
}

// Create validates and persists a new WAITING booking. The checks run in a
// fixed order so the first violated rule determines the reported error:
// item lookup, availability, end date, start date, date ordering, then
// owner concealment, then booker lookup.
func (s *BookingService) Create(ctx context.Context, bookerID int64, booking *models.Booking, itemID int64) (*models.Booking, error) {
	item, err := s.store.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if !item.Available {
		return nil, domain.BadRequestf("item with id %d is not available", itemID)
	}

	now := time.Now()
	if booking.End.Before(now) {
		return nil, domain.BadRequestf("the booking end date %s cannot be in the past", booking.End.Format(time.RFC3339))
	}
	if booking.Start.Before(now) {
		return nil, domain.BadRequestf("the booking start date %s cannot be in the past", booking.Start.Format(time.RFC3339))
	}
	if !booking.End.After(booking.Start) {
		return nil, domain.BadRequestf("the booking end date %s must be strictly after the start date %s",
			booking.End.Format(time.RFC3339), booking.Start.Format(time.RFC3339))
	}

	// The owner booking their own item is reported as not-found, not as a
	// permission error: for the owner the item "does not exist" as a
	// bookable thing.
	if item.OwnerID == bookerID {
		return nil, domain.NotFoundf("item with id %d cannot be booked by its owner", itemID)
	}

	booker, err := s.users.GetByID(ctx, bookerID)
	if err != nil {
		return nil, err
	}

	booking.ItemID = item.ID
	booking.BookerID = booker.ID
	booking.Status = models.StatusWaiting

	if err := s.store.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	metrics.IncBookingCreated()
	s.publishEvent(events.EventBookingCreated, booking, item.OwnerID)
	s.enqueueExport(ctx, booking.ID)

	s.logger.Info().Int64("booking_id", booking.ID).Int64("item_id", item.ID).Int64("booker_id", bookerID).Msg("booking created")
	return booking, nil
}

// Approve records the owner's decision on a WAITING booking. A booker
// attempting to decide their own booking gets NotFound so the call leaks
// nothing; a wrong owner and a non-WAITING status share one BadRequest.
func (s *BookingService) Approve(ctx context.Context, ownerID, bookingID int64, approved bool) (*models.Booking, error) {
	booking, err := s.store.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.BookerID == ownerID {
		return nil, domain.NotFoundf("booker cannot confirm the booking")
	}

	item, err := s.store.GetItemByID(ctx, booking.ItemID)
	if err != nil {
		return nil, err
	}

	if item.OwnerID != ownerID || booking.Status != models.StatusWaiting {
		return nil, domain.BadRequestf("only the owner of the item can confirm the booking")
	}

	status := models.StatusRejected
	eventType := events.EventBookingRejected
	if approved {
		status = models.StatusApproved
		eventType = events.EventBookingApproved
	}

	if err := s.store.UpdateBookingStatus(ctx, bookingID, status); err != nil {
		return nil, err
	}
	booking.Status = status

	metrics.IncBookingDecision(status)
	s.publishEvent(eventType, booking, ownerID)
	s.enqueueExport(ctx, booking.ID)

	s.logger.Info().Int64("booking_id", bookingID).Str("status", status).Msg("booking decided")
	return booking, nil
}

// Cancel lets the booker withdraw their own WAITING booking. CANCELED is
// terminal and is never produced by Approve.
func (s *BookingService) Cancel(ctx context.Context, bookerID, bookingID int64) (*models.Booking, error) {
	booking, err := s.store.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.BookerID != bookerID {
		return nil, domain.NotFoundf("booking with id %d not found", bookingID)
	}

	if booking.Status != models.StatusWaiting {
		return nil, domain.BadRequestf("only a waiting booking can be canceled")
	}

	if err := s.store.UpdateBookingStatus(ctx, bookingID, models.StatusCanceled); err != nil {
		return nil, err
	}
	booking.Status = models.StatusCanceled

	metrics.IncBookingDecision(models.StatusCanceled)
	s.publishEvent(events.EventBookingCanceled, booking, 0)
	s.enqueueExport(ctx, booking.ID)

	s.logger.Info().Int64("booking_id", bookingID).Msg("booking canceled")
	return booking, nil
}

// GetByIDForUser returns the booking only to its booker or the item's
// owner; anyone else gets NotFound.
func (s *BookingService) GetByIDForUser(ctx context.Context, bookingID, userID int64) (*models.Booking, error) {
	booking, err := s.store.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.BookerID != userID {
		item, err := s.store.GetItemByID(ctx, booking.ItemID)
		if err != nil {
			return nil, err
		}
		if item.OwnerID != userID {
			return nil, domain.NotFoundf("booking with id %d not found", bookingID)
		}
	}

	return booking, nil
}

func (s *BookingService) ListForBooker(ctx context.Context, bookerID int64, state string, from, size int) ([]models.Booking, error) {
	if err := s.users.CheckExists(ctx, bookerID); err != nil {
		return nil, err
	}

	filter, err := parseStateFilter(state)
	if err != nil {
		return nil, err
	}

	from, size = s.normalizePage(from, size)
	return s.store.ListBookingsByBooker(ctx, bookerID, filter, time.Now(), from, size)
}

func (s *BookingService) ListForOwner(ctx context.Context, ownerID int64, state string, from, size int) ([]models.Booking, error) {
	if err := s.users.CheckExists(ctx, ownerID); err != nil {
		return nil, err
	}

	filter, err := parseStateFilter(state)
	if err != nil {
		return nil, err
	}

	from, size = s.normalizePage(from, size)
	return s.store.ListBookingsByOwner(ctx, ownerID, filter, time.Now(), from, size)
}

// parseStateFilter is case-insensitive; an empty state means ALL.
func parseStateFilter(state string) (models.StateFilter, error) {
	if state == "" {
		return models.FilterAll, nil
	}

	switch models.StateFilter(strings.ToUpper(state)) {
	case models.FilterAll:
		return models.FilterAll, nil
	case models.FilterCurrent:
		return models.FilterCurrent, nil
	case models.FilterPast:
		return models.FilterPast, nil
	case models.FilterFuture:
		return models.FilterFuture, nil
	case models.FilterWaiting:
		return models.FilterWaiting, nil
	case models.FilterRejected:
		return models.FilterRejected, nil
	default:
		return "", domain.BadRequestf("Unknown state: %s", state)
	}
}

func (s *BookingService) normalizePage(from, size int) (int, int) {
	if from < 0 {
		from = 0
	}
	if size <= 0 {
		size = s.pageSize
	}
	return from, size
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, ownerID int64) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		ItemID:    booking.ItemID,
		BookerID:  booking.BookerID,
		OwnerID:   ownerID,
		Status:    booking.Status,
		Start:     booking.Start,
		End:       booking.End,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueExport(ctx context.Context, bookingID int64) {
	if s.exportWorker == nil {
		return
	}

	if err := s.exportWorker.EnqueueExport(ctx); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", bookingID).Msg("export enqueue error")
	}
}
