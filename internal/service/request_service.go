package service

import (
	"context"
	"time"

	"lendhub/internal/domain"
	"lendhub/internal/models"

	"github.com/rs/zerolog"
)

// RequestService owns "wanted item" posts and their fulfilling items.
type RequestService struct {
	store    domain.Store
	users    domain.UserService
	pageSize int
	logger   *zerolog.Logger
}

func NewRequestService(store domain.Store, users domain.UserService, pageSize int, logger *zerolog.Logger) *RequestService {
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}
	return &RequestService{
		store:    store,
		users:    users,
		pageSize: pageSize,
		logger:   logger,
	}
}

// Create posts a request on behalf of the user, stamping the server time.
func (s *RequestService) Create(ctx context.Context, requestorID int64, request *models.Request) (*models.Request, error) {
	requestor, err := s.users.GetByID(ctx, requestorID)
	if err != nil {
		return nil, err
	}

	request.RequestorID = requestor.ID
	request.Created = time.Now()
	if request.Items == nil {
		request.Items = []models.Item{}
	}

	if err := s.store.CreateRequest(ctx, request); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("request_id", request.ID).Int64("requestor_id", requestorID).Msg("request created")
	return request, nil
}

func (s *RequestService) GetByID(ctx context.Context, id int64) (*models.Request, error) {
	return s.store.GetRequestByID(ctx, id)
}

// GetByIDForUser verifies the caller exists before looking the request up,
// so an unknown caller fails even when the request is also absent.
func (s *RequestService) GetByIDForUser(ctx context.Context, id, userID int64) (*models.Request, error) {
	if err := s.users.CheckExists(ctx, userID); err != nil {
		return nil, err
	}

	return s.store.GetRequestByID(ctx, id)
}

func (s *RequestService) ListForRequestor(ctx context.Context, userID int64) ([]models.Request, error) {
	if err := s.users.CheckExists(ctx, userID); err != nil {
		return nil, err
	}

	return s.store.GetRequestsByRequestor(ctx, userID)
}

// ListOthers pages through requests posted by everyone but the user,
// newest first. from is a zero-based page index.
func (s *RequestService) ListOthers(ctx context.Context, userID int64, from, size int) ([]models.Request, error) {
	if from < 0 {
		from = 0
	}
	if size <= 0 {
		size = s.pageSize
	}

	return s.store.GetRequestsExcludingRequestor(ctx, userID, from, size)
}
