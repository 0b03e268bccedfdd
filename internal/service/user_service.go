package service

import (
	"context"

	"lendhub/internal/domain"
	"lendhub/internal/events"
	"lendhub/internal/models"

	"github.com/rs/zerolog"
)

// UserService owns user identity records. Its CheckExists is the cheap
// precondition every other service runs before doing real work.
type UserService struct {
	store    domain.Store
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewUserService(store domain.Store, eventBus domain.EventPublisher, logger *zerolog.Logger) *UserService {
	return &UserService{
		store:    store,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Create registers a new user. Email uniqueness is enforced by the store,
// which signals Conflict on violation.
func (s *UserService) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user created")
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.store.GetUserByID(ctx, id)
}

// Update overwrites only the supplied fields.
func (s *UserService) Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	user, err := s.store.UpdateUser(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", id).Msg("user updated")
	return user, nil
}

// Delete removes the user. The store cascades the deletion to the user's
// items, bookings and comments explicitly.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return err
	}

	if s.eventBus != nil {
		if err := s.eventBus.PublishJSON(events.EventUserDeleted, map[string]int64{"user_id": id}); err != nil {
			s.logger.Error().Err(err).Int64("user_id", id).Msg("publish event error")
		}
	}

	s.logger.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}

func (s *UserService) Exists(ctx context.Context, id int64) (bool, error) {
	return s.store.UserExists(ctx, id)
}

// CheckExists fails with NotFound instead of returning a boolean.
func (s *UserService) CheckExists(ctx context.Context, id int64) error {
	exists, err := s.store.UserExists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return domain.NotFoundf("user with id %d not found", id)
	}
	return nil
}

func (s *UserService) GetAll(ctx context.Context) ([]models.User, error) {
	return s.store.GetAllUsers(ctx)
}
