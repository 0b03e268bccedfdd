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

// ItemService owns the item catalog and the comment surface. Last/next
// booking fields on views are derived at read time and shown only to the
// item's owner.
type ItemService struct {
	store    domain.Store
	users    domain.UserService
	requests domain.RequestService
	cache    domain.SearchCache
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewItemService(store domain.Store, users domain.UserService, requests domain.RequestService, cache domain.SearchCache, eventBus domain.EventPublisher, logger *zerolog.Logger) *ItemService {
	return &ItemService{
		store:    store,
		users:    users,
		requests: requests,
		cache:    cache,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Create lists a new item for the owner. A positive requestID links the
// item to the request it fulfills; the request must exist.
func (s *ItemService) Create(ctx context.Context, ownerID int64, item *models.Item, requestID int64) (*models.Item, error) {
	if requestID > 0 {
		if _, err := s.requests.GetByID(ctx, requestID); err != nil {
			return nil, err
		}
		item.RequestID = requestID
	}

	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	item.OwnerID = owner.ID

	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	s.invalidateSearchCache(ctx)
	if s.eventBus != nil {
		if err := s.eventBus.PublishJSON(events.EventItemCreated, item); err != nil {
			s.logger.Error().Err(err).Int64("item_id", item.ID).Msg("publish event error")
		}
	}

	s.logger.Info().Int64("item_id", item.ID).Int64("owner_id", ownerID).Msg("item created")
	return item, nil
}

func (s *ItemService) GetByID(ctx context.Context, id int64) (*models.Item, error) {
	return s.store.GetItemByID(ctx, id)
}

// GetView renders the item for a viewer. Comments are visible to everyone;
// last/next booking only to the owner.
func (s *ItemService) GetView(ctx context.Context, itemID, viewerID int64) (*models.ItemView, error) {
	item, err := s.store.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	return s.buildView(ctx, item, viewerID)
}

// Update overwrites only the supplied fields. A non-owner caller gets
// NotFound, not Forbidden: the item's existence is concealed from them.
func (s *ItemService) Update(ctx context.Context, callerID, itemID int64, patch models.ItemPatch, requestID int64) (*models.Item, error) {
	caller, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	item, err := s.store.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if item.OwnerID != caller.ID {
		return nil, domain.NotFoundf("user with id %d does not own the item with id %d", callerID, itemID)
	}

	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Available != nil {
		item.Available = *patch.Available
	}

	if requestID > 0 {
		if _, err := s.requests.GetByID(ctx, requestID); err != nil {
			return nil, err
		}
		item.RequestID = requestID
	}

	if err := s.store.UpdateItem(ctx, item); err != nil {
		return nil, err
	}

	s.invalidateSearchCache(ctx)

	s.logger.Info().Int64("item_id", itemID).Msg("item updated")
	return item, nil
}

// ListByOwner returns the owner's items as owner views, ordered by id.
func (s *ItemService) ListByOwner(ctx context.Context, ownerID int64) ([]models.ItemView, error) {
	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	items, err := s.store.GetItemsByOwner(ctx, owner.ID)
	if err != nil {
		return nil, err
	}

	views := make([]models.ItemView, 0, len(items))
	for i := range items {
		view, err := s.buildView(ctx, &items[i], ownerID)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}

	return views, nil
}

// Search matches available items by name or description. A blank query
// returns an empty list without touching the store.
func (s *ItemService) Search(ctx context.Context, text string) ([]models.Item, error) {
	if strings.TrimSpace(text) == "" {
		return []models.Item{}, nil
	}

	query := strings.ToLower(strings.TrimSpace(text))

	if s.cache != nil {
		items, ok, err := s.cache.Get(ctx, query)
		if err != nil {
			s.logger.Error().Err(err).Str("query", query).Msg("search cache get error")
		} else if ok {
			metrics.IncSearchCache("hit")
			return items, nil
		}
		metrics.IncSearchCache("miss")
	}

	items, err := s.store.SearchItems(ctx, query)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Item{}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, query, items); err != nil {
			s.logger.Error().Err(err).Str("query", query).Msg("search cache set error")
		}
	}

	return items, nil
}

// CreateComment lets a user who has actually begun a booking of the item
// leave feedback. The booking's approval status is not checked; having a
// started booking, even a rejected one, grants eligibility.
func (s *ItemService) CreateComment(ctx context.Context, authorID, itemID int64, comment *models.Comment) (*models.Comment, error) {
	item, err := s.store.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	eligible, err := s.store.HasStartedBooking(ctx, item.ID, authorID, now)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, domain.BadRequestf("only a user who has booked the item can leave a comment")
	}

	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	comment.ItemID = item.ID
	comment.AuthorID = author.ID
	comment.AuthorName = author.Name
	comment.Created = now

	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("comment_id", comment.ID).Int64("item_id", itemID).Msg("comment created")
	return comment, nil
}

func (s *ItemService) buildView(ctx context.Context, item *models.Item, viewerID int64) (*models.ItemView, error) {
	view := &models.ItemView{Item: *item}

	comments, err := s.store.GetCommentsByItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	view.Comments = comments

	if item.OwnerID != viewerID {
		return view, nil
	}

	now := time.Now()
	view.LastBooking, err = s.store.GetLastBooking(ctx, item.ID, now)
	if err != nil {
		return nil, err
	}
	view.NextBooking, err = s.store.GetNextBooking(ctx, item.ID, now)
	if err != nil {
		return nil, err
	}

	return view, nil
}

func (s *ItemService) invalidateSearchCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Error().Err(err).Msg("search cache invalidate error")
	}
}
