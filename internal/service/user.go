package service

import (
	"context"
	"fmt"

	"github.com/sakif/foodgram/internal/model"
	"github.com/sakif/foodgram/internal/repository"
)

// UserService serves user profiles as seen by a viewer.
type UserService struct {
	users     repository.UserRepository
	relations repository.RelationRepository
}

func NewUserService(users repository.UserRepository, relations repository.RelationRepository) *UserService {
	return &UserService{users: users, relations: relations}
}

// Get returns the profile of id for viewerID ("" for anonymous).
func (s *UserService) Get(ctx context.Context, id, viewerID string) (*model.UserView, error) {
	if id == "" {
		return nil, fmt.Errorf("service/user: user ID must not be empty")
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	subscribed := false
	if viewerID != "" && viewerID != id {
		subscribed, err = s.relations.HasRelation(ctx, model.KindSubscription, viewerID, id)
		if err != nil {
			return nil, fmt.Errorf("service/user: checking subscription: %w", err)
		}
	}

	view := user.View(subscribed)
	return &view, nil
}

// List returns one page of users in registration order.
func (s *UserService) List(ctx context.Context, viewerID string, limit, offset int) (*model.Page[model.UserView], error) {
	limit, offset = clampPage(limit, offset)

	users, total, err := s.users.ListUsers(ctx, repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("service/user: listing users: %w", err)
	}

	var subscribed IDSet
	if viewerID != "" {
		ids, err := s.relations.ListRelated(ctx, model.KindSubscription, viewerID)
		if err != nil {
			return nil, fmt.Errorf("service/user: listing subscriptions: %w", err)
		}
		subscribed = NewIDSet(ids)
	}

	page := &model.Page[model.UserView]{Count: total, Results: make([]model.UserView, 0, len(users))}
	for i := range users {
		page.Results = append(page.Results, users[i].View(subscribed.Has(users[i].ID)))
	}
	return page, nil
}
