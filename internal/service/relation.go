// Package service holds the business rules between the HTTP handlers and
// the repositories.
//
//	Handler (HTTP) → Service (rules, validation) → Repository (SQL)
//
// Services never see HTTP types. They return *apperror.AppError values for
// failures a caller can act on and wrap everything else with context.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/foodgram/internal/apperror"
	"github.com/sakif/foodgram/internal/model"
	"github.com/sakif/foodgram/internal/repository"
)

// RelationService implements the toggle relations: favorite, shopping cart
// and subscription.
type RelationService struct {
	relations repository.RelationRepository
	recipes   repository.RecipeRepository
	users     repository.UserRepository
	logger    *slog.Logger
}

func NewRelationService(
	relations repository.RelationRepository,
	recipes repository.RecipeRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *RelationService {
	return &RelationService{
		relations: relations,
		recipes:   recipes,
		users:     users,
		logger:    logger,
	}
}

// ToggleAdd stores the (userID, targetID) pair of the given kind and
// returns the response payload: a recipe summary for favorite and cart, an
// author summary for subscription. recipesLimit truncates the author's
// recipe list; zero or negative means no limit.
//
// Failures:
//   - SelfReference: subscription with userID == targetID, checked before
//     any lookup so it holds whether or not the user exists
//   - NotFound: the target recipe or author does not exist
//   - AlreadyExists: the pair is already stored
func (s *RelationService) ToggleAdd(ctx context.Context, kind model.RelationKind, userID, targetID string, recipesLimit int) (*model.ToggleResult, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("service/relation: unknown kind %d", int(kind))
	}
	if kind == model.KindSubscription && userID == targetID {
		return nil, apperror.SelfReference("author", "cannot subscribe to yourself")
	}

	result := &model.ToggleResult{Kind: kind}

	if kind.TargetsRecipe() {
		recipe, err := s.recipes.GetRecipe(ctx, targetID)
		if err != nil {
			return nil, err
		}
		if err := s.relations.AddRelation(ctx, kind, userID, targetID); err != nil {
			return nil, err
		}
		summary := recipe.Summary()
		result.Recipe = &summary
	} else {
		author, err := s.users.GetUserByID(ctx, targetID)
		if err != nil {
			return nil, err
		}
		if err := s.relations.AddRelation(ctx, kind, userID, targetID); err != nil {
			return nil, err
		}
		summary, err := s.authorSummary(ctx, author, true, recipesLimit)
		if err != nil {
			return nil, err
		}
		result.Author = summary
	}

	s.logger.Info("relation added",
		slog.String("kind", kind.String()),
		slog.String("userID", userID),
		slog.String("targetID", targetID),
	)
	return result, nil
}

// ToggleRemove deletes the pair, failing with NotFound when it is absent.
func (s *RelationService) ToggleRemove(ctx context.Context, kind model.RelationKind, userID, targetID string) error {
	if !kind.Valid() {
		return fmt.Errorf("service/relation: unknown kind %d", int(kind))
	}
	if err := s.relations.RemoveRelation(ctx, kind, userID, targetID); err != nil {
		return err
	}

	s.logger.Info("relation removed",
		slog.String("kind", kind.String()),
		slog.String("userID", userID),
		slog.String("targetID", targetID),
	)
	return nil
}

// Subscriptions lists the authors userID follows, oldest subscription first,
// each with their recipes.
func (s *RelationService) Subscriptions(ctx context.Context, userID string, recipesLimit, limit, offset int) (*model.Page[model.AuthorSummary], error) {
	limit, offset = clampPage(limit, offset)

	authorIDs, err := s.relations.ListRelated(ctx, model.KindSubscription, userID)
	if err != nil {
		return nil, fmt.Errorf("service/relation: listing subscriptions: %w", err)
	}

	page := &model.Page[model.AuthorSummary]{
		Count:   len(authorIDs),
		Results: []model.AuthorSummary{},
	}
	for _, id := range paginate(authorIDs, limit, offset) {
		author, err := s.users.GetUserByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("service/relation: loading author %s: %w", id, err)
		}
		summary, err := s.authorSummary(ctx, author, true, recipesLimit)
		if err != nil {
			return nil, err
		}
		page.Results = append(page.Results, *summary)
	}
	return page, nil
}

func (s *RelationService) authorSummary(ctx context.Context, author *model.User, subscribed bool, recipesLimit int) (*model.AuthorSummary, error) {
	recipes, err := s.recipes.ListRecipes(ctx, author.ID)
	if err != nil {
		return nil, fmt.Errorf("service/relation: listing recipes of %s: %w", author.ID, err)
	}

	summary := &model.AuthorSummary{
		UserView:     author.View(subscribed),
		RecipesCount: len(recipes),
		Recipes:      []model.RecipeSummary{},
	}
	if recipesLimit > 0 && len(recipes) > recipesLimit {
		recipes = recipes[:recipesLimit]
	}
	for i := range recipes {
		summary.Recipes = append(summary.Recipes, recipes[i].Summary())
	}
	return summary, nil
}

// paginate returns the [offset, offset+limit) window of items.
func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
