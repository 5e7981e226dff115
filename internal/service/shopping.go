package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/foodgram/internal/apperror"
	"github.com/sakif/foodgram/internal/repository"
	"github.com/sakif/foodgram/internal/shopping"
)

// ShoppingService builds a user's merged shopping list from their cart.
type ShoppingService struct {
	repo   repository.ShoppingRepository
	logger *slog.Logger
}

func NewShoppingService(repo repository.ShoppingRepository, logger *slog.Logger) *ShoppingService {
	return &ShoppingService{repo: repo, logger: logger}
}

// Aggregate merges every ingredient line of every recipe in the user's cart.
// An empty cart yields an empty list.
//
// Dangling references in storage are returned as integrity violations and
// logged at error level with their own message, apart from user errors.
func (s *ShoppingService) Aggregate(ctx context.Context, userID string) (*shopping.List, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("authentication required")
	}

	lines, err := s.repo.CartLines(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrIntegrity) {
			s.logger.Error("data integrity violation",
				slog.String("userID", userID),
				slog.String("error", err.Error()),
			)
			return nil, err
		}
		return nil, fmt.Errorf("service/shopping: reading cart of %s: %w", userID, err)
	}

	list := shopping.Merge(lines)
	s.logger.Debug("shopping list aggregated",
		slog.String("userID", userID),
		slog.Int("lines", len(lines)),
		slog.Int("items", list.Len()),
	)
	return list, nil
}

// Export renders the user's shopping list as text.
func (s *ShoppingService) Export(ctx context.Context, userID string) ([]byte, error) {
	list, err := s.Aggregate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return []byte(list.Text()), nil
}
