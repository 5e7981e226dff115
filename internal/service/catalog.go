package service

import (
	"context"
	"fmt"

	"github.com/sakif/foodgram/internal/model"
	"github.com/sakif/foodgram/internal/repository"
)

// CatalogService serves the read-only reference data: tags and ingredients.
type CatalogService struct {
	repo repository.CatalogRepository
}

func NewCatalogService(repo repository.CatalogRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

func (s *CatalogService) Tags(ctx context.Context) ([]model.Tag, error) {
	tags, err := s.repo.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/catalog: listing tags: %w", err)
	}
	return tags, nil
}

func (s *CatalogService) Tag(ctx context.Context, id int64) (*model.Tag, error) {
	return s.repo.GetTag(ctx, id)
}

// Ingredients returns the ingredients whose name starts with prefix.
func (s *CatalogService) Ingredients(ctx context.Context, prefix string) ([]model.Ingredient, error) {
	ingredients, err := s.repo.SearchIngredients(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("service/catalog: searching ingredients: %w", err)
	}
	return ingredients, nil
}

func (s *CatalogService) Ingredient(ctx context.Context, id int64) (*model.Ingredient, error) {
	return s.repo.GetIngredient(ctx, id)
}
