package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/foodgram/internal/apperror"
	"github.com/sakif/foodgram/internal/model"
	"github.com/sakif/foodgram/internal/repository"
)

const (
	MaxRecipeNameLength = 200
	DefaultListLimit    = 6
	MaxListLimit        = 100
)

// clampPage applies the default page size and bounds.
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// RecipeService assembles recipe read views and owns recipe writes.
type RecipeService struct {
	recipes   repository.RecipeRepository
	catalog   repository.CatalogRepository
	relations repository.RelationRepository
	users     repository.UserRepository
	logger    *slog.Logger
}

func NewRecipeService(
	recipes repository.RecipeRepository,
	catalog repository.CatalogRepository,
	relations repository.RelationRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *RecipeService {
	return &RecipeService{
		recipes:   recipes,
		catalog:   catalog,
		relations: relations,
		users:     users,
		logger:    logger,
	}
}

// viewerSets holds one viewer's relation sets so a listing checks flags
// in memory instead of querying per recipe. For an anonymous viewer every
// set is empty.
type viewerSets struct {
	viewerID      string
	favorites     IDSet
	cart          IDSet
	subscriptions IDSet
}

func (s *RecipeService) loadViewerSets(ctx context.Context, viewerID string) (*viewerSets, error) {
	vs := &viewerSets{viewerID: viewerID}
	if viewerID == "" {
		return vs, nil
	}

	sets := map[model.RelationKind]*IDSet{
		model.KindFavorite:     &vs.favorites,
		model.KindShoppingCart: &vs.cart,
		model.KindSubscription: &vs.subscriptions,
	}
	for kind, dst := range sets {
		ids, err := s.relations.ListRelated(ctx, kind, viewerID)
		if err != nil {
			return nil, fmt.Errorf("service/recipe: loading %s of viewer: %w", kind, err)
		}
		*dst = NewIDSet(ids)
	}
	return vs, nil
}

// assemble projects a stored recipe for the viewer. authors caches author
// lookups across one listing.
func (s *RecipeService) assemble(ctx context.Context, r *model.Recipe, vs *viewerSets, authors map[string]*model.User) (*model.RecipeView, error) {
	author, ok := authors[r.AuthorID]
	if !ok {
		var err error
		author, err = s.users.GetUserByID(ctx, r.AuthorID)
		if err != nil {
			return nil, fmt.Errorf("service/recipe: loading author of %s: %w", r.ID, err)
		}
		authors[r.AuthorID] = author
	}

	return &model.RecipeView{
		ID:               r.ID,
		Author:           author.View(vs.subscriptions.Has(author.ID)),
		Name:             r.Name,
		Image:            r.Image,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
		CreatedAt:        r.CreatedAt,
		Tags:             r.Tags,
		Ingredients:      r.Ingredients,
		IsFavorited:      vs.favorites.Has(r.ID),
		IsInShoppingCart: vs.cart.Has(r.ID),
	}, nil
}

// Get returns the read view of one recipe. viewerID "" is an anonymous
// viewer, for whom every relation flag is false.
func (s *RecipeService) Get(ctx context.Context, id, viewerID string) (*model.RecipeView, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "recipe ID is required")
	}

	recipe, err := s.recipes.GetRecipe(ctx, id)
	if err != nil {
		return nil, err
	}

	vs := &viewerSets{viewerID: viewerID}
	if viewerID != "" {
		vs.favorites, vs.cart, vs.subscriptions = IDSet{}, IDSet{}, IDSet{}
		checks := []struct {
			kind  model.RelationKind
			right string
			dst   IDSet
		}{
			{model.KindFavorite, recipe.ID, vs.favorites},
			{model.KindShoppingCart, recipe.ID, vs.cart},
			{model.KindSubscription, recipe.AuthorID, vs.subscriptions},
		}
		for _, c := range checks {
			ok, err := s.relations.HasRelation(ctx, c.kind, viewerID, c.right)
			if err != nil {
				return nil, fmt.Errorf("service/recipe: checking %s: %w", c.kind, err)
			}
			if ok {
				c.dst[c.right] = struct{}{}
			}
		}
	}

	return s.assemble(ctx, recipe, vs, map[string]*model.User{})
}

// List returns one page of recipes matching filter, newest first.
//
// Favorited and InCart filters need an identified viewer; an anonymous
// viewer supplying them is rejected before any filtering happens.
func (s *RecipeService) List(ctx context.Context, viewerID string, filter model.RecipeFilter, limit, offset int) (*model.Page[model.RecipeView], error) {
	if filter.NeedsViewer() && viewerID == "" {
		return nil, apperror.Unauthorized("is_favorited and is_in_shopping_cart require authentication")
	}
	limit, offset = clampPage(limit, offset)

	authorID := ""
	if filter.AuthorID != nil {
		authorID = *filter.AuthorID
	}
	all, err := s.recipes.ListRecipes(ctx, authorID)
	if err != nil {
		s.logger.Error("failed to list recipes", slog.String("error", err.Error()))
		return nil, fmt.Errorf("service/recipe: listing recipes: %w", err)
	}

	vs, err := s.loadViewerSets(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	matched := FilterRecipes(all, filter, vs.favorites, vs.cart)

	page := &model.Page[model.RecipeView]{
		Count:   len(matched),
		Results: []model.RecipeView{},
	}
	authors := map[string]*model.User{}
	for _, r := range paginate(matched, limit, offset) {
		view, err := s.assemble(ctx, &r, vs, authors)
		if err != nil {
			return nil, err
		}
		page.Results = append(page.Results, *view)
	}
	return page, nil
}

// Create validates input and stores a new recipe owned by authorID.
func (s *RecipeService) Create(ctx context.Context, authorID string, in model.RecipeInput) (*model.RecipeView, error) {
	recipe, err := s.buildRecipe(ctx, in)
	if err != nil {
		return nil, err
	}
	recipe.AuthorID = authorID

	if err := s.recipes.CreateRecipe(ctx, recipe); err != nil {
		s.logger.Error("failed to create recipe",
			slog.String("name", recipe.Name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/recipe: creating recipe: %w", err)
	}

	s.logger.Info("recipe created",
		slog.String("id", recipe.ID),
		slog.String("authorID", authorID),
	)
	return s.Get(ctx, recipe.ID, authorID)
}

// Update replaces a recipe's fields, tags and ingredient lines. Only the
// author or an admin may update.
func (s *RecipeService) Update(ctx context.Context, id, actorID string, in model.RecipeInput) (*model.RecipeView, error) {
	existing, err := s.recipes.GetRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, existing, actorID); err != nil {
		return nil, err
	}

	recipe, err := s.buildRecipe(ctx, in)
	if err != nil {
		return nil, err
	}
	recipe.ID = existing.ID
	recipe.AuthorID = existing.AuthorID

	if err := s.recipes.UpdateRecipe(ctx, recipe); err != nil {
		return nil, fmt.Errorf("service/recipe: updating recipe %s: %w", id, err)
	}

	s.logger.Info("recipe updated", slog.String("id", id))
	return s.Get(ctx, id, actorID)
}

// Delete removes a recipe. Only the author or an admin may delete.
func (s *RecipeService) Delete(ctx context.Context, id, actorID string) error {
	existing, err := s.recipes.GetRecipe(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, existing, actorID); err != nil {
		return err
	}

	if err := s.recipes.DeleteRecipe(ctx, id); err != nil {
		return fmt.Errorf("service/recipe: deleting recipe %s: %w", id, err)
	}

	s.logger.Info("recipe deleted", slog.String("id", id))
	return nil
}

// authorize allows the recipe's author and admins.
func (s *RecipeService) authorize(ctx context.Context, r *model.Recipe, actorID string) error {
	if actorID == "" {
		return apperror.Unauthorized("authentication required")
	}
	if r.AuthorID == actorID {
		return nil
	}
	actor, err := s.users.GetUserByID(ctx, actorID)
	if err != nil {
		return fmt.Errorf("service/recipe: loading actor: %w", err)
	}
	if !actor.IsAdmin {
		return apperror.Forbidden("only the author can change this recipe")
	}
	return nil
}

// buildRecipe validates input and resolves tag and ingredient references.
func (s *RecipeService) buildRecipe(ctx context.Context, in model.RecipeInput) (*model.Recipe, error) {
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return nil, apperror.ValidationFailed("name", "recipe name is required")
	case len([]rune(name)) > MaxRecipeNameLength:
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("recipe name must be %d characters or less", MaxRecipeNameLength))
	case strings.TrimSpace(in.Text) == "":
		return nil, apperror.ValidationFailed("text", "recipe text is required")
	case in.CookingTime < 1:
		return nil, apperror.ValidationFailed("cooking_time", "cooking time must be at least 1 minute")
	case len(in.Ingredients) == 0:
		return nil, apperror.ValidationFailed("ingredients", "at least one ingredient is required")
	case len(in.Tags) == 0:
		return nil, apperror.ValidationFailed("tags", "at least one tag is required")
	}

	recipe := &model.Recipe{
		Name:        name,
		Image:       in.Image,
		Text:        in.Text,
		CookingTime: in.CookingTime,
	}

	seenTags := make(map[int64]bool, len(in.Tags))
	for _, id := range in.Tags {
		if seenTags[id] {
			return nil, apperror.ValidationFailed("tags", "tags must not repeat")
		}
		seenTags[id] = true
		tag, err := s.catalog.GetTag(ctx, id)
		if err != nil {
			return nil, err
		}
		recipe.Tags = append(recipe.Tags, *tag)
	}

	seenIngredients := make(map[int64]bool, len(in.Ingredients))
	for _, ia := range in.Ingredients {
		if seenIngredients[ia.ID] {
			return nil, apperror.ValidationFailed("ingredients", "ingredients must not repeat")
		}
		seenIngredients[ia.ID] = true
		if ia.Amount < 1 {
			return nil, apperror.ValidationFailed("amount", "amount must be at least 1")
		}
		ing, err := s.catalog.GetIngredient(ctx, ia.ID)
		if err != nil {
			return nil, err
		}
		recipe.Ingredients = append(recipe.Ingredients, model.IngredientLine{
			IngredientID:    ing.ID,
			Name:            ing.Name,
			MeasurementUnit: ing.MeasurementUnit,
			Amount:          ia.Amount,
		})
	}

	return recipe, nil
}
