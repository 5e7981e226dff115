// Package repository declares the storage contracts the services depend on.
// The sqlite subpackage is the only implementation; service tests use fakes.
package repository

import (
	"context"

	"github.com/sakif/foodgram/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	UpsertGitHubUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context, opts ListOptions) ([]model.User, int, error)
	UpdatePassword(ctx context.Context, id, hash string) error
}

type CatalogRepository interface {
	CreateTag(ctx context.Context, tag *model.Tag) error
	GetTag(ctx context.Context, id int64) (*model.Tag, error)
	ListTags(ctx context.Context) ([]model.Tag, error)
	CreateIngredient(ctx context.Context, ing *model.Ingredient) error
	GetIngredient(ctx context.Context, id int64) (*model.Ingredient, error)
	// SearchIngredients returns ingredients whose name starts with prefix,
	// case-insensitively. An empty prefix lists everything.
	SearchIngredients(ctx context.Context, prefix string) ([]model.Ingredient, error)
}

type RecipeRepository interface {
	// CreateRecipe stores the recipe with its tags and ingredient lines in
	// one transaction and fills in ID and CreatedAt.
	CreateRecipe(ctx context.Context, recipe *model.Recipe) error
	GetRecipe(ctx context.Context, id string) (*model.Recipe, error)
	// ListRecipes returns every recipe newest first. When authorID is not
	// empty only that author's recipes are returned.
	ListRecipes(ctx context.Context, authorID string) ([]model.Recipe, error)
	// UpdateRecipe rewrites base fields and replaces tags and lines wholesale.
	UpdateRecipe(ctx context.Context, recipe *model.Recipe) error
	DeleteRecipe(ctx context.Context, id string) error
}

// RelationRepository stores the three toggle relations. The kind selects
// the table; left is always a user id, right is a recipe id or, for
// subscriptions, the author's user id.
type RelationRepository interface {
	AddRelation(ctx context.Context, kind model.RelationKind, left, right string) error
	RemoveRelation(ctx context.Context, kind model.RelationKind, left, right string) error
	HasRelation(ctx context.Context, kind model.RelationKind, left, right string) (bool, error)
	// ListRelated returns the right-side ids for left, oldest entry first.
	ListRelated(ctx context.Context, kind model.RelationKind, left string) ([]string, error)
}

type ShoppingRepository interface {
	// CartLines returns every ingredient line reachable from the user's cart
	// in a single consistent read, ordered by cart entry then by line.
	CartLines(ctx context.Context, userID string) ([]model.CartLine, error)
}
