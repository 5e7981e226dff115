package model

import (
	"regexp"
	"time"
)

var tagColorPattern = regexp.MustCompile(`^#([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// Tag is immutable reference data. Name, Color and Slug are each unique.
type Tag struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

// ValidColor reports whether Color is a #RGB or #RRGGBB hex code.
func (t *Tag) ValidColor() bool {
	return tagColorPattern.MatchString(t.Color)
}

// Ingredient is reference data. MeasurementUnit is free text ("g", "ml", "pcs").
type Ingredient struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// IngredientLine is one (recipe, ingredient, amount) row, denormalized with
// the ingredient's name and unit for reading.
type IngredientLine struct {
	IngredientID    int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// Recipe is the stored aggregate: base fields plus its ordered tags and
// ingredient lines. Tags and Ingredients are replaced wholesale on update.
type Recipe struct {
	ID          string           `json:"id"`
	AuthorID    string           `json:"-"`
	Name        string           `json:"name"`
	Image       string           `json:"image"`
	Text        string           `json:"text"`
	CookingTime int              `json:"cooking_time"`
	CreatedAt   time.Time        `json:"pub_date"`
	Tags        []Tag            `json:"tags"`
	Ingredients []IngredientLine `json:"ingredients"`
}

// HasAnyTag reports whether the recipe carries at least one of the slugs.
func (r *Recipe) HasAnyTag(slugs []string) bool {
	for _, t := range r.Tags {
		for _, s := range slugs {
			if t.Slug == s {
				return true
			}
		}
	}
	return false
}

// Summary is the short form returned by favorite and cart toggles.
func (r *Recipe) Summary() RecipeSummary {
	return RecipeSummary{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}

// RecipeSummary is the compact recipe representation.
type RecipeSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// RecipeView is a recipe assembled for one viewer. For an anonymous viewer
// IsFavorited, IsInShoppingCart and Author.IsSubscribed are always false.
type RecipeView struct {
	ID               string           `json:"id"`
	Author           UserView         `json:"author"`
	Name             string           `json:"name"`
	Image            string           `json:"image"`
	Text             string           `json:"text"`
	CookingTime      int              `json:"cooking_time"`
	CreatedAt        time.Time        `json:"pub_date"`
	Tags             []Tag            `json:"tags"`
	Ingredients      []IngredientLine `json:"ingredients"`
	IsFavorited      bool             `json:"is_favorited"`
	IsInShoppingCart bool             `json:"is_in_shopping_cart"`
}

// IngredientAmount is one requested line of a recipe write.
type IngredientAmount struct {
	ID     int64 `json:"id"     validate:"required,gt=0"`
	Amount int   `json:"amount" validate:"gte=1"`
}

// RecipeInput carries the writable fields of a recipe create or update.
type RecipeInput struct {
	Name        string             `json:"name"         validate:"required,max=200"`
	Image       string             `json:"image"`
	Text        string             `json:"text"         validate:"required"`
	CookingTime int                `json:"cooking_time" validate:"gte=1"`
	Tags        []int64            `json:"tags"         validate:"required,min=1"`
	Ingredients []IngredientAmount `json:"ingredients"  validate:"required,min=1,dive"`
}

// RecipeFilter holds the optional criteria of a recipe listing.
// A nil pointer or empty slice means the criterion is not applied.
//
// Favorited and InCart are both active when false: false keeps only the
// recipes NOT in the viewer's favorites (or cart).
type RecipeFilter struct {
	AuthorID  *string
	TagSlugs  []string
	Favorited *bool
	InCart    *bool
}

// NeedsViewer reports whether the filter depends on the viewing user.
func (f RecipeFilter) NeedsViewer() bool {
	return f.Favorited != nil || f.InCart != nil
}
