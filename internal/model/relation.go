package model

import "fmt"

// RelationKind enumerates the toggle relations a user can add or remove.
type RelationKind int

const (
	KindFavorite RelationKind = iota + 1
	KindShoppingCart
	KindSubscription
)

var relationKindNames = map[RelationKind]string{
	KindFavorite:     "favorite",
	KindShoppingCart: "shopping_cart",
	KindSubscription: "subscription",
}

func (k RelationKind) String() string {
	if name, ok := relationKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("RelationKind(%d)", int(k))
}

// Valid reports whether k is one of the declared kinds.
func (k RelationKind) Valid() bool {
	_, ok := relationKindNames[k]
	return ok
}

// TargetsRecipe is true for kinds whose right side is a recipe id.
// Subscription targets a user (the author).
func (k RelationKind) TargetsRecipe() bool {
	return k == KindFavorite || k == KindShoppingCart
}

// ParseRelationKind maps a kind name back to its RelationKind.
func ParseRelationKind(s string) (RelationKind, error) {
	for k, name := range relationKindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("model: unknown relation kind %q", s)
}

// ToggleResult is returned by a successful toggle-add. Exactly one of
// Recipe or Author is set, depending on the kind.
type ToggleResult struct {
	Kind   RelationKind
	Recipe *RecipeSummary
	Author *AuthorSummary
}

// Payload returns the response body for the toggled relation.
func (r *ToggleResult) Payload() any {
	if r.Author != nil {
		return r.Author
	}
	return r.Recipe
}

// CartLine is one ingredient line reached through a user's shopping cart,
// in cart order then line order.
type CartLine struct {
	RecipeID string
	Name     string
	Unit     string
	Amount   int
}
