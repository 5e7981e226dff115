package service

import "github.com/sakif/foodgram/internal/model"

// IDSet is a set of recipe ids, e.g. a viewer's favorites or cart.
type IDSet map[string]struct{}

// NewIDSet builds a set from ids.
func NewIDSet(ids []string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set. A nil set is empty.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// FilterRecipes keeps the recipes that satisfy every criterion set in f.
//
// favorites and cart are the viewing user's relation sets; they are only
// consulted when f.Favorited or f.InCart is set. Both boolean values are
// active filters: true keeps members of the set, false keeps non-members.
// Tag slugs match when a recipe has ANY of them.
//
// The input order is preserved and the input slice is not modified.
func FilterRecipes(recipes []model.Recipe, f model.RecipeFilter, favorites, cart IDSet) []model.Recipe {
	out := make([]model.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if f.AuthorID != nil && r.AuthorID != *f.AuthorID {
			continue
		}
		if len(f.TagSlugs) > 0 && !r.HasAnyTag(f.TagSlugs) {
			continue
		}
		if f.Favorited != nil && favorites.Has(r.ID) != *f.Favorited {
			continue
		}
		if f.InCart != nil && cart.Has(r.ID) != *f.InCart {
			continue
		}
		out = append(out, r)
	}
	return out
}
