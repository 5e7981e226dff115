package model

import "testing"

func TestRelationKind_Names(t *testing.T) {
	tests := []struct {
		kind          RelationKind
		name          string
		targetsRecipe bool
	}{
		{KindFavorite, "favorite", true},
		{KindShoppingCart, "shopping_cart", true},
		{KindSubscription, "subscription", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.kind.Valid() {
				t.Errorf("%v should be valid", tt.kind)
			}
			if got := tt.kind.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
			if got := tt.kind.TargetsRecipe(); got != tt.targetsRecipe {
				t.Errorf("TargetsRecipe() = %v, want %v", got, tt.targetsRecipe)
			}

			parsed, err := ParseRelationKind(tt.name)
			if err != nil {
				t.Fatalf("ParseRelationKind(%q): %v", tt.name, err)
			}
			if parsed != tt.kind {
				t.Errorf("ParseRelationKind(%q) = %v, want %v", tt.name, parsed, tt.kind)
			}
		})
	}
}

func TestRelationKind_Unknown(t *testing.T) {
	var k RelationKind
	if k.Valid() {
		t.Error("zero kind should be invalid")
	}
	if got := RelationKind(42).String(); got != "RelationKind(42)" {
		t.Errorf("String() = %q", got)
	}
	if _, err := ParseRelationKind("likes"); err == nil {
		t.Error("expected error for unknown kind name")
	}
}

func TestToggleResult_Payload(t *testing.T) {
	recipe := &RecipeSummary{ID: "r1", Name: "Soup"}
	if got := (&ToggleResult{Kind: KindFavorite, Recipe: recipe}).Payload(); got != recipe {
		t.Errorf("favorite payload = %v, want the recipe summary", got)
	}

	author := &AuthorSummary{UserView: UserView{ID: "u1"}}
	if got := (&ToggleResult{Kind: KindSubscription, Author: author}).Payload(); got != author {
		t.Errorf("subscription payload = %v, want the author summary", got)
	}
}

func TestRecipeFilter_NeedsViewer(t *testing.T) {
	yes, author := true, "u1"
	tests := []struct {
		name   string
		filter RecipeFilter
		want   bool
	}{
		{"empty", RecipeFilter{}, false},
		{"author and tags", RecipeFilter{AuthorID: &author, TagSlugs: []string{"soup"}}, false},
		{"favorited", RecipeFilter{Favorited: &yes}, true},
		{"in cart", RecipeFilter{InCart: &yes}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.NeedsViewer(); got != tt.want {
				t.Errorf("NeedsViewer() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecipe_HasAnyTag(t *testing.T) {
	r := Recipe{Tags: []Tag{{Slug: "breakfast"}, {Slug: "quick"}}}
	if !r.HasAnyTag([]string{"dinner", "quick"}) {
		t.Error("expected a match on quick")
	}
	if r.HasAnyTag([]string{"dinner"}) {
		t.Error("unexpected match on dinner")
	}
	if r.HasAnyTag(nil) {
		t.Error("no slugs should match nothing")
	}
}
