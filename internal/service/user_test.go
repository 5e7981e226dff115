package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/foodgram/internal/apperror"
	"github.com/sakif/foodgram/internal/model"
)

func TestUserGet_SubscriptionFlag(t *testing.T) {
	f := newFakeStore()
	svc := NewUserService(f, f)
	ctx := context.Background()
	author := seedUser(t, f, "author")
	reader := seedUser(t, f, "reader")
	if err := f.AddRelation(ctx, model.KindSubscription, reader.ID, author.ID); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		viewer string
		want   bool
	}{
		{"subscriber", reader.ID, true},
		{"anonymous", "", false},
		{"self", author.ID, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := svc.Get(ctx, author.ID, tt.viewer)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if view.IsSubscribed != tt.want {
				t.Errorf("IsSubscribed = %v, want %v", view.IsSubscribed, tt.want)
			}
		})
	}

	if _, err := svc.Get(ctx, "missing", ""); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestUserList_Paginated(t *testing.T) {
	f := newFakeStore()
	svc := NewUserService(f, f)
	ctx := context.Background()
	a := seedUser(t, f, "a")
	b := seedUser(t, f, "b")
	seedUser(t, f, "c")
	if err := f.AddRelation(ctx, model.KindSubscription, a.ID, b.ID); err != nil {
		t.Fatal(err)
	}

	page, err := svc.List(ctx, a.ID, 2, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Count != 3 || len(page.Results) != 2 {
		t.Fatalf("page = count %d results %d, want 3 and 2", page.Count, len(page.Results))
	}
	if page.Results[0].IsSubscribed || !page.Results[1].IsSubscribed {
		t.Errorf("flags = %v %v, want false true", page.Results[0].IsSubscribed, page.Results[1].IsSubscribed)
	}
}

func TestCatalogService(t *testing.T) {
	f := newFakeStore()
	svc := NewCatalogService(f)
	ctx := context.Background()
	seedTag(t, f, "lunch")
	seedIngredient(t, f, "Salt", "g")
	seedIngredient(t, f, "Sugar", "g")
	seedIngredient(t, f, "Butter", "g")

	tags, err := svc.Tags(ctx)
	if err != nil || len(tags) != 1 {
		t.Fatalf("Tags() = %v, %v", tags, err)
	}
	if _, err := svc.Tag(ctx, 99); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Tag(99) error = %v, want ErrNotFound", err)
	}

	got, err := svc.Ingredients(ctx, "s")
	if err != nil {
		t.Fatalf("Ingredients() error = %v", err)
	}
	if len(got) != 2 || got[0].Name != "Salt" || got[1].Name != "Sugar" {
		t.Errorf("Ingredients(s) = %+v, want Salt, Sugar", got)
	}
}
