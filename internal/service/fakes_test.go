package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sakif/foodgram/internal/apperror"
	"github.com/sakif/foodgram/internal/model"
	"github.com/sakif/foodgram/internal/repository"
)

// =========================================================================
// FAKE STORE
// =========================================================================

// fakeStore is an in-memory stand-in for every repository interface. It
// keeps the same error contract as the sqlite implementation so service
// tests exercise the real failure paths.
type fakeStore struct {
	mu sync.Mutex

	users       map[string]*model.User
	userOrder   []string
	tags        map[int64]*model.Tag
	ingredients map[int64]*model.Ingredient
	recipes     map[string]*model.Recipe
	recipeOrder []string
	relations   map[model.RelationKind][][2]string

	nextID  int
	clock   time.Time
	cartErr error
}

var (
	_ repository.UserRepository     = (*fakeStore)(nil)
	_ repository.CatalogRepository  = (*fakeStore)(nil)
	_ repository.RecipeRepository   = (*fakeStore)(nil)
	_ repository.RelationRepository = (*fakeStore)(nil)
	_ repository.ShoppingRepository = (*fakeStore)(nil)
)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       map[string]*model.User{},
		tags:        map[int64]*model.Tag{},
		ingredients: map[int64]*model.Ingredient{},
		recipes:     map[string]*model.Recipe{},
		relations:   map[model.RelationKind][][2]string{},
		clock:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeStore) tick() time.Time {
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

// ---- users ----

func (f *fakeStore) CreateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, user.Email) {
			return apperror.ValidationFailed("email", "a user with this email already exists")
		}
		if u.Username == user.Username {
			return apperror.ValidationFailed("username", "a user with this username already exists")
		}
	}
	user.ID = f.id("user")
	user.CreatedAt = f.tick()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	f.users[user.ID] = &copied
	f.userOrder = append(f.userOrder, user.ID)
	return nil
}

func (f *fakeStore) UpsertGitHubUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.GitHubID != nil && user.GitHubID != nil && *u.GitHubID == *user.GitHubID {
			u.Email = user.Email
			u.FirstName = user.FirstName
			*user = *u
			return nil
		}
	}
	user.ID = f.id("user")
	user.CreatedAt = f.tick()
	copied := *user
	f.users[user.ID] = &copied
	f.userOrder = append(f.userOrder, user.ID)
	return nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeStore) ListUsers(_ context.Context, opts repository.ListOptions) ([]model.User, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.User
	for _, id := range paginate(f.userOrder, opts.Limit, opts.Offset) {
		out = append(out, *f.users[id])
	}
	return out, len(f.userOrder), nil
}

func (f *fakeStore) UpdatePassword(_ context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	u.PasswordHash = hash
	return nil
}

// ---- catalog ----

func (f *fakeStore) CreateTag(_ context.Context, tag *model.Tag) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tag.ID = int64(len(f.tags) + 1)
	copied := *tag
	f.tags[tag.ID] = &copied
	return nil
}

func (f *fakeStore) GetTag(_ context.Context, id int64) (*model.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tags[id]
	if !ok {
		return nil, apperror.NotFound("tag", fmt.Sprint(id))
	}
	copied := *t
	return &copied, nil
}

func (f *fakeStore) ListTags(_ context.Context) ([]model.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Tag, 0, len(f.tags))
	for _, t := range f.tags {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) CreateIngredient(_ context.Context, ing *model.Ingredient) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ing.ID = int64(len(f.ingredients) + 1)
	copied := *ing
	f.ingredients[ing.ID] = &copied
	return nil
}

func (f *fakeStore) GetIngredient(_ context.Context, id int64) (*model.Ingredient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ing, ok := f.ingredients[id]
	if !ok {
		return nil, apperror.NotFound("ingredient", fmt.Sprint(id))
	}
	copied := *ing
	return &copied, nil
}

func (f *fakeStore) SearchIngredients(_ context.Context, prefix string) ([]model.Ingredient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Ingredient
	for _, ing := range f.ingredients {
		if strings.HasPrefix(strings.ToLower(ing.Name), strings.ToLower(prefix)) {
			out = append(out, *ing)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ---- recipes ----

func (f *fakeStore) CreateRecipe(_ context.Context, r *model.Recipe) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[r.AuthorID]; !ok {
		return apperror.NotFound("user", r.AuthorID)
	}
	r.ID = f.id("recipe")
	r.CreatedAt = f.tick()
	copied := *r
	f.recipes[r.ID] = &copied
	f.recipeOrder = append(f.recipeOrder, r.ID)
	return nil
}

func (f *fakeStore) GetRecipe(_ context.Context, id string) (*model.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.recipes[id]
	if !ok {
		return nil, apperror.NotFound("recipe", id)
	}
	copied := *r
	return &copied, nil
}

// ListRecipes returns newest first, like the sqlite implementation.
func (f *fakeStore) ListRecipes(_ context.Context, authorID string) ([]model.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Recipe
	for i := len(f.recipeOrder) - 1; i >= 0; i-- {
		r := f.recipes[f.recipeOrder[i]]
		if authorID != "" && r.AuthorID != authorID {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeStore) UpdateRecipe(_ context.Context, r *model.Recipe) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.recipes[r.ID]
	if !ok {
		return apperror.NotFound("recipe", r.ID)
	}
	r.CreatedAt = existing.CreatedAt
	copied := *r
	f.recipes[r.ID] = &copied
	return nil
}

func (f *fakeStore) DeleteRecipe(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.recipes[id]; !ok {
		return apperror.NotFound("recipe", id)
	}
	delete(f.recipes, id)
	for i, rid := range f.recipeOrder {
		if rid == id {
			f.recipeOrder = append(f.recipeOrder[:i], f.recipeOrder[i+1:]...)
			break
		}
	}
	for kind, pairs := range f.relations {
		if !kind.TargetsRecipe() {
			continue
		}
		kept := pairs[:0]
		for _, p := range pairs {
			if p[1] != id {
				kept = append(kept, p)
			}
		}
		f.relations[kind] = kept
	}
	return nil
}

// ---- relations ----

func (f *fakeStore) AddRelation(_ context.Context, kind model.RelationKind, left, right string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !kind.Valid() {
		return fmt.Errorf("fake: unknown kind %d", int(kind))
	}
	for _, p := range f.relations[kind] {
		if p == [2]string{left, right} {
			return apperror.AlreadyExists(kind.String(), right)
		}
	}
	if kind == model.KindSubscription && left == right {
		return apperror.SelfReference("author", "cannot subscribe to yourself")
	}
	f.relations[kind] = append(f.relations[kind], [2]string{left, right})
	return nil
}

func (f *fakeStore) RemoveRelation(_ context.Context, kind model.RelationKind, left, right string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	pairs := f.relations[kind]
	for i, p := range pairs {
		if p == [2]string{left, right} {
			f.relations[kind] = append(pairs[:i], pairs[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound(kind.String(), right)
}

func (f *fakeStore) HasRelation(_ context.Context, kind model.RelationKind, left, right string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.relations[kind] {
		if p == [2]string{left, right} {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ListRelated(_ context.Context, kind model.RelationKind, left string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, p := range f.relations[kind] {
		if p[0] == left {
			out = append(out, p[1])
		}
	}
	return out, nil
}

// ---- shopping ----

func (f *fakeStore) CartLines(_ context.Context, userID string) ([]model.CartLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cartErr != nil {
		return nil, f.cartErr
	}
	var out []model.CartLine
	for _, p := range f.relations[model.KindShoppingCart] {
		if p[0] != userID {
			continue
		}
		r, ok := f.recipes[p[1]]
		if !ok {
			return nil, apperror.IntegrityViolation("cart entry references missing recipe %s", p[1])
		}
		for _, l := range r.Ingredients {
			out = append(out, model.CartLine{RecipeID: r.ID, Name: l.Name, Unit: l.MeasurementUnit, Amount: l.Amount})
		}
	}
	return out, nil
}

// =========================================================================
// HELPERS
// =========================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func seedUser(t *testing.T, f *fakeStore, username string) *model.User {
	t.Helper()
	u := &model.User{Email: username + "@example.com", Username: username, FirstName: username}
	if err := f.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seeding user %s: %v", username, err)
	}
	return u
}

func seedTag(t *testing.T, f *fakeStore, slug string) *model.Tag {
	t.Helper()
	tag := &model.Tag{Name: strings.ToUpper(slug[:1]) + slug[1:], Color: "#E26C2D", Slug: slug}
	if err := f.CreateTag(context.Background(), tag); err != nil {
		t.Fatalf("seeding tag: %v", err)
	}
	return tag
}

func seedIngredient(t *testing.T, f *fakeStore, name, unit string) *model.Ingredient {
	t.Helper()
	ing := &model.Ingredient{Name: name, MeasurementUnit: unit}
	if err := f.CreateIngredient(context.Background(), ing); err != nil {
		t.Fatalf("seeding ingredient: %v", err)
	}
	return ing
}

// seedRecipe stores a recipe directly, bypassing RecipeService validation.
func seedRecipe(t *testing.T, f *fakeStore, author *model.User, name string, tags []model.Tag, lines ...model.IngredientLine) *model.Recipe {
	t.Helper()
	r := &model.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Text:        "Mix and bake.",
		CookingTime: 10,
		Tags:        tags,
		Ingredients: lines,
	}
	if err := f.CreateRecipe(context.Background(), r); err != nil {
		t.Fatalf("seeding recipe: %v", err)
	}
	return r
}

func lineOf(ing *model.Ingredient, amount int) model.IngredientLine {
	return model.IngredientLine{
		IngredientID:    ing.ID,
		Name:            ing.Name,
		MeasurementUnit: ing.MeasurementUnit,
		Amount:          amount,
	}
}
