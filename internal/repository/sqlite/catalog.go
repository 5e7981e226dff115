package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/sakif/foodgram/internal/apperror"
	"github.com/sakif/foodgram/internal/model"
	"github.com/sakif/foodgram/internal/repository"
)

var _ repository.CatalogRepository = (*DB)(nil)

// SQLite's LIKE only folds ASCII, and ingredient names are frequently
// Cyrillic. Names are folded once on insert into search_name and prefixes
// are folded the same way before matching. A Caser is stateful, so each
// call gets its own.
func foldName(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// escapeLike escapes LIKE wildcards so a prefix is matched literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func (db *DB) CreateTag(ctx context.Context, tag *model.Tag) error {
	if !tag.ValidColor() {
		return apperror.ValidationFailed("color", fmt.Sprintf("color %q is not a hex code like #E26C2D", tag.Color))
	}
	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO tags (name, color, slug) VALUES (?, ?, ?)`,
		tag.Name, tag.Color, tag.Slug,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("tag", tag.Slug)
		}
		return fmt.Errorf("sqlite: inserting tag %s: %w", tag.Slug, err)
	}
	tag.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading tag id: %w", err)
	}
	return nil
}

func (db *DB) GetTag(ctx context.Context, id int64) (*model.Tag, error) {
	var t model.Tag
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, color, slug FROM tags WHERE id = ?`, id,
	).Scan(&t.ID, &t.Name, &t.Color, &t.Slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("tag", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting tag %d: %w", id, err)
	}
	return &t, nil
}

func (db *DB) ListTags(ctx context.Context) ([]model.Tag, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, color, slug FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tags: %w", err)
	}
	defer rows.Close()

	tags := []model.Tag{}
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.Slug); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tag row: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (db *DB) CreateIngredient(ctx context.Context, ing *model.Ingredient) error {
	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO ingredients (name, measurement_unit, search_name) VALUES (?, ?, ?)`,
		ing.Name, ing.MeasurementUnit, foldName(ing.Name),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("ingredient", ing.Name+" ("+ing.MeasurementUnit+")")
		}
		return fmt.Errorf("sqlite: inserting ingredient %s: %w", ing.Name, err)
	}
	ing.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading ingredient id: %w", err)
	}
	return nil
}

func (db *DB) GetIngredient(ctx context.Context, id int64) (*model.Ingredient, error) {
	var i model.Ingredient
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, measurement_unit FROM ingredients WHERE id = ?`, id,
	).Scan(&i.ID, &i.Name, &i.MeasurementUnit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("ingredient", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting ingredient %d: %w", id, err)
	}
	return &i, nil
}

func (db *DB) SearchIngredients(ctx context.Context, prefix string) ([]model.Ingredient, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, measurement_unit FROM ingredients
		 WHERE search_name LIKE ? ESCAPE '\'
		 ORDER BY name, id`,
		escapeLike(foldName(prefix))+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: searching ingredients: %w", err)
	}
	defer rows.Close()

	ingredients := []model.Ingredient{}
	for rows.Next() {
		var i model.Ingredient
		if err := rows.Scan(&i.ID, &i.Name, &i.MeasurementUnit); err != nil {
			return nil, fmt.Errorf("sqlite: scanning ingredient row: %w", err)
		}
		ingredients = append(ingredients, i)
	}
	return ingredients, rows.Err()
}
