package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/foodgram/internal/apperror"
	"github.com/sakif/foodgram/internal/model"
	"github.com/sakif/foodgram/internal/repository"
)

var _ repository.RecipeRepository = (*DB)(nil)

const recipeColumns = `id, author_id, name, image, text, cooking_time, created_at`

func scanRecipe(s scanner) (*model.Recipe, error) {
	var r model.Recipe
	err := s.Scan(&r.ID, &r.AuthorID, &r.Name, &r.Image, &r.Text, &r.CookingTime, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	r.Tags = []model.Tag{}
	r.Ingredients = []model.IngredientLine{}
	return &r, nil
}

// CreateRecipe inserts the recipe row, its tags and its ingredient lines
// in one transaction. Either all rows land or none do.
func (db *DB) CreateRecipe(ctx context.Context, recipe *model.Recipe) error {
	recipe.ID = xid.New().String()
	recipe.CreatedAt = time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO recipes (`+recipeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		recipe.ID,
		recipe.AuthorID,
		recipe.Name,
		recipe.Image,
		recipe.Text,
		recipe.CookingTime,
		recipe.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("user", recipe.AuthorID)
		}
		if isCheckViolation(err) {
			return apperror.ValidationFailed("cooking_time", "cooking time must be at least 1 minute")
		}
		return fmt.Errorf("sqlite: inserting recipe: %w", err)
	}

	if err := insertRecipeChildren(ctx, tx, recipe); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing recipe %s: %w", recipe.ID, err)
	}
	return nil
}

// insertRecipeChildren writes the join rows in slice order so the
// autoincrement ids preserve it for reads.
func insertRecipeChildren(ctx context.Context, tx *sql.Tx, recipe *model.Recipe) error {
	for _, tag := range recipe.Tags {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO recipe_tags (recipe_id, tag_id) VALUES (?, ?)`,
			recipe.ID, tag.ID,
		)
		if err != nil {
			switch {
			case isUniqueViolation(err):
				return apperror.ValidationFailed("tags", "tags must not repeat")
			case isForeignKeyViolation(err):
				return apperror.NotFound("tag", fmt.Sprint(tag.ID))
			}
			return fmt.Errorf("sqlite: inserting recipe tag: %w", err)
		}
	}

	for _, line := range recipe.Ingredients {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO ingredient_lines (recipe_id, ingredient_id, amount) VALUES (?, ?, ?)`,
			recipe.ID, line.IngredientID, line.Amount,
		)
		if err != nil {
			switch {
			case isUniqueViolation(err):
				return apperror.ValidationFailed("ingredients", "ingredients must not repeat")
			case isForeignKeyViolation(err):
				return apperror.NotFound("ingredient", fmt.Sprint(line.IngredientID))
			case isCheckViolation(err):
				return apperror.ValidationFailed("amount", "amount must be at least 1")
			}
			return fmt.Errorf("sqlite: inserting ingredient line: %w", err)
		}
	}
	return nil
}

func (db *DB) GetRecipe(ctx context.Context, id string) (*model.Recipe, error) {
	recipe, err := scanRecipe(db.conn.QueryRowContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("recipe", id)
		}
		return nil, fmt.Errorf("sqlite: getting recipe %s: %w", id, err)
	}

	if err := loadChildren(ctx, db.conn, []*model.Recipe{recipe}); err != nil {
		return nil, err
	}
	return recipe, nil
}

// ListRecipes returns recipes newest first with tags and lines attached.
// rowid breaks ties between recipes created within the same clock tick.
func (db *DB) ListRecipes(ctx context.Context, authorID string) ([]model.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes`
	var args []any
	if authorID != "" {
		query += ` WHERE author_id = ?`
		args = append(args, authorID)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing recipes: %w", err)
	}

	var ptrs []*model.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("sqlite: scanning recipe row: %w", err)
		}
		ptrs = append(ptrs, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating recipe rows: %w", err)
	}

	if err := loadChildren(ctx, db.conn, ptrs); err != nil {
		return nil, err
	}

	recipes := make([]model.Recipe, 0, len(ptrs))
	for _, r := range ptrs {
		recipes = append(recipes, *r)
	}
	return recipes, nil
}

// loadChildren attaches tags and ingredient lines, each in insertion order.
func loadChildren(ctx context.Context, q querier, recipes []*model.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	byID := make(map[string]*model.Recipe, len(recipes))
	args := make([]any, 0, len(recipes))
	for _, r := range recipes {
		byID[r.ID] = r
		args = append(args, r.ID)
	}
	in := placeholders(len(args))

	rows, err := q.QueryContext(ctx,
		`SELECT rt.recipe_id, t.id, t.name, t.color, t.slug
		 FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id
		 WHERE rt.recipe_id IN (`+in+`)
		 ORDER BY rt.id`, args...)
	if err != nil {
		return fmt.Errorf("sqlite: loading recipe tags: %w", err)
	}
	for rows.Next() {
		var (
			recipeID string
			t        model.Tag
		)
		if err := rows.Scan(&recipeID, &t.ID, &t.Name, &t.Color, &t.Slug); err != nil {
			rows.Close()
			return fmt.Errorf("sqlite: scanning recipe tag: %w", err)
		}
		byID[recipeID].Tags = append(byID[recipeID].Tags, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sqlite: iterating recipe tags: %w", err)
	}

	rows, err = q.QueryContext(ctx,
		`SELECT il.recipe_id, i.id, i.name, i.measurement_unit, il.amount
		 FROM ingredient_lines il JOIN ingredients i ON i.id = il.ingredient_id
		 WHERE il.recipe_id IN (`+in+`)
		 ORDER BY il.id`, args...)
	if err != nil {
		return fmt.Errorf("sqlite: loading ingredient lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			recipeID string
			l        model.IngredientLine
		)
		if err := rows.Scan(&recipeID, &l.IngredientID, &l.Name, &l.MeasurementUnit, &l.Amount); err != nil {
			return fmt.Errorf("sqlite: scanning ingredient line: %w", err)
		}
		byID[recipeID].Ingredients = append(byID[recipeID].Ingredients, l)
	}
	return rows.Err()
}

// UpdateRecipe rewrites the base fields and replaces tags and ingredient
// lines wholesale: old join rows are deleted, new ones inserted.
func (db *DB) UpdateRecipe(ctx context.Context, recipe *model.Recipe) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE recipes SET name = ?, image = ?, text = ?, cooking_time = ? WHERE id = ?`,
		recipe.Name, recipe.Image, recipe.Text, recipe.CookingTime, recipe.ID,
	)
	if err != nil {
		if isCheckViolation(err) {
			return apperror.ValidationFailed("cooking_time", "cooking time must be at least 1 minute")
		}
		return fmt.Errorf("sqlite: updating recipe %s: %w", recipe.ID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("recipe", recipe.ID)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_tags WHERE recipe_id = ?`, recipe.ID); err != nil {
		return fmt.Errorf("sqlite: clearing recipe tags: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM ingredient_lines WHERE recipe_id = ?`, recipe.ID); err != nil {
		return fmt.Errorf("sqlite: clearing ingredient lines: %w", err)
	}
	if err := insertRecipeChildren(ctx, tx, recipe); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing recipe %s: %w", recipe.ID, err)
	}
	return nil
}

// DeleteRecipe removes the recipe. Lines, tags, favorites and cart entries
// go with it through ON DELETE CASCADE.
func (db *DB) DeleteRecipe(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting recipe %s: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("recipe", id)
	}
	return nil
}
