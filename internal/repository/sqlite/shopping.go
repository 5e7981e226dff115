package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/foodgram/internal/apperror"
	"github.com/sakif/foodgram/internal/model"
	"github.com/sakif/foodgram/internal/repository"
)

var _ repository.ShoppingRepository = (*DB)(nil)

type cartEntry struct {
	id       int64
	recipeID string
}

// CartLines reads the user's cart and every ingredient line of every cart
// recipe inside one transaction, so a cart changing mid-read cannot mix two
// states into one result.
//
// A cart row pointing at a missing recipe, or a line pointing at a missing
// ingredient, is an integrity violation. The LEFT JOINs keep such rows
// visible so they can be reported.
func (db *DB) CartLines(ctx context.Context, userID string) ([]model.CartLine, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: beginning tx: %w", err)
	}
	defer tx.Rollback()

	entries, err := cartEntries(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	lines := []model.CartLine{}
	for _, e := range entries {
		recipeLines, err := cartRecipeLines(ctx, tx, e.recipeID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, recipeLines...)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: finishing cart read: %w", err)
	}
	return lines, nil
}

func cartEntries(ctx context.Context, tx *sql.Tx, userID string) ([]cartEntry, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT c.id, c.recipe_id, r.id
		 FROM shopping_cart c LEFT JOIN recipes r ON r.id = c.recipe_id
		 WHERE c.user_id = ?
		 ORDER BY c.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading cart for %s: %w", userID, err)
	}
	defer rows.Close()

	var entries []cartEntry
	for rows.Next() {
		var (
			e     cartEntry
			found sql.NullString
		)
		if err := rows.Scan(&e.id, &e.recipeID, &found); err != nil {
			return nil, fmt.Errorf("sqlite: scanning cart row: %w", err)
		}
		if !found.Valid {
			return nil, apperror.IntegrityViolation(
				"cart entry %d of user %s references missing recipe %s", e.id, userID, e.recipeID)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating cart rows: %w", err)
	}
	return entries, nil
}

func cartRecipeLines(ctx context.Context, tx *sql.Tx, recipeID string) ([]model.CartLine, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT il.id, il.ingredient_id, il.amount, i.name, i.measurement_unit
		 FROM ingredient_lines il LEFT JOIN ingredients i ON i.id = il.ingredient_id
		 WHERE il.recipe_id = ?
		 ORDER BY il.id`,
		recipeID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading lines of recipe %s: %w", recipeID, err)
	}
	defer rows.Close()

	var lines []model.CartLine
	for rows.Next() {
		var (
			lineID, ingredientID int64
			amount               int
			name, unit           sql.NullString
		)
		if err := rows.Scan(&lineID, &ingredientID, &amount, &name, &unit); err != nil {
			return nil, fmt.Errorf("sqlite: scanning ingredient line: %w", err)
		}
		if !name.Valid {
			return nil, apperror.IntegrityViolation(
				"ingredient line %d of recipe %s references missing ingredient %d", lineID, recipeID, ingredientID)
		}
		lines = append(lines, model.CartLine{
			RecipeID: recipeID,
			Name:     name.String,
			Unit:     unit.String,
			Amount:   amount,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating ingredient lines: %w", err)
	}
	return lines, nil
}
