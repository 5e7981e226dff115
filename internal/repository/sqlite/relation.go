package sqlite

import (
	"context"
	"fmt"

	"github.com/sakif/foodgram/internal/apperror"
	"github.com/sakif/foodgram/internal/model"
	"github.com/sakif/foodgram/internal/repository"
)

var _ repository.RelationRepository = (*DB)(nil)

// relationTable names the storage of one toggle relation.
type relationTable struct {
	table string
	left  string
	right string
}

// relationTables is the only place a RelationKind becomes SQL. Table and
// column names are never taken from caller input.
var relationTables = map[model.RelationKind]relationTable{
	model.KindFavorite:     {table: "favorites", left: "user_id", right: "recipe_id"},
	model.KindShoppingCart: {table: "shopping_cart", left: "user_id", right: "recipe_id"},
	model.KindSubscription: {table: "subscriptions", left: "follower_id", right: "author_id"},
}

func tableFor(kind model.RelationKind) (relationTable, error) {
	t, ok := relationTables[kind]
	if !ok {
		return relationTable{}, fmt.Errorf("sqlite: unknown relation kind %s", kind)
	}
	return t, nil
}

func pairKey(left, right string) string {
	return left + "/" + right
}

// AddRelation stores the (left, right) pair.
//
// The existence check and the insert share one immediate transaction, so
// identical adds are serialized and every loser sees the winner's row.
// The UNIQUE constraint still backs the check. A lock that outlives
// busy_timeout is resolved by looking for the pair again.
func (db *DB) AddRelation(ctx context.Context, kind model.RelationKind, left, right string) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}

	err = db.insertRelation(ctx, kind, t, left, right)
	if isBusy(err) {
		if exists, herr := db.HasRelation(ctx, kind, left, right); herr == nil && exists {
			return apperror.AlreadyExists(kind.String(), pairKey(left, right))
		}
	}
	return err
}

func (db *DB) insertRelation(ctx context.Context, kind model.RelationKind, t relationTable, left, right string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning tx: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+t.table+` WHERE `+t.left+` = ? AND `+t.right+` = ?)`,
		left, right,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("sqlite: checking %s: %w", kind, err)
	}
	if exists {
		return apperror.AlreadyExists(kind.String(), pairKey(left, right))
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO `+t.table+` (`+t.left+`, `+t.right+`) VALUES (?, ?)`,
		left, right,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return apperror.AlreadyExists(kind.String(), pairKey(left, right))
		case isCheckViolation(err):
			return apperror.SelfReference(t.right, "cannot subscribe to yourself")
		case isForeignKeyViolation(err):
			return apperror.NotFound(kind.String()+" target", right)
		}
		return fmt.Errorf("sqlite: inserting %s: %w", kind, err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return apperror.AlreadyExists(kind.String(), pairKey(left, right))
		}
		return fmt.Errorf("sqlite: committing %s: %w", kind, err)
	}
	return nil
}

// RemoveRelation deletes the pair. A single DELETE is its own existence
// check: zero affected rows means the pair was not there.
func (db *DB) RemoveRelation(ctx context.Context, kind model.RelationKind, left, right string) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}

	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM `+t.table+` WHERE `+t.left+` = ? AND `+t.right+` = ?`,
		left, right,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting %s: %w", kind, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(kind.String(), pairKey(left, right))
	}
	return nil
}

func (db *DB) HasRelation(ctx context.Context, kind model.RelationKind, left, right string) (bool, error) {
	t, err := tableFor(kind)
	if err != nil {
		return false, err
	}

	var exists bool
	err = db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+t.table+` WHERE `+t.left+` = ? AND `+t.right+` = ?)`,
		left, right,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking %s: %w", kind, err)
	}
	return exists, nil
}

func (db *DB) ListRelated(ctx context.Context, kind model.RelationKind, left string) ([]string, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+t.right+` FROM `+t.table+` WHERE `+t.left+` = ? ORDER BY id`,
		left,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing %s: %w", kind, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning %s row: %w", kind, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
