package storage

import (
	"context"
	"fmt"

	"github.com/afkcodes/kakeibo-finance-sub000/internal/core"
)

func (q *Queries) CreateCategory(ctx context.Context, c core.Category) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO categories (id, owner_id, name, type, parent_id, is_default)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.OwnerID, c.Name, string(c.Type), c.ParentID, c.IsDefault)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (q *Queries) GetCategory(ctx context.Context, id string) (core.Category, error) {
	var (
		c   core.Category
		typ string
	)
	err := q.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, type, parent_id, is_default
		FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.OwnerID, &c.Name, &typ, &c.ParentID, &c.IsDefault)
	if err != nil {
		return core.Category{}, notFound(err, "category", id)
	}
	c.Type = core.CategoryType(typ)
	return c, nil
}

// ListCategories returns the owner's categories plus the shared defaults.
func (q *Queries) ListCategories(ctx context.Context, ownerID string) ([]core.Category, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, owner_id, name, type, parent_id, is_default
		FROM categories WHERE owner_id = ? OR is_default = 1 ORDER BY name, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var (
			c   core.Category
			typ string
		)
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &typ, &c.ParentID, &c.IsDefault); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Type = core.CategoryType(typ)
		out = append(out, c)
	}
	return out, rows.Err()
}

// ReassignCategories moves only the owner's own categories; shared defaults
// stay untouched.
func (q *Queries) ReassignCategories(ctx context.Context, fromOwner, toOwner string) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE categories SET owner_id = ? WHERE owner_id = ? AND is_default = 0`,
		toOwner, fromOwner)
	if err != nil {
		return 0, fmt.Errorf("reassign categories: %w", err)
	}
	return res.RowsAffected()
}
