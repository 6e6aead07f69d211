package storage

import (
	"context"
	"fmt"

	"github.com/afkcodes/kakeibo-finance-sub000/internal/core"
)

func (q *Queries) CreateUser(ctx context.Context, u core.User) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO users (id, mode, settings, created_at)
		VALUES (?, ?, ?, ?)`,
		u.ID, string(u.Mode), u.Settings, formatTime(u.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (q *Queries) GetUser(ctx context.Context, id string) (core.User, error) {
	var (
		u             core.User
		mode, created string
	)
	err := q.db.QueryRowContext(ctx,
		`SELECT id, mode, settings, created_at FROM users WHERE id = ?`, id).
		Scan(&u.ID, &mode, &u.Settings, &created)
	if err != nil {
		return core.User{}, notFound(err, "user", id)
	}
	u.Mode = core.UserMode(mode)
	if u.CreatedAt, err = parseTime(created); err != nil {
		return core.User{}, err
	}
	return u, nil
}

func (q *Queries) DeleteUser(ctx context.Context, id string) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
