package repository

import (
	"context"

	"github.com/google/uuid"

	"restaurant-pos/internal/entity"
)

func (q *Queries) GetAdminByUsername(ctx context.Context, username string) (*entity.Admin, error) {
	a := &entity.Admin{}
	err := q.db.QueryRowContext(ctx, `SELECT id, username, password_hash FROM admins WHERE username = ?`, username).
		Scan(&a.ID, &a.Username, &a.PasswordHash)
	if err != nil {
		return nil, translate(err)
	}
	return a, nil
}

func (q *Queries) CreateAdmin(ctx context.Context, a *entity.Admin) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := q.db.ExecContext(ctx, `INSERT INTO admins (id, username, password_hash) VALUES (?, ?, ?)`, a.ID, a.Username, a.PasswordHash)
	return translate(err)
}
