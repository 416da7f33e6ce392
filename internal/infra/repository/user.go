package repository

import (
	"context"

	"aurum-commerce/internal/infra"
	"aurum-commerce/internal/infra/db"
	"aurum-commerce/internal/usecase/shared"

	"github.com/google/uuid"
)

type UserRepository struct{}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

var _ shared.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(ctx context.Context, dbtx db.DBTX, email, passwordHash, role string) (uuid.UUID, error) {
	const query = `
		INSERT INTO users (email, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id`

	var id uuid.UUID
	err := dbtx.QueryRow(ctx, query, email, passwordHash, role).Scan(&id)
	if err != nil {
		if isDuplicateKey(err) {
			return uuid.Nil, infra.WrapRepoErr("email already registered", err, infra.KindDuplicateKey)
		}
		return uuid.Nil, infra.WrapRepoErr("failed to create user", err)
	}
	return id, nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, dbtx db.DBTX, userID uuid.UUID) error {
	const query = `
		UPDATE users SET last_login = now(), updated_at = now() WHERE id = $1`

	tag, err := dbtx.Exec(ctx, query, userID)
	if err != nil {
		return infra.WrapRepoErr("failed to update last login", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("user not found", nil, infra.KindNotFound)
	}
	return nil
}
