package repository

import (
	"context"

	"github.com/taskpulse/backend/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, email, passwordHash string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}
