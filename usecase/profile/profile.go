package profile

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskpulse/backend/domain"
	"github.com/taskpulse/backend/repository"
)

const bcryptCost = 10

type UseCase struct {
	users  repository.UserRepository
	logger *zap.Logger
}

func New(users repository.UserRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		logger: logger,
	}
}

func (uc *UseCase) GetProfile(ctx context.Context, userID int64) (*domain.User, error) {
	return uc.users.GetByID(ctx, userID)
}

// ChangePassword verifies the current password before storing a new hash.
func (uc *UseCase) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	if next == "" {
		return domain.ErrInvalidPayload
	}

	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		uc.logger.Warn("password change rejected", zap.Int64("user_id", userID))
		return domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcryptCost)
	if err != nil {
		return err
	}
	return uc.users.UpdatePassword(ctx, userID, string(hash))
}
