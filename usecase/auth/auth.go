package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskpulse/backend/domain"
	"github.com/taskpulse/backend/repository"
)

const bcryptCost = 10

// Config carries token signing and session lifetime settings.
type Config struct {
	JWTSecret  string
	JWTIssuer  string
	SessionTTL time.Duration
}

type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	cfg      Config
	logger   *zap.Logger
}

func New(users repository.UserRepository, sessions repository.SessionRepository, cfg Config, logger *zap.Logger) *UseCase {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
	}
}

// Register creates a new account with a bcrypt-hashed password.
func (uc *UseCase) Register(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidPayload
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	user, err := uc.users.Create(ctx, email, string(hash))
	if err != nil {
		return nil, err
	}

	uc.logger.Info("user registered", zap.Int64("user_id", user.ID))
	return user, nil
}

// LoginResult bundles the authenticated user, the server-side session and the
// signed bearer token.
type LoginResult struct {
	User    *domain.User    `json:"user"`
	Session *domain.Session `json:"session"`
	Token   string          `json:"token"`
}

// Login verifies the credentials, opens a Redis session and signs a JWT
// carrying the user and session ids.
func (uc *UseCase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidPayload
	}

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		uc.logger.Warn("invalid password", zap.Int64("user_id", user.ID))
		return nil, domain.ErrInvalidCredentials
	}

	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(uc.cfg.SessionTTL),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	token, err := uc.signToken(user.ID, session)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("user logged in", zap.Int64("user_id", user.ID))
	return &LoginResult{User: user, Session: session, Token: token}, nil
}

// Logout revokes the server-side session; the JWT becomes useless with it.
func (uc *UseCase) Logout(ctx context.Context, sessionID string) error {
	return uc.sessions.Delete(ctx, sessionID)
}

// RefreshSession extends the session TTL and issues a fresh token.
func (uc *UseCase) RefreshSession(ctx context.Context, sessionID string) (*domain.Session, string, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, "", domain.ErrSessionNotFound
	}

	if err := uc.sessions.Extend(ctx, sessionID, int(uc.cfg.SessionTTL.Seconds())); err != nil {
		return nil, "", err
	}
	session.ExpiresAt = time.Now().Add(uc.cfg.SessionTTL)

	token, err := uc.signToken(session.UserID, session)
	if err != nil {
		return nil, "", err
	}
	return session, token, nil
}

func (uc *UseCase) signToken(userID int64, session *domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"user_id":    userID,
		"session_id": session.ID,
		"iss":        uc.cfg.JWTIssuer,
		"iat":        time.Now().Unix(),
		"exp":        session.ExpiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(uc.cfg.JWTSecret))
}
