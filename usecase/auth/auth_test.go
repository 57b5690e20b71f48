package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskpulse/backend/domain"
	"github.com/taskpulse/backend/usecase/auth"
)

type fakeUserRepo struct {
	nextID  int64
	byEmail map[string]*domain.User
	byID    map[int64]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail: make(map[string]*domain.User),
		byID:    make(map[int64]*domain.User),
	}
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (f *fakeUserRepo) Create(_ context.Context, email, passwordHash string) (*domain.User, error) {
	if _, ok := f.byEmail[email]; ok {
		return nil, domain.ErrEmailTaken
	}
	f.nextID++
	u := &domain.User{ID: f.nextID, Email: email, PasswordHash: passwordHash, CreatedAt: time.Now()}
	f.byEmail[email] = u
	f.byID[u.ID] = u
	out := *u
	return &out, nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	u, ok := f.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

type fakeSessionRepo struct {
	sessions map[string]*domain.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (f *fakeSessionRepo) Get(_ context.Context, id string) (*domain.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	out := *s
	return &out, nil
}

func (f *fakeSessionRepo) Save(_ context.Context, session *domain.Session) error {
	out := *session
	f.sessions[session.ID] = &out
	return nil
}

func (f *fakeSessionRepo) Delete(_ context.Context, id string) error {
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessionRepo) Extend(_ context.Context, id string, ttlSeconds int) error {
	s, ok := f.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.ExpiresAt = time.Now().Add(time.Duration(ttlSeconds) * time.Second)
	return nil
}

func testConfig() auth.Config {
	return auth.Config{
		JWTSecret:  "test-secret",
		JWTIssuer:  "taskpulse",
		SessionTTL: time.Hour,
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	users := newFakeUserRepo()
	uc := auth.New(users, newFakeSessionRepo(), testConfig(), nil)

	user, err := uc.Register(context.Background(), "a@b.dev", "s3cret")
	require.NoError(t, err)
	require.NotNil(t, user)

	stored := users.byEmail["a@b.dev"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "s3cret", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret")))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	uc := auth.New(newFakeUserRepo(), newFakeSessionRepo(), testConfig(), nil)

	_, err := uc.Register(context.Background(), "a@b.dev", "one")
	require.NoError(t, err)

	_, err = uc.Register(context.Background(), "a@b.dev", "two")
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestRegisterRejectsEmptyFields(t *testing.T) {
	uc := auth.New(newFakeUserRepo(), newFakeSessionRepo(), testConfig(), nil)

	_, err := uc.Register(context.Background(), "", "pw")
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)

	_, err = uc.Register(context.Background(), "a@b.dev", "")
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestLoginIssuesTokenAndSession(t *testing.T) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	cfg := testConfig()
	uc := auth.New(users, sessions, cfg, nil)

	registered, err := uc.Register(context.Background(), "a@b.dev", "s3cret")
	require.NoError(t, err)

	result, err := uc.Login(context.Background(), "a@b.dev", "s3cret")
	require.NoError(t, err)
	require.NotNil(t, result.Session)
	assert.Equal(t, registered.ID, result.User.ID)
	assert.Contains(t, sessions.sessions, result.Session.ID)

	parsed, err := jwt.Parse(result.Token, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(registered.ID), claims["user_id"])
	assert.Equal(t, result.Session.ID, claims["session_id"])
	assert.Equal(t, cfg.JWTIssuer, claims["iss"])
}

func TestLoginWrongPassword(t *testing.T) {
	uc := auth.New(newFakeUserRepo(), newFakeSessionRepo(), testConfig(), nil)

	_, err := uc.Register(context.Background(), "a@b.dev", "s3cret")
	require.NoError(t, err)

	_, err = uc.Login(context.Background(), "a@b.dev", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	uc := auth.New(newFakeUserRepo(), newFakeSessionRepo(), testConfig(), nil)

	_, err := uc.Login(context.Background(), "nobody@b.dev", "pw")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogoutRevokesSession(t *testing.T) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	uc := auth.New(users, sessions, testConfig(), nil)

	_, err := uc.Register(context.Background(), "a@b.dev", "s3cret")
	require.NoError(t, err)
	result, err := uc.Login(context.Background(), "a@b.dev", "s3cret")
	require.NoError(t, err)

	require.NoError(t, uc.Logout(context.Background(), result.Session.ID))
	assert.NotContains(t, sessions.sessions, result.Session.ID)
}

func TestRefreshSessionExtends(t *testing.T) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	uc := auth.New(users, sessions, testConfig(), nil)

	_, err := uc.Register(context.Background(), "a@b.dev", "s3cret")
	require.NoError(t, err)
	result, err := uc.Login(context.Background(), "a@b.dev", "s3cret")
	require.NoError(t, err)

	session, token, err := uc.RefreshSession(context.Background(), result.Session.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.False(t, session.ExpiresAt.Before(result.Session.ExpiresAt))
}

func TestRefreshExpiredSession(t *testing.T) {
	sessions := newFakeSessionRepo()
	uc := auth.New(newFakeUserRepo(), sessions, testConfig(), nil)

	stale := &domain.Session{
		ID:        "stale",
		UserID:    1,
		CreatedAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, sessions.Save(context.Background(), stale))

	_, _, err := uc.RefreshSession(context.Background(), "stale")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.NotContains(t, sessions.sessions, "stale")
}
