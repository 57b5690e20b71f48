package profile_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskpulse/backend/domain"
	"github.com/taskpulse/backend/usecase/profile"
)

type fakeUserRepo struct {
	users map[int64]*domain.User
}

func newFakeUserRepo(seed ...*domain.User) *fakeUserRepo {
	f := &fakeUserRepo{users: make(map[int64]*domain.User)}
	for _, u := range seed {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) Create(_ context.Context, email, passwordHash string) (*domain.User, error) {
	id := int64(len(f.users) + 1)
	u := &domain.User{ID: id, Email: email, PasswordHash: passwordHash, CreatedAt: time.Now()}
	f.users[id] = u
	out := *u
	return &out, nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	u, ok := f.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func seedUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{ID: 1, Email: "a@b.dev", PasswordHash: string(hash), CreatedAt: time.Now()}
}

func TestGetProfile(t *testing.T) {
	users := newFakeUserRepo(seedUser(t, "s3cret"))
	uc := profile.New(users, nil)

	user, err := uc.GetProfile(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "a@b.dev", user.Email)

	_, err = uc.GetProfile(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestChangePassword(t *testing.T) {
	users := newFakeUserRepo(seedUser(t, "s3cret"))
	uc := profile.New(users, nil)

	err := uc.ChangePassword(context.Background(), 1, "s3cret", "n3w-pass")
	require.NoError(t, err)

	stored := users.users[1]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("n3w-pass")))
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	users := newFakeUserRepo(seedUser(t, "s3cret"))
	uc := profile.New(users, nil)

	err := uc.ChangePassword(context.Background(), 1, "wrong", "n3w-pass")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	stored := users.users[1]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret")))
}

func TestChangePasswordRejectsEmptyNext(t *testing.T) {
	users := newFakeUserRepo(seedUser(t, "s3cret"))
	uc := profile.New(users, nil)

	err := uc.ChangePassword(context.Background(), 1, "s3cret", "")
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}
