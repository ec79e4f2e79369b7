package user

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memRepo struct {
	byID         map[string]*User
	seq          int
	lastLoginErr error
}

func newMemRepo() *memRepo {
	return &memRepo{byID: map[string]*User{}}
}

func (r *memRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memRepo) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memRepo) Create(_ context.Context, u *User) error {
	r.seq++
	u.ID = fmt.Sprintf("u-%d", r.seq)
	u.CreatedAt = time.Now()
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

func (r *memRepo) UpdateLastLogin(_ context.Context, id string, t time.Time) error {
	if r.lastLoginErr != nil {
		return r.lastLoginErr
	}
	r.byID[id].LastLoginAt = &t
	return nil
}

func (r *memRepo) List(context.Context, UserFilter) ([]*User, int, error) {
	return nil, 0, nil
}

func (r *memRepo) Update(_ context.Context, u *User) error {
	if _, ok := r.byID[u.ID]; !ok {
		return ErrNotFound
	}
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

// plainHasher keeps tests fast; bcrypt is covered in the auth package.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }

func (plainHasher) Compare(hash, p string) error {
	if hash != "hashed:"+p {
		return errors.New("mismatch")
	}
	return nil
}

func newTestService(repo Repository) Service {
	return NewService(repo, plainHasher{}, zap.NewNop())
}

func TestRegister(t *testing.T) {
	svc := newTestService(newMemRepo())

	u, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "  Ada@Example.EDU ",
		Password: "longenough",
		Name:     "Ada",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.edu", u.Email)
	assert.Equal(t, RoleUser, u.Role)
	assert.True(t, u.IsActive)
	assert.Equal(t, "hashed:longenough", u.PasswordHash)

	_, err = svc.Register(context.Background(), RegisterRequest{Email: "ada@example.edu", Password: "longenough", Name: "Ada"})
	assert.ErrorIs(t, err, ErrEmailAlreadyUsed)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(newMemRepo())

	tests := []struct {
		name string
		req  RegisterRequest
		want error
	}{
		{"no email", RegisterRequest{Password: "longenough", Name: "A"}, ErrEmailRequired},
		{"no name", RegisterRequest{Email: "a@b.c", Password: "longenough"}, ErrNameRequired},
		{"short password", RegisterRequest{Email: "a@b.c", Password: "short", Name: "A"}, ErrPasswordTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLogin(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	u, err := svc.Register(context.Background(), RegisterRequest{Email: "ada@example.edu", Password: "longenough", Name: "Ada"})
	require.NoError(t, err)

	got, err := svc.Login(context.Background(), "ADA@example.edu", "longenough")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.NotNil(t, got.LastLoginAt)

	_, err = svc.Login(context.Background(), "ada@example.edu", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), "nobody@example.edu", "longenough")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	repo.byID[u.ID].IsActive = false
	_, err = svc.Login(context.Background(), "ada@example.edu", "longenough")
	assert.ErrorIs(t, err, ErrInactiveUser)
}

func TestLoginSurvivesLastLoginFailure(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	_, err := svc.Register(context.Background(), RegisterRequest{Email: "ada@example.edu", Password: "longenough", Name: "Ada"})
	require.NoError(t, err)

	repo.lastLoginErr = errors.New("db hiccup")
	u, err := svc.Login(context.Background(), "ada@example.edu", "longenough")
	require.NoError(t, err)
	assert.Nil(t, u.LastLoginAt)
}

func TestUpdate(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	u, err := svc.Register(context.Background(), RegisterRequest{Email: "ada@example.edu", Password: "longenough", Name: "Ada"})
	require.NoError(t, err)

	admin := RoleAdmin
	dept := "Physics"
	updated, err := svc.Update(context.Background(), u.ID, UpdateRequest{Role: &admin, Department: &dept})
	require.NoError(t, err)
	assert.True(t, updated.IsAdmin())
	assert.Equal(t, "Physics", updated.Department)
	assert.Equal(t, "Ada", updated.Name)

	bogus := Role("root")
	_, err = svc.Update(context.Background(), u.ID, UpdateRequest{Role: &bogus})
	assert.ErrorIs(t, err, ErrInvalidRole)

	blank := "  "
	_, err = svc.Update(context.Background(), u.ID, UpdateRequest{Name: &blank})
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.Update(context.Background(), "missing", UpdateRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
}
