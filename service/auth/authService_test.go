// service/auth/auth_service_test.go
package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"equiprental/model"
	authrepo "equiprental/repository/auth"
	"equiprental/util/apperr"
	"equiprental/util/hash"
	jwtutil "equiprental/util/jwt"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const secret = "test-secret"

type mockRepo struct {
	byEmailFn func(ctx context.Context, email string) (*model.User, error)
	byIDFn    func(ctx context.Context, id int64) (*model.User, error)
	createFn  func(ctx context.Context, u *model.User) error
}

var _ authrepo.Repo = (*mockRepo)(nil)

func (m *mockRepo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.byEmailFn == nil {
		return nil, apperr.New(apperr.ErrNotFound)
	}
	return m.byEmailFn(ctx, email)
}

func (m *mockRepo) ByID(ctx context.Context, id int64) (*model.User, error) {
	if m.byIDFn == nil {
		return nil, apperr.New(apperr.ErrNotFound)
	}
	return m.byIDFn(ctx, id)
}

func (m *mockRepo) Create(ctx context.Context, u *model.User) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, u)
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := hash.HashPassword(plain)
	require.NoError(t, err)
	return h
}

func newSvc(m *mockRepo) Service {
	return New(m, secret, TTLs{Access: time.Minute, Refresh: time.Hour})
}

// --- tests ---

func TestRegister_Success(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			u.ID = 42
			return nil
		},
	}

	u, err := newSvc(m).Register(ctx, model.RegisterReq{
		Name:     "Ana Souza",
		Email:    "USER@Example.COM",
		Password: "supersecret",
	})
	require.NoError(t, err)
	require.Equal(t, int64(42), u.ID)
	require.Equal(t, "user@example.com", u.Email)
	require.Equal(t, model.RoleClient, u.Role())
	require.True(t, hash.Check(u.PasswordHash, "supersecret"))
}

func TestRegister_BadInput(t *testing.T) {
	_, err := newSvc(&mockRepo{}).Register(context.Background(), model.RegisterReq{
		Name:     "x",
		Email:    " ",
		Password: "123",
	})
	require.Equal(t, apperr.ErrValidation, apperr.Code(err))
}

func TestRegister_EmailTaken(t *testing.T) {
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error { return gorm.ErrDuplicatedKey },
	}
	_, err := newSvc(m).Register(context.Background(), model.RegisterReq{
		Name: "a", Email: "taken@example.com", Password: "123456",
	})
	require.Equal(t, apperr.ErrDuplicate, apperr.Code(err))
}

func TestRegister_CreateError(t *testing.T) {
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error { return errors.New("db down") },
	}
	_, err := newSvc(m).Register(context.Background(), model.RegisterReq{
		Name: "a", Email: "ok@example.com", Password: "123456",
	})
	require.Error(t, err)
	require.Equal(t, apperr.ErrCode(""), apperr.Code(err))
}

func TestLogin_Success(t *testing.T) {
	hashed := mustHash(t, "supersecret")
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 7, Email: "user@example.com", PasswordHash: hashed, Staff: true}, nil
		},
	}

	u, tok, err := newSvc(m).Login(context.Background(), model.LoginReq{
		Email:    "User@Example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)
	require.Equal(t, int64(7), u.ID)
	require.NotEmpty(t, tok.Refresh)

	claims, err := jwtutil.Parse(tok.Access, secret)
	require.NoError(t, err)
	require.Equal(t, int64(7), claims.UserID)
	require.Equal(t, model.RoleStaff, claims.Role)
	require.Equal(t, jwtutil.TypeAccess, claims.Type)
}

func TestLogin_Failures(t *testing.T) {
	hashed := mustHash(t, "correct-password")
	m := &mockRepo{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			if email == "missing@example.com" {
				return nil, apperr.New(apperr.ErrNotFound)
			}
			return &model.User{ID: 101, PasswordHash: hashed}, nil
		},
	}
	svc := newSvc(m)
	ctx := context.Background()

	_, _, err := svc.Login(ctx, model.LoginReq{Email: " "})
	require.Equal(t, apperr.ErrValidation, apperr.Code(err))

	_, _, err = svc.Login(ctx, model.LoginReq{Email: "missing@example.com", Password: "x"})
	require.Equal(t, apperr.ErrUnauthenticated, apperr.Code(err))

	_, _, err = svc.Login(ctx, model.LoginReq{Email: "user@example.com", Password: "wrong-password"})
	require.Equal(t, apperr.ErrUnauthenticated, apperr.Code(err))
}

func TestRefresh(t *testing.T) {
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id}, nil
		},
	}
	svc := newSvc(m)
	ctx := context.Background()

	refresh, _, err := jwtutil.Issue(secret, 5, model.RoleStaff, jwtutil.TypeRefresh, time.Hour)
	require.NoError(t, err)
	tok, err := svc.Refresh(ctx, refresh)
	require.NoError(t, err)
	require.Empty(t, tok.Refresh)

	claims, err := jwtutil.Parse(tok.Access, secret)
	require.NoError(t, err)
	require.Equal(t, model.RoleClient, claims.Role, "role comes from the stored user")

	access, _, err := jwtutil.Issue(secret, 5, model.RoleClient, jwtutil.TypeAccess, time.Hour)
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, access)
	require.Equal(t, apperr.ErrUnauthenticated, apperr.Code(err))

	_, err = svc.Refresh(ctx, "garbage")
	require.Equal(t, apperr.ErrUnauthenticated, apperr.Code(err))
}
