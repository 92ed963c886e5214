package auth

import (
	"context"
	"strings"
	"time"

	"equiprental/model"
	authrepo "equiprental/repository/auth"
	"equiprental/util/apperr"
	"equiprental/util/database"
	"equiprental/util/hash"
	jwtutil "equiprental/util/jwt"
)

type Service interface {
	Register(ctx context.Context, req model.RegisterReq) (*model.User, error)
	Login(ctx context.Context, req model.LoginReq) (*model.User, *model.Tokens, error)
	Refresh(ctx context.Context, refreshToken string) (*model.Tokens, error)
	Me(ctx context.Context, userID int64) (*model.User, error)
}

// TTLs for the two token kinds.
type TTLs struct {
	Access  time.Duration
	Refresh time.Duration
}

type service struct {
	r      authrepo.Repo
	secret string
	ttl    TTLs
}

func New(r authrepo.Repo, secret string, ttl TTLs) Service {
	if ttl.Access <= 0 {
		ttl.Access = 15 * time.Minute
	}
	if ttl.Refresh <= 0 {
		ttl.Refresh = 7 * 24 * time.Hour
	}
	return &service{r: r, secret: secret, ttl: ttl}
}

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Name == "" || len(req.Password) < 6 {
		return nil, apperr.Newf(apperr.ErrValidation, "name, email and a 6+ character password are required")
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u := &model.User{Name: req.Name, Email: req.Email, PasswordHash: hashed}
	if err := s.r.Create(ctx, u); err != nil {
		return nil, mapDuplicateErr(err)
	}
	return u, nil
}

// mapDuplicateErr turns a unique-email violation into DUPLICATE whichever
// driver raised it.
func mapDuplicateErr(err error) error {
	if database.IsDuplicate(err) || apperr.Is(err, apperr.ErrDuplicate) {
		return apperr.Newf(apperr.ErrDuplicate, "email already registered")
	}
	return err
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.User, *model.Tokens, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, nil, apperr.Newf(apperr.ErrValidation, "email and password are required")
	}
	u, err := s.r.ByEmail(ctx, req.Email)
	if err != nil {
		if apperr.Is(err, apperr.ErrNotFound) {
			return nil, nil, apperr.Newf(apperr.ErrUnauthenticated, "invalid credentials")
		}
		return nil, nil, err
	}
	if !hash.Check(u.PasswordHash, req.Password) {
		return nil, nil, apperr.Newf(apperr.ErrUnauthenticated, "invalid credentials")
	}
	tok, err := s.issue(u, true)
	if err != nil {
		return nil, nil, err
	}
	return u, tok, nil
}

// Refresh trades a refresh token for a new access token. The role is
// re-read so a demoted user loses staff rights at the next refresh.
func (s *service) Refresh(ctx context.Context, refreshToken string) (*model.Tokens, error) {
	claims, err := jwtutil.Parse(refreshToken, s.secret)
	if err != nil || claims.Type != jwtutil.TypeRefresh {
		return nil, apperr.Newf(apperr.ErrUnauthenticated, "invalid refresh token")
	}
	u, err := s.r.ByID(ctx, claims.UserID)
	if err != nil {
		if apperr.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Newf(apperr.ErrUnauthenticated, "unknown user")
		}
		return nil, err
	}
	return s.issue(u, false)
}

func (s *service) Me(ctx context.Context, userID int64) (*model.User, error) {
	return s.r.ByID(ctx, userID)
}

func (s *service) issue(u *model.User, withRefresh bool) (*model.Tokens, error) {
	access, exp, err := jwtutil.Issue(s.secret, u.ID, u.Role(), jwtutil.TypeAccess, s.ttl.Access)
	if err != nil {
		return nil, err
	}
	tok := &model.Tokens{Access: access, ExpiresAt: exp}
	if withRefresh {
		tok.Refresh, _, err = jwtutil.Issue(s.secret, u.ID, u.Role(), jwtutil.TypeRefresh, s.ttl.Refresh)
		if err != nil {
			return nil, err
		}
	}
	return tok, nil
}
