package auth

import (
	"context"
	"strings"

	"equiprental/model"
	"equiprental/util/database"

	"gorm.io/gorm"
)

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
}

type repo struct{ db *gorm.DB }

func New(db *gorm.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return database.Err(r.db.WithContext(ctx).Create(u).Error, "create user")
}

func (r *repo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	u := &model.User{}
	err := r.db.WithContext(ctx).
		Where("lower(email) = lower(?)", strings.TrimSpace(email)).
		First(u).Error
	if err != nil {
		return nil, database.Err(err, "user")
	}
	return u, nil
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.User, error) {
	u := &model.User{}
	if err := r.db.WithContext(ctx).First(u, id).Error; err != nil {
		return nil, database.Err(err, "user")
	}
	return u, nil
}
