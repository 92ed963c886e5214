package model

import "time"

type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"size:200;not null"`
	Email        string    `json:"email" gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Staff        bool      `json:"staff" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"created_at"`
}

const (
	RoleStaff  = "staff"
	RoleClient = "client"
)

func (u *User) Role() string {
	if u.Staff {
		return RoleStaff
	}
	return RoleClient
}

// RegisterReq represents user registration payload
// swagger:model RegisterReq
type RegisterReq struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginReq represents login payload
// swagger:model LoginReq
type LoginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshReq carries a refresh token
// swagger:model RefreshReq
type RefreshReq struct {
	Refresh string `json:"refresh" validate:"required"`
}

// Tokens is the pair handed out at login.
type Tokens struct {
	Access    string    `json:"access"`
	Refresh   string    `json:"refresh,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Principal is the authenticated caller every domain operation is scoped to.
type Principal struct {
	UserID int64
	Staff  bool
}

// CanAccess reports whether p may read or act on something owned by ownerID.
func (p Principal) CanAccess(ownerID int64) bool { return p.Staff || p.UserID == ownerID }
