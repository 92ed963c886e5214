// app/echoServer/jwtx/user.go
package jwtx

import (
	"errors"

	"equiprental/model"
	jwtutil "equiprental/util/jwt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys set by the auth middleware.
const (
	KeyUserID = "user_id"
	KeyRole   = "role"
)

// ClaimsFromContext decodes the token echo-jwt stored under "user".
func ClaimsFromContext(c echo.Context) (*jwtutil.Claims, error) {
	tok, ok := c.Get("user").(*jwt.Token)
	if !ok || tok == nil {
		return nil, errors.New("no jwt token in context")
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid jwt claims")
	}
	return jwtutil.FromMap(claims)
}

func UserIDFromContext(c echo.Context) (int64, error) {
	if id, ok := c.Get(KeyUserID).(int64); ok && id > 0 {
		return id, nil
	}
	cl, err := ClaimsFromContext(c)
	if err != nil {
		return 0, err
	}
	return cl.UserID, nil
}

// PrincipalFromContext is the caller every service operation is scoped to.
func PrincipalFromContext(c echo.Context) (model.Principal, error) {
	id, err := UserIDFromContext(c)
	if err != nil {
		return model.Principal{}, err
	}
	role, _ := c.Get(KeyRole).(string)
	return model.Principal{UserID: id, Staff: role == model.RoleStaff}, nil
}
