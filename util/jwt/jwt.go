package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims is the decoded view of the tokens this service issues.
type Claims struct {
	UserID    int64
	Role      string
	Type      string
	ExpiresAt time.Time
}

func Issue(secret string, userID int64, role, typ string, ttl time.Duration) (string, time.Time, error) {
	exp := time.Now().Add(ttl)
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"typ":  typ,
		"exp":  exp.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return s, exp, nil
}

// Parse verifies a token, with or without the "Bearer " prefix.
func Parse(authHeader string, secret string) (*Claims, error) {
	tokenStr := strings.TrimSpace(authHeader)
	if tokenStr == "" {
		return nil, errors.New("missing authorization")
	}

	if strings.HasPrefix(strings.ToLower(tokenStr), "bearer ") {
		tokenStr = strings.TrimSpace(tokenStr[7:])
	}
	if tokenStr == "" {
		return nil, errors.New("missing token")
	}

	tok, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, errors.New("invalid token")
	}

	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return FromMap(mc)
}

// FromMap converts verified map claims into Claims.
func FromMap(mc jwt.MapClaims) (*Claims, error) {
	sub, ok := mc["sub"].(float64)
	if !ok {
		return nil, errors.New("sub missing in claims")
	}
	c := &Claims{UserID: int64(sub)}
	c.Role, _ = mc["role"].(string)
	c.Type, _ = mc["typ"].(string)
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}
