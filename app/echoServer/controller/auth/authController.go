// app/echoServer/controller/auth/authController.go
package auth

import (
	"log/slog"
	"net/http"

	"equiprental/app/echoServer/httperr"
	"equiprental/app/echoServer/jwtx"
	"equiprental/app/echoServer/validation"
	"equiprental/model"
	authsvc "equiprental/service/auth"
	"equiprental/util/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc authsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func (ct *Controller) bind(c echo.Context, req any) error {
	err := validation.Bind(c, ct.V, req)
	if err != nil {
		ct.Log.Warn("bad request", "path", c.Path(), "err", err)
	}
	return err
}

// Register a new user
// @Summary      Register user
// @Description  Register a new client account; email must be unique
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body  model.RegisterReq  true  "Register payload"
// @Success      201  {object}  model.User
// @Failure      400  {object}  httperr.Body
// @Failure      409  {object}  httperr.Body "email already registered"
// @Router       /v1/users/register [post]
func (ct *Controller) Register(c echo.Context) error {
	var req model.RegisterReq
	if err := ct.bind(c, &req); err != nil {
		return httperr.Write(c, ct.Log, err)
	}

	u, err := ct.Svc.Register(c.Request().Context(), req)
	if err != nil {
		return httperr.Write(c, ct.Log, err)
	}
	return c.JSON(http.StatusCreated, u)
}

// Login
// @Summary      Login
// @Description  Login with email + password, returns access and refresh tokens
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body  model.LoginReq  true  "Login payload"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  httperr.Body
// @Failure      401  {object}  httperr.Body
// @Router       /v1/users/login [post]
func (ct *Controller) Login(c echo.Context) error {
	var req model.LoginReq
	if err := ct.bind(c, &req); err != nil {
		return httperr.Write(c, ct.Log, err)
	}

	u, tok, err := ct.Svc.Login(c.Request().Context(), req)
	if err != nil {
		return httperr.Write(c, ct.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user":       u,
		"access":     tok.Access,
		"refresh":    tok.Refresh,
		"expires_at": tok.ExpiresAt,
	})
}

// Refresh
// @Summary      Refresh access token
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body  model.RefreshReq  true  "Refresh token"
// @Success      200  {object}  model.Tokens
// @Failure      401  {object}  httperr.Body
// @Router       /v1/token/refresh [post]
func (ct *Controller) Refresh(c echo.Context) error {
	var req model.RefreshReq
	if err := ct.bind(c, &req); err != nil {
		return httperr.Write(c, ct.Log, err)
	}
	tok, err := ct.Svc.Refresh(c.Request().Context(), req.Refresh)
	if err != nil {
		return httperr.Write(c, ct.Log, err)
	}
	return c.JSON(http.StatusOK, tok)
}

// Me
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  model.User
// @Router       /v1/users/me [get]
func (ct *Controller) Me(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return httperr.Write(c, ct.Log, apperr.New(apperr.ErrUnauthenticated))
	}
	u, err := ct.Svc.Me(c.Request().Context(), uid)
	if err != nil {
		return httperr.Write(c, ct.Log, err)
	}
	return c.JSON(http.StatusOK, u)
}
