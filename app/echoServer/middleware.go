// app/echoServer/middleware.go
package echoServer

import (
	"log/slog"
	"time"

	"equiprental/app/echoServer/httperr"
	"equiprental/app/echoServer/jwtx"
	"equiprental/util/apperr"
	jwtutil "equiprental/util/jwt"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func RegisterMiddlewares(e *echo.Echo, corsOrigins []string) {

	e.Use(middleware.Recover())

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))

	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: corsOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept,
			echo.HeaderAuthorization, "Accept-Language"},
		ExposeHeaders: []string{echo.HeaderXRequestID},
	}))

	e.Use(Slog())
}

func Slog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// let the error handler settle the status before logging it
				c.Error(err)
				err = nil
			}
			lat := time.Since(start).Milliseconds()

			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			slog.Info("http",
				"method", c.Request().Method,
				"path", c.Path(),
				"status", c.Response().Status,
				"latency_ms", lat,
				"req_id", rid,
				"ip", c.RealIP(),
				"ua", c.Request().UserAgent(),
			)
			return err
		}
	}
}

// Principal copies the verified access-token claims into the context as
// "user_id" and "role". Refresh tokens are refused here.
func Principal(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqID := c.Response().Header().Get(echo.HeaderXRequestID)
			claims, err := jwtx.ClaimsFromContext(c)
			if err != nil {
				log.Warn("auth: no claims", "req_id", reqID, "err", err)
				return httperr.Write(c, log, apperr.New(apperr.ErrUnauthenticated))
			}
			if claims.Type != jwtutil.TypeAccess {
				log.Warn("auth: wrong token type", "req_id", reqID, "typ", claims.Type)
				return httperr.Write(c, log, apperr.Newf(apperr.ErrUnauthenticated, "access token required"))
			}
			c.Set(jwtx.KeyUserID, claims.UserID)
			c.Set(jwtx.KeyRole, claims.Role)
			return next(c)
		}
	}
}

// RequireStaff answers 403 unless the principal carries the staff role.
func RequireStaff(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, err := jwtx.PrincipalFromContext(c)
			if err != nil {
				return httperr.Write(c, log, apperr.New(apperr.ErrUnauthenticated))
			}
			if !p.Staff {
				return httperr.Write(c, log, apperr.Newf(apperr.ErrForbidden, "staff only"))
			}
			return next(c)
		}
	}
}
