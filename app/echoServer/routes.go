package echoServer

import (
	"log/slog"

	"equiprental/app/echoServer/controller/auth"
	"equiprental/app/echoServer/controller/equipment"
	"equiprental/app/echoServer/controller/quote"
	"equiprental/app/echoServer/controller/reservation"
	"equiprental/util/apperr"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

type C struct {
	Auth        *auth.Controller
	Equipment   *equipment.Controller
	Quote       *quote.Controller
	Reservation *reservation.Controller
	JWTSecret   string
	Log         *slog.Logger
}

func Register(e *echo.Echo, c C) {
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)
	pub.POST("/token/refresh", c.Auth.Refresh)
	pub.GET("/categories", c.Equipment.ListCategories)
	pub.GET("/equipment", c.Equipment.List)
	pub.GET("/equipment/:id", c.Equipment.Get)
	pub.POST("/equipment/:id/price", c.Equipment.Price)

	// Auth
	authed := e.Group("/v1")
	authed.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		NewClaimsFunc: func(echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization:Bearer ",
		ErrorHandler: func(ctx echo.Context, err error) error {
			c.Log.Warn("auth: token rejected",
				"req_id", ctx.Response().Header().Get(echo.HeaderXRequestID),
				"ip", ctx.RealIP(),
				"err", err,
			)
			return apperr.Newf(apperr.ErrUnauthenticated, "missing or invalid token")
		},
	}))
	authed.Use(Principal(c.Log))

	authed.GET("/users/me", c.Auth.Me)

	authed.GET("/quotes", c.Quote.List)
	authed.POST("/quotes", c.Quote.Create)
	authed.POST("/quotes/draft", c.Quote.Draft)
	authed.GET("/quotes/:id", c.Quote.Get)
	authed.DELETE("/quotes/:id", c.Quote.Discard)
	authed.POST("/quotes/:id/items", c.Quote.AddItem)
	authed.DELETE("/quotes/:id/items/:itemID", c.Quote.RemoveItem)
	authed.POST("/quotes/:id/finalize", c.Quote.Finalize)
	authed.POST("/quotes/:id/reopen", c.Quote.Reopen)
	authed.POST("/quotes/:id/reservation", c.Quote.CreateReservation)

	authed.GET("/reservations", c.Reservation.List)
	authed.GET("/reservations/:id", c.Reservation.Get)
	authed.POST("/reservations/:id/cancel", c.Reservation.Cancel)
	authed.POST("/availability", c.Equipment.CheckAvailability)

	// Staff
	staff := authed.Group("", RequireStaff(c.Log))
	staff.POST("/categories", c.Equipment.CreateCategory)
	staff.POST("/equipment", c.Equipment.Create)
	staff.PUT("/equipment/:id", c.Equipment.Update)
	staff.DELETE("/equipment/:id", c.Equipment.Delete)
	staff.GET("/equipment/:id/can-delete", c.Equipment.CanDelete)
	staff.GET("/reservations/stats", c.Reservation.Stats)
	staff.POST("/reservations/:id/approve", c.Reservation.Approve)
	staff.POST("/reservations/:id/reject", c.Reservation.Reject)
	staff.POST("/reservations/:id/activate", c.Reservation.Activate)
	staff.POST("/reservations/:id/complete", c.Reservation.Complete)
}
