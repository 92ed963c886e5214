package echoServer

import (
	"log/slog"
	"net/http"

	authctrl "equiprental/app/echoServer/controller/auth"
	equipmentctrl "equiprental/app/echoServer/controller/equipment"
	quotectrl "equiprental/app/echoServer/controller/quote"
	reservationctrl "equiprental/app/echoServer/controller/reservation"
	"equiprental/app/echoServer/httperr"
	"equiprental/app/echoServer/validation"
	authrepo "equiprental/repository/auth"
	catalogrepo "equiprental/repository/catalog"
	quoterepo "equiprental/repository/quote"
	reservationrepo "equiprental/repository/reservation"
	authsvc "equiprental/service/auth"
	catalogsvc "equiprental/service/catalog"
	quotesvc "equiprental/service/quote"
	reservationsvc "equiprental/service/reservation"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type Options struct {
	JWTSecret   string
	TTL         authsvc.TTLs
	CORSOrigins []string
	Log         *slog.Logger
}

// New wires repositories, services and controllers over db and returns a
// ready echo instance.
func New(db *gorm.DB, o Options) *echo.Echo {
	log := o.Log
	if log == nil {
		log = slog.Default()
	}

	// repos
	ar := authrepo.New(db)
	cr := catalogrepo.New(db)
	qr := quoterepo.New(db)
	rr := reservationrepo.New(db)

	// services
	as := authsvc.New(ar, o.JWTSecret, o.TTL)
	cs := catalogsvc.New(cr, rr)
	qs := quotesvc.New(db, qr, cr)
	rs := reservationsvc.New(db, rr, qr, cr)

	// controllers
	val := validation.New()
	v := val.Engine()

	e := echo.New()
	e.HideBanner = true
	e.Validator = val
	e.HTTPErrorHandler = httperr.Handler(log)
	RegisterMiddlewares(e, o.CORSOrigins)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	Register(e, C{
		Auth:        &authctrl.Controller{Svc: as, V: v, Log: log},
		Equipment:   &equipmentctrl.Controller{Svc: cs, V: v, Log: log},
		Quote:       &quotectrl.Controller{Svc: qs, Reservations: rs, V: v, Log: log},
		Reservation: &reservationctrl.Controller{Svc: rs, V: v, Log: log},
		JWTSecret:   o.JWTSecret,
		Log:         log,
	})
	return e
}
