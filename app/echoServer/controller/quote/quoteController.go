package quote

import (
	"log/slog"
	"net/http"
	"time"

	"equiprental/app/echoServer/controller/reservation"
	"equiprental/app/echoServer/httperr"
	"equiprental/app/echoServer/jwtx"
	"equiprental/app/echoServer/params"
	"equiprental/app/echoServer/validation"
	"equiprental/model"
	quotesvc "equiprental/service/quote"
	reservationsvc "equiprental/service/reservation"
	"equiprental/util/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc          quotesvc.Service
	Reservations reservationsvc.Service
	V            *validator.Validate
	Log          *slog.Logger
}

func (h *Controller) fail(c echo.Context, err error) error { return httperr.Write(c, h.Log, err) }

func (h *Controller) principal(c echo.Context) (model.Principal, error) {
	p, err := jwtx.PrincipalFromContext(c)
	if err != nil {
		return p, apperr.New(apperr.ErrUnauthenticated)
	}
	return p, nil
}

func (h *Controller) reply(c echo.Context, status int, q *model.Quote) error {
	return c.JSON(status, toResp(q, params.Locale(c)))
}

// List my quotes
// @Summary      List quotes
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        page       query  int  false  "page (1-based)"
// @Param        page_size  query  int  false  "page size"
// @Success      200  {object}  map[string]any
// @Router       /v1/quotes [get]
func (h *Controller) List(c echo.Context) error {
	by, err := h.principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	page, err := params.Page(c)
	if err != nil {
		return h.fail(c, err)
	}
	res, err := h.Svc.List(c.Request().Context(), by, page)
	if err != nil {
		return h.fail(c, err)
	}
	loc := params.Locale(c)
	out := make([]QuoteResp, 0, len(res.Results))
	for i := range res.Results {
		out = append(out, toResp(&res.Results[i], loc))
	}
	return c.JSON(http.StatusOK, model.Page[QuoteResp]{
		Results: out, Count: res.Count, Page: res.Page, PageSize: res.PageSize,
	})
}

// POST /v1/quotes
func (h *Controller) Create(c echo.Context) error {
	by, err := h.principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	var req CreateQuoteReq
	if err := validation.Bind(c, h.V, &req); err != nil {
		return h.fail(c, err)
	}
	q, err := h.Svc.Create(c.Request().Context(), by, req.Notes)
	if err != nil {
		return h.fail(c, err)
	}
	return h.reply(c, http.StatusCreated, q)
}

// Draft returns the caller's open draft, creating it when missing.
// @Summary      Find or create draft
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  QuoteResp
// @Router       /v1/quotes/draft [post]
func (h *Controller) Draft(c echo.Context) error {
	by, err := h.principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	q, err := h.Svc.Draft(c.Request().Context(), by)
	if err != nil {
		return h.fail(c, err)
	}
	return h.reply(c, http.StatusOK, q)
}

// GET /v1/quotes/:id
func (h *Controller) Get(c echo.Context) error {
	by, err := h.principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := params.ID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	q, err := h.Svc.Get(c.Request().Context(), by, id)
	if err != nil {
		return h.fail(c, err)
	}
	return h.reply(c, http.StatusOK, q)
}

// DELETE /v1/quotes/:id
func (h *Controller) Discard(c echo.Context) error {
	by, err := h.principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := params.ID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.Svc.Discard(c.Request().Context(), by, id); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Add a line item
// @Summary      Add item to draft
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  int         true  "quote id"
// @Param        payload  body  AddItemReq  true  "line"
// @Success      201  {object}  QuoteResp
// @Failure      400  {object}  httperr.Body "validation, INVALID_QUANTITY, INVALID_PERIOD, UNSUPPORTED_MODALITY"
// @Failure      409  {object}  httperr.Body "QUOTE_NOT_EDITABLE, EQUIPMENT_UNAVAILABLE"
// @Router       /v1/quotes/{id}/items [post]
func (h *Controller) AddItem(c echo.Context) error {
	by, err := h.principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := params.ID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	var req AddItemReq
	if err := validation.Bind(c, h.V, &req); err != nil {
		return h.fail(c, err)
	}
	usage, err := time.ParseInLocation(params.DateLayout, req.UsageDate, time.UTC)
	if err != nil {
		return h.fail(c, apperr.Newf(apperr.ErrValidation, "usage_date must be YYYY-MM-DD"))
	}
	q, err := h.Svc.AddItem(c.Request().Context(), by, id, quotesvc.AddItemInput{
		EquipmentID: req.EquipmentID,
		Quantity:    req.Quantity,
		Modality:    model.Modality(req.Modality),
		Period:      req.Period,
		UsageDate:   usage,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return h.reply(c, http.StatusCreated, q)
}

// DELETE /v1/quotes/:id/items/:itemID
func (h *Controller) RemoveItem(c echo.Context) error {
	by, err := h.principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := params.ID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	itemID, err := params.ID(c, "itemID")
	if err != nil {
		return h.fail(c, err)
	}
	q, err := h.Svc.RemoveItem(c.Request().Context(), by, id, itemID)
	if err != nil {
		return h.fail(c, err)
	}
	return h.reply(c, http.StatusOK, q)
}

// POST /v1/quotes/:id/finalize
func (h *Controller) Finalize(c echo.Context) error {
	by, err := h.principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := params.ID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	q, err := h.Svc.Finalize(c.Request().Context(), by, id)
	if err != nil {
		return h.fail(c, err)
	}
	return h.reply(c, http.StatusOK, q)
}

// POST /v1/quotes/:id/reopen
func (h *Controller) Reopen(c echo.Context) error {
	by, err := h.principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := params.ID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	q, err := h.Svc.Reopen(c.Request().Context(), by, id)
	if err != nil {
		return h.fail(c, err)
	}
	return h.reply(c, http.StatusOK, q)
}

// Convert to reservation
// @Summary      Create reservation from finalized quote
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  int                   true  "quote id"
// @Param        payload  body  CreateReservationReq  true  "event details"
// @Success      201  {object}  reservation.ReservationResp
// @Failure      409  {object}  httperr.Body "QUOTE_NOT_FINALIZED, EMPTY_QUOTE"
// @Router       /v1/quotes/{id}/reservation [post]
func (h *Controller) CreateReservation(c echo.Context) error {
	by, err := h.principal(c)
	if err != nil {
		return h.fail(c, err)
	}
	id, err := params.ID(c, "id")
	if err != nil {
		return h.fail(c, err)
	}
	var req CreateReservationReq
	if err := validation.Bind(c, h.V, &req); err != nil {
		return h.fail(c, err)
	}
	usage, err := params.Date(req.UsageDate, "usage_date")
	if err != nil {
		return h.fail(c, err)
	}
	in := reservationsvc.CreateInput{EventLocation: req.EventLocation, Notes: req.Notes}
	if usage != nil {
		in.UsageDate = *usage
	}
	res, err := h.Reservations.Create(c.Request().Context(), by, id, in)
	if err != nil {
		return h.fail(c, err)
	}
	h.Log.Info("quote converted", "quote_id", id, "reservation_id", res.ID, "by", by.UserID)
	return c.JSON(http.StatusCreated, reservation.ToResp(res, params.Locale(c)))
}
