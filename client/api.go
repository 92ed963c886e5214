package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"equiprental/model"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type loginResp struct {
	User      model.User `json:"user"`
	Access    string     `json:"access"`
	Refresh   string     `json:"refresh"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// Login authenticates and installs the returned tokens as the session.
func (c *Client) Login(ctx context.Context, email, password string) (*model.User, error) {
	var out loginResp
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/v1/users/login",
		body:   model.LoginReq{Email: email, Password: password},
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	c.setSession(Session{Access: out.Access, Refresh: out.Refresh, ExpiresAt: out.ExpiresAt})
	return &out.User, nil
}

func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var out model.User
	if err := c.do(ctx, call{method: http.MethodGet, path: "/v1/users/me", out: &out, auth: true}); err != nil {
		return nil, err
	}
	return &out, nil
}

// EquipmentQuery are the catalog filters; zero values are omitted.
type EquipmentQuery struct {
	CategoryID int64
	Available  *bool
	Search     string
	Brand      string
	PriceMin   *decimal.Decimal
	PriceMax   *decimal.Decimal
	Page       int
	PageSize   int
}

func (q EquipmentQuery) values() url.Values {
	v := url.Values{}
	if q.CategoryID > 0 {
		v.Set("category", strconv.FormatInt(q.CategoryID, 10))
	}
	if q.Available != nil {
		v.Set("available", strconv.FormatBool(*q.Available))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Brand != "" {
		v.Set("brand", q.Brand)
	}
	if q.PriceMin != nil {
		v.Set("price_min", q.PriceMin.String())
	}
	if q.PriceMax != nil {
		v.Set("price_max", q.PriceMax.String())
	}
	setPage(v, q.Page, q.PageSize)
	return v
}

func setPage(v url.Values, page, size int) {
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	if size > 0 {
		v.Set("page_size", strconv.Itoa(size))
	}
}

func withQuery(path string, v url.Values) string {
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}

func (c *Client) ListEquipment(ctx context.Context, q EquipmentQuery) (model.Page[model.Equipment], error) {
	var out model.Page[model.Equipment]
	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   withQuery("/v1/equipment", q.values()),
		out:    pageOut[model.Equipment]{&out},
	})
	return out, err
}

func (c *Client) GetEquipment(ctx context.Context, id int64) (*model.Equipment, error) {
	var out model.Equipment
	if err := c.do(ctx, call{method: http.MethodGet, path: fmt.Sprintf("/v1/equipment/%d", id), out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Categories(ctx context.Context) (model.Page[model.Category], error) {
	var out model.Page[model.Category]
	err := c.do(ctx, call{method: http.MethodGet, path: "/v1/categories", out: pageOut[model.Category]{&out}})
	return out, err
}

// DraftQuote finds the caller's open draft or creates one.
func (c *Client) DraftQuote(ctx context.Context) (*model.Quote, error) {
	return c.quoteCall(ctx, http.MethodPost, "/v1/quotes/draft", nil)
}

func (c *Client) GetQuote(ctx context.Context, id int64) (*model.Quote, error) {
	return c.quoteCall(ctx, http.MethodGet, fmt.Sprintf("/v1/quotes/%d", id), nil)
}

// Item is one line to add to a draft.
type Item struct {
	EquipmentID int64          `json:"equipment_id"`
	Quantity    int            `json:"quantity"`
	Modality    model.Modality `json:"modality"`
	Period      int            `json:"period"`
	UsageDate   time.Time      `json:"-"`
}

func (c *Client) AddItem(ctx context.Context, quoteID int64, it Item) (*model.Quote, error) {
	body := struct {
		Item
		UsageDate string `json:"usage_date"`
	}{Item: it, UsageDate: it.UsageDate.Format(dateLayout)}
	return c.quoteCall(ctx, http.MethodPost, fmt.Sprintf("/v1/quotes/%d/items", quoteID), body)
}

func (c *Client) RemoveItem(ctx context.Context, quoteID, itemID int64) (*model.Quote, error) {
	return c.quoteCall(ctx, http.MethodDelete, fmt.Sprintf("/v1/quotes/%d/items/%d", quoteID, itemID), nil)
}

func (c *Client) FinalizeQuote(ctx context.Context, id int64) (*model.Quote, error) {
	return c.quoteCall(ctx, http.MethodPost, fmt.Sprintf("/v1/quotes/%d/finalize", id), nil)
}

func (c *Client) quoteCall(ctx context.Context, method, path string, body any) (*model.Quote, error) {
	var out model.Quote
	if err := c.do(ctx, call{method: method, path: path, body: body, out: &out, auth: true}); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReservationInput carries the event details of a conversion. A zero
// UsageDate lets the server pick the earliest line date.
type ReservationInput struct {
	UsageDate     time.Time
	EventLocation string
	Notes         string
}

func (c *Client) CreateReservation(ctx context.Context, quoteID int64, in ReservationInput) (*model.Reservation, error) {
	body := map[string]string{"event_location": in.EventLocation, "notes": in.Notes}
	if !in.UsageDate.IsZero() {
		body["usage_date"] = in.UsageDate.Format(dateLayout)
	}
	return c.reservationCall(ctx, http.MethodPost, fmt.Sprintf("/v1/quotes/%d/reservation", quoteID), body)
}

// ReservationQuery filters a listing. OwnerID only matters for staff.
type ReservationQuery struct {
	Status    model.ReservationStatus
	OwnerID   int64
	UsageFrom time.Time
	UsageTo   time.Time
	Page      int
	PageSize  int
}

func (q ReservationQuery) values() url.Values {
	v := url.Values{}
	if q.Status != "" {
		v.Set("status", string(q.Status))
	}
	if q.OwnerID > 0 {
		v.Set("owner_id", strconv.FormatInt(q.OwnerID, 10))
	}
	if !q.UsageFrom.IsZero() {
		v.Set("usage_from", q.UsageFrom.Format(dateLayout))
	}
	if !q.UsageTo.IsZero() {
		v.Set("usage_to", q.UsageTo.Format(dateLayout))
	}
	setPage(v, q.Page, q.PageSize)
	return v
}

func (c *Client) ListReservations(ctx context.Context, q ReservationQuery) (model.Page[model.Reservation], error) {
	var out model.Page[model.Reservation]
	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   withQuery("/v1/reservations", q.values()),
		out:    pageOut[model.Reservation]{&out},
		auth:   true,
	})
	return out, err
}

func (c *Client) GetReservation(ctx context.Context, id int64) (*model.Reservation, error) {
	return c.reservationCall(ctx, http.MethodGet, fmt.Sprintf("/v1/reservations/%d", id), nil)
}

func (c *Client) CancelReservation(ctx context.Context, id int64) (*model.Reservation, error) {
	return c.reservationCall(ctx, http.MethodPost, fmt.Sprintf("/v1/reservations/%d/cancel", id), nil)
}

// Approve returns the reservation and the stock taken for it.
func (c *Client) Approve(ctx context.Context, id int64) (*model.Reservation, []model.StockMovement, error) {
	var out struct {
		Reservation model.Reservation     `json:"reservation"`
		Movements   []model.StockMovement `json:"movements"`
	}
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   fmt.Sprintf("/v1/reservations/%d/approve", id),
		out:    &out,
		auth:   true,
	})
	if err != nil {
		return nil, nil, err
	}
	return &out.Reservation, out.Movements, nil
}

func (c *Client) Reject(ctx context.Context, id int64, reason string) (*model.Reservation, error) {
	return c.reservationCall(ctx, http.MethodPost, fmt.Sprintf("/v1/reservations/%d/reject", id),
		map[string]string{"reason": reason})
}

func (c *Client) reservationCall(ctx context.Context, method, path string, body any) (*model.Reservation, error) {
	var out model.Reservation
	if err := c.do(ctx, call{method: method, path: path, body: body, out: &out, auth: true}); err != nil {
		return nil, err
	}
	return &out, nil
}
