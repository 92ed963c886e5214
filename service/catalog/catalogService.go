package catalogsvc

import (
	"context"
	"strings"
	"time"

	"equiprental/model"
	catalogrepo "equiprental/repository/catalog"
	"equiprental/service/pricing"
	"equiprental/util/apperr"

	"github.com/shopspring/decimal"
)

type Filter = catalogrepo.Filter

// Usage reports how many open reservations still need a piece of equipment.
type Usage interface {
	CountOpenForEquipment(ctx context.Context, equipmentID int64, from time.Time) (int64, error)
}

// AvailabilityReq asks whether qty units of an equipment can be booked.
type AvailabilityReq struct {
	EquipmentID int64 `json:"equipment_id" validate:"required"`
	Quantity    int   `json:"quantity" validate:"required,min=1"`
}

type Availability struct {
	EquipmentID       int64  `json:"equipment_id"`
	Name              string `json:"name,omitempty"`
	Requested         int    `json:"requested"`
	AvailableQuantity int    `json:"available_quantity"`
	Available         bool   `json:"available"`
	Reason            string `json:"reason,omitempty"`
}

const (
	ReasonNotFound     = "not_found"
	ReasonNotAvailable = "not_available"
	ReasonInsufficient = "insufficient_quantity"
)

type Service interface {
	List(ctx context.Context, f Filter, p model.PageReq) (model.Page[model.Equipment], error)
	Get(ctx context.Context, id int64) (*model.Equipment, error)
	Create(ctx context.Context, by model.Principal, e *model.Equipment) error
	Update(ctx context.Context, by model.Principal, e *model.Equipment) error
	Delete(ctx context.Context, by model.Principal, id int64) error
	CanDelete(ctx context.Context, id int64) (bool, int64, error)

	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, by model.Principal, c *model.Category) error

	CheckAvailability(ctx context.Context, reqs []AvailabilityReq) ([]Availability, error)
	Price(ctx context.Context, id int64, m model.Modality, period, quantity int) (pricing.Line, error)
}

type service struct {
	r catalogrepo.Repo
	u Usage
}

func New(r catalogrepo.Repo, u Usage) Service { return &service{r: r, u: u} }

func (s *service) List(ctx context.Context, f Filter, p model.PageReq) (model.Page[model.Equipment], error) {
	p = p.Normalize()
	if f.PriceMin != nil && f.PriceMax != nil && f.PriceMin.GreaterThan(*f.PriceMax) {
		return model.Page[model.Equipment]{}, apperr.Newf(apperr.ErrValidation, "price_min greater than price_max")
	}
	items, n, err := s.r.List(ctx, f, p)
	if err != nil {
		return model.Page[model.Equipment]{}, err
	}
	return model.NewPage(items, n, p), nil
}

func (s *service) Get(ctx context.Context, id int64) (*model.Equipment, error) {
	return s.r.Get(ctx, id)
}

func (s *service) Create(ctx context.Context, by model.Principal, e *model.Equipment) error {
	if !by.Staff {
		return apperr.New(apperr.ErrForbidden)
	}
	if e.State == "" {
		e.State = model.EquipmentAvailable
	}
	if err := s.validate(ctx, e); err != nil {
		return err
	}
	e.ID = 0
	return s.r.Create(ctx, e)
}

func (s *service) Update(ctx context.Context, by model.Principal, e *model.Equipment) error {
	if !by.Staff {
		return apperr.New(apperr.ErrForbidden)
	}
	cur, err := s.r.Get(ctx, e.ID)
	if err != nil {
		return err
	}
	if e.State == "" {
		e.State = cur.State
	}
	if err := s.validate(ctx, e); err != nil {
		return err
	}
	e.RegisteredAt = cur.RegisteredAt
	return s.r.Update(ctx, e)
}

// validate checks the stored invariants of an equipment record.
func (s *service) validate(ctx context.Context, e *model.Equipment) error {
	e.Name = strings.TrimSpace(e.Name)
	switch {
	case e.Name == "":
		return apperr.Newf(apperr.ErrValidation, "name is required")
	case !e.DailyPrice.IsPositive():
		return apperr.Newf(apperr.ErrValidation, "daily_price must be greater than zero")
	case !optionalPositive(e.WeeklyPrice):
		return apperr.Newf(apperr.ErrValidation, "weekly_price must be greater than zero")
	case !optionalPositive(e.MonthlyPrice):
		return apperr.Newf(apperr.ErrValidation, "monthly_price must be greater than zero")
	case e.TotalQuantity < 1:
		return apperr.Newf(apperr.ErrValidation, "total_quantity must be at least 1")
	case e.AvailableQuantity < 0 || e.AvailableQuantity > e.TotalQuantity:
		return apperr.Newf(apperr.ErrValidation, "available_quantity must be between 0 and total_quantity")
	case !e.State.Valid():
		return apperr.Newf(apperr.ErrValidation, "unknown state %q", e.State)
	}
	if e.SerialNumber != nil && strings.TrimSpace(*e.SerialNumber) == "" {
		e.SerialNumber = nil
	}
	ok, err := s.r.CategoryExists(ctx, e.CategoryID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Newf(apperr.ErrValidation, "category %d does not exist", e.CategoryID)
	}
	return nil
}

func optionalPositive(d decimal.NullDecimal) bool { return !d.Valid || d.Decimal.IsPositive() }

func (s *service) Delete(ctx context.Context, by model.Principal, id int64) error {
	if !by.Staff {
		return apperr.New(apperr.ErrForbidden)
	}
	ok, n, err := s.CanDelete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Newf(apperr.ErrEquipmentInUse, "%d open reservations", n)
	}
	return s.r.Delete(ctx, id)
}

// CanDelete reports whether no pending or approved reservation from today
// on still references the equipment, and how many do.
func (s *service) CanDelete(ctx context.Context, id int64) (bool, int64, error) {
	if _, err := s.r.Get(ctx, id); err != nil {
		return false, 0, err
	}
	y, m, d := time.Now().UTC().Date()
	n, err := s.u.CountOpenForEquipment(ctx, id, time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	if err != nil {
		return false, 0, err
	}
	return n == 0, n, nil
}

func (s *service) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.r.ListCategories(ctx)
}

func (s *service) CreateCategory(ctx context.Context, by model.Principal, c *model.Category) error {
	if !by.Staff {
		return apperr.New(apperr.ErrForbidden)
	}
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return apperr.Newf(apperr.ErrValidation, "name is required")
	}
	c.ID = 0
	return s.r.CreateCategory(ctx, c)
}

func (s *service) CheckAvailability(ctx context.Context, reqs []AvailabilityReq) ([]Availability, error) {
	if len(reqs) == 0 {
		return nil, apperr.Newf(apperr.ErrValidation, "no items")
	}
	out := make([]Availability, 0, len(reqs))
	for _, rq := range reqs {
		if rq.Quantity < 1 {
			return nil, apperr.Newf(apperr.ErrInvalidQuantity, "equipment %d: quantity %d", rq.EquipmentID, rq.Quantity)
		}
		a := Availability{EquipmentID: rq.EquipmentID, Requested: rq.Quantity}
		e, err := s.r.Get(ctx, rq.EquipmentID)
		switch {
		case apperr.Is(err, apperr.ErrNotFound):
			a.Reason = ReasonNotFound
		case err != nil:
			return nil, err
		default:
			a.Name, a.AvailableQuantity = e.Name, e.AvailableQuantity
			switch {
			case !e.Available():
				a.Reason = ReasonNotAvailable
			case e.AvailableQuantity < rq.Quantity:
				a.Reason = ReasonInsufficient
			default:
				a.Available = true
			}
		}
		out = append(out, a)
	}
	return out, nil
}

// Price quotes a hypothetical line for the equipment without touching any quote.
func (s *service) Price(ctx context.Context, id int64, m model.Modality, period, quantity int) (pricing.Line, error) {
	if err := pricing.CheckCounts(period, quantity); err != nil {
		return pricing.Line{}, err
	}
	e, err := s.r.Get(ctx, id)
	if err != nil {
		return pricing.Line{}, err
	}
	return pricing.Price(e.Prices(), m, period, quantity)
}
