package reservationsvc

import (
	"context"
	"strings"
	"time"

	"equiprental/model"
	catalogrepo "equiprental/repository/catalog"
	quoterepo "equiprental/repository/quote"
	reservationrepo "equiprental/repository/reservation"
	"equiprental/util/apperr"
	"equiprental/util/database"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Filter = reservationrepo.Filter

// CreateInput carries the event details of a conversion. A zero UsageDate
// falls back to the earliest usage date among the quote lines. EventLocation
// is required.
type CreateInput struct {
	UsageDate     time.Time
	EventLocation string
	Notes         string
}

type Stats struct {
	Total        int64                             `json:"total"`
	ByStatus     map[model.ReservationStatus]int64 `json:"by_status"`
	ApprovalRate decimal.Decimal                   `json:"approval_rate"`
}

var allStatuses = []model.ReservationStatus{
	model.ReservationPending, model.ReservationApproved, model.ReservationRejected,
	model.ReservationActive, model.ReservationCompleted, model.ReservationCancelled,
}

type Service interface {
	// Create converts a finalized quote into a pending reservation.
	Create(ctx context.Context, by model.Principal, quoteID int64, in CreateInput) (*model.Reservation, error)

	// Approve moves pending to approved and takes the stock for every line.
	Approve(ctx context.Context, by model.Principal, id int64) (*model.Reservation, []model.StockMovement, error)
	Reject(ctx context.Context, by model.Principal, id int64, reason string) (*model.Reservation, error)
	Activate(ctx context.Context, by model.Principal, id int64) (*model.Reservation, error)
	Complete(ctx context.Context, by model.Principal, id int64) (*model.Reservation, error)
	Cancel(ctx context.Context, by model.Principal, id int64) (*model.Reservation, error)

	Get(ctx context.Context, by model.Principal, id int64) (*model.Reservation, error)
	List(ctx context.Context, by model.Principal, f Filter, p model.PageReq) (model.Page[model.Reservation], error)
	Stats(ctx context.Context, by model.Principal) (*Stats, error)
}

type service struct {
	db *gorm.DB
	r  reservationrepo.Repo
	q  quoterepo.Repo
	c  catalogrepo.Repo
}

func New(db *gorm.DB, r reservationrepo.Repo, q quoterepo.Repo, c catalogrepo.Repo) Service {
	return &service{db: db, r: r, q: q, c: c}
}

func (in CreateInput) check(now time.Time) error {
	if strings.TrimSpace(in.EventLocation) == "" {
		return apperr.Newf(apperr.ErrValidation, "event_location is required")
	}
	if !in.UsageDate.IsZero() && !model.AfterToday(in.UsageDate, now) {
		return apperr.Newf(apperr.ErrValidation, "usage_date must be after today")
	}
	return nil
}

func (s *service) Create(ctx context.Context, by model.Principal, quoteID int64, in CreateInput) (*model.Reservation, error) {
	if err := in.check(time.Now()); err != nil {
		return nil, err
	}
	var out *model.Reservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, err := s.q.GetForUpdate(ctx, tx, quoteID)
		if err != nil {
			return err
		}
		if !by.CanAccess(q.OwnerID) {
			return apperr.Newf(apperr.ErrForbidden, "quote %d", quoteID)
		}
		if q.Status != model.QuoteFinalized {
			return apperr.Newf(apperr.ErrQuoteNotFinalized, "quote %d is %s", q.ID, q.Status)
		}
		if len(q.Items) == 0 {
			return apperr.Newf(apperr.ErrEmptyQuote, "quote %d", q.ID)
		}

		res := snapshot(q, in)
		if err := s.r.Insert(ctx, tx, res); err != nil {
			if apperr.Is(err, apperr.ErrDuplicate) {
				return apperr.Newf(apperr.ErrQuoteNotFinalized, "quote %d already converted", q.ID)
			}
			return err
		}
		q.Status = model.QuoteConverted
		if err := s.q.SaveHeader(ctx, tx, q); err != nil {
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		return nil, database.Err(err, "create reservation")
	}
	return out, nil
}

// snapshot copies the quote lines into a new pending reservation.
func snapshot(q *model.Quote, in CreateInput) *model.Reservation {
	res := &model.Reservation{
		OwnerID:       q.OwnerID,
		QuoteID:       q.ID,
		Status:        model.ReservationPending,
		UsageDate:     in.UsageDate.UTC(),
		EventLocation: strings.TrimSpace(in.EventLocation),
		Notes:         strings.TrimSpace(in.Notes),
		Items:         make([]model.ReservationItem, 0, len(q.Items)),
	}
	totals := make([]decimal.Decimal, 0, len(q.Items))
	for _, it := range q.Items {
		res.Items = append(res.Items, model.ReservationItem{
			EquipmentID:   it.EquipmentID,
			EquipmentName: it.EquipmentName,
			Quantity:      it.Quantity,
			Modality:      it.Modality,
			Period:        it.Period,
			UsageDate:     it.UsageDate,
			UnitValue:     it.UnitValue,
			TotalValue:    it.TotalValue,
		})
		totals = append(totals, it.TotalValue)
		if in.UsageDate.IsZero() && (res.UsageDate.IsZero() || it.UsageDate.Before(res.UsageDate)) {
			res.UsageDate = it.UsageDate
		}
	}
	res.TotalValue = decimal.Sum(decimal.Zero, totals...)
	return res
}

// transition locks the reservation, applies action a through the
// transition table and runs the side effect fn in the same transaction.
func (s *service) transition(ctx context.Context, by model.Principal, id int64, a model.ReservationAction,
	fn func(tx *gorm.DB, r *model.Reservation) error) (*model.Reservation, error) {
	var out *model.Reservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := s.r.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if !by.CanAccess(r.OwnerID) {
			return apperr.Newf(apperr.ErrForbidden, "reservation %d", id)
		}
		next, ok := r.Status.Next(a)
		if !ok {
			return apperr.Newf(apperr.ErrInvalidTransition, "cannot %s a %s reservation", a, r.Status)
		}
		r.Status = next
		if fn != nil {
			if err := fn(tx, r); err != nil {
				return err
			}
		}
		if err := s.r.SaveHeader(ctx, tx, r); err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, database.Err(err, "reservation "+string(a))
	}
	return out, nil
}

func staffOnly(by model.Principal) error {
	if !by.Staff {
		return apperr.New(apperr.ErrForbidden)
	}
	return nil
}

func (s *service) Approve(ctx context.Context, by model.Principal, id int64) (*model.Reservation, []model.StockMovement, error) {
	if err := staffOnly(by); err != nil {
		return nil, nil, err
	}
	var moves []model.StockMovement
	r, err := s.transition(ctx, by, id, model.ActionApprove, func(tx *gorm.DB, r *model.Reservation) error {
		moves = r.StockMovements()
		for _, m := range moves {
			if err := s.c.TakeStock(ctx, tx, m.EquipmentID, m.Quantity); err != nil {
				return err
			}
		}
		now := time.Now().UTC()
		approver := by.UserID
		r.ApprovedBy, r.ApprovedAt = &approver, &now
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return r, moves, nil
}

func (s *service) Reject(ctx context.Context, by model.Principal, id int64, reason string) (*model.Reservation, error) {
	if err := staffOnly(by); err != nil {
		return nil, err
	}
	return s.transition(ctx, by, id, model.ActionReject, func(tx *gorm.DB, r *model.Reservation) error {
		now := time.Now().UTC()
		decider := by.UserID
		r.RejectionReason = strings.TrimSpace(reason)
		r.ApprovedBy, r.ApprovedAt = &decider, &now
		return nil
	})
}

func (s *service) Activate(ctx context.Context, by model.Principal, id int64) (*model.Reservation, error) {
	if err := staffOnly(by); err != nil {
		return nil, err
	}
	return s.transition(ctx, by, id, model.ActionActivate, nil)
}

func (s *service) Complete(ctx context.Context, by model.Principal, id int64) (*model.Reservation, error) {
	if err := staffOnly(by); err != nil {
		return nil, err
	}
	return s.transition(ctx, by, id, model.ActionComplete, s.restock(ctx))
}

// Cancel is open to staff and to the reservation owner.
func (s *service) Cancel(ctx context.Context, by model.Principal, id int64) (*model.Reservation, error) {
	return s.transition(ctx, by, id, model.ActionCancel, s.restock(ctx))
}

// restock puts the reserved quantities back, capped at each total.
func (s *service) restock(ctx context.Context) func(tx *gorm.DB, r *model.Reservation) error {
	return func(tx *gorm.DB, r *model.Reservation) error {
		for _, m := range r.StockMovements() {
			if err := s.c.ReturnStock(ctx, tx, m.EquipmentID, m.Quantity); err != nil {
				return err
			}
		}
		return nil
	}
}

func (s *service) Get(ctx context.Context, by model.Principal, id int64) (*model.Reservation, error) {
	r, err := s.r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !by.CanAccess(r.OwnerID) {
		return nil, apperr.Newf(apperr.ErrForbidden, "reservation %d", id)
	}
	return r, nil
}

// List scopes clients to their own reservations; staff see everything.
func (s *service) List(ctx context.Context, by model.Principal, f Filter, p model.PageReq) (model.Page[model.Reservation], error) {
	p = p.Normalize()
	if !by.Staff {
		owner := by.UserID
		f.OwnerID = &owner
	}
	if f.Status != "" && !f.Status.Valid() {
		return model.Page[model.Reservation]{}, apperr.Newf(apperr.ErrValidation, "unknown status %q", f.Status)
	}
	items, n, err := s.r.List(ctx, f, p)
	if err != nil {
		return model.Page[model.Reservation]{}, err
	}
	return model.NewPage(items, n, p), nil
}

// Stats counts reservations per status. ApprovalRate is the share of decided
// reservations (everything past pending) that were not rejected, in percent.
func (s *service) Stats(ctx context.Context, by model.Principal) (*Stats, error) {
	if err := staffOnly(by); err != nil {
		return nil, err
	}
	counts, err := s.r.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	st := &Stats{ByStatus: make(map[model.ReservationStatus]int64, len(allStatuses)), ApprovalRate: decimal.Zero}
	for _, status := range allStatuses {
		st.ByStatus[status] = counts[status]
		st.Total += counts[status]
	}
	decided := st.Total - counts[model.ReservationPending]
	if decided > 0 {
		approved := decided - counts[model.ReservationRejected]
		st.ApprovalRate = decimal.NewFromInt(approved).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(decided)).
			Round(2)
	}
	return st, nil
}
