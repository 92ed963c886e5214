package quotesvc

import (
	"context"
	"strings"
	"time"

	"equiprental/model"
	catalogrepo "equiprental/repository/catalog"
	quoterepo "equiprental/repository/quote"
	"equiprental/service/pricing"
	"equiprental/util/apperr"
	"equiprental/util/database"

	"gorm.io/gorm"
)

// AddItemInput is one equipment selection to append to a draft.
type AddItemInput struct {
	EquipmentID int64
	Quantity    int
	Modality    model.Modality
	Period      int
	UsageDate   time.Time
}

type Service interface {
	Create(ctx context.Context, by model.Principal, notes string) (*model.Quote, error)
	// Draft returns the caller's newest draft, creating one when none exists.
	Draft(ctx context.Context, by model.Principal) (*model.Quote, error)
	Get(ctx context.Context, by model.Principal, id int64) (*model.Quote, error)
	List(ctx context.Context, by model.Principal, p model.PageReq) (model.Page[model.Quote], error)

	AddItem(ctx context.Context, by model.Principal, quoteID int64, in AddItemInput) (*model.Quote, error)
	RemoveItem(ctx context.Context, by model.Principal, quoteID, itemID int64) (*model.Quote, error)
	Finalize(ctx context.Context, by model.Principal, quoteID int64) (*model.Quote, error)
	Reopen(ctx context.Context, by model.Principal, quoteID int64) (*model.Quote, error)
	Discard(ctx context.Context, by model.Principal, quoteID int64) error
}

type service struct {
	db *gorm.DB
	q  quoterepo.Repo
	c  catalogrepo.Repo
}

func New(db *gorm.DB, q quoterepo.Repo, c catalogrepo.Repo) Service {
	return &service{db: db, q: q, c: c}
}

func (s *service) Create(ctx context.Context, by model.Principal, notes string) (*model.Quote, error) {
	q := &model.Quote{
		OwnerID: by.UserID,
		Status:  model.QuoteDraft,
		Notes:   strings.TrimSpace(notes),
		Items:   []model.QuoteItem{},
	}
	q.Recalculate()
	if err := s.q.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *service) Draft(ctx context.Context, by model.Principal) (*model.Quote, error) {
	fresh := &model.Quote{OwnerID: by.UserID, Status: model.QuoteDraft, Items: []model.QuoteItem{}}
	fresh.Recalculate()
	return s.q.Draft(ctx, fresh)
}

func (s *service) Get(ctx context.Context, by model.Principal, id int64) (*model.Quote, error) {
	q, err := s.q.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !by.CanAccess(q.OwnerID) {
		return nil, apperr.Newf(apperr.ErrForbidden, "quote %d", id)
	}
	return q, nil
}

func (s *service) List(ctx context.Context, by model.Principal, p model.PageReq) (model.Page[model.Quote], error) {
	p = p.Normalize()
	items, n, err := s.q.List(ctx, by.UserID, p)
	if err != nil {
		return model.Page[model.Quote]{}, err
	}
	return model.NewPage(items, n, p), nil
}

// mutate runs fn against the locked quote and saves the header in the same
// transaction. Any error rolls everything back.
func (s *service) mutate(ctx context.Context, by model.Principal, id int64, fn func(tx *gorm.DB, q *model.Quote) error) (*model.Quote, error) {
	var out *model.Quote
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, err := s.q.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if !by.CanAccess(q.OwnerID) {
			return apperr.Newf(apperr.ErrForbidden, "quote %d", id)
		}
		if err := fn(tx, q); err != nil {
			return err
		}
		if err := s.q.SaveHeader(ctx, tx, q); err != nil {
			return err
		}
		out = q
		return nil
	})
	if err != nil {
		return nil, database.Err(err, "quote")
	}
	return out, nil
}

func checkItem(in AddItemInput) error {
	if err := pricing.CheckCounts(in.Period, in.Quantity); err != nil {
		return err
	}
	if !in.Modality.Valid() {
		return apperr.Newf(apperr.ErrValidation, "unknown modality %q", in.Modality)
	}
	if in.EquipmentID <= 0 {
		return apperr.Newf(apperr.ErrValidation, "equipment_id is required")
	}
	if in.UsageDate.IsZero() {
		return apperr.Newf(apperr.ErrValidation, "usage_date is required")
	}
	if !model.AfterToday(in.UsageDate, time.Now()) {
		return apperr.Newf(apperr.ErrValidation, "usage_date must be after today")
	}
	return nil
}

func (s *service) AddItem(ctx context.Context, by model.Principal, quoteID int64, in AddItemInput) (*model.Quote, error) {
	if err := checkItem(in); err != nil {
		return nil, err
	}
	return s.mutate(ctx, by, quoteID, func(tx *gorm.DB, q *model.Quote) error {
		if !q.Editable() {
			return apperr.Newf(apperr.ErrQuoteNotEditable, "quote %d is %s", q.ID, q.Status)
		}
		e, err := s.c.GetTx(ctx, tx, in.EquipmentID)
		if err != nil {
			return err
		}
		if !e.Available() || e.AvailableQuantity < in.Quantity {
			return apperr.Newf(apperr.ErrEquipmentUnavailable, "%s: %d of %d available", e.Name, e.AvailableQuantity, in.Quantity)
		}
		line, err := pricing.Price(e.Prices(), in.Modality, in.Period, in.Quantity)
		if err != nil {
			return err
		}
		it := model.QuoteItem{
			QuoteID:       q.ID,
			EquipmentID:   e.ID,
			EquipmentName: e.Name,
			Quantity:      line.Quantity,
			Modality:      line.Modality,
			Period:        line.Period,
			UsageDate:     in.UsageDate.UTC(),
			UnitValue:     line.UnitValue,
			TotalValue:    line.Total,
		}
		if err := s.q.InsertItem(ctx, tx, &it); err != nil {
			return err
		}
		q.Items = append(q.Items, it)
		q.Recalculate()
		return nil
	})
}

func (s *service) RemoveItem(ctx context.Context, by model.Principal, quoteID, itemID int64) (*model.Quote, error) {
	return s.mutate(ctx, by, quoteID, func(tx *gorm.DB, q *model.Quote) error {
		if !q.Editable() {
			return apperr.Newf(apperr.ErrQuoteNotEditable, "quote %d is %s", q.ID, q.Status)
		}
		i := q.Item(itemID)
		if i < 0 {
			return apperr.Newf(apperr.ErrItemNotFound, "item %d", itemID)
		}
		if err := s.q.DeleteItem(ctx, tx, q.ID, itemID); err != nil {
			return err
		}
		q.Items = append(q.Items[:i], q.Items[i+1:]...)
		q.Recalculate()
		return nil
	})
}

func (s *service) Finalize(ctx context.Context, by model.Principal, quoteID int64) (*model.Quote, error) {
	return s.mutate(ctx, by, quoteID, func(tx *gorm.DB, q *model.Quote) error {
		if !q.Editable() {
			return apperr.Newf(apperr.ErrQuoteNotEditable, "quote %d is %s", q.ID, q.Status)
		}
		if len(q.Items) == 0 {
			return apperr.Newf(apperr.ErrEmptyQuote, "quote %d", q.ID)
		}
		q.Recalculate()
		q.Status = model.QuoteFinalized
		return nil
	})
}

// Reopen sends a finalized quote back to draft so it can be edited again.
func (s *service) Reopen(ctx context.Context, by model.Principal, quoteID int64) (*model.Quote, error) {
	return s.mutate(ctx, by, quoteID, func(tx *gorm.DB, q *model.Quote) error {
		if q.Status != model.QuoteFinalized {
			return apperr.Newf(apperr.ErrQuoteNotFinalized, "quote %d is %s", q.ID, q.Status)
		}
		q.Status = model.QuoteDraft
		return nil
	})
}

func (s *service) Discard(ctx context.Context, by model.Principal, quoteID int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, err := s.q.GetForUpdate(ctx, tx, quoteID)
		if err != nil {
			return err
		}
		if !by.CanAccess(q.OwnerID) {
			return apperr.Newf(apperr.ErrForbidden, "quote %d", quoteID)
		}
		if !q.Editable() {
			return apperr.Newf(apperr.ErrQuoteNotEditable, "quote %d is %s", q.ID, q.Status)
		}
		return s.q.Delete(ctx, tx, q.ID)
	})
	return database.Err(err, "discard quote")
}
