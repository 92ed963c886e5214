package quoterepo

import (
	"context"
	"time"

	"equiprental/model"
	"equiprental/util/apperr"
	"equiprental/util/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo interface {
	Create(ctx context.Context, q *model.Quote) error
	Get(ctx context.Context, id int64) (*model.Quote, error)
	GetForUpdate(ctx context.Context, tx *gorm.DB, id int64) (*model.Quote, error)
	Draft(ctx context.Context, fresh *model.Quote) (*model.Quote, error)
	List(ctx context.Context, ownerID int64, p model.PageReq) ([]model.Quote, int64, error)

	InsertItem(ctx context.Context, tx *gorm.DB, it *model.QuoteItem) error
	DeleteItem(ctx context.Context, tx *gorm.DB, quoteID, itemID int64) error
	SaveHeader(ctx context.Context, tx *gorm.DB, q *model.Quote) error
	Delete(ctx context.Context, tx *gorm.DB, id int64) error

	DeleteStaleDrafts(ctx context.Context, before time.Time) (int64, error)
}

type repo struct{ db *gorm.DB }

func New(db *gorm.DB) Repo { return &repo{db: db} }

func itemsInOrder(db *gorm.DB) *gorm.DB { return db.Order("quote_items.id") }

func (r *repo) Create(ctx context.Context, q *model.Quote) error {
	return database.Err(r.db.WithContext(ctx).Omit(clause.Associations).Create(q).Error, "create quote")
}

func (r *repo) Get(ctx context.Context, id int64) (*model.Quote, error) {
	var q model.Quote
	if err := r.db.WithContext(ctx).Preload("Items", itemsInOrder).First(&q, id).Error; err != nil {
		return nil, database.Err(err, "quote")
	}
	return &q, nil
}

// GetForUpdate locks the quote row for the rest of the transaction.
func (r *repo) GetForUpdate(ctx context.Context, tx *gorm.DB, id int64) (*model.Quote, error) {
	var q model.Quote
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&q, id).Error
	if err != nil {
		return nil, database.Err(err, "quote")
	}
	if err := tx.WithContext(ctx).Where("quote_id = ?", id).Order("id").Find(&q.Items).Error; err != nil {
		return nil, database.Err(err, "quote items")
	}
	return &q, nil
}

// Draft returns the newest draft of fresh.OwnerID, inserting fresh when
// the owner has none. The owner's user row is locked for the duration so
// concurrent callers settle on the same draft.
func (r *repo) Draft(ctx context.Context, fresh *model.Quote) (*model.Quote, error) {
	var out *model.Quote
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner model.User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").Where("id = ?", fresh.OwnerID).Limit(1).
			Find(&owner).Error
		if err != nil {
			return err
		}
		var q model.Quote
		found := tx.Preload("Items", itemsInOrder).
			Where("owner_id = ? AND status = ?", fresh.OwnerID, model.QuoteDraft).
			Order("updated_at DESC, id DESC").
			Limit(1).
			Find(&q)
		if found.Error != nil {
			return found.Error
		}
		if found.RowsAffected > 0 {
			out = &q
			return nil
		}
		if err := tx.Omit(clause.Associations).Create(fresh).Error; err != nil {
			return err
		}
		out = fresh
		return nil
	})
	if err != nil {
		return nil, database.Err(err, "draft quote")
	}
	return out, nil
}

func (r *repo) List(ctx context.Context, ownerID int64, p model.PageReq) ([]model.Quote, int64, error) {
	var n int64
	base := r.db.WithContext(ctx).Model(&model.Quote{}).Where("owner_id = ?", ownerID)
	if err := base.Count(&n).Error; err != nil {
		return nil, 0, database.Err(err, "count quotes")
	}
	var out []model.Quote
	err := r.db.WithContext(ctx).
		Preload("Items", itemsInOrder).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Offset(p.Offset()).Limit(p.PageSize).
		Find(&out).Error
	return out, n, database.Err(err, "list quotes")
}

func (r *repo) InsertItem(ctx context.Context, tx *gorm.DB, it *model.QuoteItem) error {
	return database.Err(tx.WithContext(ctx).Create(it).Error, "insert quote item")
}

func (r *repo) DeleteItem(ctx context.Context, tx *gorm.DB, quoteID, itemID int64) error {
	res := tx.WithContext(ctx).Where("id = ? AND quote_id = ?", itemID, quoteID).Delete(&model.QuoteItem{})
	if res.Error != nil {
		return database.Err(res.Error, "delete quote item")
	}
	if res.RowsAffected == 0 {
		return apperr.Newf(apperr.ErrItemNotFound, "item %d", itemID)
	}
	return nil
}

// SaveHeader writes status, total and notes if nobody else bumped the
// version since q was read. On success q.Version is advanced.
func (r *repo) SaveHeader(ctx context.Context, tx *gorm.DB, q *model.Quote) error {
	now := time.Now().UTC()
	res := tx.WithContext(ctx).
		Model(&model.Quote{}).
		Where("id = ? AND version = ?", q.ID, q.Version).
		UpdateColumns(map[string]any{
			"status":      q.Status,
			"total_value": q.TotalValue,
			"notes":       q.Notes,
			"version":     q.Version + 1,
			"updated_at":  now,
		})
	if res.Error != nil {
		return database.Err(res.Error, "save quote")
	}
	if res.RowsAffected == 0 {
		return apperr.Newf(apperr.ErrTransient, "quote %d modified concurrently", q.ID)
	}
	q.Version++
	q.UpdatedAt = now
	return nil
}

func (r *repo) Delete(ctx context.Context, tx *gorm.DB, id int64) error {
	if err := tx.WithContext(ctx).Where("quote_id = ?", id).Delete(&model.QuoteItem{}).Error; err != nil {
		return database.Err(err, "delete quote items")
	}
	res := tx.WithContext(ctx).Delete(&model.Quote{}, id)
	if res.Error != nil {
		return database.Err(res.Error, "delete quote")
	}
	if res.RowsAffected == 0 {
		return apperr.Newf(apperr.ErrNotFound, "quote %d", id)
	}
	return nil
}

// DeleteStaleDrafts removes drafts last touched before the cutoff. The
// stale rows are locked first; drafts held by a running edit are skipped
// and left for the next sweep.
func (r *repo) DeleteStaleDrafts(ctx context.Context, before time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []int64
		err := tx.Model(&model.Quote{}).
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ? AND updated_at < ?", model.QuoteDraft, before).
			Pluck("id", &ids).Error
		if err != nil || len(ids) == 0 {
			return err
		}
		if err := tx.Where("quote_id IN ?", ids).Delete(&model.QuoteItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&model.Quote{})
		n = res.RowsAffected
		return res.Error
	})
	return n, database.Err(err, "delete stale drafts")
}
