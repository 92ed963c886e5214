// repository/reservation/reservationRepository.go
package reservationrepo

import (
	"context"
	"time"

	"equiprental/model"
	"equiprental/util/apperr"
	"equiprental/util/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Filter narrows a reservation listing. Nil / zero fields are ignored.
// The bounds are calendar days; the To bounds include their whole day.
type Filter struct {
	OwnerID     *int64
	Status      model.ReservationStatus
	UsageFrom   *time.Time
	UsageTo     *time.Time
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type Repo interface {
	Insert(ctx context.Context, tx *gorm.DB, r *model.Reservation) error
	Get(ctx context.Context, id int64) (*model.Reservation, error)
	GetForUpdate(ctx context.Context, tx *gorm.DB, id int64) (*model.Reservation, error)
	SaveHeader(ctx context.Context, tx *gorm.DB, r *model.Reservation) error
	List(ctx context.Context, f Filter, p model.PageReq) ([]model.Reservation, int64, error)

	// Reporting
	CountByStatus(ctx context.Context) (map[model.ReservationStatus]int64, error)
	CountOpenForEquipment(ctx context.Context, equipmentID int64, from time.Time) (int64, error)
}

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) Repo { return &repo{db: db} }

func itemsInOrder(db *gorm.DB) *gorm.DB { return db.Order("reservation_items.id") }

// Insert stores the reservation header and its item snapshot.
func (r *repo) Insert(ctx context.Context, tx *gorm.DB, res *model.Reservation) error {
	return database.Err(tx.WithContext(ctx).Create(res).Error, "insert reservation")
}

func (r *repo) Get(ctx context.Context, id int64) (*model.Reservation, error) {
	var res model.Reservation
	if err := r.db.WithContext(ctx).Preload("Items", itemsInOrder).First(&res, id).Error; err != nil {
		return nil, database.Err(err, "reservation")
	}
	return &res, nil
}

func (r *repo) GetForUpdate(ctx context.Context, tx *gorm.DB, id int64) (*model.Reservation, error) {
	var res model.Reservation
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&res, id).Error
	if err != nil {
		return nil, database.Err(err, "reservation")
	}
	if err := tx.WithContext(ctx).Where("reservation_id = ?", id).Order("id").Find(&res.Items).Error; err != nil {
		return nil, database.Err(err, "reservation items")
	}
	return &res, nil
}

// SaveHeader persists the mutable header fields under an optimistic version check.
func (r *repo) SaveHeader(ctx context.Context, tx *gorm.DB, res *model.Reservation) error {
	now := time.Now().UTC()
	out := tx.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("id = ? AND version = ?", res.ID, res.Version).
		UpdateColumns(map[string]any{
			"status":           res.Status,
			"notes":            res.Notes,
			"rejection_reason": res.RejectionReason,
			"approved_by":      res.ApprovedBy,
			"approved_at":      res.ApprovedAt,
			"version":          res.Version + 1,
			"updated_at":       now,
		})
	if out.Error != nil {
		return database.Err(out.Error, "save reservation")
	}
	if out.RowsAffected == 0 {
		return apperr.Newf(apperr.ErrTransient, "reservation %d modified concurrently", res.ID)
	}
	res.Version++
	res.UpdatedAt = now
	return nil
}

// nextDay returns midnight UTC after the day of t.
func nextDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
}

func (f Filter) scope(db *gorm.DB) *gorm.DB {
	if f.OwnerID != nil {
		db = db.Where("owner_id = ?", *f.OwnerID)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.UsageFrom != nil {
		db = db.Where("usage_date >= ?", *f.UsageFrom)
	}
	if f.UsageTo != nil {
		db = db.Where("usage_date < ?", nextDay(*f.UsageTo))
	}
	if f.CreatedFrom != nil {
		db = db.Where("created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		db = db.Where("created_at < ?", nextDay(*f.CreatedTo))
	}
	return db
}

func (r *repo) List(ctx context.Context, f Filter, p model.PageReq) ([]model.Reservation, int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Reservation{}).Scopes(f.scope).Count(&n).Error; err != nil {
		return nil, 0, database.Err(err, "count reservations")
	}
	var out []model.Reservation
	err := r.db.WithContext(ctx).
		Scopes(f.scope).
		Preload("Items", itemsInOrder).
		Order("created_at DESC, id DESC").
		Offset(p.Offset()).Limit(p.PageSize).
		Find(&out).Error
	return out, n, database.Err(err, "list reservations")
}

// Reporting

func (r *repo) CountByStatus(ctx context.Context) (map[model.ReservationStatus]int64, error) {
	var rows []struct {
		Status model.ReservationStatus
		N      int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, database.Err(err, "count reservations by status")
	}
	out := make(map[model.ReservationStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}

// CountOpenForEquipment counts pending or approved reservations using the
// equipment on or after from.
func (r *repo) CountOpenForEquipment(ctx context.Context, equipmentID int64, from time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Joins("JOIN reservation_items ri ON ri.reservation_id = reservations.id").
		Where("ri.equipment_id = ?", equipmentID).
		Where("reservations.status IN ?", []model.ReservationStatus{model.ReservationPending, model.ReservationApproved}).
		Where("reservations.usage_date >= ?", from).
		Distinct("reservations.id").
		Count(&n).Error
	return n, database.Err(err, "count open reservations")
}
