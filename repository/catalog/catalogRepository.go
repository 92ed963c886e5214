package catalogrepo

import (
	"context"
	"strings"

	"equiprental/model"
	"equiprental/util/apperr"
	"equiprental/util/database"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Filter narrows an equipment listing. Zero values mean "any".
type Filter struct {
	CategoryID int64
	Available  *bool
	Search     string
	Brand      string
	PriceMin   *decimal.Decimal
	PriceMax   *decimal.Decimal
}

type Repo interface {
	// Categories
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, c *model.Category) error
	CategoryExists(ctx context.Context, id int64) (bool, error)

	// Equipment
	List(ctx context.Context, f Filter, p model.PageReq) ([]model.Equipment, int64, error)
	Get(ctx context.Context, id int64) (*model.Equipment, error)
	GetTx(ctx context.Context, tx *gorm.DB, id int64) (*model.Equipment, error)
	Create(ctx context.Context, e *model.Equipment) error
	Update(ctx context.Context, e *model.Equipment) error
	Delete(ctx context.Context, id int64) error

	// Stock
	TakeStock(ctx context.Context, tx *gorm.DB, equipmentID int64, qty int) error
	ReturnStock(ctx context.Context, tx *gorm.DB, equipmentID int64, qty int) error
}

type repo struct{ db *gorm.DB }

func New(db *gorm.DB) Repo { return &repo{db} }

// Categories

func (r *repo) ListCategories(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	err := r.db.WithContext(ctx).Where("active = ?", true).Order("name").Find(&out).Error
	return out, database.Err(err, "list categories")
}

func (r *repo) CreateCategory(ctx context.Context, c *model.Category) error {
	return database.Err(r.db.WithContext(ctx).Create(c).Error, "create category")
}

func (r *repo) CategoryExists(ctx context.Context, id int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Category{}).Where("id = ?", id).Count(&n).Error
	return n > 0, database.Err(err, "category exists")
}

// Equipment

func (f Filter) scope(db *gorm.DB) *gorm.DB {
	if f.CategoryID > 0 {
		db = db.Where("equipment.category_id = ?", f.CategoryID)
	}
	if f.Available != nil {
		const avail = "equipment.state = 'available' AND equipment.available_quantity > 0"
		if *f.Available {
			db = db.Where(avail)
		} else {
			db = db.Where("NOT (" + avail + ")")
		}
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		db = db.Where(`(LOWER(equipment.name) LIKE ? OR LOWER(equipment.brand) LIKE ?
			OR LOWER(equipment.model) LIKE ? OR LOWER(equipment.description) LIKE ?)`,
			like, like, like, like)
	}
	if b := strings.TrimSpace(f.Brand); b != "" {
		db = db.Where("LOWER(equipment.brand) LIKE ?", "%"+strings.ToLower(b)+"%")
	}
	if f.PriceMin != nil {
		db = db.Where("equipment.daily_price >= ?", *f.PriceMin)
	}
	if f.PriceMax != nil {
		db = db.Where("equipment.daily_price <= ?", *f.PriceMax)
	}
	return db
}

func (r *repo) List(ctx context.Context, f Filter, p model.PageReq) ([]model.Equipment, int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Equipment{}).Scopes(f.scope).Count(&n).Error; err != nil {
		return nil, 0, database.Err(err, "count equipment")
	}

	var out []model.Equipment
	err := r.db.WithContext(ctx).
		Scopes(f.scope).
		Select("equipment.*").
		Joins("LEFT JOIN categories ON categories.id = equipment.category_id").
		Preload("Category").
		Order("categories.name, equipment.name, equipment.id").
		Offset(p.Offset()).Limit(p.PageSize).
		Find(&out).Error
	if err != nil {
		return nil, 0, database.Err(err, "list equipment")
	}
	return out, n, nil
}

func (r *repo) Get(ctx context.Context, id int64) (*model.Equipment, error) {
	return r.GetTx(ctx, r.db, id)
}

func (r *repo) GetTx(ctx context.Context, tx *gorm.DB, id int64) (*model.Equipment, error) {
	var e model.Equipment
	if err := tx.WithContext(ctx).Preload("Category").First(&e, id).Error; err != nil {
		return nil, database.Err(err, "equipment")
	}
	return &e, nil
}

func (r *repo) Create(ctx context.Context, e *model.Equipment) error {
	return database.Err(r.db.WithContext(ctx).Omit(clause.Associations).Create(e).Error, "create equipment")
}

func (r *repo) Update(ctx context.Context, e *model.Equipment) error {
	res := r.db.WithContext(ctx).Omit(clause.Associations, "registered_at").Save(e)
	return database.Err(res.Error, "update equipment")
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Equipment{}, id)
	if res.Error != nil {
		return database.Err(res.Error, "delete equipment")
	}
	if res.RowsAffected == 0 {
		return apperr.Newf(apperr.ErrNotFound, "equipment %d", id)
	}
	return nil
}

// Stock

// TakeStock decrements available quantity; guard: never below zero.
func (r *repo) TakeStock(ctx context.Context, tx *gorm.DB, equipmentID int64, qty int) error {
	res := tx.WithContext(ctx).
		Model(&model.Equipment{}).
		Where("id = ? AND available_quantity >= ?", equipmentID, qty).
		UpdateColumn("available_quantity", gorm.Expr("available_quantity - ?", qty))
	if res.Error != nil {
		return database.Err(res.Error, "take stock")
	}
	if res.RowsAffected == 0 {
		return apperr.Newf(apperr.ErrEquipmentUnavailable, "equipment %d: need %d", equipmentID, qty)
	}
	return nil
}

// ReturnStock increments available quantity, capped at the total.
func (r *repo) ReturnStock(ctx context.Context, tx *gorm.DB, equipmentID int64, qty int) error {
	res := tx.WithContext(ctx).
		Model(&model.Equipment{}).
		Where("id = ?", equipmentID).
		UpdateColumn("available_quantity", gorm.Expr(
			"CASE WHEN available_quantity + ? > total_quantity THEN total_quantity ELSE available_quantity + ? END",
			qty, qty))
	// equipment removed from the catalog since: nothing to restock
	return database.Err(res.Error, "return stock")
}
