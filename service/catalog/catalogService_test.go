// service/catalog/catalog_service_test.go
package catalogsvc_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"equiprental/model"
	catalogrepo "equiprental/repository/catalog"
	catalogsvc "equiprental/service/catalog"
	"equiprental/util/apperr"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type repoMock struct {
	listFn   func(ctx context.Context, f catalogrepo.Filter, p model.PageReq) ([]model.Equipment, int64, error)
	getFn    func(ctx context.Context, id int64) (*model.Equipment, error)
	createFn func(ctx context.Context, e *model.Equipment) error
	updateFn func(ctx context.Context, e *model.Equipment) error
	deleteFn func(ctx context.Context, id int64) error
	catFn    func(ctx context.Context, id int64) (bool, error)
}

var _ catalogrepo.Repo = (*repoMock)(nil)

func (m *repoMock) ListCategories(ctx context.Context) ([]model.Category, error) { return nil, nil }
func (m *repoMock) CreateCategory(ctx context.Context, c *model.Category) error {
	c.ID = 1
	return nil
}
func (m *repoMock) CategoryExists(ctx context.Context, id int64) (bool, error) {
	if m.catFn == nil {
		return true, nil
	}
	return m.catFn(ctx, id)
}
func (m *repoMock) List(ctx context.Context, f catalogrepo.Filter, p model.PageReq) ([]model.Equipment, int64, error) {
	return m.listFn(ctx, f, p)
}
func (m *repoMock) Get(ctx context.Context, id int64) (*model.Equipment, error) {
	return m.getFn(ctx, id)
}
func (m *repoMock) GetTx(ctx context.Context, tx *gorm.DB, id int64) (*model.Equipment, error) {
	return m.getFn(ctx, id)
}
func (m *repoMock) Create(ctx context.Context, e *model.Equipment) error { return m.createFn(ctx, e) }
func (m *repoMock) Update(ctx context.Context, e *model.Equipment) error { return m.updateFn(ctx, e) }
func (m *repoMock) Delete(ctx context.Context, id int64) error            { return m.deleteFn(ctx, id) }
func (m *repoMock) TakeStock(ctx context.Context, tx *gorm.DB, id int64, qty int) error {
	return nil
}
func (m *repoMock) ReturnStock(ctx context.Context, tx *gorm.DB, id int64, qty int) error {
	return nil
}

type usageMock struct{ open int64 }

func (u usageMock) CountOpenForEquipment(ctx context.Context, id int64, from time.Time) (int64, error) {
	return u.open, nil
}

var (
	staff  = model.Principal{UserID: 1, Staff: true}
	client = model.Principal{UserID: 2}
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func validEquipment() *model.Equipment {
	return &model.Equipment{
		Name: "Mixer", CategoryID: 1, DailyPrice: dec("100"),
		TotalQuantity: 3, AvailableQuantity: 3,
	}
}

func lookup(items ...model.Equipment) func(ctx context.Context, id int64) (*model.Equipment, error) {
	return func(ctx context.Context, id int64) (*model.Equipment, error) {
		for i := range items {
			if items[i].ID == id {
				e := items[i]
				return &e, nil
			}
		}
		return nil, apperr.New(apperr.ErrNotFound)
	}
}

func TestList_NormalizesPage(t *testing.T) {
	m := &repoMock{
		listFn: func(ctx context.Context, f catalogrepo.Filter, p model.PageReq) ([]model.Equipment, int64, error) {
			require.Equal(t, model.DefaultPageSize, p.PageSize)
			return nil, 0, nil
		},
	}
	page, err := catalogsvc.New(m, usageMock{}).List(context.Background(), catalogsvc.Filter{}, model.PageReq{PageSize: -1})
	require.NoError(t, err)
	require.NotNil(t, page.Results)
	require.Equal(t, 1, page.Page)

	lo, hi := dec("10"), dec("5")
	_, err = catalogsvc.New(m, usageMock{}).List(context.Background(), catalogsvc.Filter{PriceMin: &lo, PriceMax: &hi}, model.PageReq{})
	require.Equal(t, apperr.ErrValidation, apperr.Code(err))
}

func TestCreate_Validation(t *testing.T) {
	created := false
	m := &repoMock{
		createFn: func(ctx context.Context, e *model.Equipment) error { created = true; return nil },
		catFn: func(ctx context.Context, id int64) (bool, error) {
			return id == 1, nil
		},
	}
	s := catalogsvc.New(m, usageMock{})
	ctx := context.Background()

	cases := map[string]func(e *model.Equipment){
		"empty name":         func(e *model.Equipment) { e.Name = " " },
		"zero daily":         func(e *model.Equipment) { e.DailyPrice = decimal.Zero },
		"negative weekly":    func(e *model.Equipment) { e.WeeklyPrice = decimal.NewNullDecimal(dec("-1")) },
		"zero monthly":       func(e *model.Equipment) { e.MonthlyPrice = decimal.NewNullDecimal(decimal.Zero) },
		"zero total":         func(e *model.Equipment) { e.TotalQuantity, e.AvailableQuantity = 0, 0 },
		"available > total":  func(e *model.Equipment) { e.AvailableQuantity = 4 },
		"negative available": func(e *model.Equipment) { e.AvailableQuantity = -1 },
		"bad state":          func(e *model.Equipment) { e.State = "lost" },
		"unknown category":   func(e *model.Equipment) { e.CategoryID = 9 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			e := validEquipment()
			mutate(e)
			require.Equal(t, apperr.ErrValidation, apperr.Code(s.Create(ctx, staff, e)))
		})
	}
	require.False(t, created)

	require.Equal(t, apperr.ErrForbidden, apperr.Code(s.Create(ctx, client, validEquipment())))

	e := validEquipment()
	require.NoError(t, s.Create(ctx, staff, e))
	require.True(t, created)
	require.Equal(t, model.EquipmentAvailable, e.State)
}

func TestUpdate_KeepsRegistration(t *testing.T) {
	reg := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	stored := *validEquipment()
	stored.ID, stored.RegisteredAt, stored.State = 5, reg, model.EquipmentMaintenance

	var saved *model.Equipment
	m := &repoMock{
		getFn:    lookup(stored),
		updateFn: func(ctx context.Context, e *model.Equipment) error { saved = e; return nil },
	}
	s := catalogsvc.New(m, usageMock{})

	upd := validEquipment()
	upd.ID = 5
	require.NoError(t, s.Update(context.Background(), staff, upd))
	require.Equal(t, reg, saved.RegisteredAt)
	require.Equal(t, model.EquipmentMaintenance, saved.State)

	missing := validEquipment()
	missing.ID = 6
	require.Equal(t, apperr.ErrNotFound, apperr.Code(s.Update(context.Background(), staff, missing)))
}

func TestDelete_RefusedWhileInUse(t *testing.T) {
	stored := *validEquipment()
	stored.ID = 5
	deleted := false
	m := &repoMock{
		getFn:    lookup(stored),
		deleteFn: func(ctx context.Context, id int64) error { deleted = true; return nil },
	}
	ctx := context.Background()

	busy := catalogsvc.New(m, usageMock{open: 2})
	ok, n, err := busy.CanDelete(ctx, 5)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, int64(2), n)
	require.Equal(t, apperr.ErrEquipmentInUse, apperr.Code(busy.Delete(ctx, staff, 5)))
	require.False(t, deleted)

	free := catalogsvc.New(m, usageMock{})
	require.Equal(t, apperr.ErrForbidden, apperr.Code(free.Delete(ctx, client, 5)))
	require.NoError(t, free.Delete(ctx, staff, 5))
	require.True(t, deleted)

	require.Equal(t, apperr.ErrNotFound, apperr.Code(free.Delete(ctx, staff, 77)))
}

func TestCheckAvailability(t *testing.T) {
	m := &repoMock{getFn: lookup(
		model.Equipment{ID: 1, Name: "Mixer", AvailableQuantity: 2, State: model.EquipmentAvailable},
		model.Equipment{ID: 2, Name: "Truss", AvailableQuantity: 9, State: model.EquipmentMaintenance},
	)}
	s := catalogsvc.New(m, usageMock{})

	got, err := s.CheckAvailability(context.Background(), []catalogsvc.AvailabilityReq{
		{EquipmentID: 1, Quantity: 2},
		{EquipmentID: 1, Quantity: 3},
		{EquipmentID: 2, Quantity: 1},
		{EquipmentID: 3, Quantity: 1},
	})
	require.NoError(t, err)
	require.True(t, got[0].Available)
	require.Equal(t, catalogsvc.ReasonInsufficient, got[1].Reason)
	require.Equal(t, catalogsvc.ReasonNotAvailable, got[2].Reason)
	require.Equal(t, catalogsvc.ReasonNotFound, got[3].Reason)

	_, err = s.CheckAvailability(context.Background(), []catalogsvc.AvailabilityReq{{EquipmentID: 1, Quantity: 0}})
	require.Equal(t, apperr.ErrInvalidQuantity, apperr.Code(err))
}

func TestPrice(t *testing.T) {
	m := &repoMock{getFn: lookup(model.Equipment{ID: 1, DailyPrice: dec("100.00")})}
	s := catalogsvc.New(m, usageMock{})
	ctx := context.Background()

	line, err := s.Price(ctx, 1, model.ModalityDaily, 3, 2)
	require.NoError(t, err)
	require.True(t, line.Total.Equal(dec("600.00")))

	_, err = s.Price(ctx, 1, model.ModalityWeekly, 1, 1)
	require.Equal(t, apperr.ErrUnsupportedModality, apperr.Code(err))

	_, err = s.Price(ctx, 1, model.ModalityDaily, 0, 1)
	require.Equal(t, apperr.ErrInvalidPeriod, apperr.Code(err))

	m.getFn = func(ctx context.Context, id int64) (*model.Equipment, error) { return nil, errors.New("boom") }
	_, err = s.Price(ctx, 1, model.ModalityDaily, 1, 1)
	require.Error(t, err)
}
