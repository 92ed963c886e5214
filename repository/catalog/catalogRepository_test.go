package catalogrepo

import (
	"context"
	"testing"

	"equiprental/model"
	"equiprental/util/apperr"
	"equiprental/util/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*gorm.DB, Repo) {
	t.Helper()
	db, err := database.OpenMemory(uuid.NewString())
	require.NoError(t, err)
	return db, New(db)
}

func seed(t *testing.T, r Repo) (sound, light model.Category, mixer, spot, truss model.Equipment) {
	t.Helper()
	ctx := context.Background()
	sound = model.Category{Name: "Sound", Active: true}
	light = model.Category{Name: "Lighting", Active: true}
	require.NoError(t, r.CreateCategory(ctx, &sound))
	require.NoError(t, r.CreateCategory(ctx, &light))

	mixer = model.Equipment{
		Name: "Mixer X32", Brand: "Behringer", Model: "X32", CategoryID: sound.ID,
		DailyPrice: decimal.RequireFromString("150.00"), TotalQuantity: 2, AvailableQuantity: 2,
		State: model.EquipmentAvailable, TechnicalSpecs: map[string]string{"channels": "32"},
		AdditionalImages: []string{"a.jpg", "b.jpg"},
	}
	spot = model.Equipment{
		Name: "Moving Head", Brand: "Chauvet", Model: "Rogue", CategoryID: light.ID,
		DailyPrice: decimal.RequireFromString("80.00"), TotalQuantity: 4, AvailableQuantity: 0,
		State: model.EquipmentAvailable,
	}
	truss = model.Equipment{
		Name: "Truss Q30", Brand: "Lite", Model: "Q30", CategoryID: light.ID,
		DailyPrice: decimal.RequireFromString("20.00"), TotalQuantity: 10, AvailableQuantity: 10,
		State: model.EquipmentMaintenance,
	}
	for _, e := range []*model.Equipment{&mixer, &spot, &truss} {
		require.NoError(t, r.Create(ctx, e))
	}
	return
}

func TestCategories(t *testing.T) {
	_, r := setup(t)
	ctx := context.Background()
	sound, _, _, _, _ := seed(t, r)

	hidden := model.Category{Name: "Old", Active: false}
	require.NoError(t, r.CreateCategory(ctx, &hidden))

	cats, err := r.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	require.Equal(t, "Lighting", cats[0].Name)

	ok, err := r.CategoryExists(ctx, sound.ID)
	require.NoError(t, err)
	require.True(t, ok)

	dup := model.Category{Name: "Sound", Active: true}
	require.Equal(t, apperr.ErrDuplicate, apperr.Code(r.CreateCategory(ctx, &dup)))
}

func TestGetRoundTripsJSONColumns(t *testing.T) {
	_, r := setup(t)
	_, _, mixer, _, _ := seed(t, r)

	got, err := r.Get(context.Background(), mixer.ID)
	require.NoError(t, err)
	require.Equal(t, "32", got.TechnicalSpecs["channels"])
	require.Equal(t, []string{"a.jpg", "b.jpg"}, got.AdditionalImages)
	require.NotNil(t, got.Category)
	require.Equal(t, "Sound", got.Category.Name)
	require.True(t, got.DailyPrice.Equal(decimal.RequireFromString("150")))
	require.False(t, got.WeeklyPrice.Valid)

	_, err = r.Get(context.Background(), 999)
	require.Equal(t, apperr.ErrNotFound, apperr.Code(err))
}

func TestListFilters(t *testing.T) {
	_, r := setup(t)
	ctx := context.Background()
	_, light, mixer, _, _ := seed(t, r)
	page := model.PageReq{}.Normalize()

	all, n, err := r.List(ctx, Filter{}, page)
	require.NoError(t, err)
	require.Equal(t, int64(3), n)
	// ordered by category name then name
	require.Equal(t, []string{"Moving Head", "Truss Q30", "Mixer X32"}, names(all))

	yes, no := true, false
	avail, n, err := r.List(ctx, Filter{Available: &yes}, page)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	require.Equal(t, mixer.ID, avail[0].ID)

	_, n, err = r.List(ctx, Filter{Available: &no}, page)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	byCat, _, err := r.List(ctx, Filter{CategoryID: light.ID}, page)
	require.NoError(t, err)
	require.Len(t, byCat, 2)

	search, _, err := r.List(ctx, Filter{Search: "behr"}, page)
	require.NoError(t, err)
	require.Equal(t, []string{"Mixer X32"}, names(search))

	lo, hi := decimal.RequireFromString("50"), decimal.RequireFromString("100")
	priced, _, err := r.List(ctx, Filter{PriceMin: &lo, PriceMax: &hi}, page)
	require.NoError(t, err)
	require.Equal(t, []string{"Moving Head"}, names(priced))

	small := model.PageReq{Page: 2, PageSize: 2}
	second, n, err := r.List(ctx, Filter{}, small)
	require.NoError(t, err)
	require.Equal(t, int64(3), n)
	require.Equal(t, []string{"Mixer X32"}, names(second))
}

func TestStockGuards(t *testing.T) {
	db, r := setup(t)
	ctx := context.Background()
	_, _, mixer, _, _ := seed(t, r)

	require.NoError(t, r.TakeStock(ctx, db, mixer.ID, 2))
	err := r.TakeStock(ctx, db, mixer.ID, 1)
	require.Equal(t, apperr.ErrEquipmentUnavailable, apperr.Code(err))

	require.NoError(t, r.ReturnStock(ctx, db, mixer.ID, 5))
	got, err := r.Get(ctx, mixer.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.AvailableQuantity, "restock is capped at total")
}

func TestUpdateAndDelete(t *testing.T) {
	_, r := setup(t)
	ctx := context.Background()
	_, _, mixer, _, _ := seed(t, r)

	mixer.Notes = "new cables"
	mixer.WeeklyPrice = decimal.NewNullDecimal(decimal.RequireFromString("700"))
	require.NoError(t, r.Update(ctx, &mixer))

	got, err := r.Get(ctx, mixer.ID)
	require.NoError(t, err)
	require.Equal(t, "new cables", got.Notes)
	require.True(t, got.WeeklyPrice.Valid)

	require.NoError(t, r.Delete(ctx, mixer.ID))
	require.Equal(t, apperr.ErrNotFound, apperr.Code(r.Delete(ctx, mixer.ID)))
}

func names(es []model.Equipment) []string {
	out := make([]string, 0, len(es))
	for _, e := range es {
		out = append(out, e.Name)
	}
	return out
}
