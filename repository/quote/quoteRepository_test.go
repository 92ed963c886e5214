package quoterepo

import (
	"context"
	"testing"
	"time"

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

func item(quoteID int64, total string) *model.QuoteItem {
	v := decimal.RequireFromString(total)
	return &model.QuoteItem{
		QuoteID: quoteID, EquipmentID: 1, EquipmentName: "Mixer",
		Quantity: 1, Modality: model.ModalityDaily, Period: 1,
		UsageDate: time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
		UnitValue: v, TotalValue: v,
	}
}

func TestCreateGetAndItems(t *testing.T) {
	db, r := setup(t)
	ctx := context.Background()

	q := &model.Quote{OwnerID: 7, Status: model.QuoteDraft, TotalValue: decimal.Zero}
	require.NoError(t, r.Create(ctx, q))
	require.NotZero(t, q.ID)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		if err := r.InsertItem(ctx, tx, item(q.ID, "10.50")); err != nil {
			return err
		}
		return r.InsertItem(ctx, tx, item(q.ID, "4.50"))
	}))

	got, err := r.Get(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	require.True(t, got.Items[0].TotalValue.Equal(decimal.RequireFromString("10.50")))

	_, err = r.Get(ctx, 404)
	require.Equal(t, apperr.ErrNotFound, apperr.Code(err))

	err = db.Transaction(func(tx *gorm.DB) error {
		return r.DeleteItem(ctx, tx, q.ID, 999)
	})
	require.Equal(t, apperr.ErrItemNotFound, apperr.Code(err))
}

func TestSaveHeaderVersionCheck(t *testing.T) {
	db, r := setup(t)
	ctx := context.Background()

	q := &model.Quote{OwnerID: 7, Status: model.QuoteDraft, TotalValue: decimal.Zero}
	require.NoError(t, r.Create(ctx, q))

	stale := *q
	q.Status = model.QuoteFinalized
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error { return r.SaveHeader(ctx, tx, q) }))
	require.Equal(t, 1, q.Version)

	stale.Notes = "lost update"
	err := db.Transaction(func(tx *gorm.DB) error { return r.SaveHeader(ctx, tx, &stale) })
	require.Equal(t, apperr.ErrTransient, apperr.Code(err))

	got, err := r.Get(ctx, q.ID)
	require.NoError(t, err)
	require.Equal(t, model.QuoteFinalized, got.Status)
	require.Empty(t, got.Notes)
}

func TestDraftFindOrCreateAndList(t *testing.T) {
	_, r := setup(t)
	ctx := context.Background()

	done := &model.Quote{OwnerID: 7, Status: model.QuoteConverted, TotalValue: decimal.Zero}
	other := &model.Quote{OwnerID: 8, Status: model.QuoteDraft, TotalValue: decimal.Zero}
	for _, q := range []*model.Quote{done, other} {
		require.NoError(t, r.Create(ctx, q))
	}

	draft, err := r.Draft(ctx, &model.Quote{OwnerID: 7, Status: model.QuoteDraft, TotalValue: decimal.Zero})
	require.NoError(t, err)
	require.NotZero(t, draft.ID)
	require.NotEqual(t, done.ID, draft.ID)
	require.NotEqual(t, other.ID, draft.ID)

	got, err := r.Draft(ctx, &model.Quote{OwnerID: 7, Status: model.QuoteDraft, TotalValue: decimal.Zero})
	require.NoError(t, err)
	require.Equal(t, draft.ID, got.ID)

	list, n, err := r.List(ctx, 7, model.PageReq{}.Normalize())
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
	require.Len(t, list, 2)
}

func TestDeleteStaleDrafts(t *testing.T) {
	db, r := setup(t)
	ctx := context.Background()

	old := &model.Quote{OwnerID: 1, Status: model.QuoteDraft, TotalValue: decimal.Zero}
	fresh := &model.Quote{OwnerID: 2, Status: model.QuoteDraft, TotalValue: decimal.Zero}
	final := &model.Quote{OwnerID: 3, Status: model.QuoteFinalized, TotalValue: decimal.Zero}
	for _, q := range []*model.Quote{old, fresh, final} {
		require.NoError(t, r.Create(ctx, q))
	}
	require.NoError(t, r.InsertItem(ctx, db, item(old.ID, "1")))
	require.NoError(t, r.InsertItem(ctx, db, item(fresh.ID, "2")))

	past := time.Now().UTC().Add(-48 * time.Hour)
	require.NoError(t, db.Model(&model.Quote{}).
		Where("id IN ?", []int64{old.ID, final.ID}).
		UpdateColumn("updated_at", past).Error)

	n, err := r.DeleteStaleDrafts(ctx, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	_, err = r.Get(ctx, old.ID)
	require.Equal(t, apperr.ErrNotFound, apperr.Code(err))
	var orphans int64
	require.NoError(t, db.Model(&model.QuoteItem{}).Where("quote_id = ?", old.ID).Count(&orphans).Error)
	require.Zero(t, orphans)

	kept, err := r.Get(ctx, fresh.ID)
	require.NoError(t, err)
	require.Len(t, kept.Items, 1, "only the swept drafts lose their lines")
	_, err = r.Get(ctx, final.ID)
	require.NoError(t, err)

	n, err = r.DeleteStaleDrafts(ctx, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Zero(t, n)
}
