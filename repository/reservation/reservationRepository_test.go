package reservationrepo

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

func day(offset int) time.Time {
	y, m, d := time.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func newReservation(owner, quote, equipment int64, status model.ReservationStatus, usage time.Time) *model.Reservation {
	v := decimal.RequireFromString("100")
	return &model.Reservation{
		OwnerID: owner, QuoteID: quote, Status: status, UsageDate: usage,
		EventLocation: "Hall A", TotalValue: v,
		Items: []model.ReservationItem{{
			EquipmentID: equipment, EquipmentName: "Mixer", Quantity: 1,
			Modality: model.ModalityDaily, Period: 1, UsageDate: usage,
			UnitValue: v, TotalValue: v,
		}},
	}
}

func insert(t *testing.T, db *gorm.DB, r Repo, res *model.Reservation) {
	t.Helper()
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return r.Insert(context.Background(), tx, res)
	}))
}

func TestInsertAndGet(t *testing.T) {
	db, r := setup(t)
	ctx := context.Background()

	res := newReservation(1, 10, 5, model.ReservationPending, day(3))
	insert(t, db, r, res)
	require.NotZero(t, res.ID)

	got, err := r.Get(ctx, res.ID)
	require.NoError(t, err)
	require.Equal(t, model.ReservationPending, got.Status)
	require.Len(t, got.Items, 1)
	require.Equal(t, int64(5), got.Items[0].EquipmentID)

	_, err = r.Get(ctx, 999)
	require.Equal(t, apperr.ErrNotFound, apperr.Code(err))

	// one reservation per quote
	err = db.Transaction(func(tx *gorm.DB) error {
		return r.Insert(ctx, tx, newReservation(1, 10, 5, model.ReservationPending, day(3)))
	})
	require.Equal(t, apperr.ErrDuplicate, apperr.Code(err))
}

func TestSaveHeader(t *testing.T) {
	db, r := setup(t)
	ctx := context.Background()

	res := newReservation(1, 10, 5, model.ReservationPending, day(3))
	insert(t, db, r, res)

	stale := *res
	staff := int64(99)
	now := time.Now().UTC()
	res.Status, res.ApprovedBy, res.ApprovedAt = model.ReservationApproved, &staff, &now
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		locked, err := r.GetForUpdate(ctx, tx, res.ID)
		if err != nil {
			return err
		}
		require.Len(t, locked.Items, 1)
		return r.SaveHeader(ctx, tx, res)
	}))

	stale.Status = model.ReservationRejected
	err := db.Transaction(func(tx *gorm.DB) error { return r.SaveHeader(ctx, tx, &stale) })
	require.Equal(t, apperr.ErrTransient, apperr.Code(err))

	got, err := r.Get(ctx, res.ID)
	require.NoError(t, err)
	require.Equal(t, model.ReservationApproved, got.Status)
	require.NotNil(t, got.ApprovedBy)
	require.Equal(t, staff, *got.ApprovedBy)
	require.Equal(t, 1, got.Version)
}

func TestListFiltersAndCounts(t *testing.T) {
	db, r := setup(t)
	ctx := context.Background()

	insert(t, db, r, newReservation(1, 10, 5, model.ReservationPending, day(3)))
	insert(t, db, r, newReservation(1, 11, 6, model.ReservationApproved, day(10)))
	insert(t, db, r, newReservation(2, 12, 5, model.ReservationCompleted, day(-5)))
	insert(t, db, r, newReservation(2, 13, 5, model.ReservationApproved, day(-1)))
	page := model.PageReq{}.Normalize()

	all, n, err := r.List(ctx, Filter{}, page)
	require.NoError(t, err)
	require.Equal(t, int64(4), n)
	require.Len(t, all, 4)

	owner := int64(1)
	mine, n, err := r.List(ctx, Filter{OwnerID: &owner}, page)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
	for _, res := range mine {
		require.Equal(t, owner, res.OwnerID)
	}

	approved, _, err := r.List(ctx, Filter{Status: model.ReservationApproved}, page)
	require.NoError(t, err)
	require.Len(t, approved, 2)

	from, to := day(0), day(5)
	window, _, err := r.List(ctx, Filter{UsageFrom: &from, UsageTo: &to}, page)
	require.NoError(t, err)
	require.Len(t, window, 1)
	require.Equal(t, int64(10), window[0].QuoteID)

	counts, err := r.CountByStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), counts[model.ReservationApproved])
	require.Equal(t, int64(1), counts[model.ReservationPending])
	require.Zero(t, counts[model.ReservationRejected])

	open, err := r.CountOpenForEquipment(ctx, 5, day(0))
	require.NoError(t, err)
	require.Equal(t, int64(1), open, "past and completed reservations do not count")
}

func TestListDateBoundsIncludeTheLastDay(t *testing.T) {
	db, r := setup(t)
	ctx := context.Background()
	page := model.PageReq{}.Normalize()

	insert(t, db, r, newReservation(1, 10, 5, model.ReservationPending, day(3)))
	insert(t, db, r, newReservation(1, 11, 5, model.ReservationPending, day(4)))

	today := day(0)
	created, n, err := r.List(ctx, Filter{CreatedFrom: &today, CreatedTo: &today}, page)
	require.NoError(t, err)
	require.Equal(t, int64(2), n, "created today is inside a today..today window")
	require.Len(t, created, 2)

	yesterday := day(-1)
	_, n, err = r.List(ctx, Filter{CreatedTo: &yesterday}, page)
	require.NoError(t, err)
	require.Zero(t, n)

	from, to := day(3), day(3)
	sameDay, n, err := r.List(ctx, Filter{UsageFrom: &from, UsageTo: &to}, page)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	require.Equal(t, int64(10), sameDay[0].QuoteID)
}
