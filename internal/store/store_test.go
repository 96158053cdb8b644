package store

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Keta808/backendTesis/internal/db"
	"github.com/Keta808/backendTesis/internal/model"
)

var testDBSeq atomic.Int64

// newTestStore opens a uniquely named in-memory sqlite database so tests do
// not share state through the shared cache.
func newTestStore(t *testing.T) Store {
	t.Helper()
	dsn := fmt.Sprintf("file:storetest%d?mode=memory&cache=shared&_loc=auto", testDBSeq.Add(1))
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.Migrate(gormDB))
	return NewGormStore(gormDB)
}

func seedDirectory(t *testing.T, s Store) (workerID, clientID, serviceID, businessID string) {
	t.Helper()
	ctx := context.Background()

	workerID = uuid.NewString()
	clientID = uuid.NewString()
	serviceID = uuid.NewString()
	businessID = uuid.NewString()

	require.NoError(t, s.DB().WithContext(ctx).Create(&model.Microempresa{ID: businessID, Name: "Barberia Sur"}).Error)
	require.NoError(t, s.DB().WithContext(ctx).Create(&model.Trabajador{ID: workerID, Name: "Pedro", Email: workerID + "@test.cl"}).Error)
	require.NoError(t, s.DB().WithContext(ctx).Create(&model.Cliente{ID: clientID, Name: "Ana", Email: clientID + "@test.cl"}).Error)
	require.NoError(t, s.DB().WithContext(ctx).Create(&model.Servicio{
		ID: serviceID, MicroempresaID: businessID, Name: "Corte", DurationMinutes: 30, Price: 10000,
	}).Error)
	return
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", s, time.Local)
	require.NoError(t, err)
	return d
}

func newReservation(workerID, clientID, serviceID string, date time.Time, startMinute, duration int) *model.Reservation {
	return &model.Reservation{
		ID:              uuid.NewString(),
		ClientID:        clientID,
		WorkerID:        workerID,
		ServiceID:       serviceID,
		Date:            date,
		StartTime:       time.Date(date.Year(), date.Month(), date.Day(), startMinute/60, startMinute%60, 0, 0, date.Location()),
		DurationMinutes: duration,
		Status:          model.StatusActiva,
	}
}

func TestLookupsReturnErrNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetWorker(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetClient(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetService(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetDaySchedule(ctx, "missing", time.Monday)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetReservation(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestActiveSlotUniqueIndex(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	workerID, clientID, serviceID, _ := seedDirectory(t, s)
	date := mustDate(t, "2025-03-05")

	first := newReservation(workerID, clientID, serviceID, date, 600, 30)
	require.NoError(t, s.CreateReservation(ctx, first))

	// Same worker, date and start time while the first is still active.
	dup := newReservation(workerID, clientID, serviceID, date, 600, 30)
	err := s.CreateReservation(ctx, dup)
	assert.ErrorIs(t, err, ErrDuplicateSlot)

	// Once the first is no longer active the slot is reusable.
	_, err = s.TransitionReservation(ctx, first.ID, model.StatusActiva, model.StatusCancelada, first.Version)
	require.NoError(t, err)

	again := newReservation(workerID, clientID, serviceID, date, 600, 30)
	assert.NoError(t, s.CreateReservation(ctx, again))
}

func TestTransitionReservationOptimistic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	workerID, clientID, serviceID, _ := seedDirectory(t, s)
	date := mustDate(t, "2025-03-05")

	r := newReservation(workerID, clientID, serviceID, date, 600, 30)
	require.NoError(t, s.CreateReservation(ctx, r))

	updated, err := s.TransitionReservation(ctx, r.ID, model.StatusActiva, model.StatusFinalizada, r.Version)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFinalizada, updated.Status)
	assert.Equal(t, r.Version+1, updated.Version)

	// A write against the stale version must not land.
	_, err = s.TransitionReservation(ctx, r.ID, model.StatusActiva, model.StatusCancelada, r.Version)
	assert.ErrorIs(t, err, ErrStaleVersion)

	current, err := s.GetReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFinalizada, current.Status)
}

func TestCountActiveByClientAndBusiness(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	workerID, clientID, serviceID, businessID := seedDirectory(t, s)
	date := mustDate(t, "2025-03-05")

	otherBusiness := uuid.NewString()
	otherService := uuid.NewString()
	require.NoError(t, s.DB().Create(&model.Microempresa{ID: otherBusiness, Name: "Peluqueria Norte"}).Error)
	require.NoError(t, s.DB().Create(&model.Servicio{
		ID: otherService, MicroempresaID: otherBusiness, Name: "Tinte", DurationMinutes: 60, Price: 20000,
	}).Error)

	require.NoError(t, s.CreateReservation(ctx, newReservation(workerID, clientID, serviceID, date, 600, 30)))
	require.NoError(t, s.CreateReservation(ctx, newReservation(workerID, clientID, otherService, date, 660, 60)))

	count, err := s.CountActiveByClientAndBusiness(ctx, clientID, businessID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = s.CountActiveByClientAndBusiness(ctx, clientID, otherBusiness)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestReservationsByClientExcludesCancelled(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	workerID, clientID, serviceID, _ := seedDirectory(t, s)
	date := mustDate(t, "2025-03-05")

	kept := newReservation(workerID, clientID, serviceID, date, 600, 30)
	require.NoError(t, s.CreateReservation(ctx, kept))

	cancelled := newReservation(workerID, clientID, serviceID, date, 660, 30)
	require.NoError(t, s.CreateReservation(ctx, cancelled))
	_, err := s.TransitionReservation(ctx, cancelled.ID, model.StatusActiva, model.StatusCancelada, cancelled.Version)
	require.NoError(t, err)

	out, err := s.ReservationsByClient(ctx, clientID)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, kept.ID, out[0].ID)
}

func TestActiveWorkerIDsOnlyActiveLinks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	workerID, _, _, businessID := seedDirectory(t, s)

	require.NoError(t, s.LinkWorker(ctx, &model.WorkerLink{
		ID: uuid.NewString(), MicroempresaID: businessID, WorkerID: workerID, Active: true,
	}))

	inactive := uuid.NewString()
	require.NoError(t, s.DB().Create(&model.Trabajador{ID: inactive, Name: "Luis", Email: inactive + "@test.cl"}).Error)
	require.NoError(t, s.DB().Create(&model.WorkerLink{
		ID: uuid.NewString(), MicroempresaID: businessID, WorkerID: inactive, Active: false,
	}).Error)

	ids, err := s.ActiveWorkerIDs(ctx, businessID)
	require.NoError(t, err)
	assert.Equal(t, []string{workerID}, ids)
}

func TestLinkWorkerRollsBackOnMissingBusiness(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	workerID, _, _, _ := seedDirectory(t, s)

	err := s.LinkWorker(ctx, &model.WorkerLink{
		ID: uuid.NewString(), MicroempresaID: "missing", WorkerID: workerID, Active: true,
	})
	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	require.NoError(t, s.DB().Model(&model.WorkerLink{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestSubscriptionUpsertAndDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sub := &model.PushSubscription{
		Endpoint: "https://push.example/abc",
		UserID:   "user-1",
		P256DH:   "p",
		Auth:     "a",
	}
	require.NoError(t, s.UpsertSubscription(ctx, sub))

	// Re-registering the same endpoint for another user replaces it.
	sub2 := &model.PushSubscription{
		Endpoint: "https://push.example/abc",
		UserID:   "user-2",
		P256DH:   "p2",
		Auth:     "a2",
	}
	require.NoError(t, s.UpsertSubscription(ctx, sub2))

	subs, err := s.SubscriptionsForUser(ctx, "user-2")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "p2", subs[0].P256DH)

	subs, err = s.SubscriptionsForUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, subs)

	require.NoError(t, s.DeleteSubscription(ctx, "https://push.example/abc"))
	subs, err = s.SubscriptionsForUser(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, subs)
}
