// Package store provides the persistence layer for the booking platform.
// Domain errors are reported through the sentinel errors in errors.go; the
// booking engine translates them into its own taxonomy.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Keta808/backendTesis/internal/model"
)

// Store defines all database operations used by the booking engine and the
// HTTP layer.
type Store interface {
	DB() *gorm.DB

	// Transaction runs fn against a transaction-bound store. Any error
	// rolls back every write made inside fn.
	Transaction(ctx context.Context, fn func(Store) error) error

	GetWorker(ctx context.Context, id string) (*model.Trabajador, error)
	GetClient(ctx context.Context, id string) (*model.Cliente, error)
	GetService(ctx context.Context, id string) (*model.Servicio, error)

	GetDaySchedule(ctx context.Context, workerID string, weekday time.Weekday) (*model.DaySchedule, error)

	CreateReservation(ctx context.Context, r *model.Reservation) error
	GetReservation(ctx context.Context, id string) (*model.Reservation, error)
	ReservationsByWorker(ctx context.Context, workerID string) ([]model.Reservation, error)
	ReservationsByClient(ctx context.Context, clientID string) ([]model.Reservation, error)
	ActiveReservationsByClient(ctx context.Context, clientID string) ([]model.Reservation, error)
	ActiveReservationsForDate(ctx context.Context, workerID string, date time.Time) ([]model.Reservation, error)
	ActiveReservationsForWorkersOnDate(ctx context.Context, workerIDs []string, date time.Time) ([]model.Reservation, error)
	CountActiveByClientAndBusiness(ctx context.Context, clientID, microempresaID string) (int64, error)
	TransitionReservation(ctx context.Context, id string, from, to model.Status, version int64) (*model.Reservation, error)
	DeleteReservation(ctx context.Context, id string) error

	ActiveWorkerIDs(ctx context.Context, microempresaID string) ([]string, error)
	LinkWorker(ctx context.Context, link *model.WorkerLink) error

	SubscriptionsForUser(ctx context.Context, userID string) ([]model.PushSubscription, error)
	UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// gormStore implements Store using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func (s *gormStore) GetWorker(ctx context.Context, id string) (*model.Trabajador, error) {
	var w model.Trabajador
	if err := s.db.WithContext(ctx).First(&w, "id = ?", id).Error; err != nil {
		return nil, translate("get worker", err)
	}
	return &w, nil
}

func (s *gormStore) GetClient(ctx context.Context, id string) (*model.Cliente, error) {
	var c model.Cliente
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate("get client", err)
	}
	return &c, nil
}

func (s *gormStore) GetService(ctx context.Context, id string) (*model.Servicio, error) {
	var sv model.Servicio
	if err := s.db.WithContext(ctx).First(&sv, "id = ?", id).Error; err != nil {
		return nil, translate("get service", err)
	}
	return &sv, nil
}

func (s *gormStore) GetDaySchedule(ctx context.Context, workerID string, weekday time.Weekday) (*model.DaySchedule, error) {
	var ds model.DaySchedule
	err := s.db.WithContext(ctx).
		Preload("Blocks", func(db *gorm.DB) *gorm.DB { return db.Order("start_minute ASC") }).
		Preload("Exceptions").
		First(&ds, "worker_id = ? AND weekday = ?", workerID, int(weekday)).Error
	if err != nil {
		return nil, translate("get day schedule", err)
	}
	return &ds, nil
}

func (s *gormStore) CreateReservation(ctx context.Context, r *model.Reservation) error {
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("create reservation: %w", ErrDuplicateSlot)
		}
		return translate("create reservation", err)
	}
	return nil
}

// isDuplicate detects a unique-constraint violation across the supported
// drivers. Postgres reports through gorm's error translation, sqlite (used
// in tests) through its message.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}

func (s *gormStore) GetReservation(ctx context.Context, id string) (*model.Reservation, error) {
	var r model.Reservation
	err := s.db.WithContext(ctx).
		Preload("Client").Preload("Worker").Preload("Service").
		First(&r, "id = ?", id).Error
	if err != nil {
		return nil, translate("get reservation", err)
	}
	return &r, nil
}

func (s *gormStore) ReservationsByWorker(ctx context.Context, workerID string) ([]model.Reservation, error) {
	var out []model.Reservation
	err := s.db.WithContext(ctx).
		Preload("Client").Preload("Service").
		Where("worker_id = ? AND status <> ?", workerID, model.StatusCancelada).
		Order("start_time ASC").
		Find(&out).Error
	if err != nil {
		return nil, translate("list worker reservations", err)
	}
	return out, nil
}

func (s *gormStore) ReservationsByClient(ctx context.Context, clientID string) ([]model.Reservation, error) {
	var out []model.Reservation
	err := s.db.WithContext(ctx).
		Preload("Worker").Preload("Service").
		Where("client_id = ? AND status <> ?", clientID, model.StatusCancelada).
		Order("start_time ASC").
		Find(&out).Error
	if err != nil {
		return nil, translate("list client reservations", err)
	}
	return out, nil
}

func (s *gormStore) ActiveReservationsByClient(ctx context.Context, clientID string) ([]model.Reservation, error) {
	var out []model.Reservation
	err := s.db.WithContext(ctx).
		Where("client_id = ? AND status = ?", clientID, model.StatusActiva).
		Find(&out).Error
	if err != nil {
		return nil, translate("list client active reservations", err)
	}
	return out, nil
}

func (s *gormStore) ActiveReservationsForDate(ctx context.Context, workerID string, date time.Time) ([]model.Reservation, error) {
	var out []model.Reservation
	err := s.db.WithContext(ctx).
		Where("worker_id = ? AND date = ? AND status = ?", workerID, date, model.StatusActiva).
		Order("start_time ASC").
		Find(&out).Error
	if err != nil {
		return nil, translate("list active reservations for date", err)
	}
	return out, nil
}

func (s *gormStore) ActiveReservationsForWorkersOnDate(ctx context.Context, workerIDs []string, date time.Time) ([]model.Reservation, error) {
	if len(workerIDs) == 0 {
		return nil, nil
	}
	var out []model.Reservation
	err := s.db.WithContext(ctx).
		Where("worker_id IN ? AND date = ? AND status = ?", workerIDs, date, model.StatusActiva).
		Order("start_time ASC").
		Find(&out).Error
	if err != nil {
		return nil, translate("list active reservations for workers", err)
	}
	return out, nil
}

func (s *gormStore) CountActiveByClientAndBusiness(ctx context.Context, clientID, microempresaID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Joins("JOIN servicios ON servicios.id = reservations.service_id").
		Where("reservations.client_id = ? AND reservations.status = ? AND servicios.microempresa_id = ?",
			clientID, model.StatusActiva, microempresaID).
		Count(&count).Error
	if err != nil {
		return 0, translate("count active reservations", err)
	}
	return count, nil
}

// TransitionReservation performs an optimistic status update: the write only
// lands if the row still carries the expected status and version. A zero
// rows-affected result means the reservation changed underneath the caller.
func (s *gormStore) TransitionReservation(ctx context.Context, id string, from, to model.Status, version int64) (*model.Reservation, error) {
	res := s.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("id = ? AND status = ? AND version = ?", id, from, version).
		Updates(map[string]any{"status": to, "version": version + 1})
	if res.Error != nil {
		return nil, translate("transition reservation", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("transition reservation %s: %w", id, ErrStaleVersion)
	}
	return s.GetReservation(ctx, id)
}

func (s *gormStore) DeleteReservation(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&model.Reservation{}, "id = ?", id)
	if res.Error != nil {
		return translate("delete reservation", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete reservation %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *gormStore) ActiveWorkerIDs(ctx context.Context, microempresaID string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&model.WorkerLink{}).
		Where("microempresa_id = ? AND active", microempresaID).
		Pluck("worker_id", &ids).Error
	if err != nil {
		return nil, translate("list business workers", err)
	}
	return ids, nil
}

// LinkWorker adds a worker to a business roster. The existence checks and
// the link write share one transaction so a partial failure rolls back.
func (s *gormStore) LinkWorker(ctx context.Context, link *model.WorkerLink) error {
	return s.Transaction(ctx, func(tx Store) error {
		if _, err := tx.GetWorker(ctx, link.WorkerID); err != nil {
			return err
		}
		var business model.Microempresa
		if err := tx.DB().First(&business, "id = ?", link.MicroempresaID).Error; err != nil {
			return translate("get microempresa", err)
		}
		if err := tx.DB().Create(link).Error; err != nil {
			return translate("create worker link", err)
		}
		return nil
	})
}

func (s *gormStore) SubscriptionsForUser(ctx context.Context, userID string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&subs).Error
	if err != nil {
		return nil, translate("list subscriptions", err)
	}
	return subs, nil
}

func (s *gormStore) UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth"}),
	}).Create(sub).Error
	if err != nil {
		return translate("upsert subscription", err)
	}
	return nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	if err := s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error; err != nil {
		return translate("delete subscription", err)
	}
	return nil
}

func translate(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
