package repository

import (
	"context"
	"errors"
	"fmt"

	"tigerstorage/internal/app/domain"
	"tigerstorage/internal/app/ds"
	"tigerstorage/internal/app/service"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func New(dsn string) (*Repository, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// Автоматическая миграция всех таблиц
	err = db.AutoMigrate(
		&ds.User{},
		&ds.Listing{},
		&ds.ReservationRequest{},
		&ds.InterestMark{},
		&ds.LenderReview{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Repository{
		db: db,
	}, nil
}

// Atomic выполняет fn в транзакции, заблокировав строку объявления
// (SELECT ... FOR UPDATE). Чтение остатка и фиксация объёма внутри fn
// становятся единым атомарным шагом: два конкурентных одобрения
// сериализуются на строке объявления.
func (r *Repository) Atomic(ctx context.Context, listingID uint, fn func(tx service.Store) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked ds.Listing
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", listingID).
			First(&locked).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrListingNotFound
			}
			return err
		}
		return fn(&Repository{db: tx})
	})
}
