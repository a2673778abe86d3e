package repository

import (
	"context"
	"errors"

	"tigerstorage/internal/app/domain"
	"tigerstorage/internal/app/ds"

	"gorm.io/gorm"
)

// Методы для работы с отзывами

func (r *Repository) HasReview(ctx context.Context, renterID, requestID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&ds.LenderReview{}).
		Where("renter_id = ? AND request_id = ?", renterID, requestID).
		Count(&count).Error
	return count > 0, err
}

// CreateReview создаёт отзыв; нарушение уникального индекса
// (renter_id, request_id) переводится в бизнес-ошибку дубликата
func (r *Repository) CreateReview(ctx context.Context, review *ds.LenderReview) error {
	err := r.db.WithContext(ctx).Create(review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateReview
		}
		return err
	}
	return nil
}

func (r *Repository) ReviewsForLender(ctx context.Context, lenderID uint) ([]ds.LenderReview, error) {
	var reviews []ds.LenderReview
	err := r.db.WithContext(ctx).
		Preload("Renter").
		Where("lender_id = ?", lenderID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}
