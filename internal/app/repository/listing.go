package repository

import (
	"context"
	"errors"

	"tigerstorage/internal/app/domain"
	"tigerstorage/internal/app/ds"
	"tigerstorage/internal/app/service"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Методы для работы с объявлениями

// Listing возвращает живое (не удалённое) объявление
func (r *Repository) Listing(ctx context.Context, id uint) (*ds.Listing, error) {
	var listing ds.Listing
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&listing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrListingNotFound
		}
		return nil, err
	}
	return &listing, nil
}

// Listings - список живых объявлений с поиском по адресу
func (r *Repository) Listings(ctx context.Context, f service.ListingFilter) ([]ds.Listing, error) {
	q := r.db.WithContext(ctx).Where("is_deleted = ?", false)
	if f.Query != "" {
		q = q.Where("location ILIKE ?", "%"+f.Query+"%")
	}
	if f.OwnerID != 0 {
		q = q.Where("owner_id = ?", f.OwnerID)
	}

	var listings []ds.Listing
	err := q.Order("created_at DESC").Find(&listings).Error
	return listings, err
}

func (r *Repository) CreateListing(ctx context.Context, l *ds.Listing) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *Repository) SaveListing(ctx context.Context, l *ds.Listing) error {
	return r.db.WithContext(ctx).Save(l).Error
}

// SoftDeleteListing - логическое удаление (заявки и отзывы сохраняются)
func (r *Repository) SoftDeleteListing(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&ds.Listing{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("is_deleted", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

// ListingOwner возвращает владельца, включая удалённые объявления:
// отзыв по завершённой заявке возможен и после снятия объявления
func (r *Repository) ListingOwner(ctx context.Context, listingID uint) (uint, error) {
	var listing ds.Listing
	err := r.db.WithContext(ctx).Select("owner_id").First(&listing, listingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domain.ErrListingNotFound
		}
		return 0, err
	}
	return listing.OwnerID, nil
}

// CommittedSpace - зафиксированный объём объявления: сумма approved_space
// по одобренным заявкам. Независимого хранения у книги объёмов нет.
func (r *Repository) CommittedSpace(ctx context.Context, listingID uint) (decimal.Decimal, error) {
	var committed decimal.Decimal
	err := r.db.WithContext(ctx).Model(&ds.ReservationRequest{}).
		Where("listing_id = ? AND status IN ?", listingID,
			[]ds.ReservationStatus{ds.StatusApprovedFull, ds.StatusApprovedPartial}).
		Select("COALESCE(SUM(approved_space), 0)").
		Scan(&committed).Error
	if err != nil {
		return decimal.Zero, err
	}
	return committed, nil
}
