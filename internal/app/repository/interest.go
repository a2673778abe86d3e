package repository

import (
	"context"
	"time"

	"tigerstorage/internal/app/ds"

	"gorm.io/gorm/clause"
)

// Методы для работы с отметками интереса

func (r *Repository) HasInterest(ctx context.Context, renterID, listingID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&ds.InterestMark{}).
		Where("renter_id = ? AND listing_id = ?", renterID, listingID).
		Count(&count).Error
	return count > 0, err
}

// CreateInterest идемпотентен: повторная отметка - no-op (ON CONFLICT DO NOTHING)
func (r *Repository) CreateInterest(ctx context.Context, renterID, listingID uint) error {
	mark := ds.InterestMark{
		RenterID:  renterID,
		ListingID: listingID,
		CreatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "renter_id"}, {Name: "listing_id"}},
			DoNothing: true,
		}).
		Create(&mark).Error
}

func (r *Repository) DeleteInterest(ctx context.Context, renterID, listingID uint) error {
	return r.db.WithContext(ctx).
		Where("renter_id = ? AND listing_id = ?", renterID, listingID).
		Delete(&ds.InterestMark{}).Error
}

// InterestedListings - живые объявления, отмеченные арендатором
func (r *Repository) InterestedListings(ctx context.Context, renterID uint) ([]ds.Listing, error) {
	var listings []ds.Listing
	err := r.db.WithContext(ctx).
		Joins("JOIN interest_marks ON interest_marks.listing_id = listings.id").
		Where("interest_marks.renter_id = ? AND listings.is_deleted = ?", renterID, false).
		Order("interest_marks.created_at DESC").
		Find(&listings).Error
	return listings, err
}

// InterestedRenters - арендаторы, отметившие объявление
func (r *Repository) InterestedRenters(ctx context.Context, listingID uint) ([]ds.User, error) {
	var users []ds.User
	err := r.db.WithContext(ctx).
		Joins("JOIN interest_marks ON interest_marks.renter_id = users.id").
		Where("interest_marks.listing_id = ?", listingID).
		Order("interest_marks.created_at DESC").
		Find(&users).Error
	return users, err
}
