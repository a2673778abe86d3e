package repository

import (
	"context"
	"errors"
	"time"

	"tigerstorage/internal/app/domain"
	"tigerstorage/internal/app/ds"
	"tigerstorage/internal/app/service"

	"gorm.io/gorm"
)

// Методы для работы с заявками на бронирование

func (r *Repository) Request(ctx context.Context, id uint) (*ds.ReservationRequest, error) {
	var req ds.ReservationRequest
	err := r.db.WithContext(ctx).First(&req, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *Repository) RequestsByRenter(ctx context.Context, renterID uint) ([]ds.ReservationRequest, error) {
	var reqs []ds.ReservationRequest
	err := r.db.WithContext(ctx).
		Preload("Listing").
		Where("renter_id = ?", renterID).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *Repository) RequestsByListing(ctx context.Context, listingID uint) ([]ds.ReservationRequest, error) {
	var reqs []ds.ReservationRequest
	err := r.db.WithContext(ctx).
		Preload("Renter").
		Where("listing_id = ?", listingID).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *Repository) HasPendingRequest(ctx context.Context, listingID, renterID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&ds.ReservationRequest{}).
		Where("listing_id = ? AND renter_id = ? AND status = ?", listingID, renterID, ds.StatusPending).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) PendingRequest(ctx context.Context, listingID, renterID uint) (*ds.ReservationRequest, error) {
	var req ds.ReservationRequest
	err := r.db.WithContext(ctx).
		Where("listing_id = ? AND renter_id = ? AND status = ?", listingID, renterID, ds.StatusPending).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func (r *Repository) CreateRequest(ctx context.Context, req *ds.ReservationRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// TransitionRequest - guarded-переход статуса: UPDATE применяется только
// если заявка всё ещё в статусе from. RowsAffected == 0 означает, что
// переход проиграл гонку (или недопустим) - заявка уже в другом статусе.
func (r *Repository) TransitionRequest(ctx context.Context, id uint, from, to ds.ReservationStatus, upd service.RequestUpdate) (bool, error) {
	if !from.CanTransitionTo(to) {
		return false, nil
	}

	updates := map[string]interface{}{"status": to}
	if upd.ApprovedSpace != nil {
		updates["approved_space"] = *upd.ApprovedSpace
	}
	if upd.ClearApproved {
		updates["approved_space"] = nil
	}
	if upd.DecidedAt != nil {
		updates["decided_at"] = *upd.DecidedAt
	}
	if upd.StartDate != nil {
		updates["start_date"] = *upd.StartDate
	}
	if upd.EndDate != nil {
		updates["end_date"] = *upd.EndDate
	}

	result := r.db.WithContext(ctx).Model(&ds.ReservationRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// StalePendingRequests - ожидающие заявки по объявлениям с закрытым
// контрактным окном (для фоновой зачистки)
func (r *Repository) StalePendingRequests(ctx context.Context, today time.Time) ([]ds.ReservationRequest, error) {
	var reqs []ds.ReservationRequest
	err := r.db.WithContext(ctx).
		Joins("JOIN listings ON listings.id = reservation_requests.listing_id").
		Where("reservation_requests.status = ? AND listings.end_date < ?", ds.StatusPending, today).
		Find(&reqs).Error
	return reqs, err
}
