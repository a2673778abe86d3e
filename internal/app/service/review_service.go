package service

import (
	"context"
	"time"

	"tigerstorage/internal/app/domain"
	"tigerstorage/internal/app/ds"
)

// ReviewService - право на отзыв об арендодателе.
// Отзыв доступен только по одобренной заявке, чей контракт уже закончился.
// Даты сравниваются по UTC без времени суток.
type ReviewService struct {
	store Store
	now   func() time.Time
}

func NewReviewService(store Store) *ReviewService {
	return &ReviewService{
		store: store,
		now:   time.Now,
	}
}

// eligible - заявка одобрена и её дата окончания строго раньше today
func eligible(req *ds.ReservationRequest, today time.Time) bool {
	if !req.Status.IsApproved() || req.EndDate == nil {
		return false
	}
	return dateOnly(*req.EndDate).Before(today)
}

// CanReview возвращает заявку, дающую право на отзыв по объявлению,
// либо nil. У арендатора с несколькими завершёнными заявками право
// считается по каждой отдельно.
func (s *ReviewService) CanReview(ctx context.Context, renterID, listingID uint) (*ds.ReservationRequest, error) {
	reqs, err := s.store.RequestsByRenter(ctx, renterID)
	if err != nil {
		return nil, err
	}

	today := dateOnly(s.now())
	for i := range reqs {
		req := &reqs[i]
		if req.ListingID != listingID || !eligible(req, today) {
			continue
		}
		reviewed, err := s.store.HasReview(ctx, renterID, req.ID)
		if err != nil {
			return nil, err
		}
		if !reviewed {
			return req, nil
		}
	}
	return nil, nil
}

// Submit создаёт отзыв по конкретной заявке. Право и уникальность
// перепроверяются в момент записи: вычисленная при отрисовке страницы
// доступность могла устареть.
func (s *ReviewService) Submit(ctx context.Context, renterID, requestID uint, rating int, text string) (*ds.LenderReview, error) {
	if rating < 1 || rating > 5 {
		return nil, domain.ErrInvalidAmount
	}

	req, err := s.store.Request(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.RenterID != renterID {
		return nil, domain.ErrForbidden
	}
	if !eligible(req, dateOnly(s.now())) {
		return nil, domain.ErrNotEligible
	}

	reviewed, err := s.store.HasReview(ctx, renterID, requestID)
	if err != nil {
		return nil, err
	}
	if reviewed {
		return nil, domain.ErrDuplicateReview
	}

	// владелец ищется и по удалённым объявлениям: история заявки остаётся
	lenderID, err := s.store.ListingOwner(ctx, req.ListingID)
	if err != nil {
		return nil, err
	}

	review := &ds.LenderReview{
		RequestID:  requestID,
		RenterID:   renterID,
		LenderID:   lenderID,
		Rating:     rating,
		ReviewText: text,
		CreatedAt:  s.now(),
	}
	// уникальный индекс (renter_id, request_id) закрывает гонку двух отправок
	if err := s.store.CreateReview(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// CanReviewRequest - доступность отзыва по конкретной заявке арендатора
func (s *ReviewService) CanReviewRequest(ctx context.Context, renterID uint, req *ds.ReservationRequest) (bool, error) {
	if req.RenterID != renterID || !eligible(req, dateOnly(s.now())) {
		return false, nil
	}
	reviewed, err := s.store.HasReview(ctx, renterID, req.ID)
	if err != nil {
		return false, err
	}
	return !reviewed, nil
}

// ForLender - отзывы об арендодателе
func (s *ReviewService) ForLender(ctx context.Context, lenderID uint) ([]ds.LenderReview, error) {
	return s.store.ReviewsForLender(ctx, lenderID)
}
