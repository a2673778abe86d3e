package service

import (
	"context"

	"tigerstorage/internal/app/domain"
	"tigerstorage/internal/app/ds"
)

// InterestService - необязывающие отметки интереса арендатора.
// Отметка живёт отдельно от заявки: может существовать без заявки и
// переживает отклонение. Обратное неверно: снятие интереса сначала
// отменяет ожидающую заявку, чтобы не оставить "ничейную" pending-заявку.
type InterestService struct {
	store Store
}

func NewInterestService(store Store) *InterestService {
	return &InterestService{store: store}
}

// Mark ставит отметку интереса. Повторная отметка - no-op.
func (s *InterestService) Mark(ctx context.Context, renterID, listingID uint) error {
	listing, err := s.store.Listing(ctx, listingID)
	if err != nil {
		return err
	}
	if listing.OwnerID == renterID {
		return domain.ErrForbidden
	}
	return s.store.CreateInterest(ctx, renterID, listingID)
}

// Unmark снимает отметку. Если по паре есть ожидающая заявка, она сначала
// переводится в cancelled_by_renter (объём не освобождается - pending ничего
// не держит), затем удаляется отметка. Всё в одной транзакции.
func (s *InterestService) Unmark(ctx context.Context, renterID, listingID uint) error {
	return s.store.Atomic(ctx, listingID, func(tx Store) error {
		pending, err := tx.PendingRequest(ctx, listingID, renterID)
		if err != nil {
			return err
		}
		if pending != nil {
			applied, err := tx.TransitionRequest(ctx, pending.ID, ds.StatusPending, ds.StatusCancelled, RequestUpdate{})
			if err != nil {
				return err
			}
			if !applied {
				return domain.ErrInvalidTransition
			}
		}
		return tx.DeleteInterest(ctx, renterID, listingID)
	})
}

// MyListings - объявления, отмеченные арендатором
func (s *InterestService) MyListings(ctx context.Context, renterID uint) ([]ds.Listing, error) {
	return s.store.InterestedListings(ctx, renterID)
}

// InterestedRenters - арендаторы, отметившие объявление; доступно владельцу
func (s *InterestService) InterestedRenters(ctx context.Context, lenderID, listingID uint) ([]ds.User, error) {
	listing, err := s.store.Listing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != lenderID {
		return nil, domain.ErrForbidden
	}
	return s.store.InterestedRenters(ctx, listingID)
}
