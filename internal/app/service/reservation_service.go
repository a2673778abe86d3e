package service

import (
	"context"
	"time"

	"tigerstorage/internal/app/allocation"
	"tigerstorage/internal/app/domain"
	"tigerstorage/internal/app/ds"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ReservationService - машина состояний заявки на бронирование.
// Все переходы, затрагивающие остаток объёма, выполняются в транзакции
// с блокировкой объявления (Store.Atomic).
type ReservationService struct {
	store Store
	now   func() time.Time
}

func NewReservationService(store Store) *ReservationService {
	return &ReservationService{
		store: store,
		now:   time.Now,
	}
}

// dateOnly приводит момент к дате по UTC (время суток игнорируется)
func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Create создаёт ожидающую заявку арендатора на объём listing'а.
// Проверка "не более одной pending-заявки на пару арендатор-объявление"
// выполняется под блокировкой объявления, чтобы закрыть гонку двух
// одновременных отправок формы.
func (s *ReservationService) Create(ctx context.Context, renterID, listingID uint, requested decimal.Decimal) (*ds.ReservationRequest, error) {
	if requested.Sign() <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	var created *ds.ReservationRequest
	err := s.store.Atomic(ctx, listingID, func(tx Store) error {
		listing, err := tx.Listing(ctx, listingID)
		if err != nil {
			return err
		}
		if listing.OwnerID == renterID {
			// своё объявление бронировать нельзя
			return domain.ErrForbidden
		}
		if requested.GreaterThan(listing.TotalSpace) {
			return domain.ErrInvalidAmount
		}

		exists, err := tx.HasPendingRequest(ctx, listingID, renterID)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicateRequest
		}

		created = &ds.ReservationRequest{
			ListingID:      listingID,
			RenterID:       renterID,
			RequestedSpace: requested,
			Status:         ds.StatusPending,
			CreatedAt:      s.now(),
		}
		return tx.CreateRequest(ctx, created)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Approve - решение арендодателя: полное или частичное одобрение.
// Остаток объёма перечитывается под блокировкой в момент решения, а не
// в момент подачи заявки: параллельные одобрения могли его изменить.
// При нехватке объёма заявка остаётся pending, автоповтора нет.
func (s *ReservationService) Approve(ctx context.Context, lenderID, requestID uint, kind allocation.Kind, partial decimal.Decimal) (*ds.ReservationRequest, error) {
	req, err := s.store.Request(ctx, requestID)
	if err != nil {
		return nil, err
	}

	var out *ds.ReservationRequest
	err = s.store.Atomic(ctx, req.ListingID, func(tx Store) error {
		listing, err := tx.Listing(ctx, req.ListingID)
		if err != nil {
			return err
		}
		if listing.OwnerID != lenderID {
			return domain.ErrForbidden
		}

		cur, err := tx.Request(ctx, requestID)
		if err != nil {
			return err
		}
		if cur.Status != ds.StatusPending {
			return domain.ErrInvalidTransition
		}

		committed, err := tx.CommittedSpace(ctx, listing.ID)
		if err != nil {
			return err
		}
		remaining := listing.TotalSpace.Sub(committed)

		approved, err := allocation.Decide(cur.RequestedSpace, remaining, kind, partial)
		if err != nil {
			return err
		}

		to := ds.StatusApprovedFull
		if kind == allocation.ApprovePartial {
			to = ds.StatusApprovedPartial
		}

		now := s.now()
		start, end := listing.StartDate, listing.EndDate
		applied, err := tx.TransitionRequest(ctx, cur.ID, ds.StatusPending, to, RequestUpdate{
			ApprovedSpace: &approved,
			DecidedAt:     &now,
			StartDate:     &start,
			EndDate:       &end,
		})
		if err != nil {
			return err
		}
		if !applied {
			return domain.ErrInvalidTransition
		}

		cur.Status = to
		cur.ApprovedSpace = &approved
		cur.DecidedAt = &now
		cur.StartDate = &start
		cur.EndDate = &end
		out = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Reject - отклонение ожидающей заявки арендодателем
func (s *ReservationService) Reject(ctx context.Context, lenderID, requestID uint) error {
	req, err := s.store.Request(ctx, requestID)
	if err != nil {
		return err
	}

	return s.store.Atomic(ctx, req.ListingID, func(tx Store) error {
		listing, err := tx.Listing(ctx, req.ListingID)
		if err != nil {
			return err
		}
		if listing.OwnerID != lenderID {
			return domain.ErrForbidden
		}

		now := s.now()
		applied, err := tx.TransitionRequest(ctx, requestID, ds.StatusPending, ds.StatusRejected, RequestUpdate{
			DecidedAt: &now,
		})
		if err != nil {
			return err
		}
		if !applied {
			return domain.ErrInvalidTransition
		}
		return nil
	})
}

// Cancel - отмена заявки арендатором. Для pending ничего не освобождается
// (объём ещё не зафиксирован); для одобренной заявки снятие approved_space
// возвращает объём в остаток. Гонка с одобрением арендодателя разрешается
// guarded-переходом: проигравший получает ErrInvalidTransition.
func (s *ReservationService) Cancel(ctx context.Context, renterID, requestID uint) error {
	req, err := s.store.Request(ctx, requestID)
	if err != nil {
		return err
	}
	if req.RenterID != renterID {
		return domain.ErrForbidden
	}

	return s.store.Atomic(ctx, req.ListingID, func(tx Store) error {
		cur, err := tx.Request(ctx, requestID)
		if err != nil {
			return err
		}

		var applied bool
		switch cur.Status {
		case ds.StatusPending:
			applied, err = tx.TransitionRequest(ctx, requestID, ds.StatusPending, ds.StatusCancelled, RequestUpdate{})
		case ds.StatusApprovedFull, ds.StatusApprovedPartial:
			applied, err = tx.TransitionRequest(ctx, requestID, cur.Status, ds.StatusCancelled, RequestUpdate{
				ClearApproved: true,
			})
		default:
			return domain.ErrInvalidTransition
		}
		if err != nil {
			return err
		}
		if !applied {
			return domain.ErrInvalidTransition
		}
		return nil
	})
}

// RemainingSpace возвращает свободный объём объявления
func (s *ReservationService) RemainingSpace(ctx context.Context, listingID uint) (decimal.Decimal, error) {
	listing, err := s.store.Listing(ctx, listingID)
	if err != nil {
		return decimal.Zero, err
	}
	committed, err := s.store.CommittedSpace(ctx, listingID)
	if err != nil {
		return decimal.Zero, err
	}
	return listing.TotalSpace.Sub(committed), nil
}

// MyRequests - заявки арендатора (все статусы, история сохраняется)
func (s *ReservationService) MyRequests(ctx context.Context, renterID uint) ([]ds.ReservationRequest, error) {
	return s.store.RequestsByRenter(ctx, renterID)
}

// ListingRequests - заявки по объявлению, доступны только владельцу
func (s *ReservationService) ListingRequests(ctx context.Context, lenderID, listingID uint) ([]ds.ReservationRequest, error) {
	listing, err := s.store.Listing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != lenderID {
		return nil, domain.ErrForbidden
	}
	return s.store.RequestsByListing(ctx, listingID)
}

// ExpireStale переводит в expired ожидающие заявки, чьё контрактное окно
// уже закрылось. Вызывается фоновой периодической зачисткой.
func (s *ReservationService) ExpireStale(ctx context.Context) (int, error) {
	today := dateOnly(s.now())
	stale, err := s.store.StalePendingRequests(ctx, today)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, req := range stale {
		err := s.store.Atomic(ctx, req.ListingID, func(tx Store) error {
			applied, err := tx.TransitionRequest(ctx, req.ID, ds.StatusPending, ds.StatusExpired, RequestUpdate{})
			if err != nil {
				return err
			}
			if applied {
				expired++
			}
			return nil
		})
		if err != nil {
			// заявка могла уйти в другой статус параллельно, идём дальше
			logrus.Warnf("ExpireStale: заявка %d не переведена: %v", req.ID, err)
		}
	}
	return expired, nil
}
