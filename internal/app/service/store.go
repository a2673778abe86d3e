package service

import (
	"context"
	"time"

	"tigerstorage/internal/app/ds"

	"github.com/shopspring/decimal"
)

// RequestUpdate - поля, меняемые guarded-переходом статуса заявки
type RequestUpdate struct {
	ApprovedSpace *decimal.Decimal
	DecidedAt     *time.Time
	StartDate     *time.Time
	EndDate       *time.Time
	ClearApproved bool // снять approved_space при отмене одобренной заявки
}

// Фильтр списка объявлений
type ListingFilter struct {
	Query   string // поиск по адресу
	OwnerID uint   // 0 - все владельцы
}

// Store - хранилище ядра бронирования. Реализуется gorm-репозиторием,
// в тестах - потокобезопасным in-memory хранилищем.
type Store interface {
	// Пользователи
	User(ctx context.Context, id uint) (*ds.User, error)

	// Объявления (живые, без soft-deleted)
	Listing(ctx context.Context, id uint) (*ds.Listing, error)
	Listings(ctx context.Context, f ListingFilter) ([]ds.Listing, error)
	CreateListing(ctx context.Context, l *ds.Listing) error
	SaveListing(ctx context.Context, l *ds.Listing) error
	SoftDeleteListing(ctx context.Context, id uint) error
	// Владелец объявления, включая soft-deleted (для привязки отзывов)
	ListingOwner(ctx context.Context, listingID uint) (uint, error)

	// Книга объёмов: сумма approved_space по заявкам в approved_full/approved_partial.
	// Производный агрегат, отдельно не хранится.
	CommittedSpace(ctx context.Context, listingID uint) (decimal.Decimal, error)

	// Заявки
	Request(ctx context.Context, id uint) (*ds.ReservationRequest, error)
	RequestsByRenter(ctx context.Context, renterID uint) ([]ds.ReservationRequest, error)
	RequestsByListing(ctx context.Context, listingID uint) ([]ds.ReservationRequest, error)
	HasPendingRequest(ctx context.Context, listingID, renterID uint) (bool, error)
	PendingRequest(ctx context.Context, listingID, renterID uint) (*ds.ReservationRequest, error)
	CreateRequest(ctx context.Context, req *ds.ReservationRequest) error
	// TransitionRequest применяет переход from -> to только если заявка всё ещё
	// в статусе from (UPDATE ... WHERE status = from). Возвращает, применён ли
	// переход: false означает проигранную гонку или недопустимый переход.
	TransitionRequest(ctx context.Context, id uint, from, to ds.ReservationStatus, upd RequestUpdate) (bool, error)
	// Ожидающие заявки, чьё контрактное окно уже закрылось
	StalePendingRequests(ctx context.Context, today time.Time) ([]ds.ReservationRequest, error)

	// Отметки интереса
	HasInterest(ctx context.Context, renterID, listingID uint) (bool, error)
	CreateInterest(ctx context.Context, renterID, listingID uint) error // идемпотентно
	DeleteInterest(ctx context.Context, renterID, listingID uint) error
	InterestedListings(ctx context.Context, renterID uint) ([]ds.Listing, error)
	InterestedRenters(ctx context.Context, listingID uint) ([]ds.User, error)

	// Отзывы
	HasReview(ctx context.Context, renterID, requestID uint) (bool, error)
	CreateReview(ctx context.Context, r *ds.LenderReview) error
	ReviewsForLender(ctx context.Context, lenderID uint) ([]ds.LenderReview, error)

	// Atomic выполняет fn в транзакции с блокировкой строки объявления.
	// Все операции чтения-изменения остатка объёма обязаны идти через него:
	// это единственная защита от двух одобрений, совместно превышающих объём.
	Atomic(ctx context.Context, listingID uint, fn func(tx Store) error) error
}
