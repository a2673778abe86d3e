package service

import (
	"context"
	"time"

	"tigerstorage/internal/app/domain"
	"tigerstorage/internal/app/ds"

	"github.com/shopspring/decimal"
)

// Поля объявления, задаваемые арендодателем
type ListingParams struct {
	Location    string
	Description string
	Cost        decimal.Decimal
	TotalSpace  decimal.Decimal
	StartDate   time.Time
	EndDate     time.Time
}

// ListingService - CRUD объявлений. Изменение заявленного объёма проходит
// через книгу объёмов: нельзя опустить общий объём ниже уже зафиксированного.
type ListingService struct {
	store Store
	now   func() time.Time
}

func NewListingService(store Store) *ListingService {
	return &ListingService{
		store: store,
		now:   time.Now,
	}
}

func (p ListingParams) validate() error {
	if p.TotalSpace.Sign() <= 0 {
		return domain.ErrInvalidAmount
	}
	if p.Cost.Sign() < 0 {
		return domain.ErrInvalidAmount
	}
	if !p.EndDate.After(p.StartDate) {
		return domain.ErrInvalidAmount
	}
	return nil
}

func (s *ListingService) Create(ctx context.Context, ownerID uint, p ListingParams) (*ds.Listing, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	listing := &ds.Listing{
		OwnerID:     ownerID,
		Location:    p.Location,
		Description: p.Description,
		Cost:        p.Cost,
		TotalSpace:  p.TotalSpace,
		StartDate:   dateOnly(p.StartDate),
		EndDate:     dateOnly(p.EndDate),
		CreatedAt:   s.now(),
	}
	if err := s.store.CreateListing(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// Update изменяет объявление. Новый общий объём сверяется с зафиксированным
// под блокировкой: остаток не может стать отрицательным.
func (s *ListingService) Update(ctx context.Context, ownerID, listingID uint, p ListingParams) (*ds.Listing, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	var out *ds.Listing
	err := s.store.Atomic(ctx, listingID, func(tx Store) error {
		listing, err := tx.Listing(ctx, listingID)
		if err != nil {
			return err
		}
		if listing.OwnerID != ownerID {
			return domain.ErrForbidden
		}

		committed, err := tx.CommittedSpace(ctx, listingID)
		if err != nil {
			return err
		}
		if p.TotalSpace.LessThan(committed) {
			return &domain.CapacityError{Remaining: listing.TotalSpace.Sub(committed)}
		}

		listing.Location = p.Location
		listing.Description = p.Description
		listing.Cost = p.Cost
		listing.TotalSpace = p.TotalSpace
		listing.StartDate = dateOnly(p.StartDate)
		listing.EndDate = dateOnly(p.EndDate)
		if err := tx.SaveListing(ctx, listing); err != nil {
			return err
		}
		out = listing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete - логическое удаление объявления владельцем
func (s *ListingService) Delete(ctx context.Context, ownerID, listingID uint) error {
	listing, err := s.store.Listing(ctx, listingID)
	if err != nil {
		return err
	}
	if listing.OwnerID != ownerID {
		return domain.ErrForbidden
	}
	return s.store.SoftDeleteListing(ctx, listingID)
}

func (s *ListingService) Get(ctx context.Context, id uint) (*ds.Listing, error) {
	return s.store.Listing(ctx, id)
}

func (s *ListingService) List(ctx context.Context, f ListingFilter) ([]ds.Listing, error) {
	return s.store.Listings(ctx, f)
}

// SetImageURL сохраняет имя загруженного изображения
func (s *ListingService) SetImageURL(ctx context.Context, ownerID, listingID uint, url string) error {
	listing, err := s.store.Listing(ctx, listingID)
	if err != nil {
		return err
	}
	if listing.OwnerID != ownerID {
		return domain.ErrForbidden
	}
	listing.ImageURL = &url
	return s.store.SaveListing(ctx, listing)
}
