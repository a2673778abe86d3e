package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"tigerstorage/internal/app/allocation"
	"tigerstorage/internal/app/domain"
	"tigerstorage/internal/app/ds"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

const (
	lenderID  = 1
	renterX   = 2
	renterY   = 3
	fixedYear = 2025
)

type ReservationSuite struct {
	suite.Suite
	store     *memStore
	svc       *ReservationService
	listingID uint
	ctx       context.Context
}

func fixedNow() time.Time {
	return time.Date(fixedYear, time.June, 15, 12, 0, 0, 0, time.UTC)
}

func (s *ReservationSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = newMemStore()
	s.svc = NewReservationService(s.store)
	s.svc.now = fixedNow

	s.store.addUser(ds.User{ID: lenderID, Login: "lender1", Role: 1})
	s.store.addUser(ds.User{ID: renterX, Login: "renterX"})
	s.store.addUser(ds.User{ID: renterY, Login: "renterY"})

	s.listingID = s.store.addListing(ds.Listing{
		OwnerID:    lenderID,
		Location:   "Москва, Ленинский проспект 4",
		TotalSpace: decimal.NewFromInt(100),
		StartDate:  time.Date(fixedYear, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(fixedYear, time.December, 31, 0, 0, 0, 0, time.UTC),
	})
}

func (s *ReservationSuite) remaining() decimal.Decimal {
	r, err := s.svc.RemainingSpace(s.ctx, s.listingID)
	s.Require().NoError(err)
	return r
}

func (s *ReservationSuite) TestCreateValidation() {
	_, err := s.svc.Create(s.ctx, renterX, s.listingID, decimal.Zero)
	s.ErrorIs(err, domain.ErrInvalidAmount)

	_, err = s.svc.Create(s.ctx, renterX, s.listingID, decimal.NewFromInt(-5))
	s.ErrorIs(err, domain.ErrInvalidAmount)

	// больше заявленного объёма объявления
	_, err = s.svc.Create(s.ctx, renterX, s.listingID, decimal.NewFromInt(150))
	s.ErrorIs(err, domain.ErrInvalidAmount)

	// своё объявление бронировать нельзя
	_, err = s.svc.Create(s.ctx, lenderID, s.listingID, decimal.NewFromInt(10))
	s.ErrorIs(err, domain.ErrForbidden)
}

func (s *ReservationSuite) TestDuplicatePendingRejected() {
	_, err := s.svc.Create(s.ctx, renterX, s.listingID, decimal.NewFromInt(10))
	s.Require().NoError(err)

	_, err = s.svc.Create(s.ctx, renterX, s.listingID, decimal.NewFromInt(20))
	s.ErrorIs(err, domain.ErrDuplicateRequest)
}

func (s *ReservationSuite) TestApproveFullThenPartial() {
	// Первая заявка на 60 одобряется полностью
	reqX, err := s.svc.Create(s.ctx, renterX, s.listingID, decimal.NewFromInt(60))
	s.Require().NoError(err)

	approved, err := s.svc.Approve(s.ctx, lenderID, reqX.ID, allocation.ApproveFull, decimal.Zero)
	s.Require().NoError(err)
	s.Equal(ds.StatusApprovedFull, approved.Status)
	s.True(approved.ApprovedSpace.Equal(decimal.NewFromInt(60)))
	s.NotNil(approved.DecidedAt)
	s.NotNil(approved.EndDate)
	s.True(s.remaining().Equal(decimal.NewFromInt(40)))

	// Вторая на 50 не влезает полностью, но одобряется частично на 40
	reqY, err := s.svc.Create(s.ctx, renterY, s.listingID, decimal.NewFromInt(50))
	s.Require().NoError(err)

	_, err = s.svc.Approve(s.ctx, lenderID, reqY.ID, allocation.ApproveFull, decimal.Zero)
	s.ErrorIs(err, domain.ErrCapacityExceeded)
	s.Equal(ds.StatusPending, s.store.requestStatus(reqY.ID))

	// Ошибка несёт остаток на момент решения, арендодатель видит его в ответе
	var capErr *domain.CapacityError
	s.Require().ErrorAs(err, &capErr)
	s.True(capErr.Remaining.Equal(decimal.NewFromInt(40)))

	partial, err := s.svc.Approve(s.ctx, lenderID, reqY.ID, allocation.ApprovePartial, decimal.NewFromInt(40))
	s.Require().NoError(err)
	s.Equal(ds.StatusApprovedPartial, partial.Status)
	s.True(s.remaining().IsZero())
}

func (s *ReservationSuite) TestApprovePartialValidation() {
	req, err := s.svc.Create(s.ctx, renterX, s.listingID, decimal.NewFromInt(30))
	s.Require().NoError(err)

	_, err = s.svc.Approve(s.ctx, lenderID, req.ID, allocation.ApprovePartial, decimal.Zero)
	s.ErrorIs(err, domain.ErrInvalidAmount)

	// частичное одобрение не может превышать запрошенное
	_, err = s.svc.Approve(s.ctx, lenderID, req.ID, allocation.ApprovePartial, decimal.NewFromInt(31))
	s.ErrorIs(err, domain.ErrInvalidAmount)
}

func (s *ReservationSuite) TestApproveForeignListingForbidden() {
	req, err := s.svc.Create(s.ctx, renterX, s.listingID, decimal.NewFromInt(10))
	s.Require().NoError(err)

	_, err = s.svc.Approve(s.ctx, renterY, req.ID, allocation.ApproveFull, decimal.Zero)
	s.ErrorIs(err, domain.ErrForbidden)

	err = s.svc.Reject(s.ctx, renterY, req.ID)
	s.ErrorIs(err, domain.ErrForbidden)
}

func (s *ReservationSuite) TestDecidedRequestIsFinalForLender() {
	req, err := s.svc.Create(s.ctx, renterX, s.listingID, decimal.NewFromInt(10))
	s.Require().NoError(err)

	err = s.svc.Reject(s.ctx, lenderID, req.ID)
	s.Require().NoError(err)

	_, err = s.svc.Approve(s.ctx, lenderID, req.ID, allocation.ApproveFull, decimal.Zero)
	s.ErrorIs(err, domain.ErrInvalidTransition)
}

func (s *ReservationSuite) TestCancelPendingKeepsRemaining() {
	req, err := s.svc.Create(s.ctx, renterX, s.listingID, decimal.NewFromInt(30))
	s.Require().NoError(err)
	s.True(s.remaining().Equal(decimal.NewFromInt(100)))

	err = s.svc.Cancel(s.ctx, renterX, req.ID)
	s.Require().NoError(err)
	s.Equal(ds.StatusCancelled, s.store.requestStatus(req.ID))
	s.True(s.remaining().Equal(decimal.NewFromInt(100)))
}

func (s *ReservationSuite) TestCancelApprovedReleasesSpace() {
	req, err := s.svc.Create(s.ctx, renterX, s.listingID, decimal.NewFromInt(20))
	s.Require().NoError(err)
	_, err = s.svc.Approve(s.ctx, lenderID, req.ID, allocation.ApproveFull, decimal.Zero)
	s.Require().NoError(err)
	s.True(s.remaining().Equal(decimal.NewFromInt(80)))

	err = s.svc.Cancel(s.ctx, renterX, req.ID)
	s.Require().NoError(err)

	// объём возвращается ровно к исходному
	s.True(s.remaining().Equal(decimal.NewFromInt(100)))
}

func (s *ReservationSuite) TestFractionalRoundTripNoDrift() {
	requested := decimal.RequireFromString("33.33")

	for i := 0; i < 10; i++ {
		req, err := s.svc.Create(s.ctx, renterX, s.listingID, requested)
		s.Require().NoError(err)
		_, err = s.svc.Approve(s.ctx, lenderID, req.ID, allocation.ApprovePartial, decimal.RequireFromString("11.11"))
		s.Require().NoError(err)
		err = s.svc.Cancel(s.ctx, renterX, req.ID)
		s.Require().NoError(err)
	}

	s.True(s.remaining().Equal(decimal.NewFromInt(100)),
		"остаток после циклов commit/release должен быть ровно 100, получено %s", s.remaining())
}

func (s *ReservationSuite) TestCancelForeignRequestForbidden() {
	req, err := s.svc.Create(s.ctx, renterX, s.listingID, decimal.NewFromInt(10))
	s.Require().NoError(err)

	err = s.svc.Cancel(s.ctx, renterY, req.ID)
	s.ErrorIs(err, domain.ErrForbidden)
}

func (s *ReservationSuite) TestConcurrentApprovalsExactlyOneWins() {
	reqX, err := s.svc.Create(s.ctx, renterX, s.listingID, decimal.NewFromInt(60))
	s.Require().NoError(err)
	reqY, err := s.svc.Create(s.ctx, renterY, s.listingID, decimal.NewFromInt(60))
	s.Require().NoError(err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []uint{reqX.ID, reqY.ID} {
		wg.Add(1)
		go func(i int, requestID uint) {
			defer wg.Done()
			_, errs[i] = s.svc.Approve(s.ctx, lenderID, requestID, allocation.ApproveFull, decimal.Zero)
		}(i, id)
	}
	wg.Wait()

	var ok, failed int
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			s.ErrorIs(err, domain.ErrCapacityExceeded)
			failed++
		}
	}
	s.Equal(1, ok, "ровно одно одобрение должно пройти")
	s.Equal(1, failed)
	s.True(s.remaining().Equal(decimal.NewFromInt(40)))
	s.False(s.remaining().IsNegative())
}

func (s *ReservationSuite) TestListingRequestsOwnerOnly() {
	_, err := s.svc.Create(s.ctx, renterX, s.listingID, decimal.NewFromInt(10))
	s.Require().NoError(err)

	reqs, err := s.svc.ListingRequests(s.ctx, lenderID, s.listingID)
	s.Require().NoError(err)
	s.Len(reqs, 1)

	_, err = s.svc.ListingRequests(s.ctx, renterX, s.listingID)
	s.ErrorIs(err, domain.ErrForbidden)
}

func (s *ReservationSuite) TestExpireStalePendingOnly() {
	staleID := s.store.addListing(ds.Listing{
		OwnerID:    lenderID,
		Location:   "Казань, склад на Баумана",
		TotalSpace: decimal.NewFromInt(50),
		StartDate:  time.Date(fixedYear-1, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(fixedYear-1, time.December, 31, 0, 0, 0, 0, time.UTC),
	})

	pending, err := s.svc.Create(s.ctx, renterX, staleID, decimal.NewFromInt(10))
	s.Require().NoError(err)

	approved, err := s.svc.Create(s.ctx, renterY, staleID, decimal.NewFromInt(10))
	s.Require().NoError(err)
	_, err = s.svc.Approve(s.ctx, lenderID, approved.ID, allocation.ApproveFull, decimal.Zero)
	s.Require().NoError(err)

	// заявка на живое объявление не трогается
	live, err := s.svc.Create(s.ctx, renterX, s.listingID, decimal.NewFromInt(10))
	s.Require().NoError(err)

	n, err := s.svc.ExpireStale(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
	s.Equal(ds.StatusExpired, s.store.requestStatus(pending.ID))
	s.Equal(ds.StatusApprovedFull, s.store.requestStatus(approved.ID))
	s.Equal(ds.StatusPending, s.store.requestStatus(live.ID))
}

func TestReservationSuite(t *testing.T) {
	suite.Run(t, new(ReservationSuite))
}
