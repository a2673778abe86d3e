package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"tigerstorage/internal/app/domain"
	"tigerstorage/internal/app/ds"

	"github.com/shopspring/decimal"
)

type interestKey struct {
	renterID  uint
	listingID uint
}

// memView держит данные и реализует Store без блокировок.
// Снаружи всегда используется memStore, который берёт мьютекс;
// Atomic передаёт в fn сам memView, уже под мьютексом.
type memView struct {
	users     map[uint]*ds.User
	listings  map[uint]*ds.Listing
	requests  map[uint]*ds.ReservationRequest
	interests map[interestKey]time.Time
	reviews   []*ds.LenderReview

	nextListingID uint
	nextRequestID uint
	nextReviewID  uint
}

// memStore - потокобезопасное хранилище в памяти для тестов сервисного слоя
type memStore struct {
	mu sync.Mutex
	v  *memView
}

func newMemStore() *memStore {
	return &memStore{v: &memView{
		users:         make(map[uint]*ds.User),
		listings:      make(map[uint]*ds.Listing),
		requests:      make(map[uint]*ds.ReservationRequest),
		interests:     make(map[interestKey]time.Time),
		nextListingID: 1,
		nextRequestID: 1,
		nextReviewID:  1,
	}}
}

// ============ Наполнение в тестах ============

func (s *memStore) addUser(u ds.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.users[u.ID] = &u
}

func (s *memStore) addListing(l ds.Listing) uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.ID = s.v.nextListingID
	s.v.nextListingID++
	s.v.listings[l.ID] = &l
	return l.ID
}

func (s *memStore) requestStatus(id uint) ds.ReservationStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.requests[id].Status
}

// ============ memView: Store без блокировок ============

func (v *memView) User(_ context.Context, id uint) (*ds.User, error) {
	u, ok := v.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d not found", id)
	}
	cp := *u
	return &cp, nil
}

func (v *memView) Listing(_ context.Context, id uint) (*ds.Listing, error) {
	l, ok := v.listings[id]
	if !ok || l.IsDeleted {
		return nil, domain.ErrListingNotFound
	}
	cp := *l
	return &cp, nil
}

func (v *memView) Listings(_ context.Context, f ListingFilter) ([]ds.Listing, error) {
	var out []ds.Listing
	for _, l := range v.listings {
		if l.IsDeleted {
			continue
		}
		if f.Query != "" && !strings.Contains(strings.ToLower(l.Location), strings.ToLower(f.Query)) {
			continue
		}
		if f.OwnerID != 0 && l.OwnerID != f.OwnerID {
			continue
		}
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (v *memView) CreateListing(_ context.Context, l *ds.Listing) error {
	l.ID = v.nextListingID
	v.nextListingID++
	cp := *l
	v.listings[l.ID] = &cp
	return nil
}

func (v *memView) SaveListing(_ context.Context, l *ds.Listing) error {
	cp := *l
	v.listings[l.ID] = &cp
	return nil
}

func (v *memView) SoftDeleteListing(_ context.Context, id uint) error {
	l, ok := v.listings[id]
	if !ok || l.IsDeleted {
		return domain.ErrListingNotFound
	}
	l.IsDeleted = true
	return nil
}

func (v *memView) ListingOwner(_ context.Context, listingID uint) (uint, error) {
	l, ok := v.listings[listingID]
	if !ok {
		return 0, domain.ErrListingNotFound
	}
	return l.OwnerID, nil
}

func (v *memView) CommittedSpace(_ context.Context, listingID uint) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, r := range v.requests {
		if r.ListingID == listingID && r.Status.IsApproved() && r.ApprovedSpace != nil {
			sum = sum.Add(*r.ApprovedSpace)
		}
	}
	return sum, nil
}

func (v *memView) Request(_ context.Context, id uint) (*ds.ReservationRequest, error) {
	r, ok := v.requests[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	cp := *r
	return &cp, nil
}

func (v *memView) RequestsByRenter(_ context.Context, renterID uint) ([]ds.ReservationRequest, error) {
	var out []ds.ReservationRequest
	for _, r := range v.requests {
		if r.RenterID != renterID {
			continue
		}
		cp := *r
		if l, ok := v.listings[r.ListingID]; ok {
			cp.Listing = *l
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (v *memView) RequestsByListing(_ context.Context, listingID uint) ([]ds.ReservationRequest, error) {
	var out []ds.ReservationRequest
	for _, r := range v.requests {
		if r.ListingID != listingID {
			continue
		}
		cp := *r
		if u, ok := v.users[r.RenterID]; ok {
			cp.Renter = *u
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (v *memView) HasPendingRequest(_ context.Context, listingID, renterID uint) (bool, error) {
	for _, r := range v.requests {
		if r.ListingID == listingID && r.RenterID == renterID && r.Status == ds.StatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (v *memView) PendingRequest(_ context.Context, listingID, renterID uint) (*ds.ReservationRequest, error) {
	for _, r := range v.requests {
		if r.ListingID == listingID && r.RenterID == renterID && r.Status == ds.StatusPending {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (v *memView) CreateRequest(_ context.Context, req *ds.ReservationRequest) error {
	req.ID = v.nextRequestID
	v.nextRequestID++
	cp := *req
	v.requests[req.ID] = &cp
	return nil
}

func (v *memView) TransitionRequest(_ context.Context, id uint, from, to ds.ReservationStatus, upd RequestUpdate) (bool, error) {
	if !from.CanTransitionTo(to) {
		return false, nil
	}
	r, ok := v.requests[id]
	if !ok || r.Status != from {
		return false, nil
	}

	r.Status = to
	if upd.ApprovedSpace != nil {
		space := *upd.ApprovedSpace
		r.ApprovedSpace = &space
	}
	if upd.ClearApproved {
		r.ApprovedSpace = nil
	}
	if upd.DecidedAt != nil {
		t := *upd.DecidedAt
		r.DecidedAt = &t
	}
	if upd.StartDate != nil {
		t := *upd.StartDate
		r.StartDate = &t
	}
	if upd.EndDate != nil {
		t := *upd.EndDate
		r.EndDate = &t
	}
	return true, nil
}

func (v *memView) StalePendingRequests(_ context.Context, today time.Time) ([]ds.ReservationRequest, error) {
	var out []ds.ReservationRequest
	for _, r := range v.requests {
		if r.Status != ds.StatusPending {
			continue
		}
		l, ok := v.listings[r.ListingID]
		if ok && l.EndDate.Before(today) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (v *memView) HasInterest(_ context.Context, renterID, listingID uint) (bool, error) {
	_, ok := v.interests[interestKey{renterID, listingID}]
	return ok, nil
}

func (v *memView) CreateInterest(_ context.Context, renterID, listingID uint) error {
	key := interestKey{renterID, listingID}
	if _, ok := v.interests[key]; !ok {
		v.interests[key] = time.Now()
	}
	return nil
}

func (v *memView) DeleteInterest(_ context.Context, renterID, listingID uint) error {
	delete(v.interests, interestKey{renterID, listingID})
	return nil
}

func (v *memView) InterestedListings(_ context.Context, renterID uint) ([]ds.Listing, error) {
	var out []ds.Listing
	for key := range v.interests {
		if key.renterID != renterID {
			continue
		}
		if l, ok := v.listings[key.listingID]; ok && !l.IsDeleted {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (v *memView) InterestedRenters(_ context.Context, listingID uint) ([]ds.User, error) {
	var out []ds.User
	for key := range v.interests {
		if key.listingID != listingID {
			continue
		}
		if u, ok := v.users[key.renterID]; ok {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (v *memView) HasReview(_ context.Context, renterID, requestID uint) (bool, error) {
	for _, r := range v.reviews {
		if r.RenterID == renterID && r.RequestID == requestID {
			return true, nil
		}
	}
	return false, nil
}

func (v *memView) CreateReview(ctx context.Context, review *ds.LenderReview) error {
	exists, _ := v.HasReview(ctx, review.RenterID, review.RequestID)
	if exists {
		return domain.ErrDuplicateReview
	}
	review.ID = v.nextReviewID
	v.nextReviewID++
	cp := *review
	v.reviews = append(v.reviews, &cp)
	return nil
}

func (v *memView) ReviewsForLender(_ context.Context, lenderID uint) ([]ds.LenderReview, error) {
	var out []ds.LenderReview
	for _, r := range v.reviews {
		if r.LenderID == lenderID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (v *memView) Atomic(_ context.Context, listingID uint, fn func(tx Store) error) error {
	if _, ok := v.listings[listingID]; !ok {
		return domain.ErrListingNotFound
	}
	return fn(v)
}

// ============ memStore: блокирующие обёртки ============

func (s *memStore) User(ctx context.Context, id uint) (*ds.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.User(ctx, id)
}

func (s *memStore) Listing(ctx context.Context, id uint) (*ds.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.Listing(ctx, id)
}

func (s *memStore) Listings(ctx context.Context, f ListingFilter) ([]ds.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.Listings(ctx, f)
}

func (s *memStore) CreateListing(ctx context.Context, l *ds.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.CreateListing(ctx, l)
}

func (s *memStore) SaveListing(ctx context.Context, l *ds.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.SaveListing(ctx, l)
}

func (s *memStore) SoftDeleteListing(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.SoftDeleteListing(ctx, id)
}

func (s *memStore) ListingOwner(ctx context.Context, listingID uint) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.ListingOwner(ctx, listingID)
}

func (s *memStore) CommittedSpace(ctx context.Context, listingID uint) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.CommittedSpace(ctx, listingID)
}

func (s *memStore) Request(ctx context.Context, id uint) (*ds.ReservationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.Request(ctx, id)
}

func (s *memStore) RequestsByRenter(ctx context.Context, renterID uint) ([]ds.ReservationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.RequestsByRenter(ctx, renterID)
}

func (s *memStore) RequestsByListing(ctx context.Context, listingID uint) ([]ds.ReservationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.RequestsByListing(ctx, listingID)
}

func (s *memStore) HasPendingRequest(ctx context.Context, listingID, renterID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.HasPendingRequest(ctx, listingID, renterID)
}

func (s *memStore) PendingRequest(ctx context.Context, listingID, renterID uint) (*ds.ReservationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.PendingRequest(ctx, listingID, renterID)
}

func (s *memStore) CreateRequest(ctx context.Context, req *ds.ReservationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.CreateRequest(ctx, req)
}

func (s *memStore) TransitionRequest(ctx context.Context, id uint, from, to ds.ReservationStatus, upd RequestUpdate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.TransitionRequest(ctx, id, from, to, upd)
}

func (s *memStore) StalePendingRequests(ctx context.Context, today time.Time) ([]ds.ReservationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.StalePendingRequests(ctx, today)
}

func (s *memStore) HasInterest(ctx context.Context, renterID, listingID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.HasInterest(ctx, renterID, listingID)
}

func (s *memStore) CreateInterest(ctx context.Context, renterID, listingID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.CreateInterest(ctx, renterID, listingID)
}

func (s *memStore) DeleteInterest(ctx context.Context, renterID, listingID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.DeleteInterest(ctx, renterID, listingID)
}

func (s *memStore) InterestedListings(ctx context.Context, renterID uint) ([]ds.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.InterestedListings(ctx, renterID)
}

func (s *memStore) InterestedRenters(ctx context.Context, listingID uint) ([]ds.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.InterestedRenters(ctx, listingID)
}

func (s *memStore) HasReview(ctx context.Context, renterID, requestID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.HasReview(ctx, renterID, requestID)
}

func (s *memStore) CreateReview(ctx context.Context, r *ds.LenderReview) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.CreateReview(ctx, r)
}

func (s *memStore) ReviewsForLender(ctx context.Context, lenderID uint) ([]ds.LenderReview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.ReviewsForLender(ctx, lenderID)
}

func (s *memStore) Atomic(ctx context.Context, listingID uint, fn func(tx Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v.Atomic(ctx, listingID, fn)
}
