package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tigerstorage/internal/app/ds"
	"tigerstorage/internal/app/role"
	"tigerstorage/internal/app/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// capacityStore отдаёт одно объявление с частично занятым объёмом и одну
// ожидающую заявку, которая в остаток уже не влезает. Остальные методы
// Store остаются за встроенным интерфейсом и в этом сценарии не вызываются.
type capacityStore struct {
	service.Store
	listing   ds.Listing
	request   ds.ReservationRequest
	committed decimal.Decimal
}

func (st *capacityStore) Listing(_ context.Context, _ uint) (*ds.Listing, error) {
	l := st.listing
	return &l, nil
}

func (st *capacityStore) Request(_ context.Context, _ uint) (*ds.ReservationRequest, error) {
	r := st.request
	return &r, nil
}

func (st *capacityStore) CommittedSpace(_ context.Context, _ uint) (decimal.Decimal, error) {
	return st.committed, nil
}

func (st *capacityStore) Atomic(_ context.Context, _ uint, fn func(tx service.Store) error) error {
	return fn(st)
}

type CapacityPayloadSuite struct {
	suite.Suite
	handler *APIHandler
}

func (s *CapacityPayloadSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)
	store := &capacityStore{
		// объём 100, зафиксировано 60, значит остаток 40
		listing: ds.Listing{
			ID:         1,
			OwnerID:    10,
			TotalSpace: decimal.NewFromInt(100),
			StartDate:  start,
			EndDate:    end,
		},
		// заявка на 50 целиком уже не влезает
		request: ds.ReservationRequest{
			ID:             7,
			ListingID:      1,
			RenterID:       2,
			RequestedSpace: decimal.NewFromInt(50),
			Status:         ds.StatusPending,
		},
		committed: decimal.NewFromInt(60),
	}
	s.handler = &APIHandler{Reservations: service.NewReservationService(store)}
}

func (s *CapacityPayloadSuite) decideStatus(body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/api/reservation-requests/7/status", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	// на маршруте решения по заявке :id содержит ID заявки, не объявления
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	c.Set("userID", uint(10))
	c.Set("userRole", role.Lender)

	s.handler.UpdateRequestStatus(c)
	return w
}

// При отказе по объёму арендодатель видит остаток именно того объявления,
// к которому относится заявка.
func (s *CapacityPayloadSuite) TestFailedApprovalCarriesListingRemaining() {
	w := s.decideStatus(`{"status":"approved_full"}`)

	s.Equal(http.StatusConflict, w.Code)
	var body struct {
		Status         string `json:"status"`
		Message        string `json:"message"`
		RemainingSpace string `json:"remaining_space"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.Equal("fail", body.Status)
	s.NotEmpty(body.Message)
	s.Equal("40", body.RemainingSpace)
}

func (s *CapacityPayloadSuite) TestFailedPartialApprovalCarriesListingRemaining() {
	w := s.decideStatus(`{"status":"approved_partial","approved_space":"45"}`)

	s.Equal(http.StatusConflict, w.Code)
	var body struct {
		RemainingSpace string `json:"remaining_space"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.Equal("40", body.RemainingSpace)
}

func TestCapacityPayloadSuite(t *testing.T) {
	suite.Run(t, new(CapacityPayloadSuite))
}
