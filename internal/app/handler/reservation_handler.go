package handler

import (
	"net/http"

	"tigerstorage/internal/app/allocation"
	"tigerstorage/internal/app/ds"
	"tigerstorage/internal/app/dto"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// buildReservationResponse собирает DTO заявки; связанные записи
// (объявление, арендатор) подставляются если были предзагружены
func (h *APIHandler) buildReservationResponse(c *gin.Context, req *ds.ReservationRequest, userID uint) dto.ReservationResponse {
	resp := dto.ReservationResponse{
		ID:             req.ID,
		ListingID:      req.ListingID,
		RequestedSpace: req.RequestedSpace,
		ApprovedSpace:  req.ApprovedSpace,
		Status:         string(req.Status),
		StatusLabel:    req.Status.Label(),
		StatusColor:    req.Status.Color(),
		CreatedAt:      req.CreatedAt,
		DecidedAt:      req.DecidedAt,
	}
	if req.Listing.ID != 0 {
		resp.Location = req.Listing.Location
	}
	if req.Renter.ID != 0 {
		resp.Renter = req.Renter.Login
	}
	if req.StartDate != nil {
		resp.StartDate = formatDate(*req.StartDate)
	}
	if req.EndDate != nil {
		resp.EndDate = formatDate(*req.EndDate)
	}

	if userID != 0 && userID == req.RenterID {
		can, err := h.Reviews.CanReviewRequest(c.Request.Context(), userID, req)
		if err != nil {
			logrus.Warnf("can-review check for request %d: %v", req.ID, err)
		}
		resp.CanReview = can
	}
	return resp
}

// ReserveListing создает заявку на бронирование
// @Summary Бронирование места
// @Description Создает ожидающую заявку арендатора на объём объявления и отмечает интерес
// @Tags Reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID объявления"
// @Param request body dto.ReserveRequest true "Запрошенный объём"
// @Success 201 {object} dto.ReservationResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/listings/{id}/reserve [post]
func (h *APIHandler) ReserveListing(c *gin.Context) {
	userID, _, err := h.getUserFromContext(c)
	if err != nil || userID == 0 {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	listingID, ok := parseIDParam(c, "id")
	if !ok {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID объявления")
		return
	}

	var req dto.ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	created, err := h.Reservations.Create(c.Request.Context(), userID, listingID, req.RequestedSpace)
	if err != nil {
		h.domainError(c, err)
		return
	}

	// Бронирование заодно отмечает интерес к объявлению
	if err := h.Interests.Mark(c.Request.Context(), userID, listingID); err != nil {
		logrus.Warnf("interest mark on reserve, listing %d: %v", listingID, err)
	}

	c.JSON(http.StatusCreated, h.buildReservationResponse(c, created, userID))
}

// UpdateRequestStatus меняет статус заявки
// @Summary Изменение статуса заявки
// @Description Арендодатель одобряет (полностью или частично) либо отклоняет заявку; арендатор отменяет свою
// @Tags Reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID заявки"
// @Param request body dto.DecideRequest true "Новый статус"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/reservation-requests/{id}/status [put]
func (h *APIHandler) UpdateRequestStatus(c *gin.Context) {
	userID, _, err := h.getUserFromContext(c)
	if err != nil || userID == 0 {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	requestID, ok := parseIDParam(c, "id")
	if !ok {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID заявки")
		return
	}

	var req dto.DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	switch ds.ReservationStatus(req.Status) {
	case ds.StatusApprovedFull:
		updated, err := h.Reservations.Approve(ctx, userID, requestID, allocation.ApproveFull, decimal.Zero)
		if err != nil {
			h.domainError(c, err)
			return
		}
		h.successResponse(c, http.StatusOK, "Заявка одобрена полностью", h.buildReservationResponse(c, updated, userID))

	case ds.StatusApprovedPartial:
		if req.ApprovedSpace == nil {
			h.errorResponse(c, http.StatusBadRequest, "Для частичного одобрения требуется approved_space")
			return
		}
		updated, err := h.Reservations.Approve(ctx, userID, requestID, allocation.ApprovePartial, *req.ApprovedSpace)
		if err != nil {
			h.domainError(c, err)
			return
		}
		h.successResponse(c, http.StatusOK, "Заявка одобрена частично", h.buildReservationResponse(c, updated, userID))

	case ds.StatusRejected:
		if err := h.Reservations.Reject(ctx, userID, requestID); err != nil {
			h.domainError(c, err)
			return
		}
		h.successResponse(c, http.StatusOK, "Заявка отклонена", nil)

	case ds.StatusCancelled:
		if err := h.Reservations.Cancel(ctx, userID, requestID); err != nil {
			h.domainError(c, err)
			return
		}
		h.successResponse(c, http.StatusOK, "Заявка отменена", nil)

	default:
		h.errorResponse(c, http.StatusBadRequest, "Недопустимый статус")
	}
}

// GetMyRequests получает заявки текущего арендатора
// @Summary Мои заявки
// @Description Возвращает все заявки текущего пользователя с историей статусов
// @Tags Reservations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ReservationListResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/my-reservation-requests [get]
func (h *APIHandler) GetMyRequests(c *gin.Context) {
	userID, _, err := h.getUserFromContext(c)
	if err != nil || userID == 0 {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	requests, err := h.Reservations.MyRequests(c.Request.Context(), userID)
	if err != nil {
		logrus.Error("Error getting requests: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения заявок")
		return
	}

	dtoRequests := make([]dto.ReservationResponse, len(requests))
	for i := range requests {
		dtoRequests[i] = h.buildReservationResponse(c, &requests[i], userID)
	}

	c.JSON(http.StatusOK, dto.ReservationListResponse{
		Requests: dtoRequests,
		Total:    len(dtoRequests),
	})
}

// GetListingRequests получает заявки по объявлению
// @Summary Заявки по объявлению
// @Description Возвращает заявки на объявление; доступно только владельцу
// @Tags Reservations
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID объявления"
// @Success 200 {object} dto.ReservationListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/listings/{id}/requests [get]
func (h *APIHandler) GetListingRequests(c *gin.Context) {
	userID, _, err := h.getUserFromContext(c)
	if err != nil || userID == 0 {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	listingID, ok := parseIDParam(c, "id")
	if !ok {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID объявления")
		return
	}

	requests, err := h.Reservations.ListingRequests(c.Request.Context(), userID, listingID)
	if err != nil {
		h.domainError(c, err)
		return
	}

	dtoRequests := make([]dto.ReservationResponse, len(requests))
	for i := range requests {
		dtoRequests[i] = h.buildReservationResponse(c, &requests[i], userID)
	}

	c.JSON(http.StatusOK, dto.ReservationListResponse{
		Requests: dtoRequests,
		Total:    len(dtoRequests),
	})
}
