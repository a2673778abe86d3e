package handler

import (
	"net/http"

	"tigerstorage/internal/app/dto"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// MarkInterest отмечает интерес к объявлению
// @Summary Отметка интереса
// @Description Отмечает интерес арендатора к объявлению; повторная отметка не ошибка
// @Tags Interest
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID объявления"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/listings/{id}/interest [post]
func (h *APIHandler) MarkInterest(c *gin.Context) {
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

	if err := h.Interests.Mark(c.Request.Context(), userID, listingID); err != nil {
		h.domainError(c, err)
		return
	}

	h.successResponse(c, http.StatusOK, "Интерес отмечен", nil)
}

// UnmarkInterest снимает отметку интереса
// @Summary Снятие отметки интереса
// @Description Снимает интерес; ожидающая заявка на это объявление отменяется вместе с отметкой
// @Tags Interest
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID объявления"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/listings/{id}/interest [delete]
func (h *APIHandler) UnmarkInterest(c *gin.Context) {
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

	if err := h.Interests.Unmark(c.Request.Context(), userID, listingID); err != nil {
		h.domainError(c, err)
		return
	}

	h.successResponse(c, http.StatusOK, "Отметка интереса снята", nil)
}

// GetMyInterestedListings получает объявления с отметкой интереса
// @Summary Мои интересующие объявления
// @Description Возвращает живые объявления, отмеченные текущим пользователем
// @Tags Interest
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ListingListResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/my-interested-listings [get]
func (h *APIHandler) GetMyInterestedListings(c *gin.Context) {
	userID, _, err := h.getUserFromContext(c)
	if err != nil || userID == 0 {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	listings, err := h.Interests.MyListings(c.Request.Context(), userID)
	if err != nil {
		logrus.Error("Error getting interested listings: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения объявлений")
		return
	}

	dtoListings := make([]dto.ListingResponse, len(listings))
	for i := range listings {
		dtoListings[i] = h.buildListingResponse(c, &listings[i], userID)
	}

	c.JSON(http.StatusOK, dto.ListingListResponse{
		Listings: dtoListings,
		Total:    len(dtoListings),
	})
}

// GetInterestedRenters получает арендаторов, отметивших объявление
// @Summary Заинтересованные арендаторы
// @Description Возвращает арендаторов с отметкой интереса к объявлению; доступно только владельцу
// @Tags Interest
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID объявления"
// @Success 200 {array} dto.InterestedRenterResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/listings/{id}/interested-renters [get]
func (h *APIHandler) GetInterestedRenters(c *gin.Context) {
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

	renters, err := h.Interests.InterestedRenters(c.Request.Context(), userID, listingID)
	if err != nil {
		h.domainError(c, err)
		return
	}

	dtoRenters := make([]dto.InterestedRenterResponse, len(renters))
	for i, r := range renters {
		dtoRenters[i] = dto.InterestedRenterResponse{
			ID:       r.ID,
			Login:    r.Login,
			FullName: r.FullName,
		}
	}

	c.JSON(http.StatusOK, dtoRenters)
}
