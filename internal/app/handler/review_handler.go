package handler

import (
	"net/http"

	"tigerstorage/internal/app/dto"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// SubmitReview создает отзыв об арендодателе
// @Summary Создание отзыва
// @Description Создает отзыв по одобренной заявке с завершившимся контрактом
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SubmitReviewRequest true "Данные отзыва"
// @Success 201 {object} dto.ReviewResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/lender-reviews [post]
func (h *APIHandler) SubmitReview(c *gin.Context) {
	userID, _, err := h.getUserFromContext(c)
	if err != nil || userID == 0 {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	var req dto.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	review, err := h.Reviews.Submit(c.Request.Context(), userID, req.RequestID, req.Rating, req.ReviewText)
	if err != nil {
		h.domainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ReviewResponse{
		ID:         review.ID,
		RequestID:  review.RequestID,
		Rating:     review.Rating,
		ReviewText: review.ReviewText,
		CreatedAt:  review.CreatedAt,
	})
}

// GetLenderReviews получает отзывы об арендодателе
// @Summary Отзывы об арендодателе
// @Description Возвращает отзывы об арендодателе со средней оценкой
// @Tags Reviews
// @Produce json
// @Param lender_id path int true "ID арендодателя"
// @Success 200 {object} dto.LenderReviewsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/lender-reviews/{lender_id} [get]
func (h *APIHandler) GetLenderReviews(c *gin.Context) {
	lenderID, ok := parseIDParam(c, "lender_id")
	if !ok {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID арендодателя")
		return
	}

	reviews, err := h.Reviews.ForLender(c.Request.Context(), lenderID)
	if err != nil {
		logrus.Error("Error getting reviews: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения отзывов")
		return
	}

	dtoReviews := make([]dto.ReviewResponse, len(reviews))
	ratingSum := decimal.Zero
	for i, r := range reviews {
		dtoReviews[i] = dto.ReviewResponse{
			ID:         r.ID,
			RequestID:  r.RequestID,
			Renter:     r.Renter.Login,
			Rating:     r.Rating,
			ReviewText: r.ReviewText,
			CreatedAt:  r.CreatedAt,
		}
		ratingSum = ratingSum.Add(decimal.NewFromInt(int64(r.Rating)))
	}

	average := decimal.Zero
	if len(reviews) > 0 {
		average = ratingSum.Div(decimal.NewFromInt(int64(len(reviews)))).Round(2)
	}

	c.JSON(http.StatusOK, dto.LenderReviewsResponse{
		Reviews:       dtoReviews,
		Total:         len(dtoReviews),
		AverageRating: average,
	})
}
