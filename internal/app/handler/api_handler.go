package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"tigerstorage/internal/app/domain"
	"tigerstorage/internal/app/ds"
	"tigerstorage/internal/app/dto"
	"tigerstorage/internal/app/repository"
	"tigerstorage/internal/app/role"
	"tigerstorage/internal/app/service"
	"tigerstorage/internal/app/storage"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// APIHandler содержит обработчики для REST API
type APIHandler struct {
	Repository   *repository.Repository
	Listings     *service.ListingService
	Reservations *service.ReservationService
	Interests    *service.InterestService
	Reviews      *service.ReviewService
	MinIOClient  *storage.MinIOClient
	AuthHandler  *AuthHandler
}

func NewAPIHandler(r *repository.Repository, minioClient *storage.MinIOClient, authHandler *AuthHandler) *APIHandler {
	return &APIHandler{
		Repository:   r,
		Listings:     service.NewListingService(r),
		Reservations: service.NewReservationService(r),
		Interests:    service.NewInterestService(r),
		Reviews:      service.NewReviewService(r),
		MinIOClient:  minioClient,
		AuthHandler:  authHandler,
	}
}

// Получение текущего пользователя из контекста
func (h *APIHandler) getUserFromContext(c *gin.Context) (uint, role.Role, error) {
	userID, exists := c.Get("userID")
	if !exists {
		return 0, role.Renter, fmt.Errorf("user not authenticated")
	}

	userRole, _ := c.Get("userRole")
	r, _ := userRole.(role.Role)

	id, ok := userID.(uint)
	if !ok {
		logrus.Errorf("getUserFromContext: invalid userID type: %T", userID)
		return 0, r, fmt.Errorf("invalid user ID")
	}

	return id, r, nil
}

// ============ Вспомогательные функции ============

func (h *APIHandler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.ErrorResponse{
		Status:  "fail",
		Message: message,
	})
}

func (h *APIHandler) successResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	response := dto.SuccessResponse{
		Status:  "success",
		Message: message,
	}
	if data != nil {
		response.Data = data
	}
	c.JSON(statusCode, response)
}

// domainError переводит бизнес-ошибки в HTTP-статусы.
// Превышение объёма отдаёт 409 вместе с актуальным остатком.
func (h *APIHandler) domainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrCapacityExceeded):
		// Остаток берётся из самой ошибки: параметр маршрута на пути
		// решения по заявке содержит ID заявки, а не объявления
		remaining := decimal.Zero
		var capErr *domain.CapacityError
		if errors.As(err, &capErr) {
			remaining = capErr.Remaining
		}
		c.JSON(http.StatusConflict, gin.H{
			"status":          "fail",
			"message":         err.Error(),
			"remaining_space": remaining.String(),
		})
	case errors.Is(err, domain.ErrInvalidAmount):
		h.errorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrDuplicateRequest),
		errors.Is(err, domain.ErrDuplicateReview),
		errors.Is(err, domain.ErrInvalidTransition):
		h.errorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrNotEligible), errors.Is(err, domain.ErrForbidden):
		h.errorResponse(c, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrListingNotFound), errors.Is(err, domain.ErrRequestNotFound):
		h.errorResponse(c, http.StatusNotFound, err.Error())
	default:
		logrus.Error("internal error: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Внутренняя ошибка сервера")
	}
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	idStr := c.Param(name)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

const dateLayout = "2006-01-02"

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// buildListingResponse собирает DTO объявления вместе с остатком объёма
func (h *APIHandler) buildListingResponse(c *gin.Context, l *ds.Listing, userID uint) dto.ListingResponse {
	ctx := c.Request.Context()

	remaining, err := h.Reservations.RemainingSpace(ctx, l.ID)
	if err != nil {
		logrus.Warnf("remaining space for listing %d: %v", l.ID, err)
		remaining = l.TotalSpace
	}

	// Bucket закрытый, поэтому наружу отдается presigned-ссылка
	imageURL := ""
	if l.ImageURL != nil {
		imageURL = *l.ImageURL
		if h.MinIOClient != nil && imageURL != "" {
			if url, uerr := h.MinIOClient.PhotoURL(ctx, imageURL); uerr == nil {
				imageURL = url
			} else {
				logrus.Warnf("photo url for listing %d: %v", l.ID, uerr)
			}
		}
	}

	interested := false
	if userID != 0 {
		interested, _ = h.Repository.HasInterest(ctx, userID, l.ID)
	}

	return dto.ListingResponse{
		ID:             l.ID,
		Location:       l.Location,
		Description:    l.Description,
		Cost:           l.Cost,
		TotalSpace:     l.TotalSpace,
		RemainingSpace: remaining,
		StartDate:      formatDate(l.StartDate),
		EndDate:        formatDate(l.EndDate),
		ImageURL:       imageURL,
		Owner:          l.Owner.Login,
		OwnerID:        l.OwnerID,
		Interested:     interested,
	}
}

func listingParamsFromCreate(req dto.CreateListingRequest) (service.ListingParams, error) {
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return service.ListingParams{}, fmt.Errorf("неверный формат start_date")
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return service.ListingParams{}, fmt.Errorf("неверный формат end_date")
	}
	return service.ListingParams{
		Location:    req.Location,
		Description: req.Description,
		Cost:        req.Cost,
		TotalSpace:  req.TotalSpace,
		StartDate:   start,
		EndDate:     end,
	}, nil
}

// ============ ДОМЕН ОБЪЯВЛЕНИЯ ============

// GetListings получает список объявлений
// @Summary Получение списка объявлений
// @Description Возвращает список активных объявлений с поиском по адресу
// @Tags Listings
// @Produce json
// @Param query query string false "Поиск по адресу"
// @Param min_space query string false "Минимальный свободный объём"
// @Success 200 {object} dto.ListingListResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/listings [get]
func (h *APIHandler) GetListings(c *gin.Context) {
	filter := service.ListingFilter{Query: c.Query("query")}

	// Фильтр доступности: показывать только объявления с остатком не меньше
	var minSpace *decimal.Decimal
	if raw := c.Query("min_space"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil || parsed.Sign() < 0 {
			h.errorResponse(c, http.StatusBadRequest, "Неверное значение min_space")
			return
		}
		minSpace = &parsed
	}

	listings, err := h.Listings.List(c.Request.Context(), filter)
	if err != nil {
		logrus.Error("Error getting listings: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка получения объявлений")
		return
	}

	// Для анонимного пользователя флаг интереса всегда false
	userID, _, _ := h.getUserFromContext(c)

	dtoListings := make([]dto.ListingResponse, 0, len(listings))
	for i := range listings {
		resp := h.buildListingResponse(c, &listings[i], userID)
		if minSpace != nil && resp.RemainingSpace.LessThan(*minSpace) {
			continue
		}
		dtoListings = append(dtoListings, resp)
	}

	c.JSON(http.StatusOK, dto.ListingListResponse{
		Listings: dtoListings,
		Total:    len(dtoListings),
	})
}

// GetListing получает одно объявление
// @Summary Получение объявления по ID
// @Description Возвращает детальную информацию об объявлении с остатком объёма
// @Tags Listings
// @Produce json
// @Param id path int true "ID объявления"
// @Success 200 {object} dto.ListingResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/listings/{id} [get]
func (h *APIHandler) GetListing(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID объявления")
		return
	}

	listing, err := h.Listings.Get(c.Request.Context(), id)
	if err != nil {
		h.domainError(c, err)
		return
	}

	userID, _, _ := h.getUserFromContext(c)
	c.JSON(http.StatusOK, h.buildListingResponse(c, listing, userID))
}

// CreateListing создает новое объявление
// @Summary Создание объявления
// @Description Создает объявление о сдаче места для хранения (только для арендодателей)
// @Tags Listings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateListingRequest true "Данные объявления"
// @Success 201 {object} dto.ListingResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/listings [post]
func (h *APIHandler) CreateListing(c *gin.Context) {
	userID, _, err := h.getUserFromContext(c)
	if err != nil || userID == 0 {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	var req dto.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	params, err := listingParamsFromCreate(req)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	listing, err := h.Listings.Create(c.Request.Context(), userID, params)
	if err != nil {
		h.domainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.buildListingResponse(c, listing, userID))
}

// UpdateListing обновляет объявление
// @Summary Обновление объявления
// @Description Обновляет данные объявления; общий объём нельзя опустить ниже уже одобренного
// @Tags Listings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID объявления"
// @Param request body dto.UpdateListingRequest true "Данные для обновления"
// @Success 200 {object} dto.ListingResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/listings/{id} [put]
func (h *APIHandler) UpdateListing(c *gin.Context) {
	userID, _, err := h.getUserFromContext(c)
	if err != nil || userID == 0 {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID объявления")
		return
	}

	var req dto.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	// Частичное обновление: не присланные поля берутся из текущей версии
	current, err := h.Listings.Get(c.Request.Context(), id)
	if err != nil {
		h.domainError(c, err)
		return
	}

	params := service.ListingParams{
		Location:    current.Location,
		Description: current.Description,
		Cost:        current.Cost,
		TotalSpace:  current.TotalSpace,
		StartDate:   current.StartDate,
		EndDate:     current.EndDate,
	}
	if req.Location != nil {
		params.Location = *req.Location
	}
	if req.Description != nil {
		params.Description = *req.Description
	}
	if req.Cost != nil {
		params.Cost = *req.Cost
	}
	if req.TotalSpace != nil {
		params.TotalSpace = *req.TotalSpace
	}
	if req.StartDate != nil {
		parsed, perr := time.Parse(dateLayout, *req.StartDate)
		if perr != nil {
			h.errorResponse(c, http.StatusBadRequest, "неверный формат start_date")
			return
		}
		params.StartDate = parsed
	}
	if req.EndDate != nil {
		parsed, perr := time.Parse(dateLayout, *req.EndDate)
		if perr != nil {
			h.errorResponse(c, http.StatusBadRequest, "неверный формат end_date")
			return
		}
		params.EndDate = parsed
	}

	listing, err := h.Listings.Update(c.Request.Context(), userID, id, params)
	if err != nil {
		h.domainError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.buildListingResponse(c, listing, userID))
}

// DeleteListing удаляет объявление
// @Summary Удаление объявления
// @Description Логически удаляет объявление владельца; история заявок сохраняется
// @Tags Listings
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID объявления"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/listings/{id} [delete]
func (h *APIHandler) DeleteListing(c *gin.Context) {
	userID, _, err := h.getUserFromContext(c)
	if err != nil || userID == 0 {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID объявления")
		return
	}

	if err := h.Listings.Delete(c.Request.Context(), userID, id); err != nil {
		h.domainError(c, err)
		return
	}

	h.successResponse(c, http.StatusOK, "Объявление успешно удалено", nil)
}

// UploadListingImage загружает изображение для объявления
// @Summary Загрузка изображения объявления
// @Description Загружает изображение для объявления в MinIO (только владелец)
// @Tags Listings
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID объявления"
// @Param image formData file true "Файл изображения"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/listings/{id}/image [post]
func (h *APIHandler) UploadListingImage(c *gin.Context) {
	userID, _, err := h.getUserFromContext(c)
	if err != nil || userID == 0 {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		h.errorResponse(c, http.StatusBadRequest, "Неверный ID объявления")
		return
	}

	listing, err := h.Listings.Get(c.Request.Context(), id)
	if err != nil {
		h.domainError(c, err)
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Файл не найден в запросе")
		return
	}

	openedFile, err := file.Open()
	if err != nil {
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка чтения файла")
		return
	}
	defer openedFile.Close()

	fileData, err := io.ReadAll(openedFile)
	if err != nil {
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка чтения файла")
		return
	}

	// Старое изображение убирается из MinIO
	if listing.ImageURL != nil && *listing.ImageURL != "" {
		if h.MinIOClient != nil {
			if err := h.MinIOClient.DeleteListingPhoto(c.Request.Context(), *listing.ImageURL); err != nil {
				logrus.Warnf("Failed to delete old image %s: %v", *listing.ImageURL, err)
			}
		}
	}

	var imageURL string
	if h.MinIOClient != nil {
		imageURL, err = h.MinIOClient.UploadListingPhoto(c.Request.Context(), fileData, file.Filename)
		if errors.Is(err, storage.ErrUnsupportedImage) {
			h.errorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		if err != nil {
			logrus.Error("Error uploading to MinIO: ", err)
			h.errorResponse(c, http.StatusInternalServerError, "Ошибка загрузки изображения")
			return
		}
	} else {
		// Fallback если MinIO не настроен
		imageURL = "uploaded_" + file.Filename
	}

	if err := h.Listings.SetImageURL(c.Request.Context(), userID, id, imageURL); err != nil {
		h.domainError(c, err)
		return
	}

	h.successResponse(c, http.StatusOK, "Изображение успешно загружено", gin.H{
		"image_url": imageURL,
	})
}

// UpdateProfile обновляет профиль пользователя
// @Summary Обновление профиля
// @Description Обновляет данные профиля пользователя
// @Tags Authentication
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateUserRequest true "Данные для обновления"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/auth/profile [put]
func (h *APIHandler) UpdateProfile(c *gin.Context) {
	userID, _, err := h.getUserFromContext(c)
	if err != nil || userID == 0 {
		h.errorResponse(c, http.StatusUnauthorized, "Ошибка авторизации")
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "Неверные данные: "+err.Error())
		return
	}

	user, err := h.Repository.User(c.Request.Context(), userID)
	if err != nil {
		h.errorResponse(c, http.StatusNotFound, "Пользователь не найден")
		return
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Password != "" {
		user.Password = generateHashString(req.Password)
	}

	if err := h.Repository.UpdateUser(user); err != nil {
		logrus.Error("Error updating user: ", err)
		h.errorResponse(c, http.StatusInternalServerError, "Ошибка обновления профиля")
		return
	}

	h.successResponse(c, http.StatusOK, "Профиль успешно обновлен", nil)
}
