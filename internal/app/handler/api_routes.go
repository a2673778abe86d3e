package handler

import (
	"tigerstorage/internal/app/middleware"
	"tigerstorage/internal/app/role"

	"github.com/gin-gonic/gin"
)

// RegisterAPIRoutes регистрирует все REST API маршруты с авторизацией
func (h *APIHandler) RegisterAPIRoutes(router *gin.Engine, authMiddleware *middleware.AuthMiddleware) {
	// REST API маршруты
	api := router.Group("/api")

	// ============ Объявления (Listings) ============
	listings := api.Group("/listings")
	{
		// Публичные эндпоинты; авторизованный пользователь увидит свои отметки интереса
		listings.GET("", authMiddleware.OptionalAuth(), h.GetListings)
		listings.GET("/:id", authMiddleware.OptionalAuth(), h.GetListing)

		// Управление объявлениями (арендодатели)
		listings.POST("", authMiddleware.WithAuthCheck(role.Lender, role.Admin), h.CreateListing)
		listings.PUT("/:id", authMiddleware.WithAuthCheck(role.Lender, role.Admin), h.UpdateListing)
		listings.DELETE("/:id", authMiddleware.WithAuthCheck(role.Lender, role.Admin), h.DeleteListing)
		listings.POST("/:id/image", authMiddleware.WithAuthCheck(role.Lender, role.Admin), h.UploadListingImage)
		listings.GET("/:id/requests", authMiddleware.WithAuthCheck(role.Lender, role.Admin), h.GetListingRequests)
		listings.GET("/:id/interested-renters", authMiddleware.WithAuthCheck(role.Lender, role.Admin), h.GetInterestedRenters)

		// Действия арендаторов
		listings.POST("/:id/reserve", authMiddleware.WithAuthCheck(role.Renter, role.Admin), h.ReserveListing)
		listings.POST("/:id/interest", authMiddleware.WithAuthCheck(role.Renter, role.Admin), h.MarkInterest)
		listings.DELETE("/:id/interest", authMiddleware.WithAuthCheck(role.Renter, role.Admin), h.UnmarkInterest)
	}

	// ============ Заявки на бронирование (Reservation Requests) ============
	// Смену статуса разбирает обработчик: арендодатель решает, арендатор отменяет
	api.PUT("/reservation-requests/:id/status",
		authMiddleware.WithAuthCheck(role.Renter, role.Lender, role.Admin), h.UpdateRequestStatus)
	api.GET("/my-reservation-requests",
		authMiddleware.WithAuthCheck(role.Renter, role.Lender, role.Admin), h.GetMyRequests)
	api.GET("/my-interested-listings",
		authMiddleware.WithAuthCheck(role.Renter, role.Admin), h.GetMyInterestedListings)

	// ============ Отзывы (Lender Reviews) ============
	api.GET("/lender-reviews/:lender_id", h.GetLenderReviews)
	api.POST("/lender-reviews", authMiddleware.WithAuthCheck(role.Renter, role.Admin), h.SubmitReview)

	// ============ Аутентификация ============
	auth := api.Group("/auth")
	{
		// Публичные эндпоинты
		auth.POST("/register", h.AuthHandler.RegisterUser) // POST регистрация
		auth.POST("/login", h.AuthHandler.LoginUser)       // POST аутентификация JWT

		// Защищенные эндпоинты
		auth.GET("/profile", authMiddleware.WithAuthCheck(role.Renter, role.Lender, role.Admin), h.AuthHandler.GetUserProfile)
		auth.PUT("/profile", authMiddleware.WithAuthCheck(role.Renter, role.Lender, role.Admin), h.UpdateProfile)
		auth.POST("/logout", authMiddleware.WithAuthCheck(role.Renter, role.Lender, role.Admin), h.AuthHandler.LogoutUser)
	}

	// Ping эндпоинт для проверки
	router.GET("/ping", h.Ping)
}

// Ping проверяет работоспособность API
// @Summary Проверка работоспособности
// @Description Возвращает простой ответ для проверки работы сервера
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /ping [get]
func (h *APIHandler) Ping(ctx *gin.Context) {
	ctx.JSON(200, gin.H{"message": "pong"})
}
