package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============ Общие структуры ============

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type SuccessResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ============ Объявления (Listings) ============

type ListingResponse struct {
	ID             uint            `json:"id"`
	Location       string          `json:"location"`
	Description    string          `json:"description"`
	Cost           decimal.Decimal `json:"cost"`
	TotalSpace     decimal.Decimal `json:"total_space"`
	RemainingSpace decimal.Decimal `json:"remaining_space"`
	StartDate      string          `json:"start_date"` // YYYY-MM-DD
	EndDate        string          `json:"end_date"`
	ImageURL       string          `json:"image_url,omitempty"`
	Owner          string          `json:"owner"` // Логин владельца
	OwnerID        uint            `json:"owner_id"`
	Interested     bool            `json:"interested"` // Отметил ли текущий пользователь интерес
}

type ListingListResponse struct {
	Listings []ListingResponse `json:"listings"`
	Total    int               `json:"total"`
}

type CreateListingRequest struct {
	Location    string          `json:"location" binding:"required"`
	Description string          `json:"description"`
	Cost        decimal.Decimal `json:"cost" binding:"required"`
	TotalSpace  decimal.Decimal `json:"total_space" binding:"required"`
	StartDate   string          `json:"start_date" binding:"required"` // YYYY-MM-DD
	EndDate     string          `json:"end_date" binding:"required"`
}

type UpdateListingRequest struct {
	Location    *string          `json:"location"`
	Description *string          `json:"description"`
	Cost        *decimal.Decimal `json:"cost"`
	TotalSpace  *decimal.Decimal `json:"total_space"`
	StartDate   *string          `json:"start_date"`
	EndDate     *string          `json:"end_date"`
}

// ============ Заявки на бронирование (Reservation Requests) ============

type ReserveRequest struct {
	RequestedSpace decimal.Decimal `json:"requested_space" binding:"required"`
}

type DecideRequest struct {
	// Арендодатель: approved_full, approved_partial, rejected.
	// Арендатор: cancelled_by_renter.
	Status        string           `json:"status" binding:"required,oneof=approved_full approved_partial rejected cancelled_by_renter"`
	ApprovedSpace *decimal.Decimal `json:"approved_space"` // обязательно для approved_partial
}

type ReservationResponse struct {
	ID             uint             `json:"id"`
	ListingID      uint             `json:"listing_id"`
	Location       string           `json:"location,omitempty"` // Адрес объявления
	Renter         string           `json:"renter,omitempty"`   // Логин арендатора
	RequestedSpace decimal.Decimal  `json:"requested_space"`
	ApprovedSpace  *decimal.Decimal `json:"approved_space,omitempty"`
	Status         string           `json:"status"`
	StatusLabel    string           `json:"status_label"`
	StatusColor    string           `json:"status_color"`
	CreatedAt      time.Time        `json:"created_at"`
	DecidedAt      *time.Time       `json:"decided_at,omitempty"`
	StartDate      string           `json:"start_date,omitempty"` // Окно контракта на момент решения
	EndDate        string           `json:"end_date,omitempty"`
	CanReview      bool             `json:"can_review"` // Доступен ли отзыв по этой заявке
}

type ReservationListResponse struct {
	Requests []ReservationResponse `json:"requests"`
	Total    int                   `json:"total"`
}

// ============ Интерес (Interest Marks) ============

type InterestedRenterResponse struct {
	ID       uint   `json:"id"`
	Login    string `json:"login"`
	FullName string `json:"full_name"`
}

// ============ Отзывы (Lender Reviews) ============

type SubmitReviewRequest struct {
	RequestID  uint   `json:"request_id" binding:"required"`
	Rating     int    `json:"rating" binding:"required,gte=1,lte=5"`
	ReviewText string `json:"review_text"`
}

type LenderReviewsResponse struct {
	Reviews       []ReviewResponse `json:"reviews"`
	Total         int              `json:"total"`
	AverageRating decimal.Decimal  `json:"average_rating"` // 0 при отсутствии отзывов
}

type ReviewResponse struct {
	ID         uint      `json:"id"`
	RequestID  uint      `json:"request_id"`
	Renter     string    `json:"renter"` // Логин автора отзыва
	Rating     int       `json:"rating"`
	ReviewText string    `json:"review_text"`
	CreatedAt  time.Time `json:"created_at"`
}

// ============ Пользователи (Users) ============

type UserResponse struct {
	ID       uint   `json:"id"`
	Login    string `json:"login"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     int    `json:"role"`
}

type RegisterRequest struct {
	Login    string `json:"login" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6"`
	Email    string `json:"email" binding:"omitempty,email"`
	FullName string `json:"full_name" binding:"required"`
	Role     int    `json:"role"`
}

type UpdateUserRequest struct {
	Email    string `json:"email" binding:"omitempty,email"`
	FullName string `json:"full_name"`
	Password string `json:"password" binding:"omitempty,min=6"`
}

type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
