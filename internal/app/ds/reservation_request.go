package ds

import (
	"time"

	"github.com/shopspring/decimal"
)

// 2. Таблица заявок на бронирование объёма
// Заявка никогда не удаляется физически: терминальные статусы хранятся
// для истории и проверки права на отзыв.
type ReservationRequest struct {
	ID             uint              `gorm:"primaryKey"`
	ListingID      uint              `gorm:"not null;index"`
	RenterID       uint              `gorm:"not null;index"`
	RequestedSpace decimal.Decimal   `gorm:"type:decimal(12,2);not null"`
	ApprovedSpace  *decimal.Decimal  `gorm:"type:decimal(12,2);default:null"` // задан только в approved_*
	Status         ReservationStatus `gorm:"type:varchar(30);not null;index"`
	CreatedAt      time.Time         `gorm:"not null"`
	DecidedAt      *time.Time        `gorm:"default:null"` // дата решения арендодателя
	// Даты контракта копируются из объявления в момент решения
	StartDate *time.Time `gorm:"type:date;default:null"`
	EndDate   *time.Time `gorm:"type:date;default:null"`

	Listing Listing `gorm:"foreignKey:ListingID"`
	Renter  User    `gorm:"foreignKey:RenterID"`
}
