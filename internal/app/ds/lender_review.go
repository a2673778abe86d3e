package ds

import "time"

// 4. Таблица отзывов об арендодателях
// Отзыв привязан к конкретной одобренной заявке с истёкшим контрактом;
// не более одного отзыва на пару (арендатор, заявка).
type LenderReview struct {
	ID         uint      `gorm:"primaryKey"`
	RequestID  uint      `gorm:"not null;index;uniqueIndex:idx_renter_request"`
	RenterID   uint      `gorm:"not null;index;uniqueIndex:idx_renter_request"`
	LenderID   uint      `gorm:"not null;index"` // владелец объявления из заявки
	Rating     int       `gorm:"type:int;not null"`
	ReviewText string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"not null"`

	Request ReservationRequest `gorm:"foreignKey:RequestID"`
	Renter  User               `gorm:"foreignKey:RenterID"`
}
