package ds

import "time"

// 3. Таблица отметок интереса (необязывающая "закладка" арендатора)
// Существует независимо от заявки: может быть без заявки вовсе
// и переживает отклонение заявки.
type InterestMark struct {
	ID        uint      `gorm:"primaryKey"`
	RenterID  uint      `gorm:"not null;index;uniqueIndex:idx_renter_listing"`
	ListingID uint      `gorm:"not null;index;uniqueIndex:idx_renter_listing"`
	CreatedAt time.Time `gorm:"not null"`

	Renter  User    `gorm:"foreignKey:RenterID"`
	Listing Listing `gorm:"foreignKey:ListingID"`
}
