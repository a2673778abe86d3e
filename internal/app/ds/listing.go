package ds

import (
	"time"

	"github.com/shopspring/decimal"
)

// 1. Таблица объявлений о сдаче места (lender выставляет объём)
type Listing struct {
	ID          uint            `gorm:"primaryKey"`
	OwnerID     uint            `gorm:"not null;index"` // арендодатель (lender)
	Location    string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	Cost        decimal.Decimal `gorm:"type:decimal(12,2);not null"` // стоимость в месяц
	TotalSpace  decimal.Decimal `gorm:"type:decimal(12,2);not null"` // заявленный объём, кв. футы
	StartDate   time.Time       `gorm:"type:date;not null"`          // контрактное окно
	EndDate     time.Time       `gorm:"type:date;not null"`
	ImageURL    *string         `gorm:"type:varchar(255)"` // Nullable
	IsDeleted   bool            `gorm:"type:boolean;default:false;not null"`
	CreatedAt   time.Time       `gorm:"not null"`

	Owner User `gorm:"foreignKey:OwnerID"`
}
