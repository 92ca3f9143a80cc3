package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type ProductKind string

var (
	Club              ProductKind = "CLUB"
	SpecializedCourse ProductKind = "SPECIALIZED_COURSE"
)

type Product struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	Kind      ProductKind  `json:"kind" gorm:"type:text;not null"`
	Active    bool         `json:"active" gorm:"not null;default:true"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Product) TableName() string { return "products" }
