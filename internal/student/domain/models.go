package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Student struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	TutorID   snowflake.ID `json:"tutor_id" gorm:"not null;index"`
	FirstName string       `json:"first_name" gorm:"type:text;not null"`
	LastName  string       `json:"last_name" gorm:"type:text;not null"`
	Certified bool         `json:"certified" gorm:"not null;default:false"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Student) TableName() string { return "students" }

func (s Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}
