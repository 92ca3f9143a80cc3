package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, student *Student) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Student, error)
	ListByTutor(ctx context.Context, db *gorm.DB, tutorID snowflake.ID) ([]Student, error)
}
