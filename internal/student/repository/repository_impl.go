package repository

import (
	"context"
	"errors"

	studentdomain "github.com/aulapay/aulapay/internal/student/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() studentdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, student *studentdomain.Student) error {
	return db.WithContext(ctx).Create(student).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*studentdomain.Student, error) {
	var student studentdomain.Student
	err := db.WithContext(ctx).Where("id = ?", id).First(&student).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &student, nil
}

func (r *repo) ListByTutor(ctx context.Context, db *gorm.DB, tutorID snowflake.ID) ([]studentdomain.Student, error) {
	var students []studentdomain.Student
	err := db.WithContext(ctx).
		Where("tutor_id = ?", tutorID).
		Order("last_name ASC, first_name ASC").
		Find(&students).Error
	if err != nil {
		return nil, err
	}
	return students, nil
}
