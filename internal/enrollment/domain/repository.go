package domain

import (
	"context"

	"github.com/aulapay/aulapay/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// TutorQuery filters a tutor's enrollments. Limit rows are requested plus one
// extra so the caller can detect another page.
type TutorQuery struct {
	TutorID snowflake.ID
	Period  *string
	Status  *PaymentStatus
	Cursor  *pagination.Cursor
	Limit   int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, enrollment *Enrollment) error
	Exists(ctx context.Context, db *gorm.DB, studentID, productID snowflake.ID, period string) (bool, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Enrollment, error)
	Update(ctx context.Context, db *gorm.DB, enrollment *Enrollment) error
	ListByTutor(ctx context.Context, db *gorm.DB, q TutorQuery) ([]*Enrollment, error)
	TutorTotals(ctx context.Context, db *gorm.DB, tutorID snowflake.ID, period string) (*TutorTotals, error)
	MetricsForPeriod(ctx context.Context, db *gorm.DB, period string, tutorID *snowflake.ID) (*PeriodMetrics, error)
	StudentsWithDiscounts(ctx context.Context, db *gorm.DB, period string, tutorID *snowflake.ID) ([]StudentDiscountSummary, error)
}
