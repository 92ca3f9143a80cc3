package repository

import (
	"context"
	"errors"
	"time"

	enrollmentdomain "github.com/aulapay/aulapay/internal/enrollment/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() enrollmentdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, enrollment *enrollmentdomain.Enrollment) error {
	return db.WithContext(ctx).Create(enrollment).Error
}

func (r *repo) Exists(ctx context.Context, db *gorm.DB, studentID, productID snowflake.ID, period string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&enrollmentdomain.Enrollment{}).
		Where("student_id = ? AND product_id = ? AND period = ?", studentID, productID, period).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*enrollmentdomain.Enrollment, error) {
	var enrollment enrollmentdomain.Enrollment
	err := db.WithContext(ctx).Where("id = ?", id).First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &enrollment, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, enrollment *enrollmentdomain.Enrollment) error {
	return db.WithContext(ctx).Save(enrollment).Error
}

func (r *repo) ListByTutor(ctx context.Context, db *gorm.DB, q enrollmentdomain.TutorQuery) ([]*enrollmentdomain.Enrollment, error) {
	query := db.WithContext(ctx).
		Model(&enrollmentdomain.Enrollment{}).
		Where("tutor_id = ?", q.TutorID)

	if q.Period != nil {
		query = query.Where("period = ?", *q.Period)
	}
	if q.Status != nil {
		query = query.Where("status = ?", *q.Status)
	}
	if q.Cursor != nil {
		createdAt, err := time.Parse(time.RFC3339Nano, q.Cursor.CreatedAt)
		if err != nil {
			return nil, err
		}
		id, err := snowflake.ParseString(q.Cursor.ID)
		if err != nil {
			return nil, err
		}
		query = query.Where("created_at < ? OR (created_at = ? AND id < ?)", createdAt, createdAt, id)
	}

	var enrollments []*enrollmentdomain.Enrollment
	err := query.
		Order("created_at DESC, id DESC").
		Limit(q.Limit + 1).
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *repo) TutorTotals(ctx context.Context, db *gorm.DB, tutorID snowflake.ID, period string) (*enrollmentdomain.TutorTotals, error) {
	var row struct {
		PendingAmount decimal.Decimal
		PaidAmount    decimal.Decimal
		TotalAmount   decimal.Decimal
	}
	err := db.WithContext(ctx).Raw(
		`SELECT
			COALESCE(SUM(CASE WHEN status IN ('PENDING', 'OVERDUE') THEN final_price ELSE 0 END), 0) AS pending_amount,
			COALESCE(SUM(CASE WHEN status = 'PAID' THEN final_price ELSE 0 END), 0) AS paid_amount,
			COALESCE(SUM(final_price), 0) AS total_amount
		 FROM enrollments WHERE tutor_id = ? AND period = ?`,
		tutorID,
		period,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}

	return &enrollmentdomain.TutorTotals{
		Period:        period,
		PendingAmount: row.PendingAmount,
		PaidAmount:    row.PaidAmount,
		TotalAmount:   row.TotalAmount,
	}, nil
}

func (r *repo) MetricsForPeriod(ctx context.Context, db *gorm.DB, period string, tutorID *snowflake.ID) (*enrollmentdomain.PeriodMetrics, error) {
	var row struct {
		PaidAmount    decimal.Decimal
		PendingAmount decimal.Decimal
		OverdueAmount decimal.Decimal
		TotalAmount   decimal.Decimal
		PaidCount     int64
		PendingCount  int64
		OverdueCount  int64
		TotalCount    int64
	}

	query := `SELECT
		COALESCE(SUM(CASE WHEN status = 'PAID' THEN final_price ELSE 0 END), 0) AS paid_amount,
		COALESCE(SUM(CASE WHEN status = 'PENDING' THEN final_price ELSE 0 END), 0) AS pending_amount,
		COALESCE(SUM(CASE WHEN status = 'OVERDUE' THEN final_price ELSE 0 END), 0) AS overdue_amount,
		COALESCE(SUM(final_price), 0) AS total_amount,
		COUNT(CASE WHEN status = 'PAID' THEN 1 END) AS paid_count,
		COUNT(CASE WHEN status = 'PENDING' THEN 1 END) AS pending_count,
		COUNT(CASE WHEN status = 'OVERDUE' THEN 1 END) AS overdue_count,
		COUNT(*) AS total_count
	 FROM enrollments WHERE period = ?`
	args := []any{period}
	if tutorID != nil {
		query += " AND tutor_id = ?"
		args = append(args, *tutorID)
	}

	if err := db.WithContext(ctx).Raw(query, args...).Scan(&row).Error; err != nil {
		return nil, err
	}

	return &enrollmentdomain.PeriodMetrics{
		Period:        period,
		PaidAmount:    row.PaidAmount,
		PendingAmount: row.PendingAmount,
		OverdueAmount: row.OverdueAmount,
		TotalAmount:   row.TotalAmount,
		PaidCount:     row.PaidCount,
		PendingCount:  row.PendingCount,
		OverdueCount:  row.OverdueCount,
		TotalCount:    row.TotalCount,
	}, nil
}

func (r *repo) StudentsWithDiscounts(ctx context.Context, db *gorm.DB, period string, tutorID *snowflake.ID) ([]enrollmentdomain.StudentDiscountSummary, error) {
	query := `SELECT
		student_id,
		student_name,
		COUNT(*) AS enrollment_count,
		COALESCE(SUM(discount_amount), 0) AS discount_total
	 FROM enrollments WHERE period = ? AND discount_kind <> 'NONE'`
	args := []any{period}
	if tutorID != nil {
		query += " AND tutor_id = ?"
		args = append(args, *tutorID)
	}
	query += " GROUP BY student_id, student_name ORDER BY discount_total DESC"

	var summaries []enrollmentdomain.StudentDiscountSummary
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&summaries).Error; err != nil {
		return nil, err
	}
	return summaries, nil
}
