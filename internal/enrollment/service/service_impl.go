package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/aulapay/aulapay/internal/clock"
	enrollmentdomain "github.com/aulapay/aulapay/internal/enrollment/domain"
	obsmetrics "github.com/aulapay/aulapay/internal/observability/metrics"
	pricingdomain "github.com/aulapay/aulapay/internal/pricing/domain"
	"github.com/aulapay/aulapay/pkg/db"
	"github.com/aulapay/aulapay/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 10
	maxPageSize     = 250
)

var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       enrollmentdomain.Repository
	PricingSvc pricingdomain.Service
	Metrics    *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       enrollmentdomain.Repository
	pricingSvc pricingdomain.Service
	metrics    *obsmetrics.Metrics
}

func New(p Params) enrollmentdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("enrollment.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		pricingSvc: p.PricingSvc,
		metrics:    p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req enrollmentdomain.CreateRequest) (*enrollmentdomain.CreateResponse, error) {
	if req.Month < 1 || req.Month > 12 {
		return nil, enrollmentdomain.ErrInvalidMonth
	}
	if req.Year < enrollmentdomain.MinYear || req.Year > enrollmentdomain.MaxYear {
		return nil, enrollmentdomain.ErrInvalidYear
	}

	quote, err := s.pricingSvc.Quote(ctx, pricingdomain.QuoteRequest{
		TutorID:   req.TutorID,
		Students:  req.Students,
		Certified: req.Certified,
	})
	if err != nil {
		return nil, err
	}

	tutorID, err := snowflake.ParseString(strings.TrimSpace(req.TutorID))
	if err != nil {
		return nil, enrollmentdomain.ErrInvalidTutor
	}

	period := enrollmentdomain.PeriodOf(req.Year, req.Month)

	for _, line := range quote.Lines {
		exists, err := s.repo.Exists(ctx, s.db, line.StudentID, line.ProductID, period)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, duplicateErr(line.StudentName, line.ProductName, period)
		}
	}

	now := s.clock.Now()
	enrollments := make([]enrollmentdomain.Enrollment, 0, len(quote.Lines))
	for _, line := range quote.Lines {
		enrollments = append(enrollments, enrollmentdomain.Enrollment{
			ID:             s.genID.Generate(),
			StudentID:      line.StudentID,
			ProductID:      line.ProductID,
			TutorID:        tutorID,
			Year:           req.Year,
			Month:          req.Month,
			Period:         period,
			StudentName:    line.StudentName,
			ProductName:    line.ProductName,
			BasePrice:      line.BasePrice,
			FinalPrice:     line.FinalPrice,
			DiscountAmount: line.DiscountAmount,
			DiscountKind:   line.DiscountKind,
			DiscountDetail: line.DiscountDetail,
			Status:         enrollmentdomain.Pending,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range enrollments {
			if err := s.repo.Insert(ctx, tx, &enrollments[i]); err != nil {
				// A concurrent create can slip past the pre-check; the unique
				// index on (student_id, product_id, period) is the backstop.
				if db.IsDuplicateKeyErr(err) {
					return duplicateErr(enrollments[i].StudentName, enrollments[i].ProductName, period)
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordEnrollmentsCreated(ctx, period, int64(len(enrollments)))
	s.log.Info("enrollments created",
		zap.String("tutor_id", tutorID.String()),
		zap.String("period", period),
		zap.Int("count", len(enrollments)),
	)

	return &enrollmentdomain.CreateResponse{
		Enrollments: enrollments,
		Summary: enrollmentdomain.CreateSummary{
			Period: period,
			Count:  len(enrollments),
			Total:  quote.Summary.Total,
			Status: enrollmentdomain.Pending,
		},
	}, nil
}

func (s *Service) UpdatePaymentStatus(ctx context.Context, req enrollmentdomain.UpdatePaymentRequest) (*enrollmentdomain.Enrollment, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, enrollmentdomain.ErrNotFound
	}

	status, err := enrollmentdomain.ParsePaymentStatus(req.Status)
	if err != nil {
		return nil, err
	}

	enrollment, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if enrollment == nil {
		return nil, enrollmentdomain.ErrNotFound
	}

	now := s.clock.Now()
	enrollment.Status = status
	if status == enrollmentdomain.Paid {
		paidAt := now
		if req.PaidAt != nil {
			paidAt = req.PaidAt.UTC()
		}
		enrollment.PaidAt = &paidAt
	} else {
		enrollment.PaidAt = nil
	}
	enrollment.PaymentMethod = trimOptional(req.PaymentMethod)
	enrollment.ReceiptURL = trimOptional(req.ReceiptURL)
	enrollment.Notes = trimOptional(req.Notes)
	enrollment.UpdatedAt = now

	if err := s.repo.Update(ctx, s.db, enrollment); err != nil {
		return nil, err
	}

	s.metrics.RecordPaymentStatusUpdate(ctx, string(status))
	s.log.Info("payment status updated",
		zap.String("enrollment_id", enrollment.ID.String()),
		zap.String("status", string(status)),
	)

	return enrollment, nil
}

func (s *Service) ListForTutor(ctx context.Context, req enrollmentdomain.ListRequest) (*enrollmentdomain.ListResponse, error) {
	tutorID, err := snowflake.ParseString(strings.TrimSpace(req.TutorID))
	if err != nil || tutorID == 0 {
		return nil, enrollmentdomain.ErrInvalidTutor
	}

	query := enrollmentdomain.TutorQuery{
		TutorID: tutorID,
		Limit:   normalizeLimit(req.Pagination.PageSize),
	}

	if req.Period != nil {
		period := strings.TrimSpace(*req.Period)
		if !periodPattern.MatchString(period) {
			return nil, enrollmentdomain.ErrInvalidPeriod
		}
		query.Period = &period
	}
	if req.Status != nil && strings.TrimSpace(*req.Status) != "" {
		status, err := enrollmentdomain.ParsePaymentStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		query.Status = &status
	}
	if token := strings.TrimSpace(req.Pagination.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return nil, enrollmentdomain.ErrInvalidPageToken
		}
		query.Cursor = cursor
	}

	enrollments, err := s.repo.ListByTutor(ctx, s.db, query)
	if err != nil {
		return nil, err
	}

	pageInfo, enrollments := pagination.BuildCursorPageInfo(enrollments, query.Limit, func(e *enrollmentdomain.Enrollment) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        e.ID.String(),
			CreatedAt: e.CreatedAt.Format(time.RFC3339Nano),
		})
		return token
	})

	return &enrollmentdomain.ListResponse{
		Enrollments: enrollments,
		PageInfo:    pageInfo,
	}, nil
}

func (s *Service) TutorTotals(ctx context.Context, rawTutorID string, year, month int) (*enrollmentdomain.TutorTotals, error) {
	tutorID, err := snowflake.ParseString(strings.TrimSpace(rawTutorID))
	if err != nil || tutorID == 0 {
		return nil, enrollmentdomain.ErrInvalidTutor
	}
	if month < 1 || month > 12 {
		return nil, enrollmentdomain.ErrInvalidMonth
	}
	if year < enrollmentdomain.MinYear || year > enrollmentdomain.MaxYear {
		return nil, enrollmentdomain.ErrInvalidYear
	}

	return s.repo.TutorTotals(ctx, s.db, tutorID, enrollmentdomain.PeriodOf(year, month))
}

func (s *Service) StudentsWithDiscounts(ctx context.Context, year, month int, rawTutorID string) ([]enrollmentdomain.StudentDiscountSummary, error) {
	if month < 1 || month > 12 {
		return nil, enrollmentdomain.ErrInvalidMonth
	}
	if year < enrollmentdomain.MinYear || year > enrollmentdomain.MaxYear {
		return nil, enrollmentdomain.ErrInvalidYear
	}

	var tutorID *snowflake.ID
	if trimmed := strings.TrimSpace(rawTutorID); trimmed != "" {
		id, err := snowflake.ParseString(trimmed)
		if err != nil || id == 0 {
			return nil, enrollmentdomain.ErrInvalidTutor
		}
		tutorID = &id
	}

	return s.repo.StudentsWithDiscounts(ctx, s.db, enrollmentdomain.PeriodOf(year, month), tutorID)
}

func duplicateErr(studentName, productName, period string) error {
	return fmt.Errorf("%w: %s is already enrolled in %s for %s",
		enrollmentdomain.ErrDuplicateEnrollment, studentName, productName, period)
}

func normalizeLimit(pageSize int) int {
	if pageSize <= 0 {
		return defaultPageSize
	}
	if pageSize > maxPageSize {
		return maxPageSize
	}
	return pageSize
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
