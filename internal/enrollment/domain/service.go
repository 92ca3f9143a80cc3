package domain

import (
	"context"
	"errors"
	"time"

	pricingdomain "github.com/aulapay/aulapay/internal/pricing/domain"
	"github.com/aulapay/aulapay/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

const (
	MinYear = 2024
	MaxYear = 2100
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*CreateResponse, error)
	UpdatePaymentStatus(ctx context.Context, req UpdatePaymentRequest) (*Enrollment, error)
	ListForTutor(ctx context.Context, req ListRequest) (*ListResponse, error)
	TutorTotals(ctx context.Context, tutorID string, year, month int) (*TutorTotals, error)
	StudentsWithDiscounts(ctx context.Context, year, month int, tutorID string) ([]StudentDiscountSummary, error)
}

type CreateRequest struct {
	TutorID   string                           `json:"tutor_id"`
	Year      int                              `json:"year"`
	Month     int                              `json:"month"`
	Students  []pricingdomain.StudentSelection `json:"students"`
	Certified *bool                            `json:"certified,omitempty"`
}

type CreateSummary struct {
	Period string          `json:"period"`
	Count  int             `json:"count"`
	Total  decimal.Decimal `json:"total"`
	Status PaymentStatus   `json:"status"`
}

type CreateResponse struct {
	Enrollments []Enrollment  `json:"enrollments"`
	Summary     CreateSummary `json:"summary"`
}

type UpdatePaymentRequest struct {
	ID            string     `json:"id"`
	Status        string     `json:"status"`
	PaidAt        *time.Time `json:"paid_at"`
	PaymentMethod *string    `json:"payment_method"`
	ReceiptURL    *string    `json:"receipt_url"`
	Notes         *string    `json:"notes"`
}

type ListRequest struct {
	TutorID    string
	Period     *string
	Status     *string
	Pagination pagination.Pagination
}

type ListResponse struct {
	Enrollments []*Enrollment        `json:"enrollments"`
	PageInfo    *pagination.PageInfo `json:"page_info"`
}

var (
	ErrInvalidTutor        = errors.New("invalid_tutor")
	ErrInvalidYear         = errors.New("invalid_year")
	ErrInvalidMonth        = errors.New("invalid_month")
	ErrInvalidPeriod       = errors.New("invalid_period")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrInvalidPageToken    = errors.New("invalid_page_token")
	ErrDuplicateEnrollment = errors.New("duplicate_enrollment")
	ErrNotFound            = errors.New("enrollment_not_found")
)
