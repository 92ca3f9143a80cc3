package domain

import (
	"context"

	enrollmentdomain "github.com/aulapay/aulapay/internal/enrollment/domain"
	"github.com/shopspring/decimal"
)

type Service interface {
	Metrics(ctx context.Context, req MetricsRequest) (*MetricsResponse, error)
}

// MetricsRequest selects the period to aggregate. Zero year/month default to
// the current period; an empty tutor id aggregates across all tutors.
type MetricsRequest struct {
	Year    int
	Month   int
	TutorID string
}

// TrendEntry is one point of the trailing period series.
type TrendEntry struct {
	Period      string          `json:"period"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
}

// StatusSlice is one segment of the payment status distribution.
type StatusSlice struct {
	Status  enrollmentdomain.PaymentStatus `json:"status"`
	Count   int64                          `json:"count"`
	Amount  decimal.Decimal                `json:"amount"`
	Percent decimal.Decimal                `json:"percent"`
}

type MetricsResponse struct {
	Period         string                         `json:"period"`
	Current        enrollmentdomain.PeriodMetrics `json:"current"`
	Previous       enrollmentdomain.PeriodMetrics `json:"previous"`
	CollectionRate decimal.Decimal                `json:"collection_rate"`
	RevenueDelta   decimal.Decimal                `json:"revenue_delta"`
	PendingDelta   decimal.Decimal                `json:"pending_delta"`
	TotalDelta     decimal.Decimal                `json:"total_delta"`
	Trend          []TrendEntry                   `json:"trend"`
	Distribution   []StatusSlice                  `json:"distribution"`
}
