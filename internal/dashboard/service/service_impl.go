package service

import (
	"context"
	"strings"

	"github.com/aulapay/aulapay/internal/clock"
	dashboarddomain "github.com/aulapay/aulapay/internal/dashboard/domain"
	enrollmentdomain "github.com/aulapay/aulapay/internal/enrollment/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// trendLength is the number of trailing periods returned, current included.
const trendLength = 6

var hundred = decimal.NewFromInt(100)

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	Clock          clock.Clock
	EnrollmentRepo enrollmentdomain.Repository
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	clock          clock.Clock
	enrollmentRepo enrollmentdomain.Repository
}

func New(p Params) dashboarddomain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("dashboard.service"),
		clock:          p.Clock,
		enrollmentRepo: p.EnrollmentRepo,
	}
}

func (s *Service) Metrics(ctx context.Context, req dashboarddomain.MetricsRequest) (*dashboarddomain.MetricsResponse, error) {
	year, month := req.Year, req.Month
	if year == 0 && month == 0 {
		now := s.clock.Now()
		year, month = now.Year(), int(now.Month())
	}
	if month < 1 || month > 12 {
		return nil, enrollmentdomain.ErrInvalidMonth
	}
	if year < enrollmentdomain.MinYear || year > enrollmentdomain.MaxYear {
		return nil, enrollmentdomain.ErrInvalidYear
	}

	var tutorID *snowflake.ID
	if trimmed := strings.TrimSpace(req.TutorID); trimmed != "" {
		id, err := snowflake.ParseString(trimmed)
		if err != nil || id == 0 {
			return nil, enrollmentdomain.ErrInvalidTutor
		}
		tutorID = &id
	}

	period := enrollmentdomain.PeriodOf(year, month)
	current, err := s.enrollmentRepo.MetricsForPeriod(ctx, s.db, period, tutorID)
	if err != nil {
		return nil, err
	}

	prevYear, prevMonth := enrollmentdomain.PreviousPeriod(year, month)
	previous, err := s.enrollmentRepo.MetricsForPeriod(ctx, s.db, enrollmentdomain.PeriodOf(prevYear, prevMonth), tutorID)
	if err != nil {
		return nil, err
	}

	trend, err := s.buildTrend(ctx, year, month, tutorID, current)
	if err != nil {
		return nil, err
	}

	return &dashboarddomain.MetricsResponse{
		Period:         period,
		Current:        *current,
		Previous:       *previous,
		CollectionRate: collectionRate(current),
		RevenueDelta:   delta(current.PaidAmount, previous.PaidAmount),
		PendingDelta:   delta(current.PendingAmount, previous.PendingAmount),
		TotalDelta:     delta(current.TotalAmount, previous.TotalAmount),
		Trend:          trend,
		Distribution:   distribution(current),
	}, nil
}

// buildTrend walks back trendLength-1 months and returns the series oldest
// first, ending with the already loaded current period.
func (s *Service) buildTrend(ctx context.Context, year, month int, tutorID *snowflake.ID, current *enrollmentdomain.PeriodMetrics) ([]dashboarddomain.TrendEntry, error) {
	trend := make([]dashboarddomain.TrendEntry, trendLength)
	trend[trendLength-1] = dashboarddomain.TrendEntry{
		Period:      current.Period,
		TotalAmount: current.TotalAmount,
		PaidAmount:  current.PaidAmount,
	}

	y, m := year, month
	for i := trendLength - 2; i >= 0; i-- {
		y, m = enrollmentdomain.PreviousPeriod(y, m)
		metrics, err := s.enrollmentRepo.MetricsForPeriod(ctx, s.db, enrollmentdomain.PeriodOf(y, m), tutorID)
		if err != nil {
			return nil, err
		}
		trend[i] = dashboarddomain.TrendEntry{
			Period:      metrics.Period,
			TotalAmount: metrics.TotalAmount,
			PaidAmount:  metrics.PaidAmount,
		}
	}
	return trend, nil
}

// collectionRate is the paid share of all billed amounts, in percent.
func collectionRate(m *enrollmentdomain.PeriodMetrics) decimal.Decimal {
	if m.TotalAmount.IsZero() {
		return decimal.Zero
	}
	return m.PaidAmount.Div(m.TotalAmount).Mul(hundred).Round(2)
}

// delta is the percent change from prev to cur. A zero previous value maps
// to 100 when the current value is non-zero and 0 when both are zero, so
// the first active period reads as full growth instead of dividing by zero.
func delta(cur, prev decimal.Decimal) decimal.Decimal {
	if prev.IsZero() {
		if cur.IsZero() {
			return decimal.Zero
		}
		return hundred
	}
	return cur.Sub(prev).Div(prev).Mul(hundred).Round(2)
}

func distribution(m *enrollmentdomain.PeriodMetrics) []dashboarddomain.StatusSlice {
	return []dashboarddomain.StatusSlice{
		{
			Status:  enrollmentdomain.Paid,
			Count:   m.PaidCount,
			Amount:  m.PaidAmount,
			Percent: share(m.PaidAmount, m.TotalAmount),
		},
		{
			Status:  enrollmentdomain.Pending,
			Count:   m.PendingCount,
			Amount:  m.PendingAmount,
			Percent: share(m.PendingAmount, m.TotalAmount),
		},
		{
			Status:  enrollmentdomain.Overdue,
			Count:   m.OverdueCount,
			Amount:  m.OverdueAmount,
			Percent: share(m.OverdueAmount, m.TotalAmount),
		},
	}
}

func share(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Div(total).Mul(hundred).Round(2)
}
