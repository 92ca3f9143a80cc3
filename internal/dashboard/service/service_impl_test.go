package service

import (
	"context"
	"testing"
	"time"

	"github.com/aulapay/aulapay/internal/clock"
	dashboarddomain "github.com/aulapay/aulapay/internal/dashboard/domain"
	enrollmentdomain "github.com/aulapay/aulapay/internal/enrollment/domain"
	enrollmentrepo "github.com/aulapay/aulapay/internal/enrollment/repository"
	pricingdomain "github.com/aulapay/aulapay/internal/pricing/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type dashboardFixture struct {
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
	svc   dashboarddomain.Service
}

func newDashboardFixture(t *testing.T) *dashboardFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&enrollmentdomain.Enrollment{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:             db,
		Log:            zap.NewNop(),
		Clock:          fake,
		EnrollmentRepo: enrollmentrepo.Provide(),
	})

	return &dashboardFixture{db: db, node: node, clock: fake, svc: svc}
}

func (f *dashboardFixture) seedEnrollment(t *testing.T, tutorID snowflake.ID, year, month int, amount int64, status enrollmentdomain.PaymentStatus) {
	t.Helper()
	now := f.clock.Now()
	require.NoError(t, f.db.Create(&enrollmentdomain.Enrollment{
		ID:             f.node.Generate(),
		StudentID:      f.node.Generate(),
		ProductID:      f.node.Generate(),
		TutorID:        tutorID,
		Year:           year,
		Month:          month,
		Period:         enrollmentdomain.PeriodOf(year, month),
		StudentName:    "Ana Silva",
		ProductName:    "Chess Club",
		BasePrice:      decimal.NewFromInt(amount),
		FinalPrice:     decimal.NewFromInt(amount),
		DiscountAmount: decimal.Zero,
		DiscountKind:   pricingdomain.None,
		DiscountDetail: "Standard rate",
		Status:         status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}).Error)
}

func TestMetrics_DefaultsToCurrentPeriod(t *testing.T) {
	f := newDashboardFixture(t)
	tutorID := f.node.Generate()
	f.seedEnrollment(t, tutorID, 2025, 3, 50000, enrollmentdomain.Paid)

	resp, err := f.svc.Metrics(context.Background(), dashboarddomain.MetricsRequest{})
	require.NoError(t, err)
	assert.Equal(t, "2025-03", resp.Period)
	assert.True(t, resp.Current.PaidAmount.Equal(decimal.NewFromInt(50000)))
}

func TestMetrics_RejectsInvalidPeriod(t *testing.T) {
	f := newDashboardFixture(t)

	_, err := f.svc.Metrics(context.Background(), dashboarddomain.MetricsRequest{Year: 2025, Month: 13})
	assert.ErrorIs(t, err, enrollmentdomain.ErrInvalidMonth)

	_, err = f.svc.Metrics(context.Background(), dashboarddomain.MetricsRequest{Year: 2023, Month: 3})
	assert.ErrorIs(t, err, enrollmentdomain.ErrInvalidYear)
}

func TestMetrics_RejectsInvalidTutor(t *testing.T) {
	f := newDashboardFixture(t)

	_, err := f.svc.Metrics(context.Background(), dashboarddomain.MetricsRequest{
		Year:    2025,
		Month:   3,
		TutorID: "nope",
	})
	assert.ErrorIs(t, err, enrollmentdomain.ErrInvalidTutor)
}

func TestMetrics_CollectionRate(t *testing.T) {
	f := newDashboardFixture(t)
	tutorID := f.node.Generate()
	f.seedEnrollment(t, tutorID, 2025, 3, 50000, enrollmentdomain.Paid)
	f.seedEnrollment(t, tutorID, 2025, 3, 30000, enrollmentdomain.Pending)
	f.seedEnrollment(t, tutorID, 2025, 3, 20000, enrollmentdomain.Overdue)

	resp, err := f.svc.Metrics(context.Background(), dashboarddomain.MetricsRequest{Year: 2025, Month: 3})
	require.NoError(t, err)
	assert.True(t, resp.CollectionRate.Equal(decimal.NewFromInt(50)), "got %s", resp.CollectionRate)
}

func TestMetrics_CollectionRateZeroWhenNothingBilled(t *testing.T) {
	f := newDashboardFixture(t)

	resp, err := f.svc.Metrics(context.Background(), dashboarddomain.MetricsRequest{Year: 2025, Month: 3})
	require.NoError(t, err)
	assert.True(t, resp.CollectionRate.IsZero())
}

func TestMetrics_Deltas(t *testing.T) {
	f := newDashboardFixture(t)
	tutorID := f.node.Generate()
	f.seedEnrollment(t, tutorID, 2025, 2, 40000, enrollmentdomain.Paid)
	f.seedEnrollment(t, tutorID, 2025, 3, 50000, enrollmentdomain.Paid)

	resp, err := f.svc.Metrics(context.Background(), dashboarddomain.MetricsRequest{Year: 2025, Month: 3})
	require.NoError(t, err)
	assert.True(t, resp.RevenueDelta.Equal(decimal.NewFromInt(25)), "got %s", resp.RevenueDelta)
	assert.True(t, resp.TotalDelta.Equal(decimal.NewFromInt(25)))
	// No pending amounts either month.
	assert.True(t, resp.PendingDelta.IsZero())
}

func TestMetrics_DeltaFromZeroPreviousIsFullGrowth(t *testing.T) {
	f := newDashboardFixture(t)
	tutorID := f.node.Generate()
	f.seedEnrollment(t, tutorID, 2025, 3, 50000, enrollmentdomain.Paid)

	resp, err := f.svc.Metrics(context.Background(), dashboarddomain.MetricsRequest{Year: 2025, Month: 3})
	require.NoError(t, err)
	assert.True(t, resp.RevenueDelta.Equal(decimal.NewFromInt(100)))
}

func TestMetrics_PreviousPeriodCrossesYearBoundary(t *testing.T) {
	f := newDashboardFixture(t)
	tutorID := f.node.Generate()
	f.seedEnrollment(t, tutorID, 2024, 12, 40000, enrollmentdomain.Paid)
	f.seedEnrollment(t, tutorID, 2025, 1, 50000, enrollmentdomain.Paid)

	resp, err := f.svc.Metrics(context.Background(), dashboarddomain.MetricsRequest{Year: 2025, Month: 1})
	require.NoError(t, err)
	assert.Equal(t, "2024-12", resp.Previous.Period)
	assert.True(t, resp.RevenueDelta.Equal(decimal.NewFromInt(25)))
}

func TestMetrics_TrendIsSixPeriodsOldestFirst(t *testing.T) {
	f := newDashboardFixture(t)
	tutorID := f.node.Generate()
	f.seedEnrollment(t, tutorID, 2025, 3, 50000, enrollmentdomain.Paid)
	f.seedEnrollment(t, tutorID, 2024, 12, 30000, enrollmentdomain.Pending)

	resp, err := f.svc.Metrics(context.Background(), dashboarddomain.MetricsRequest{Year: 2025, Month: 3})
	require.NoError(t, err)
	require.Len(t, resp.Trend, 6)
	assert.Equal(t, "2024-10", resp.Trend[0].Period)
	assert.Equal(t, "2025-03", resp.Trend[5].Period)
	assert.True(t, resp.Trend[2].TotalAmount.Equal(decimal.NewFromInt(30000)))
	assert.True(t, resp.Trend[5].PaidAmount.Equal(decimal.NewFromInt(50000)))
}

func TestMetrics_DistributionPercentages(t *testing.T) {
	f := newDashboardFixture(t)
	tutorID := f.node.Generate()
	f.seedEnrollment(t, tutorID, 2025, 3, 50000, enrollmentdomain.Paid)
	f.seedEnrollment(t, tutorID, 2025, 3, 30000, enrollmentdomain.Pending)
	f.seedEnrollment(t, tutorID, 2025, 3, 20000, enrollmentdomain.Overdue)

	resp, err := f.svc.Metrics(context.Background(), dashboarddomain.MetricsRequest{Year: 2025, Month: 3})
	require.NoError(t, err)
	require.Len(t, resp.Distribution, 3)

	paid := resp.Distribution[0]
	assert.Equal(t, enrollmentdomain.Paid, paid.Status)
	assert.Equal(t, int64(1), paid.Count)
	assert.True(t, paid.Percent.Equal(decimal.NewFromInt(50)))

	pending := resp.Distribution[1]
	assert.Equal(t, enrollmentdomain.Pending, pending.Status)
	assert.True(t, pending.Percent.Equal(decimal.NewFromInt(30)))

	overdue := resp.Distribution[2]
	assert.Equal(t, enrollmentdomain.Overdue, overdue.Status)
	assert.True(t, overdue.Percent.Equal(decimal.NewFromInt(20)))
}

func TestMetrics_FiltersByTutor(t *testing.T) {
	f := newDashboardFixture(t)
	mine := f.node.Generate()
	other := f.node.Generate()
	f.seedEnrollment(t, mine, 2025, 3, 50000, enrollmentdomain.Paid)
	f.seedEnrollment(t, other, 2025, 3, 90000, enrollmentdomain.Paid)

	resp, err := f.svc.Metrics(context.Background(), dashboarddomain.MetricsRequest{
		Year:    2025,
		Month:   3,
		TutorID: mine.String(),
	})
	require.NoError(t, err)
	assert.True(t, resp.Current.TotalAmount.Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, int64(1), resp.Current.TotalCount)
}
