package service

import (
	"context"
	"testing"
	"time"

	"github.com/aulapay/aulapay/internal/clock"
	enrollmentdomain "github.com/aulapay/aulapay/internal/enrollment/domain"
	enrollmentrepo "github.com/aulapay/aulapay/internal/enrollment/repository"
	pricingdomain "github.com/aulapay/aulapay/internal/pricing/domain"
	pricingservice "github.com/aulapay/aulapay/internal/pricing/service"
	pricingconfigdomain "github.com/aulapay/aulapay/internal/pricingconfig/domain"
	pricingconfigrepo "github.com/aulapay/aulapay/internal/pricingconfig/repository"
	productdomain "github.com/aulapay/aulapay/internal/product/domain"
	productrepo "github.com/aulapay/aulapay/internal/product/repository"
	studentdomain "github.com/aulapay/aulapay/internal/student/domain"
	studentrepo "github.com/aulapay/aulapay/internal/student/repository"
	"github.com/aulapay/aulapay/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type enrollmentFixture struct {
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
	svc   enrollmentdomain.Service
}

func newEnrollmentFixture(t *testing.T) *enrollmentFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&pricingconfigdomain.PricingConfig{},
		&studentdomain.Student{},
		&productdomain.Product{},
		&enrollmentdomain.Enrollment{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	pricingSvc := pricingservice.New(pricingservice.Params{
		DB:          db,
		Log:         zap.NewNop(),
		ConfigRepo:  pricingconfigrepo.Provide(),
		StudentRepo: studentrepo.Provide(),
		ProductRepo: productrepo.Provide(),
	})

	fake := clock.NewFakeClock(time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      fake,
		Repo:       enrollmentrepo.Provide(),
		PricingSvc: pricingSvc,
	})

	return &enrollmentFixture{db: db, node: node, clock: fake, svc: svc}
}

func (f *enrollmentFixture) seedConfig(t *testing.T) {
	t.Helper()
	now := f.clock.Now()
	require.NoError(t, f.db.Create(&pricingconfigdomain.PricingConfig{
		ID:                           pricingconfigdomain.SingletonID,
		ClubPrice:                    decimal.NewFromInt(50000),
		SpecializedCoursePrice:       decimal.NewFromInt(55000),
		MultipleActivitiesPrice:      decimal.NewFromInt(44000),
		SiblingsBasicPrice:           decimal.NewFromInt(44000),
		SiblingsMultiplePrice:        decimal.NewFromInt(38000),
		CertificationDiscountPercent: decimal.NewFromInt(20),
		CertificationDiscountActive:  true,
		PaymentDueDay:                10,
		ReminderLeadDays:             3,
		NotificationsEnabled:         true,
		CreatedAt:                    now,
		UpdatedAt:                    now,
	}).Error)
}

func (f *enrollmentFixture) seedStudent(t *testing.T, tutorID snowflake.ID, first, last string) studentdomain.Student {
	t.Helper()
	now := f.clock.Now()
	student := studentdomain.Student{
		ID:        f.node.Generate(),
		TutorID:   tutorID,
		FirstName: first,
		LastName:  last,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.db.Create(&student).Error)
	return student
}

func (f *enrollmentFixture) seedProduct(t *testing.T, name string) productdomain.Product {
	t.Helper()
	now := f.clock.Now()
	product := productdomain.Product{
		ID:        f.node.Generate(),
		Name:      name,
		Kind:      productdomain.Club,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.db.Create(&product).Error)
	return product
}

func TestCreate_RejectsInvalidMonth(t *testing.T) {
	f := newEnrollmentFixture(t)

	_, err := f.svc.Create(context.Background(), enrollmentdomain.CreateRequest{
		TutorID: f.node.Generate().String(),
		Year:    2025,
		Month:   13,
	})
	assert.ErrorIs(t, err, enrollmentdomain.ErrInvalidMonth)
}

func TestCreate_RejectsYearOutOfRange(t *testing.T) {
	f := newEnrollmentFixture(t)

	_, err := f.svc.Create(context.Background(), enrollmentdomain.CreateRequest{
		TutorID: f.node.Generate().String(),
		Year:    2023,
		Month:   1,
	})
	assert.ErrorIs(t, err, enrollmentdomain.ErrInvalidYear)

	_, err = f.svc.Create(context.Background(), enrollmentdomain.CreateRequest{
		TutorID: f.node.Generate().String(),
		Year:    2101,
		Month:   1,
	})
	assert.ErrorIs(t, err, enrollmentdomain.ErrInvalidYear)
}

func TestCreate_FreezesQuotedPrices(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.seedConfig(t)
	tutorID := f.node.Generate()
	student := f.seedStudent(t, tutorID, "Ana", "Silva")
	product := f.seedProduct(t, "Chess Club")

	resp, err := f.svc.Create(context.Background(), enrollmentdomain.CreateRequest{
		TutorID: tutorID.String(),
		Year:    2025,
		Month:   3,
		Students: []pricingdomain.StudentSelection{
			{StudentID: student.ID.String(), ProductIDs: []string{product.ID.String()}},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Enrollments, 1)

	created := resp.Enrollments[0]
	assert.Equal(t, "2025-03", created.Period)
	assert.Equal(t, "Ana Silva", created.StudentName)
	assert.Equal(t, "Chess Club", created.ProductName)
	assert.Equal(t, enrollmentdomain.Pending, created.Status)
	assert.True(t, created.FinalPrice.Equal(decimal.NewFromInt(50000)))

	assert.Equal(t, "2025-03", resp.Summary.Period)
	assert.Equal(t, 1, resp.Summary.Count)
	assert.True(t, resp.Summary.Total.Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, enrollmentdomain.Pending, resp.Summary.Status)

	var count int64
	require.NoError(t, f.db.Model(&enrollmentdomain.Enrollment{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreate_CertifiedFlagAppliesDiscountToFrozenPrices(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.seedConfig(t)
	tutorID := f.node.Generate()
	student := f.seedStudent(t, tutorID, "Ana", "Silva")
	product := f.seedProduct(t, "Chess Club")

	certified := true
	resp, err := f.svc.Create(context.Background(), enrollmentdomain.CreateRequest{
		TutorID: tutorID.String(),
		Year:    2025,
		Month:   3,
		Students: []pricingdomain.StudentSelection{
			{StudentID: student.ID.String(), ProductIDs: []string{product.ID.String()}},
		},
		Certified: &certified,
	})
	require.NoError(t, err)
	require.Len(t, resp.Enrollments, 1)

	created := resp.Enrollments[0]
	assert.Equal(t, pricingdomain.Certification, created.DiscountKind)
	assert.True(t, created.FinalPrice.Equal(decimal.NewFromInt(40000)))
	assert.True(t, created.DiscountAmount.Equal(decimal.NewFromInt(10000)))
	assert.True(t, resp.Summary.Total.Equal(decimal.NewFromInt(40000)))
}

func TestCreate_RejectsDuplicateLine(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.seedConfig(t)
	tutorID := f.node.Generate()
	student := f.seedStudent(t, tutorID, "Ana", "Silva")
	product := f.seedProduct(t, "Chess Club")

	req := enrollmentdomain.CreateRequest{
		TutorID: tutorID.String(),
		Year:    2025,
		Month:   1,
		Students: []pricingdomain.StudentSelection{
			{StudentID: student.ID.String(), ProductIDs: []string{product.ID.String()}},
		},
	}

	_, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, enrollmentdomain.ErrDuplicateEnrollment)
	assert.Contains(t, err.Error(), "Ana Silva")
	assert.Contains(t, err.Error(), "Chess Club")
	assert.Contains(t, err.Error(), "2025-01")
}

func TestCreate_UniqueIndexBacksUpThePrecheck(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.seedConfig(t)
	tutorID := f.node.Generate()
	student := f.seedStudent(t, tutorID, "Ana", "Silva")
	product := f.seedProduct(t, "Chess Club")

	// Insert directly so the row violates the unique index at commit time.
	now := f.clock.Now()
	require.NoError(t, f.db.Create(&enrollmentdomain.Enrollment{
		ID:             f.node.Generate(),
		StudentID:      student.ID,
		ProductID:      product.ID,
		TutorID:        tutorID,
		Year:           2025,
		Month:          3,
		Period:         "2025-03",
		StudentName:    student.FullName(),
		ProductName:    product.Name,
		BasePrice:      decimal.NewFromInt(50000),
		FinalPrice:     decimal.NewFromInt(50000),
		DiscountAmount: decimal.Zero,
		DiscountKind:   pricingdomain.None,
		DiscountDetail: "Standard rate",
		Status:         enrollmentdomain.Pending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}).Error)

	var second enrollmentdomain.Enrollment
	require.NoError(t, f.db.First(&second).Error)
	err := f.db.Create(&enrollmentdomain.Enrollment{
		ID:             f.node.Generate(),
		StudentID:      second.StudentID,
		ProductID:      second.ProductID,
		TutorID:        second.TutorID,
		Year:           second.Year,
		Month:          second.Month,
		Period:         second.Period,
		StudentName:    second.StudentName,
		ProductName:    second.ProductName,
		BasePrice:      second.BasePrice,
		FinalPrice:     second.FinalPrice,
		DiscountAmount: second.DiscountAmount,
		DiscountKind:   second.DiscountKind,
		DiscountDetail: second.DiscountDetail,
		Status:         second.Status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}).Error
	require.Error(t, err)
}

func TestUpdatePaymentStatus_MarksPaid(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.seedConfig(t)
	tutorID := f.node.Generate()
	student := f.seedStudent(t, tutorID, "Ana", "Silva")
	product := f.seedProduct(t, "Chess Club")

	created, err := f.svc.Create(context.Background(), enrollmentdomain.CreateRequest{
		TutorID: tutorID.String(),
		Year:    2025,
		Month:   3,
		Students: []pricingdomain.StudentSelection{
			{StudentID: student.ID.String(), ProductIDs: []string{product.ID.String()}},
		},
	})
	require.NoError(t, err)

	method := "pix"
	updated, err := f.svc.UpdatePaymentStatus(context.Background(), enrollmentdomain.UpdatePaymentRequest{
		ID:            created.Enrollments[0].ID.String(),
		Status:        "paid",
		PaymentMethod: &method,
	})
	require.NoError(t, err)
	assert.Equal(t, enrollmentdomain.Paid, updated.Status)
	require.NotNil(t, updated.PaidAt)
	assert.Equal(t, f.clock.Now(), *updated.PaidAt)
	require.NotNil(t, updated.PaymentMethod)
	assert.Equal(t, "pix", *updated.PaymentMethod)
}

func TestUpdatePaymentStatus_BackToPendingClearsPaidAt(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.seedConfig(t)
	tutorID := f.node.Generate()
	student := f.seedStudent(t, tutorID, "Ana", "Silva")
	product := f.seedProduct(t, "Chess Club")

	created, err := f.svc.Create(context.Background(), enrollmentdomain.CreateRequest{
		TutorID: tutorID.String(),
		Year:    2025,
		Month:   3,
		Students: []pricingdomain.StudentSelection{
			{StudentID: student.ID.String(), ProductIDs: []string{product.ID.String()}},
		},
	})
	require.NoError(t, err)
	id := created.Enrollments[0].ID.String()

	_, err = f.svc.UpdatePaymentStatus(context.Background(), enrollmentdomain.UpdatePaymentRequest{
		ID:     id,
		Status: "PAID",
	})
	require.NoError(t, err)

	updated, err := f.svc.UpdatePaymentStatus(context.Background(), enrollmentdomain.UpdatePaymentRequest{
		ID:     id,
		Status: "PENDING",
	})
	require.NoError(t, err)
	assert.Equal(t, enrollmentdomain.Pending, updated.Status)
	assert.Nil(t, updated.PaidAt)
}

func TestUpdatePaymentStatus_UnknownStatus(t *testing.T) {
	f := newEnrollmentFixture(t)

	_, err := f.svc.UpdatePaymentStatus(context.Background(), enrollmentdomain.UpdatePaymentRequest{
		ID:     f.node.Generate().String(),
		Status: "REFUNDED",
	})
	assert.ErrorIs(t, err, enrollmentdomain.ErrInvalidStatus)
}

func TestUpdatePaymentStatus_NotFound(t *testing.T) {
	f := newEnrollmentFixture(t)

	_, err := f.svc.UpdatePaymentStatus(context.Background(), enrollmentdomain.UpdatePaymentRequest{
		ID:     f.node.Generate().String(),
		Status: "PAID",
	})
	assert.ErrorIs(t, err, enrollmentdomain.ErrNotFound)
}

func TestListForTutor_FiltersAndPaginates(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.seedConfig(t)
	tutorID := f.node.Generate()
	ana := f.seedStudent(t, tutorID, "Ana", "Silva")
	bea := f.seedStudent(t, tutorID, "Bea", "Souza")
	chess := f.seedProduct(t, "Chess Club")
	art := f.seedProduct(t, "Art Club")

	for i, sel := range []pricingdomain.StudentSelection{
		{StudentID: ana.ID.String(), ProductIDs: []string{chess.ID.String()}},
		{StudentID: ana.ID.String(), ProductIDs: []string{art.ID.String()}},
		{StudentID: bea.ID.String(), ProductIDs: []string{chess.ID.String()}},
	} {
		_, err := f.svc.Create(context.Background(), enrollmentdomain.CreateRequest{
			TutorID:  tutorID.String(),
			Year:     2025,
			Month:    3,
			Students: []pricingdomain.StudentSelection{sel},
		})
		require.NoError(t, err)
		f.clock.Advance(time.Duration(i+1) * time.Minute)
	}

	resp, err := f.svc.ListForTutor(context.Background(), enrollmentdomain.ListRequest{
		TutorID:    tutorID.String(),
		Pagination: pagination.Pagination{PageSize: 2},
	})
	require.NoError(t, err)
	require.Len(t, resp.Enrollments, 2)
	require.NotNil(t, resp.PageInfo)
	assert.True(t, resp.PageInfo.HasMore)
	require.NotEmpty(t, resp.PageInfo.NextPageToken)

	next, err := f.svc.ListForTutor(context.Background(), enrollmentdomain.ListRequest{
		TutorID: tutorID.String(),
		Pagination: pagination.Pagination{
			PageSize:  2,
			PageToken: resp.PageInfo.NextPageToken,
		},
	})
	require.NoError(t, err)
	require.Len(t, next.Enrollments, 1)
	assert.False(t, next.PageInfo.HasMore)

	// No overlap across pages.
	seen := map[snowflake.ID]bool{}
	for _, e := range resp.Enrollments {
		seen[e.ID] = true
	}
	for _, e := range next.Enrollments {
		assert.False(t, seen[e.ID])
	}
}

func TestListForTutor_InvalidPeriod(t *testing.T) {
	f := newEnrollmentFixture(t)

	period := "2025-13"
	_, err := f.svc.ListForTutor(context.Background(), enrollmentdomain.ListRequest{
		TutorID: f.node.Generate().String(),
		Period:  &period,
	})
	assert.ErrorIs(t, err, enrollmentdomain.ErrInvalidPeriod)
}

func TestListForTutor_InvalidPageToken(t *testing.T) {
	f := newEnrollmentFixture(t)

	_, err := f.svc.ListForTutor(context.Background(), enrollmentdomain.ListRequest{
		TutorID:    f.node.Generate().String(),
		Pagination: pagination.Pagination{PageToken: "%%%not-base64%%%"},
	})
	assert.ErrorIs(t, err, enrollmentdomain.ErrInvalidPageToken)
}

func TestTutorTotals_SplitsPaidAndPending(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.seedConfig(t)
	tutorID := f.node.Generate()
	ana := f.seedStudent(t, tutorID, "Ana", "Silva")
	bea := f.seedStudent(t, tutorID, "Bea", "Souza")
	chess := f.seedProduct(t, "Chess Club")

	created, err := f.svc.Create(context.Background(), enrollmentdomain.CreateRequest{
		TutorID: tutorID.String(),
		Year:    2025,
		Month:   3,
		Students: []pricingdomain.StudentSelection{
			{StudentID: ana.ID.String(), ProductIDs: []string{chess.ID.String()}},
			{StudentID: bea.ID.String(), ProductIDs: []string{chess.ID.String()}},
		},
	})
	require.NoError(t, err)

	_, err = f.svc.UpdatePaymentStatus(context.Background(), enrollmentdomain.UpdatePaymentRequest{
		ID:     created.Enrollments[0].ID.String(),
		Status: "PAID",
	})
	require.NoError(t, err)

	totals, err := f.svc.TutorTotals(context.Background(), tutorID.String(), 2025, 3)
	require.NoError(t, err)
	assert.Equal(t, "2025-03", totals.Period)
	assert.True(t, totals.PaidAmount.Equal(decimal.NewFromInt(44000)))
	assert.True(t, totals.PendingAmount.Equal(decimal.NewFromInt(44000)))
	assert.True(t, totals.TotalAmount.Equal(decimal.NewFromInt(88000)))
}

func TestStudentsWithDiscounts_GroupsByStudent(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.seedConfig(t)
	tutorID := f.node.Generate()
	ana := f.seedStudent(t, tutorID, "Ana", "Silva")
	chess := f.seedProduct(t, "Chess Club")
	art := f.seedProduct(t, "Art Club")

	_, err := f.svc.Create(context.Background(), enrollmentdomain.CreateRequest{
		TutorID: tutorID.String(),
		Year:    2025,
		Month:   3,
		Students: []pricingdomain.StudentSelection{
			{StudentID: ana.ID.String(), ProductIDs: []string{chess.ID.String(), art.ID.String()}},
		},
	})
	require.NoError(t, err)

	summaries, err := f.svc.StudentsWithDiscounts(context.Background(), 2025, 3, "")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Ana Silva", summaries[0].StudentName)
	assert.Equal(t, int64(2), summaries[0].EnrollmentCount)
	assert.True(t, summaries[0].DiscountTotal.Equal(decimal.NewFromInt(12000)))
}
