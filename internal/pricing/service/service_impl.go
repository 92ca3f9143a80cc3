package service

import (
	"context"
	"fmt"
	"strings"

	obsmetrics "github.com/aulapay/aulapay/internal/observability/metrics"
	pricingdomain "github.com/aulapay/aulapay/internal/pricing/domain"
	"github.com/aulapay/aulapay/internal/pricing/rules"
	pricingconfigdomain "github.com/aulapay/aulapay/internal/pricingconfig/domain"
	productdomain "github.com/aulapay/aulapay/internal/product/domain"
	studentdomain "github.com/aulapay/aulapay/internal/student/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	ConfigRepo  pricingconfigdomain.Repository
	StudentRepo studentdomain.Repository
	ProductRepo productdomain.Repository
	Metrics     *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	configRepo  pricingconfigdomain.Repository
	studentRepo studentdomain.Repository
	productRepo productdomain.Repository
	metrics     *obsmetrics.Metrics
}

func New(p Params) pricingdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("pricing.service"),
		configRepo:  p.ConfigRepo,
		studentRepo: p.StudentRepo,
		productRepo: p.ProductRepo,
		metrics:     p.Metrics,
	}
}

func (s *Service) Quote(ctx context.Context, req pricingdomain.QuoteRequest) (*pricingdomain.QuoteResponse, error) {
	tutorID, err := snowflake.ParseString(strings.TrimSpace(req.TutorID))
	if err != nil || tutorID == 0 {
		return nil, pricingdomain.ErrInvalidTutor
	}
	if len(req.Students) == 0 {
		return nil, pricingdomain.ErrStudentsRequired
	}
	for _, sel := range req.Students {
		if len(sel.ProductIDs) == 0 {
			return nil, fmt.Errorf("%w: student %s", pricingdomain.ErrProductsRequired, sel.StudentID)
		}
	}

	cfg, err := s.configRepo.Get(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, pricingconfigdomain.ErrNotFound
	}
	rateCard := pricingdomain.RateCardFromConfig(*cfg)

	siblingCount := len(req.Students)
	productCache := map[snowflake.ID]*productdomain.Product{}

	lines := make([]pricingdomain.LineItem, 0, len(req.Students))
	results := make([]pricingdomain.LineResult, 0, len(req.Students))

	for _, sel := range req.Students {
		student, err := s.loadStudent(ctx, tutorID, sel.StudentID)
		if err != nil {
			return nil, err
		}

		certified := student.Certified
		if req.Certified != nil {
			certified = *req.Certified
		}

		activityCount := len(sel.ProductIDs)
		for _, rawProductID := range sel.ProductIDs {
			product, err := s.loadProduct(ctx, productCache, rawProductID)
			if err != nil {
				return nil, err
			}

			result := rules.Evaluate(rateCard, pricingdomain.LineInput{
				BasePrice:     rateCard.BasePriceFor(product.Kind),
				SiblingCount:  siblingCount,
				ActivityCount: activityCount,
				Certified:     certified,
			})
			results = append(results, result)

			lines = append(lines, pricingdomain.LineItem{
				StudentID:      student.ID,
				StudentName:    student.FullName(),
				ProductID:      product.ID,
				ProductName:    product.Name,
				BasePrice:      result.BasePrice,
				FinalPrice:     result.FinalPrice,
				DiscountAmount: result.DiscountAmount,
				DiscountKind:   result.Kind,
				DiscountDetail: result.Detail,
			})

			s.metrics.RecordQuote(ctx, string(result.Kind))
		}
	}

	totals := rules.Summarize(results)
	resp := &pricingdomain.QuoteResponse{
		Lines:   lines,
		Summary: buildSummary(lines, totals, siblingCount),
	}

	s.log.Debug("quote computed",
		zap.String("tutor_id", tutorID.String()),
		zap.Int("students", siblingCount),
		zap.Int("lines", len(lines)),
		zap.String("total", totals.Total.String()),
	)

	return resp, nil
}

func (s *Service) loadStudent(ctx context.Context, tutorID snowflake.ID, rawID string) (*studentdomain.Student, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", pricingdomain.ErrStudentNotFound, rawID)
	}
	student, err := s.studentRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, fmt.Errorf("%w: %s", pricingdomain.ErrStudentNotFound, rawID)
	}
	if student.TutorID != tutorID {
		return nil, fmt.Errorf("%w: %s", pricingdomain.ErrStudentNotOwned, rawID)
	}
	return student, nil
}

func (s *Service) loadProduct(ctx context.Context, cache map[snowflake.ID]*productdomain.Product, rawID string) (*productdomain.Product, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", pricingdomain.ErrProductNotFound, rawID)
	}
	if product, ok := cache[id]; ok {
		return product, nil
	}
	product, err := s.productRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: %s", pricingdomain.ErrProductNotFound, rawID)
	}
	cache[id] = product
	return product, nil
}

func buildSummary(lines []pricingdomain.LineItem, totals pricingdomain.Totals, studentCount int) pricingdomain.Summary {
	summary := pricingdomain.Summary{
		StudentCount:  studentCount,
		LineItemCount: len(lines),
		Subtotal:      totals.Subtotal,
		DiscountTotal: totals.DiscountTotal,
		Total:         totals.Total,
	}
	if studentCount >= 2 {
		summary.SiblingCount = studentCount
	}
	for _, line := range lines {
		switch line.DiscountKind {
		case pricingdomain.SiblingsBasic, pricingdomain.SiblingsMultiple:
			summary.HasSiblingsDiscount = true
		case pricingdomain.MultipleActivities:
			summary.HasMultipleActivitiesDiscount = true
		case pricingdomain.Certification:
			summary.HasCertificationDiscount = true
		}
	}
	return summary
}
