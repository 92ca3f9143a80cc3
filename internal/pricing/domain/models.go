package domain

import (
	pricingconfigdomain "github.com/aulapay/aulapay/internal/pricingconfig/domain"
	productdomain "github.com/aulapay/aulapay/internal/product/domain"
	"github.com/shopspring/decimal"
)

type DiscountKind string

var (
	None               DiscountKind = "NONE"
	SiblingsBasic      DiscountKind = "SIBLINGS_BASIC"
	SiblingsMultiple   DiscountKind = "SIBLINGS_MULTIPLE"
	MultipleActivities DiscountKind = "MULTIPLE_ACTIVITIES"
	Certification      DiscountKind = "CERTIFICATION"
)

// RateCard is the immutable pricing snapshot a quote is computed against.
type RateCard struct {
	ClubPrice                    decimal.Decimal
	SpecializedCoursePrice       decimal.Decimal
	MultipleActivitiesPrice      decimal.Decimal
	SiblingsBasicPrice           decimal.Decimal
	SiblingsMultiplePrice        decimal.Decimal
	CertificationDiscountPercent decimal.Decimal
	CertificationDiscountActive  bool
}

func RateCardFromConfig(cfg pricingconfigdomain.PricingConfig) RateCard {
	return RateCard{
		ClubPrice:                    cfg.ClubPrice,
		SpecializedCoursePrice:       cfg.SpecializedCoursePrice,
		MultipleActivitiesPrice:      cfg.MultipleActivitiesPrice,
		SiblingsBasicPrice:           cfg.SiblingsBasicPrice,
		SiblingsMultiplePrice:        cfg.SiblingsMultiplePrice,
		CertificationDiscountPercent: cfg.CertificationDiscountPercent,
		CertificationDiscountActive:  cfg.CertificationDiscountActive,
	}
}

func (rc RateCard) BasePriceFor(kind productdomain.ProductKind) decimal.Decimal {
	switch kind {
	case productdomain.SpecializedCourse:
		return rc.SpecializedCoursePrice
	default:
		return rc.ClubPrice
	}
}

// LineInput describes one student-product pair to price.
type LineInput struct {
	BasePrice     decimal.Decimal
	SiblingCount  int
	ActivityCount int
	Certified     bool
}

// LineResult is the priced outcome of a single line.
// FinalPrice is always BasePrice minus DiscountAmount.
type LineResult struct {
	BasePrice      decimal.Decimal
	FinalPrice     decimal.Decimal
	DiscountAmount decimal.Decimal
	Kind           DiscountKind
	Detail         string
}

type Totals struct {
	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	Total         decimal.Decimal
}
