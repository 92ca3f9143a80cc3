package rules

import (
	"fmt"

	pricingdomain "github.com/aulapay/aulapay/internal/pricing/domain"
	"github.com/shopspring/decimal"
)

type input struct {
	base       decimal.Decimal
	siblings   int
	activities int
	certified  bool
}

type rule struct {
	kind    pricingdomain.DiscountKind
	applies func(in input, rc pricingdomain.RateCard) bool
	price   func(in input, rc pricingdomain.RateCard) decimal.Decimal
	detail  func(in input, rc pricingdomain.RateCard) string
}

// ruleTable is evaluated top to bottom; the first matching rule wins.
var ruleTable = []rule{
	{
		kind: pricingdomain.SiblingsMultiple,
		applies: func(in input, _ pricingdomain.RateCard) bool {
			return in.siblings >= 2 && in.activities >= 2
		},
		price: func(_ input, rc pricingdomain.RateCard) decimal.Decimal {
			return rc.SiblingsMultiplePrice
		},
		detail: func(in input, _ pricingdomain.RateCard) string {
			return fmt.Sprintf("Siblings with multiple activities rate: %d siblings, %d activities", in.siblings, in.activities)
		},
	},
	{
		kind: pricingdomain.SiblingsBasic,
		applies: func(in input, _ pricingdomain.RateCard) bool {
			return in.siblings >= 2
		},
		price: func(_ input, rc pricingdomain.RateCard) decimal.Decimal {
			return rc.SiblingsBasicPrice
		},
		detail: func(in input, _ pricingdomain.RateCard) string {
			return fmt.Sprintf("Siblings rate: %d siblings enrolled", in.siblings)
		},
	},
	{
		kind: pricingdomain.MultipleActivities,
		applies: func(in input, _ pricingdomain.RateCard) bool {
			return in.activities >= 2
		},
		price: func(_ input, rc pricingdomain.RateCard) decimal.Decimal {
			return rc.MultipleActivitiesPrice
		},
		detail: func(in input, _ pricingdomain.RateCard) string {
			return fmt.Sprintf("Multiple activities rate: %d activities", in.activities)
		},
	},
	{
		kind: pricingdomain.Certification,
		applies: func(in input, rc pricingdomain.RateCard) bool {
			return in.certified && rc.CertificationDiscountActive
		},
		price: func(in input, rc pricingdomain.RateCard) decimal.Decimal {
			hundred := decimal.NewFromInt(100)
			return in.base.Mul(hundred.Sub(rc.CertificationDiscountPercent)).Div(hundred)
		},
		detail: func(_ input, rc pricingdomain.RateCard) string {
			return fmt.Sprintf("Certification discount: %s%% off base price", rc.CertificationDiscountPercent.String())
		},
	},
}

// Evaluate prices one student-product line against the rate card.
// Sibling and activity counts below 1 are treated as 1.
func Evaluate(rc pricingdomain.RateCard, line pricingdomain.LineInput) pricingdomain.LineResult {
	in := input{
		base:       line.BasePrice,
		siblings:   clampCount(line.SiblingCount),
		activities: clampCount(line.ActivityCount),
		certified:  line.Certified,
	}

	for _, r := range ruleTable {
		if !r.applies(in, rc) {
			continue
		}
		final := r.price(in, rc)
		return pricingdomain.LineResult{
			BasePrice:      in.base,
			FinalPrice:     final,
			DiscountAmount: in.base.Sub(final),
			Kind:           r.kind,
			Detail:         r.detail(in, rc),
		}
	}

	return pricingdomain.LineResult{
		BasePrice:      in.base,
		FinalPrice:     in.base,
		DiscountAmount: decimal.Zero,
		Kind:           pricingdomain.None,
		Detail:         "Standard rate",
	}
}

// Summarize folds line results into quote totals.
func Summarize(lines []pricingdomain.LineResult) pricingdomain.Totals {
	totals := pricingdomain.Totals{
		Subtotal:      decimal.Zero,
		DiscountTotal: decimal.Zero,
		Total:         decimal.Zero,
	}
	for _, line := range lines {
		totals.Subtotal = totals.Subtotal.Add(line.BasePrice)
		totals.DiscountTotal = totals.DiscountTotal.Add(line.DiscountAmount)
		totals.Total = totals.Total.Add(line.FinalPrice)
	}
	return totals
}

func clampCount(v int) int {
	if v < 1 {
		return 1
	}
	return v
}
