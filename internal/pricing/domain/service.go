package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error)
}

// StudentSelection names one student and the activities to price for them.
type StudentSelection struct {
	StudentID  string   `json:"student_id"`
	ProductIDs []string `json:"product_ids"`
}

// QuoteRequest prices a set of selections for one tutor. Certified, when
// set, overrides the stored certification flag of every student in the
// request; when nil, each student's stored flag applies.
type QuoteRequest struct {
	TutorID   string             `json:"tutor_id"`
	Students  []StudentSelection `json:"students"`
	Certified *bool              `json:"certified,omitempty"`
}

type LineItem struct {
	StudentID      snowflake.ID    `json:"student_id"`
	StudentName    string          `json:"student_name"`
	ProductID      snowflake.ID    `json:"product_id"`
	ProductName    string          `json:"product_name"`
	BasePrice      decimal.Decimal `json:"base_price"`
	FinalPrice     decimal.Decimal `json:"final_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	DiscountKind   DiscountKind    `json:"discount_kind"`
	DiscountDetail string          `json:"discount_detail"`
}

type Summary struct {
	StudentCount                  int             `json:"student_count"`
	SiblingCount                  int             `json:"sibling_count"`
	LineItemCount                 int             `json:"line_item_count"`
	Subtotal                      decimal.Decimal `json:"subtotal"`
	DiscountTotal                 decimal.Decimal `json:"discount_total"`
	Total                         decimal.Decimal `json:"total"`
	HasSiblingsDiscount           bool            `json:"has_siblings_discount"`
	HasMultipleActivitiesDiscount bool            `json:"has_multiple_activities_discount"`
	HasCertificationDiscount      bool            `json:"has_certification_discount"`
}

type QuoteResponse struct {
	Lines   []LineItem `json:"lines"`
	Summary Summary    `json:"summary"`
}

var (
	ErrInvalidTutor     = errors.New("invalid_tutor")
	ErrStudentsRequired = errors.New("students_required")
	ErrProductsRequired = errors.New("products_required")
	ErrStudentNotFound  = errors.New("student_not_found")
	ErrStudentNotOwned  = errors.New("student_not_owned")
	ErrProductNotFound  = errors.New("product_not_found")
)
