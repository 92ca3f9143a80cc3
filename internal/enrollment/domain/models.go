package domain

import (
	"fmt"
	"strings"
	"time"

	pricingdomain "github.com/aulapay/aulapay/internal/pricing/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

var (
	Pending PaymentStatus = "PENDING"
	Paid    PaymentStatus = "PAID"
	Overdue PaymentStatus = "OVERDUE"
)

func ParsePaymentStatus(value string) (PaymentStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case string(Pending):
		return Pending, nil
	case string(Paid):
		return Paid, nil
	case string(Overdue):
		return Overdue, nil
	default:
		return "", ErrInvalidStatus
	}
}

// PeriodOf renders a billing period as "YYYY-MM".
func PeriodOf(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// PreviousPeriod rolls one month back, crossing year boundaries.
func PreviousPeriod(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

// Enrollment is one student-product line for a billing period with the
// price frozen at creation time.
type Enrollment struct {
	ID             snowflake.ID               `json:"id" gorm:"primaryKey"`
	StudentID      snowflake.ID               `json:"student_id" gorm:"not null;index;uniqueIndex:ux_enrollments_line"`
	ProductID      snowflake.ID               `json:"product_id" gorm:"not null;uniqueIndex:ux_enrollments_line"`
	TutorID        snowflake.ID               `json:"tutor_id" gorm:"not null;index"`
	Year           int                        `json:"year" gorm:"not null"`
	Month          int                        `json:"month" gorm:"not null"`
	Period         string                     `json:"period" gorm:"type:text;not null;index;uniqueIndex:ux_enrollments_line"`
	StudentName    string                     `json:"student_name" gorm:"type:text;not null"`
	ProductName    string                     `json:"product_name" gorm:"type:text;not null"`
	BasePrice      decimal.Decimal            `json:"base_price" gorm:"type:decimal(12,2);not null"`
	FinalPrice     decimal.Decimal            `json:"final_price" gorm:"type:decimal(12,2);not null"`
	DiscountAmount decimal.Decimal            `json:"discount_amount" gorm:"type:decimal(12,2);not null"`
	DiscountKind   pricingdomain.DiscountKind `json:"discount_kind" gorm:"type:text;not null"`
	DiscountDetail string                     `json:"discount_detail" gorm:"type:text;not null"`
	Status         PaymentStatus              `json:"status" gorm:"type:text;not null;index"`
	PaidAt         *time.Time                 `json:"paid_at,omitempty"`
	PaymentMethod  *string                    `json:"payment_method,omitempty" gorm:"type:text"`
	ReceiptURL     *string                    `json:"receipt_url,omitempty" gorm:"type:text"`
	Notes          *string                    `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt      time.Time                  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP;index"`
	UpdatedAt      time.Time                  `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Enrollment) TableName() string { return "enrollments" }

// PeriodMetrics aggregates enrollment amounts and counts for one period.
type PeriodMetrics struct {
	Period        string          `json:"period"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PendingAmount decimal.Decimal `json:"pending_amount"`
	OverdueAmount decimal.Decimal `json:"overdue_amount"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidCount     int64           `json:"paid_count"`
	PendingCount  int64           `json:"pending_count"`
	OverdueCount  int64           `json:"overdue_count"`
	TotalCount    int64           `json:"total_count"`
}

// TutorTotals summarizes what a tutor owes and has paid for one period.
type TutorTotals struct {
	Period        string          `json:"period"`
	PendingAmount decimal.Decimal `json:"pending_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// StudentDiscountSummary groups discounted enrollments per student.
type StudentDiscountSummary struct {
	StudentID       snowflake.ID    `json:"student_id"`
	StudentName     string          `json:"student_name"`
	EnrollmentCount int64           `json:"enrollment_count"`
	DiscountTotal   decimal.Decimal `json:"discount_total"`
}
