package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type Service interface {
	Get(ctx context.Context) (*PricingConfig, error)
	Update(ctx context.Context, req UpdateRequest) (*UpdateResponse, error)
	History(ctx context.Context, limit int) ([]ConfigChange, error)
}

// FieldUpdates carries the fields an admin wants to change. Nil means untouched.
type FieldUpdates struct {
	ClubPrice                    *decimal.Decimal `json:"club_price"`
	SpecializedCoursePrice       *decimal.Decimal `json:"specialized_course_price"`
	MultipleActivitiesPrice      *decimal.Decimal `json:"multiple_activities_price"`
	SiblingsBasicPrice           *decimal.Decimal `json:"siblings_basic_price"`
	SiblingsMultiplePrice        *decimal.Decimal `json:"siblings_multiple_price"`
	CertificationDiscountPercent *decimal.Decimal `json:"certification_discount_percent"`
	CertificationDiscountActive  *bool            `json:"certification_discount_active"`
	PaymentDueDay                *int             `json:"payment_due_day"`
	ReminderLeadDays             *int             `json:"reminder_lead_days"`
	NotificationsEnabled         *bool            `json:"notifications_enabled"`
}

type UpdateRequest struct {
	AdminID string
	Reason  *string
	Changes FieldUpdates
}

// FieldChange reports a single applied field mutation.
type FieldChange struct {
	Field string `json:"field"`
	Old   any    `json:"old"`
	New   any    `json:"new"`
}

type UpdateResponse struct {
	Config  PricingConfig `json:"config"`
	Changes []FieldChange `json:"changes"`
}

var (
	ErrAdminRequired       = errors.New("admin_required")
	ErrNotFound            = errors.New("config_not_found")
	ErrNothingToUpdate     = errors.New("nothing_to_update")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidPercent      = errors.New("invalid_percent")
	ErrInvalidDueDay       = errors.New("invalid_due_day")
	ErrInvalidReminderDays = errors.New("invalid_reminder_days")
)
