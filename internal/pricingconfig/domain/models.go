package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// SingletonID is the fixed primary key of the single pricing configuration row.
const SingletonID = "singleton"

type PricingConfig struct {
	ID                           string          `json:"id" gorm:"primaryKey;type:text"`
	ClubPrice                    decimal.Decimal `json:"club_price" gorm:"type:decimal(12,2);not null"`
	SpecializedCoursePrice       decimal.Decimal `json:"specialized_course_price" gorm:"type:decimal(12,2);not null"`
	MultipleActivitiesPrice      decimal.Decimal `json:"multiple_activities_price" gorm:"type:decimal(12,2);not null"`
	SiblingsBasicPrice           decimal.Decimal `json:"siblings_basic_price" gorm:"type:decimal(12,2);not null"`
	SiblingsMultiplePrice        decimal.Decimal `json:"siblings_multiple_price" gorm:"type:decimal(12,2);not null"`
	CertificationDiscountPercent decimal.Decimal `json:"certification_discount_percent" gorm:"type:decimal(5,2);not null"`
	CertificationDiscountActive  bool            `json:"certification_discount_active" gorm:"not null;default:true"`
	PaymentDueDay                int             `json:"payment_due_day" gorm:"not null;default:10"`
	ReminderLeadDays             int             `json:"reminder_lead_days" gorm:"not null;default:3"`
	NotificationsEnabled         bool            `json:"notifications_enabled" gorm:"not null;default:true"`
	CreatedAt                    time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt                    time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (PricingConfig) TableName() string { return "pricing_configurations" }

// ConfigChange is an append-only audit record of a configuration update.
// Before and After hold snapshots of the changed fields only.
type ConfigChange struct {
	ID        snowflake.ID      `json:"id" gorm:"primaryKey"`
	ConfigID  string            `json:"config_id" gorm:"type:text;not null;index"`
	AdminID   string            `json:"admin_id" gorm:"type:text;not null"`
	Reason    *string           `json:"reason,omitempty" gorm:"type:text"`
	Before    datatypes.JSONMap `json:"before" gorm:"type:jsonb"`
	After     datatypes.JSONMap `json:"after" gorm:"type:jsonb"`
	CreatedAt time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

func (ConfigChange) TableName() string { return "pricing_configuration_changes" }
