package seed

import (
	"context"
	"errors"
	"time"

	"github.com/aulapay/aulapay/internal/config"
	pricingconfigdomain "github.com/aulapay/aulapay/internal/pricingconfig/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EnsurePricingConfig seeds the singleton pricing configuration so the
// platform quotes prices out of the box. Existing rows are left untouched.
func EnsurePricingConfig(db *gorm.DB, notif config.NotificationConfig) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cfg pricingconfigdomain.PricingConfig
		err := tx.WithContext(ctx).
			Where("id = ?", pricingconfigdomain.SingletonID).
			First(&cfg).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()
		cfg = pricingconfigdomain.PricingConfig{
			ID:                           pricingconfigdomain.SingletonID,
			ClubPrice:                    decimal.NewFromInt(50000),
			SpecializedCoursePrice:       decimal.NewFromInt(55000),
			MultipleActivitiesPrice:      decimal.NewFromInt(44000),
			SiblingsBasicPrice:           decimal.NewFromInt(44000),
			SiblingsMultiplePrice:        decimal.NewFromInt(38000),
			CertificationDiscountPercent: decimal.NewFromInt(20),
			CertificationDiscountActive:  true,
			PaymentDueDay:                notif.PaymentDueDay,
			ReminderLeadDays:             notif.ReminderLeadDays,
			NotificationsEnabled:         notif.Enabled,
			CreatedAt:                    now,
			UpdatedAt:                    now,
		}
		return tx.WithContext(ctx).Create(&cfg).Error
	})
}
