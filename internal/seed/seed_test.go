package seed

import (
	"testing"

	"github.com/aulapay/aulapay/internal/config"
	pricingconfigdomain "github.com/aulapay/aulapay/internal/pricingconfig/domain"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestEnsurePricingConfig_SeedsDefaults(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&pricingconfigdomain.PricingConfig{}))

	require.NoError(t, EnsurePricingConfig(db, config.DefaultNotificationConfig()))

	var cfg pricingconfigdomain.PricingConfig
	require.NoError(t, db.Where("id = ?", pricingconfigdomain.SingletonID).First(&cfg).Error)
	assert.True(t, cfg.ClubPrice.Equal(decimal.NewFromInt(50000)))
	assert.True(t, cfg.SiblingsMultiplePrice.Equal(decimal.NewFromInt(38000)))
	assert.True(t, cfg.CertificationDiscountActive)
	assert.Equal(t, 10, cfg.PaymentDueDay)
	assert.Equal(t, 3, cfg.ReminderLeadDays)
}

func TestEnsurePricingConfig_LeavesExistingRowAlone(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&pricingconfigdomain.PricingConfig{}))

	require.NoError(t, EnsurePricingConfig(db, config.DefaultNotificationConfig()))

	require.NoError(t, db.Model(&pricingconfigdomain.PricingConfig{}).
		Where("id = ?", pricingconfigdomain.SingletonID).
		Update("club_price", decimal.NewFromInt(60000)).Error)

	require.NoError(t, EnsurePricingConfig(db, config.DefaultNotificationConfig()))

	var cfg pricingconfigdomain.PricingConfig
	require.NoError(t, db.Where("id = ?", pricingconfigdomain.SingletonID).First(&cfg).Error)
	assert.True(t, cfg.ClubPrice.Equal(decimal.NewFromInt(60000)))
}
