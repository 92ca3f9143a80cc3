package migration

import (
	"github.com/aulapay/aulapay/internal/config"
	enrollmentdomain "github.com/aulapay/aulapay/internal/enrollment/domain"
	pricingconfigdomain "github.com/aulapay/aulapay/internal/pricingconfig/domain"
	productdomain "github.com/aulapay/aulapay/internal/product/domain"
	"github.com/aulapay/aulapay/internal/seed"
	studentdomain "github.com/aulapay/aulapay/internal/student/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, notif *config.NotificationConfigHolder) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// The versioned migrations target Postgres; other dialects are
			// for local development and get the schema from the models.
			err := conn.AutoMigrate(
				&pricingconfigdomain.PricingConfig{},
				&pricingconfigdomain.ConfigChange{},
				&studentdomain.Student{},
				&productdomain.Product{},
				&enrollmentdomain.Enrollment{},
			)
			if err != nil {
				return err
			}
		}

		return seed.EnsurePricingConfig(conn, notif.Get())
	}),
)
