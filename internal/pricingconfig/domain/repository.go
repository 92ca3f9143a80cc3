package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Get(ctx context.Context, db *gorm.DB) (*PricingConfig, error)
	Insert(ctx context.Context, db *gorm.DB, cfg *PricingConfig) error
	Save(ctx context.Context, db *gorm.DB, cfg *PricingConfig) error
	AppendChange(ctx context.Context, db *gorm.DB, change *ConfigChange) error
	ListChanges(ctx context.Context, db *gorm.DB, limit int) ([]ConfigChange, error)
}
