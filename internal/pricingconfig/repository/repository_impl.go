package repository

import (
	"context"
	"errors"

	pricingconfigdomain "github.com/aulapay/aulapay/internal/pricingconfig/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() pricingconfigdomain.Repository {
	return &repo{}
}

func (r *repo) Get(ctx context.Context, db *gorm.DB) (*pricingconfigdomain.PricingConfig, error) {
	var cfg pricingconfigdomain.PricingConfig
	err := db.WithContext(ctx).
		Where("id = ?", pricingconfigdomain.SingletonID).
		First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, cfg *pricingconfigdomain.PricingConfig) error {
	return db.WithContext(ctx).Create(cfg).Error
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, cfg *pricingconfigdomain.PricingConfig) error {
	return db.WithContext(ctx).Save(cfg).Error
}

func (r *repo) AppendChange(ctx context.Context, db *gorm.DB, change *pricingconfigdomain.ConfigChange) error {
	return db.WithContext(ctx).Create(change).Error
}

func (r *repo) ListChanges(ctx context.Context, db *gorm.DB, limit int) ([]pricingconfigdomain.ConfigChange, error) {
	var changes []pricingconfigdomain.ConfigChange
	err := db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&changes).Error
	if err != nil {
		return nil, err
	}
	return changes, nil
}
