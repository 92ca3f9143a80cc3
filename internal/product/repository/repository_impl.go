package repository

import (
	"context"
	"errors"

	productdomain "github.com/aulapay/aulapay/internal/product/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() productdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, product *productdomain.Product) error {
	return db.WithContext(ctx).Create(product).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*productdomain.Product, error) {
	var product productdomain.Product
	err := db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]productdomain.Product, error) {
	var products []productdomain.Product
	err := db.WithContext(ctx).Order("name ASC").Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}
