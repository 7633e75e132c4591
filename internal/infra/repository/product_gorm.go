package repository

import (
	"context"
	"errors"

	"shopverse/internal/domain/model"
	repo "shopverse/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 画像はメイン画像が先頭に来るように読む
func withImages(db *gorm.DB) *gorm.DB {
	return db.Preload("Images", func(q *gorm.DB) *gorm.DB {
		return q.Order("is_primary DESC, position ASC")
	}).Preload("Category").Preload("Brand")
}

func (r *ProductGormRepository) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 48 {
		q.Limit = 16
	}

	base := r.db.WithContext(ctx).Model(&model.Product{})

	if q.Search != "" {
		pat := "%" + q.Search + "%"
		base = base.Where("products.name ILIKE ? OR products.description ILIKE ?", pat, pat)
	}
	if q.CategorySlug != "" {
		base = base.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", q.CategorySlug)
	}
	if q.BrandSlug != "" {
		base = base.Joins("JOIN brands ON brands.id = products.brand_id").
			Where("brands.slug = ?", q.BrandSlug)
	}
	if q.MinPriceCents != nil {
		base = base.Where("price_cents >= ?", *q.MinPriceCents)
	}
	if q.MaxPriceCents != nil {
		base = base.Where("price_cents <= ?", *q.MaxPriceCents)
	}
	if q.MinRating != nil {
		base = base.Where("rating >= ?", *q.MinRating)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	order := "created_at DESC"
	switch q.Sort {
	case "price-asc":
		order = "price_cents ASC"
	case "price-desc":
		order = "price_cents DESC"
	case "rating-desc":
		order = "rating DESC"
	case "newest":
		order = "created_at DESC"
	}

	var items []model.Product
	offset := (q.Page - 1) * q.Limit
	err := withImages(base.Session(&gorm.Session{})).
		Order(order).
		Limit(q.Limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return []model.Product{}, 0, err
	}

	return items, total, nil
}

func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := withImages(r.db.WithContext(ctx)).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductGormRepository) FindBySlug(ctx context.Context, slug string) (model.Product, error) {
	var p model.Product
	err := withImages(r.db.WithContext(ctx)).Where("slug = ?", slug).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductGormRepository) FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	var items []model.Product
	err := withImages(r.db.WithContext(ctx)).Where("id IN ?", ids).Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ProductGormRepository) ListByCategory(ctx context.Context, categoryID int64, excludeID int64, limit int) ([]model.Product, error) {
	var items []model.Product
	err := withImages(r.db.WithContext(ctx)).
		Where("category_id = ? AND id <> ?", categoryID, excludeID).
		Order("rating DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ProductGormRepository) UpdateRating(ctx context.Context, productID int64, rating float64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", productID).
		Update("rating", rating)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
