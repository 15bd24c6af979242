package repository

import (
	"context"
	"errors"

	"github.com/example/storefront/pkg/models"
	"gorm.io/gorm"
)

type ProductRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

// ProductFilter narrows the storefront listing.
type ProductFilter struct {
	CategoryID string
	Search     string
	Featured   bool
	Page       int
	PageSize   int
}

// ProductSummary decorates a product with its review aggregate.
type ProductSummary struct {
	models.Product
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

func (r *ProductRepo) List(ctx context.Context, filter ProductFilter) ([]ProductSummary, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 12
	}

	query := r.db.WithContext(ctx).Model(&models.Product{}).Where("is_active = ?", true)
	if filter.CategoryID != "" {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Featured {
		query = query.Where("is_featured = ?", true)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", pattern, pattern)
	}

	var total int64
	query.Count(&total)

	var products []models.Product
	offset := (filter.Page - 1) * filter.PageSize
	err := query.
		Preload("Category").
		Preload("Variants").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("created_at DESC").
		Offset(offset).Limit(filter.PageSize).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]ProductSummary, len(products))
	for i, p := range products {
		avg, count, err := r.reviewAggregate(ctx, p.ID)
		if err != nil {
			return nil, 0, err
		}
		summaries[i] = ProductSummary{Product: p, AverageRating: avg, ReviewCount: count}
	}
	return summaries, total, nil
}

func (r *ProductRepo) reviewAggregate(ctx context.Context, productID string) (float64, int, error) {
	type agg struct {
		Avg   float64
		Count int
	}
	var a agg
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&a).Error
	return a.Avg, a.Count, err
}

func (r *ProductRepo) GetByID(ctx context.Context, productID string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Variants").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ?", productID).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *ProductRepo) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *ProductRepo) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *ProductRepo) Delete(ctx context.Context, productID string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", productID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// SetVariantStock is the admin restock action; stock is replaced, not
// adjusted, so it cannot go negative.
func (r *ProductRepo) SetVariantStock(ctx context.Context, variantID string, stock int) error {
	if stock < 0 {
		return errors.New("stock cannot be negative")
	}
	res := r.db.WithContext(ctx).Model(&models.ProductVariant{}).
		Where("id = ?", variantID).
		Update("stock", stock)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVariantNotFound
	}
	return nil
}

func (r *ProductRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *ProductRepo) AddReview(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *ProductRepo) ListReviews(ctx context.Context, productID string) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}
