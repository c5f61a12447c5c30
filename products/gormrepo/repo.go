package gormrepo

import (
	"github.com/google/uuid"
	"github.com/lintangjaya/go-storefront/products"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var _ products.Repo = (*ProductRepo)(nil)

// ProductRepo persists products through GORM.
type ProductRepo struct {
	db *gorm.DB
}

func New(db *gorm.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

// Migrate creates or updates the products table.
func (r *ProductRepo) Migrate() error {
	return r.db.AutoMigrate(&products.Product{})
}

func (r *ProductRepo) Create(product *products.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.Create(product).Error; err != nil {
		return errors.Wrap(err, "[ProductRepo.Create] db.Create")
	}
	return nil
}

func (r *ProductRepo) GetByID(id string) (*products.Product, error) {
	var product products.Product
	if err := r.db.Where("id = ?", id).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, products.ErrNotFound
		}
		return nil, errors.Wrap(err, "[ProductRepo.GetByID] db.First")
	}
	return &product, nil
}

func (r *ProductRepo) List() ([]*products.Product, error) {
	var list []*products.Product
	if err := r.db.Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, errors.Wrap(err, "[ProductRepo.List] db.Find")
	}
	return list, nil
}

func (r *ProductRepo) Search(q products.ListQuery) (products.ListResult, error) {
	q = q.Normalize()

	query := r.db.Model(&products.Product{})
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		query = query.Where(
			"name LIKE ? OR description LIKE ? OR category LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return products.ListResult{}, errors.Wrap(err, "[ProductRepo.Search] db.Count")
	}

	var list []*products.Product
	if err := query.
		Order("created_at DESC").
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&list).Error; err != nil {
		return products.ListResult{}, errors.Wrap(err, "[ProductRepo.Search] db.Find")
	}

	return products.ListResult{
		Products: list,
		Pagination: products.Pagination{
			Page:  q.Page,
			Limit: q.Limit,
			Total: total,
			Pages: int((total + int64(q.Limit) - 1) / int64(q.Limit)),
		},
	}, nil
}

func (r *ProductRepo) Update(product *products.Product) error {
	res := r.db.Model(&products.Product{}).Where("id = ?", product.ID).Updates(map[string]any{
		"name":        product.Name,
		"description": product.Description,
		"price":       product.Price,
		"image":       product.Image,
		"stock":       product.Stock,
		"category":    product.Category,
	})
	if res.Error != nil {
		return errors.Wrap(res.Error, "[ProductRepo.Update] db.Updates")
	}
	if res.RowsAffected == 0 {
		return products.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) Delete(id string) error {
	res := r.db.Where("id = ?", id).Delete(&products.Product{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "[ProductRepo.Delete] db.Delete")
	}
	if res.RowsAffected == 0 {
		return products.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&products.Product{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "[ProductRepo.Count] db.Count")
	}
	return count, nil
}
