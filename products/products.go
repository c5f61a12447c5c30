package products

import (
	"net/url"
	"time"

	"github.com/lintangjaya/go-storefront/internal/errorz"
)

type Product struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Image       string    `json:"image"` // URL of the product image
	Stock       int       `json:"stock"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate checks the product fields, reporting every failure.
func (p *Product) Validate() error {
	ve := &errorz.ValidationError{}

	if p.Name == "" {
		ve.Add("name", "product name is required")
	}
	if p.Description == "" {
		ve.Add("description", "description is required")
	}
	if p.Price <= 0 {
		ve.Add("price", "price must be positive")
	}
	if p.Stock < 0 {
		ve.Add("stock", "stock must be non-negative")
	}
	if p.Category == "" {
		ve.Add("category", "category is required")
	}
	if p.Image == "" {
		ve.Add("image", "image is required")
	} else if u, err := url.Parse(p.Image); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		ve.Add("image", "image must be a valid URL")
	}

	return ve.ErrOrNil()
}
