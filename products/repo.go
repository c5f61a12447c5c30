package products

import "errors"

// ErrNotFound is returned when no product matches the lookup.
var ErrNotFound = errors.New("product not found")

// ListQuery is the admin listing filter. Search matches name, description and
// category case-insensitively.
type ListQuery struct {
	Page   int
	Limit  int
	Search string
}

// Pagination echoes the applied paging parameters back to the client.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// ListResult is one page of products plus its pagination envelope.
type ListResult struct {
	Products   []*Product `json:"products"`
	Pagination Pagination `json:"pagination"`
}

type Repo interface {
	Create(product *Product) error
	GetByID(id string) (*Product, error)
	List() ([]*Product, error)
	Search(q ListQuery) (ListResult, error)
	Update(product *Product) error
	Delete(id string) error
	Count() (int64, error)
}

// Normalize clamps paging parameters to sane values.
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 10
	}
	return q
}
