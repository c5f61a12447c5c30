package repofake

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/lintangjaya/go-storefront/products"
)

var _ products.Repo = (*FakeProductRepo)(nil)

type FakeProductRepo struct {
	products map[string]*products.Product
	lock     sync.RWMutex
}

func NewFakeProductRepo() *FakeProductRepo {
	return &FakeProductRepo{
		products: make(map[string]*products.Product),
	}
}

func (pr *FakeProductRepo) Create(product *products.Product) error {
	pr.lock.Lock()
	defer pr.lock.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	stored := *product
	pr.products[stored.ID] = &stored
	return nil
}

func (pr *FakeProductRepo) GetByID(id string) (*products.Product, error) {
	pr.lock.RLock()
	defer pr.lock.RUnlock()

	stored, ok := pr.products[id]
	if !ok {
		return nil, products.ErrNotFound
	}
	p := *stored
	return &p, nil
}

func (pr *FakeProductRepo) List() ([]*products.Product, error) {
	pr.lock.RLock()
	defer pr.lock.RUnlock()

	return pr.sorted(""), nil
}

func (pr *FakeProductRepo) Search(q products.ListQuery) (products.ListResult, error) {
	pr.lock.RLock()
	defer pr.lock.RUnlock()

	q = q.Normalize()
	matched := pr.sorted(q.Search)
	total := int64(len(matched))
	pages := (len(matched) + q.Limit - 1) / q.Limit

	start := (q.Page - 1) * q.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}

	return products.ListResult{
		Products: matched[start:end],
		Pagination: products.Pagination{
			Page:  q.Page,
			Limit: q.Limit,
			Total: total,
			Pages: pages,
		},
	}, nil
}

func (pr *FakeProductRepo) Update(product *products.Product) error {
	pr.lock.Lock()
	defer pr.lock.Unlock()

	if _, ok := pr.products[product.ID]; !ok {
		return products.ErrNotFound
	}
	stored := *product
	pr.products[stored.ID] = &stored
	return nil
}

func (pr *FakeProductRepo) Delete(id string) error {
	pr.lock.Lock()
	defer pr.lock.Unlock()

	if _, ok := pr.products[id]; !ok {
		return products.ErrNotFound
	}
	delete(pr.products, id)
	return nil
}

func (pr *FakeProductRepo) Count() (int64, error) {
	pr.lock.RLock()
	defer pr.lock.RUnlock()

	return int64(len(pr.products)), nil
}

func (pr *FakeProductRepo) sorted(search string) []*products.Product {
	search = strings.ToLower(search)
	list := make([]*products.Product, 0, len(pr.products))
	for _, v := range pr.products {
		if search != "" && !matches(v, search) {
			continue
		}
		p := *v
		list = append(list, &p)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list
}

func matches(p *products.Product, search string) bool {
	return strings.Contains(strings.ToLower(p.Name), search) ||
		strings.Contains(strings.ToLower(p.Description), search) ||
		strings.Contains(strings.ToLower(p.Category), search)
}
