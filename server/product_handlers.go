package server

import (
	"net/http"

	"github.com/lintangjaya/go-storefront/products"
	"github.com/pkg/errors"
)

// ProductsListHandler returns the public catalogue.
func (s *Server) ProductsListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.deps.Products.List()
		if err != nil {
			s.respondServiceError(w, err)
			return
		}
		if list == nil {
			list = []*products.Product{}
		}
		respondJSON(w, http.StatusOK, list)
	}
}

// ProductByIDHandler returns a single product.
func (s *Server) ProductByIDHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, err := s.deps.Products.GetByID(r.PathValue("id"))
		if err != nil {
			if errors.Is(err, products.ErrNotFound) {
				respondError(w, http.StatusNotFound, "Product not found")
				return
			}
			s.respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, product)
	}
}
