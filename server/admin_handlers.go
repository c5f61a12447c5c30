package server

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/lintangjaya/go-storefront/products"
	"github.com/lintangjaya/go-storefront/sessions"
	"github.com/pkg/errors"
)

// AdminDashboardHandler returns the headline counts for the admin panel.
func (s *Server) AdminDashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userCount, err := s.deps.Users.Count()
		if err != nil {
			s.respondServiceError(w, err)
			return
		}
		productCount, err := s.deps.Products.Count()
		if err != nil {
			s.respondServiceError(w, err)
			return
		}

		stats := map[string]any{
			"totalUsers":    userCount,
			"totalProducts": productCount,
		}
		if s.deps.AuditCounts != nil {
			auditCount, err := s.deps.AuditCounts.Count()
			if err != nil {
				s.respondServiceError(w, err)
				return
			}
			stats["totalAuditEvents"] = auditCount
		}

		respondJSON(w, http.StatusOK, map[string]any{"stats": stats})
	}
}

// AdminUsersHandler lists registered users with pagination. Users are
// projected to their session-safe shape; the password hash never leaves the
// repo layer.
func (s *Server) AdminUsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := queryInt(r, "page", 1)
		if page < 1 {
			page = 1
		}
		limit := queryInt(r, "limit", 10)
		if limit < 1 || limit > 100 {
			limit = 10
		}

		list, err := s.deps.Users.List((page-1)*limit, limit)
		if err != nil {
			s.respondServiceError(w, err)
			return
		}
		total, err := s.deps.Users.Count()
		if err != nil {
			s.respondServiceError(w, err)
			return
		}

		projected := make([]*sessions.User, 0, len(list))
		for _, u := range list {
			projected = append(projected, &sessions.User{
				ID:    u.ID,
				Name:  u.Name,
				Email: u.Email,
				Role:  u.Role,
			})
		}

		respondJSON(w, http.StatusOK, map[string]any{
			"users": projected,
			"pagination": map[string]any{
				"page":  page,
				"limit": limit,
				"total": total,
				"pages": (total + int64(limit) - 1) / int64(limit),
			},
		})
	}
}

// AdminProductsHandler lists products with pagination and search.
func (s *Server) AdminProductsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := products.ListQuery{
			Page:   queryInt(r, "page", 1),
			Limit:  queryInt(r, "limit", 10),
			Search: r.URL.Query().Get("search"),
		}

		result, err := s.deps.Products.Search(q)
		if err != nil {
			s.respondServiceError(w, err)
			return
		}
		if result.Products == nil {
			result.Products = []*products.Product{}
		}
		respondJSON(w, http.StatusOK, result)
	}
}

// AdminProductCreateHandler creates a product.
func (s *Server) AdminProductCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var product products.Product
		if err := decodeJSON(r, &product); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if err := product.Validate(); err != nil {
			s.respondServiceError(w, err)
			return
		}

		product.ID = uuid.New().String()
		now := s.nowTime()
		product.CreatedAt = now
		product.UpdatedAt = now

		if err := s.deps.Products.Create(&product); err != nil {
			s.respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusCreated, map[string]any{
			"message": "Product created successfully",
			"product": product,
		})
	}
}

// AdminProductUpdateHandler replaces a product's fields.
func (s *Server) AdminProductUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var product products.Product
		if err := decodeJSON(r, &product); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		product.ID = r.PathValue("id")
		if err := product.Validate(); err != nil {
			s.respondServiceError(w, err)
			return
		}
		product.UpdatedAt = s.nowTime()

		if err := s.deps.Products.Update(&product); err != nil {
			if errors.Is(err, products.ErrNotFound) {
				respondError(w, http.StatusNotFound, "Product not found")
				return
			}
			s.respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]any{
			"message": "Product updated successfully",
			"product": product,
		})
	}
}

// AdminProductDeleteHandler removes a product.
func (s *Server) AdminProductDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.deps.Products.Delete(r.PathValue("id")); err != nil {
			if errors.Is(err, products.ErrNotFound) {
				respondError(w, http.StatusNotFound, "Product not found")
				return
			}
			s.respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, map[string]any{"message": "Product deleted successfully"})
	}
}

func queryInt(r *http.Request, name string, defaultValue int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return n
}
