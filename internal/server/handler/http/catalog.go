package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/GreenCart/internal/middleware"
	"github.com/atinyakov/GreenCart/internal/models"
	"github.com/atinyakov/GreenCart/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MenuService defines the directory and menu operations required by CatalogHandler.
type MenuService interface {
	States() []models.State
	SearchState(query string) (models.State, string, error)
	Dispensaries(state string) ([]models.Dispensary, error)
	Dispensary(id string) (models.Dispensary, error)
	Menu(ctx context.Context, dispensaryID string) ([]models.Product, error)
	Product(ctx context.Context, id string) (*models.Product, error)
	SaveProducts(ctx context.Context, products []models.Product) ([]models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// CatalogHandler serves the dispensary directory and menus.
type CatalogHandler struct {
	MenuService MenuService
	// Log records admin menu changes. Optional.
	Log *zap.Logger
}

func (h *CatalogHandler) logger() *zap.Logger {
	if h.Log == nil {
		return zap.NewNop()
	}
	return h.Log
}

// StateSearchResult is the response of a successful state search.
type StateSearchResult struct {
	State models.State `json:"state"`
	Route string       `json:"route"`
}

// States handles GET /api/states.
func (h *CatalogHandler) States(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.MenuService.States())
}

// SearchState handles GET /api/states/search?q=.
func (h *CatalogHandler) SearchState(w http.ResponseWriter, r *http.Request) {
	st, route, err := h.MenuService.SearchState(r.URL.Query().Get("q"))
	if err != nil {
		http.Error(w, "state not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, StateSearchResult{State: st, Route: route})
}

// Dispensaries handles GET /api/states/{state}/dispensaries.
func (h *CatalogHandler) Dispensaries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.MenuService.Dispensaries(chi.URLParam(r, "state"))
	if err != nil {
		http.Error(w, "state not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Dispensary handles GET /api/dispensaries/{id}.
func (h *CatalogHandler) Dispensary(w http.ResponseWriter, r *http.Request) {
	d, err := h.MenuService.Dispensary(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "dispensary not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Menu handles GET /api/dispensaries/{id}/products.
func (h *CatalogHandler) Menu(w http.ResponseWriter, r *http.Request) {
	products, err := h.MenuService.Menu(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, service.ErrNotFound) {
		http.Error(w, "dispensary not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// Product handles GET /api/products/{id}.
func (h *CatalogHandler) Product(w http.ResponseWriter, r *http.Request) {
	p, err := h.MenuService.Product(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, service.ErrNotFound) {
		http.Error(w, "product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// SaveProducts handles PUT /api/admin/products with a JSON array body.
func (h *CatalogHandler) SaveProducts(w http.ResponseWriter, r *http.Request) {
	var products []models.Product
	if err := json.NewDecoder(r.Body).Decode(&products); err != nil || len(products) == 0 {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	saved, err := h.MenuService.SaveProducts(r.Context(), products)
	if errors.Is(err, service.ErrInvalidInput) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.logger().Info("menu products saved",
		zap.String("user", middleware.GetUserIDFromContext(r.Context())),
		zap.Int("count", len(saved)))
	writeJSON(w, http.StatusOK, saved)
}

// DeleteProduct handles DELETE /api/admin/products/{id}.
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	err := h.MenuService.DeleteProduct(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, service.ErrNotFound) {
		http.Error(w, "product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.logger().Info("menu product deleted",
		zap.String("user", middleware.GetUserIDFromContext(r.Context())),
		zap.String("product", chi.URLParam(r, "id")))
	w.WriteHeader(http.StatusNoContent)
}
