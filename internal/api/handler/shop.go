// 文件路径: internal/api/handler/shop.go
// 模块说明: 商店目录、购买与购买记录接口；目录修改仅管理员可用（由路由守卫保证）。
package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/HardPulse/mazpan/internal/repository"
	"github.com/HardPulse/mazpan/internal/service"
	"github.com/HardPulse/mazpan/internal/support/i18n"
)

// ShopHandler serves the catalog and purchases.
type ShopHandler struct {
	shop   service.ShopService
	i18n   *i18n.Manager
	logger *slog.Logger
}

func NewShopHandler(shop service.ShopService, i18nMgr *i18n.Manager, logger *slog.Logger) *ShopHandler {
	return &ShopHandler{shop: shop, i18n: i18nMgr, logger: logger}
}

func (h *ShopHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	respondServiceError(r.Context(), w, h.logger, h.i18n, err)
}

func (h *ShopHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.shop.ListCategories(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (h *ShopHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input service.CategoryInput
	if err := decodeJSON(r, &input); err != nil {
		respondBadRequest(r.Context(), w, h.i18n)
		return
	}
	category, err := h.shop.CreateCategory(r.Context(), input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondMessage(r.Context(), w, http.StatusCreated, "message.category_created", h.i18n, map[string]any{"category": category})
}

func (h *ShopHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	removed, err := h.shop.DeleteCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondMessage(r.Context(), w, http.StatusOK, "message.category_deleted", h.i18n, map[string]any{"products_deleted": removed}, removed)
}

func (h *ShopHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.shop.ListProducts(r.Context(), r.URL.Query().Get("category_id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"products": products})
}

// GetProduct includes the stock content for admins only.
func (h *ShopHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	withContent := principalOf(r).Role == repository.RoleAdmin
	product, err := h.shop.GetProduct(r.Context(), chi.URLParam(r, "id"), withContent)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"product": product})
}

func (h *ShopHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input service.CreateProductInput
	if err := decodeJSON(r, &input); err != nil {
		respondBadRequest(r.Context(), w, h.i18n)
		return
	}
	product, err := h.shop.CreateProduct(r.Context(), input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondMessage(r.Context(), w, http.StatusCreated, "message.product_created", h.i18n, map[string]any{"product": product})
}

func (h *ShopHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var input service.UpdateProductInput
	if err := decodeJSON(r, &input); err != nil {
		respondBadRequest(r.Context(), w, h.i18n)
		return
	}
	product, err := h.shop.UpdateProduct(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondMessage(r.Context(), w, http.StatusOK, "message.product_updated", h.i18n, map[string]any{"product": product})
}

func (h *ShopHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.shop.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	respondMessage(r.Context(), w, http.StatusOK, "message.product_deleted", h.i18n, nil)
}

// Purchase handles POST /api/shop/products/{id}/purchase.
func (h *ShopHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	input := service.PurchaseInput{Quantity: 1}
	// 空请求体按购买 1 件处理。
	if err := decodeJSON(r, &input); err != nil && !errors.Is(err, io.EOF) {
		respondBadRequest(r.Context(), w, h.i18n)
		return
	}
	result, err := h.shop.Purchase(r.Context(), principalOf(r).ID, chi.URLParam(r, "id"), input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	RespondSuccessI18n(r.Context(), w, "message.purchase_completed", h.i18n, result)
}

func (h *ShopHandler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.shop.ListPurchases(r.Context(), principalOf(r).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"purchases": purchases})
}
