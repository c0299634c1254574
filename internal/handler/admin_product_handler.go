package handler

import (
	"net/http"

	"github.com/gmplanet/stock-market/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// 価格は "12.50" でも 12.5 でも受け付ける
type ProductRequest struct {
	SKU          string                     `json:"sku"`
	CategoryID   int64                      `json:"category_id"`
	Price        decimal.Decimal            `json:"price"`
	ComparePrice *decimal.Decimal           `json:"compare_price"`
	IsActive     bool                       `json:"is_active"`
	IsFeatured   bool                       `json:"is_featured"`
	Translations []usecase.TranslationInput `json:"translations"`
}

type CategoryRequest struct {
	ParentID     *int64                     `json:"parent_id"`
	IsActive     bool                       `json:"is_active"`
	Translations []usecase.TranslationInput `json:"translations"`
}

// /admin/products と /admin/categories をまとめる
type AdminProductHandler struct {
	uc *usecase.CatalogUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.CatalogUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

// adminを登録
func (h *AdminProductHandler) RegisterRoutes(admin *echo.Group) {
	admin.POST("/products", h.createProduct)
	admin.PUT("/products/:id", h.updateProduct)
	admin.DELETE("/products/:id", h.deleteProduct)
	admin.POST("/categories", h.createCategory)
}

func (req ProductRequest) toInput() usecase.ProductInput {
	in := usecase.ProductInput{
		SKU:          req.SKU,
		CategoryID:   req.CategoryID,
		Price:        req.Price.String(),
		IsActive:     req.IsActive,
		IsFeatured:   req.IsFeatured,
		Translations: req.Translations,
	}
	if req.ComparePrice != nil {
		s := req.ComparePrice.String()
		in.ComparePrice = &s
	}
	return in
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	p, err := h.uc.AdminCreateProduct(c.Request().Context(), adminID, req.toInput())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, p)
}

func (h *AdminProductHandler) updateProduct(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	p, err := h.uc.AdminUpdateProduct(c.Request().Context(), adminID, id, req.toInput())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}

func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.AdminDeleteProduct(c.Request().Context(), adminID, id); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

func (h *AdminProductHandler) createCategory(c echo.Context) error {
	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	cat, err := h.uc.AdminCreateCategory(c.Request().Context(), adminID, usecase.CategoryInput{
		ParentID:     req.ParentID,
		IsActive:     req.IsActive,
		Translations: req.Translations,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, cat)
}
