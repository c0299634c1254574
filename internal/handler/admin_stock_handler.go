package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gmplanet/stock-market/internal/usecase"

	"github.com/labstack/echo/v4"
)

const maxImportSize = 10 << 20

// POST /admin/warehouses
type WarehouseRequest struct {
	Name     string  `json:"name"`
	Address  *string `json:"address"`
	Priority *int    `json:"priority"`
	IsActive *bool   `json:"is_active"`
}

// PUT /admin/stock。quantityは文字列でも数値でもよい（そのまま解釈に回す）。
type StockUpdateRequest struct {
	Warehouse   string          `json:"warehouse"`
	WarehouseID int64           `json:"warehouse_id"`
	ProductID   int64           `json:"product_id"`
	SKU         string          `json:"sku"`
	Quantity    json.RawMessage `json:"quantity"`
	Reason      string          `json:"reason"`
	Strict      *bool           `json:"strict"`
}

// /admin/warehouses, /admin/stock, /admin/import, /admin/export
type AdminStockHandler struct {
	warehouses *usecase.WarehouseUsecase
	stocks     *usecase.StockUsecase
	catalog    *usecase.CatalogImportUsecase
}

func NewAdminStockHandler(
	warehouses *usecase.WarehouseUsecase,
	stocks *usecase.StockUsecase,
	catalog *usecase.CatalogImportUsecase,
) *AdminStockHandler {
	return &AdminStockHandler{warehouses: warehouses, stocks: stocks, catalog: catalog}
}

// admin は認証とADMIN限定済みのグループ
func (h *AdminStockHandler) RegisterRoutes(admin *echo.Group) {
	admin.GET("/warehouses", h.listWarehouses)
	admin.POST("/warehouses", h.upsertWarehouse)
	admin.GET("/stock/:product_id", h.productStock)
	admin.PUT("/stock", h.setQuantity)
	admin.POST("/import", h.importCSV)
	admin.GET("/export", h.exportCSV)
}

func (h *AdminStockHandler) listWarehouses(c echo.Context) error {
	out, err := h.warehouses.ListActiveOrdered(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminStockHandler) upsertWarehouse(c echo.Context) error {
	var req WarehouseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	w, err := h.warehouses.AdminUpsert(c.Request().Context(), adminID, usecase.WarehouseInput{
		Name:     req.Name,
		Address:  req.Address,
		Priority: req.Priority,
		IsActive: req.IsActive,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, w)
}

func (h *AdminStockHandler) productStock(c echo.Context) error {
	productID, ok := paramID(c, "product_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
	}

	out, err := h.stocks.ProductStock(c.Request().Context(), productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminStockHandler) setQuantity(c echo.Context) error {
	var req StockUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.stocks.SetQuantity(c.Request().Context(), adminID, usecase.SetQuantityInput{
		Warehouse:   req.Warehouse,
		WarehouseID: req.WarehouseID,
		ProductID:   req.ProductID,
		SKU:         req.SKU,
		Quantity:    rawQuantity(req.Quantity),
		Reason:      req.Reason,
		Strict:      req.Strict,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// "12" -> 12, 12 -> 12, null -> ""
func rawQuantity(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func (h *AdminStockHandler) importCSV(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "file required"})
	}
	if fh.Size > maxImportSize {
		return c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "file too large"})
	}
	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid file"})
	}
	defer f.Close()

	out, err := h.catalog.Import(c.Request().Context(), adminID, f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminStockHandler) exportCSV(c echo.Context) error {
	var buf bytes.Buffer
	if err := h.catalog.Export(c.Request().Context(), &buf); err != nil {
		return writeError(c, err)
	}

	name := "catalog-" + time.Now().UTC().Format("20060102-150405") + ".csv"
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
