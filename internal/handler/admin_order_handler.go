package handler

import (
	"net/http"

	"github.com/gmplanet/stock-market/internal/domain/model"
	"github.com/gmplanet/stock-market/internal/repository"
	"github.com/gmplanet/stock-market/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin/orders と /admin/audit-logs
type AdminOrderHandler struct {
	uc    *usecase.AdminOrderUsecase
	audit *usecase.AuditUsecase
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase, audit *usecase.AuditUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc, audit: audit}
}

type OrderStatusUpdateRequest struct {
	Status string `json:"status"`
}

func (h *AdminOrderHandler) RegisterRoutes(admin *echo.Group) {
	admin.GET("/orders", h.list)
	admin.PUT("/orders/:id/status", h.updateStatus)
	admin.GET("/audit-logs", h.auditLogs)
}

// GET /admin/orders?status=&user_id=&from=&to=&page=&limit=
func (h *AdminOrderHandler) list(c echo.Context) error {
	q := readQuery(c)
	f := repository.AdminOrderListFilter{
		Page:   q.Int("page", 1),
		Limit:  q.Int("limit", 50),
		Status: q.String("status"),
		UserID: q.ID("user_id"),
		From:   q.Time("from"),
		To:     q.Time("to"),
	}
	if err := q.Err(); err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) updateStatus(c echo.Context) error {
	orderID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req OrderStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	// 遷移と監査ログは同じtx
	out, err := h.uc.UpdateStatus(c.Request().Context(), adminID, orderID, usecase.AdminUpdateOrderStatusInput{Status: req.Status})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /admin/audit-logs
func (h *AdminOrderHandler) auditLogs(c echo.Context) error {
	q := readQuery(c)
	f := repository.AuditLogFilter{
		ActorUserID: q.ID("actor_user_id"),
		ResourceID:  q.ID("resource_id"),
		CreatedFrom: q.Time("from"),
		CreatedTo:   q.Time("to"),
		Limit:       q.Int("limit", 50),
		Offset:      q.Int("offset", 0),
	}
	if err := q.Err(); err != nil {
		return writeError(c, err)
	}
	if v := q.String("action"); v != "" {
		a := model.AuditAction(v)
		f.Action = &a
	}
	if v := q.String("resource_type"); v != "" {
		rt := model.AuditResourceType(v)
		f.ResourceType = &rt
	}

	logs, err := h.audit.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}
