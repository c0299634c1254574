package handler

import (
	"net/http"

	"github.com/gmplanet/stock-market/internal/logger"
	"github.com/gmplanet/stock-market/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AdminUserHandler struct {
	uc *usecase.UserUsecase
}

func NewAdminUserHandler(uc *usecase.UserUsecase) *AdminUserHandler {
	return &AdminUserHandler{uc: uc}
}

func (h *AdminUserHandler) RegisterRoutes(admin *echo.Group) {
	admin.POST("/users/:id/force-logout", h.forceLogout)
}

func (h *AdminUserHandler) forceLogout(c echo.Context) error {
	userID, ok := paramID(c, "id")
	if !ok || userID <= 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user_id"})
	}

	res, err := h.uc.ForceLogout(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	logger.FromEcho(c).Info("force logout",
		zap.Int64("target_user_id", res.UserID),
		zap.Int("token_version", res.NewTokenVersion),
	)
	return c.JSON(http.StatusOK, res)
}
