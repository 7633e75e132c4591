package handler

import (
	"net/http"

	"shopverse/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /accountのHTTP。プロフィール更新。
type AccountHandler struct {
	uc *usecase.AuthUsecase
}

// DI
func NewAccountHandler(uc *usecase.AuthUsecase) *AccountHandler {
	return &AccountHandler{uc: uc}
}

// セッション必須のgroupに登録する
func (h *AccountHandler) RegisterRoutes(g *echo.Group) {
	g.PATCH("/profile", h.updateProfile)
}

func (h *AccountHandler) updateProfile(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req usecase.UpdateProfileInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	user, err := h.uc.UpdateProfile(c.Request().Context(), userID, req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"user": user})
}
