package handler

import (
	"net/http"
	"time"

	"shopverse/internal/config"
	"shopverse/internal/middleware"
	"shopverse/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /authのHTTP。セッションはHTTP-only cookieで持つ。
type AuthHandler struct {
	cfg config.Config
	uc  *usecase.AuthUsecase
}

// DI
func NewAuthHandler(cfg config.Config, uc *usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{cfg: cfg, uc: uc}
}

type ResetRequestBody struct {
	Email string `json:"email"`
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/auth")

	g.POST("/register", h.register)
	g.POST("/login", h.login)
	g.POST("/logout", h.logout)
	g.GET("/session", h.session, middleware.OptionalSession(cfg))
	g.POST("/password/reset-request", h.resetRequest)
	g.POST("/password/reset", h.resetSubmit)
}

func (h *AuthHandler) register(c echo.Context) error {
	var req usecase.AuthRegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	res, err := h.uc.Register(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}

	h.setSessionCookie(c, res.SessionToken, res.MaxAge)

	return c.JSON(http.StatusCreated, map[string]interface{}{"user": res.User})
}

func (h *AuthHandler) login(c echo.Context) error {
	var req usecase.AuthLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	res, err := h.uc.Login(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}

	h.setSessionCookie(c, res.SessionToken, res.MaxAge)

	return c.JSON(http.StatusOK, map[string]interface{}{"user": res.User})
}

func (h *AuthHandler) logout(c echo.Context) error {
	//サーバ側に状態は無いのでcookieを消すだけ
	h.clearSessionCookie(c)

	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// ログイン中ならuser、未ログインならnullを返す（401にしない）
func (h *AuthHandler) session(c echo.Context) error {
	userID, _ := getUserIDFromContext(c)

	user, err := h.uc.ResolveSession(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"user": user})
}

func (h *AuthHandler) resetRequest(c echo.Context) error {
	var req ResetRequestBody
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return writeError(c, err)
	}

	//emailの存在に関わらず同じ応答
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (h *AuthHandler) resetSubmit(c echo.Context) error {
	var req usecase.ResetPasswordInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	res, err := h.uc.ResetPassword(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}

	//再設定成功でそのままログイン状態にする
	h.setSessionCookie(c, res.SessionToken, res.MaxAge)

	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (h *AuthHandler) setSessionCookie(c echo.Context, token string, maxAge int) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cfg.GoEnv == "prod",
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.cfg.GoEnv == "prod",
		SameSite: http.SameSiteLaxMode,
	})
}
