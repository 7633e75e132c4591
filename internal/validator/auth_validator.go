package validator

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"shopverse/internal/repository"
	"shopverse/internal/usecase"
)

var (
	// 入力が不正
	errInvalidInput = usecase.NewHTTPError(http.StatusBadRequest, "invalid input")

	// emailが既に使用済み
	errEmailAlreadyUsed = usecase.NewHTTPError(http.StatusConflict, "email already registered")
)

type authValidator struct {
	users repository.UserRepository
}

// Usecaseは interface を依存注入
func NewAuthValidator(users repository.UserRepository) usecase.AuthValidator {
	return &authValidator{users: users}
}

// サインアップの入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, name string, email string, password string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	// 必須チェック
	if name == "" || email == "" || password == "" {
		return errInvalidInput
	}

	// email形式
	if !isEmailLike(email) {
		return errInvalidInput
	}

	// パスワード最低文字数（MVP: 8）
	if len(password) < 8 {
		return errInvalidInput
	}

	// email重複チェック（DBが必要）
	u, err := v.users.FindByEmail(ctx, strings.ToLower(email))
	if err == nil && u != nil {
		return errEmailAlreadyUsed
	}

	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	email = strings.TrimSpace(email)

	// 必須チェック
	if email == "" || password == "" {
		return errInvalidInput
	}

	// email形式
	if !isEmailLike(email) {
		return errInvalidInput
	}

	return nil
}

// 再設定リクエストの入力を検証
func (v *authValidator) ValidateResetRequest(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" || !isEmailLike(email) {
		return usecase.NewHTTPError(http.StatusBadRequest, "invalid email")
	}
	return nil
}

// 再設定実行の入力を検証
func (v *authValidator) ValidateResetSubmit(ctx context.Context, email string, token string, newPassword string) error {
	email = strings.TrimSpace(email)
	if email == "" || !isEmailLike(email) {
		return usecase.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(token) == "" {
		return usecase.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if len(newPassword) < 8 {
		return usecase.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return nil
}

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	re := regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	return re.MatchString(s)
}
