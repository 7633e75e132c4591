package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	JWTSecret string // セッションJWTの署名シークレット

	FrontendURL string // フロントURL（CORSと決済リダイレクト先で使う）

	StripeSecretKey string // カード決済のAPIキー。空やプレースホルダならシミュレートに落ちる
	WalletClientID  string // ウォレット決済のクライアントID

	InsightsBaseURL string // 外部カタログプロキシのベースURL

	TaxRate           decimal.Decimal // 税率（例 0.085）
	ShippingFlatCents int64           // 送料（定額・セント）

	GoEnv string // dev/prod
}

// Loadは環境変数から読む。DB接続はdb.Connect側でDATABASE_URLを見る。
func Load() (Config, error) {
	cfg := Config{
		Port: getenv("PORT", "8080"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		FrontendURL: getenv("FRONTEND_URL", "http://localhost:3000"),

		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		WalletClientID:  os.Getenv("PAYPAL_CLIENT_ID"),

		InsightsBaseURL: getenv("INSIGHTS_BASE_URL", "https://dummyjson.com"),

		GoEnv: getenv("GO_ENV", "dev"),
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	taxRate, err := decimal.NewFromString(getenv("TAX_RATE", "0.085"))
	if err != nil {
		return Config{}, fmt.Errorf("TAX_RATE must be a decimal: %w", err)
	}
	cfg.TaxRate = taxRate

	shipping, err := strconv.ParseInt(getenv("SHIPPING_FLAT_CENTS", "1299"), 10, 64)
	if err != nil {
		return Config{}, fmt.Errorf("SHIPPING_FLAT_CENTS must be number: %w", err)
	}
	cfg.ShippingFlatCents = shipping

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
