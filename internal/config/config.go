package config

import (
	"fmt"
	"os"
	"strconv"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5433）

	SessionSecret string // セッションcookie署名シークレット

	ZarinpalMerchantID  string // 決済ゲートウェイのマーチャントID
	ZarinpalAPIURL      string // ゲートウェイAPIのベースURL
	ZarinpalStartPayURL string // ホスト型決済ページのベースURL
	PaymentCallbackURL  string // verifyコールバックの絶対URL

	GoEnv string // dev/prod
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := mustAtoi("POSTGRES_PORT")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: os.Getenv("PORT"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     pgPort,

		SessionSecret: os.Getenv("SESSION_SECRET"),

		ZarinpalMerchantID:  os.Getenv("ZARINPAL_MERCHANT_ID"),
		ZarinpalAPIURL:      getenv("ZARINPAL_API_URL", "https://api.zarinpal.com/pg/v4"),
		ZarinpalStartPayURL: getenv("ZARINPAL_STARTPAY_URL", "https://www.zarinpal.com/pg/StartPay"),
		PaymentCallbackURL:  os.Getenv("PAYMENT_CALLBACK_URL"),

		GoEnv: os.Getenv("GO_ENV"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.PostgresUser == "" {
		return Config{}, fmt.Errorf("POSTGRES_USER is required")
	}
	if cfg.PostgresPassword == "" {
		return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if cfg.PostgresDB == "" {
		return Config{}, fmt.Errorf("POSTGRES_DB is required")
	}
	if cfg.PostgresHost == "" {
		return Config{}, fmt.Errorf("POSTGRES_HOST is required")
	}
	if cfg.SessionSecret == "" {
		return Config{}, fmt.Errorf("SESSION_SECRET is required")
	}
	if cfg.ZarinpalMerchantID == "" {
		return Config{}, fmt.Errorf("ZARINPAL_MERCHANT_ID is required")
	}
	if cfg.PaymentCallbackURL == "" {
		return Config{}, fmt.Errorf("PAYMENT_CALLBACK_URL is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}

	return cfg, nil
}

func mustAtoi(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
