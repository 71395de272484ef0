package main

import (
	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	infraSession "app/internal/infra/session"
	"app/internal/payment"
	"app/internal/server"
	"app/internal/usecase"
	"app/internal/validator"

	"github.com/joho/godotenv"
)

func main() {
	//.envは無くてもよい（本番は環境変数直）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		panic(err)
	}
	if err := gormDB.AutoMigrate(
		&model.Category{},
		&model.Product{},
		&model.ProductVariant{},
		&model.Order{},
		&model.OrderItem{},
		&model.SessionRecord{},
	); err != nil {
		panic(err)
	}

	//Repository（GORM実装）生成
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	sessionStore := infraSession.NewGormStore(gormDB)

	//決済ゲートウェイ
	gateway := payment.NewClient(cfg.ZarinpalMerchantID, cfg.ZarinpalAPIURL, cfg.ZarinpalStartPayURL)

	//Usecase生成
	productUC := usecase.NewProductUsecase(productRepo, categoryRepo)
	cartUC := usecase.NewCartUsecase(productRepo)
	checkoutUC := usecase.NewCheckoutUsecase(validator.NewCheckoutValidator())
	paymentUC := usecase.NewPaymentUsecase(gateway, orderRepo, cfg.PaymentCallbackURL)

	//Handler生成
	productH := handler.NewProductHandler(productUC)
	cartH := handler.NewCartHandler(cartUC)
	checkoutH := handler.NewCheckoutHandler(checkoutUC, cartUC, paymentUC)

	//Server起動
	e := server.New(cfg, sessionStore)
	server.RegisterRoutes(e, productH, cartH, checkoutH)

	addr := ":" + cfg.Port
	if cfg.Port[0] == ':' {
		addr = cfg.Port
	}

	if err := server.Start(e, addr); err != nil {
		panic(err)
	}
}
