package main

import (
	"log"
	"time"

	"shopverse/internal/config"
	"shopverse/internal/domain/model"
	"shopverse/internal/handler"
	"shopverse/internal/infra/db"
	"shopverse/internal/infra/external"
	"shopverse/internal/infra/payment"
	infraRepo "shopverse/internal/infra/repository"
	"shopverse/internal/server"
	"shopverse/internal/usecase"
	"shopverse/internal/validator"

	"github.com/joho/godotenv"
)

func main() {
	//.envはあれば読む（本番は環境変数だけ）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Brand{},
		&model.Product{},
		&model.ProductImage{},
		&model.CartItem{},
		&model.Address{},
		&model.Order{},
		&model.OrderItem{},
		&model.Review{},
		&model.PasswordResetToken{},
	); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	//Repository（GORM実装）生成
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	brandRepo := infraRepo.NewBrandGormRepository(gormDB)
	cartItemRepo := infraRepo.NewCartItemGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	reviewRepo := infraRepo.NewReviewGormRepository(gormDB)
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	resetRepo := infraRepo.NewPasswordResetGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//外部カタログプロキシ
	insightsClient := external.NewInsightsClient(cfg.InsightsBaseURL, 5*time.Second)
	insights := usecase.NewInsightAggregator(insightsClient)

	//カード決済。キーが無ければシミュレーションに落ちる。
	var gateway usecase.CardGateway
	if sg := payment.NewStripeGateway(cfg.StripeSecretKey); sg != nil {
		gateway = sg
	}
	dispatcher := usecase.NewPaymentDispatcher(gateway, cfg.WalletClientID, cfg.FrontendURL)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(cfg, txManager, userRepo, resetRepo, validator.NewAuthValidator(userRepo))
	catalogUC := usecase.NewCatalogUsecase(productRepo, categoryRepo, brandRepo, reviewRepo, insights)
	reviewUC := usecase.NewReviewUsecase(txManager, productRepo, userRepo)
	cartUC := usecase.NewCartUsecase(cartItemRepo, productRepo)
	checkoutUC := usecase.NewCheckoutUsecase(txManager, dispatcher, cfg.TaxRate, cfg.ShippingFlatCents)
	orderUC := usecase.NewOrderUsecase(orderRepo, orderItemRepo, insights)
	addressUC := usecase.NewAddressUsecase(addressRepo)

	//Handler生成
	h := server.Handlers{
		Auth:     handler.NewAuthHandler(cfg, authUC),
		Account:  handler.NewAccountHandler(authUC),
		Product:  handler.NewProductHandler(catalogUC, reviewUC),
		Cart:     handler.NewCartHandler(cartUC),
		Checkout: handler.NewCheckoutHandler(checkoutUC),
		Order:    handler.NewOrderHandler(orderUC),
		Address:  handler.NewAddressHandler(addressUC),
	}

	//Server起動
	e := server.New(cfg, h)
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
