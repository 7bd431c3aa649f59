package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/fadehouse/compensation-service/internal/client"
	"github.com/fadehouse/compensation-service/internal/config"
	"github.com/fadehouse/compensation-service/internal/delivery/billing"
	httpdelivery "github.com/fadehouse/compensation-service/internal/delivery/http"
	"github.com/fadehouse/compensation-service/internal/domain"
	publisher "github.com/fadehouse/compensation-service/internal/infrastructure/kafka"
	"github.com/fadehouse/compensation-service/internal/infrastructure/metrics"
	"github.com/fadehouse/compensation-service/internal/infrastructure/migrate"
	"github.com/fadehouse/compensation-service/internal/infrastructure/postgres"
	"github.com/fadehouse/compensation-service/internal/infrastructure/postgres/repository"
	"github.com/fadehouse/compensation-service/internal/usecase"
	"github.com/fadehouse/compensation-service/internal/usecase/commission"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()
	// Init database
	db := postgres.MustInitDB(cfg)

	if cfg.CompensationDB.MigrationsPath != "" {
		if err := migrate.RunMigrations(db, cfg.CompensationDB.MigrationsPath); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	brokers := []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)}
	pub := publisher.NewDefaultKafkaPublisher(brokers)
	sub := publisher.NewDefaultKafkaSubscriber(brokers)

	// Init identity client: member directory + compensation plan source
	identityClient, err := client.NewHTTPIdentityClient(
		fmt.Sprintf("http://%s:%s", cfg.IdentityService.Host, cfg.IdentityService.Port),
	)
	if err != nil {
		log.Fatalf("failed to init identity client: %v", err)
	}

	// Init repos
	matrixRepo := repository.NewDefaultMatrixRepository(db)
	rankRepo := repository.NewDefaultRankRepository(db)
	ledgerRepo := repository.NewDefaultLedgerRepository(db)
	processedRepo := repository.NewDefaultProcessedEventRepository(db)
	payoutRepo := repository.NewDefaultPayoutRepository(db)
	txManager := repository.NewGormTxManager(db, cfg.Engine.MaxTxRetries, cfg.Engine.RetryBackoff)

	compMetrics := metrics.NewCompensationMetrics()

	// Init usecases
	matrixUsecase := usecase.NewDefaultMatrixUsecase(matrixRepo, identityClient, txManager, compMetrics)
	rankUsecase := usecase.NewDefaultRankUsecase(rankRepo, domain.DefaultRankModel(), txManager, compMetrics)
	ledgerUsecase := usecase.NewDefaultLedgerUsecase(ledgerRepo, txManager)
	payoutUsecase := usecase.NewDefaultPayoutUsecase(payoutRepo, ledgerRepo, identityClient, txManager, compMetrics)
	commissionUsecase := commission.NewDefaultCommissionUsecase(
		matrixUsecase,
		rankUsecase,
		identityClient,
		identityClient,
		ledgerRepo,
		processedRepo,
		txManager,
		pub,
		cfg.KafkaService.CommissionTopic,
		compMetrics,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Billing events consumer
	consumer := billing.NewConsumer(sub, commissionUsecase, cfg.KafkaService.BillingTopic, cfg.KafkaService.GroupID)
	go func() {
		if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
			slog.Error("billing consumer stopped", "error", err.Error())
		}
	}()

	// HTTP API
	handler := httpdelivery.NewHandler(
		matrixUsecase,
		rankUsecase,
		commissionUsecase,
		ledgerUsecase,
		payoutUsecase,
		identityClient,
	)
	router := httpdelivery.NewRouter(handler)

	addr := fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port)
	go func() {
		slog.Info("compensation service listening", "addr", addr, "env", cfg.Env)
		if err := router.Start(addr); err != nil {
			slog.Error("http server stopped", "error", err.Error())
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	if err := router.Shutdown(context.Background()); err != nil {
		slog.Error("http shutdown failed", "error", err.Error())
		os.Exit(1)
	}
}
