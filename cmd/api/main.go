package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pdv_payments/internal/adapter/http/handlers"
	"pdv_payments/internal/adapter/http/routes"
	"pdv_payments/internal/adapter/persistence/repository"
	"pdv_payments/internal/config"
	"pdv_payments/internal/infrastructure/database"
	"pdv_payments/internal/infrastructure/logging"
	"pdv_payments/internal/infrastructure/metrics"
	"pdv_payments/internal/infrastructure/payments"
	"pdv_payments/internal/infrastructure/tracing"
	"pdv_payments/internal/usecase"
	"pdv_payments/internal/usecase/interfaces"

	_ "github.com/joho/godotenv/autoload"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// @title           PDV Payments API
// @version         1.0
// @description     PIX and boleto payment orders for the point of sale.

// @host localhost:8080

// @BasePath  /v1

const (
	mockPaidAfterChecks = 3
	shutdownTimeout     = 15 * time.Second
)

func main() {
	envFile := flag.String("env-file", "", "optional dotenv file loaded before the environment")
	flag.Parse()

	if err := run(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "pdv_payments: %v\n", err)
		os.Exit(1)
	}
}

func run(envFile string) error {
	if err := config.LoadFile(envFile); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	log := logrus.NewEntry(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(cfg.TracingEnabled)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()
	metrics.Register()

	clock := clockwork.NewRealClock()

	selector, err := buildGatewayRouter(cfg, clock, log)
	if err != nil {
		return err
	}

	repo, closeRepo, err := buildRepository(ctx, cfg.Persistence, log)
	if err != nil {
		return err
	}
	defer closeRepo()

	persister := usecase.NewPersister(repo, cfg.Persistence.BufferSize, log)
	orders := usecase.NewPaymentOrderUseCase(selector, repo, cfg.Lifecycle,
		usecase.WithClock(clock),
		usecase.WithLogger(log),
		usecase.WithPersister(persister),
	)

	router := routes.NewRouter(handlers.NewPaymentOrderHandler(orders, clock, log), log)
	serveErr := routes.Run(ctx, router, cfg.HTTPPort, log)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := orders.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("[main] payment orders did not drain in time")
	}
	return serveErr
}

func buildGatewayRouter(cfg config.Config, clock clockwork.Clock, log *logrus.Entry) (*payments.GatewayRouter, error) {
	gc := cfg.Gateway
	normalizer := payments.NewResponseNormalizer(clock, cfg.Lifecycle.DefaultExpiry, log)

	if gc.MockMode {
		mock := payments.NewMockGateway(normalizer, clock, mockPaidAfterChecks, log)
		return payments.NewGatewayRouter(payments.ProviderMock, "", mock)
	}

	var gateways []interfaces.IPaymentGateway
	transportOpts := []payments.TransportOption{payments.WithTimeout(gc.Timeout), payments.WithLogger(log)}

	if gc.PagarmeAPIKey != "" {
		g, err := payments.NewPagarmeGateway(gc.PagarmeAPIKey, gc.PagarmeBaseURL, normalizer, transportOpts...)
		if err != nil {
			return nil, fmt.Errorf("pagarme gateway: %w", err)
		}
		gateways = append(gateways, g)
	}
	if gc.PagBankToken != "" {
		g, err := payments.NewPagBankGateway(gc.PagBankToken, gc.PagBankBaseURL, normalizer, transportOpts...)
		if err != nil {
			return nil, fmt.Errorf("pagbank gateway: %w", err)
		}
		gateways = append(gateways, g)
	}
	if gc.MercadoPagoAccessToken != "" {
		g, err := payments.NewMercadoPagoGateway(gc.MercadoPagoAccessToken, normalizer, gc.Timeout, log)
		if err != nil {
			return nil, fmt.Errorf("mercadopago gateway: %w", err)
		}
		gateways = append(gateways, g)
	}
	if len(gateways) == 0 {
		log.Warn("[main] no gateway credentials configured")
	}

	return payments.NewGatewayRouter(gc.DefaultProvider, gc.RoutingRules, gateways...)
}

func buildRepository(ctx context.Context, pc config.PersistenceConfig, log *logrus.Entry) (interfaces.IPaymentOrderRepository, func(), error) {
	log = log.WithField("driver", pc.Driver)
	noop := func() {}

	switch pc.Driver {
	case config.PersistenceMemory:
		log.Warn("[main] orders are kept in memory only")
		return repository.NewPaymentOrderMemoryRepository(), noop, nil

	case config.PersistencePostgres:
		db, err := database.ConnectPostgres(ctx, pc.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		repo := repository.NewPaymentOrderPostgresRepository(db, pc.OrdersTable)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("postgres schema: %w", err)
		}
		log.Info("[main] postgres repository ready")
		return repo, func() { _ = db.Close() }, nil

	default:
		ddb, err := database.ConnectDynamoDB(ctx, pc)
		if err != nil {
			return nil, nil, fmt.Errorf("dynamodb: %w", err)
		}
		log.WithField("table", pc.OrdersTable).Info("[main] dynamodb repository ready")
		return repository.NewPaymentOrderDynamoRepository(ddb, pc.OrdersTable), noop, nil
	}
}
