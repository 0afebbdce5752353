package app

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/paylane/gateway/config"
	"github.com/paylane/gateway/events"
	"github.com/paylane/gateway/handlers"
	"github.com/paylane/gateway/middleware"
	"github.com/paylane/gateway/repositories"
	"github.com/paylane/gateway/repositories/postgres"
	"github.com/paylane/gateway/repositories/rediscache"
	"github.com/paylane/gateway/services/clients"
	"github.com/paylane/gateway/services/trust"
	"github.com/paylane/gateway/workerpool"
)

// Dependencies holds all application dependencies. This is the central
// wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config   *config.Config
	DB       *postgres.DB
	Cache    *rediscache.Cache
	Logger   *zap.Logger
	Validate *validator.Validate

	// Repositories
	Traders   repositories.TraderStore
	Merchants repositories.MerchantStore
	Payments  repositories.PaymentStore

	// Background work
	Workers *workerpool.Pool

	// Trust resolution
	Trust *trust.Service

	// Downstream clients
	TraderClient     *clients.TraderClient
	MerchantClient   *clients.MerchantClient
	BankClient       *clients.BankClient
	ExchangeClient   *clients.ExchangeClient
	RequisitesClient *clients.RequisitesClient
	PaymentsClient   *clients.PaymentsClient
	DeviceClient     *clients.DeviceClient

	// Events
	Producer *events.Producer

	// Pipeline
	AuthMiddleware *middleware.AuthMiddleware

	// Handlers
	HealthHandler  *handlers.HealthHandler
	PaymentHandler *handlers.PaymentHandler
	MethodHandler  *handlers.MethodHandler
	QuoteHandler   *handlers.QuoteHandler
	DeviceHandler  *handlers.DeviceHandler
	AdminHandler   *handlers.AdminHandler
	ProfileHandler *handlers.ProfileHandler
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:   cfg,
		Logger:   logger,
		Validate: validator.New(),
	}

	db, err := postgres.NewDB(cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.DB = db
	deps.Cache = rediscache.New(cfg.Redis, logger)

	deps.Traders = postgres.NewTraderRepository(db, logger)
	deps.Merchants = postgres.NewMerchantRepository(db, logger)
	deps.Payments = postgres.NewPaymentRepository(db, logger)

	deps.Workers = workerpool.New(cfg.Workers.Count, cfg.Workers.QueueSize, logger)

	deps.Trust = trust.NewService(deps.Cache, deps.Traders, deps.Merchants, deps.Workers, logger)

	deps.initClients(cfg, logger)
	deps.Producer = events.NewProducer(cfg.Kafka, logger)

	deps.AuthMiddleware = middleware.NewAuthMiddleware(
		middleware.NewTokenVerifier(cfg.JWT.Secret), deps.Trust, logger)

	deps.initHandlers(logger)

	logger.Info("all dependencies initialized")
	return deps, nil
}

// initClients creates one pooled client per downstream service
func (d *Dependencies) initClients(cfg *config.Config, logger *zap.Logger) {
	svc := cfg.Services
	d.TraderClient = clients.NewTraderClient(svc.TraderAddr, svc.TraderPoolSize, logger)
	d.MerchantClient = clients.NewMerchantClient(svc.MerchantAddr, svc.DefaultPoolSize, logger)
	d.BankClient = clients.NewBankClient(svc.BankAddr, svc.DefaultPoolSize, logger)
	d.ExchangeClient = clients.NewExchangeClient(svc.ExchangeAddr, svc.DefaultPoolSize, logger)
	d.RequisitesClient = clients.NewRequisitesClient(svc.RequisitesAddr, svc.RequisitesPoolSize, logger)
	d.PaymentsClient = clients.NewPaymentsClient(svc.PaymentsAddr, svc.DefaultPoolSize, logger)
	d.DeviceClient = clients.NewDeviceClient(svc.DeviceAddr, svc.DefaultPoolSize, logger)
}

// initHandlers creates the HTTP handlers over the wired services
func (d *Dependencies) initHandlers(logger *zap.Logger) {
	d.HealthHandler = handlers.NewHealthHandler(d.DB, d.Cache, logger)
	d.PaymentHandler = handlers.NewPaymentHandler(d.Payments, d.PaymentsClient, d.Validate, logger)
	d.MethodHandler = handlers.NewMethodHandler(d.MerchantClient, logger)
	d.QuoteHandler = handlers.NewQuoteHandler(d.ExchangeClient, d.RequisitesClient, d.BankClient, logger)
	d.DeviceHandler = handlers.NewDeviceHandler(d.DeviceClient, logger)
	d.AdminHandler = handlers.NewAdminHandler(d.TraderClient, d.Trust, d.Producer, d.Workers, d.Validate, logger)
	d.ProfileHandler = handlers.NewProfileHandler(logger)
}

// Close releases all held resources in reverse dependency order
func (d *Dependencies) Close(ctx context.Context) error {
	var firstErr error

	if d.Workers != nil {
		if err := d.Workers.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if d.Producer != nil {
		if err := d.Producer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if d.Cache != nil {
		if err := d.Cache.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if d.DB != nil {
		if err := d.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
