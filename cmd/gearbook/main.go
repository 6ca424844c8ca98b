package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gearbook/internal/app/commands"
	"gearbook/internal/app/dto"
	availabilityapp "gearbook/internal/app/handlers/availability"
	earningsapp "gearbook/internal/app/handlers/earnings"
	rentalapp "gearbook/internal/app/handlers/rental"
	"gearbook/internal/app/middleware"
	appoutbox "gearbook/internal/app/outbox"
	"gearbook/internal/app/policies"
	"gearbook/internal/app/queries"
	authservice "gearbook/internal/app/services/auth"
	"gearbook/internal/app/uow"
	domainpricing "gearbook/internal/domain/pricing"
	"gearbook/internal/domain/settlement"
	"gearbook/internal/infra/broker/kafka"
	"gearbook/internal/infra/config"
	mongostore "gearbook/internal/infra/db/mongo"
	ginserver "gearbook/internal/infra/http/gin"
	"gearbook/internal/infra/inbox"
	"gearbook/internal/infra/obs"
	outboxinfra "gearbook/internal/infra/outbox"
	"gearbook/internal/infra/payments"
	"gearbook/internal/infra/security"
	"gearbook/internal/infra/storage/memory"
	"gearbook/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	app, err := buildApplication(cfg, logger)
	if err != nil {
		logger.Error("application wiring failed", "error", err)
		os.Exit(1)
	}
	defer app.shutdown(logger)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	if cfg.StorageMode == "memory" {
		if err := app.loadFixtures(ctx, logger); err != nil {
			logger.Warn("fixtures load failed", "error", err)
		}
	}

	for _, loop := range app.loops {
		go loop(ctx)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	ready    func() error
	loops    []func(ctx context.Context)
	closers  []func() error

	auth *authservice.Service
	memo *memoryStores
}

// memoryStores keeps direct handles on the in-memory repositories so
// fixtures can bypass the command bus at startup.
type memoryStores struct {
	items     *memory.ItemRepository
	users     *memory.UserRepository
	calendars *memory.CalendarRepository
}

func buildApplication(cfg config.Config, logger *slog.Logger) (application, error) {
	app := application{ready: func() error { return nil }}

	var (
		uowFactory   uow.Factory
		outboxStore  appoutbox.Outbox
		idemStore    middleware.IdempotencyStore
		paymentInbox kafka.Dedup
	)

	switch cfg.StorageMode {
	case "mongo":
		client, err := mongostore.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, err
		}
		db := client.DB
		uowFactory = mongostore.Factory{
			DB:            db,
			ItemsRepo:     mongostore.NewItemRepository(db),
			RentalsRepo:   mongostore.NewRentalRepository(db),
			CalendarsRepo: mongostore.NewCalendarRepository(db),
			UsersRepo:     mongostore.NewUserRepository(db),
		}
		idemStore = mongostore.NewIdempotencyStore(db, cfg.IdempotencyTTL)
		paymentInbox = inbox.NewStore(db, "gearbook")

		store := outboxinfra.NewStore(db)
		outboxStore = store

		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return application{}, err
		}
		app.closers = append(app.closers, producer.Close)
		worker := &outboxinfra.Worker{
			Store:       store,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
		}
		app.loops = append(app.loops, func(ctx context.Context) {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		})

		app.auth = &authservice.Service{
			UoWFactory: uowFactory,
			Sessions:   mongostore.NewSessionStore(db),
			Hasher:     security.BcryptHasher{},
			Tokens:     security.RandomTokenGenerator{},
			SessionTTL: cfg.SessionTTL,
		}
		app.ready = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(ctx)
		}

		app.closers = append(app.closers, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return db.Client().Disconnect(ctx)
		})
	default:
		stores := &memoryStores{
			items:     memory.NewItemRepository(),
			users:     memory.NewUserRepository(),
			calendars: memory.NewCalendarRepository(),
		}
		app.memo = stores
		uowFactory = memory.Factory{
			ItemsRepo:     stores.items,
			RentalsRepo:   memory.NewRentalRepository(),
			CalendarsRepo: stores.calendars,
			UsersRepo:     stores.users,
		}
		outboxStore = memory.NewOutbox()
		idemStore = memory.NewIdempotencyStore(cfg.IdempotencyTTL)
		app.auth = &authservice.Service{
			UoWFactory: uowFactory,
			Sessions:   memory.NewSessionStore(),
			Hasher:     security.BcryptHasher{},
			Tokens:     security.RandomTokenGenerator{},
			SessionTTL: cfg.SessionTTL,
		}
	}

	var processor policies.PaymentsPort
	if cfg.PaymentsBaseURL != "" {
		processor = payments.NewClient(cfg.PaymentsBaseURL, cfg.PaymentsAPIKey, cfg.PaymentsTimeout)
	} else {
		logger.Warn("no payment processor configured, using in-process fake")
		processor = &payments.FakeProcessor{}
	}

	var uploader s3.Uploader = s3.NoopUploader{}
	if cfg.S3Endpoint != "" {
		client, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
		if err != nil {
			logger.Warn("object storage unavailable, photo uploads disabled", "error", err)
		} else {
			uploader = client
		}
	}

	pricingCalc := domainpricing.NewCalculator(cfg.ServiceFeeBps)
	reconciler := settlement.NewReconciler(cfg.FeeRateBps)
	encoder := appoutbox.JSONEventEncoder{}
	notifier := slogNotifier{logger: logger}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, rentalapp.RequestRentalCommand{}.Name(), &rentalapp.RequestRentalHandler{
		UoWFactory: uowFactory,
		Pricing:    pricingCalc,
		Outbox:     outboxStore,
		Encoder:    encoder,
	})
	decideHandler := &rentalapp.DecideRentalHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
		Encoder:    encoder,
		Notifier:   notifier,
	}
	commands.RegisterHandler(commandBus, rentalapp.ApproveRentalCommand{}.Name(),
		commands.HandlerFunc[rentalapp.ApproveRentalCommand, *rentalapp.DecideRentalResult](decideHandler.HandleApprove))
	commands.RegisterHandler(commandBus, rentalapp.RejectRentalCommand{}.Name(),
		commands.HandlerFunc[rentalapp.RejectRentalCommand, *rentalapp.DecideRentalResult](decideHandler.HandleReject))
	commands.RegisterHandler(commandBus, rentalapp.CancelRentalCommand{}.Name(), &rentalapp.CancelRentalHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
		Encoder:    encoder,
	})
	commands.RegisterHandler(commandBus, rentalapp.StartPaymentSessionCommand{}.Name(), &rentalapp.StartPaymentSessionHandler{
		UoWFactory: uowFactory,
		Payments:   processor,
		Outbox:     outboxStore,
		Encoder:    encoder,
	})
	commands.RegisterHandler(commandBus, rentalapp.ConfirmPaymentCommand{}.Name(), &rentalapp.ConfirmPaymentHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
		Encoder:    encoder,
		Notifier:   notifier,
	})
	commands.RegisterHandler(commandBus, rentalapp.SubmitInspectionCommand{}.Name(), &rentalapp.SubmitInspectionHandler{
		UoWFactory: uowFactory,
		Outbox:     outboxStore,
		Encoder:    encoder,
	})
	commands.RegisterHandler(commandBus, rentalapp.AdminRefundCommand{}.Name(), &rentalapp.AdminRefundHandler{
		UoWFactory: uowFactory,
		Payments:   processor,
		Outbox:     outboxStore,
		Encoder:    encoder,
		Notifier:   notifier,
	})
	commands.RegisterHandler(commandBus, rentalapp.ReleasePayoutCommand{}.Name(), &rentalapp.ReleasePayoutHandler{
		UoWFactory: uowFactory,
		Payments:   processor,
		Reconciler: reconciler,
		Outbox:     outboxStore,
		Encoder:    encoder,
	})
	blockHandler := &availabilityapp.BlockDatesHandler{UoWFactory: uowFactory}
	commands.RegisterHandler(commandBus, availabilityapp.BlockDatesCommand{}.Name(),
		commands.HandlerFunc[availabilityapp.BlockDatesCommand, *availabilityapp.BlockDatesResult](blockHandler.HandleBlock))
	commands.RegisterHandler(commandBus, availabilityapp.UnblockDatesCommand{}.Name(),
		commands.HandlerFunc[availabilityapp.UnblockDatesCommand, *availabilityapp.BlockDatesResult](blockHandler.HandleUnblock))

	queryBus := queries.NewInMemoryBus()
	rentalQueries := &rentalapp.QueryHandler{UoWFactory: uowFactory}
	queries.RegisterHandler(queryBus, rentalapp.GetRentalQuery{}.Name(),
		queries.HandlerFunc[rentalapp.GetRentalQuery, dto.RentalView](rentalQueries.HandleGet))
	queries.RegisterHandler(queryBus, rentalapp.RenterRentalsQuery{}.Name(),
		queries.HandlerFunc[rentalapp.RenterRentalsQuery, []dto.RentalView](rentalQueries.HandleRenterList))
	queries.RegisterHandler(queryBus, rentalapp.OwnerRentalsQuery{}.Name(),
		queries.HandlerFunc[rentalapp.OwnerRentalsQuery, []dto.RentalView](rentalQueries.HandleOwnerList))
	queries.RegisterHandler(queryBus, availabilityapp.GetCalendarQuery{}.Name(), &availabilityapp.GetCalendarHandler{
		UoWFactory: uowFactory,
	})
	queries.RegisterHandler(queryBus, earningsapp.OwnerEarningsQuery{}.Name(), &earningsapp.OwnerEarningsHandler{
		UoWFactory: uowFactory,
		Reconciler: reconciler,
	})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Validation(middleware.SelfValidation()),
		middleware.Authorization(policies.SelfAuthorizer{}),
		middleware.Idempotency(idemStore, nil),
		middleware.OutboxFlush(outboxStore),
		middleware.Transaction(uowFactory, nil),
	)
	queryBusWithMiddleware := middleware.ChainQueries(
		queryBus,
		middleware.QueryValidation(middleware.SelfValidation()),
		middleware.QueryAuthorization(policies.SelfAuthorizer{}),
	)

	if cfg.StorageMode == "mongo" {
		consumerHandler := kafka.PaymentEventsHandler{
			Commands: commandBusWithMiddleware,
			Inbox:    paymentInbox,
			Logger:   logger,
		}
		consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, "gearbook", nil, consumerHandler)
		if err != nil {
			return application{}, err
		}
		app.closers = append(app.closers, consumer.Close)
		topic := cfg.KafkaTopicPrefix + "payment.events.v1"
		app.loops = append(app.loops, func(ctx context.Context) {
			if err := consumer.Run(ctx, []string{topic}); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("payment events consumer stopped", "error", err)
			}
		})
	}

	app.handlers = ginserver.Handlers{
		Rental: ginserver.RentalHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
			Uploader: uploader,
		},
		Availability: ginserver.AvailabilityHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
		},
		Earnings: ginserver.EarningsHandler{Queries: queryBusWithMiddleware},
		Admin:    ginserver.AdminHandler{Commands: commandBusWithMiddleware},
		Auth:     ginserver.AuthHandler{Service: app.auth},
		Webhook: ginserver.WebhookHandler{
			Commands: commandBusWithMiddleware,
			Secret:   cfg.PaymentsWebhookSecret,
			Logger:   logger,
		},
		AuthMiddleware: ginserver.AuthMiddleware{Service: app.auth, Logger: logger}.Handle,
	}
	return app, nil
}

func (a application) shutdown(logger *slog.Logger) {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			logger.Warn("shutdown cleanup failed", "error", err)
		}
	}
}

// slogNotifier logs lifecycle notifications instead of delivering them; a
// real channel (email, push) slots in behind the same port.
type slogNotifier struct {
	logger *slog.Logger
}

func (n slogNotifier) RentalRequested(_ context.Context, ownerID, rentalID string) error {
	n.logger.Info("notify: rental requested", "owner_id", ownerID, "rental_id", rentalID)
	return nil
}

func (n slogNotifier) RentalDecided(_ context.Context, renterID, rentalID string, approved bool) error {
	n.logger.Info("notify: rental decided", "renter_id", renterID, "rental_id", rentalID, "approved", approved)
	return nil
}

func (n slogNotifier) RentalPaid(_ context.Context, ownerID, rentalID string) error {
	n.logger.Info("notify: rental paid", "owner_id", ownerID, "rental_id", rentalID)
	return nil
}

func (n slogNotifier) RentalRefunded(_ context.Context, renterID, rentalID string) error {
	n.logger.Info("notify: rental refunded", "renter_id", renterID, "rental_id", rentalID)
	return nil
}
