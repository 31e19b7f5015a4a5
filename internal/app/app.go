package app

import (
	"context"
	"fmt"

	"github.com/iwtcode/robotDataAgent"
	"github.com/iwtcode/robotDataAgent/internal/domain/models"
	"github.com/iwtcode/robotDataAgent/internal/handlers/httpapi"
	"github.com/iwtcode/robotDataAgent/internal/handlers/telegram"
	"github.com/iwtcode/robotDataAgent/internal/interfaces"
	"github.com/iwtcode/robotDataAgent/internal/metrics"
	"github.com/iwtcode/robotDataAgent/internal/repository"
	"github.com/iwtcode/robotDataAgent/internal/scheduler"
	"github.com/iwtcode/robotDataAgent/internal/services"
	"github.com/iwtcode/robotDataAgent/internal/usecases"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// New builds the long running agent: schema check, poll loop, optional
// metrics listener and Telegram bot.
func New(cfg *robotDataAgent.Config) *fx.App {
	return fx.New(
		options(cfg),
		fx.Invoke(
			registerDatabase,
			startMetrics,
			startBot,
			startPoller,
		),
	)
}

func options(cfg *robotDataAgent.Config) fx.Option {
	return fx.Options(
		fx.Supply(cfg),
		fx.Provide(NewLogger),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
		fx.Provide(
			// Repository
			repository.NewPostgresRepository,
			repository.NewRobotDataRepository,

			// Services
			services.NewAPIFetcher,
			services.NewRecordPublisher,
			services.NewPublishedReader,

			// Usecases
			usecases.NewIngestUsecase,
			usecases.NewStatusUsecase,

			// Metrics
			metrics.New,

			// Telegram Handlers
			provideBot,
			telegram.NewAlerter,
			telegram.NewMenu,
			telegram.NewCommandHandler,
			telegram.NewCallbackHandler,
			telegram.NewRouter,
		),
	)
}

// NewLogger builds the production zap logger at the configured level.
func NewLogger(cfg *robotDataAgent.Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = level
	return zc.Build()
}

// provideBot keeps the agent running when the bot cannot be created.
func provideBot(cfg *robotDataAgent.Config, router *telegram.Router, logger *zap.Logger) *telegram.Bot {
	bot, err := telegram.NewBot(cfg, router, logger)
	if err != nil {
		logger.Warn("telegram bot disabled", zap.Error(err))
		return nil
	}
	return bot
}

// registerDatabase closes the pool and the outbound clients once everything
// started after it has stopped.
func registerDatabase(
	lifecycle fx.Lifecycle,
	db *gorm.DB,
	fetcher interfaces.RecordFetcher,
	publisher interfaces.RecordPublisher,
	logger *zap.Logger,
) {
	lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if c, ok := fetcher.(interface{ Close() }); ok {
				c.Close()
			}
			err := multierr.Combine(
				publisher.Close(),
				repository.CloseDB(db),
			)
			if err != nil {
				logger.Error("error releasing resources", zap.Error(err))
			}
			return err
		},
	})
}

func startMetrics(
	lifecycle fx.Lifecycle,
	cfg *robotDataAgent.Config,
	m *metrics.Metrics,
	status interfaces.StatusUsecase,
	logger *zap.Logger,
) {
	if cfg.MetricsAddr == "" {
		return
	}
	srv := httpapi.NewServer(cfg.MetricsAddr, m.Handler(), status, logger)
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return srv.Start()
		},
		OnStop: func(ctx context.Context) error {
			return srv.Stop(ctx)
		},
	})
}

func startBot(lifecycle fx.Lifecycle, bot *telegram.Bot) {
	if bot == nil {
		return
	}
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go bot.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			bot.Stop()
			return nil
		},
	})
}

func startPoller(
	lifecycle fx.Lifecycle,
	cfg *robotDataAgent.Config,
	ingest interfaces.IngestUsecase,
	status interfaces.StatusUsecase,
	m *metrics.Metrics,
	alerter *telegram.Alerter,
	logger *zap.Logger,
) {
	observers := []interfaces.TickObserver{status, m}
	if alerter != nil {
		observers = append(observers, alerter)
	}
	poller := scheduler.NewPoller(cfg.PollInterval, cfg.PollImmediately, ingest.RunTick, logger, observers...)

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ready, err := ensureSchema(ctx, cfg, ingest, logger)
			if err != nil {
				return err
			}
			status.SetSchemaReady(ready)
			m.SetSchemaReady(ready)

			poller.Start(context.Background())
			return nil
		},
		OnStop: func(ctx context.Context) error {
			poller.Stop()
			return nil
		},
	})
}

// ensureSchema reports whether robot_data is in place. The error is non-nil
// only when the table is required.
func ensureSchema(ctx context.Context, cfg *robotDataAgent.Config, ingest interfaces.IngestUsecase, logger *zap.Logger) (bool, error) {
	if err := ingest.EnsureSchema(ctx); err != nil {
		if cfg.SchemaRequired {
			return false, err
		}
		logger.Error("error creating table", zap.Error(err))
		return false, nil
	}
	return true, nil
}

// Migrate ensures the robot_data table exists and exits.
func Migrate(ctx context.Context, cfg *robotDataAgent.Config) error {
	var ingest interfaces.IngestUsecase
	app := fx.New(
		options(cfg),
		fx.Invoke(registerDatabase),
		fx.Populate(&ingest),
	)
	if err := app.Start(ctx); err != nil {
		return err
	}

	err := ingest.EnsureSchema(ctx)
	return multierr.Append(err, app.Stop(context.Background()))
}

// RunOnce ensures the table and performs a single fetch-and-store cycle.
func RunOnce(ctx context.Context, cfg *robotDataAgent.Config) (models.TickReport, error) {
	var (
		ingest interfaces.IngestUsecase
		logger *zap.Logger
	)
	app := fx.New(
		options(cfg),
		fx.Invoke(registerDatabase),
		fx.Populate(&ingest, &logger),
	)
	if err := app.Start(ctx); err != nil {
		return models.TickReport{}, err
	}

	var report models.TickReport
	_, err := ensureSchema(ctx, cfg, ingest, logger)
	if err == nil {
		report = ingest.RunTick(ctx, "once")
	}
	return report, multierr.Append(err, app.Stop(context.Background()))
}
