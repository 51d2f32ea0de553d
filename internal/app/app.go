package app

import (
	"context"
	"fmt"

	"github.com/juju/clock"

	"github.com/semmidev/dumpkeeper/internal/adapter/compressor"
	"github.com/semmidev/dumpkeeper/internal/adapter/database"
	"github.com/semmidev/dumpkeeper/internal/adapter/notifier"
	"github.com/semmidev/dumpkeeper/internal/adapter/storage"
	"github.com/semmidev/dumpkeeper/internal/config"
	"github.com/semmidev/dumpkeeper/internal/domain"
	"github.com/semmidev/dumpkeeper/internal/infrastructure/logger"
	"github.com/semmidev/dumpkeeper/internal/infrastructure/scheduler"
	"github.com/semmidev/dumpkeeper/internal/usecase"
)

type App struct {
	config    *config.Config
	logger    *logger.Logger
	scheduler *scheduler.Scheduler
	gate      *usecase.ReadinessGate
	cycle     *usecase.Cycle
}

type Option func(*options)

type options struct {
	logger       *logger.Logger
	clock        clock.Clock
	notifier     domain.Notifier
	schedulerOps []scheduler.Option
}

func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithClock(clk clock.Clock) Option {
	return func(o *options) { o.clock = clk }
}

func WithNotifier(n domain.Notifier) Option {
	return func(o *options) { o.notifier = n }
}

func WithSchedulerOptions(opts ...scheduler.Option) Option {
	return func(o *options) { o.schedulerOps = append(o.schedulerOps, opts...) }
}

func New(cfg *config.Config, opts ...Option) (*App, error) {
	o := options{clock: clock.WallClock}
	for _, opt := range opts {
		opt(&o)
	}

	// Initialize logger
	log := o.logger
	if log == nil {
		var err error
		log, err = logger.New(logger.Options{
			Level:   cfg.App.LogLevel,
			File:    cfg.App.LogFile,
			AppName: cfg.App.Name,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: failed to initialize logger: %w", domain.ErrFatalStartup, err)
		}
	}

	schedule, err := cfg.CronSchedule()
	if err != nil {
		return nil, fmt.Errorf("%w: invalid schedule: %w", domain.ErrFatalStartup, err)
	}

	log.Infow("Starting "+cfg.App.Name,
		"event", domain.EventStartup,
		"database", cfg.Database.Name,
		"type", cfg.Database.Type,
		"host", cfg.Database.Host,
		"backup_dir", cfg.Backup.Dir,
		"retention_days", cfg.Backup.RetentionDays,
		"interval", cfg.Interval(),
		"schedule", cfg.Backup.Schedule,
	)

	// Initialize local storage
	localStorage, err := storage.NewLocal(cfg.Backup.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFatalStartup, err)
	}

	removed, err := localStorage.RemovePartials()
	if err != nil {
		log.Warnw("Failed to remove interrupted backups", "event", domain.EventPartialRemoved, "error", err)
	}
	for _, name := range removed {
		log.Infow("Removed interrupted backup", "event", domain.EventPartialRemoved, "file", name)
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFatalStartup, err)
	}

	// Initialize compressor
	comp := compressor.NewGzip(cfg.Backup.CompressionLevel)

	alerts := o.notifier
	if alerts == nil {
		alerts = initializeNotifier(cfg, log)
	}

	policy := domain.RetentionPolicy{
		MaxAgeDays: cfg.Backup.RetentionDays,
		AgeSource:  domain.AgeSource(cfg.Backup.AgeSource),
	}

	cycle := usecase.NewCycle(
		usecase.NewBackup(db, localStorage, comp, o.clock, log, cfg.DumpTimeout()),
		usecase.NewVerifier(localStorage, comp, log, cfg.Backup.QuarantineInvalid),
		usecase.NewCleanup(localStorage, policy, o.clock, log),
		usecase.NewReporter(localStorage, log),
		alerts,
		o.clock,
		log,
	)

	gate := usecase.NewReadinessGate(
		db,
		usecase.UnlimitedRetry(cfg.ReadinessDelay()),
		cfg.ProbeTimeout(),
		o.clock,
		log,
	)

	return &App{
		config:    cfg,
		logger:    log,
		scheduler: scheduler.New(o.clock, schedule, log, o.schedulerOps...),
		gate:      gate,
		cycle:     cycle,
	}, nil
}

func initializeNotifier(cfg *config.Config, log *logger.Logger) domain.Notifier {
	if !cfg.Notify.Telegram.Enabled {
		return notifier.Nop{}
	}

	tg, err := notifier.NewTelegram(&cfg.Notify.Telegram)
	if err != nil {
		log.Errorw("Failed to initialize Telegram, alerts disabled", "event", domain.EventNotifyFailed, "error", err)
		return notifier.Nop{}
	}
	log.Infow("✓ Telegram alerts enabled", "event", domain.EventStartup)
	return tg
}

// Run blocks until the database is reachable, then runs backup cycles until
// ctx is cancelled. A cycle in progress at cancellation is allowed to finish.
func (a *App) Run(ctx context.Context) error {
	return a.scheduler.Run(ctx, a.gate, a.cycle.Run)
}

func (a *App) State() scheduler.State {
	return a.scheduler.State()
}

func (a *App) Shutdown() {
	a.logger.Infow("Shutting down application...", "event", domain.EventShutdown)
	a.logger.Close()
}
