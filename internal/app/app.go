package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/pairtrack/pairtrack/internal/config"
	"github.com/pairtrack/pairtrack/internal/db"
	"github.com/pairtrack/pairtrack/internal/events"
	"github.com/pairtrack/pairtrack/internal/repository"
	"github.com/pairtrack/pairtrack/internal/service"
	"github.com/pairtrack/pairtrack/internal/storage"
)

type App struct {
	Cfg            *config.Config
	DB             *sqlx.DB
	Store          *repository.Store
	Bus            *events.Bus
	EmailService   *service.EmailService
	AuthService    *service.AuthService
	MemberService  *service.MemberService
	CycleService   *service.CycleService
	PairingService *service.PairingService
	RoomService    *service.RoomService
	ReportService  *service.ReportService

	forwarder *events.KafkaForwarder
	stop      context.CancelFunc
}

// New connects to the database, runs migrations and wires the services.
func New(cfg *config.Config) (*App, error) {
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	a, err := Build(cfg, database)
	if err != nil {
		_ = database.Close()
		return nil, err
	}
	return a, nil
}

// Build wires the services on top of an already migrated database.
func Build(cfg *config.Config, database *sqlx.DB) (*App, error) {
	store := repository.NewStore(database)
	bus := events.NewBus()

	reportStorage, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	authService := service.NewAuthService(store, emailService, bus, service.AuthOptions{
		JWTSecret:                cfg.JWTSecret,
		JWTExpiry:                cfg.JWTExpiry,
		TokenEmailVerifyExpiry:   cfg.TokenEmailVerifyExpiry,
		RequireEmailConfirmation: cfg.RequireEmailConfirmation,
		AdminEmails:              cfg.AdminEmails,
		IsProduction:             cfg.IsProduction(),
	})
	memberService := service.NewMemberService(store)
	reportService := service.NewReportService(store, reportStorage)

	cycleService := service.NewCycleService(store, bus, cfg.Location())
	cycleService.SetArchiver(reportService)

	pairingService := service.NewPairingService(store, bus)
	if cfg.PairNotificationsEnabled {
		pairingService.SetNotifier(emailService)
	}

	roomService := service.NewRoomService(store, pairingService, bus, cfg.RecentCheckInsLimit)

	ctx, stop := context.WithCancel(context.Background())
	a := &App{
		Cfg:            cfg,
		DB:             database,
		Store:          store,
		Bus:            bus,
		EmailService:   emailService,
		AuthService:    authService,
		MemberService:  memberService,
		CycleService:   cycleService,
		PairingService: pairingService,
		RoomService:    roomService,
		ReportService:  reportService,
		stop:           stop,
	}

	if cfg.KafkaEnabled() {
		a.forwarder = events.NewKafkaForwarder(events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
		ch, _ := bus.Subscribe(256)
		go a.forwarder.Run(ctx, ch)
		slog.Info("forwarding events to kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	// Audit trail only. Revoked sessions are already rejected by Authenticate.
	sessions, _ := authService.OnSessionChange(64)
	go logSessionChanges(ctx, sessions)

	return a, nil
}

// logSessionChanges records sign-ins and sign-outs at debug level.
func logSessionChanges(ctx context.Context, changes <-chan events.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-changes:
			if !ok {
				return
			}
			slog.Debug("session changed", "type", e.Type, "user_id", e.UserID, "session_id", e.Attrs["session_id"])
		}
	}
}

// Close stops background work and closes the database.
func (a *App) Close() error {
	a.stop()
	a.Bus.Close()
	if a.forwarder != nil {
		err := a.forwarder.Close()
		if err != nil {
			slog.Error("failed to close kafka writer", "error", err)
		}
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
