// Package server initializes and runs the main application server.
// It opens the database, runs migrations, wires the services, and starts the
// HTTP API alongside the notification dispatcher, handling graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/messagely/internal/logging"
	"github.com/dmitrijs2005/messagely/internal/server/config"
	"github.com/dmitrijs2005/messagely/internal/server/httpapi"
	"github.com/dmitrijs2005/messagely/internal/server/notify"
	"github.com/dmitrijs2005/messagely/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/messagely/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	userService    *services.UserService
	messageService *services.MessageService
	dispatcher     *notify.Dispatcher
}

func NewApp(c *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		return nil, fmt.Errorf("repository manager init error: %w", err)
	}

	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	us := services.NewUserService(db, rm, c)
	ms := services.NewMessageService(db, rm)

	notifier := notify.NewTwilioNotifier(c.SMSAccountSID, c.SMSAuthToken, c.SMSFromNumber, c.SMSSendTimeout)
	dispatcher := notify.NewDispatcher(db, rm, notifier, logger,
		c.OutboxPollInterval, c.SMSSendTimeout, c.OutboxMaxAttempts)

	return &App{
		config:         c,
		logger:         logger,
		db:             db,
		userService:    us,
		messageService: ms,
		dispatcher:     dispatcher,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := httpapi.NewHTTPServer(app.config.EndpointAddr, app.logger,
		app.userService, app.messageService, app.config.SecretKey)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.dispatcher.Run(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
}
