package gramgpt

import (
	"context"
	"errors"
	"flag"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/config"
	"github.com/DenisKhanov/GramGPT/internal/logcfg"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

const shutdownTimeout = 5 * time.Second

// App represents the application structure responsible for initializing dependencies
// and running the web API and the Telegram bot.
type App struct {
	serviceProvider *ServiceProvider // The service provider for dependency injection
	config          *config.Config   // The configuration object for the application
	serverHTTP      *http.Server     // The web API server
	logFile         io.Closer        // Rotated log file, closed on exit
}

// NewApp creates a new instance of the application.
func NewApp(ctx context.Context) (*App, error) {
	app := &App{}
	err := app.initDeps(ctx)
	if err != nil {
		return nil, err
	}
	return app, nil
}

// Run starts the web API and, when TOKEN_BOT is set, the Telegram bot. It blocks until
// SIGINT or SIGTERM and shuts both down.
func (a *App) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logrus.Infof("HTTP server started on: %s", a.config.EnvHTTPAddress)
		if err := a.serverHTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Error("HTTP server stopped")
			cancel()
		}
	}()

	if a.config.EnvBotToken != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.runTelegramBot(ctx)
		}()
	} else {
		logrus.Info("TOKEN_BOT is not set, Telegram bot is disabled")
	}

	// Setup signal handling for graceful shutdown
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-signalChan:
		logrus.Infof("Received %v signal, shutting down...", sig)
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := a.serverHTTP.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("HTTP server shutdown error")
	}
	wg.Wait()
	logrus.Info("Server exited")
	if err := a.logFile.Close(); err != nil {
		logrus.WithError(err).Error("Log file close error")
	}
}

// initDeps initializes all dependencies required by the application.
func (a *App) initDeps(ctx context.Context) error {
	inits := []func(context.Context) error{
		a.initConfig,
		a.initServiceProvider,
		a.initHTTPServer,
	}

	for _, f := range inits {
		err := f(ctx)
		if err != nil {
			return err
		}
	}

	return nil
}

// initConfig initializes the application configuration.
func (a *App) initConfig(_ context.Context) error {
	cfg, err := config.NewConfig(config.DefaultEnvFile)
	if err != nil {
		return err
	}
	cfg.BindFlags(flag.CommandLine)
	flag.Parse()
	a.config = cfg
	a.logFile, err = logcfg.RunLoggerConfig(logcfg.Options{
		Level:      cfg.EnvLogsLevel,
		FileName:   cfg.EnvLogFileName,
		Format:     cfg.EnvLogFormat,
		MaxSizeMB:  cfg.EnvLogMaxSizeMB,
		MaxBackups: cfg.EnvLogMaxBackups,
		MaxAgeDays: cfg.EnvLogMaxAgeDays,
	})
	return err
}

// initServiceProvider initializes the service provider for dependency injection.
func (a *App) initServiceProvider(_ context.Context) error {
	a.serviceProvider = NewServiceProvider(a.config)
	return nil
}

// initHTTPServer initializes the web API server with middleware and routes.
func (a *App) initHTTPServer(_ context.Context) error {
	handler, err := a.serviceProvider.Handler()
	if err != nil {
		return err
	}
	a.serverHTTP = &http.Server{
		Addr:              a.config.EnvHTTPAddress,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// runTelegramBot polls Telegram until ctx is cancelled. Each update is handled in its own
// goroutine; the assistant keeps one turn per chat.
func (a *App) runTelegramBot(ctx context.Context) {
	botAPI, err := a.serviceProvider.BotAPI(a.config.EnvBotToken)
	if err != nil {
		logrus.WithError(err).Error("Can't make telegram bot")
		return
	}
	logrus.Infof("Bot API created successfully for %s", botAPI.Self.UserName)

	myBot, err := a.serviceProvider.BotService(botAPI)
	if err != nil {
		logrus.WithError(err).Error("Can't make bot service")
		return
	}

	// Configure updates channel
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60 // seconds timeout
	updates := GetUpdatesChan(ctx, botAPI, updateConfig, botAPI.Buffer)

	// Остановка опроса не прерывает начатые ходы, их ограничивает REQUEST_TIMEOUT
	turnCtx := context.WithoutCancel(ctx)
	var wg sync.WaitGroup
	defer wg.Wait()
	for update := range updates {
		wg.Add(1)
		go func(update tgbotapi.Update) {
			defer wg.Done()
			myBot.UpdateProcessing(turnCtx, &update)
		}(update)
	}
	logrus.Info("Telegram update loop stopped")
}
