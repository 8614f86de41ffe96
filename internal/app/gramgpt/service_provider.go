// Package gramgpt provides dependency injection and the run loop of the assistant:
// the web API server and the optional Telegram bot share one turn pipeline.
package gramgpt

import (
	"fmt"
	botHand "github.com/DenisKhanov/GramGPT/internal/gram_gpt/api/http"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/attachment"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/auth"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/config"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/export"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/infra/generative"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/intent"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/models"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/normalizer"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/repository"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/request"
	botServ "github.com/DenisKhanov/GramGPT/internal/gram_gpt/service"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/tools"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"strings"
	"sync"
)

// ServiceProvider manages the dependency injection for the assistant components.
type ServiceProvider struct {
	config *config.Config

	// Pipeline
	generativeService botServ.GenerativeModel
	toolRegistry      *tools.Registry
	builder           *request.Builder
	assistant         *botServ.Assistant

	// Repositories
	sessions    *repository.Sessions
	preferences *repository.Preferences

	// Web API
	authenticator botHand.Authenticator
	sessionTokens *auth.SessionManager
	exporter      *export.PDFExporter
	handler       *botHand.Handler

	// Bot API
	botAPI     *tgbotapi.BotAPI
	botService *botServ.TgBotServices

	// Ошибки инициализации, возвращаются при каждом вызове
	generativeErr error
	assistantErr  error
	handlerErr    error
	botAPIErr     error

	generativeOnce  sync.Once
	toolsOnce       sync.Once
	builderOnce     sync.Once
	assistantOnce   sync.Once
	sessionsOnce    sync.Once
	preferencesOnce sync.Once
	authOnce        sync.Once
	exporterOnce    sync.Once
	handlerOnce     sync.Once
	botAPIOnce      sync.Once
	botServiceOnce  sync.Once
}

// NewServiceProvider creates a new instance of the service provider.
func NewServiceProvider(cfg *config.Config) *ServiceProvider {
	if cfg == nil {
		logrus.Fatal("ServiceProvider configuration must be non-nil")
	}
	return &ServiceProvider{config: cfg}
}

// GenerativeService returns the configured generation provider. A missing API key is not an
// error here: the provider stays nil and every turn fails with the missing key message.
func (s *ServiceProvider) GenerativeService() (botServ.GenerativeModel, error) {
	s.generativeOnce.Do(func() {
		if strings.TrimSpace(s.config.EnvGenerativeApiKey) == "" {
			logrus.Warn("API_KEY is not set, generation is disabled")
			return
		}
		// Для Gemini модель задается каждым запросом, CHAT_MODEL нужен остальным провайдерам
		service, err := generative.ModelFactory(
			s.config.EnvGenerativeName,
			s.config.EnvGenerativeApiKey,
			s.config.EnvChatModel,
			s.config.EnvMaxTokens,
			s.config.EnvTemperature,
		)
		if err != nil {
			logrus.Errorf("Failed to initialize Generative service: %v", err)
			s.generativeErr = fmt.Errorf("generative service not initialized: %w", err)
			return
		}
		s.generativeService = service
		logrus.Infof("Generative model %s initialized", s.config.EnvGenerativeName)
	})
	if s.generativeErr != nil {
		return nil, s.generativeErr
	}
	return s.generativeService, nil
}

// Tools returns the tool registry, nil when tools are disabled.
func (s *ServiceProvider) Tools() *tools.Registry {
	s.toolsOnce.Do(func() {
		if !s.config.EnvEnableTools {
			return
		}
		s.toolRegistry = tools.NewRegistry(tools.NewWeatherTool())
		logrus.Infof("Tool registry initialized with %d tools", s.toolRegistry.Len())
	})
	return s.toolRegistry
}

// Builder returns the request builder.
func (s *ServiceProvider) Builder() *request.Builder {
	s.builderOnce.Do(func() {
		opts := []request.Option{request.WithModels(s.config.EnvChatModel, s.config.EnvImageModel)}
		if registry := s.Tools(); registry != nil {
			opts = append(opts, request.WithTools(registry.Declarations()...))
		}
		s.builder = request.NewBuilder(opts...)
	})
	return s.builder
}

// Sessions returns the in-memory conversation histories.
func (s *ServiceProvider) Sessions() *repository.Sessions {
	s.sessionsOnce.Do(func() {
		s.sessions = repository.NewSessions()
	})
	return s.sessions
}

// Preferences returns the theme slot, loaded from its file.
func (s *ServiceProvider) Preferences() *repository.Preferences {
	s.preferencesOnce.Do(func() {
		fallback, err := models.ParseTheme(s.config.EnvDefaultTheme)
		if err != nil {
			logrus.WithError(err).Warn("Invalid DEFAULT_THEME, using light")
			fallback = models.ThemeLight
		}
		s.preferences = repository.NewPreferences(s.config.EnvPreferencesPath, fallback)
		if err = s.preferences.Load(); err != nil {
			logrus.Errorf("Failed to read preferences from file: %v", err)
		} else {
			logrus.Info("Preferences initialized and state loaded")
		}
	})
	return s.preferences
}

// Assistant returns the turn pipeline.
func (s *ServiceProvider) Assistant() (*botServ.Assistant, error) {
	s.assistantOnce.Do(func() {
		provider, err := s.GenerativeService()
		if err != nil {
			logrus.Errorf("Failed to get generative service: %v", err)
			s.assistantErr = fmt.Errorf("assistant not initialized: %w", err)
			return
		}
		policy, perr := normalizer.ParseImagePolicy(s.config.EnvImagePolicy)
		if perr != nil {
			logrus.WithError(perr).Warn("Invalid IMAGE_POLICY, keeping the first image")
		}

		var executor botServ.ToolExecutor
		if registry := s.Tools(); registry != nil {
			executor = registry
		}
		client := botServ.NewGenerationClient(provider, s.config.EnvGenerativeApiKey, s.Builder(), executor)

		s.assistant = botServ.NewAssistant(
			attachment.NewEncoder(s.config.EnvMaxAttachmentSize),
			intent.NewClassifier(s.config.EnvTriggerWords, s.config.EnvTriggerCaseSensitive),
			s.Builder(),
			client,
			normalizer.NewNormalizer(policy),
			s.Sessions(),
			s.config.EnvRequestTimeout,
		)
		logrus.Info("Assistant initialized")
	})
	if s.assistantErr != nil {
		return nil, s.assistantErr
	}
	return s.assistant, nil
}

// Authenticator returns the Firebase client, nil when FIREBASE_API_KEY is not set.
func (s *ServiceProvider) Authenticator() (botHand.Authenticator, *auth.SessionManager) {
	s.authOnce.Do(func() {
		s.sessionTokens = auth.NewSessionManager()
		if strings.TrimSpace(s.config.EnvFirebaseApiKey) == "" {
			logrus.Info("FIREBASE_API_KEY is not set, web API runs without sign-in")
			return
		}
		s.authenticator = auth.NewFirebaseAuth(s.config.EnvFirebaseApiKey, s.config.EnvFirebaseEndpoint)
		logrus.Info("Firebase authenticator initialized")
	})
	return s.authenticator, s.sessionTokens
}

// Exporter returns the PDF renderer of history items.
func (s *ServiceProvider) Exporter() *export.PDFExporter {
	s.exporterOnce.Do(func() {
		s.exporter = export.NewPDFExporter(s.config.EnvPDFFontPath)
	})
	return s.exporter
}

// Handler returns the web API handler.
func (s *ServiceProvider) Handler() (*botHand.Handler, error) {
	s.handlerOnce.Do(func() {
		assistant, err := s.Assistant()
		if err != nil {
			logrus.Errorf("Failed to get assistant: %v", err)
			s.handlerErr = fmt.Errorf("handler not initialized: %w", err)
			return
		}
		authenticator, tokens := s.Authenticator()
		s.handler = botHand.NewHandler(assistant, authenticator, tokens, s.Preferences(), s.Exporter())
		logrus.Info("Handler initialized")
	})
	if s.handlerErr != nil {
		return nil, s.handlerErr
	}
	return s.handler, nil
}

// BotAPI returns the Telegram Bot API instance.
func (s *ServiceProvider) BotAPI(token string) (*tgbotapi.BotAPI, error) {
	s.botAPIOnce.Do(func() {
		botAPI, err := tgbotapi.NewBotAPI(token)
		if err != nil {
			logrus.Errorf("Failed to initialize BotAPI: %v", err)
			s.botAPIErr = fmt.Errorf("bot API not initialized: %w", err)
			return
		}
		s.botAPI = botAPI
	})
	if s.botAPIErr != nil {
		return nil, s.botAPIErr
	}

	logrus.Info("BotApi initialized")
	return s.botAPI, nil
}

// BotService returns the Telegram front-end.
func (s *ServiceProvider) BotService(botAPI *tgbotapi.BotAPI) (*botServ.TgBotServices, error) {
	assistant, err := s.Assistant()
	if err != nil {
		logrus.Errorf("Failed to get assistant: %v", err)
		return nil, fmt.Errorf("bot service not initialized: %w", err)
	}

	s.botServiceOnce.Do(func() {
		s.botService = botServ.NewTgBot(assistant, s.Exporter(), botAPI)
		logrus.Info("BotService initialized")
	})
	return s.botService, nil
}
