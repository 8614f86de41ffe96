package config

import (
	"errors"
	"flag"
	"fmt"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"io/fs"
	"time"
)

// DefaultEnvFile is the dotenv file read on start; it is optional.
const DefaultEnvFile = "gramgpt.env"

// Config holds the application configuration parameters.
// Each field corresponds to an expected environment variable.
type Config struct {
	EnvLogsLevel            string        `env:"LOG_LEVEL" envDefault:"info"`                    // Log level for the application (e.g., debug, info)
	EnvLogFileName          string        `env:"LOG_FILE_NAME" envDefault:"gramGPT.log"`         // File's name for log
	EnvLogFormat            string        `env:"LOG_FORMAT" envDefault:"text"`                   // Log format: text or json
	EnvLogMaxSizeMB         int           `env:"LOG_MAX_SIZE_MB" envDefault:"50"`                // Log file size before rotation
	EnvLogMaxBackups        int           `env:"LOG_MAX_BACKUPS" envDefault:"3"`                 // Rotated log files to keep
	EnvLogMaxAgeDays        int           `env:"LOG_MAX_AGE_DAYS" envDefault:"30"`               // Days to keep rotated log files
	EnvBotToken             string        `env:"TOKEN_BOT"`                                      // Telegram Bot Token; the bot is off when empty
	EnvHTTPAddress          string        `env:"HTTP_ADDRESS" envDefault:":8080"`                // Address of the web API
	EnvGenerativeName       string        `env:"GENERATIVE_NAME" envDefault:"gemini"`            // Name of the generative AI provider (gemini, deepseek, openrouter)
	EnvGenerativeApiKey     string        `env:"API_KEY"`                                        // API Key for the generative AI service
	EnvChatModel            string        `env:"CHAT_MODEL"`                                     // Conversational model, builder default when empty
	EnvImageModel           string        `env:"IMAGE_MODEL"`                                    // Image-capable model, builder default when empty
	EnvTriggerWords         []string      `env:"TRIGGER_WORDS" envSeparator:","`                 // Words switching a turn to image generation
	EnvTriggerCaseSensitive bool          `env:"TRIGGER_CASE_SENSITIVE"`                         // Exact-case trigger matching
	EnvEnableTools          bool          `env:"ENABLE_TOOLS" envDefault:"true"`                 // Declare the weather tool on conversational turns
	EnvImagePolicy          string        `env:"IMAGE_POLICY" envDefault:"first"`                // first or all images of a reply
	EnvRequestTimeout       time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s"`               // Deadline of one turn
	EnvFirebaseApiKey       string        `env:"FIREBASE_API_KEY"`                               // Web API key of the Firebase project; auth is off when empty
	EnvFirebaseEndpoint     string        `env:"FIREBASE_ENDPOINT"`                              // Identity Toolkit base URL override
	EnvPreferencesPath      string        `env:"PREFERENCES_PATH" envDefault:"preferences.json"` // File keeping the UI theme
	EnvDefaultTheme         string        `env:"DEFAULT_THEME" envDefault:"light"`               // Theme used until one is saved
	EnvPDFFontPath          string        `env:"PDF_FONT_PATH"`                                  // UTF-8 TTF font with Bengali glyphs for PDF export
	EnvMaxAttachmentSize    int64         `env:"MAX_ATTACHMENT_SIZE" envDefault:"15728640"`      // Upper bound of one attachment in bytes
	EnvMaxTokens            int           `env:"MAX_TOKENS" envDefault:"2048"`                   // Output token limit per request
	EnvTemperature          float32       `env:"TEMPERATURE" envDefault:"0.7"`                   // Sampling temperature
}

// NewConfig loads envFile if it exists, then parses the environment. The log level can be
// overridden with the -l flag.
func NewConfig(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("new load .env: %w", err)
		}
		logrus.Debugf("Env file %s not found, using process environment", envFile)
	}

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return config, nil
}

// BindFlags registers command line overrides on flags.
func (c *Config) BindFlags(flags *flag.FlagSet) {
	flags.StringVar(&c.EnvLogsLevel, "l", c.EnvLogsLevel, "Set logging level")
	flags.StringVar(&c.EnvHTTPAddress, "a", c.EnvHTTPAddress, "Set web API address")
}
