// Package config loads settings from the environment.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Backends accepted by DATA_BACKEND.
const (
	BackendCSV      = "csv"
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
	BackendSheets   = "sheets"
)

var validBackends = []string{BackendCSV, BackendMemory, BackendSQLite, BackendPostgres, BackendMongo, BackendSheets}

type Config struct {
	// HTTP Server
	Port string `koanf:"PORT"`

	// Backend selection
	DataBackend string `koanf:"DATA_BACKEND"`
	DataDir     string `koanf:"DATA_DIR"`

	SQLiteDBPath string `koanf:"SQLITE_DB_PATH"`

	PostgresHost     string `koanf:"POSTGRES_HOST"`
	PostgresPort     int    `koanf:"POSTGRES_PORT"`
	PostgresDB       string `koanf:"POSTGRES_DB"`
	PostgresUser     string `koanf:"POSTGRES_USER"`
	PostgresPassword string `koanf:"POSTGRES_PASSWORD"`
	PostgresSSLMode  string `koanf:"POSTGRES_SSLMODE"`

	MongoURI      string `koanf:"MONGO_URI"`
	MongoDatabase string `koanf:"MONGO_DATABASE"`

	// Google Sheets, used as a backend or as the mirror target
	GoogleSpreadsheetID      string `koanf:"GOOGLE_SPREADSHEET_ID"`
	GoogleServiceAccountJSON string `koanf:"GOOGLE_SERVICE_ACCOUNT_JSON"`
	GoogleServiceAccountFile string `koanf:"GOOGLE_SERVICE_ACCOUNT_FILE"`
	GoogleOAuthClientFile    string `koanf:"GOOGLE_OAUTH_CLIENT_FILE"`
	GoogleOAuthTokenFile     string `koanf:"GOOGLE_OAUTH_TOKEN_FILE"`
	GoogleOAuthClientJSON    string `koanf:"GOOGLE_OAUTH_CLIENT_JSON"`
	GoogleOAuthTokenJSON     string `koanf:"GOOGLE_OAUTH_TOKEN_JSON"`

	// AMQP, optional
	AMQPURL      string `koanf:"AMQP_URL"`
	AMQPExchange string `koanf:"AMQP_EXCHANGE"`
	AMQPQueue    string `koanf:"AMQP_QUEUE"`

	// Worker
	MirrorInterval time.Duration `koanf:"MIRROR_INTERVAL"`

	// AI advice
	AIAPIKey      string        `koanf:"AI_API_KEY"`
	AIBaseURL     string        `koanf:"AI_BASE_URL"`
	AIModel       string        `koanf:"AI_MODEL"`
	AITemperature float64       `koanf:"AI_TEMPERATURE"`
	AIMaxTokens   int           `koanf:"AI_MAX_TOKENS"`
	AITimeout     time.Duration `koanf:"AI_TIMEOUT"`

	// Discord overspend alerts, optional
	DiscordBotToken  string `koanf:"DISCORD_BOT_TOKEN"`
	DiscordChannelID string `koanf:"DISCORD_CHANNEL_ID"`

	SessionTTL     time.Duration `koanf:"SESSION_TTL"`
	SecureCookies  bool          `koanf:"COOKIE_SECURE"`
	TrustedProxies []string      `koanf:"TRUSTED_PROXIES"`
	LogLevel       string        `koanf:"LOG_LEVEL"`
	LogFormat      string        `koanf:"LOG_FORMAT"`
}

// Defaults returns the configuration used for unset variables.
func Defaults() Config {
	return Config{
		Port:            "8081",
		DataBackend:     BackendCSV,
		DataDir:         "./data",
		SQLiteDBPath:    "./data/finsmart.db",
		PostgresHost:    "localhost",
		PostgresPort:    5432,
		PostgresDB:      "finsmart",
		PostgresSSLMode: "disable",
		MongoDatabase:   "finsmart",
		AMQPExchange:    "finsmart",
		AMQPQueue:       "table_saved",
		MirrorInterval:  5 * time.Minute,
		AIBaseURL:       "https://api.groq.com/openai/v1",
		AIModel:         "llama3-8b-8192",
		AITemperature:   0.7,
		AIMaxTokens:     512,
		AITimeout:       30 * time.Second,
		SessionTTL:      12 * time.Hour,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// Load reads the process environment over Defaults. Empty variables count
// as unset.
func Load() (*Config, error) {
	k := koanf.New(".")
	provider := env.ProviderWithValue("", ".", func(key, value string) (string, any) {
		if strings.TrimSpace(value) == "" {
			return "", nil
		}
		return key, value
	})
	if err := k.Load(provider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Defaults()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// UsesSheetsCredentials reports whether any Google credential is set.
func (c *Config) UsesSheetsCredentials() bool {
	return c.GoogleServiceAccountJSON != "" || c.GoogleServiceAccountFile != "" ||
		os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" ||
		((c.GoogleOAuthClientFile != "" || c.GoogleOAuthClientJSON != "") &&
			(c.GoogleOAuthTokenFile != "" || c.GoogleOAuthTokenJSON != ""))
}

// AMQPEnabled reports whether table-saved events should be published.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// DiscordEnabled reports whether overspend alerts are configured.
func (c *Config) DiscordEnabled() bool {
	return c.DiscordBotToken != "" && c.DiscordChannelID != ""
}

// Validate checks the settings the web server needs.
func (c *Config) Validate() error {
	return joinProblems(append(c.validateCommon(), c.validateAI()...))
}

// ValidateWorker checks the settings the mirror worker needs: a source
// medium, the spreadsheet it mirrors to and something to drive it.
func (c *Config) ValidateWorker() error {
	errors := c.validateCommon()
	switch c.DataBackend {
	case BackendSheets:
		errors = append(errors, "the mirror worker cannot use the sheets backend as its source")
	case BackendMemory:
		errors = append(errors, "the mirror worker cannot read the memory backend of another process")
	default:
		errors = append(errors, c.validateSheets()...)
	}
	if !c.AMQPEnabled() && c.MirrorInterval == 0 {
		errors = append(errors, "set AMQP_URL or a MIRROR_INTERVAL, otherwise the worker has nothing to do")
	}
	return joinProblems(errors)
}

func joinProblems(errors []string) error {
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func (c *Config) validateCommon() []string {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case BackendCSV:
		if c.DataDir == "" {
			errors = append(errors, "DATA_DIR cannot be empty when using csv backend")
		}
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
			}
		}
	case BackendPostgres:
		if c.PostgresHost == "" || c.PostgresDB == "" || c.PostgresUser == "" {
			errors = append(errors, "POSTGRES_HOST, POSTGRES_DB and POSTGRES_USER are required when using postgres backend")
		}
		if c.PostgresPort < 1 || c.PostgresPort > 65535 {
			errors = append(errors, fmt.Sprintf("invalid postgres port %d", c.PostgresPort))
		}
	case BackendMongo:
		if !strings.HasPrefix(c.MongoURI, "mongodb://") && !strings.HasPrefix(c.MongoURI, "mongodb+srv://") {
			errors = append(errors, "MONGO_URI must be a mongodb:// or mongodb+srv:// URI when using mongo backend")
		}
		if c.MongoDatabase == "" {
			errors = append(errors, "MONGO_DATABASE cannot be empty when using mongo backend")
		}
	case BackendSheets:
		errors = append(errors, c.validateSheets()...)
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.MirrorInterval < 0 || (c.MirrorInterval > 0 && c.MirrorInterval < time.Second) {
		errors = append(errors, fmt.Sprintf("invalid mirror interval %v: must be at least 1 second", c.MirrorInterval))
	} else if c.MirrorInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid mirror interval %v: must be at most 24 hours", c.MirrorInterval))
	}

	if (c.DiscordBotToken == "") != (c.DiscordChannelID == "") {
		errors = append(errors, "DISCORD_BOT_TOKEN and DISCORD_CHANNEL_ID must be set together")
	}

	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}
	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(strings.TrimSpace(cidr)); err != nil {
			errors = append(errors, fmt.Sprintf("invalid trusted proxy '%s': must be a CIDR", cidr))
		}
	}
	return errors
}

func (c *Config) validateAI() []string {
	var errors []string
	if strings.TrimSpace(c.AIAPIKey) == "" {
		errors = append(errors, "AI_API_KEY is required")
	}
	if c.AITemperature < 0 || c.AITemperature > 2 {
		errors = append(errors, fmt.Sprintf("invalid AI temperature %v: must be between 0 and 2", c.AITemperature))
	}
	if c.AIMaxTokens < 1 {
		errors = append(errors, fmt.Sprintf("invalid AI max tokens %d: must be at least 1", c.AIMaxTokens))
	}
	if c.AITimeout <= 0 {
		errors = append(errors, fmt.Sprintf("invalid AI timeout %v: must be positive", c.AITimeout))
	}
	return errors
}

func (c *Config) validateSheets() []string {
	var errors []string
	if c.GoogleSpreadsheetID == "" {
		errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
	}
	if !c.UsesSheetsCredentials() {
		errors = append(errors, "sheets backend needs a service account (GOOGLE_SERVICE_ACCOUNT_JSON/FILE) or an OAuth client and token (GOOGLE_OAUTH_CLIENT_* and GOOGLE_OAUTH_TOKEN_*)")
	}
	for _, f := range []string{c.GoogleServiceAccountFile, c.GoogleOAuthClientFile, c.GoogleOAuthTokenFile} {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google credentials file does not exist: %s", f))
		}
	}
	return errors
}
