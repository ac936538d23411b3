package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	StoreMemory    = "memory"
	StoreFirestore = "firestore"
	StorePostgres  = "postgres"
)

// Config represents the application configuration
type Config struct {
	Environment string           `yaml:"environment"`
	Server      ServerConfig     `yaml:"server"`
	Store       StoreConfig      `yaml:"store"`
	Firebase    FirebaseConfig   `yaml:"firebase"`
	Database    DatabaseConfig   `yaml:"database"`
	Log         LogConfig        `yaml:"log"`
	CORS        CORSConfig       `yaml:"cors"`
	Pagination  PaginationConfig `yaml:"pagination"`
	SendGrid    SendGridConfig   `yaml:"sendgrid"`
	Scheduler   SchedulerConfig  `yaml:"scheduler"`
}

// ServerConfig contains gRPC server settings. The REST API listens on Port+1.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StoreConfig selects the storage backend
type StoreConfig struct {
	Type string `yaml:"type"` // "memory", "firestore" or "postgres"
	// SeedFile preloads clients and vehicles into the memory store.
	SeedFile string `yaml:"seed_file"`
}

// FirebaseConfig contains Firestore connection settings
type FirebaseConfig struct {
	ProjectID       string            `yaml:"project_id"`
	CredentialsFile string            `yaml:"credentials_file"`
	EmulatorHost    string            `yaml:"emulator_host"`
	Collections     CollectionsConfig `yaml:"collections"`
}

// CollectionsConfig names the Firestore collections
type CollectionsConfig struct {
	Clients  string `yaml:"clients"`
	Vehicles string `yaml:"vehicles"`
	Rentals  string `yaml:"rentals"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// CORSConfig lists the origins allowed to call the REST API
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// PaginationConfig bounds rental listings
type PaginationConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
}

// SendGridConfig contains admin notification settings. An empty API key
// disables e-mail delivery.
type SendGridConfig struct {
	APIKey     string `yaml:"api_key"`
	FromEmail  string `yaml:"from_email"`
	FromName   string `yaml:"from_name"`
	AdminEmail string `yaml:"admin_email"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	ReconcileVehicleStatus string `yaml:"reconcile_vehicle_status"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Local .env files are optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	// Override with environment variables if present
	cfg.overrideWithEnv()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	if val := os.Getenv("APP_ENV"); val != "" {
		c.Environment = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Store
	if val := os.Getenv("STORE_TYPE"); val != "" {
		c.Store.Type = val
	}
	if val := os.Getenv("STORE_SEED_FILE"); val != "" {
		c.Store.SeedFile = val
	}

	// Firebase
	if val := os.Getenv("FIREBASE_PROJECT_ID"); val != "" {
		c.Firebase.ProjectID = val
	}
	if val := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); val != "" {
		c.Firebase.CredentialsFile = val
	}
	if val := os.Getenv("FIRESTORE_EMULATOR_HOST"); val != "" {
		c.Firebase.EmulatorHost = val
	}

	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// CORS
	if val := os.Getenv("CORS_ALLOWED_ORIGINS"); val != "" {
		c.CORS.AllowedOrigins = strings.Split(val, ",")
	}

	// SendGrid
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.SendGrid.APIKey = val
	}
	if val := os.Getenv("ADMIN_EMAIL"); val != "" {
		c.SendGrid.AdminEmail = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Environment == "" {
		c.Environment = EnvProduction
	}

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port >= 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Store validation
	if c.Store.Type == "" {
		c.Store.Type = StoreMemory
	}
	switch c.Store.Type {
	case StoreMemory:
	case StoreFirestore:
		if c.Firebase.ProjectID == "" {
			return fmt.Errorf("firebase project id is required")
		}
	case StorePostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
	default:
		return fmt.Errorf("unsupported store type: %s", c.Store.Type)
	}

	// Collection defaults
	if c.Firebase.Collections.Clients == "" {
		c.Firebase.Collections.Clients = "clients"
	}
	if c.Firebase.Collections.Vehicles == "" {
		c.Firebase.Collections.Vehicles = "vehicles"
	}
	if c.Firebase.Collections.Rentals == "" {
		c.Firebase.Collections.Rentals = "rentals"
	}

	// Pagination defaults
	if c.Pagination.DefaultLimit == 0 {
		c.Pagination.DefaultLimit = 10
	}
	if c.Pagination.MaxLimit == 0 {
		c.Pagination.MaxLimit = 100
	}
	if c.Pagination.DefaultLimit < 0 || c.Pagination.DefaultLimit > c.Pagination.MaxLimit {
		return fmt.Errorf("invalid pagination default limit: %d", c.Pagination.DefaultLimit)
	}

	// SendGrid validation
	if c.SendGrid.APIKey != "" && c.SendGrid.FromEmail == "" {
		return fmt.Errorf("sendgrid from email is required when an api key is set")
	}
	if c.SendGrid.FromName == "" {
		c.SendGrid.FromName = "Vehicle Rental"
	}

	// Scheduler defaults
	if c.Scheduler.ReconcileVehicleStatus == "" {
		c.Scheduler.ReconcileVehicleStatus = "0 0 3 * * *" // 3 AM UTC
	}

	return nil
}

// IsDevelopment reports whether internal error details may be exposed
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the gRPC server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetHTTPAddress returns the REST API address
func (c *Config) GetHTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port+1)
}
