package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	App        AppConfig        `yaml:"app"`
	Admin      AdminConfig      `yaml:"admin"`
	Cloudinary CloudinaryConfig `yaml:"cloudinary"`
	Store      StoreConfig      `yaml:"store"`
	Backup     BackupConfig     `yaml:"backup"`
	Contact    ContactConfig    `yaml:"contact"`
}

type ServerConfig struct {
	Port         string `yaml:"port"`
	ClientOrigin string `yaml:"client_origin"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

type AppConfig struct {
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`
	Version     string `yaml:"version"`
}

// AdminConfig selects public vs key-gated admin mode.
type AdminConfig struct {
	Public bool   `yaml:"public"`
	APIKey string `yaml:"api_key"`
}

type CloudinaryConfig struct {
	CloudName      string        `yaml:"cloud_name"`
	APIKey         string        `yaml:"api_key"`
	APISecret      string        `yaml:"api_secret"`
	DestroyTimeout time.Duration `yaml:"destroy_timeout"`
}

type StoreConfig struct {
	Driver        string `yaml:"driver"`
	DataFile      string `yaml:"data_file"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	DSN           string `yaml:"dsn"`
}

type BackupConfig struct {
	Schedule string `yaml:"schedule"`
	Dir      string `yaml:"dir"`
	Keep     int    `yaml:"keep"`
}

type ContactConfig struct {
	WhatsAppNumber string `yaml:"whatsapp_number"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "3000",
			ClientOrigin: "*",
			MaxBodyBytes: 10 << 20,
		},
		App: AppConfig{
			Environment: "development",
			LogLevel:    "info",
			Version:     "1.0.0",
		},
		Cloudinary: CloudinaryConfig{
			DestroyTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			Driver:   StoreFile,
			DataFile: "data/projects.json",
		},
		Backup: BackupConfig{
			Dir:  "data/backups",
			Keep: 7,
		},
		Contact: ContactConfig{
			WhatsAppNumber: "6285782338277",
		},
	}
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeYAML(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) mergeYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.ClientOrigin = getEnv("CLIENT_ORIGIN", c.Server.ClientOrigin)
	c.Server.MaxBodyBytes = int64(getEnvAsInt("MAX_BODY_BYTES", int(c.Server.MaxBodyBytes)))

	c.App.Environment = getEnv("APP_ENV", getEnv("NODE_ENV", c.App.Environment))
	c.App.LogLevel = getEnv("LOG_LEVEL", c.App.LogLevel)
	c.App.Version = getEnv("APP_VERSION", c.App.Version)

	c.Admin.Public = getEnvAsBool("PUBLIC_ADMIN", c.Admin.Public)
	c.Admin.APIKey = getEnv("ADMIN_API_KEY", c.Admin.APIKey)

	c.Cloudinary.CloudName = getEnv("CLOUDINARY_CLOUD_NAME", c.Cloudinary.CloudName)
	c.Cloudinary.APIKey = getEnv("CLOUDINARY_API_KEY", c.Cloudinary.APIKey)
	c.Cloudinary.APISecret = getEnv("CLOUDINARY_API_SECRET", c.Cloudinary.APISecret)
	c.Cloudinary.DestroyTimeout = getEnvAsDuration("MEDIA_DESTROY_TIMEOUT", c.Cloudinary.DestroyTimeout)

	c.Store.Driver = strings.ToLower(getEnv("STORE_DRIVER", c.Store.Driver))
	c.Store.DataFile = getEnv("DATA_FILE", c.Store.DataFile)
	c.Store.RedisAddr = getEnv("REDIS_ADDR", c.Store.RedisAddr)
	c.Store.RedisPassword = getEnv("REDIS_PASSWORD", c.Store.RedisPassword)
	c.Store.RedisDB = getEnvAsInt("REDIS_DB", c.Store.RedisDB)
	c.Store.DSN = getEnv("DB_DSN", c.Store.DSN)

	c.Backup.Schedule = getEnv("BACKUP_SCHEDULE", c.Backup.Schedule)
	c.Backup.Dir = getEnv("BACKUP_DIR", c.Backup.Dir)
	c.Backup.Keep = getEnvAsInt("BACKUP_KEEP", c.Backup.Keep)

	c.Contact.WhatsAppNumber = getEnv("CONTACT_WHATSAPP_NUMBER", c.Contact.WhatsAppNumber)
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Store.Driver {
	case StoreFile:
		if c.Store.DataFile == "" {
			return fmt.Errorf("DATA_FILE is required for the file store")
		}
	case StoreRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis store")
		}
	case StorePostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("DB_DSN is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}

	return nil
}

// MissingKeys names the unset provider credentials by their env keys.
func (c CloudinaryConfig) MissingKeys() []string {
	var missing []string
	if c.CloudName == "" {
		missing = append(missing, "CLOUDINARY_CLOUD_NAME")
	}
	if c.APIKey == "" {
		missing = append(missing, "CLOUDINARY_API_KEY")
	}
	if c.APISecret == "" {
		missing = append(missing, "CLOUDINARY_API_SECRET")
	}
	return missing
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

// PUBLIC_ADMIN is only on for the literal "true".
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	return valueStr == "true"
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}
