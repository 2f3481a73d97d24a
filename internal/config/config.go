package config

import (
	"log"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Admin     AdminConfig
	Uploads   UploadsConfig
	Currency  CurrencyConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	PublicURL      string
	AllowedOrigins []string
}

// IsDevelopment reports whether the server runs outside production.
func (s ServerConfig) IsDevelopment() bool {
	return s.Env != "production"
}

type DatabaseConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	Database      string
	Schema        string
	MigrationsDir string
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     d.Database,
		RawQuery: url.Values{"sslmode": {"disable"}, "search_path": {d.Schema}}.Encode(),
	}
	return dsn.String()
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns the host:port address of the Redis server.
func (r RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, r.Port)
}

type JWTConfig struct {
	Secret       string
	AccessExpiry int // in minutes
}

type AdminConfig struct {
	Username     string
	Password     string
	PasswordHash string // bcrypt, takes precedence over Password
}

type UploadsConfig struct {
	Driver    string // local or cloudinary
	Dir       string
	URLPrefix string
	MaxSizeMB int64

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string
}

// MaxBytes returns the upload size limit in bytes.
func (u UploadsConfig) MaxBytes() int64 {
	return u.MaxSizeMB << 20
}

type CurrencyConfig struct {
	GeoURL                 string
	RatesURL               string
	DefaultCountry         string
	DefaultCurrencyCountry string
	FallbackSymbol         string
	CacheTTL               time.Duration
	Timeout                time.Duration
}

type RateLimitConfig struct {
	LoginRequests int
	LoginWindow   time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not read .env file: %v", err)
	}

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "5002")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("PUBLIC_URL", "http://localhost:5002")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("MIGRATIONS_DIR", "migrations")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("JWT_ACCESS_EXPIRY", 480)
	viper.SetDefault("ADMIN_USERNAME", "admin")
	viper.SetDefault("UPLOADS_DRIVER", "local")
	viper.SetDefault("UPLOADS_DIR", "uploads")
	viper.SetDefault("UPLOADS_URL_PREFIX", "/uploads")
	viper.SetDefault("UPLOADS_MAX_SIZE_MB", 10)
	viper.SetDefault("CLOUDINARY_FOLDER", "boutique")
	viper.SetDefault("GEO_URL", "https://ipapi.co")
	viper.SetDefault("RATES_URL", "https://api.exchangerate-api.com/v4/latest/INR")
	viper.SetDefault("DEFAULT_COUNTRY", "US")
	viper.SetDefault("DEFAULT_CURRENCY_COUNTRY", "AE")
	viper.SetDefault("FALLBACK_CURRENCY_SYMBOL", "$")
	viper.SetDefault("CURRENCY_CACHE_TTL", "10m")
	viper.SetDefault("CURRENCY_TIMEOUT", "5s")
	viper.SetDefault("LOGIN_RATE_LIMIT", 10)
	viper.SetDefault("LOGIN_RATE_WINDOW", "1m")

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Env:            viper.GetString("SERVER_ENV"),
			LogLevel:       viper.GetString("LOG_LEVEL"),
			PublicURL:      strings.TrimRight(viper.GetString("PUBLIC_URL"), "/"),
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:          viper.GetString("DB_HOST"),
			Port:          viper.GetString("DB_PORT"),
			User:          viper.GetString("DB_USER"),
			Password:      viper.GetString("DB_PASSWORD"),
			Database:      viper.GetString("DB_DATABASE"),
			Schema:        viper.GetString("DB_SCHEMA"),
			MigrationsDir: viper.GetString("MIGRATIONS_DIR"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:       viper.GetString("JWT_SECRET"),
			AccessExpiry: viper.GetInt("JWT_ACCESS_EXPIRY"),
		},
		Admin: AdminConfig{
			Username:     viper.GetString("ADMIN_USERNAME"),
			Password:     viper.GetString("ADMIN_PASSWORD"),
			PasswordHash: viper.GetString("ADMIN_PASSWORD_HASH"),
		},
		Uploads: UploadsConfig{
			Driver:              viper.GetString("UPLOADS_DRIVER"),
			Dir:                 viper.GetString("UPLOADS_DIR"),
			URLPrefix:           "/" + strings.Trim(viper.GetString("UPLOADS_URL_PREFIX"), "/"),
			MaxSizeMB:           viper.GetInt64("UPLOADS_MAX_SIZE_MB"),
			CloudinaryCloudName: viper.GetString("CLOUDINARY_CLOUD_NAME"),
			CloudinaryAPIKey:    viper.GetString("CLOUDINARY_API_KEY"),
			CloudinaryAPISecret: viper.GetString("CLOUDINARY_API_SECRET"),
			CloudinaryFolder:    viper.GetString("CLOUDINARY_FOLDER"),
		},
		Currency: CurrencyConfig{
			GeoURL:                 strings.TrimRight(viper.GetString("GEO_URL"), "/"),
			RatesURL:               viper.GetString("RATES_URL"),
			DefaultCountry:         strings.ToUpper(viper.GetString("DEFAULT_COUNTRY")),
			DefaultCurrencyCountry: strings.ToUpper(viper.GetString("DEFAULT_CURRENCY_COUNTRY")),
			FallbackSymbol:         viper.GetString("FALLBACK_CURRENCY_SYMBOL"),
			CacheTTL:               viper.GetDuration("CURRENCY_CACHE_TTL"),
			Timeout:                viper.GetDuration("CURRENCY_TIMEOUT"),
		},
		RateLimit: RateLimitConfig{
			LoginRequests: viper.GetInt("LOGIN_RATE_LIMIT"),
			LoginWindow:   viper.GetDuration("LOGIN_RATE_WINDOW"),
		},
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
