package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime settings. Every value has a default and can be
// overridden through the environment variable of the same name.
type Config struct {
	// Server
	Port        string
	CORSOrigins []string
	LogLevel    string

	// Database
	MongoURI      string
	MongoDatabase string

	// Security
	SecretKey      string
	AccessTokenTTL time.Duration
	AdminEmail     string
	AdminPassword  string

	// File upload
	MaxUploadSize   int64
	AllowedTypes    []string
	UploadDirectory string

	// OCR
	AzureOCRKey      string
	AzureOCREndpoint string
	TesseractPath    string
	OCRTimeout       time.Duration
	MinConfidence    float64

	// ERP
	QuickBooksClientID     string
	QuickBooksClientSecret string
	XeroClientID           string
	XeroClientSecret       string
}

// Load reads settings from the environment with sensible defaults.
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	// List settings are comma-separated in the environment.
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGODB_DATABASE", "docbot")

	v.SetDefault("SECRET_KEY", "docbot-secret-key-change-in-production")
	v.SetDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 30)
	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD", "")

	v.SetDefault("MAX_UPLOAD_SIZE", 50*1024*1024)
	v.SetDefault("ALLOWED_UPLOAD_TYPES", "pdf,png,jpg,jpeg")
	v.SetDefault("UPLOAD_DIRECTORY", "uploads")

	v.SetDefault("AZURE_COG_SERVICES_KEY", "")
	v.SetDefault("AZURE_COG_SERVICES_ENDPOINT", "")
	v.SetDefault("TESSERACT_PATH", "/usr/bin/tesseract")
	v.SetDefault("OCR_TIMEOUT_SECONDS", 30)
	v.SetDefault("MIN_CONFIDENCE_THRESHOLD", 0.7)

	v.SetDefault("QUICKBOOKS_CLIENT_ID", "")
	v.SetDefault("QUICKBOOKS_CLIENT_SECRET", "")
	v.SetDefault("XERO_CLIENT_ID", "")
	v.SetDefault("XERO_CLIENT_SECRET", "")

	return &Config{
		Port:        v.GetString("PORT"),
		CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),
		LogLevel:    v.GetString("LOG_LEVEL"),

		MongoURI:      v.GetString("MONGODB_URI"),
		MongoDatabase: v.GetString("MONGODB_DATABASE"),

		SecretKey:      v.GetString("SECRET_KEY"),
		AccessTokenTTL: time.Duration(v.GetInt("ACCESS_TOKEN_EXPIRE_MINUTES")) * time.Minute,
		AdminEmail:     v.GetString("ADMIN_EMAIL"),
		AdminPassword:  v.GetString("ADMIN_PASSWORD"),

		MaxUploadSize:   v.GetInt64("MAX_UPLOAD_SIZE"),
		AllowedTypes:    splitList(v.GetString("ALLOWED_UPLOAD_TYPES")),
		UploadDirectory: v.GetString("UPLOAD_DIRECTORY"),

		AzureOCRKey:      v.GetString("AZURE_COG_SERVICES_KEY"),
		AzureOCREndpoint: v.GetString("AZURE_COG_SERVICES_ENDPOINT"),
		TesseractPath:    v.GetString("TESSERACT_PATH"),
		OCRTimeout:       time.Duration(v.GetInt("OCR_TIMEOUT_SECONDS")) * time.Second,
		MinConfidence:    v.GetFloat64("MIN_CONFIDENCE_THRESHOLD"),

		QuickBooksClientID:     v.GetString("QUICKBOOKS_CLIENT_ID"),
		QuickBooksClientSecret: v.GetString("QUICKBOOKS_CLIENT_SECRET"),
		XeroClientID:           v.GetString("XERO_CLIENT_ID"),
		XeroClientSecret:       v.GetString("XERO_CLIENT_SECRET"),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
