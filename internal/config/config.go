package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv            string
	Addr              string
	ApiPrefix         string
	DbDriver          string
	DbDsn             string
	JwtSecret         string
	JwtRefreshSecret  string
	JwtAccessMinutes  int
	JwtRefreshHours   int
	SmtpHost          string
	SmtpPort          int
	SmtpUser          string
	SmtpPass          string
	SmtpFrom          string
	AllowedOriginsRaw string
	CompanyName       string
	CompanyAddress    string
	AnnualLeaveDays   int
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppEnv:            getEnv("APP_ENV", "local"),
		Addr:              getEnv("APP_ADDR", ":8080"),
		ApiPrefix:         getEnv("API_PREFIX", "/api"),
		DbDriver:          strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		DbDsn:             os.Getenv("DB_DSN"),
		JwtSecret:         os.Getenv("JWT_SECRET"),
		JwtRefreshSecret:  os.Getenv("JWT_REFRESH_SECRET"),
		JwtAccessMinutes:  getEnvInt("JWT_ACCESS_MINUTES", 15),
		JwtRefreshHours:   getEnvInt("JWT_REFRESH_HOURS", 168),
		SmtpHost:          os.Getenv("SMTP_HOST"),
		SmtpPort:          getEnvInt("SMTP_PORT", 587),
		SmtpUser:          os.Getenv("SMTP_USER"),
		SmtpPass:          os.Getenv("SMTP_PASS"),
		SmtpFrom:          os.Getenv("SMTP_FROM"),
		AllowedOriginsRaw: getEnv("ALLOWED_ORIGINS", ""),
		CompanyName:       getEnv("COMPANY_NAME", "DayFlow HRMS"),
		CompanyAddress:    getEnv("COMPANY_ADDRESS", ""),
		AnnualLeaveDays:   getEnvInt("ANNUAL_LEAVE_DAYS", 20),
	}

	missing := []string{}
	if cfg.DbDsn == "" && cfg.DbDriver != "memory" {
		missing = append(missing, "DB_DSN")
	}
	if cfg.JwtSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if cfg.JwtRefreshSecret == "" {
		missing = append(missing, "JWT_REFRESH_SECRET")
	}
	// SMTP is optional but must be complete once a host is set.
	if cfg.SmtpHost != "" && cfg.SmtpFrom == "" {
		missing = append(missing, "SMTP_FROM")
	}

	if len(missing) > 0 {
		return cfg, errors.New("missing env: " + strings.Join(missing, ", "))
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c Config) SmtpEnabled() bool {
	return c.SmtpHost != ""
}

// AllowedOrigins splits ALLOWED_ORIGINS; empty means every origin.
func (c Config) AllowedOrigins() []string {
	origins := []string{}
	for _, origin := range strings.Split(c.AllowedOriginsRaw, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
