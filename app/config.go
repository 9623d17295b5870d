package app

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 从环境变量读取
type Config struct {
	Port string

	DBDriver string
	DBDSN    string

	RedisAddr string
	RedisPwd  string

	WebOrigin  string
	SessionTTL time.Duration

	DefaultLoanDays int

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	StaffEmails []string
	LogLevel    string
}

func LoadConfig() Config {
	viper.SetDefault("PORT", "3001")
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=deviceloan port=5432 sslmode=disable")
	viper.SetDefault("REDIS_ADDR", "127.0.0.1:6379")
	viper.SetDefault("WEB_ORIGIN", "http://localhost:3000")
	viper.SetDefault("SESSION_TTL_SECONDS", 86400)
	viper.SetDefault("DEFAULT_LOAN_DURATION_DAYS", 2)
	viper.SetDefault("SMTP_HOST", "127.0.0.1")
	viper.SetDefault("SMTP_PORT", 25)
	viper.SetDefault("SMTP_FROM", "Device Loans <noreply@deviceloans.edu>")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.AutomaticEnv()

	// 例如: "it-desk@ex.edu,ops@ex.edu"
	var staff []string
	for _, s := range strings.Split(viper.GetString("STAFF_EMAILS"), ",") {
		if t := strings.TrimSpace(s); t != "" {
			staff = append(staff, strings.ToLower(t))
		}
	}

	return Config{
		Port:            viper.GetString("PORT"),
		DBDriver:        viper.GetString("DB_DRIVER"),
		DBDSN:           viper.GetString("DB_DSN"),
		RedisAddr:       viper.GetString("REDIS_ADDR"),
		RedisPwd:        viper.GetString("REDIS_PASSWORD"),
		WebOrigin:       viper.GetString("WEB_ORIGIN"),
		SessionTTL:      time.Duration(viper.GetInt("SESSION_TTL_SECONDS")) * time.Second,
		DefaultLoanDays: viper.GetInt("DEFAULT_LOAN_DURATION_DAYS"),
		SMTPHost:        viper.GetString("SMTP_HOST"),
		SMTPPort:        viper.GetInt("SMTP_PORT"),
		SMTPUsername:    viper.GetString("SMTP_USERNAME"),
		SMTPPassword:    viper.GetString("SMTP_PASSWORD"),
		SMTPFrom:        viper.GetString("SMTP_FROM"),
		StaffEmails:     staff,
		LogLevel:        viper.GetString("LOG_LEVEL"),
	}
}

func (c Config) IsStaffEmail(email string) bool {
	email = strings.ToLower(email)
	for _, s := range c.StaffEmails {
		if s == email {
			return true
		}
	}
	return false
}
