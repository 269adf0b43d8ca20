package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	MongoURI          string
	DBName            string
	JWTSecret         string
	SessionTTL        time.Duration
	Port              string
	EmailHost         string
	EmailPort         string
	EmailUser         string
	EmailPassword     string
	EmailSenderName   string
	DefaultOrderEmail string
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		MongoURI:          mustEnv("MONGODB_URI"),
		DBName:            getEnvOrDefault("DB_NAME", "biomax"),
		JWTSecret:         mustEnv("JWT_SECRET"),
		SessionTTL:        getDurationEnv("SESSION_TTL_DAYS", 14, 24*time.Hour),
		Port:              getEnvOrDefault("PORT", "8080"),
		EmailHost:         getEnvOrDefault("EMAIL_HOST", "smtp.gmail.com"),
		EmailPort:         getEnvOrDefault("EMAIL_PORT", "587"),
		EmailUser:         getEnvOrDefault("EMAIL_USER", ""),
		EmailPassword:     getEnvOrDefault("EMAIL_PASSWORD", ""),
		EmailSenderName:   getEnvOrDefault("EMAIL_SENDER_NAME", "바이오맥스 주문시스템"),
		DefaultOrderEmail: getEnvOrDefault("DEFAULT_ORDER_EMAIL", ""),
	}
}

func mustEnv(key string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		log.Fatalf("ENV %s is required", key)
	}
	return value
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}
