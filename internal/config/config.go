package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string
	DBUrl      string
	JWTSecret  string
	BackendURL string
	Timezone   string

	CalendarBatchSize   int
	CalendarWeekStart   string
	CalendarErrorPolicy string
	CalendarMaxDays     int

	BackendTimeout time.Duration
	BackendRetries uint
	BackendRPS     float64

	RedisURL string

	SlipBucket  string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	LogFile string

	// CORSOrigins is a comma separated allow list; empty admits any origin.
	CORSOrigins []string
}

// Load reads the environment, after an optional .env file.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env not loaded: %v", err)
	}

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		DBUrl:      getEnv("DATABASE_URL", ""),
		JWTSecret:  getEnv("JWT_SECRET", "changeme"),
		BackendURL: getEnv("BACKEND_URL", "http://localhost:5000"),
		Timezone:   getEnv("TIMEZONE", "Asia/Colombo"),

		CalendarBatchSize:   getInt("CALENDAR_BATCH_SIZE", 7),
		CalendarWeekStart:   getEnv("CALENDAR_WEEK_START", "monday"),
		CalendarErrorPolicy: getEnv("CALENDAR_ERROR_POLICY", "swallow"),
		CalendarMaxDays:     getInt("CALENDAR_MAX_DAYS", 42),

		BackendTimeout: getDuration("BACKEND_TIMEOUT", 15*time.Second),
		BackendRetries: uint(getInt("BACKEND_RETRIES", 1)),
		BackendRPS:     getFloat("BACKEND_RPS", 0),

		RedisURL: getEnv("REDIS_URL", ""),

		SlipBucket:  getEnv("SLIP_BUCKET", ""),
		S3Region:    getEnv("S3_REGION", "ap-south-1"),
		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),

		LogFile: getEnv("LOG_FILE", ""),

		CORSOrigins: getList("CORS_ORIGINS"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || v < 0 {
		return def
	}
	return v
}

func getFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil || v < 0 {
		return def
	}
	return v
}

func getList(key string) []string {
	var out []string
	for _, v := range strings.Split(getEnv(key, ""), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%s", c.ServerPort)
}
