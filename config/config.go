package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Library backends.
const (
	LibraryLocal = "local"
	LibraryMinio = "minio"
)

// Custom playlist store backends.
const (
	StoreFile   = "file"
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreMySQL  = "mysql"
)

// Config stores the application configuration.
type Config struct {
	Port string

	// 日志配置
	LogLevel      string
	LogFile       string // empty: console only
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int

	// 音乐库
	LibraryBackend string
	MusicDir       string // local backend: one sub directory per folder
	WatchLibrary   bool   // refresh cached listings on filesystem events

	// MinIO配置
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MinioRegion    string
	MinioPrefix    string // object prefix holding one "directory" per folder

	// 自定义歌单存储
	StoreBackend string
	DataDir      string // file backend

	// Redis配置
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// MySQL配置
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// 会话
	SessionSecret  string
	SessionIdleTTL time.Duration
	CookieSecure   bool
	DefaultLang    string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}
	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() *Config {
	dataDir := getEnv("DATA_DIR", "data")

	return &Config{
		Port: getEnv("PORT", "8080"),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFile:       getEnv("LOG_FILE", filepath.Join("logs", "songshelf.log")),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 30),

		LibraryBackend: strings.ToLower(getEnv("LIBRARY_BACKEND", LibraryLocal)),
		MusicDir:       getEnv("MUSIC_DIR", "music"),
		WatchLibrary:   getEnvBool("WATCH_LIBRARY", true),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET", "songshelf"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),
		MinioRegion:    getEnv("MINIO_REGION", "us-east-1"),
		MinioPrefix:    getEnv("MINIO_PREFIX", "music/"),

		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", StoreFile)),
		DataDir:      dataDir,

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""), // 默认无密码
		RedisDB:       getEnvInt("REDIS_DB", 0),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"), // no hardcoded default for the password
		DBName:     getEnv("DB_NAME", "songshelf"),

		SessionSecret:  os.Getenv("SESSION_SECRET"),
		SessionIdleTTL: getEnvDuration("SESSION_IDLE_TTL", 12*time.Hour),
		CookieSecure:   getEnvBool("COOKIE_SECURE", false),
		DefaultLang:    getEnv("DEFAULT_LANG", "en"),
	}
}

// Addr returns the listen address for Port.
func (c *Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
