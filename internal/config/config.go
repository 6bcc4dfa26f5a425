package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
)

type Config struct {
	Port            string
	StoreDriver     string
	DatabaseURL     string
	MongoURI        string
	MongoDatabase   string
	JWTSecret       string
	SessionTTL      time.Duration
	GoogleAudience  string
	AllowOrigins    []string
	AuthRateLimit   float64
	LogLevel        string
	LogstashTCPAddr string

	MinIOEndpoint    string
	MinIOAccessKey   string
	MinIOSecretKey   string
	MinIOUseSSL      bool
	MinIOBucketTrips string
	MinIOPublicURL   string

	TripImageMaxBytes int64
	ImageMaxDimension int
	FFMPEGPath        string

	WeatherGeocodingURL string
	WeatherArchiveURL   string
	WeatherAPIKey       string
	WeatherTimeout      time.Duration
	WeatherCacheTTL     time.Duration
	RedisURL            string

	OverpassURL      string
	GazetteerTimeout time.Duration
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := Config{
		Port:            getenv("PORT", "5000"),
		StoreDriver:     strings.ToLower(getenv("STORE_DRIVER", StoreDriverPostgres)),
		MongoDatabase:   getenv("MONGO_DATABASE", "mountain_logbook"),
		JWTSecret:       must("JWT_SECRET"),
		SessionTTL:      durationEnv("SESSION_TTL", 7*24*time.Hour),
		GoogleAudience:  getenv("GOOGLE_AUDIENCE", ""),
		AllowOrigins:    splitAndTrim(getenv("ALLOW_ORIGINS", "*")),
		AuthRateLimit:   floatEnv("AUTH_RATE_LIMIT", 5),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogstashTCPAddr: getenv("LOGSTASH_TCP_ADDR", ""),

		MinIOEndpoint:    getenv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:   getenv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:   getenv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:      getenv("MINIO_USE_SSL", "false") == "true",
		MinIOBucketTrips: getenv("MINIO_BUCKET_TRIPS", "mountain-trips"),
		MinIOPublicURL:   getenv("MINIO_PUBLIC_URL", ""),

		TripImageMaxBytes: int64Env("TRIP_IMAGE_MAX_BYTES", 5*1024*1024),
		ImageMaxDimension: int(int64Env("IMAGE_MAX_DIMENSION", 2048)),
		FFMPEGPath:        getenv("FFMPEG_PATH", ""),

		WeatherGeocodingURL: getenv("WEATHER_GEOCODING_URL", ""),
		WeatherArchiveURL:   getenv("WEATHER_ARCHIVE_URL", ""),
		WeatherAPIKey:       getenv("WEATHER_API_KEY", ""),
		WeatherTimeout:      durationEnv("WEATHER_TIMEOUT", 10*time.Second),
		WeatherCacheTTL:     durationEnv("WEATHER_CACHE_TTL", 30*24*time.Hour),
		RedisURL:            getenv("REDIS_URL", ""),

		OverpassURL:      getenv("OVERPASS_URL", ""),
		GazetteerTimeout: durationEnv("GAZETTEER_TIMEOUT", 30*time.Second),
	}

	switch cfg.StoreDriver {
	case StoreDriverMongo:
		cfg.MongoURI = must("MONGO_URI")
	default:
		cfg.StoreDriver = StoreDriverPostgres
		cfg.DatabaseURL = must("DATABASE_URL")
	}

	return cfg
}

// ImageHostingEnabled reports whether MinIO credentials are configured.
func (c Config) ImageHostingEnabled() bool {
	return c.MinIOEndpoint != "" && c.MinIOAccessKey != "" && c.MinIOSecretKey != ""
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func durationEnv(k string, d time.Duration) time.Duration {
	if v, err := time.ParseDuration(getenv(k, "")); err == nil && v > 0 {
		return v
	}
	return d
}

func int64Env(k string, d int64) int64 {
	if v, err := strconv.ParseInt(getenv(k, ""), 10, 64); err == nil && v > 0 {
		return v
	}
	return d
}

func floatEnv(k string, d float64) float64 {
	if v, err := strconv.ParseFloat(getenv(k, ""), 64); err == nil && v > 0 {
		return v
	}
	return d
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
