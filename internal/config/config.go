package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// ServerConfig holds all configuration for the route API server.
type ServerConfig struct {
	Port            string
	MongoURI        string
	MongoDB         string
	AuthRequired    bool
	JWTSecret       string
	JWTExpiry       time.Duration
	RateLimitRPS    float64
	RateLimitBurst  int
	MQTTBroker      string
	MQTTTopicPrefix string
	LogLevel        string
	LogFormat       string
	TrustedProxies  []string
	AuthMode        string // "google" verifies Google ID tokens, "local" accepts JWTSecret tokens
	GoogleClientID  string
	OIDCIssuer      string
}

// PlannerConfig holds configuration for the terminal planner client.
type PlannerConfig struct {
	APIBaseURL         string
	DirectionsProvider string
	DirectionsBaseURL  string
	MapboxToken        string
	GoogleMapsKey      string
	IdentityName       string
	IdentityPhotoURL   string
	PassphraseHash     string
	JWTSecret          string
	JWTExpiry          time.Duration
	LogLevel           string
	IdentityProvider   string
	GoogleClientID     string
	GoogleClientSecret string
	OIDCIssuer         string
}

// LoadEnv loads a .env file if present. A missing file is not an error.
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Failed to load .env file")
	}
}

// LoadServer reads server configuration from environment variables.
func LoadServer() *ServerConfig {
	LoadEnv()
	return &ServerConfig{
		Port:            getEnv("PORT", "5000"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         getEnv("MONGO_DB", "walkroutes"),
		AuthRequired:    getBool("AUTH_REQUIRED", false),
		JWTSecret:       getEnv("JWT_SECRET", "default-secret-key-change-in-production"),
		JWTExpiry:       getDuration("JWT_EXPIRY", 24*time.Hour),
		RateLimitRPS:    getFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:  getInt("RATE_LIMIT_BURST", 20),
		MQTTBroker:      os.Getenv("MQTT_BROKER"),
		MQTTTopicPrefix: getEnv("MQTT_TOPIC_PREFIX", "walkroutes"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
		TrustedProxies:  getList("TRUSTED_PROXIES"),
		AuthMode:        authMode("AUTH_MODE"),
		GoogleClientID:  os.Getenv("GOOGLE_CLIENT_ID"),
		OIDCIssuer:      getEnv("OIDC_ISSUER", googleIssuer),
	}
}

// LoadPlanner reads planner configuration from environment variables.
func LoadPlanner() *PlannerConfig {
	LoadEnv()
	return &PlannerConfig{
		APIBaseURL:         strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:5000"), "/"),
		DirectionsProvider: strings.ToLower(getEnv("DIRECTIONS_PROVIDER", "mapbox")),
		DirectionsBaseURL:  os.Getenv("DIRECTIONS_BASE_URL"),
		MapboxToken:        os.Getenv("MAPBOX_TOKEN"),
		GoogleMapsKey:      os.Getenv("GOOGLE_MAPS_KEY"),
		IdentityName:       getEnv("IDENTITY_NAME", os.Getenv("USER")),
		IdentityPhotoURL:   os.Getenv("IDENTITY_PHOTO_URL"),
		PassphraseHash:     os.Getenv("IDENTITY_PASSPHRASE_HASH"),
		JWTSecret:          getEnv("JWT_SECRET", "default-secret-key-change-in-production"),
		JWTExpiry:          getDuration("JWT_EXPIRY", 24*time.Hour),
		LogLevel:           getEnv("LOG_LEVEL", "warn"),
		IdentityProvider:   authMode("IDENTITY_PROVIDER"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		OIDCIssuer:         getEnv("OIDC_ISSUER", googleIssuer),
	}
}

const googleIssuer = "https://accounts.google.com"

// authMode reads key, defaulting to google when a Google client is configured.
func authMode(key string) string {
	if v := strings.ToLower(strings.TrimSpace(os.Getenv(key))); v != "" {
		return v
	}
	if os.Getenv("GOOGLE_CLIENT_ID") != "" {
		return "google"
	}
	return "local"
}

// ConfigureLogging applies level and format to the standard logrus logger.
func ConfigureLogging(level, format string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.WithField("level", level).Warn("Unknown log level, using info")
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
	if format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
