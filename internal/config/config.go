package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	Kafka     KafkaConfig
	Redis     RedisConfig
	Security  SecurityConfig
	Kitchen   KitchenConfig
	Websocket WebsocketConfig
}

type ServerConfig struct {
	Port string
}

type LoggingConfig struct {
	Directory string
	Level     string
	Format    string
}

// KafkaConfig lists the POS topics consumed by the server. Intake carries new
// orders, Alerts carries operator messages for the stations.
type KafkaConfig struct {
	Brokers      []string
	GroupID      string
	IntakeTopics []string
	AlertTopics  []string
}

// RedisConfig selects the Redis-backed order store when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SecurityConfig struct {
	APIKey    string
	JWTSecret string
	TokenTTL  time.Duration
	// Pins maps a destination to its PIN, either plain 4 digits or a bcrypt hash.
	Pins map[string]string
}

// KitchenConfig routes items whose id starts with a beverage prefix to
// BeverageDestination and everything else to DefaultDestination.
type KitchenConfig struct {
	Destinations        []string
	BeveragePrefixes    []string
	BeverageDestination string
	DefaultDestination  string
	// OrderRetention is how long finished order ids still count as duplicates.
	OrderRetention time.Duration
}

type WebsocketConfig struct {
	SendBuffer   int
	PingInterval time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{Port: envOr("PORT", "5000")},
		Logging: LoggingConfig{
			Directory: envOr("LOG_DIR", "./logs"),
			Level:     envOr("LOG_LEVEL", "info"),
			Format:    envOr("LOG_FORMAT", "text"),
		},
		Kafka: KafkaConfig{
			Brokers:      brokersFromEnv(),
			GroupID:      envOr("KAFKA_GROUP_ID", "kds-server"),
			IntakeTopics: splitList(envOr("KAFKA_INTAKE_TOPICS", "pos.orders.created")),
			AlertTopics:  splitList(envOr("KAFKA_ALERT_TOPICS", "pos.kds.message")),
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Security: SecurityConfig{
			APIKey:    strings.TrimSpace(os.Getenv("KDS_API_KEY")),
			JWTSecret: strings.TrimSpace(os.Getenv("JWT_SECRET")),
		},
		Kitchen: KitchenConfig{
			Destinations:     splitList(envOr("KDS_DESTINATIONS", "cocina,barra")),
			BeveragePrefixes: splitList(envOr("KDS_BEVERAGE_PREFIXES", "MIC,OBA,BSA,CER,RTD")),
		},
	}

	var err error
	if cfg.Redis.DB, err = intFromEnv("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.Security.TokenTTL, err = durationFromEnv("KDS_TOKEN_TTL", 12*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Kitchen.OrderRetention, err = durationFromEnv("KDS_ORDER_RETENTION", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Websocket.SendBuffer, err = intFromEnv("WS_SEND_BUFFER", 16); err != nil {
		return nil, err
	}
	if cfg.Websocket.PingInterval, err = durationFromEnv("WS_PING_INTERVAL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.Security.Pins, err = ParsePins(os.Getenv("KDS_PINS")); err != nil {
		return nil, err
	}
	if cfg.Security.APIKey == "" {
		return nil, fmt.Errorf("KDS_API_KEY is required")
	}
	for i, d := range cfg.Kitchen.Destinations {
		cfg.Kitchen.Destinations[i] = strings.ToLower(d)
	}
	if len(cfg.Kitchen.Destinations) == 0 {
		return nil, fmt.Errorf("KDS_DESTINATIONS must name at least one destination")
	}
	cfg.Kitchen.DefaultDestination = strings.ToLower(envOr("KDS_DEFAULT_DESTINATION", cfg.Kitchen.Destinations[0]))
	cfg.Kitchen.BeverageDestination = strings.ToLower(envOr("KDS_BEVERAGE_DESTINATION", "barra"))
	if !contains(cfg.Kitchen.Destinations, cfg.Kitchen.DefaultDestination) {
		return nil, fmt.Errorf("KDS_DEFAULT_DESTINATION %q is not a known destination", cfg.Kitchen.DefaultDestination)
	}
	if len(cfg.Kitchen.BeveragePrefixes) > 0 && !contains(cfg.Kitchen.Destinations, cfg.Kitchen.BeverageDestination) {
		return nil, fmt.Errorf("KDS_BEVERAGE_DESTINATION %q is not a known destination", cfg.Kitchen.BeverageDestination)
	}
	for destino := range cfg.Security.Pins {
		if !contains(cfg.Kitchen.Destinations, destino) {
			return nil, fmt.Errorf("KDS_PINS references unknown destination %q", destino)
		}
	}
	return cfg, nil
}

// ParsePins reads "cocina=1234,barra=$2a$10$..." into a destination -> pin map.
func ParsePins(raw string) (map[string]string, error) {
	pins := make(map[string]string)
	for _, entry := range splitList(raw) {
		destino, pin, ok := strings.Cut(entry, "=")
		destino = strings.ToLower(strings.TrimSpace(destino))
		pin = strings.TrimSpace(pin)
		if !ok || destino == "" || pin == "" {
			return nil, fmt.Errorf("invalid KDS_PINS entry %q", entry)
		}
		pins[destino] = pin
	}
	return pins, nil
}

func brokersFromEnv() []string {
	if raw := os.Getenv("KAFKA_BROKERS"); strings.TrimSpace(raw) != "" {
		return splitList(raw)
	}
	return splitList(os.Getenv("KAFKA_BROKER"))
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intFromEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return v, nil
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}
