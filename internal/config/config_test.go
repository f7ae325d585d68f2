package config

import (
	"testing"
	"time"
)

func TestParsePins(t *testing.T) {
	pins, err := ParsePins(" Cocina=1234 , barra=$2a$10$abc ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pins["cocina"] != "1234" {
		t.Fatalf("expected cocina pin, got %q", pins["cocina"])
	}
	if pins["barra"] != "$2a$10$abc" {
		t.Fatalf("expected barra hash, got %q", pins["barra"])
	}

	if _, err := ParsePins("cocina"); err == nil {
		t.Fatal("expected error for entry without pin")
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("KDS_API_KEY", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when KDS_API_KEY is missing")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("KDS_API_KEY", "secret")
	t.Setenv("KDS_PINS", "cocina=1111,barra=2222")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("KAFKA_BROKER", "kafka:9092")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "5000" {
		t.Fatalf("expected default port, got %s", cfg.Server.Port)
	}
	if len(cfg.Kitchen.Destinations) != 2 || cfg.Kitchen.DefaultDestination != "cocina" {
		t.Fatalf("unexpected destinations: %v default=%s", cfg.Kitchen.Destinations, cfg.Kitchen.DefaultDestination)
	}
	if len(cfg.Kafka.Brokers) != 1 || cfg.Kafka.Brokers[0] != "kafka:9092" {
		t.Fatalf("expected KAFKA_BROKER fallback, got %v", cfg.Kafka.Brokers)
	}
	if cfg.Security.TokenTTL != 12*time.Hour {
		t.Fatalf("unexpected token ttl %s", cfg.Security.TokenTTL)
	}
}

func TestLoadRejectsPinForUnknownDestination(t *testing.T) {
	t.Setenv("KDS_API_KEY", "secret")
	t.Setenv("KDS_PINS", "terraza=1234")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for pin on unknown destination")
	}
}

func TestTerminalValidate(t *testing.T) {
	cfg := &TerminalConfig{ServerURL: "http://kds", ReconnectMin: time.Second, ReconnectMax: 2 * time.Second}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error without destination or pin")
	}
	cfg.Destino = "cocina"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, pin := range []string{"12345", "1a23", "123"} {
		cfg.PIN = pin
		if err := cfg.Validate(); err == nil {
			t.Fatalf("expected error for pin %q", pin)
		}
	}
	cfg.PIN = "0420"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.ReconnectMax = time.Millisecond
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when max backoff is below min")
	}
}
