package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/logbook")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("STORE_DRIVER", "")

	cfg := Load()
	if cfg.StoreDriver != StoreDriverPostgres {
		t.Fatalf("expected postgres driver, got %s", cfg.StoreDriver)
	}
	if cfg.SessionTTL != 7*24*time.Hour {
		t.Fatalf("expected one week session ttl, got %s", cfg.SessionTTL)
	}
	if cfg.TripImageMaxBytes != 5*1024*1024 {
		t.Fatalf("unexpected image limit %d", cfg.TripImageMaxBytes)
	}
	if cfg.WeatherTimeout != 10*time.Second || cfg.GazetteerTimeout != 30*time.Second {
		t.Fatalf("unexpected timeouts %s %s", cfg.WeatherTimeout, cfg.GazetteerTimeout)
	}
	if cfg.ImageHostingEnabled() {
		t.Fatalf("expected image hosting disabled without credentials")
	}
}

func TestLoadMongoRequiresURI(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "mongo")
	t.Setenv("MONGO_URI", "")

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for missing MONGO_URI")
		}
	}()
	Load()
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "MONGO")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("ALLOW_ORIGINS", "http://localhost:3000, https://logbook.example ,")
	t.Setenv("WEATHER_TIMEOUT", "3s")
	t.Setenv("AUTH_RATE_LIMIT", "not-a-number")

	cfg := Load()
	if cfg.StoreDriver != StoreDriverMongo || cfg.MongoURI == "" {
		t.Fatalf("expected mongo driver, got %+v", cfg)
	}
	if len(cfg.AllowOrigins) != 2 || cfg.AllowOrigins[1] != "https://logbook.example" {
		t.Fatalf("unexpected origins %v", cfg.AllowOrigins)
	}
	if cfg.WeatherTimeout != 3*time.Second {
		t.Fatalf("expected 3s weather timeout, got %s", cfg.WeatherTimeout)
	}
	if cfg.AuthRateLimit != 5 {
		t.Fatalf("expected default rate limit, got %v", cfg.AuthRateLimit)
	}
}
