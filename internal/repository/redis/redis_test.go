package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestConnect(t *testing.T) {
	srv := miniredis.RunT(t)

	rdb, err := Connect(context.Background(), "redis://"+srv.Addr()+"/0")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer rdb.Close()

	if err := rdb.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, _ := srv.Get("k"); got != "v" {
		t.Fatalf("expected v, got %q", got)
	}
}

func TestConnectRejectsBadURL(t *testing.T) {
	if _, err := Connect(context.Background(), "not a url"); err == nil {
		t.Fatalf("expected error")
	}
}
