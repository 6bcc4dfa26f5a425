package logging

import (
	"bufio"
	"net"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLogstashSinkDeliversLines(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	lines := make(chan string, 4)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	sink, err := NewLogstashSink(ln.Addr().String())
	if err != nil {
		t.Fatalf("NewLogstashSink: %v", err)
	}
	logger := zap.New(zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), sink, zapcore.InfoLevel))
	logger.Info("trip created", zap.String("title", "Rysy"))
	sink.Close()

	select {
	case line := <-lines:
		if !strings.Contains(line, `"msg":"trip created"`) || !strings.Contains(line, `"title":"Rysy"`) {
			t.Fatalf("unexpected line %s", line)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no line received")
	}
}

func TestLogstashSinkNeverBlocksWhenUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	sink, err := NewLogstashSink(addr, WithQueueSize(2), WithDialTimeout(50*time.Millisecond), WithRetryInterval(time.Hour))
	if err != nil {
		t.Fatalf("NewLogstashSink: %v", err)
	}
	defer sink.Close()

	start := time.Now()
	for i := 0; i < 500; i++ {
		if n, err := sink.Write([]byte("line")); err != nil || n != 4 {
			t.Fatalf("Write returned %d, %v", n, err)
		}
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("writes blocked for %s", elapsed)
	}
}

func TestNewLogstashSinkRejectsEmptyAddress(t *testing.T) {
	if _, err := NewLogstashSink("  "); err != ErrEmptyAddress {
		t.Fatalf("expected ErrEmptyAddress, got %v", err)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, _, err := New(Config{Level: "chatty"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	logger, closer, err := New(Config{Level: "debug", Service: "logbook-test"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer closer()
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug level enabled")
	}
}
