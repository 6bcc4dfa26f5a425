// Package logging builds the process logger.
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Level        string
	LogstashAddr string
	Service      string
}

// New returns a JSON logger on stdout. When LogstashAddr is set the same
// entries are mirrored to Logstash; the returned closer releases that sink.
func New(cfg Config) (*zap.Logger, func() error, error) {
	level := zapcore.InfoLevel
	if strings.TrimSpace(cfg.Level) != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
			return nil, nil, err
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encCfg)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level),
	}

	closer := func() error { return nil }
	if addr := strings.TrimSpace(cfg.LogstashAddr); addr != "" {
		sink, err := NewLogstashSink(addr)
		if err != nil {
			return nil, nil, err
		}
		cores = append(cores, zapcore.NewCore(encoder.Clone(), sink, level))
		closer = sink.Close
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	if cfg.Service != "" {
		logger = logger.With(zap.String("service", cfg.Service))
	}
	return logger, closer, nil
}
