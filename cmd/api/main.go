package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/BorzykhIvan/Mountain-Logbook/internal/config"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/gazetteer"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/logging"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/media"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/repository/minio"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/repository/mongo"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/repository/ports"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/repository/postgres"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/repository/redis"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/service"
	transport "github.com/BorzykhIvan/Mountain-Logbook/internal/transport/http"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/util"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/weather"
)

type stores struct {
	trips    ports.TripRepository
	users    ports.UserRepository
	sessions ports.SessionRepository
	close    func()
}

func main() {
	swaggerPath := flag.String("swagger", transport.DefaultSwaggerSpec, "Path to the Swagger YAML spec")
	flag.Parse()

	cfg := config.Load()

	logger, closeLogs, err := logging.New(logging.Config{
		Level:        cfg.LogLevel,
		LogstashAddr: cfg.LogstashTCPAddr,
		Service:      "mountain-logbook-api",
	})
	if err != nil {
		logger, _ = zap.NewProduction()
		logger.Warn("log pipeline unavailable, fallback to zap production logger", zap.Error(err))
		closeLogs = func() error { return nil }
	}
	defer closeLogs()
	defer logger.Sync()

	ctx := context.Background()

	st, err := openStores(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer st.close()

	var storage ports.ObjectStorage
	if cfg.ImageHostingEnabled() {
		mc, err := minio.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
		if err != nil {
			logger.Fatal("failed to create minio client", zap.Error(err))
		}
		ms := minio.NewStorage(mc, cfg.MinIOPublicURL)
		if err := ms.EnsureBucket(ctx, cfg.MinIOBucketTrips); err != nil {
			logger.Fatal("failed to prepare trip bucket", zap.Error(err))
		}
		storage = ms
	} else {
		logger.Warn("image hosting disabled, photo uploads will be rejected")
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}

	var summarizer weather.Summarizer = weather.NewOpenMeteoClient(weather.OpenMeteoConfig{
		GeocodingURL: cfg.WeatherGeocodingURL,
		ArchiveURL:   cfg.WeatherArchiveURL,
		APIKey:       cfg.WeatherAPIKey,
		Timeout:      cfg.WeatherTimeout,
	}, httpClient)
	if cfg.RedisURL != "" {
		rdb, err := redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, weather summaries are not cached", zap.Error(err))
		} else {
			defer rdb.Close()
			summarizer = weather.NewCachedSummarizer(summarizer, rdb, cfg.WeatherCacheTTL, logger)
		}
	}

	var processor media.Processor
	if path, err := exec.LookPath(ffmpegBinary(cfg.FFMPEGPath)); err == nil {
		processor = media.NewFFMPEGProcessor(path, cfg.ImageMaxDimension)
	} else {
		logger.Info("ffmpeg not found, photos are stored as uploaded")
	}

	peaks := gazetteer.NewCache(
		gazetteer.NewOverpassSource(cfg.OverpassURL, httpClient),
		gazetteer.WithTimeout(cfg.GazetteerTimeout),
		gazetteer.WithLogger(logger),
	)
	go peaks.Load(ctx)

	jwtManager := util.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL)
	authService := service.NewAuthService(st.users, st.sessions, jwtManager, cfg.GoogleAudience, logger)
	tripService := service.NewTripService(st.trips, storage, summarizer, service.TripServiceConfig{
		Bucket:            cfg.MinIOBucketTrips,
		MaxImageBytes:     cfg.TripImageMaxBytes,
		ImageProcessor:    processor,
		ImageMaxDimension: cfg.ImageMaxDimension,
		WeatherTimeout:    cfg.WeatherTimeout,
		Logger:            logger,
	})
	insightsService := service.NewInsightsService(st.trips, peaks)

	e := transport.NewRouter(transport.RouterConfig{
		AllowOrigins: cfg.AllowOrigins,
		Logger:       logger,
	})
	transport.RegisterAuth(e, authService, cfg.AuthRateLimit, logger)
	transport.RegisterTrips(e, authService, tripService, insightsService, logger)
	transport.RegisterMountains(e, insightsService)
	if err := transport.RegisterSwagger(e, *swaggerPath); err != nil {
		logger.Warn("swagger ui disabled", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	logger.Info("server exited")
}

func openStores(ctx context.Context, cfg config.Config) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		client, db, err := mongo.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return &stores{
			trips:    mongo.NewTripRepo(db),
			users:    mongo.NewUserRepo(db),
			sessions: mongo.NewSessionRepo(db),
			close:    func() { _ = client.Disconnect(context.Background()) },
		}, nil
	default:
		db, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &stores{
			trips:    postgres.NewTripRepo(db),
			users:    postgres.NewUserRepo(db),
			sessions: postgres.NewSessionRepo(db),
			close:    func() { _ = db.Close() },
		}, nil
	}
}

func ffmpegBinary(path string) string {
	if path == "" {
		return "ffmpeg"
	}
	return path
}
