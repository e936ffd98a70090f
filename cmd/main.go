package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Centralink87/centralinkxyz/internal/api"
	"github.com/Centralink87/centralinkxyz/internal/audit"
	"github.com/Centralink87/centralinkxyz/internal/auth"
	"github.com/Centralink87/centralinkxyz/internal/config"
	"github.com/Centralink87/centralinkxyz/internal/kafka"
	"github.com/Centralink87/centralinkxyz/internal/ledger"
	"github.com/Centralink87/centralinkxyz/internal/storage"
	"github.com/Centralink87/centralinkxyz/telemetry"
)

func registerCustomValidations(v *validator.Validate) {
	_ = v.RegisterValidation("requesttype", func(fl validator.FieldLevel) bool {
		_, err := ledger.ParseRequestType(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("cryptotype", func(fl validator.FieldLevel) bool {
		_, err := ledger.ParseCryptoType(fl.Field().String())
		return err == nil
	})
}

// openStore picks the backend from config. The returned ping is nil for the
// in-memory store.
func openStore(cfg config.Config, log *zap.Logger) (storage.Store, func(ctx context.Context) error, func() error) {
	switch cfg.StoreBackend {
	case "postgres":
		pg, err := storage.NewPostgres(cfg.PostgresDSN)
		if err != nil {
			log.Fatal("postgres init failed", zap.Error(err))
		}
		return pg, pg.Ping, pg.Close
	case "sqlite":
		sq, err := storage.NewSQLite(cfg.SQLitePath, log)
		if err != nil {
			log.Fatal("sqlite init failed", zap.Error(err))
		}
		return sq, sq.Ping, sq.Close
	default:
		return storage.NewMemoryStore(), nil, func() error { return nil }
	}
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log, _ := telemetry.NewLogger()
	defer log.Sync()

	telemetry.InitMetrics()

	store, dbPing, closeStore := openStore(cfg, log)
	defer closeStore()

	// validator
	v := validator.New()
	registerCustomValidations(v)

	// audit pipeline: schema validation always on, Kafka only when configured
	schemaValidator, err := kafka.NewValidator()
	if err != nil {
		log.Fatal("audit schema init failed", zap.Error(err))
	}
	var producer *kafka.Producer
	if cfg.KafkaEnabled() {
		producer = kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
	}
	worker := audit.NewWorker(log, schemaValidator, producer, cfg.AuditQueueSize)

	issuer, err := auth.NewJWTIssuerFromEnv()
	if err != nil {
		log.Fatal("jwt init failed", zap.Error(err))
	}

	// handlers with dependencies
	h := &api.Handlers{
		Log:          log,
		Store:        store,
		V:            v,
		DBPing:       dbPing,
		KafkaEnabled: cfg.KafkaEnabled(),
		Audit:        worker.Enqueue,
	}
	ah := &api.AuthHandlers{
		Log:         log,
		Users:       store,
		V:           v,
		Tokens:      issuer,
		AdminEmails: cfg.AdminEmails,
	}

	// gin engine
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(telemetry.PrometheusMiddleware())

	// request log middleware
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("http",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("dur", time.Since(start)),
		)
	})

	api.SetupRoutes(r, h, ah)

	ctx, cancel := context.WithCancel(context.Background())
	go worker.Run(ctx)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()
	log.Info("server started",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("store", cfg.StoreBackend),
		zap.Bool("kafka", cfg.KafkaEnabled()),
	)

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	cancel()
	ctxTimeout, cancel2 := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel2()
	_ = srv.Shutdown(ctxTimeout)
	log.Info("server stopped")
}
