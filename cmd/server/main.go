package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"quiz-arena/backend/internal/audit"
	auditrepo "quiz-arena/backend/internal/audit/repository"
	categoryrepo "quiz-arena/backend/internal/category/repository"
	categoryservice "quiz-arena/backend/internal/category/service"
	"quiz-arena/backend/internal/config"
	"quiz-arena/backend/internal/db"
	healthhandler "quiz-arena/backend/internal/health/handler"
	identityservice "quiz-arena/backend/internal/identity/service"
	qlog "quiz-arena/backend/internal/log"
	"quiz-arena/backend/internal/metrics"
	"quiz-arena/backend/internal/policy/engine"
	questionrepo "quiz-arena/backend/internal/question/repository"
	questionservice "quiz-arena/backend/internal/question/service"
	roomrepo "quiz-arena/backend/internal/room/repository"
	roomservice "quiz-arena/backend/internal/room/service"
	"quiz-arena/backend/internal/security"
	"quiz-arena/backend/internal/server"
	"quiz-arena/backend/internal/server/middleware"
	"quiz-arena/backend/internal/session/cache"
	sessionrepo "quiz-arena/backend/internal/session/repository"
	sessionservice "quiz-arena/backend/internal/session/service"
	"quiz-arena/backend/internal/telemetry"
	telemetryotel "quiz-arena/backend/internal/telemetry/otel"
	"quiz-arena/backend/internal/telemetry/producer"
	userrepo "quiz-arena/backend/internal/user/repository"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	qlog.Init(cfg.Env, cfg.LogLevel)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}
	defer pool.Close()

	sessionCache, closeCache := openCache(cfg)
	defer closeCache()

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, telemetryotel.ServiceName, cfg.OTLPInsecure)
	if err != nil {
		log.Fatal().Err(err).Msg("otel")
	}
	providers.SetGlobal()

	kafka := producer.NewKafkaProducer(cfg.KafkaBrokersList(), cfg.EventsKafkaTopic)
	emitters := telemetry.Multi{telemetryotel.NewEventEmitter(providers.LoggerProvider)}
	if kafka != nil {
		emitters = append(emitters, kafka)
		log.Info().Str("topic", cfg.EventsKafkaTopic).Msg("events: publishing to kafka")
	}

	policy, err := engine.NewOPAEvaluator(ctx, "")
	if err != nil {
		log.Fatal().Err(err).Msg("policy")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.Register(reg)

	users := userrepo.NewPostgresRepository(pool)
	questions := questionrepo.NewPostgresRepository(pool)
	categories := categoryrepo.NewPostgresRepository(pool)
	recorder := audit.NewRecorder(audit.NewLogger(auditrepo.NewPostgresRepository(pool), middleware.ClientIP), emitters)
	sessions := sessionservice.NewManager(sessionrepo.NewPostgresRepository(pool), sessionCache, cfg.SessionTTL())

	router := server.NewRouter(server.Options{
		CORSOrigins:    cfg.CORSOrigins(),
		CookieSecure:   cfg.CookieSecure,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}, server.Deps{
		Sessions:   sessions,
		Auth:       identityservice.NewAuthService(users, sessions, security.NewHasher(cfg.BcryptCost), recorder),
		Rooms:      roomservice.NewService(roomrepo.NewPostgresRepository(pool), cfg.RoomCodeTTL(), recorder),
		Categories: categoryservice.NewService(categories, questions),
		Questions:  questionservice.NewService(questions, categories),
		Users:      users,
		Policy:     policy,
		Health:     healthhandler.NewHandler(pool, sessionCache, policy),
		Metrics:    promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http: listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http: serve")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("http: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http: shutdown")
	}
	// Let in-flight EmitAsync calls finish before the producer goes away.
	time.Sleep(telemetry.ShutdownDrainDuration)
	if err := kafka.Close(); err != nil {
		log.Error().Err(err).Msg("events: close kafka producer")
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel: shutdown")
	}
	log.Info().Msg("http: stopped")
}

// openCache returns the Redis session cache when REDIS_URL is set, else the in-process cache.
func openCache(cfg *config.Config) (cache.Cache, func()) {
	if cfg.RedisURL == "" {
		log.Warn().Msg("session: REDIS_URL not set, using in-memory cache")
		return cache.NewMemoryCache(), func() {}
	}
	client, err := cache.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("redis")
	}
	return cache.NewRedisCache(client), func() {
		if err := client.Close(); err != nil {
			log.Error().Err(err).Msg("redis: close")
		}
	}
}
