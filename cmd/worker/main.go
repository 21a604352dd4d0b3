// Worker consumes quiz events from Kafka and pushes them to Loki, and periodically purges expired
// sessions and room codes. Set KAFKA_BROKERS and LOKI_URL for the consumer and DATABASE_URL for the
// sweeper; at least one of the two must be configured.
package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"quiz-arena/backend/internal/config"
	"quiz-arena/backend/internal/db"
	qlog "quiz-arena/backend/internal/log"
	roomrepo "quiz-arena/backend/internal/room/repository"
	sessionrepo "quiz-arena/backend/internal/session/repository"
	"quiz-arena/backend/internal/telemetry/loki"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	qlog.Init(cfg.Env, cfg.LogLevel)

	brokers := cfg.KafkaBrokersList()
	consumeEnabled := len(brokers) > 0 && cfg.LokiURL != ""
	sweepEnabled := cfg.DatabaseURL != ""
	if !consumeEnabled && !sweepEnabled {
		log.Fatal().Msg("worker: set KAFKA_BROKERS and LOKI_URL, or DATABASE_URL")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	if consumeEnabled {
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:        brokers,
			Topic:          cfg.EventsKafkaTopic,
			GroupID:        cfg.KafkaGroupID,
			MinBytes:       1,
			MaxBytes:       10e6, // 10MB
			MaxWait:        1 * time.Second,
			CommitInterval: time.Second,
		})
		defer reader.Close()
		sink := loki.NewClient(cfg.LokiURL, nil)
		log.Info().Str("topic", cfg.EventsKafkaTopic).Str("group", cfg.KafkaGroupID).Str("loki", cfg.LokiURL).Msg("worker: consuming")
		wg.Add(1)
		go func() {
			defer wg.Done()
			consume(ctx, reader, sink)
		}()
	}
	if sweepEnabled {
		pool, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("database")
		}
		defer pool.Close()
		s := &sweeper{
			sessions: sessionrepo.NewPostgresRepository(pool),
			codes:    roomrepo.NewPostgresRepository(pool),
			now:      func() time.Time { return time.Now().UTC() },
		}
		log.Info().Dur("interval", cfg.SweepInterval()).Msg("worker: sweeping")
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.run(ctx, cfg.SweepInterval())
		}()
	}

	wg.Wait()
	log.Info().Msg("worker: stopped")
}
