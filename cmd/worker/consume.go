package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

const pushTimeout = 10 * time.Second

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type eventSink interface {
	PushEventJSON(ctx context.Context, raw []byte) error
}

// consume forwards every message to sink until ctx is cancelled. Push failures are logged and the
// message is skipped.
func consume(ctx context.Context, r messageReader, sink eventSink) {
	for {
		msg, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Msg("worker: kafka read error")
			continue
		}
		pushCtx, cancel := context.WithTimeout(ctx, pushTimeout)
		if err := sink.PushEventJSON(pushCtx, msg.Value); err != nil {
			log.Error().Err(err).Int64("offset", msg.Offset).Msg("worker: loki push failed")
		}
		cancel()
	}
}
