// Command eventtail follows profile change events from Kafka and Redis and
// logs each one. It is a local debugging aid for the profile service.
package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/profile-service/internal/config"
	"github.com/SARVESHVARADKAR123/profile-service/internal/events"
	"github.com/SARVESHVARADKAR123/profile-service/internal/kafka"
	"github.com/SARVESHVARADKAR123/profile-service/internal/observability"
	"github.com/SARVESHVARADKAR123/profile-service/internal/pubsub"
)

func main() {
	cfg := config.LoadTail()

	logger, err := observability.NewLogger("profile-eventtail", cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if len(cfg.KafkaBrokers) == 0 && cfg.RedisAddr == "" {
		logger.Fatal("nothing to follow: set KAFKA_BROKERS and/or REDIS_ADDR")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup

	if len(cfg.KafkaBrokers) > 0 {
		c := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID)
		defer c.Close()

		wg.Add(1)
		go func() {
			defer wg.Done()
			followKafka(ctx, c, logger.With(zap.String("source", "kafka")))
		}()
	}

	if cfg.RedisAddr != "" {
		n := pubsub.New(cfg.RedisAddr)
		defer n.Close()

		wg.Add(1)
		go func() {
			defer wg.Done()
			followRedis(ctx, n, logger.With(zap.String("source", "redis")))
		}()
	}

	wg.Wait()
	logger.Info("stopped")
}

func followKafka(ctx context.Context, c *kafka.Consumer, log *zap.Logger) {
	for {
		e, err := c.Read(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			log.Error("read failed", zap.Error(err))
			continue
		}
		logEvent(log, e)
	}
}

func followRedis(ctx context.Context, n *pubsub.Notifier, log *zap.Logger) {
	sub := n.Subscribe(ctx)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			e, err := pubsub.Decode(msg)
			if err != nil {
				log.Error("decode failed", zap.Error(err))
				continue
			}
			logEvent(log, e)
		}
	}
}

func logEvent(log *zap.Logger, e events.Event) {
	log.Info("profile event",
		zap.String("id", e.ID),
		zap.String("type", e.Type),
		zap.String("key", e.Key),
		zap.Time("occurred_at", e.OccurredAt),
		zap.Any("data", e.Data),
	)
}
