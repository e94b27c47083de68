package realtime

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/redis/go-redis/v9"

	"entregas/pkg/logger"
)

const defaultChannel = "entregas:events"

type RedisBus struct {
	rdb     *redis.Client
	channel string
	log     logger.ILogger
}

type RedisBusOption func(*RedisBus)

func WithChannel(channel string) RedisBusOption {
	return func(b *RedisBus) {
		if c := strings.TrimSpace(channel); c != "" {
			b.channel = c
		}
	}
}

func NewRedisBus(rdb *redis.Client, log logger.ILogger, opts ...RedisBusOption) *RedisBus {
	b := &RedisBus{rdb: rdb, channel: defaultChannel, log: log}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *RedisBus) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, payload).Err()
}

func (b *RedisBus) Subscribe(ctx context.Context, h Handler) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer func() { _ = sub.Close() }()

	// wait for the subscription to be confirmed before consuming
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.log.Warning("dropping malformed realtime event", logger.Error(err))
				continue
			}
			h(ev)
		}
	}
}
