package monitor

import (
	"context"
	"fmt"
	"strconv"

	"github.com/calvinmclean/linefollower/telemetry"
	"github.com/redis/go-redis/v9"
)

// RedisSink keeps the latest frame in a hash and publishes every frame line on a channel
type RedisSink struct {
	client  *redis.Client
	key     string
	channel string
}

// NewRedisSink uses an existing client
func NewRedisSink(client *redis.Client, key, channel string) *RedisSink {
	return &RedisSink{client: client, key: key, channel: channel}
}

// NewRedisSinkFromConfig connects to cfg.RedisAddr and checks the connection
func NewRedisSinkFromConfig(ctx context.Context, cfg Config) (*RedisSink, error) {
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("error connecting to redis at %s: %w", cfg.RedisAddr, err)
	}
	return NewRedisSink(client, cfg.RedisKey, cfg.RedisChannel), nil
}

// Record implements Sink
func (s *RedisSink) Record(ctx context.Context, f telemetry.Frame) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.key, map[string]any{
		"state":      f.State.String(),
		"sensors":    f.Reading.String(),
		"left":       f.Command.Left.Direction.String(),
		"left_duty":  strconv.Itoa(int(f.Command.Left.Duty)),
		"right":      f.Command.Right.Direction.String(),
		"right_duty": strconv.Itoa(int(f.Command.Right.Duty)),
		"elapsed_ms": strconv.FormatInt(f.Elapsed.Milliseconds(), 10),
	})
	pipe.Publish(ctx, s.channel, f.String())

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("error writing frame to redis: %w", err)
	}
	return nil
}

// Close closes the client
func (s *RedisSink) Close() error {
	return s.client.Close()
}
