package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrLockTimeout возвращается, если блокировку не удалось получить до отмены контекста.
var ErrLockTimeout = errors.New("timed out waiting for lock")

// releaseScript удаляет ключ только если им все еще владеет этот держатель.
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// Redis - распределенная блокировка на основе SET NX PX для нескольких экземпляров сервиса.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	poll   time.Duration
	prefix string
	logger *logrus.Logger
}

// NewRedis создает Redis-блокировку и проверяет соединение.
func NewRedis(ctx context.Context, client *redis.Client, ttl time.Duration, logger *logrus.Logger) (*Redis, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &Redis{
		client: client,
		ttl:    ttl,
		poll:   25 * time.Millisecond,
		prefix: "lock:lot:",
		logger: logger,
	}, nil
}

// Lock пытается захватить ключ, повторяя попытки до отмены контекста.
// Срок действия ttl ограничивает удержание блокировки упавшим экземпляром.
func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := r.prefix + key
	token := uuid.New().String()

	ticker := time.NewTicker(r.poll)
	defer ticker.Stop()

	for {
		ok, err := r.client.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		case <-ticker.C:
		}
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, r.client, []string{redisKey}, token).Err(); err != nil {
			r.logger.WithError(err).WithField("key", key).Warn("failed to release lot lock")
		}
	}, nil
}
