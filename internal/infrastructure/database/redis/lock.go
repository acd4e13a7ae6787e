package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/complyops/deadline-engine/internal/infrastructure/monitoring/logging"
)

// unlockScript deletes the lock only when this holder still owns it, so a
// slow sweep cannot release a lock that already expired and was re-acquired
// by another replica.
var unlockScript = goredis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

// SweepLock serializes status sweeps across replicas with a Redis SETNX
// lease.  It implements deadline.SweepLocker; losing the race just means
// another replica is sweeping.
type SweepLock struct {
	client *Client
	logger logging.Logger
	key    string
	ttl    time.Duration
}

// NewSweepLock builds a lock on the given key, typically
// "deadline:lock:sweep".  The TTL bounds how long a crashed holder can
// block other replicas.
func NewSweepLock(client *Client, log logging.Logger, key string, ttl time.Duration) *SweepLock {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SweepLock{
		client: client,
		logger: log,
		key:    key,
		ttl:    ttl,
	}
}

// TryLock attempts a single non-blocking acquisition.  The returned release
// function is safe to call exactly once and only deletes the key while this
// holder still owns it.
func (l *SweepLock) TryLock(ctx context.Context) (func(), bool, error) {
	value := uuid.NewString()

	acquired, err := l.client.SetNX(ctx, l.key, value, l.ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !acquired {
		return nil, false, nil
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		res, err := unlockScript.Run(ctx, l.client.GetUnderlyingClient(), []string{l.key}, value).Result()
		if err != nil {
			l.logger.Warn("Failed to release sweep lock", logging.String("key", l.key), logging.Err(err))
			return
		}
		if n, ok := res.(int64); ok && n == 0 {
			l.logger.Warn("Sweep lock expired before release", logging.String("key", l.key))
		}
	}
	return release, true, nil
}
