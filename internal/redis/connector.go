package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"

	"github.com/MrSnakeDoc/lifehub/internal/logger"
)

// ConnectOptions defines Redis connection retry behavior.
type ConnectOptions struct {
	Addr           string        // Redis address (ex: "localhost:6379")
	User           string        // Optional username
	Password       string        // Optional password
	RedisDB        int           // Redis DB number
	DialTimeout    time.Duration // Redis dial timeout
	ReadTimeout    time.Duration // Redis read timeout
	WriteTimeout   time.Duration // Redis write timeout
	PoolSize       int           // Redis connection pool size
	ConnectTimeout time.Duration // Total time allowed for connection attempts (ex: 30s)
	RetryInterval  time.Duration // Initial wait between retries (ex: 2s, doubles each attempt)
	MaxWait        time.Duration // max wait between retries (ex: 10s)
	PingTimeout    time.Duration // timeout for each ping attempt (ex: 2s)
	WarnThreshold  int           // warn after this many attempts
}

// connectionLogger handles all Redis connection logging.
type connectionLogger struct {
	logger logger.Logger
}

func (cl *connectionLogger) logConnectionStart(addr string, timeout time.Duration) {
	cl.logger.Info("connecting to redis",
		logger.String("addr", addr),
		logger.Duration("timeout", timeout))
}

func (cl *connectionLogger) logSuccess(addr string, attempts int, elapsed time.Duration) {
	if attempts > 1 {
		cl.logger.Warn("connected to redis after retry",
			logger.String("addr", addr),
			logger.Int("attempts", attempts),
			logger.Duration("elapsed", elapsed))
		return
	}
	cl.logger.Info("connected to redis", logger.String("addr", addr))
}

func (cl *connectionLogger) logTimeout(addr string, attempts int, timeout time.Duration, err error) {
	cl.logger.Error("redis unavailable - failed to connect after timeout",
		logger.String("addr", addr),
		logger.Int("attempts", attempts),
		logger.Duration("timeout", timeout),
		logger.Error(err))
}

func (cl *connectionLogger) logRetry(addr string, attempt int, remaining time.Duration, warnThreshold int, err error) {
	switch {
	case remaining < 10*time.Second:
		cl.logger.Error("redis still down - retrying but timeout approaching",
			logger.String("addr", addr),
			logger.Int("attempt", attempt),
			logger.Duration("remaining", remaining),
			logger.Error(err))
	case attempt <= warnThreshold:
		cl.logger.Warn("redis connection failed, retrying",
			logger.String("addr", addr),
			logger.Int("attempt", attempt),
			logger.Error(err))
	default:
		cl.logger.Error("redis still unavailable - connection attempts failing",
			logger.String("addr", addr),
			logger.Int("attempt", attempt),
			logger.Error(err))
	}
}

// validateOptions ensures the retry settings are usable.
func validateOptions(opts ConnectOptions) error {
	switch {
	case opts.Addr == "":
		return fmt.Errorf("Addr is required")
	case opts.ConnectTimeout <= 0:
		return fmt.Errorf("ConnectTimeout must be > 0, got %v", opts.ConnectTimeout)
	case opts.RetryInterval <= 0:
		return fmt.Errorf("RetryInterval must be > 0, got %v", opts.RetryInterval)
	case opts.MaxWait <= 0:
		return fmt.Errorf("MaxWait must be > 0, got %v", opts.MaxWait)
	case opts.PingTimeout <= 0:
		return fmt.Errorf("PingTimeout must be > 0, got %v", opts.PingTimeout)
	case opts.WarnThreshold < 0:
		return fmt.Errorf("WarnThreshold must be >= 0, got %d", opts.WarnThreshold)
	}
	return nil
}

// backoff is the connect retry policy: exponential from RetryInterval,
// each wait capped at MaxWait, all attempts bounded by ConnectTimeout.
func backoff(opts ConnectOptions) retry.Backoff {
	b := retry.NewExponential(opts.RetryInterval)
	b = retry.WithCappedDuration(opts.MaxWait, b)
	return retry.WithMaxDuration(opts.ConnectTimeout, b)
}

// New creates a Redis client and pings it until it answers or
// ConnectTimeout is reached. Every failed attempt is logged.
func New(ctx context.Context, opts ConnectOptions, log logger.Logger) (*redis.Client, error) {
	if err := validateOptions(opts); err != nil {
		log.Error("invalid redis options", logger.Error(err))
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Username:     opts.User,
		Password:     opts.Password,
		DB:           opts.RedisDB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		PoolSize:     opts.PoolSize,
	})

	if err := connect(ctx, client, opts, &connectionLogger{logger: log}); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func connect(ctx context.Context, client *redis.Client, opts ConnectOptions, log *connectionLogger) error {
	ctx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	log.logConnectionStart(opts.Addr, opts.ConnectTimeout)
	start := time.Now()
	attempt := 0
	var lastErr error

	err := retry.Do(ctx, backoff(opts), func(ctx context.Context) error {
		attempt++

		pingCtx, pingCancel := context.WithTimeout(ctx, opts.PingTimeout)
		lastErr = client.Ping(pingCtx).Err()
		pingCancel()

		if lastErr != nil {
			log.logRetry(opts.Addr, attempt, timeLeft(ctx), opts.WarnThreshold, lastErr)
			return retry.RetryableError(lastErr)
		}
		return nil
	})
	if err != nil {
		if lastErr == nil {
			lastErr = err
		}
		log.logTimeout(opts.Addr, attempt, opts.ConnectTimeout, lastErr)
		return fmt.Errorf("redis unavailable at %s after %d attempts (timeout: %v): %w",
			opts.Addr, attempt, opts.ConnectTimeout, lastErr)
	}

	log.logSuccess(opts.Addr, attempt, time.Since(start))
	return nil
}

// timeLeft returns the remaining time before context deadline.
func timeLeft(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0
	}
	return time.Until(deadline)
}
