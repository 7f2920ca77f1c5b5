package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/recordcache/provider"
)

var ErrNilClient = errors.New("redis provider: nil client")

type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
}

var _ pr.Provider = (*Redis)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this provider exclusively owns the client
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Redis{rdb: cfg.Client, closeClient: cfg.CloseClient}, nil
}

// Dialer returns a function suitable for recordcache.NewHandle. Each call
// builds a client for host:port from a copy of base (nil => defaults), pings
// it, and returns a provider that owns the client.
func Dialer(base *goredis.Options) func(ctx context.Context, host string, port int) (pr.Provider, error) {
	return func(ctx context.Context, host string, port int) (pr.Provider, error) {
		var opts goredis.Options
		if base != nil {
			opts = *base
		}
		opts.Addr = net.JoinHostPort(host, strconv.Itoa(port))

		rdb := goredis.NewClient(&opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis provider: ping %s: %w", opts.Addr, err)
		}
		return &Redis{rdb: rdb, closeClient: true}, nil
	}
}

// Client exposes the underlying client (for tooling that inspects keys).
func (p *Redis) Client() goredis.UniversalClient { return p.rdb }

func (p *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := p.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return b, true, nil
}

// Set issues SET key value EX ttl. Sub-second TTLs are rounded up so an entry
// never lands without expiry by accident.
func (p *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	switch {
	case ttl <= 0:
		ttl = 0
	case ttl < time.Second:
		ttl = time.Second
	}
	if err := p.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return false, err
	}
	return true, nil
}

// Close releases the underlying redis client only when this provider owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (p *Redis) Close(context.Context) error {
	if p.closeClient {
		if err := p.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
