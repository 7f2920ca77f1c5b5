package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

func TestNewRequiresClient(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrNilClient) {
		t.Fatalf("expected ErrNilClient, got %v", err)
	}
}

func TestDialerFailsOnUnreachableHost(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	dial := Dialer(&goredis.Options{DialTimeout: 200 * time.Millisecond, MaxRetries: -1})
	// port 1 is reserved (tcpmux) and closed on test hosts
	if _, err := dial(ctx, "127.0.0.1", 1); err == nil {
		t.Fatalf("expected dial error")
	}
}

func TestGetSurfacesTransportErrors(t *testing.T) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	p, err := New(Config{Client: rdb, CloseClient: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close(context.Background())

	if _, ok, err := p.Get(context.Background(), "k"); err == nil || ok {
		t.Fatalf("expected transport error, ok=%v err=%v", ok, err)
	}
}
