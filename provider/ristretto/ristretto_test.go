package ristretto

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func newProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := New(Config{NumCounters: 1000, MaxCost: 1 << 20, BufferItems: 64, CostBySize: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = p.Close(context.Background()) })
	return p
}

func TestSetGet(t *testing.T) {
	ctx := context.Background()
	p := newProvider(t)

	if _, ok, err := p.Get(ctx, "Product::uid::x"); ok || err != nil {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}
	if ok, err := p.Set(ctx, "Product::uid::x", []byte("payload"), time.Minute); err != nil || !ok {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	p.Wait()
	got, ok, err := p.Get(ctx, "Product::uid::x")
	if err != nil || !ok || !bytes.Equal(got, []byte("payload")) {
		t.Fatalf("Get after Set: got=%q ok=%v err=%v", got, ok, err)
	}
}

func TestInvalidConfig(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error on zero config")
	}
}
