package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	redisad "trip_planner/internal/adapters/redis"
)

type token struct {
	Value string `json:"value"`
}

func setup(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return redisad.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()})), mr
}

func TestCache_SetGetExpire(t *testing.T) {
	c, mr := setup(t)
	ctx := context.Background()

	var got token
	if ok, err := c.Get(ctx, "amadeus:access_token", &got); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	if err := c.Set(ctx, "amadeus:access_token", token{Value: "abc"}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	ok, err := c.Get(ctx, "amadeus:access_token", &got)
	if !ok || err != nil || got.Value != "abc" {
		t.Fatalf("expected hit abc, got ok=%v err=%v v=%+v", ok, err, got)
	}

	mr.FastForward(2 * time.Minute)
	if ok, _ := c.Get(ctx, "amadeus:access_token", &got); ok {
		t.Fatalf("expected key to expire")
	}
}

func TestCache_ZeroTTLPersistsUntilDel(t *testing.T) {
	c, mr := setup(t)
	ctx := context.Background()

	if err := c.Set(ctx, "trip:1", token{Value: "x"}, 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(24 * time.Hour)

	var got token
	if ok, _ := c.Get(ctx, "trip:1", &got); !ok {
		t.Fatalf("expected key without ttl to persist")
	}
	if err := c.Del(ctx, "trip:1"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if ok, _ := c.Get(ctx, "trip:1", &got); ok {
		t.Fatalf("expected miss after del")
	}
}
