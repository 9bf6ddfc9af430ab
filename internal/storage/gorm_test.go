package storage

import (
	"context"
	"testing"
)

func newTestKV(t *testing.T) *GormKV {
	t.Helper()

	db, err := OpenDB("sqlite", "file::memory:", PoolConfig{MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	kv, err := NewGormKV(db)
	if err != nil {
		t.Fatalf("init kv failed: %v", err)
	}
	return kv
}

func TestGormKVRoundTrip(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, "cart")
	if err != nil {
		t.Fatalf("get missing key failed: %v", err)
	}
	if ok {
		t.Fatalf("missing key should report absent")
	}

	if err := kv.Set(ctx, "cart", []byte(`[]`)); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := kv.Set(ctx, "cart", []byte(`[{"id":1}]`)); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	val, ok, err := kv.Get(ctx, "cart")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !ok {
		t.Fatalf("key should exist after set")
	}
	if string(val) != `[{"id":1}]` {
		t.Fatalf("unexpected value: %s", val)
	}

	if err := kv.Delete(ctx, "cart"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := kv.Delete(ctx, "cart"); err != nil {
		t.Fatalf("delete absent key should not error: %v", err)
	}
	_, ok, err = kv.Get(ctx, "cart")
	if err != nil {
		t.Fatalf("get after delete failed: %v", err)
	}
	if ok {
		t.Fatalf("key should be gone after delete")
	}
}

func TestOpenDBUnsupportedDriver(t *testing.T) {
	if _, err := OpenDB("mongodb", "", PoolConfig{}); err == nil {
		t.Fatalf("unsupported driver should error")
	}
}
