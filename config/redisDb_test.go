package config

import (
	"context"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
)

func TestSetRedisDB_ConcurrentReaders(t *testing.T) {
	t.Cleanup(func() { SetRedisDB(nil) })
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = client.Close() })

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		SetRedisDB(client)
	}()
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = GetRedisLock()
				if c := GetRedisDB(); c != nil && c != client {
					t.Errorf("unexpected redis client %p", c)
					return
				}
			}
		}()
	}
	wg.Wait()

	if GetRedisDB() != client || GetRedisLock() == nil {
		t.Fatalf("expected client and lock client to be set")
	}
	SetRedisDB(nil)
	if GetRedisDB() != nil || GetRedisLock() != nil {
		t.Fatalf("expected globals to be cleared")
	}
}

func TestRedisObject_WithoutClient(t *testing.T) {
	SetRedisDB(nil)
	var dest map[string]string
	found, err := GetRedisObject(context.Background(), "missing", &dest)
	if err != nil || found {
		t.Fatalf("expected (false, nil) without redis, got (%v, %v)", found, err)
	}
	if err := SetRedisObject(context.Background(), "k", map[string]string{"a": "b"}, 0); err != nil {
		t.Fatalf("expected nil error without redis, got %v", err)
	}
}
