//go:build integration

package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"
)

// shared holds the containers reused by every integration test of a package.
var shared struct {
	mu    sync.Mutex
	mongo *MongoDBContainer
	redis *RedisContainer
}

// RunShared starts the shared MongoDB container, runs the package tests and
// terminates every shared container that was started.
//
//	func TestMain(m *testing.M) {
//		os.Exit(testutil.RunShared(m))
//	}
func RunShared(m *testing.M) int {
	ctx := context.Background()

	mongo, err := SetupMongoDB(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "starting shared MongoDB: %v\n", err)
		return 1
	}
	shared.mu.Lock()
	shared.mongo = mongo
	shared.mu.Unlock()

	code := m.Run()

	shared.mu.Lock()
	defer shared.mu.Unlock()
	if err := shared.mongo.Cleanup(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if shared.redis != nil {
		if err := shared.redis.Cleanup(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}
	return code
}

// MongoURI returns the URI of the shared MongoDB container.
func MongoURI() string {
	shared.mu.Lock()
	defer shared.mu.Unlock()
	if shared.mongo == nil {
		panic("shared MongoDB container not started - call RunShared from TestMain")
	}
	return shared.mongo.URI
}

// RedisAddress returns the address of the shared Redis container.
// The container is started on first use. Tests sharing it must use distinct session ids.
func RedisAddress(t testing.TB) string {
	t.Helper()
	shared.mu.Lock()
	defer shared.mu.Unlock()
	if shared.redis == nil {
		c, err := SetupRedis(context.Background())
		if err != nil {
			t.Fatalf("starting shared Redis: %v", err)
		}
		shared.redis = c
	}
	return shared.redis.Address
}

var dbNameReplacer = strings.NewReplacer("/", "_", "\\", "_", " ", "_", ".", "_", "$", "_")

// DatabaseName derives a unique MongoDB database name from the test name.
func DatabaseName(t testing.TB) string {
	name := dbNameReplacer.Replace(t.Name())
	if len(name) > 40 {
		name = name[:40]
	}
	return fmt.Sprintf("%s_%d", name, time.Now().UnixNano()%1_000_000)
}
