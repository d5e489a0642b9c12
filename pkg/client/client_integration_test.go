//go:build integration

package client

import (
	"context"
	"testing"
	"time"

	"github.com/Sternrassler/gamma-markets-client/internal/testutil"
	"github.com/Sternrassler/gamma-markets-client/pkg/dump"
	"github.com/Sternrassler/gamma-markets-client/pkg/models"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedisContainer creates a Redis container for integration testing.
func setupRedisContainer(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := redisContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := redisContainer.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		client.Close()
		redisContainer.Terminate(ctx)
	}

	return client, cleanup
}

func TestIntegration_DumpToRedis(t *testing.T) {
	redisClient, cleanup := setupRedisContainer(t)
	defer cleanup()

	mock := testutil.NewMockGamma()
	defer mock.Close()
	mock.SetCollection("/events", 25)

	client := newTestClient(t, mock)

	sink, err := dump.NewSink(dump.TypeRedis, "", dump.Options{
		Redis:     redisClient,
		KeyPrefix: "it:dump:",
		TTL:       time.Minute,
	})
	if err != nil {
		t.Fatalf("NewSink() failed: %v", err)
	}
	defer sink.Close()

	ctx := context.Background()

	result, err := client.GetEvents(ctx, CurrentFilter(), GetOptions{Dump: sink, DumpKey: "events-current.json"})
	if err != nil {
		t.Fatalf("GetEvents() failed: %v", err)
	}
	if result.DumpKey != "events-current.json" {
		t.Errorf("DumpKey = %q", result.DumpKey)
	}

	payload, err := sink.(*dump.RedisSink).Read(ctx, result.DumpKey)
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}

	var records []map[string]any
	if err := json.Unmarshal(payload, &records); err != nil {
		t.Fatalf("dumped payload is not a JSON array: %v", err)
	}
	if len(records) != 25 {
		t.Errorf("dumped %d records, want 25", len(records))
	}

	events, err := models.ParseEvents(records)
	if err != nil {
		t.Fatalf("ParseEvents() failed: %v", err)
	}
	if events[0].ID != "0" {
		t.Errorf("events[0].ID = %q, want 0", events[0].ID)
	}

	ttl, err := redisClient.TTL(ctx, "it:dump:events-current.json").Result()
	if err != nil {
		t.Fatalf("TTL failed: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("TTL = %s, want (0, 1m]", ttl)
	}
}

func TestIntegration_PaginatedFetchThenDump(t *testing.T) {
	redisClient, cleanup := setupRedisContainer(t)
	defer cleanup()

	mock := testutil.NewMockGamma()
	defer mock.Close()
	mock.SetCollection("/markets", 437)
	mock.SetPageResponse("/markets", 200, testutil.NewServerErrorResponse())

	client := newTestClient(t, mock)
	ctx := context.Background()

	records, err := client.AllCurrentMarkets(ctx, 100, DefaultMaxPages)
	if err != nil {
		t.Fatalf("AllCurrentMarkets() failed: %v", err)
	}
	if !equalStrings(recordIDs(records), expectedIDs(0, 437, 2)) {
		t.Errorf("unexpected records: got %d, want 337", len(records))
	}

	sink, err := dump.NewRedisSink(redisClient, "", 0)
	if err != nil {
		t.Fatalf("NewRedisSink() failed: %v", err)
	}

	if _, err := client.GetMarkets(ctx, nil, GetOptions{Dump: sink}); err != nil {
		t.Fatalf("GetMarkets() failed: %v", err)
	}

	exists, err := redisClient.Exists(ctx, dump.DefaultKeyPrefix+"markets.json").Result()
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists != 1 {
		t.Error("Expected markets dump in Redis")
	}
}
