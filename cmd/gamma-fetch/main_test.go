package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Sternrassler/gamma-markets-client/internal/config"
	"github.com/Sternrassler/gamma-markets-client/internal/testutil"
	"github.com/Sternrassler/gamma-markets-client/pkg/client"
	"github.com/Sternrassler/gamma-markets-client/pkg/dump"
	"github.com/goccy/go-json"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		BaseURL:   baseURL,
		Resource:  config.ResourceMarkets,
		PageSize:  100,
		MaxPages:  10,
		PageCap:   10,
		Timeout:   5 * time.Second,
		UserAgent: "gamma-fetch-test/1.0",
		DumpType:  dump.TypeNone,
	}
}

func TestRun_PrintsSummary(t *testing.T) {
	mock := testutil.NewMockGamma()
	defer mock.Close()
	mock.SetCollection("/markets", 147)
	mock.SetPageResponse("/markets", 100, testutil.NewServerErrorResponse())

	var out bytes.Buffer
	if err := run(context.Background(), testConfig(mock.URL()), &out); err != nil {
		t.Fatalf("run() failed: %v", err)
	}

	var got summary
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not a summary: %v\n%s", err, out.String())
	}

	if got.Endpoint != "/markets" {
		t.Errorf("Endpoint = %q, want /markets", got.Endpoint)
	}
	if got.Pages != 10 {
		t.Errorf("Pages = %d, want 10", got.Pages)
	}
	if len(got.FailedPages) != 1 || got.FailedPages[0].Offset != 100 {
		t.Errorf("FailedPages = %+v, want offset 100", got.FailedPages)
	}
	if got.RecordCount != 100 || len(got.Records) != 100 {
		t.Errorf("RecordCount = %d, len(Records) = %d, want 100", got.RecordCount, len(got.Records))
	}
	if !got.EarlyStop || got.StopOffset != 200 {
		t.Errorf("EarlyStop = %v at %d, want true at 200", got.EarlyStop, got.StopOffset)
	}
}

func TestRun_Events(t *testing.T) {
	mock := testutil.NewMockGamma()
	defer mock.Close()
	mock.SetCollection("/events", 30)

	cfg := testConfig(mock.URL())
	cfg.Resource = config.ResourceEvents

	var out bytes.Buffer
	if err := run(context.Background(), cfg, &out); err != nil {
		t.Fatalf("run() failed: %v", err)
	}

	var got summary
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not a summary: %v", err)
	}
	if got.Endpoint != "/events" || got.RecordCount != 30 || got.Pages != 1 {
		t.Errorf("summary = %+v", got)
	}
}

func TestRun_FirstPageFailure(t *testing.T) {
	mock := testutil.NewMockGamma()
	defer mock.Close()
	mock.SetCollection("/markets", 500)
	mock.SetPageResponse("/markets", 0, testutil.NewServerErrorResponse())

	var out bytes.Buffer
	err := run(context.Background(), testConfig(mock.URL()), &out)

	var apiErr *client.RemoteAPIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *RemoteAPIError, got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("Expected no output, got %q", out.String())
	}
}

func TestRun_InvalidClientConfig(t *testing.T) {
	cfg := testConfig("not a url")

	err := run(context.Background(), cfg, &bytes.Buffer{})

	var cfgErr *client.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected *ConfigurationError, got %v", err)
	}
}

func TestRun_FileDump(t *testing.T) {
	mock := testutil.NewMockGamma()
	defer mock.Close()
	mock.SetCollection("/markets", 42)

	dir := t.TempDir()
	cfg := testConfig(mock.URL())
	cfg.DumpType = dump.TypeFile
	cfg.DumpTarget = dir

	var out bytes.Buffer
	if err := run(context.Background(), cfg, &out); err != nil {
		t.Fatalf("run() failed: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("Expected no stdout output in dump mode, got %q", out.String())
	}

	data, err := os.ReadFile(filepath.Join(dir, "markets-current.json"))
	if err != nil {
		t.Fatalf("dump file missing: %v", err)
	}

	var got summary
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("dump is not a summary: %v", err)
	}
	if got.RecordCount != 42 {
		t.Errorf("RecordCount = %d, want 42", got.RecordCount)
	}
}

func TestRun_BoltDump(t *testing.T) {
	mock := testutil.NewMockGamma()
	defer mock.Close()
	mock.SetCollection("/markets", 5)

	path := filepath.Join(t.TempDir(), "dumps.db")
	cfg := testConfig(mock.URL())
	cfg.DumpType = dump.TypeBolt
	cfg.DumpTarget = path

	if err := run(context.Background(), cfg, &bytes.Buffer{}); err != nil {
		t.Fatalf("run() failed: %v", err)
	}

	sink, err := dump.OpenBoltSink(path)
	if err != nil {
		t.Fatalf("OpenBoltSink() failed: %v", err)
	}
	defer sink.Close()

	payload, err := sink.Read("markets-current.json")
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}
	if len(payload) == 0 {
		t.Error("Expected summary in bbolt sink")
	}
}

func TestOpenSink_Unsupported(t *testing.T) {
	cfg := testConfig("http://localhost")
	cfg.DumpType = "s3"

	_, _, err := openSink(cfg)
	if !errors.Is(err, dump.ErrUnsupportedSink) {
		t.Errorf("Expected ErrUnsupportedSink, got %v", err)
	}
}

func TestNewRedisClient(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantAddr string
		wantDB   int
		wantErr  bool
	}{
		{name: "host and port", url: "localhost:6379", wantAddr: "localhost:6379"},
		{name: "redis url", url: "redis://cache.internal:6380/2", wantAddr: "cache.internal:6380", wantDB: 2},
		{name: "empty", url: " ", wantErr: true},
		{name: "bad scheme", url: "http://cache.internal", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rdb, err := newRedisClient(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			defer rdb.Close()

			if rdb.Options().Addr != tt.wantAddr {
				t.Errorf("Addr = %q, want %q", rdb.Options().Addr, tt.wantAddr)
			}
			if rdb.Options().DB != tt.wantDB {
				t.Errorf("DB = %d, want %d", rdb.Options().DB, tt.wantDB)
			}
		})
	}
}
