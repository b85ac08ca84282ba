package telemetry

import (
	"context"
	"testing"
	"time"
)

func TestSetupWithoutEndpoint(t *testing.T) {
	tel, err := Setup(context.Background(), Settings{ServiceName: "test"})
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	if tel.Logger == nil {
		t.Fatal("Expected a logger when export is disabled")
	}
	if len(tel.shutdownFuncs) != 0 {
		t.Fatalf("Expected no providers, got %d", len(tel.shutdownFuncs))
	}
	if err := tel.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}
}

func TestShutdownRunsEveryProvider(t *testing.T) {
	calls := 0
	tel := &Telemetry{}
	for range 3 {
		tel.shutdownFuncs = append(tel.shutdownFuncs, func(context.Context) error {
			calls++
			return nil
		})
	}

	if err := tel.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown returned error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("Expected 3 shutdown calls, got %d", calls)
	}

	// a second call has nothing left to flush
	if err := tel.Shutdown(context.Background()); err != nil {
		t.Fatalf("Second shutdown returned error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("Expected providers to shut down once, got %d calls", calls)
	}
}

func TestSetupWithEndpoint(t *testing.T) {
	// exporters connect lazily, so nothing needs to listen on the endpoint
	tel, err := Setup(context.Background(), Settings{
		ServiceName:   "test",
		Endpoint:      "http://127.0.0.1:1",
		ExportTimeout: 200 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	if tel.Logger == nil {
		t.Fatal("Expected a logger when export is enabled")
	}
	if len(tel.shutdownFuncs) != 3 {
		t.Fatalf("Expected trace, metric and log providers, got %d", len(tel.shutdownFuncs))
	}

	tel.Logger.Info("exported record")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	// the collector is unreachable, so a flush error is expected and ignored
	_ = tel.Shutdown(ctx)
	if len(tel.shutdownFuncs) != 0 {
		t.Fatal("Expected providers to be released after shutdown")
	}
}
