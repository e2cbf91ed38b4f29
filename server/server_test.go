package server

import (
	"context"
	"testing"
	"time"

	"github.com/janelia-flyem/ngportal/catalog"
)

func TestNewServiceNeedsCatalog(t *testing.T) {
	if _, err := NewService(nil, nil); err == nil {
		t.Fatalf("expected error with no catalog\n")
	}
}

func TestServeShutdown(t *testing.T) {
	cat, err := catalog.New(testDatasets()...)
	if err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.Server.HTTPAddress = "127.0.0.1:0"
	s, err := NewService(cat, cfg)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ctx)
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v\n", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not shut down\n")
	}
}
