package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/janelia-flyem/ngportal/catalog"
	"github.com/janelia-flyem/ngportal/compiler"
	"github.com/janelia-flyem/ngportal/portal"
)

// shutdownGrace is how long in-flight requests get to finish once serving stops.
const shutdownGrace = 10 * time.Second

// Service serves one immutable catalog.  It is safe for concurrent use.
type Service struct {
	config  *Config
	catalog *catalog.Catalog
	options compiler.Options
	started time.Time
}

// NewService returns a service for the catalog using the configuration, which
// may be nil to use defaults.
func NewService(cat *catalog.Catalog, cfg *Config) (*Service, error) {
	if cat == nil {
		return nil, fmt.Errorf("no catalog given to service")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Service{
		config:  cfg,
		catalog: cat,
		options: cfg.CompilerOptions(),
		started: time.Now(),
	}, nil
}

// Serve listens on the configured address until the context is done, then shuts
// down gracefully.
func (s *Service) Serve(ctx context.Context) error {
	address := s.config.Server.HTTPAddress
	if address == "" {
		address = DefaultWebAddress
	}
	src := &http.Server{
		Addr:         address,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.readTimeout(),
		WriteTimeout: s.config.writeTimeout(),
	}

	errCh := make(chan error, 1)
	go func() {
		portal.Infof("Web server listening at %s, serving %d datasets ...\n", address, s.catalog.Len())
		errCh <- src.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		portal.Infof("Shutting down web server at %s ...\n", address)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return src.Shutdown(shutdownCtx)
	}
}

// Run loads the configuration file, opens its catalog and serves until the
// context is done.
func Run(ctx context.Context, configPath string) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}
	cfg.Logging.SetLogger()
	defer portal.Shutdown()

	cat, err := catalog.Open(ctx, cfg.Catalog.Ref, cfg.Catalog.Concurrency)
	if err != nil {
		return err
	}
	service, err := NewService(cat, cfg)
	if err != nil {
		return err
	}
	return service.Serve(ctx)
}
