package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type service struct {
	name    string
	addr    string
	handler http.Handler
}

// runServices serves every service until ctx ends or one of them fails,
// then shuts all of them down within grace.
func runServices(ctx context.Context, logger *zap.Logger, grace time.Duration, services ...service) error {
	if len(services) == 0 {
		return errors.New("cli: no service to run")
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, svc := range services {
		srv := &http.Server{
			Addr:              svc.addr,
			Handler:           svc.handler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		name := svc.name

		g.Go(func() error {
			logger.Info("listening", zap.String("service", name), zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("%s: listen: %w", name, err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("%s: shutdown: %w", name, err)
			}
			logger.Info("stopped", zap.String("service", name))
			return nil
		})
	}
	return g.Wait()
}
