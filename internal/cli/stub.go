package cli

import (
	"context"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-careerpath/pkg/contract"
	"github.com/goliatone/go-careerpath/pkg/stub"
)

func newStubCommand(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Run a local prediction service",
		Long: `Serves POST /predict with a rule based prediction. Requests are validated
against the embedded OpenAPI contract, so malformed profiles get the same
{"error": ...} answers the real service gives.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				opts.cfg.Stub.Addr = addr
			}
			logger := opts.logger.Logger
			handler, err := buildStub(cmd.Context(), logger)
			if err != nil {
				return err
			}
			return runServices(cmd.Context(), logger, opts.cfg.Server.ShutdownTimeout,
				service{name: "stub", addr: opts.cfg.Stub.Addr, handler: handler})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}

func buildStub(ctx context.Context, logger *zap.Logger) (http.Handler, error) {
	c, err := contract.Load(ctx)
	if err != nil {
		return nil, err
	}
	h, err := stub.New(c, stub.WithLogger(logger.Named("stub")))
	if err != nil {
		return nil, err
	}
	return h.Router(), nil
}
