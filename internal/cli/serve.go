package cli

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	careerpath "github.com/goliatone/go-careerpath"
	"github.com/goliatone/go-careerpath/internal/config"
	"github.com/goliatone/go-careerpath/pkg/contract"
	"github.com/goliatone/go-careerpath/pkg/form"
	"github.com/goliatone/go-careerpath/pkg/model"
	"github.com/goliatone/go-careerpath/pkg/predict"
	careerhtml "github.com/goliatone/go-careerpath/pkg/renderers/html"
	"github.com/goliatone/go-careerpath/pkg/server"
	"github.com/goliatone/go-careerpath/pkg/session"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var (
		addr       string
		predictURL string
		withStub   bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web form",
		Long: `Serves the landing page, the three page form and the result page.
With --with-stub the local prediction stub runs in the same process.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				opts.cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("predict-url") {
				opts.cfg.Predict.BaseURL = predictURL
			}
			if err := opts.finalize(); err != nil {
				return err
			}
			return runServe(cmd.Context(), opts.cfg, opts.logger.Logger, withStub)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	cmd.Flags().StringVar(&predictURL, "predict-url", "", "Prediction service base URL")
	cmd.Flags().BoolVar(&withStub, "with-stub", false, "Also run the local prediction stub")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, logger *zap.Logger, withStub bool) error {
	handler, err := buildServer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	services := []service{{name: "web", addr: cfg.Server.Addr, handler: handler}}
	if withStub {
		stubHandler, err := buildStub(ctx, logger)
		if err != nil {
			return err
		}
		services = append(services, service{name: "stub", addr: cfg.Stub.Addr, handler: stubHandler})
	}
	return runServices(ctx, logger, cfg.Server.ShutdownTimeout, services...)
}

// buildServer assembles the web handler from cfg.
func buildServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (http.Handler, error) {
	partition := model.DefaultPartition()
	checkContract(ctx, partition.Registry(), logger)

	machine, err := form.NewMachine(partition, form.WithTypedValidation(cfg.Form.TypedValidation))
	if err != nil {
		return nil, err
	}
	predictor, err := newPredictor(cfg, logger)
	if err != nil {
		return nil, err
	}
	sessions, err := session.New(cfg.Session.Capacity, session.WithLogger(logger.Named("session")))
	if err != nil {
		return nil, err
	}
	renderers, err := server.DefaultRenderers(
		careerhtml.WithTheme(nil, cfg.Theme.Name, cfg.Theme.Variant),
		careerhtml.WithTemplatesDir(cfg.Theme.TemplatesDir),
		careerhtml.WithAboutHTML(cfg.Theme.AboutHTML),
		careerhtml.WithContact(firstNonEmpty(cfg.Theme.Contact, careerhtml.DefaultContact)),
	)
	if err != nil {
		return nil, err
	}

	srv, err := server.New(machine, predictor, sessions,
		server.WithLogger(logger.Named("http")),
		server.WithRenderers(renderers),
		server.WithAssets(careerpath.EmbeddedAssets()),
		server.WithAllowedOrigins(cfg.Server.AllowedOrigins...),
		server.WithCookie(cfg.Session.CookieName, cfg.Session.CookieSecure),
	)
	if err != nil {
		return nil, err
	}
	return srv.Handler(), nil
}

func newPredictor(cfg *config.Config, logger *zap.Logger) (*predict.Client, error) {
	client, err := predict.New(cfg.Predict.BaseURL,
		predict.WithPath(cfg.Predict.Path),
		predict.WithTimeout(cfg.Predict.Timeout),
		predict.WithLogger(logger.Named("predict")),
	)
	if err != nil {
		return nil, fmt.Errorf("configure predictor: %w", err)
	}
	return client, nil
}

// checkContract warns when the field registry drifted from the wire
// contract. The service stays the source of truth, so drift is not fatal.
func checkContract(ctx context.Context, reg *model.Registry, logger *zap.Logger) {
	c, err := contract.Load(ctx)
	if err != nil {
		logger.Warn("prediction contract unavailable", zap.Error(err))
		return
	}
	if err := c.CheckRegistry(reg); err != nil {
		logger.Warn("field registry differs from prediction contract", zap.Error(err))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
