package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-careerpath/pkg/form"
	"github.com/goliatone/go-careerpath/pkg/model"
	"github.com/goliatone/go-careerpath/pkg/renderers/tui"
)

func newFillCommand(opts *rootOptions) *cobra.Command {
	var (
		predictURL      string
		validateOnInput bool
	)
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Fill in the profile in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.cfg
			if cmd.Flags().Changed("predict-url") {
				cfg.Predict.BaseURL = predictURL
			}
			if cmd.Flags().Changed("validate-on-input") {
				cfg.Form.ValidateOnInput = validateOnInput
			}
			if err := opts.finalize(); err != nil {
				return err
			}

			logger := opts.logger.Logger
			machine, err := form.NewMachine(model.DefaultPartition(), form.WithTypedValidation(cfg.Form.TypedValidation))
			if err != nil {
				return err
			}
			predictor, err := newPredictor(cfg, logger)
			if err != nil {
				return err
			}
			runner, err := tui.New(machine, predictor,
				tui.WithOutput(cmd.OutOrStdout()),
				tui.WithLogger(logger.Named("tui")),
				tui.WithValidateOnInput(cfg.Form.ValidateOnInput),
			)
			if err != nil {
				return err
			}

			_, err = runner.Run(cmd.Context())
			if errors.Is(err, tui.ErrAborted) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&predictURL, "predict-url", "", "Prediction service base URL")
	cmd.Flags().BoolVar(&validateOnInput, "validate-on-input", false, "Check each answer as it is typed")
	return cmd
}
