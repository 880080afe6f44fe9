package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-fieldset/pkg/model"
	"github.com/goliatone/go-fieldset/pkg/renderers/tui"
)

func promptCmd(globals *globalFlags) *cobra.Command {
	var (
		instance instanceFlags
		attempts int
	)

	cmd := &cobra.Command{
		Use:   "prompt <model>",
		Short: "Fill a model fieldset interactively",
		Long: `Ask for every field of a model fieldset in the terminal, validate the
answers and ask again for the fields that failed. The synced values are
printed as YAML once the answers validate.

Examples:
  fieldset prompt Order --schemas models.yaml --records records.yaml
  fieldset prompt User --openapi api.yaml --values user.yaml --attempts 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := globals.open(cmd.Context())
			if err != nil {
				return err
			}
			fs, err := instance.fieldSet(env, args[0])
			if err != nil {
				return err
			}

			filler, err := tui.New(
				tui.WithPromptDriver(tui.NewSurveyDriver(cmd.ErrOrStderr())),
				tui.WithAttempts(attempts),
				tui.WithLogger(env.logger),
			)
			if err != nil {
				return err
			}
			bound, err := filler.Fill(cmd.Context(), fs)
			if errors.Is(err, tui.ErrInvalid) {
				if werr := writeYAML(cmd.OutOrStdout(), newReport(bound, false)); werr != nil {
					return werr
				}
				return errInvalid
			}
			if err != nil {
				return err
			}

			if err := bound.Sync(); err != nil {
				return err
			}
			report := newReport(bound, true)
			if record, ok := bound.Model().(*model.Record); ok {
				report.Values = exportValues(record)
			}
			return writeYAML(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().StringVar(&instance.values, "values", "", "YAML mapping of attribute values for the instance (default: a new instance)")
	cmd.Flags().StringVar(&instance.prefix, "prefix", "", "Input name prefix")
	cmd.Flags().IntVar(&attempts, "attempts", tui.DefaultAttempts, "Rounds of answers before giving up")

	return cmd
}
