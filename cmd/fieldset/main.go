package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var version = "dev"

// errInvalid marks a submission that did not validate; main exits with 2.
var errInvalid = errors.New("submission is invalid")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		if errors.Is(err, errInvalid) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	globals := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "fieldset",
		Short: "Render, validate and fill model fieldsets",
		Long: `fieldset builds HTML fieldsets from model schemas.

Schemas come from a YAML schema document (--schemas) or from the component
schemas of an OpenAPI 3 document (--openapi). Related records used for
select options are read from --records.

Examples:
  fieldset schema --schemas models.yaml
  fieldset render Order --schemas models.yaml --records records.yaml
  fieldset validate Order --openapi api.yaml --data submission.yaml
  fieldset prompt Order --schemas models.yaml`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	globals.register(rootCmd)

	rootCmd.AddCommand(
		schemaCmd(globals),
		renderCmd(globals),
		validateCmd(globals),
		promptCmd(globals),
	)

	return rootCmd
}
