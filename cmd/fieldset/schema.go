package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-fieldset/pkg/model"
)

func schemaCmd(globals *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema [model...]",
		Short: "Print the loaded model schemas",
		Long: `Print the schemas loaded from --schemas or --openapi as a YAML schema
document. The output can be fed back through --schemas, which makes the
command a converter from OpenAPI components to schema documents.

Examples:
  fieldset schema --openapi api.yaml
  fieldset schema User --schemas models.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := globals.open(cmd.Context())
			if err != nil {
				return err
			}
			return runSchema(cmd, env, args)
		},
	}
	return cmd
}

func runSchema(cmd *cobra.Command, env *environment, names []string) error {
	if len(names) == 0 {
		names = env.order
	}
	doc := struct {
		Schemas []*model.Schema `yaml:"schemas"`
	}{}
	for _, name := range names {
		class, err := env.class(name)
		if err != nil {
			return err
		}
		doc.Schemas = append(doc.Schemas, class.Schema())
	}
	return writeYAML(cmd.OutOrStdout(), doc)
}
