package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-fieldset/pkg/forms"
	"github.com/goliatone/go-fieldset/pkg/render"
)

// instanceFlags pick the instance a FieldSet is built over and the data
// bound to it.
type instanceFlags struct {
	values string
	data   string
	prefix string
	pk     bool
}

func (f *instanceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.values, "values", "", "YAML mapping of attribute values for the instance (default: a new instance)")
	cmd.Flags().StringVarP(&f.data, "data", "d", "", "YAML mapping of submitted input names to values")
	cmd.Flags().StringVar(&f.prefix, "prefix", "", "Input name prefix")
	cmd.Flags().BoolVar(&f.pk, "pk", false, "Include primary key fields")
}

// fieldSet builds and configures the FieldSet of the named model. Configure
// starts from scratch, so every option is applied here at once.
func (f *instanceFlags) fieldSet(env *environment, name string, configure ...forms.ConfigureOption) (*forms.FieldSet, error) {
	record, err := env.newRecord(name, f.values)
	if err != nil {
		return nil, err
	}
	var data any
	if f.data != "" {
		submitted, err := readData(f.data)
		if err != nil {
			return nil, err
		}
		data = submitted
	}
	fs, err := env.fieldSet(record, f.prefix, data)
	if err != nil {
		return nil, err
	}
	if err := fs.Configure(append([]forms.ConfigureOption{forms.PK(f.pk)}, configure...)...); err != nil {
		return nil, err
	}
	return fs, nil
}

func renderCmd(globals *globalFlags) *cobra.Command {
	var (
		instance instanceFlags
		readonly bool
		noFocus  bool
		hidden   []string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "render <model>",
		Short: "Render a model fieldset as HTML",
		Long: `Render the fieldset of a model. Without --values the fieldset is built
over a new instance and shows attribute defaults; --data binds a submission
so the inputs show the submitted values.

Examples:
  fieldset render Order --schemas models.yaml --records records.yaml
  fieldset render Order --schemas models.yaml --values order.yaml --readonly
  fieldset render User --openapi api.yaml --hidden csrf=abc123 -o user.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := globals.open(cmd.Context())
			if err != nil {
				return err
			}
			configure := []forms.ConfigureOption{forms.Readonly(readonly)}
			if noFocus {
				configure = append(configure, forms.Focus(false))
			}
			fs, err := instance.fieldSet(env, args[0], configure...)
			if err != nil {
				return err
			}

			opts := render.RenderOptions{}
			for _, pair := range hidden {
				name, value, ok := strings.Cut(pair, "=")
				if !ok || name == "" {
					return fmt.Errorf("invalid --hidden %q (expected name=value)", pair)
				}
				opts.Hidden = append(opts.Hidden, render.HiddenField{Name: name, Value: value})
			}

			html, err := fs.RenderContext(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), html)
				return err
			}
			if err := os.WriteFile(output, []byte(html+"\n"), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Fieldset written to %s\n", output)
			return nil
		},
	}

	instance.register(cmd)
	cmd.Flags().BoolVar(&readonly, "readonly", false, "Render a read-only table body")
	cmd.Flags().BoolVar(&noFocus, "no-focus", false, "Do not focus the first field")
	cmd.Flags().StringArrayVar(&hidden, "hidden", nil, "Extra hidden input as name=value (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (stdout if empty)")

	return cmd
}
