package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-fieldset/pkg/forms"
	"github.com/goliatone/go-fieldset/pkg/metrics"
	"github.com/goliatone/go-fieldset/pkg/model"
)

// validationReport is the YAML document validate and prompt print.
type validationReport struct {
	Model  string              `yaml:"model"`
	Valid  bool                `yaml:"valid"`
	Form   []string            `yaml:"form,omitempty"`
	Errors map[string][]string `yaml:"errors,omitempty"`
	Values map[string]any      `yaml:"values,omitempty"`
}

func newReport(fs *forms.FieldSet, valid bool) validationReport {
	report := validationReport{Model: fs.Schema().Name, Valid: valid}
	errs := fs.Errors()
	report.Form = errs.Form()
	for _, key := range errs.Keys() {
		if report.Errors == nil {
			report.Errors = make(map[string][]string)
		}
		report.Errors[key] = errs.Field(key)
	}
	return report
}

func validateCmd(globals *globalFlags) *cobra.Command {
	var (
		instance    instanceFlags
		sync        bool
		showMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "validate <model>",
		Short: "Validate a submission against a model fieldset",
		Long: `Bind --data to the fieldset of a model and validate it. The report lists
form-level and per-field messages; with --sync the validated values are
written to the instance and printed. The command exits with status 2 when
the submission is invalid.

Examples:
  fieldset validate Order --schemas models.yaml --data submission.yaml
  fieldset validate Order --schemas models.yaml --values order.yaml --data edit.yaml --sync`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if instance.data == "" {
				return errors.New("--data is required")
			}
			env, err := globals.open(cmd.Context())
			if err != nil {
				return err
			}
			registry := prometheus.NewRegistry()
			if showMetrics {
				env.cfg.Metrics = metrics.NewPrometheus(metrics.WithRegistry(registry))
			}
			return runValidate(cmd, env, &instance, args[0], sync, func(w io.Writer) error {
				if !showMetrics {
					return nil
				}
				return writeMetrics(w, registry)
			})
		},
	}

	instance.register(cmd)
	cmd.Flags().BoolVar(&sync, "sync", false, "Sync valid values to the instance and print them")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "Print the recorded metrics to stderr")

	return cmd
}

func runValidate(cmd *cobra.Command, env *environment, instance *instanceFlags, name string, sync bool, after func(io.Writer) error) error {
	fs, err := instance.fieldSet(env, name)
	if err != nil {
		return err
	}
	valid, err := fs.Validate()
	if err != nil {
		return err
	}
	report := newReport(fs, valid)
	if valid && sync {
		if err := fs.Sync(); err != nil {
			return err
		}
		if record, ok := fs.Model().(*model.Record); ok {
			report.Values = exportValues(record)
		}
	}
	if err := writeYAML(cmd.OutOrStdout(), report); err != nil {
		return err
	}
	if err := after(cmd.ErrOrStderr()); err != nil {
		return err
	}
	if !valid {
		return errInvalid
	}
	return nil
}

// writeMetrics prints counter samples as "name{label="value"} count".
func writeMetrics(w io.Writer, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			counter := metric.GetCounter()
			if counter == nil {
				continue
			}
			labels := make([]string, 0, len(metric.GetLabel()))
			for _, label := range metric.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", label.GetName(), label.GetValue()))
			}
			sort.Strings(labels)
			if _, err := fmt.Fprintf(w, "%s{%s} %g\n", family.GetName(), strings.Join(labels, ","), counter.GetValue()); err != nil {
				return err
			}
		}
	}
	return nil
}
