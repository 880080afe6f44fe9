package tui

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/goliatone/go-fieldset/pkg/fields"
	"github.com/goliatone/go-fieldset/pkg/forms"
)

// Filler prompts for the fields of a FieldSet in the terminal and binds the
// answers as submitted data, so the usual Validate/Sync flow applies.
type Filler struct {
	driver   PromptDriver
	attempts int
	theme    Theme
	logger   *zap.Logger
}

// New constructs a Filler using the survey driver unless overridden.
func New(options ...Option) (*Filler, error) {
	f := &Filler{
		attempts: DefaultAttempts,
		theme:    Theme{ErrorPrefix: "! ", RequiredSuffix: " *"},
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}
	if f.driver == nil {
		f.driver = NewSurveyDriver(nil)
	}
	return f, nil
}

var plainText = bluemonday.StrictPolicy()

// Fill asks for every editable render field of fs, binds the answers and
// validates them. Fields that fail are asked again with their messages shown
// until the answers validate; after the configured attempts Fill returns the
// last bound FieldSet with ErrInvalid. The model is left untouched: callers
// Sync the returned FieldSet.
func (f *Filler) Fill(ctx context.Context, fs *forms.FieldSet) (*forms.FieldSet, error) {
	if fs == nil {
		return nil, errors.New("tui: fieldset is nil")
	}

	data := forms.MultiDict{}
	pending := fs.RenderFields()
	for attempt := 1; ; attempt++ {
		for _, field := range pending {
			if err := f.ask(ctx, field, data); err != nil {
				return nil, err
			}
		}

		bound, err := bindAnswers(fs, data)
		if err != nil {
			return nil, err
		}
		valid, err := bound.Validate()
		if err != nil {
			return nil, err
		}
		f.logger.Debug("prompt round",
			zap.String("model", bound.Schema().Name),
			zap.Int("attempt", attempt),
			zap.Bool("valid", valid),
		)
		if valid {
			return bound, nil
		}
		if attempt >= f.attempts {
			return bound, ErrInvalid
		}

		pending, err = f.report(ctx, bound)
		if err != nil {
			return nil, err
		}
	}
}

// report prints the validation messages and returns the fields to ask
// again. Form-level failures re-ask every field.
func (f *Filler) report(ctx context.Context, bound *forms.FieldSet) ([]*fields.Field, error) {
	errs := bound.Errors()
	for _, message := range errs.Form() {
		if err := f.driver.Info(ctx, f.theme.ErrorPrefix+message); err != nil {
			return nil, err
		}
	}
	var retry []*fields.Field
	for _, field := range bound.RenderFields() {
		messages := errs.Field(field.Key())
		if len(messages) == 0 {
			continue
		}
		if err := f.driver.Info(ctx, fmt.Sprintf("%s%s: %s", f.theme.ErrorPrefix, field.Label(), strings.Join(messages, "; "))); err != nil {
			return nil, err
		}
		retry = append(retry, field)
	}
	if len(retry) == 0 {
		retry = bound.RenderFields()
	}
	return retry, nil
}

func bindAnswers(fs *forms.FieldSet, data forms.MultiDict) (*forms.FieldSet, error) {
	snapshot := make(forms.MultiDict, len(data))
	for key, values := range data {
		snapshot[key] = append([]string(nil), values...)
	}
	opts := []forms.BindOption{forms.BindModel(fs.Model()), forms.BindData(snapshot)}
	if session := fs.Session(); session != nil {
		opts = append(opts, forms.BindSession(session))
	}
	return fs.Bind(opts...)
}

func (f *Filler) ask(ctx context.Context, field *fields.Field, data forms.MultiDict) error {
	if field.IsReadonly() {
		return nil
	}
	name := field.Name()
	if field.IsHidden() {
		if raw := field.RawValue(); raw != "" {
			data.Set(name, raw)
		}
		return nil
	}

	message := field.Label()
	if field.IsRequired() {
		message += f.theme.RequiredSuffix
	}
	help := html.UnescapeString(plainText.Sanitize(field.HelpText()))

	switch r := field.Renderer().(type) {
	case fields.CheckBoxRenderer:
		checked, _ := field.Value().(bool)
		answer, err := f.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: checked, Help: help})
		if err != nil {
			return err
		}
		if answer {
			data.Set(name, "True")
		} else {
			data.Set(name)
		}
	case fields.SelectRenderer, fields.BooleanSelectRenderer, fields.RadioRenderer, fields.CheckboxSetRenderer:
		return f.choose(ctx, field, message, help, data)
	case fields.PasswordRenderer:
		answer, err := f.driver.Password(ctx, InputConfig{Message: message, Help: help})
		if err != nil {
			return err
		}
		data.Set(name, answer)
	case fields.TextareaRenderer:
		answer, err := f.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: field.RawValue(), Help: help})
		if err != nil {
			return err
		}
		data.Set(name, answer)
	case fields.FileRenderer:
		return f.driver.Info(ctx, fmt.Sprintf("%s: file uploads are not supported in the terminal", field.Label()))
	case fields.CompositeRenderer:
		for _, part := range r.Parts {
			answer, err := f.driver.Input(ctx, InputConfig{Message: fmt.Sprintf("%s (%s)", message, part), Help: help})
			if err != nil {
				return err
			}
			data.Set(name+"-"+part, answer)
		}
	default:
		answer, err := f.driver.Input(ctx, InputConfig{Message: message, Default: field.RawValue(), Help: help})
		if err != nil {
			return err
		}
		data.Set(name, answer)
	}
	return nil
}

func (f *Filler) choose(ctx context.Context, field *fields.Field, message, help string, data forms.MultiDict) error {
	options, err := field.ResolvedOptions()
	if err != nil {
		return fmt.Errorf("tui: options for %s: %w", field.Key(), err)
	}
	name := field.Name()
	if len(options) == 0 {
		data.Set(name)
		return f.driver.Info(ctx, fmt.Sprintf("%s: no choices available", field.Label()))
	}

	labels := make([]string, len(options))
	values := make([]string, len(options))
	for i, option := range options {
		labels[i] = option.Label
		values[i] = field.OptionValue(option)
	}
	selected := make(map[string]struct{})
	for _, raw := range field.RawValues() {
		selected[raw] = struct{}{}
	}
	var defaults []int
	for i, value := range values {
		if _, ok := selected[value]; ok {
			defaults = append(defaults, i)
		}
	}

	cfg := SelectConfig{Message: message, Options: labels, Help: help, DefaultIndex: -1, Defaults: defaults}
	if field.Multiple() {
		picked, err := f.driver.MultiSelect(ctx, cfg)
		if err != nil {
			return err
		}
		answers := make([]string, 0, len(picked))
		for _, idx := range picked {
			if idx >= 0 && idx < len(values) {
				answers = append(answers, values[idx])
			}
		}
		data.Set(name, answers...)
		return nil
	}

	if len(defaults) > 0 {
		cfg.DefaultIndex = defaults[0]
	}
	idx, err := f.driver.Select(ctx, cfg)
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(values) {
		data.Set(name)
		return nil
	}
	data.Set(name, values[idx])
	return nil
}
