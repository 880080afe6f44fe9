package forms

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-fieldset/pkg/render"
)

// View renders every field input and returns the layout-facing snapshot.
func (fs *FieldSet) View() (render.View, error) {
	if err := fs.checkPrimaryKey(); err != nil {
		return render.View{}, err
	}

	view := render.View{
		Model:    fs.schema.Name,
		Readonly: fs.settings.readonly,
		Errors:   append([]string(nil), fs.formErrors...),
		Fields:   make([]render.FieldView, 0, len(fs.render)),
		Classes:  fs.cfg.Classes,
	}

	focused := fs.settings.readonly || fs.settings.focus == focusNone
	for _, f := range fs.render {
		html, err := f.Render()
		if err != nil {
			return render.View{}, fmt.Errorf("forms: render %s.%s: %w", fs.schema.Name, f.Key(), err)
		}
		field := render.FieldView{
			Key:        f.Key(),
			ID:         f.Name(),
			Label:      f.Label(),
			LabelClass: fs.cfg.Classes.Optional,
			HTML:       html,
			Help:       f.HelpText(),
			Errors:     f.Errors(),
			Required:   f.IsRequired(),
			Hidden:     f.IsHidden(),
			Meta:       f.Metadata(),
		}
		if field.Required {
			field.LabelClass = fs.cfg.Classes.Required
		}
		if !focused && !field.Hidden && (fs.settings.focus == focusFirst || fs.settings.focusKey == f.Key()) {
			field.Focus = true
			focused = true
		}
		view.Fields = append(view.Fields, field)
	}
	return view, nil
}

// Render renders the FieldSet with the configured view renderer.
func (fs *FieldSet) Render() (string, error) {
	return fs.RenderContext(context.Background(), render.RenderOptions{})
}

// RenderContext renders with per-request options (hidden inputs, locale,
// class overrides). Options given here win over the configuration.
func (fs *FieldSet) RenderContext(ctx context.Context, opts render.RenderOptions) (out string, err error) {
	started := time.Now()
	mode := "edit"
	if fs.settings.readonly {
		mode = "readonly"
	}
	defer func() {
		fs.cfg.Metrics.ObserveRender(fs.schema.Name, mode, time.Since(started), err)
	}()

	view, err := fs.View()
	if err != nil {
		return "", err
	}
	renderer, err := fs.cfg.Views.Get(fs.cfg.View)
	if err != nil {
		return "", fmt.Errorf("forms: %w", err)
	}

	options := fs.cfg.RenderOptions()
	options.Locale = opts.Locale
	options.Translator = opts.Translator
	options.OnMissing = opts.OnMissing
	options.Hidden = opts.Hidden
	if opts.Classes != nil {
		merged := options.Classes.Merge(opts.Classes)
		options.Classes = &merged
	}
	for role, name := range opts.Templates {
		if options.Templates == nil {
			options.Templates = make(map[string]string)
		}
		options.Templates[role] = name
	}

	payload, err := renderer.Render(ctx, view, options)
	if err != nil {
		return "", fmt.Errorf("forms: render %s: %w", fs.schema.Name, err)
	}
	fs.cfg.Logger.Debug("fieldset rendered",
		zap.String("model", fs.schema.Name),
		zap.String("mode", mode),
		zap.Int("fields", len(view.Fields)),
	)
	return string(payload), nil
}

// String renders the FieldSet, returning the error text on failure.
func (fs *FieldSet) String() string {
	out, err := fs.Render()
	if err != nil {
		return err.Error()
	}
	return out
}
