package forms

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-fieldset/pkg/render"
	"github.com/goliatone/go-fieldset/pkg/validators"
)

// Validate checks every render field, then the global validator. All fields
// are checked even after a failure so Errors is complete. User input
// problems are reported through the result and Errors; a non-nil error means
// a broken validator or a FieldSet without data.
func (fs *FieldSet) Validate() (bool, error) {
	if fs.data == nil {
		return false, fmt.Errorf("%w: cannot validate %s without data", ErrNotBound, fs.schema.Name)
	}
	started := time.Now()

	fs.fieldErrors = nil
	fs.formErrors = nil
	fs.validated = false
	success := true
	for _, f := range fs.render {
		messages, err := f.Check()
		if err != nil {
			return false, err
		}
		for _, message := range messages {
			_ = fs.AddFieldError(f.Key(), message)
		}
		if len(messages) > 0 {
			success = false
		}
	}

	if validate := fs.settings.validator; validate != nil {
		if err := validate(fs); err != nil {
			verr, ok := validators.AsValidationError(err)
			if !ok {
				return false, fmt.Errorf("forms: global validator: %w", err)
			}
			fs.formErrors = append(fs.formErrors, verr.Messages...)
			success = false
		}
		if !fs.Errors().Empty() {
			success = false
		}
	}

	fs.validated = true
	fs.valid = success
	for key, messages := range fs.fieldErrors {
		for range messages {
			fs.cfg.Metrics.ObserveFieldError(fs.schema.Name, key)
		}
	}
	fs.cfg.Metrics.ObserveValidation(fs.schema.Name, success, time.Since(started))
	fs.cfg.Logger.Debug("fieldset validated",
		zap.String("model", fs.schema.Name),
		zap.Bool("valid", success),
		zap.Int("field_errors", len(fs.fieldErrors)),
		zap.Int("form_errors", len(fs.formErrors)),
	)
	return success, nil
}

// Sync writes the deserialized values of the render fields onto the bound
// instance. Call it after a successful Validate; it fails when the instance's
// primary key changed since binding. Every field is deserialized before the
// first write, so a failing field leaves the instance unchanged.
func (fs *FieldSet) Sync() (err error) {
	defer func() {
		fs.cfg.Metrics.ObserveSync(fs.schema.Name, err)
	}()

	if fs.data == nil {
		return fmt.Errorf("%w: cannot sync %s without data", ErrNotBound, fs.schema.Name)
	}
	if err := fs.checkPrimaryKey(); err != nil {
		return err
	}
	if !fs.validated || !fs.valid {
		fs.cfg.Logger.Warn("fieldset synced without successful validation", zap.String("model", fs.schema.Name))
	}
	writes := make([]func() error, len(fs.render))
	for i, f := range fs.render {
		write, err := f.PrepareSync()
		if err != nil {
			return fmt.Errorf("forms: sync %s.%s: %w", fs.schema.Name, f.Key(), err)
		}
		writes[i] = write
	}
	for i, write := range writes {
		if err := write(); err != nil {
			return fmt.Errorf("forms: sync %s.%s: %w", fs.schema.Name, fs.render[i].Key(), err)
		}
	}
	fs.cfg.Logger.Debug("fieldset synced", zap.String("model", fs.schema.Name), zap.Int("fields", len(fs.render)))
	return nil
}

// ApplyErrors merges an error payload from a backend (keyed by field key,
// input name or a dotted/bracketed path) into Errors. Unknown paths become
// form-level messages.
func (fs *FieldSet) ApplyErrors(payload map[string][]string) {
	known := make(map[string]string, len(fs.render)*2)
	for _, f := range fs.render {
		known[f.Key()] = f.Key()
		known[f.Name()] = f.Key()
		if f.Column() != f.Key() {
			known[f.Column()] = f.Key()
		}
	}
	mapping := render.MapErrorPayload(known, payload)
	for key, messages := range mapping.Fields {
		for _, message := range messages {
			_ = fs.AddFieldError(key, message)
		}
	}
	fs.formErrors = render.MergeFormErrors(fs.formErrors, mapping.Form...)
}
