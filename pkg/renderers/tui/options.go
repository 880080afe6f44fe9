package tui

import "go.uber.org/zap"

// DefaultAttempts is how often invalid fields are asked again.
const DefaultAttempts = 3

// Theme captures optional message prefixes the filler applies.
type Theme struct {
	ErrorPrefix    string
	RequiredSuffix string
}

// Option configures the Filler.
type Option func(*Filler)

// WithPromptDriver overrides the survey driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(f *Filler) {
		if driver != nil {
			f.driver = driver
		}
	}
}

// WithAttempts sets how many rounds of answers are validated before Fill
// gives up. Values below one are ignored.
func WithAttempts(n int) Option {
	return func(f *Filler) {
		if n > 0 {
			f.attempts = n
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(f *Filler) {
		f.theme = theme
	}
}

// WithLogger records prompt rounds at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Filler) {
		if logger != nil {
			f.logger = logger
		}
	}
}
