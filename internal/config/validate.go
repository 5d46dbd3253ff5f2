package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

// ValidationError represents a config validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the config for required fields and valid values. All
// problems are reported together.
func Validate(c *Config) error {
	var errors []string

	for _, err := range validateUpdate(c.Update) {
		errors = append(errors, err.Error())
	}

	if err := validateLog(c.Log); err != nil {
		errors = append(errors, err.Error())
	}

	if err := c.UI.Notifier.Validate(); err != nil {
		errors = append(errors, ValidationError{Field: "ui.notifier", Message: err.Error()}.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func validateUpdate(u UpdateConfig) []error {
	var errs []error

	if err := u.Feed.Validate(); err != nil {
		errs = append(errs, ValidationError{Field: "update.feed", Message: err.Error()})
	}

	if u.Feed.RequiresURL() {
		if u.ManifestURL == "" {
			errs = append(errs, ValidationError{
				Field:   "update.manifest_url",
				Message: "manifest_url is required for the manifest feed",
			})
		} else if parsed, err := url.Parse(u.ManifestURL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "update.manifest_url",
				Message: fmt.Sprintf("invalid URL '%s'", u.ManifestURL),
			})
		}
	} else if u.Owner == "" || u.Repo == "" {
		errs = append(errs, ValidationError{
			Field:   "update.repo",
			Message: "owner and repo are required for the github feed",
		})
	}

	if err := u.StartupPrompt.Validate(); err != nil {
		errs = append(errs, ValidationError{Field: "update.startup_prompt", Message: err.Error()})
	}
	if err := u.ManualPrompt.Validate(); err != nil {
		errs = append(errs, ValidationError{Field: "update.manual_prompt", Message: err.Error()})
	}

	if d, err := time.ParseDuration(u.CheckTimeout); err != nil || d <= 0 {
		errs = append(errs, ValidationError{
			Field:   "update.check_timeout",
			Message: fmt.Sprintf("invalid duration '%s' (e.g. 30s, 1m)", u.CheckTimeout),
		})
	}

	return errs
}

func validateLog(l LogConfig) error {
	if _, err := zapcore.ParseLevel(l.Level); err != nil {
		return ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s' (must be debug, info, warn, or error)", l.Level),
		}
	}
	return nil
}
