// Package validate holds field checks shared by the carehub stores.
package validate

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hackgods/carehub/internal/apperr"
)

var strict = bluemonday.StrictPolicy()

// Required fails when v is empty after trimming whitespace.
func Required(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return apperr.Validation("%s is required", field)
	}
	return nil
}

// PlainText fails when v carries HTML markup. Plain text, including text with
// &, <, quotes or literal entities such as &amp;, passes; the value itself is
// never rewritten. Both sides are unescaped so only removed tags count.
func PlainText(field, v string) error {
	if v == "" {
		return nil
	}
	if html.UnescapeString(strict.Sanitize(v)) != html.UnescapeString(v) {
		return apperr.Validation("%s must not contain markup", field)
	}
	return nil
}

// NonNegative fails when v < 0.
func NonNegative(field string, v float64) error {
	if v < 0 {
		return apperr.Validation("%s must not be negative", field)
	}
	return nil
}

// First returns the first non-nil error.
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
