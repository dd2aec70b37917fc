package errors

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrorBuilder accumulates context for an error before it is marked and
// returned. The zero value is not usable; start with NewError or WithError.
type ErrorBuilder struct {
	err     error
	hint    string
	details map[string]interface{}
}

// NewError starts a builder from a new error message
func NewError(message string) *ErrorBuilder {
	return &ErrorBuilder{err: errors.New(message)}
}

// NewErrorf starts a builder from a formatted error message
func NewErrorf(format string, args ...interface{}) *ErrorBuilder {
	return &ErrorBuilder{err: errors.Newf(format, args...)}
}

// WithError starts a builder wrapping an existing error
func WithError(err error) *ErrorBuilder {
	if err == nil {
		err = errors.New("unknown error")
	}
	return &ErrorBuilder{err: err}
}

// WithHint attaches a human readable hint surfaced to API consumers
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.hint = hint
	return b
}

// WithHintf attaches a formatted hint
func (b *ErrorBuilder) WithHintf(format string, args ...interface{}) *ErrorBuilder {
	b.hint = fmt.Sprintf(format, args...)
	return b
}

// WithMessage wraps the underlying error with an additional message
func (b *ErrorBuilder) WithMessage(message string) *ErrorBuilder {
	b.err = errors.WithMessage(b.err, message)
	return b
}

// WithReportableDetails attaches structured details for logs and error reports
func (b *ErrorBuilder) WithReportableDetails(details map[string]interface{}) *ErrorBuilder {
	b.details = details
	return b
}

// Mark finalizes the builder, tagging the error with a marker error so that
// callers can classify it with errors.Is
func (b *ErrorBuilder) Mark(marker error) error {
	err := b.err
	if b.hint != "" {
		err = errors.WithHint(err, b.hint)
	}
	if len(b.details) > 0 {
		pairs := make([]string, 0, len(b.details))
		for k, v := range b.details {
			pairs = append(pairs, fmt.Sprintf("%s=%v", k, v))
		}
		err = errors.WithDetail(err, strings.Join(pairs, " "))
	}
	return errors.Mark(err, marker)
}

// Hint extracts the first hint attached to an error, if any
func Hint(err error) string {
	hints := errors.GetAllHints(err)
	if len(hints) == 0 {
		return ""
	}
	return hints[0]
}
