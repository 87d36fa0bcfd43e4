package output

import (
	"context"
	"errors"
	"io/fs"
	"net/url"

	"github.com/gorewood/rustme/internal/cache"
	"github.com/gorewood/rustme/internal/config"
	"github.com/gorewood/rustme/internal/glossary"
	"github.com/gorewood/rustme/internal/render"
	"github.com/gorewood/rustme/internal/scan"
	"github.com/gorewood/rustme/internal/snippet"
)

// userErrors are engine failures the user fixes by editing their files.
var userErrors = []error{
	config.ErrNoConfiguration,
	snippet.ErrNotFound,
	snippet.ErrAlreadyDefined,
	snippet.ErrMalformedSnippet,
	render.ErrMalformedReference,
	render.ErrMalformedCodeBlock,
	cache.ErrNotFound,
	scan.ErrInvalidUTF8,
}

// Classify wraps err in an *ExitError whose code reflects its kind. Remote
// and filesystem failures are system errors; everything the user can fix in
// their configuration or sources is a user error. An existing *ExitError is
// returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}

	var httpErr *cache.HTTPError
	if errors.As(err, &httpErr) {
		return NewSystemErrorWithCause(err.Error(), err)
	}

	for _, target := range userErrors {
		if errors.Is(err, target) {
			return NewUserErrorWithCause(err.Error(), err)
		}
	}

	var parseErr *config.ParseError
	if errors.As(err, &parseErr) {
		if errors.Is(err, fs.ErrNotExist) || !isSystemFailure(err) {
			return NewUserErrorWithCause(err.Error(), err)
		}
		return NewSystemErrorWithCause(err.Error(), err)
	}

	var glossaryErr *glossary.Error
	if errors.As(err, &glossaryErr) && !isSystemFailure(err) {
		return NewUserErrorWithCause(err.Error(), err)
	}

	return NewSystemErrorWithCause(err.Error(), err)
}

func isSystemFailure(err error) bool {
	var (
		pathErr *fs.PathError
		urlErr  *url.Error
	)
	return errors.As(err, &pathErr) ||
		errors.As(err, &urlErr) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
