package providers

import (
	"errors"
	"fmt"

	"github.com/yourusername/codetrack/scraper-service/internal/fetch"
	"github.com/yourusername/codetrack/scraper-service/internal/models"
)

// ErrorKind classifies why a profile scrape failed
type ErrorKind string

const (
	KindInvalidInput    ErrorKind = "invalid_input"
	KindHTTP            ErrorKind = "http_error"
	KindParse           ErrorKind = "parse_error"
	KindProfileNotFound ErrorKind = "profile_not_found"
)

// ScrapeError is the typed failure returned by every provider
type ScrapeError struct {
	Kind     ErrorKind
	Platform models.Platform
	Err      error
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Platform.DisplayName(), e.Kind, e.Err)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// Retryable is false only for caller errors; no network was attempted for those
func (e *ScrapeError) Retryable() bool {
	return e.Kind != KindInvalidInput
}

// IsKind reports whether err is a ScrapeError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var scrapeErr *ScrapeError
	return errors.As(err, &scrapeErr) && scrapeErr.Kind == kind
}

// IsRetryable reports whether err may succeed on another attempt
func IsRetryable(err error) bool {
	var scrapeErr *ScrapeError
	if errors.As(err, &scrapeErr) {
		return scrapeErr.Retryable()
	}
	return err != nil
}

func invalidInput(platform models.Platform, format string, args ...interface{}) *ScrapeError {
	return &ScrapeError{Kind: KindInvalidInput, Platform: platform, Err: fmt.Errorf(format, args...)}
}

func parseError(platform models.Platform, format string, args ...interface{}) *ScrapeError {
	return &ScrapeError{Kind: KindParse, Platform: platform, Err: fmt.Errorf(format, args...)}
}

func profileNotFound(platform models.Platform, username string) *ScrapeError {
	return &ScrapeError{Kind: KindProfileNotFound, Platform: platform, Err: fmt.Errorf("no profile for %q", username)}
}

// fromFetchError converts a fetch failure; a 404 means the profile does not exist
func fromFetchError(platform models.Platform, username string, err error) *ScrapeError {
	var httpErr *fetch.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.NotFound() {
			return profileNotFound(platform, username)
		}
		if httpErr.Timeout() {
			return &ScrapeError{Kind: KindHTTP, Platform: platform, Err: fmt.Errorf("timed out: %w", err)}
		}
	}
	return &ScrapeError{Kind: KindHTTP, Platform: platform, Err: err}
}
