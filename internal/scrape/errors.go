// Package scrape defines the failure taxonomy shared by every stage of an
// attempt pipeline. Each failure carries a stable reason code that ends up in
// the emitted result's notes and the run summary.
package scrape

import (
	"errors"
	"fmt"
)

// Reason is a stable failure code for one attempt.
type Reason string

const (
	ReasonNetworkError         Reason = "NetworkError"
	ReasonHTTPError            Reason = "HttpError"
	ReasonRenderTimeout        Reason = "RenderTimeout"
	ReasonChallengeNotPassed   Reason = "ChallengeNotPassed"
	ReasonSwitcherNotFound     Reason = "SwitcherNotFound"
	ReasonRegionOptionNotFound Reason = "RegionOptionNotFound"
	ReasonSelectorNotFound     Reason = "SelectorNotFound"
	ReasonParseError           Reason = "ParseError"

	// ReasonCurrencyUnresolved is soft: the attempt still succeeds with a
	// null currency code and a cautionary note.
	ReasonCurrencyUnresolved Reason = "CurrencyUnresolved"
)

// Error is an attempt-level failure with its reason code.
type Error struct {
	Reason  Reason
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Reason, e.Err)
		}
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds a reason-coded failure.
func Errorf(reason Reason, format string, args ...interface{}) *Error {
	return &Error{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a reason code to an underlying error.
func Wrap(reason Reason, err error) *Error {
	return &Error{Reason: reason, Err: err}
}

// ReasonOf extracts the reason code from an error chain, or empty when the
// error did not originate in the attempt pipeline.
func ReasonOf(err error) Reason {
	var se *Error
	if errors.As(err, &se) {
		return se.Reason
	}
	return ""
}
