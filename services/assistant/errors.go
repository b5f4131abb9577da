package assistant

import (
	"errors"
	"strings"

	"aviachat/services/flightapi"
)

// ErrStaleTurn marks a webhook reply that arrived after the session it
// belonged to was reset or expired. The result is discarded, not applied.
var ErrStaleTurn = errors.New("session changed while the request was in flight; result discarded")

// userMessageFor turns a failed webhook call into the chat guidance the
// widget shows. Timeouts and unreachable backends get a retry hint;
// everything else degrades to a generic failure line.
func userMessageFor(err error) string {
	apiErr, ok := flightapi.AsAPIError(err)
	if !ok {
		return "Something went wrong. Please try again."
	}

	switch apiErr.Cause() {
	case "timeout":
		return "The search is taking longer than expected. Please try again."
	case "network-unreachable":
		return "The booking service cannot be reached right now. Please try again in a moment."
	case "not-found":
		return "The booking service endpoint was not found. Please try again later."
	case "server-error":
		return "The booking service reported an internal error. Please try again later."
	}

	switch apiErr.Kind {
	case flightapi.KindNoResults:
		msg := "No flights found for that search."
		if apiErr.Message != "" {
			msg = apiErr.Message
		}
		if len(apiErr.Suggestions) > 0 {
			msg += " Suggestions: " + strings.Join(apiErr.Suggestions, ", ") + "."
		}
		return msg
	case flightapi.KindMalformed:
		return "The booking service sent an unexpected reply. Please try again."
	case flightapi.KindRejected:
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return "The booking service rejected the request."
	case flightapi.KindValidation:
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return "Some passenger details were rejected. Please review the form."
	}
	return "Something went wrong. Please try again."
}
