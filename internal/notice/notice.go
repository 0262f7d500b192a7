// Package notice is the single translation point from a raised error to the
// user-facing title/message pair. It never fails and never alters control
// flow; views decide whether the result also becomes a visible message.
package notice

import (
	"github.com/homebird-app/homebird/internal/api"
)

type Notice struct {
	Title      string
	Message    string
	StatusCode int
}

// Translate maps err to a fixed title/message pair for known backend status
// codes; anything else falls back to the supplied default message.
func Translate(err error, fallback string) Notice {
	apiErr, ok := api.AsError(err)
	if !ok {
		return Notice{Title: "Something went wrong", Message: fallback}
	}

	switch apiErr.Kind {
	case api.KindUnauthorized:
		return Notice{
			Title:      "Authentication required",
			Message:    "Please log in to continue.",
			StatusCode: apiErr.StatusCode,
		}
	case api.KindForbidden:
		return Notice{
			Title:      "Access denied",
			Message:    "You do not have permission to do that.",
			StatusCode: apiErr.StatusCode,
		}
	case api.KindNotFound:
		return Notice{
			Title:      "Not found",
			Message:    "That conversation no longer exists.",
			StatusCode: apiErr.StatusCode,
		}
	case api.KindRateLimited:
		return Notice{
			Title:      "Slow down",
			Message:    "Too many requests. Please wait a moment and try again.",
			StatusCode: apiErr.StatusCode,
		}
	case api.KindServerError:
		return Notice{
			Title:      "Server error",
			Message:    "The service is having trouble. Please try again shortly.",
			StatusCode: apiErr.StatusCode,
		}
	case api.KindNetworkError:
		return Notice{
			Title:   "Connection problem",
			Message: "Could not reach the service. Check your connection and try again.",
		}
	default:
		msg := apiErr.Message
		if msg == "" {
			msg = fallback
		}
		return Notice{
			Title:      "Request failed",
			Message:    msg,
			StatusCode: apiErr.StatusCode,
		}
	}
}
