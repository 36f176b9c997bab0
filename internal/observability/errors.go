package observability

import (
	"context"
	"errors"
	"net/http"

	"github.com/baxromumarov/quote-hunter/internal/httpx"
)

const (
	ErrorPolicy    = "policy"
	ErrorNetwork   = "network"
	ErrorEmpty     = "empty"
	ErrorRateLimit = "rate_limit"
	ErrorParsing   = "parsing"
	ErrorStore     = "store"
	ErrorUnknown   = "unknown"
)

// ClassifyFetchError buckets a fetch failure for the error counters.
func ClassifyFetchError(err error) string {
	if err == nil {
		return ErrorUnknown
	}
	if errors.Is(err, httpx.ErrPolicyDenied) {
		return ErrorPolicy
	}
	if errors.Is(err, httpx.ErrEmptyBody) {
		return ErrorEmpty
	}
	var fe *httpx.FetchError
	if errors.As(err, &fe) {
		switch {
		case fe.Status == http.StatusTooManyRequests:
			return ErrorRateLimit
		default:
			return ErrorNetwork
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorNetwork
	}
	return ErrorUnknown
}
