package domain

import "errors"

// Sentinel error kinds for upstream failures. Adapters wrap these with
// context via fmt.Errorf("...: %w", ...) so callers can match the kind
// with errors.Is while still seeing the cause.
var (
	// ErrUpstreamUnavailable marks a transport or protocol failure
	// talking to a source. Recoverable by caller retry.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrRouteNotFound marks a healthy upstream response that contained
	// no rows for the requested route code.
	ErrRouteNotFound = errors.New("route not found")

	// ErrMapping marks an upstream row carrying an unrecognized
	// direction code, day-type code or malformed departure time. The
	// whole batch fails; coercing to a default would fabricate a
	// departure in the wrong bucket.
	ErrMapping = errors.New("unrecognized upstream value")
)
