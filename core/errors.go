package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for the query-construction layer. Callers wrap these with
// fmt.Errorf("%w: ...") to add context and match with errors.Is.
var (
	// ErrInvalidTemporal indicates a since-expression that matched a
	// recognized pattern but does not resolve to a valid instant.
	ErrInvalidTemporal = errors.New("invalid temporal expression")

	// ErrInvalidPagination indicates a non-positive limit or negative offset.
	ErrInvalidPagination = errors.New("invalid pagination window")
)

// UpstreamError represents an HTTP-level error response (status >= 400)
// from the PostgREST gateway. The raw response body is preserved so the
// gateway's own diagnostics reach the operator unmodified.
type UpstreamError struct {
	Status int
	Body   []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("ERROR %d: %s", e.Status, string(e.Body))
}
