/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package preconditions

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/voedger/odata/pkg/descriptors"
)

var (
	ErrPreconditionFailed   = errors.New("precondition failed")
	ErrPreconditionRequired = errors.New("precondition required")
)

// LocalPreconditionError is a 412 or 428 outcome detected without a round trip
type LocalPreconditionError struct {
	Descriptor *descriptors.Descriptor
	StatusCode int
	Err        error
}

func (e *LocalPreconditionError) Error() string {
	return fmt.Sprintf("%d %s: %s: %v", e.StatusCode, http.StatusText(e.StatusCode), e.Descriptor, e.Err)
}

func (e *LocalPreconditionError) Unwrap() error {
	return e.Err
}

func preconditionFailed(d *descriptors.Descriptor, format string, args ...any) error {
	return &LocalPreconditionError{
		Descriptor: d,
		StatusCode: http.StatusPreconditionFailed,
		Err:        fmt.Errorf("%w: "+format, append([]any{ErrPreconditionFailed}, args...)...),
	}
}

func preconditionRequired(d *descriptors.Descriptor) error {
	return &LocalPreconditionError{
		Descriptor: d,
		StatusCode: http.StatusPreconditionRequired,
		Err:        fmt.Errorf("%w: the resource requires a concurrency token but no condition is set", ErrPreconditionRequired),
	}
}
