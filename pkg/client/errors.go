/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/voedger/odata/pkg/batch"
	"github.com/voedger/odata/pkg/coreutils"
	"github.com/voedger/odata/pkg/descriptors"
)

var (
	ErrInvalidSaveOptions  = errors.New("BatchWithSingleChangeset and BatchWithIndependentOperations can not be combined")
	ErrUnresolvedReference = errors.New("referenced entity is not persisted")
	ErrServiceUnavailable  = errors.New("service unavailable")
	ErrMalformedResponse   = errors.New("malformed response")
)

// TransportError means that the exchange with the server could not be completed
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "transport failure: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServerOperationError is a non-2xx response to one operation
type ServerOperationError struct {
	StatusCode int
	Code       string
	Message    string
	Body       []byte
}

func newServerOperationError(statusCode int, body []byte) *ServerOperationError {
	sysErr := coreutils.ParseSysError(statusCode, body)
	return &ServerOperationError{
		StatusCode: statusCode,
		Code:       sysErr.ErrorCode(),
		Message:    sysErr.Message,
		Body:       body,
	}
}

func (e *ServerOperationError) Error() string {
	if len(e.Message) == 0 {
		return fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

// SaveChangesError is returned by SaveChanges when at least one operation failed
// Every failure is recorded in Descriptor.SaveError as well
type SaveChangesError struct {
	// every response of the round, successful and failed, in submission order
	Responses []*ChangeOperationResponse
}

func (e *SaveChangesError) Error() string {
	failed := e.Failed()
	msgs := make([]string, 0, len(failed))
	for _, r := range failed {
		msgs = append(msgs, fmt.Sprintf("%s: %s", r.descriptor, r.err))
	}
	return fmt.Sprintf("save changes failed, %d of %d operations: %s", len(failed), len(e.Responses), strings.Join(msgs, "; "))
}

func (e *SaveChangesError) Unwrap() []error {
	res := []error{}
	for _, r := range e.Failed() {
		res = append(res, r.err)
	}
	return res
}

func (e *SaveChangesError) Failed() []*ChangeOperationResponse {
	return e.filter(true)
}

func (e *SaveChangesError) Succeeded() []*ChangeOperationResponse {
	return e.filter(false)
}

func (e *SaveChangesError) filter(failed bool) []*ChangeOperationResponse {
	res := []*ChangeOperationResponse{}
	for _, r := range e.Responses {
		if (r.err != nil) == failed {
			res = append(res, r)
		}
	}
	return res
}

// serviceUnavailableError is a 503 response, retried by the transport
type serviceUnavailableError struct {
	retryAfter time.Duration
}

func (e *serviceUnavailableError) Error() string {
	return fmt.Sprintf("%s, retry after %s", ErrServiceUnavailable, e.retryAfter)
}

func (e *serviceUnavailableError) Unwrap() error {
	return ErrServiceUnavailable
}

func (e *serviceUnavailableError) RetryAfter() time.Duration {
	return e.retryAfter
}

func responseError(resp *batch.Response) error {
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}
	return newServerOperationError(resp.StatusCode, resp.Body)
}

func unresolvedReference(d *descriptors.Descriptor) error {
	return fmt.Errorf("%w: %s", ErrUnresolvedReference, d)
}
