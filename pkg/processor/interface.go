/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package processor

import (
	"context"

	"github.com/voedger/odata/pkg/istorage"
)

type IProcessor interface {
	// returns SysError 400, 404 or 405 if the request could not be mapped to an operation
	ParseRequest(req *Request) (*Operation, error)

	// Apply executes the operation inside tx
	// error is SysError or an error of the store. Caller must not commit tx if error is returned
	Apply(ctx context.Context, tx istorage.ITx, op *Operation) (*Response, error)

	// Execute parses the request and applies it in its own transaction
	// errors are replied as OData error bodies
	Execute(ctx context.Context, store istorage.IStore, req *Request) *Response
}
