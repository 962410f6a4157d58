/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package client

import (
	"context"

	"github.com/voedger/odata/pkg/batch"
)

// IPayloadCodec serializes one resource payload
type IPayloadCodec interface {
	ContentType() string

	// Marshal serializes obj. Not empty props limits the payload to these properties
	Marshal(obj any, props []string) ([]byte, error)

	// Unmarshal merges the payload into obj
	Unmarshal(body []byte, obj any) error
}

// ITransport sends one HTTP exchange
// Non-2xx statuses are not errors. Error means that no response is received, it is wrapped by TransportError
type ITransport interface {
	Do(ctx context.Context, req *batch.Request) (*batch.Response, error)
}
