/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package pipeline

import "context"

type ISyncOperator interface {
	DoSync(ctx context.Context, work interface{}) (err error)
}

// ISyncPipeline passes work through its operators one by one in the caller goroutine
// The first failed operator stops the pipeline
type ISyncPipeline interface {
	ISyncOperator
	SendSync(work interface{}) (err error)
}

// IErrorPipeline is returned by SendSync when an operator fails
type IErrorPipeline interface {
	error
	GetWork() interface{}
	GetOpName() string
}
