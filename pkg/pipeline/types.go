/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package pipeline

import "context"

type WiredOperator struct {
	name     string
	Operator ISyncOperator
}

type SyncPipeline struct {
	name      string
	ctx       context.Context
	operators []*WiredOperator
}

type implISyncOperatorSimple struct {
	doSync func(ctx context.Context, work interface{}) (err error)
}
