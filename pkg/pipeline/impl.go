/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package pipeline

import (
	"context"
	"fmt"
)

func NewSyncPipeline(ctx context.Context, name string, first *WiredOperator, others ...*WiredOperator) ISyncPipeline {
	return &SyncPipeline{
		name:      name,
		ctx:       ctx,
		operators: append([]*WiredOperator{first}, others...),
	}
}

func (p *SyncPipeline) DoSync(ctx context.Context, work interface{}) (err error) {
	for _, op := range p.operators {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := op.Operator.DoSync(ctx, work); err != nil {
			return errPipeline{
				err:    fmt.Errorf("[%s/%s] %w", p.name, op.name, err),
				work:   work,
				opName: op.name,
			}
		}
	}
	return nil
}

func (p *SyncPipeline) SendSync(work interface{}) (err error) {
	return p.DoSync(p.ctx, work)
}

func (wo WiredOperator) String() string {
	return "operator: " + wo.name
}

func WireSyncOperator(name string, op ISyncOperator) *WiredOperator {
	return &WiredOperator{
		name:     name,
		Operator: op,
	}
}

// based on ISyncOperator
func WireFunc(name string, doSync func(ctx context.Context, work interface{}) (err error)) *WiredOperator {
	return WireSyncOperator(name, NewSyncOp(doSync))
}

func NewSyncOp(doSync func(ctx context.Context, work interface{}) (err error)) ISyncOperator {
	return &implISyncOperatorSimple{doSync: doSync}
}

func (so *implISyncOperatorSimple) DoSync(ctx context.Context, work interface{}) (err error) {
	if so.doSync != nil {
		return so.doSync(ctx, work)
	}
	return
}
