/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package processor

import (
	"context"

	"github.com/voedger/odata/pkg/pipeline"
)

func Provide(params Params) IProcessor {
	if len(params.KeyProperty) == 0 {
		params.KeyProperty = DefaultKeyProperty
	}
	p := &implIProcessor{params: params}
	p.pipeline = pipeline.NewSyncPipeline(context.Background(), "processor",
		pipeline.WireFunc("resolveTarget", p.resolveTarget),
		pipeline.WireFunc("checkPreconditions", p.checkPreconditions),
		pipeline.WireFunc("apply", p.apply),
		pipeline.WireFunc("buildResponse", p.buildResponse),
	)
	return p
}
