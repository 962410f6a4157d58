/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package iservicesctl

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/untillpro/goutils/logger"
	"golang.org/x/exp/maps"

	"github.com/voedger/odata/pkg/iservices"
)

type servicesController struct{}

func (*servicesController) PrepareAndRun(ctx context.Context, services map[string]iservices.IService) (join func(ctx context.Context), err error) {
	names := maps.Keys(services)
	sort.Strings(names)

	errs := []error{}
	for _, name := range names {
		if prepareErr := services[name].Prepare(); prepareErr != nil {
			logger.Error("service", name, "failed to prepare:", prepareErr)
			errs = append(errs, fmt.Errorf("%s: %w", name, prepareErr))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", iservices.ErrAtLeastOneServiceFailedToStart, errors.Join(errs...))
	}

	wg := sync.WaitGroup{}
	for _, name := range names {
		name, svc := name, services[name]
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Verbose("service started:", name)
			svc.Run(ctx)
			logger.Verbose("service stopped:", name)
		}()
	}

	return func(ctx context.Context) {
		<-ctx.Done()
		wg.Wait()
	}, nil
}
