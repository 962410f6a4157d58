/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package iservices

import "context"

// IService is a long-running part of a server process
type IService interface {
	// Prepare acquires resources, e.g. opens the listener. Run is not called if Prepare fails
	Prepare() (err error)

	// Run blocks until ctx is done
	Run(ctx context.Context)
}

type IServicesController interface {
	// PrepareAndRun prepares every service and then runs each one in its own goroutine
	// If any Prepare fails no service is run and the error wraps ErrAtLeastOneServiceFailedToStart
	// join waits for ctx and then for every service to return from Run
	PrepareAndRun(ctx context.Context, services map[string]IService) (join func(ctx context.Context), err error)
}
