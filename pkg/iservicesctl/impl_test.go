/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package iservicesctl

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voedger/odata/pkg/iservices"
)

type svcMock struct {
	name              string
	prepareShouldFail bool
	prepareCalled     bool
	runCalled         atomic.Bool
}

func (svc *svcMock) Prepare() (err error) {
	svc.prepareCalled = true
	if svc.prepareShouldFail {
		return fmt.Errorf("error %v", svc.name)
	}
	return nil
}

func (svc *svcMock) Run(ctx context.Context) {
	svc.runCalled.Store(true)
	<-ctx.Done()
}

func TestBasicUsage(t *testing.T) {
	require := require.New(t)
	services := map[string]iservices.IService{
		"http":  &svcMock{name: "http"},
		"store": &svcMock{name: "store"},
	}
	ctx, cancel := context.WithCancel(context.Background())
	join, err := New().PrepareAndRun(ctx, services)
	require.NoError(err)
	require.NotNil(join)
	cancel()
	join(ctx)
	for _, svc := range services {
		require.True(svc.(*svcMock).prepareCalled)
		require.True(svc.(*svcMock).runCalled.Load())
	}
}

func TestPrepareFailure(t *testing.T) {
	require := require.New(t)
	services := map[string]iservices.IService{
		"service1": &svcMock{name: "service1"},
		"service2": &svcMock{name: "service2", prepareShouldFail: true},
		"service3": &svcMock{name: "service3"},
	}
	join, err := New().PrepareAndRun(context.Background(), services)
	require.ErrorIs(err, iservices.ErrAtLeastOneServiceFailedToStart)
	require.ErrorContains(err, "service2")
	require.Nil(join)
	for _, svc := range services {
		require.False(svc.(*svcMock).runCalled.Load())
	}
}

func TestControllerIsStateless(t *testing.T) {
	require := require.New(t)
	ctl := New()
	for i := 0; i < 2; i++ {
		svc := &svcMock{name: "http"}
		ctx, cancel := context.WithCancel(context.Background())
		join, err := ctl.PrepareAndRun(ctx, map[string]iservices.IService{"http": svc})
		require.NoError(err)
		cancel()
		join(ctx)
		require.True(svc.runCalled.Load())
	}
}
