/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voedger/odata/pkg/client"
	"github.com/voedger/odata/pkg/router"
)

type customer struct {
	ID   int64  `json:"ID,omitempty"`
	Name string `json:"Name"`
}

func TestLoadConfig(t *testing.T) {
	require := require.New(t)

	cfg, err := loadConfig("")
	require.NoError(err)
	require.Equal(defaultConfig(), cfg)

	path := filepath.Join(t.TempDir(), "odatasrv.yaml")
	require.NoError(os.WriteFile(path, []byte(`
router:
  port: 9090
  servicePath: /api
  requestsLimit: 10
storage:
  driver: bbolt
  path: /tmp/data.db
processor:
  requireConcurrencyToken: true
  navigationTargets:
    Customers/Orders: SalesOrders
`), 0o600))
	cfg, err = loadConfig(path)
	require.NoError(err)
	require.Equal(9090, cfg.Router.Port)
	require.Equal("/api", cfg.Router.ServicePath)
	require.EqualValues(10, cfg.Router.RequestsLimit)
	require.Equal(int(router.DefaultReadHeaderTimeout.Seconds()), cfg.Router.ReadHeaderTimeoutSeconds, "defaults are kept")
	require.Equal(storageBBolt, cfg.Storage.Driver)
	require.True(cfg.Processor.params().RequireConcurrencyToken)
	require.Equal("SalesOrders", cfg.Processor.params().NavigationTargets["Customers/Orders"])

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(err, os.ErrNotExist)

	require.NoError(os.WriteFile(path, []byte("router: [1"), 0o600))
	_, err = loadConfig(path)
	require.Error(err)
}

func TestApplyFlags(t *testing.T) {
	require := require.New(t)
	cmd := newServerCmd()
	require.NoError(cmd.ParseFlags([]string{"--port", "0", "--storage", "bbolt", "--require-token"}))

	cfg := defaultConfig()
	cfg.Router.ServicePath = "/from-file"
	applyFlags(cmd, &cfg, Config{
		Router:    router.RouterParams{Port: 0},
		Storage:   StorageConfig{Driver: storageBBolt},
		Processor: ProcessorConfig{RequireConcurrencyToken: true},
	})
	require.Zero(cfg.Router.Port)
	require.Equal("/from-file", cfg.Router.ServicePath, "not changed flag does not override the file")
	require.Equal(storageBBolt, cfg.Storage.Driver)
	require.True(cfg.Processor.RequireConcurrencyToken)
}

func TestProvideStorage(t *testing.T) {
	require := require.New(t)
	_, err := provideStorage(StorageConfig{Driver: "cassandra"})
	require.ErrorIs(err, ErrUnknownStorageDriver)

	store, err := provideStorage(StorageConfig{Driver: storageBBolt, Path: filepath.Join(t.TempDir(), "db", "odata.db")})
	require.NoError(err)
	require.NoError(store.Close())
}

func TestServer(t *testing.T) {
	for _, driver := range []string{storageMem, storageBBolt} {
		t.Run(driver, func(t *testing.T) {
			require := require.New(t)
			cfg := defaultConfig()
			cfg.Router.Host = "127.0.0.1"
			cfg.Router.Port = 0
			cfg.Storage = StorageConfig{Driver: driver, Path: filepath.Join(t.TempDir(), "odata.db")}

			services, cleanup, err := wireServer(cfg)
			require.NoError(err)
			defer cleanup()
			service := services[httpServiceName].(router.IHTTPService)
			require.NoError(service.Prepare())
			ctx, cancel := context.WithCancel(context.Background())
			wg := sync.WaitGroup{}
			wg.Add(1)
			go func() {
				defer wg.Done()
				service.Run(ctx)
			}()
			defer func() {
				cancel()
				wg.Wait()
			}()

			c := client.New(fmt.Sprintf("http://127.0.0.1:%d%s", service.ListeningPort(), cfg.Router.ServicePath))
			cust := &customer{Name: "Alfreds"}
			require.NoError(c.AddObject("Customers", cust))
			_, err = c.SaveChanges(ctx, client.BatchWithSingleChangeset)
			require.NoError(err)
			require.EqualValues(1, cust.ID)

			resp, err := c.Execute(ctx, client.OperationRequest{Target: "Customers(1)"})
			require.NoError(err)
			read := customer{}
			require.NoError(resp.Decode(&read))
			require.Equal("Alfreds", read.Name)
		})
	}
}
