/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/untillpro/goutils/logger"

	"github.com/voedger/odata/pkg/iservices"
	"github.com/voedger/odata/pkg/iservicesctl"
	"github.com/voedger/odata/pkg/istorage"
	"github.com/voedger/odata/pkg/istorage/bbolt"
	"github.com/voedger/odata/pkg/istorage/mem"
	"github.com/voedger/odata/pkg/processor"
	"github.com/voedger/odata/pkg/router"
)

func newServerCmd() *cobra.Command {
	var configPath string
	var overrides Config
	serverCmd := &cobra.Command{
		Use:   "server",
		Short: "Start server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			applyFlags(cmd, &cfg, overrides)

			services, cleanup, err := wireServer(cfg)
			if err != nil {
				return fmt.Errorf("services not wired: %w", err)
			}
			defer cleanup()

			ctl := iservicesctl.New()
			join, err := ctl.PrepareAndRun(cmd.Context(), services)
			if err != nil {
				return fmt.Errorf("services preparation error: %w", err)
			}
			logger.Info(fmt.Sprintf("serving %s on port %d, storage %s", cfg.Router.ServicePath,
				services[httpServiceName].(router.IHTTPService).ListeningPort(), cfg.Storage.Driver))
			join(cmd.Context())
			return nil
		},
	}
	serverCmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	serverCmd.Flags().StringVar(&overrides.Router.Host, "host", "", "listen address")
	serverCmd.Flags().IntVar(&overrides.Router.Port, "port", router.DefaultPort, "listen port, 0 is a random free port")
	serverCmd.Flags().StringVar(&overrides.Router.ServicePath, "service-path", router.DefaultServicePath, "URL path of the service root")
	serverCmd.Flags().Int32Var(&overrides.Router.RequestsLimit, "requests-limit", 0, "max concurrent requests, 0 is unlimited")
	serverCmd.Flags().StringVar(&overrides.Storage.Driver, "storage", storageMem, "storage driver: mem or bbolt")
	serverCmd.Flags().StringVar(&overrides.Storage.Path, "db-path", defaultBBoltPath, "database file of the bbolt storage")
	serverCmd.Flags().BoolVar(&overrides.Processor.RequireConcurrencyToken, "require-token", false, "reject updates and deletes without a concurrency token")
	return serverCmd
}

// applyFlags overrides configuration with explicitly set flags
func applyFlags(cmd *cobra.Command, cfg *Config, overrides Config) {
	changed := cmd.Flags().Changed
	if changed("host") {
		cfg.Router.Host = overrides.Router.Host
	}
	if changed("port") {
		cfg.Router.Port = overrides.Router.Port
	}
	if changed("service-path") {
		cfg.Router.ServicePath = overrides.Router.ServicePath
	}
	if changed("requests-limit") {
		cfg.Router.RequestsLimit = overrides.Router.RequestsLimit
	}
	if changed("storage") {
		cfg.Storage.Driver = overrides.Storage.Driver
	}
	if changed("db-path") {
		cfg.Storage.Path = overrides.Storage.Path
	}
	if changed("require-token") {
		cfg.Processor.RequireConcurrencyToken = overrides.Processor.RequireConcurrencyToken
	}
}

func wireServer(cfg Config) (services map[string]iservices.IService, cleanup func(), err error) {
	store, err := provideStorage(cfg.Storage)
	if err != nil {
		return nil, nil, err
	}
	cleanup = func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage:", err)
		}
	}
	httpService := router.Provide(cfg.Router, processor.Provide(cfg.Processor.params()), store)
	return map[string]iservices.IService{httpServiceName: httpService}, cleanup, nil
}

func provideStorage(cfg StorageConfig) (istorage.IStore, error) {
	switch cfg.Driver {
	case storageMem, "":
		return mem.Provide(), nil
	case storageBBolt:
		return bbolt.Provide(bbolt.ParamsType{DBPath: cfg.Path})
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownStorageDriver, cfg.Driver)
}
