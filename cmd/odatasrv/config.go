/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/voedger/odata/pkg/router"
)

func defaultConfig() Config {
	return Config{
		Router: router.RouterParams{
			Port:                     router.DefaultPort,
			ServicePath:              router.DefaultServicePath,
			ReadHeaderTimeoutSeconds: int(router.DefaultReadHeaderTimeout.Seconds()),
		},
		Storage: StorageConfig{
			Driver: storageMem,
			Path:   defaultBBoltPath,
		},
	}
}

// loadConfig reads YAML file over the defaults. Empty path -> defaults
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if len(path) == 0 {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}
