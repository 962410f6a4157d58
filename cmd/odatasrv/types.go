/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package main

import (
	"github.com/voedger/odata/pkg/processor"
	"github.com/voedger/odata/pkg/router"
)

type Config struct {
	Router    router.RouterParams `yaml:"router"`
	Storage   StorageConfig       `yaml:"storage"`
	Processor ProcessorConfig     `yaml:"processor"`
}

type StorageConfig struct {
	// mem or bbolt
	Driver string `yaml:"driver"`

	// database file of the bbolt driver
	Path string `yaml:"path"`
}

type ProcessorConfig struct {
	KeyProperty             string            `yaml:"keyProperty"`
	RequireConcurrencyToken bool              `yaml:"requireConcurrencyToken"`
	NavigationTargets       map[string]string `yaml:"navigationTargets"`
}

func (c ProcessorConfig) params() processor.Params {
	return processor.Params{
		KeyProperty:             c.KeyProperty,
		RequireConcurrencyToken: c.RequireConcurrencyToken,
		NavigationTargets:       c.NavigationTargets,
	}
}
