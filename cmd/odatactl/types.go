/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package main

import (
	"github.com/voedger/odata/pkg/client"
)

// changeScript is a YAML list of changes submitted by one save round
type changeScript struct {
	Service string   `yaml:"service"`
	Changes []change `yaml:"changes"`
}

type change struct {
	Op string `yaml:"op"`

	// names the entity added by the change for later changes of the script
	Ref string `yaml:"ref"`

	Set string `yaml:"set"`

	// ref or identity, e.g. Customers(1)
	Target string `yaml:"target"`
	Source string `yaml:"source"`
	Nav    string `yaml:"nav"`
	ETag   string `yaml:"etag"`

	Properties map[string]any `yaml:"properties"`

	// stream
	Name        string `yaml:"name"`
	ContentType string `yaml:"contentType"`
	File        string `yaml:"file"`
	Content     string `yaml:"content"`
}

// entity is a tracked object of the script
type entity map[string]any

type applier struct {
	ctx *client.Context

	// ref or identity -> tracked object
	objects map[string]*entity

	// stream files are relative to it
	baseDir string
}
