/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package main

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/untillpro/goutils/cobrau"
)

//go:embed version
var version string

func main() {
	if err := execRootCmd(os.Args, version); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func execRootCmd(args []string, ver string) error {
	rootCmd := cobrau.PrepareRootCmd(
		"odatasrv",
		"OData service over a transactional record store",
		args,
		ver,
		newServerCmd(),
	)
	return cobrau.ExecCommandAndCatchInterrupt(rootCmd)
}
