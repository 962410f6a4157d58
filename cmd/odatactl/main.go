/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package main

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/untillpro/goutils/cobrau"
)

//go:embed version
var version string

var red func(a ...interface{}) string
var green func(a ...interface{}) string
var yellow func(a ...interface{}) string

func init() {
	red = color.New(color.FgRed).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
}

func main() {
	if err := execRootCmd(os.Args, version); err != nil {
		fmt.Fprintln(os.Stderr, red(err))
		os.Exit(1)
	}
}

func execRootCmd(args []string, ver string) error {
	rootCmd := cobrau.PrepareRootCmd(
		"odatactl",
		"OData change tracking client",
		args,
		ver,
		newApplyCmd(),
		newGetCmd(),
	)
	rootCmd.PersistentFlags().StringVarP(&serviceRoot, "service", "s", "", "service root URL, e.g. http://localhost:8080/odata")
	rootCmd.PersistentFlags().StringArrayVarP(&headers, "header", "H", nil, "header added to every request, Name: value")
	return cobrau.ExecCommandAndCatchInterrupt(rootCmd)
}
