/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/voedger/odata/pkg/client"
)

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <resource>...",
		Short: "Reads resources, several resources are read by one batch",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContext("")
			if err != nil {
				return err
			}
			ops := make([]client.OperationRequest, 0, len(args))
			for _, target := range args {
				ops = append(ops, client.OperationRequest{Target: target})
			}
			var responses []*client.OperationResponse
			if len(ops) == 1 {
				resp, err := c.Execute(cmd.Context(), ops[0])
				if err != nil {
					return err
				}
				responses = append(responses, resp)
			} else if responses, err = c.ExecuteBatch(cmd.Context(), ops...); err != nil {
				return err
			}
			return printOperationResponses(cmd.OutOrStdout(), responses)
		},
	}
}

// printOperationResponses returns the first failure after everything is printed
func printOperationResponses(out io.Writer, responses []*client.OperationResponse) (err error) {
	for _, r := range responses {
		if r.Error != nil {
			fmt.Fprintf(out, "%s %s: %s\n", red("FAIL"), r.Descriptor, r.Error)
			if err == nil {
				err = r.Error
			}
			continue
		}
		fmt.Fprintf(out, "%s %s %d\n", green("OK"), r.Descriptor, r.StatusCode)
		pretty := bytes.Buffer{}
		if json.Indent(&pretty, r.Body, "", "  ") == nil {
			fmt.Fprintln(out, pretty.String())
		} else if len(r.Body) > 0 {
			fmt.Fprintln(out, string(r.Body))
		}
	}
	return err
}
