/*
 * Copyright 2021 Go YPath Authors
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/go-ypath/ypath/pkg/ypath"
)

var (
	printPaths bool
	verbose    bool
)

func main() {
	cmd := &cobra.Command{
		Use:   "ypath <expression> [file]",
		Short: "Select nodes from a YAML document with a path expression",
		Long: `ypath evaluates a path expression against a YAML document read from a file
or standard input and prints each matching node as a YAML document.

Examples:
  ypath /spec/containers/0/image deployment.yaml
  ypath '/**$' config.yaml
  ypath --paths '/a,list' < doc.yaml`,
		Args:         cobra.RangeArgs(1, 2),
		RunE:         run,
		SilenceUsage: true,
	}
	cmd.Flags().BoolVar(&printPaths, "paths", false, "print the path of each match instead of its content")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print engine notices to stderr")
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	diag := ypath.NopDiag
	if verbose {
		diag = ypath.WriterDiag(cmd.ErrOrStderr())
	}
	p, err := ypath.NewPathWithDiag(args[0], diag)
	if err != nil {
		return err
	}

	in := io.Reader(cmd.InOrStdin())
	if len(args) == 2 {
		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}

	var n yaml.Node
	if err := yaml.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("cannot parse document: %w", err)
	}
	doc := ypath.NewDocument(&n)

	matches := p.Find(doc)
	if printPaths {
		for _, m := range matches {
			fmt.Fprintln(cmd.OutOrStdout(), doc.PathString(m))
		}
		return nil
	}
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	defer enc.Close()
	for _, m := range matches {
		if err := enc.Encode(m); err != nil {
			return err
		}
	}
	return nil
}
