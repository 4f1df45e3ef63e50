// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/autobrr/sortarr/internal/buildinfo"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sortarr",
		Short: "File sorting daemon",
		Long:  "sortarr watches a source directory and sorts incoming files into a categorized destination tree.",
	}

	rootCmd.AddCommand(RunServeCommand())
	rootCmd.AddCommand(RunScanCommand())
	rootCmd.AddCommand(runVersionCommand())

	// Bare invocation serves, matching daemon expectations.
	rootCmd.RunE = RunServeCommand().RunE
	rootCmd.Flags().String("config", "", "Path to configuration file or directory")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runVersionCommand() *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if outputJSON {
				data, err := buildinfo.JSON()
				if err != nil {
					return err
				}
				cmd.Println(string(data))
				return nil
			}
			cmd.Print(buildinfo.String())
			return nil
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false, "Output as JSON")
	return cmd
}
