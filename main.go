// SPDX-License-Identifier: MIT
package main

import (
	"os"

	"voccal/cmd"
	"voccal/internal/log"
	"voccal/pkg/build"
)

// main runs in three phases:
//
//  1. Startup: build information.
//  2. Command: the cobra tree loads configuration, sets the log level and
//     runs one subcommand. Commands that open devices own their audio
//     context and close it before returning.
//  3. Exit: a non-zero status reports any error.
func main() {
	if err := build.Initialize(); err != nil {
		log.Fatalf("build info: %v", err)
	}

	if err := cmd.Execute(os.Args[1:], os.Stdout); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}
