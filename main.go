// Package main is the entry point for the probe CLI.
package main

import "probe.dev/pkg/probe/cmd"

func main() {
	cmd.Execute()
}
