// Package main is the single-binary entrypoint for dopamind.
package main

import "github.com/dopamind/dopamind/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
