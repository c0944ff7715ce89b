// Package main is the entry point for the zammad-mcp server.
package main

import "github.com/basher83/zammad-mcp/internal/cli"

func main() {
	cli.Execute()
}
