// Package main is the entry point for the codemaker CLI tool.
package main

import (
	"github.com/codemakerai/codemaker-cli/internal/cmd"
)

func main() {
	cmd.Execute()
}
