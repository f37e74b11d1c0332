// Package main is the entry point for the casewise CLI tool.
package main

import (
	"github.com/casewise/casewise/internal/cmd"
)

func main() {
	cmd.Execute()
}
