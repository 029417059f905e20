// Package main is the entry point for the planmark command-line tool.
package main

import "github.com/planmark/planmark-go/cmd/planmark/cmd"

func main() {
	cmd.Execute()
}
