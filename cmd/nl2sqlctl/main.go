// Package main is the entry point for the nl2sqlctl developer CLI.
package main

import "github.com/Rrens/nl2sql/internal/cli"

func main() {
	cli.Execute()
}
