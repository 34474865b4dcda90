// Package main is the entry point for the epacompare CLI tool, which compares
// NFL players on EPA-based metrics computed from nflverse play-by-play data.
package main

import "github.com/pable/go-epa-compare/cmd"

func main() {
	cmd.Execute()
}
