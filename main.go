// Package main is the entry point for the reclass CLI.
package main

import "reclass.dev/pkg/reclass/cmd"

func main() {
	cmd.Execute()
}
