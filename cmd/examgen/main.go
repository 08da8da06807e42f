// cmd/examgen/main.go
package main

import (
	"os"

	"paperforge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
