package main

import (
	"fmt"
	"os"

	"familybudget/internal/cli"
)

var version = "dev"

func main() {
	app := cli.NewCLIApp(version)
	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
