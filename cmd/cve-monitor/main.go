package main

import (
	"context"
	"os"

	"github.com/andres10976/cve-monitor/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
