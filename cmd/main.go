package main

import (
	"os"

	"github.com/anacarcan/prueba/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
