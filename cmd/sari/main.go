package main

import (
	"os"

	"github.com/sari-pos/sari/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
