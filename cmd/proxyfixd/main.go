package main

import (
	"os"

	"github.com/abczzz13/proxyfix/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
