package main

import (
	"os"

	"github.com/xiebiao/bookstore-inventory/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
