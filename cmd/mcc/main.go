package main

import (
	"os"

	"github.com/starxnet/mining-credits-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
