package main

import (
	"os"

	"jobworkflow/cmd/jobworkflow/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
