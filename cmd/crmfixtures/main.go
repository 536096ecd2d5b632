package main

import (
	"os"

	"github.com/forgo/crmfixtures/cmd/crmfixtures/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
