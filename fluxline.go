package main

import (
	"github.com/fluxline-cloud/fluxline/cmd"
	"github.com/fluxline-cloud/fluxline/pkg/env"
	"github.com/fluxline-cloud/fluxline/pkg/log"
)

func main() {
	if err := env.Process(); err != nil {
		log.Fatal("environment failure", "error", err)
	}

	if err := cmd.Execute(); err != nil {
		log.Fatal("fluxline failure", "error", err)
	}
}
