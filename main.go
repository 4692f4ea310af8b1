package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/nixpkgs-monitor/updatetool/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
