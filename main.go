package main

import (
	"log"

	"github.com/abofield/abofield/cmd"
	"github.com/abofield/abofield/config"
)

func main() {
	log.Printf("abofield %s (%s)", config.Version, config.CommitHash)
	cmd.Execute()
}
