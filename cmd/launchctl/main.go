package main

import (
	"log"

	"github.com/brandonbloom/launch/internal/cli"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("launchctl: ")
	if err := cli.Execute(); err != nil {
		log.Fatal(err)
	}
}
