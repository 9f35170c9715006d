package main

import (
	"log"

	"github.com/projectdesk/projectdesk/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
