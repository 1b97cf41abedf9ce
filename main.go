package main

import (
	"log"

	"github.com/sadopc/kidclock/internal/commands"
)

func main() {
	if err := commands.New().Execute(); err != nil {
		log.Fatalf("kidclock: %v", err)
	}
}
