package main

import (
	"log"
	"os"

	"github.com/formalang/forma/internal/config"
)

func main() {
	config.IsLSPMode = true
	log.SetFlags(0)
	log.SetOutput(os.Stderr)

	server := NewLanguageServer(os.Stdout)
	server.Start()
}
